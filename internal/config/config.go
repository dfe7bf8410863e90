package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Sources struct {
		VocabularyURL  string        `yaml:"vocabulary_url" validate:"omitempty,url"`
		GraphURL       string        `yaml:"graph_url" validate:"omitempty,url"`
		VocabularyFile string        `yaml:"vocabulary_file"`
		GraphFile      string        `yaml:"graph_file"`
		MarkdownFile   string        `yaml:"markdown_file"`
		StorePath      string        `yaml:"store_path"`
		LenientJSON    bool          `yaml:"lenient_json"`
		WriteBack      bool          `yaml:"write_back"`
		Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`
		Breaker        struct {
			MaxFailures uint32        `yaml:"max_failures" validate:"gt=0"`
			OpenTimeout time.Duration `yaml:"open_timeout" validate:"gt=0"`
		} `yaml:"breaker"`
	} `yaml:"sources"`
	Search struct {
		CacheTTL              time.Duration `yaml:"cache_ttl" validate:"gt=0"`
		CacheSize             int           `yaml:"cache_size" validate:"gt=0"`
		HistorySize           int           `yaml:"history_size" validate:"gt=0"`
		MaxQueryLength        int           `yaml:"max_query_length" validate:"gt=0,lte=1000"`
		ContainmentConfidence float64       `yaml:"containment_confidence" validate:"gt=0,lte=1"`
		DomainBonus           float64       `yaml:"domain_bonus" validate:"gte=0,lte=1"`
	} `yaml:"search"`
	Graph struct {
		MaxNodes     int `yaml:"max_nodes" validate:"gt=0"`
		MaxEdges     int `yaml:"max_edges" validate:"gt=0"`
		DefaultDepth int `yaml:"default_depth" validate:"gt=0,ltefield=MaxDepth"`
		MaxDepth     int `yaml:"max_depth" validate:"gt=0,lte=10"`
	} `yaml:"graph"`
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port" validate:"gt=0,lte=65535"`
		Mode string `yaml:"mode" validate:"oneof=debug release test"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=json console"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Sources.VocabularyFile = "data/vocabulary.json"
	cfg.Sources.GraphFile = "data/graph.json"
	cfg.Sources.MarkdownFile = "data/LEXICON.md"
	cfg.Sources.StorePath = "fidakune.db"
	cfg.Sources.Timeout = 10 * time.Second
	cfg.Sources.Breaker.MaxFailures = 3
	cfg.Sources.Breaker.OpenTimeout = 30 * time.Second

	cfg.Search.CacheTTL = 24 * time.Hour
	cfg.Search.CacheSize = 1000
	cfg.Search.HistorySize = 50
	cfg.Search.MaxQueryLength = 100
	cfg.Search.ContainmentConfidence = 0.8
	cfg.Search.DomainBonus = 0.2

	cfg.Graph.MaxNodes = 10000
	cfg.Graph.MaxEdges = 50000
	cfg.Graph.DefaultDepth = 2
	cfg.Graph.MaxDepth = 5

	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8080
	cfg.Server.Mode = "release"

	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return &cfg
}

// LoadConfig reads .env, then the YAML file over the defaults, then FIDAKUNE_* environment
// overrides, and validates the result. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"FIDAKUNE_VOCABULARY_URL":  &cfg.Sources.VocabularyURL,
		"FIDAKUNE_GRAPH_URL":       &cfg.Sources.GraphURL,
		"FIDAKUNE_VOCABULARY_FILE": &cfg.Sources.VocabularyFile,
		"FIDAKUNE_GRAPH_FILE":      &cfg.Sources.GraphFile,
		"FIDAKUNE_MARKDOWN_FILE":   &cfg.Sources.MarkdownFile,
		"FIDAKUNE_STORE_PATH":      &cfg.Sources.StorePath,
		"FIDAKUNE_SERVER_HOST":     &cfg.Server.Host,
		"FIDAKUNE_SERVER_MODE":     &cfg.Server.Mode,
		"FIDAKUNE_LOG_LEVEL":       &cfg.Log.Level,
		"FIDAKUNE_LOG_FORMAT":      &cfg.Log.Format,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("FIDAKUNE_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FIDAKUNE_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("FIDAKUNE_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FIDAKUNE_CACHE_TTL: %w", err)
		}
		cfg.Search.CacheTTL = ttl
	}
	return nil
}
