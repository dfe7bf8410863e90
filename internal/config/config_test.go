package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 24*time.Hour, cfg.Search.CacheTTL)
	assert.Equal(t, 5, cfg.Graph.MaxDepth)
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fidakune.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  vocabulary_url: https://example.org/vocabulary.json
  lenient_json: true
search:
  cache_ttl: 1h
  history_size: 10
graph:
  default_depth: 3
server:
  port: 9000
`), 0o644))

	t.Setenv("FIDAKUNE_SERVER_PORT", "9100")
	t.Setenv("FIDAKUNE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/vocabulary.json", cfg.Sources.VocabularyURL)
	assert.True(t, cfg.Sources.LenientJSON)
	assert.Equal(t, time.Hour, cfg.Search.CacheTTL)
	assert.Equal(t, 10, cfg.Search.HistorySize)
	assert.Equal(t, 3, cfg.Graph.DefaultDepth)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 1000, cfg.Search.CacheSize)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("graph:\n  default_depth: 9\n  max_depth: 5\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed\n"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	t.Setenv("FIDAKUNE_SERVER_PORT", "eighty")
	_, err = LoadConfig("")
	assert.Error(t, err)
}
