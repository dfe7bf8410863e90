package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fidakune/internal/config"
	"fidakune/internal/graph"
	"fidakune/internal/loader"
	"fidakune/internal/logging"
	"fidakune/internal/retrieval"
	"fidakune/internal/search"
	"fidakune/internal/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "fidakune",
	Short:         "Lexicon lookup and relationship explorer for the Fidakune language",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "fidakune.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("db", "d", "", "Path to the local snapshot database (SQLite)")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.SetEnvPrefix("FIDAKUNE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
}

// app holds everything a command needs once snapshots are loaded.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *storage.SQLiteStore
	loaded   *loader.Loaded
	engine   *search.Engine
	explorer *retrieval.Explorer
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	a.logger.Sync()
}

// initConfig loads the config file, then lets flags override it.
func initConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(viper.GetString("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if lvl := viper.GetString("log.level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if p := viper.GetString("store.path"); p != "" {
		cfg.Sources.StorePath = p
	}
	return cfg, cfg.Validate()
}

// bootstrap loads vocabulary and graph through the source chains and builds both engines.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := initConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	if cfg.Sources.StorePath != "" {
		store, err := storage.NewSQLiteStore(cfg.Sources.StorePath)
		if err != nil {
			logger.Warn("local store unavailable", zap.String("path", cfg.Sources.StorePath), zap.Error(err))
		} else {
			a.store = store
		}
	}

	vocab, graphs := buildChains(cfg, a.store, logger)
	loaded, err := loader.LoadAll(ctx, vocab, graphs)
	if err != nil {
		a.Close()
		return nil, err
	}

	// The builtin graph only describes the builtin vocabulary.
	if loaded.Graph.Source == "builtin" && loaded.Vocabulary.Source != "builtin" {
		nodes, edges := graph.FromCollection(loaded.Vocabulary.Collection)
		g, err := graph.Load(nodes, edges, graphs.Limits)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("derive graph from vocabulary: %w", err)
		}
		loaded.Graph.Graph = g
		loaded.Graph.Source = "derived"
	}
	a.loaded = loaded

	a.engine = search.NewEngine(loaded.Vocabulary.Collection, search.Config{
		CacheTTL:              cfg.Search.CacheTTL,
		CacheSize:             cfg.Search.CacheSize,
		HistorySize:           cfg.Search.HistorySize,
		MaxQueryLength:        cfg.Search.MaxQueryLength,
		ContainmentConfidence: cfg.Search.ContainmentConfidence,
		DomainBonus:           cfg.Search.DomainBonus,
	}, search.WithLogger(logger))
	a.explorer = retrieval.NewExplorer(loaded.Graph.Graph, retrieval.Config{
		DefaultDepth:   cfg.Graph.DefaultDepth,
		MaxDepth:       cfg.Graph.MaxDepth,
		MaxQueryLength: cfg.Search.MaxQueryLength,
	}, retrieval.WithLogger(logger))

	logger.Debug("snapshots loaded",
		zap.String("vocabulary_source", loaded.Vocabulary.Source),
		zap.String("graph_source", loaded.Graph.Source),
		zap.Int("entries", loaded.Vocabulary.Collection.Len()),
		zap.Int("nodes", loaded.Graph.Graph.NodeCount()))
	return a, nil
}

func buildChains(cfg *config.Config, store *storage.SQLiteStore, logger *zap.Logger) (*loader.Chain, *loader.Chain) {
	var vocabSources, graphSources []loader.Source
	if cfg.Sources.VocabularyURL != "" || cfg.Sources.GraphURL != "" {
		h := loader.NewHTTPSource(cfg.Sources.VocabularyURL, cfg.Sources.GraphURL, cfg.Sources.Timeout,
			loader.BreakerSettings{
				MaxFailures: cfg.Sources.Breaker.MaxFailures,
				OpenTimeout: cfg.Sources.Breaker.OpenTimeout,
			}, logger)
		vocabSources = append(vocabSources, h)
		graphSources = append(graphSources, h)
	}

	files := &loader.FileSource{
		VocabularyPath: existing(cfg.Sources.VocabularyFile),
		GraphPath:      existing(cfg.Sources.GraphFile),
		Lenient:        cfg.Sources.LenientJSON,
	}
	vocabSources = append(vocabSources, files)
	graphSources = append(graphSources, files)

	if md := existing(cfg.Sources.MarkdownFile); md != "" {
		vocabSources = append(vocabSources, &loader.MarkdownSource{Path: md})
	}

	if store != nil {
		vocabSources = append(vocabSources, &loader.StoreSource{Store: store})
		graphSources = append(graphSources, &loader.StoreSource{Store: store})
	}

	vocabSources = append(vocabSources, loader.BuiltinSource{})
	graphSources = append(graphSources, loader.BuiltinSource{})

	limits := graph.Limits{MaxNodes: cfg.Graph.MaxNodes, MaxEdges: cfg.Graph.MaxEdges}
	vocab := &loader.Chain{Sources: vocabSources, Limits: limits, Logger: logger}
	graphs := &loader.Chain{Sources: graphSources, Limits: limits, Logger: logger}
	if cfg.Sources.WriteBack && store != nil {
		vocab.WriteBack = store
		graphs.WriteBack = store
	}
	return vocab, graphs
}

// existing returns path when a file is there, so absent defaults fall through quietly.
func existing(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
