package server

import (
	"context"
	"fmt"
	"net/http"

	"fidakune/internal/config"
	"fidakune/internal/retrieval"
	"fidakune/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes the search engine and the graph explorer over HTTP.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	engine   *search.Engine
	explorer *retrieval.Explorer
	metrics  *Metrics
	logger   *zap.Logger
	server   *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, engine *search.Engine, explorer *retrieval.Explorer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		config:   cfg,
		engine:   engine,
		explorer: explorer,
		logger:   logger,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.metrics = NewMetrics("fidakune", s.engine, s.explorer)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(loggingMiddleware(s.logger, s.metrics))

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/search", s.search)
		v1.GET("/explore", s.explore)
		v1.GET("/words", s.words)
		v1.GET("/words/:word", s.word)
		v1.GET("/stats", s.stats)
		v1.GET("/conflicts", s.conflicts)
		v1.GET("/history", s.history)
		v1.POST("/review", s.review)
	}
}

// Handler returns the configured router. Setup must have been called.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	return s.server.Shutdown(ctx)
}
