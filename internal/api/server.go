// Package api serves the solver over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/piwi3910/BoxPack/internal/config"
	"github.com/piwi3910/BoxPack/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// Server wraps an http.Server running the gin engine with graceful shutdown.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	engine  *gin.Engine
	server  *http.Server
}

// NewServer builds the engine and registers the routes. m may be nil, in
// which case no metrics are collected or exposed.
func NewServer(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, logger: logger, metrics: m}

	middlewares := []gin.HandlerFunc{gin.Recovery(), RequestID(), Logger(logger)}
	if m != nil {
		middlewares = append(middlewares, Metrics(m))
	}
	middlewares = append(middlewares, MaxBodyBytes(cfg.Server.MaxBodyBytes))

	engine := gin.New()
	engine.Use(middlewares...)
	s.engine = engine
	s.routes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := s.engine.Group("/v1")
	v1.POST("/solve", s.solve)
	v1.POST("/compare", s.compare)
	v1.POST("/generate", s.generate)
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting HTTP server", "addr", s.cfg.Server.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server stopping")
		return s.Stop(context.Background())
	case err := <-errChan:
		return err
	}
}

// Stop waits up to five seconds for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
