// Package httpapi serves the vocal assistant as a JSON HTTP API using gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP API server.
type Server struct {
	ports    *Ports
	engine   *gin.Engine
	chartDir string
}

// Option configures a Server.
type Option func(*Server)

// WithChartDir serves rendered chart files from dir under /charts.
func WithChartDir(dir string) Option {
	return func(s *Server) {
		s.chartDir = dir
	}
}

// NewServer creates the server and registers all routes.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), RequestID(), RequestLogger())
	s.registerRoutes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api")
	api.POST("/ask", s.ask)
	api.GET("/search", s.search)
	api.GET("/stats", s.stats)
	api.GET("/charts", s.chartCatalog)
	api.POST("/charts", s.createChart)
	api.POST("/index", s.rebuild)

	if s.chartDir != "" {
		s.engine.GET("/charts/:name", s.chartFile)
	}
}
