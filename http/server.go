// Package http serves the detection form, the JSON API and the websocket
// prediction channel.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Server HTTP server
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

// ServerConfig server settings
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
	// RateLimit is requests per second across the process; 0 disables it.
	RateLimit rate.Limit
	RateBurst int
}

// DefaultServerConfig default server settings
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8501,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   64 << 10,
	}
}

// NewServer wires handlers behind the middleware chain.
func NewServer(config ServerConfig, handlers *Handlers, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	handlers.Register(mux)

	middlewares := []Middleware{
		RecoveryMiddleware(logger), // outermost so it sees every panic
		LoggerMiddleware(logger),
		SecurityHeadersMiddleware,
		CORSMiddleware(config.AllowedOrigins),
	}
	if config.RateLimit > 0 {
		middlewares = append(middlewares, RateLimitMiddleware(config.RateLimit, config.RateBurst))
	}
	if config.MaxBodyBytes > 0 {
		middlewares = append(middlewares, RequestSizeMiddleware(config.MaxBodyBytes))
	}
	if config.Timeout > 0 {
		middlewares = append(middlewares, TimeoutMiddleware(config.Timeout))
	}

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port),
			Handler:           Chain(middlewares...)(mux),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		config: config,
		logger: logger,
	}
}

// Start blocks serving until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests for up to five seconds.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Handler exposes the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
