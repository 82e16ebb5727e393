package api

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"batchkit/internal/auth"
	"batchkit/internal/batch"
	"batchkit/internal/config"
	"batchkit/internal/logging"
)

// Options configures the HTTP server
type Options struct {
	Addr         string
	PathPrefix   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Batch        BatchOptions
	Auth         *auth.Verifier // nil disables bearer auth
	Compression  bool
}

// OptionsFromConfig maps the loaded configuration to server options
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		Addr:         cfg.Address(),
		PathPrefix:   cfg.Server.PathPrefix,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
		Batch: BatchOptions{
			MaxOperations: cfg.Batch.MaxOperations,
			MaxBodyBytes:  cfg.Batch.MaxBodyBytes,
		},
		Compression: cfg.Compression.Enabled,
	}
	if cfg.Auth.Enabled {
		opts.Auth = auth.NewVerifier(cfg.Auth.TokenHashes)
	}
	return opts
}

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// Server represents the HTTP API server
type Server struct {
	router *http.ServeMux
	server *http.Server
	opts   Options
	logger *logging.Logger

	mu      sync.RWMutex
	routes  []string
	checks  map[string]HealthCheck
	started time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(opts Options, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	opts.Batch = opts.Batch.withDefaults()

	s := &Server{
		opts:    opts,
		logger:  logger,
		router:  http.NewServeMux(),
		checks:  make(map[string]HealthCheck),
		started: time.Now(),
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.applyMiddleware(s.router),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Mount exposes d as POST /{prefix}/{resource}/batch and returns that route.
// Responses report {prefix}/{resource} as their base path.
func Mount[In, Id any](s *Server, resource string, d *batch.Dispatcher[In, Id]) string {
	basePath := BasePath(s.opts.PathPrefix, resource)
	route := "/" + basePath + "/batch"

	s.router.Handle(route, NewBatchHandler(d, basePath, s.opts.Batch, s.logger))

	s.mu.Lock()
	s.routes = append(s.routes, route)
	s.mu.Unlock()

	s.logger.Debug("Batch resource mounted", map[string]interface{}{
		"route":      route,
		"operations": operationNames(d.Operations()),
	})
	return route
}

// BasePath joins prefix and resource without leading or trailing slashes
func BasePath(prefix, resource string) string {
	return strings.Trim(path.Join("/", prefix, resource), "/")
}

// AddHealthCheck registers a check consulted by GET /health
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Routes returns the mounted batch routes
func (s *Server) Routes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.routes...)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", map[string]interface{}{
		"addr":        s.opts.Addr,
		"routes":      s.Routes(),
		"auth":        s.opts.Auth != nil,
		"compression": s.opts.Compression,
	})

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", nil)

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully", nil)
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	if s.opts.Compression {
		handler = CompressionMiddleware()(handler)
	}
	if s.opts.Auth != nil {
		handler = AuthMiddleware(s.opts.Auth, s.logger, "/health", "/")(handler)
	}
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware()(handler)
	return handler
}
