package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"dataquery-hq/dataquery/pkg/config"
	"dataquery-hq/dataquery/pkg/security/auth"
	"dataquery-hq/dataquery/pkg/server/handlers"
	"dataquery-hq/dataquery/pkg/server/middleware"
	"dataquery-hq/dataquery/pkg/telemetry/health"
)

// Build information, set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Server is the HTTP API server for the query service.
type Server struct {
	config       *config.Config
	handlers     *handlers.Handlers
	health       *health.Checker
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new API server. The handlers bundle carries the
// stores and optional components; nil optional components disable their
// routes.
func NewServer(cfg *config.Config, h *handlers.Handlers) *Server {
	checker := health.New(0)
	if h.Datasource != nil {
		checker.RegisterCheck("datasource", h.Datasource.Ping)
	}
	if h.History != nil {
		checker.RegisterCheck("app_store", h.History.Ping)
	}

	return &Server{
		config:       cfg,
		handlers:     h,
		health:       checker,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting API server",
			"address", s.config.Server.ListenAddress,
			"auth_enabled", s.config.Security.Auth.Enabled,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("API server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	h := s.handlers

	api := http.NewServeMux()

	// Catalog browsing.
	api.HandleFunc("GET /databases", h.ListDatabases)
	api.HandleFunc("GET /databases/{id}/tables", h.ListTables)
	api.HandleFunc("GET /databases/{id}/tables/{table}/columns", h.ListColumns)
	api.HandleFunc("POST /databases/test-connection", h.TestConnection)

	// Query execution and history.
	api.HandleFunc("POST /query/execute", h.ExecuteQuery)
	api.HandleFunc("POST /query/count", h.CountQuery)
	api.HandleFunc("GET /query/history", h.QueryHistory)
	api.HandleFunc("POST /query/save", h.SaveQuery)
	api.HandleFunc("GET /query/saved", h.ListSavedQueries)
	api.HandleFunc("DELETE /query/saved/{id}", h.DeleteSavedQuery)

	// Table browsing and export.
	api.HandleFunc("GET /data", h.GetData)
	api.HandleFunc("GET /data/export", h.ExportData)
	api.HandleFunc("GET /data/stats/{table}", h.TableStats)

	// Application settings. Updates are admin-only when auth is on.
	api.HandleFunc("GET /settings", h.GetSettings)
	api.Handle("PUT /settings", auth.RequireRole(auth.RoleAdmin, http.HandlerFunc(h.UpdateSettings)))

	// Dashboard and analysis.
	api.HandleFunc("GET /stats", h.Stats)
	api.HandleFunc("POST /stratify", h.Stratify)

	// Theories and distribution.
	api.HandleFunc("POST /theories", h.CreateTheory)
	api.HandleFunc("GET /theories", h.ListTheories)
	api.HandleFunc("POST /distribution/run", h.RunDistribution)
	api.HandleFunc("GET /distribution/status", h.DistributionStatus)

	var apiHandler http.Handler = api
	if s.config.Security.Auth.Enabled {
		validator := auth.NewAPIKeyValidator(convertAPIKeys(s.config.Security.Auth.Keys))
		apiHandler = auth.NewAPIKeyMiddleware(validator, nil).Handle(apiHandler)
	}

	// Probes and metrics stay unauthenticated.
	mux := http.NewServeMux()
	mux.Handle("/", apiHandler)
	mux.HandleFunc("/health", s.health.LivenessHandler())
	mux.HandleFunc("/ready", s.health.ReadinessHandler())
	mux.HandleFunc("/version", health.VersionHandler(Version, Commit, BuildTime))
	if s.config.Telemetry.Metrics.IsEnabled() && h.Metrics != nil {
		mux.Handle(s.config.Telemetry.Metrics.Path, h.Metrics.Handler())
	}

	// Apply middleware chain, innermost first.
	var handler http.Handler = mux

	handler = middleware.TimeoutMiddleware(s.config.Server.RequestTimeout)(handler)

	corsConfig := s.convertCORSConfig()
	handler = middleware.CORSMiddleware(corsConfig)(handler)

	handler = middleware.RequestIDMiddleware(handler)

	handler = middleware.LoggingMiddleware(handler)

	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// convertAPIKeys converts configured keys into validator entries. Keys
// default to enabled unless explicitly disabled.
func convertAPIKeys(keys []config.APIKeyConfig) []*auth.APIKeyInfo {
	infos := make([]*auth.APIKeyInfo, 0, len(keys))
	for _, k := range keys {
		enabled := k.Enabled == nil || *k.Enabled
		infos = append(infos, &auth.APIKeyInfo{
			Key:     k.Key,
			UserID:  k.UserID,
			Role:    k.Role,
			Enabled: enabled,
		})
	}
	return infos
}

// convertCORSConfig converts config.CORSConfig to middleware.CORSConfig.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	cors := s.config.Server.CORS
	return &middleware.CORSConfig{
		Enabled:          cors.IsEnabled(),
		AllowedOrigins:   cors.AllowedOrigins,
		AllowedMethods:   cors.AllowedMethods,
		AllowedHeaders:   cors.AllowedHeaders,
		ExposedHeaders:   cors.ExposedHeaders,
		MaxAge:           cors.MaxAge,
		AllowCredentials: cors.AllowCredentials,
	}
}
