// Package server wires the HTTP routes, middleware chain and lifecycle
// of the API server.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockroom/internal/config"
	"stockroom/internal/server/auth"
	"stockroom/internal/server/handlers"
	"stockroom/internal/server/middleware"
	"stockroom/internal/server/storage"
	"stockroom/internal/server/storage/sqlite"
)

// Store is the full persistence surface the server needs
type Store interface {
	storage.UserStorage
	storage.ItemStorage
	handlers.Pinger
}

// Server is the HTTP API server
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	limiter    *middleware.RateLimiter
}

// New builds the server: handlers, routes and the middleware chain
func New(cfg *config.Config, logger *slog.Logger, store Store) *Server {
	tokenCfg := auth.TokenConfig{
		Secret:         []byte(cfg.SecretKey),
		AccessTokenTTL: cfg.AccessTokenTTL,
	}

	authHandler := handlers.NewAuthHandler(logger, store, tokenCfg)
	itemsHandler := handlers.NewItemsHandler(logger, store, store, tokenCfg)
	usersHandler := handlers.NewUsersHandler(logger, store, tokenCfg)
	healthHandler := handlers.NewHealthHandler(logger, store, cfg.AppVersion)

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", rootHandler(logger, cfg))
	mux.HandleFunc("GET /health", healthHandler.Health)
	if cfg.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Credential endpoints sit behind the brute-force rate limit
	mux.Handle("POST /api/v1/auth/register", limiter.Middleware(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/v1/auth/token", limiter.Middleware(http.HandlerFunc(authHandler.Token)))
	mux.HandleFunc("GET /api/v1/auth/me", authHandler.Me)

	mux.HandleFunc("GET /api/v1/items/{$}", itemsHandler.List)
	mux.HandleFunc("POST /api/v1/items/{$}", itemsHandler.Create)
	mux.HandleFunc("GET /api/v1/items/my-items", itemsHandler.MyItems)
	mux.HandleFunc("GET /api/v1/items/{id}", itemsHandler.Get)
	mux.HandleFunc("PUT /api/v1/items/{id}", itemsHandler.Update)
	mux.HandleFunc("DELETE /api/v1/items/{id}", itemsHandler.Delete)

	mux.HandleFunc("GET /api/v1/users/{$}", usersHandler.List)
	mux.HandleFunc("GET /api/v1/users/{id}", usersHandler.Get)
	mux.HandleFunc("PUT /api/v1/users/{id}", usersHandler.Update)
	mux.HandleFunc("DELETE /api/v1/users/{id}", usersHandler.Delete)

	var handler http.Handler = mux

	handler = middleware.APIKey(middleware.APIKeyConfig{
		Enabled:      cfg.EnableAPIKeyAuth,
		Header:       cfg.APIKeyHeader,
		Keys:         cfg.APIKeys,
		ExcludePaths: cfg.ExcludeAPIKeyPaths,
		Debug:        cfg.Debug,
	})(handler)
	handler = middleware.SecurityHeaders(handler)
	if cfg.EnableMetrics {
		metrics := middleware.NewMetrics("stockroom", prometheus.DefaultRegisterer)
		handler = metrics.Middleware(handler)
	}
	handler = middleware.LoggingWithSkip(logger, []string{"/health", "/metrics"})(handler)
	handler = middleware.Recovery(logger)(handler)

	return &Server{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		limiter: limiter,
	}
}

// rootHandler returns a small service banner
func rootHandler(logger *slog.Logger, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]string{
			"message": "Welcome to " + cfg.AppName,
			"version": cfg.AppVersion,
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to encode root response", slog.Any("error", err))
		}
	}
}

// Run starts the server and blocks until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errC := make(chan error, 1)

	go func() {
		s.logger.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	select {
	case err := <-errC:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.limiter.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

// sqlite.Storage satisfies the full persistence surface
var _ Store = (*sqlite.Storage)(nil)
