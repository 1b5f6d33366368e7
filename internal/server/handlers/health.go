package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"stockroom/pkg/api"
)

// Pinger probes backing-store connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health derived from a store probe
type HealthHandler struct {
	logger  *slog.Logger
	db      Pinger
	version string
}

// NewHealthHandler creates the health check handler
func NewHealthHandler(logger *slog.Logger, db Pinger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		db:      db,
		version: version,
	}
}

// Health handles GET /health.
// Always responds 200; the body carries the derived status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "healthy"
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "database probe failed", slog.Any("error", err))
		dbStatus = "unhealthy"
	}

	sendJSON(h.logger, w, api.HealthResponse{
		Status:    dbStatus,
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Database:  dbStatus,
	}, http.StatusOK)
}
