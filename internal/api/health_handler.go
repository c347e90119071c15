package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/adeotasks/adeo-api/internal/api/shared"
)

// Pinger reports database reachability. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Reminder string `json:"reminder"`
}

// HealthHandler serves the health check endpoint.
type HealthHandler struct {
	db              Pinger
	remindersActive bool
	logger          *slog.Logger
}

// NewHealthHandler creates a HealthHandler. remindersActive reports whether
// the reminder poller was started.
func NewHealthHandler(db Pinger, remindersActive bool, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		db:              db,
		remindersActive: remindersActive,
		logger:          logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health requests
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "ok", Reminder: "disabled"}
	if h.remindersActive {
		resp.Reminder = "running"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("database ping failed", slog.String("error", err.Error()))
			resp.Status, resp.Database = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	shared.RespondWithJSON(w, r, status, resp)
}
