package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/singhpravendra/user-service/internal/logger"
)

// readinessTimeout bounds the fan-out to dependency checks.
const readinessTimeout = 5 * time.Second

// ReadinessCheck probes one dependency the service needs before accepting
// traffic, e.g. the storage backend or the event broker.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandlers serves the liveness and readiness probes.
type HealthHandlers struct {
	Service string
	Checks  []ReadinessCheck
}

type healthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	TraceID   string `json:"trace_id"`
}

func (h *HealthHandlers) status(ctx context.Context, status string) healthStatus {
	return healthStatus{
		Status:    status,
		Service:   h.Service,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   logger.TraceID(ctx),
	}
}

// Health handles GET /health.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status(r.Context(), "healthy"))
}

// Live handles GET /health/live.
func (h *HealthHandlers) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status(r.Context(), "alive"))
}

// Ready handles GET /health/ready. All registered checks run concurrently;
// any failure reports 503 not_ready.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range h.Checks {
		g.Go(func() error {
			if err := c.Check(gctx); err != nil {
				slog.Warn("readiness check failed",
					"check", c.Name,
					"error", err,
					"trace_id", logger.TraceID(r.Context()),
				)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, h.status(r.Context(), "not_ready"))
		return
	}
	writeJSON(w, http.StatusOK, h.status(r.Context(), "ready"))
}
