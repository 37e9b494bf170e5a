package http

import (
	"context"
	"net/http"
	"time"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/service"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
)

type statsHandler struct {
	statsSvc service.StatsService
	health   db.HealthChecker
}

func newStatsHandler(statsSvc service.StatsService, health db.HealthChecker) *statsHandler {
	return &statsHandler{
		statsSvc: statsSvc,
		health:   health,
	}
}

// GetStats always answers 200; degraded reads produce the zeroed snapshot.
func (h *statsHandler) GetStats(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, h.statsSvc.Snapshot(r.Context()))
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *statsHandler) Healthz(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if ok, err := h.health.IsHealthy(ctx); err != nil || !ok {
		return writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
	}

	return writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
