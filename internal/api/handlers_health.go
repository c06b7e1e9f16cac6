// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/playledger/internal/models"
)

// HealthStatus is the payload of GET /api/v1/health.
type HealthStatus struct {
	Status     string              `json:"status"` // "healthy" or "degraded"
	StorageOK  bool                `json:"storage_ok"`
	Uptime     float64             `json:"uptime_seconds"`
	ActiveRuns []models.RunSummary `json:"active_runs"`
	LastRun    *models.RunSummary  `json:"last_run,omitempty"`
}

// Health reports liveness, storage connectivity and the most recent run.
// A failed storage ping reports "degraded" with status 200.
//
// @Summary Get service health
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=HealthStatus} "Health status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:     "healthy",
		StorageOK:  h.deps.Storage != nil && h.deps.Storage.Ping(ctx) == nil,
		Uptime:     time.Since(h.startTime).Seconds(),
		ActiveRuns: []models.RunSummary{},
	}
	if !status.StorageOK {
		status.Status = "degraded"
	}
	if h.deps.Settler != nil {
		status.ActiveRuns = append(status.ActiveRuns, h.deps.Settler.Active()...)
	}
	if h.deps.Runs != nil && status.StorageOK {
		if runs, err := h.deps.Runs.RecentRuns(ctx, 1); err == nil && len(runs) > 0 {
			status.LastRun = &runs[0]
		}
	}

	respondSuccess(w, http.StatusOK, status, 0, start)
}
