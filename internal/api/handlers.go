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
	"github.com/tomtom215/playledger/internal/orchestrator"
	"github.com/tomtom215/playledger/internal/revenue"
)

// Settler triggers and validates settlement runs.
type Settler interface {
	Run(ctx context.Context, req orchestrator.Request) (*models.RunSummary, error)
	Validate(ctx context.Context, from, to string) (*models.ValidationReport, error)
	Active() []models.RunSummary
}

// RunLog reads recorded run summaries.
type RunLog interface {
	RecentRuns(ctx context.Context, limit int) ([]models.RunSummary, error)
	Run(ctx context.Context, runID string) (*models.RunSummary, error)
}

// StatReader reads persisted daily stats.
type StatReader interface {
	DailyStatsBetween(ctx context.Context, from, to, storeID string) ([]models.DailyStat, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of Handler. WebSocket may be nil, in which
// case /api/v1/ws is not routed.
type Deps struct {
	Settler   Settler
	Runs      RunLog
	Stats     StatReader
	Storage   Pinger
	Revenue   *revenue.Calculator
	WebSocket http.Handler
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor
//   - handlers_helpers.go: response and parameter helpers
//   - handlers_health.go: health endpoint
//   - handlers_settlement.go: run trigger, run log and validation
//   - handlers_reports.go: daily stats and revenue reports
type Handler struct {
	deps      Deps
	startTime time.Time
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		deps:      deps,
		startTime: time.Now(),
	}
}
