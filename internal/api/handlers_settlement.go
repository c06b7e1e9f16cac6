// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/models"
	"github.com/tomtom215/playledger/internal/orchestrator"
)

const defaultRunListLimit = 20

// TriggerRun runs a settlement for the requested dates and returns the
// finished RunSummary. The run is detached from the request's
// cancellation so a dropped client connection does not abort it.
//
// @Summary Trigger a settlement run
// @Tags Settlement
// @Accept json
// @Produce json
// @Param request body TriggerRunRequest false "Date or range"
// @Success 200 {object} models.APIResponse{data=models.RunSummary} "Run succeeded"
// @Failure 400 {object} models.APIResponse "Invalid dates"
// @Failure 409 {object} models.APIResponse "A run is already in progress"
// @Failure 500 {object} models.APIResponse{data=models.RunSummary} "Run failed"
// @Router /settlement/runs [post]
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req TriggerRunRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	from, to := req.dates()
	ctx := context.WithoutCancel(r.Context())
	summary, err := h.deps.Settler.Run(ctx, orchestrator.Request{
		From:    from,
		To:      to,
		Trigger: models.TriggerManual,
	})

	switch {
	case errors.Is(err, orchestrator.ErrRunInProgress):
		respondError(w, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
	case errors.Is(err, orchestrator.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
	case err != nil && summary != nil:
		logging.Ctx(r.Context()).Warn().Str("run_id", summary.RunID).Str("cause", summary.Cause).Msg("Triggered run failed")
		respondJSON(w, http.StatusInternalServerError, &models.APIResponse{
			Status: "error",
			Data:   summary,
			Metadata: models.Metadata{
				Timestamp:   time.Now().UTC(),
				QueryTimeMS: time.Since(start).Milliseconds(),
			},
			Error: &models.APIError{
				Code:    ErrCodeRunFailed,
				Message: summary.Cause,
				Details: map[string]interface{}{"run_id": summary.RunID, "state": summary.State},
			},
		})
	case err != nil:
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Settlement run failed", err)
	default:
		respondSuccess(w, http.StatusOK, summary, 0, start)
	}
}

// ListRuns returns the most recent run summaries, newest first.
//
// @Summary List recent runs
// @Tags Settlement
// @Produce json
// @Param limit query int false "Number of runs" minimum(1) maximum(500) default(20)
// @Success 200 {object} models.APIResponse{data=[]models.RunSummary} "Run summaries"
// @Failure 400 {object} models.APIResponse "Invalid limit"
// @Router /settlement/runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := RunListRequest{Limit: getIntParam(r, "limit", defaultRunListLimit)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	runs, err := h.deps.Runs.RecentRuns(r.Context(), req.Limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to read run log", err)
		return
	}
	if runs == nil {
		runs = []models.RunSummary{}
	}
	respondSuccess(w, http.StatusOK, runs, len(runs), start)
}

// GetRun returns one run summary by ID.
//
// @Summary Get a run
// @Tags Settlement
// @Produce json
// @Param id path string true "Run ID" format(uuid)
// @Success 200 {object} models.APIResponse{data=models.RunSummary} "Run summary"
// @Failure 404 {object} models.APIResponse "Run not found"
// @Router /settlement/runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := RunIDRequest{ID: chi.URLParam(r, "id")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	run, err := h.deps.Runs.Run(r.Context(), req.ID)
	if errors.Is(err, models.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Run not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to read run log", err)
		return
	}
	respondSuccess(w, http.StatusOK, run, 0, start)
}

// ValidateSettlement recomputes daily stats for a range and reports where
// they differ from the persisted ones. Nothing is collected or written.
//
// @Summary Validate persisted daily stats
// @Tags Settlement
// @Produce json
// @Param from query string false "First store-local date (YYYY-MM-DD)"
// @Param to query string false "Last store-local date (YYYY-MM-DD)"
// @Success 200 {object} models.APIResponse{data=models.ValidationReport} "Validation report"
// @Router /settlement/validate [get]
func (h *Handler) ValidateSettlement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := r.URL.Query()
	req := ValidateRequest{From: q.Get("from"), To: q.Get("to")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	report, err := h.deps.Settler.Validate(r.Context(), req.From, req.To)
	if errors.Is(err, orchestrator.ErrInvalidRequest) {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Validation failed", err)
		return
	}
	respondSuccess(w, http.StatusOK, report, len(report.Mismatches), start)
}
