// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/playledger/internal/models"
)

// maxReportDays bounds report ranges.
const maxReportDays = 366

// parseRange reads and validates from, to and store. It writes the error
// response itself and returns false on failure.
func parseRange(w http.ResponseWriter, r *http.Request) (RangeRequest, bool) {
	q := r.URL.Query()
	req := RangeRequest{From: q.Get("from"), To: q.Get("to"), StoreID: q.Get("store")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return req, false
	}

	from, _ := time.Parse(models.DateLayout, req.From)
	to, _ := time.Parse(models.DateLayout, req.To)
	if to.Before(from) {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "to must not be before from", nil)
		return req, false
	}
	if to.Sub(from) >= maxReportDays*24*time.Hour {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "range must not exceed 366 days", nil)
		return req, false
	}
	return req, true
}

// DailyStats returns persisted daily stats for a date range, optionally for
// one store, ordered by (date, store).
//
// @Summary List daily stats
// @Tags Reports
// @Produce json
// @Param from query string true "First store-local date (YYYY-MM-DD)"
// @Param to query string true "Last store-local date (YYYY-MM-DD)"
// @Param store query string false "Restrict to one store ID"
// @Success 200 {object} models.APIResponse{data=[]models.DailyStat} "Daily stats"
// @Failure 400 {object} models.APIResponse "Invalid range"
// @Router /daily-stats [get]
func (h *Handler) DailyStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := parseRange(w, r)
	if !ok {
		return
	}

	stats, err := h.deps.Stats.DailyStatsBetween(r.Context(), req.From, req.To, req.StoreID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to read daily stats", err)
		return
	}
	if stats == nil {
		stats = []models.DailyStat{}
	}
	respondSuccess(w, http.StatusOK, stats, len(stats), start)
}

// Revenue prices validated plays per store over a date range. Amounts are
// computed at read time and never stored.
//
// @Summary Get revenue report
// @Tags Reports
// @Produce json
// @Param from query string true "First store-local date (YYYY-MM-DD)"
// @Param to query string true "Last store-local date (YYYY-MM-DD)"
// @Param store query string false "Restrict to one store ID"
// @Success 200 {object} models.APIResponse{data=revenue.Report} "Revenue report"
// @Failure 400 {object} models.APIResponse "Invalid range"
// @Router /revenue [get]
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := parseRange(w, r)
	if !ok {
		return
	}

	stats, err := h.deps.Stats.DailyStatsBetween(r.Context(), req.From, req.To, req.StoreID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to read daily stats", err)
		return
	}

	report := h.deps.Revenue.Report(req.From, req.To, stats)
	respondSuccess(w, http.StatusOK, report, len(report.Stores), start)
}
