// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package api

// Request structs validated with go-playground/validator v10 tags.
//
// Dates are store-local calendar dates (YYYY-MM-DD). Cross-field tags name
// Go fields; error messages use the json names.

// TriggerRunRequest is the body of POST /api/v1/settlement/runs. Date is
// shorthand for From == To == Date and excludes From and To. An empty body
// settles yesterday.
type TriggerRunRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02,excluded_with=From To"`
	From string `json:"from" validate:"required_with=To,omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

// dates returns the requested range, expanding Date.
func (r *TriggerRunRequest) dates() (from, to string) {
	if r.Date != "" {
		return r.Date, r.Date
	}
	return r.From, r.To
}

// RunListRequest holds the query parameters of GET /api/v1/settlement/runs.
type RunListRequest struct {
	Limit int `json:"limit" validate:"min=1,max=500"`
}

// RunIDRequest holds the path parameter of GET /api/v1/settlement/runs/{id}.
type RunIDRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// ValidateRequest holds the query parameters of GET /api/v1/settlement/validate.
// Both empty validates yesterday.
type ValidateRequest struct {
	From string `json:"from" validate:"required_with=To,omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

// RangeRequest holds the query parameters of the report endpoints.
type RangeRequest struct {
	From    string `json:"from" validate:"required,datetime=2006-01-02"`
	To      string `json:"to" validate:"required,datetime=2006-01-02"`
	StoreID string `json:"store" validate:"omitempty,max=128"`
}
