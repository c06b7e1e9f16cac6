// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package validation validates API request structs with
// go-playground/validator v10.
//
// A single validator instance is shared process-wide so struct metadata is
// cached once. Failures convert to the API's VALIDATION_ERROR shape:
//
//	type TriggerRequest struct {
//	    Date string `json:"date" validate:"omitempty,datetime=2006-01-02,excluded_with=From"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	}
package validation
