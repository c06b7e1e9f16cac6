// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package validation

import (
	"strings"
	"sync"
	"testing"
)

type triggerRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02,excluded_with=From"`
	From string `json:"from" validate:"required_with=To,omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type listRequest struct {
	Limit   int    `json:"limit" validate:"gte=1,lte=500"`
	StoreID string `json:"store_id" validate:"omitempty,max=64"`
	Name    string `validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"valid trigger", &triggerRequest{Date: "2024-03-02"}, "", "", ""},
		{"valid range", &triggerRequest{From: "2024-03-01", To: "2024-03-02"}, "", "", ""},
		{"empty trigger", &triggerRequest{}, "", "", ""},
		{"bad date", &triggerRequest{Date: "03/02/2024"}, "date", "datetime", "date must be a date in the format 2006-01-02"},
		{"date with from", &triggerRequest{Date: "2024-03-02", From: "2024-03-01"}, "date", "excluded_with", "date cannot be combined with From"},
		{"to without from", &triggerRequest{To: "2024-03-02"}, "from", "required_with", "from is required when To is set"},
		{"limit too high", &listRequest{Limit: 501, Name: "x"}, "limit", "lte", "limit must be less than or equal to 500"},
		{"store id too long", &listRequest{Limit: 1, StoreID: strings.Repeat("s", 65), Name: "x"}, "store_id", "max", "store_id must be at most 64 characters"},
		{"go name fallback", &listRequest{Limit: 1}, "Name", "required", "Name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verr := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("errors = %v", errs)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("field/tag = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	single := ValidateStruct(&triggerRequest{Date: "bad"}).ToAPIError()
	if single.Code != "VALIDATION_ERROR" || single.Details["field"] != "date" {
		t.Errorf("single = %+v", single)
	}

	multi := ValidateStruct(&listRequest{Limit: 0}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("details = %+v", multi.Details)
	}
	if !strings.Contains(multi.Message, "limit:") || !strings.Contains(multi.Message, "Name:") {
		t.Errorf("message = %q", multi.Message)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty = %+v", empty)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	got := make([]interface{}, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = GetValidator()
		}(i)
	}
	wg.Wait()
	for i := range got {
		if got[i] != got[0] {
			t.Fatal("GetValidator returned different instances")
		}
	}
}
