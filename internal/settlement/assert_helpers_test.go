// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package settlement

import (
	"testing"
	"time"

	"github.com/tomtom215/playledger/internal/models"
)

// checkIntEqual checks that got equals want
func checkIntEqual(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, got)
	}
}

// checkStringEqual checks that got equals want
func checkStringEqual(t *testing.T, fieldName, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %q, got %q", fieldName, want, got)
	}
}

// play builds a raw event at a UTC instant
func play(store, track, artist string, at time.Time) models.RawPlayEvent {
	return models.RawPlayEvent{StoreID: store, Track: track, Artist: artist, PlayedAt: at}
}

// plays builds n raw events one minute apart
func plays(store, track, artist string, start time.Time, n int) []models.RawPlayEvent {
	out := make([]models.RawPlayEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, play(store, track, artist, start.Add(time.Duration(i)*time.Minute)))
	}
	return out
}
