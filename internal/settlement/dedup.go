// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package settlement

import (
	"time"

	"github.com/tomtom215/playledger/internal/models"
)

// Deduplicate collapses raw events to one per (store, source second). The
// first occurrence of a key wins and input order is otherwise preserved.
// It returns the canonical events and the number of duplicates dropped.
func Deduplicate(events []models.RawPlayEvent, offset time.Duration) ([]models.CanonicalEvent, int) {
	seen := make(map[models.EventKey]struct{}, len(events))
	out := make([]models.CanonicalEvent, 0, len(events))
	dropped := 0

	for i := range events {
		e := events[i]
		e.PlayedAt = e.PlayedAt.UTC().Truncate(time.Second)
		k := e.Key()
		if _, dup := seen[k]; dup {
			dropped++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, models.CanonicalEvent{
			RawPlayEvent: e,
			LocalDate:    LocalDate(e.PlayedAt, offset),
		})
	}
	return out, dropped
}
