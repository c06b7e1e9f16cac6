// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package settlement

import (
	"time"

	"github.com/tomtom215/playledger/internal/models"
)

// Params are the per-run settlement parameters.
type Params struct {
	Offset   time.Duration
	DailyCap int

	// From and To restrict output to store-local dates in [From, To]. Raw
	// events are loaded with a window that already matches, so this only
	// matters to callers that pass wider event sets.
	From, To string
}

// Result is the output of Compute.
type Result struct {
	Canonical   int
	Duplicates  int
	Aggregation *Aggregation
	Stats       []models.DailyStat
}

// Compute runs dedup, filter and aggregation over raw events. It is the one
// path used both by settlement runs and by validation, so the two can never
// disagree on the algorithm.
func Compute(raw []models.RawPlayEvent, allow AllowList, stores map[string]models.MonitoredStore, p Params, now time.Time) *Result {
	canonical, dups := Deduplicate(raw, p.Offset)

	if p.From != "" || p.To != "" {
		kept := canonical[:0]
		for _, e := range canonical {
			if p.From != "" && e.LocalDate < p.From {
				continue
			}
			if p.To != "" && e.LocalDate > p.To {
				continue
			}
			kept = append(kept, e)
		}
		canonical = kept
	}

	agg := Aggregate(canonical, allow, p.DailyCap)
	return &Result{
		Canonical:   len(canonical),
		Duplicates:  dups,
		Aggregation: agg,
		Stats:       agg.DailyStats(stores, now),
	}
}

// StoreIndex maps a store list by ID.
func StoreIndex(stores []models.MonitoredStore) map[string]models.MonitoredStore {
	m := make(map[string]models.MonitoredStore, len(stores))
	for _, s := range stores {
		m[s.ID] = s
	}
	return m
}
