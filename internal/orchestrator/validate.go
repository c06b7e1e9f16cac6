// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/playledger/internal/models"
	"github.com/tomtom215/playledger/internal/registry"
	"github.com/tomtom215/playledger/internal/settlement"
)

// Validate recomputes the daily stats of from..to from stored raw events
// and compares them with the persisted stats. Nothing is collected or
// written. Empty from defaults to yesterday in store-local time.
func (o *Orchestrator) Validate(ctx context.Context, from, to string) (*models.ValidationReport, error) {
	req, err := o.Resolve(Request{From: from, To: to})
	if err != nil {
		return nil, err
	}
	snap, err := registry.Load(ctx, o.deps.Registry)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	start, end, err := settlement.RangeWindow(req.From, req.To, o.opts.Offset)
	if err != nil {
		return nil, err
	}

	result, err := o.compute(ctx, snap, req.From, req.To, start, end)
	if err != nil {
		return nil, err
	}
	persisted, err := o.deps.Store.DailyStatsBetween(ctx, req.From, req.To, "")
	if err != nil {
		return nil, fmt.Errorf("load daily stats: %w", err)
	}

	want := make(map[models.StatKey]*models.DailyStat, len(result.Stats))
	for i := range result.Stats {
		want[result.Stats[i].Key()] = &result.Stats[i]
	}
	have := make(map[models.StatKey]*models.DailyStat, len(persisted))
	for i := range persisted {
		// Stats of stores no longer registered are outside the comparison.
		if _, ok := snap.ByID[persisted[i].StoreID]; !ok {
			continue
		}
		have[persisted[i].Key()] = &persisted[i]
	}

	report := &models.ValidationReport{
		From:       req.From,
		To:         req.To,
		Checked:    len(want),
		Mismatches: []models.Mismatch{},
	}
	for k, w := range want {
		h, ok := have[k]
		if !ok {
			report.Mismatches = append(report.Mismatches, models.Mismatch{Key: k.String(), Recomputed: w})
			continue
		}
		if !h.SameCounts(w) {
			report.Mismatches = append(report.Mismatches, models.Mismatch{Key: k.String(), Persisted: h, Recomputed: w})
		}
	}
	for k, h := range have {
		if _, ok := want[k]; !ok {
			report.Mismatches = append(report.Mismatches, models.Mismatch{Key: k.String(), Persisted: h})
		}
	}
	sort.Slice(report.Mismatches, func(i, j int) bool { return report.Mismatches[i].Key < report.Mismatches[j].Key })
	return report, nil
}
