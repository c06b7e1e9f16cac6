// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/metrics"
	"github.com/tomtom215/playledger/internal/models"
	"github.com/tomtom215/playledger/internal/registry"
)

// Collection latencies are tracked in milliseconds up to one hour.
const maxCollectMillis = int64(time.Hour / time.Millisecond)

// collectAll collects every store of the snapshot with a bounded worker
// pool. A store failure is recorded in its outcome and never stops the
// others.
func (o *Orchestrator) collectAll(ctx context.Context, r *run, snap *registry.Snapshot, start, end time.Time) {
	var (
		mu       sync.Mutex
		outcomes = make([]models.StoreOutcome, 0, len(snap.Stores))
		hist     = hdrhistogram.New(1, maxCollectMillis, 3)
	)

	jobs := make(chan string)
	var wg sync.WaitGroup
	workers := o.opts.CollectConcurrency
	if workers > len(snap.Stores) {
		workers = len(snap.Stores)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for storeID := range jobs {
				out := o.collectStore(ctx, storeID, start, end)

				mu.Lock()
				outcomes = append(outcomes, out)
				ms := out.Duration.Milliseconds()
				if ms < 1 {
					ms = 1
				}
				if err := hist.RecordValue(ms); err != nil {
					// Above the tracked range; clamp to the top bucket.
					_ = hist.RecordValue(maxCollectMillis)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, id := range snap.StoreIDs() {
		select {
		case jobs <- id:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].StoreID < outcomes[j].StoreID })

	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Stores = outcomes
	for _, out := range outcomes {
		r.summary.EventsWritten += out.EventsWritten
		if !out.Success {
			r.summary.StoresFailed++
		}
	}
	if hist.TotalCount() > 0 {
		r.summary.CollectP50 = time.Duration(hist.ValueAtQuantile(50)) * time.Millisecond
		r.summary.CollectP95 = time.Duration(hist.ValueAtQuantile(95)) * time.Millisecond
	}
}

func (o *Orchestrator) collectStore(ctx context.Context, storeID string, start, end time.Time) models.StoreOutcome {
	ctx = logging.ContextWithStoreID(ctx, storeID)
	began := time.Now()
	res, err := o.deps.Collector.Collect(ctx, storeID, start, end)
	out := models.StoreOutcome{
		StoreID:       storeID,
		Success:       err == nil,
		EventsWritten: res.EventsWritten,
		Skipped:       res.Skipped,
		NowPlaying:    res.NowPlaying,
		Pages:         res.Pages,
		Duration:      time.Since(began),
	}
	metrics.RecordStoreCollection(out.Success, out.Duration, res.EventsWritten, res.Skipped, res.NowPlaying)

	if err != nil {
		out.Error = err.Error()
		logging.Ctx(ctx).Warn().Err(err).
			Int("events_written", res.EventsWritten).
			Msg("Store collection failed, continuing with remaining stores")
		return out
	}
	logging.Ctx(ctx).Debug().
		Int("events_written", res.EventsWritten).
		Int("pages", res.Pages).
		Dur("duration", out.Duration).
		Msg("Store collected")
	return out
}
