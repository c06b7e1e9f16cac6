// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRun(t *testing.T) {
	before := testutil.ToFloat64(RunsTotal.WithLabelValues("manual", "success"))
	validatedBefore := testutil.ToFloat64(ValidatedPlays)

	RecordRun("manual", true, 3*time.Second, 120)

	if got := testutil.ToFloat64(RunsTotal.WithLabelValues("manual", "success")); got != before+1 {
		t.Errorf("runs success = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(ValidatedPlays); got != validatedBefore+120 {
		t.Errorf("validated plays = %v, want %v", got, validatedBefore+120)
	}
	if testutil.ToFloat64(RunLastSuccess) == 0 {
		t.Error("last success timestamp should be set")
	}
}

func TestRecordRunFailureSkipsValidated(t *testing.T) {
	validatedBefore := testutil.ToFloat64(ValidatedPlays)
	failedBefore := testutil.ToFloat64(RunsTotal.WithLabelValues("schedule", "failed"))

	RecordRun("schedule", false, time.Second, 999)

	if got := testutil.ToFloat64(ValidatedPlays); got != validatedBefore {
		t.Errorf("failed run should not add validated plays, got %v want %v", got, validatedBefore)
	}
	if got := testutil.ToFloat64(RunsTotal.WithLabelValues("schedule", "failed")); got != failedBefore+1 {
		t.Errorf("runs failed = %v", got)
	}
}

func TestRecordStoreCollection(t *testing.T) {
	written := testutil.ToFloat64(EventsCollected.WithLabelValues("written"))
	skipped := testutil.ToFloat64(EventsCollected.WithLabelValues("skipped"))

	RecordStoreCollection(true, 200*time.Millisecond, 40, 2, 1)

	if got := testutil.ToFloat64(EventsCollected.WithLabelValues("written")); got != written+40 {
		t.Errorf("written = %v", got)
	}
	if got := testutil.ToFloat64(EventsCollected.WithLabelValues("skipped")); got != skipped+2 {
		t.Errorf("skipped = %v", got)
	}
}

func TestRecordChunkCommit(t *testing.T) {
	ok := testutil.ToFloat64(ChunkCommits.WithLabelValues("daily_stats", "success"))
	failed := testutil.ToFloat64(ChunkCommits.WithLabelValues("daily_stats", "failed"))

	RecordChunkCommit("daily_stats", time.Millisecond, nil)
	RecordChunkCommit("daily_stats", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(ChunkCommits.WithLabelValues("daily_stats", "success")); got != ok+1 {
		t.Errorf("success = %v", got)
	}
	if got := testutil.ToFloat64(ChunkCommits.WithLabelValues("daily_stats", "failed")); got != failed+1 {
		t.Errorf("failed = %v", got)
	}
}

func TestRecordAggregation(t *testing.T) {
	capped := testutil.ToFloat64(PlaysExcluded.WithLabelValues("daily_cap"))
	RecordAggregation(10, 3, 2, 5)
	if got := testutil.ToFloat64(PlaysExcluded.WithLabelValues("daily_cap")); got != capped+5 {
		t.Errorf("capped = %v", got)
	}
}
