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

var day = time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC) // 2024-03-01 10:00 at +9h

func canonical(t *testing.T, raw []models.RawPlayEvent) []models.CanonicalEvent {
	t.Helper()
	out, _ := Deduplicate(raw, 9*time.Hour)
	return out
}

func TestAggregateDailyCap(t *testing.T) {
	t.Parallel()

	raw := plays("cafe-01", "Loop", "Band", day, 15)
	agg := Aggregate(canonical(t, raw), NewAllowList("Band"), 10)

	dc := agg.Counts[models.StatKey{Date: "2024-03-01", StoreID: "cafe-01"}]
	if dc == nil {
		t.Fatal("missing group")
	}
	checkIntEqual(t, "Validated", dc.Validated, 10)
	checkIntEqual(t, "Capped", dc.Capped, 5)
	checkIntEqual(t, "Raw", dc.Raw, 15)
	checkIntEqual(t, "exclusions", len(agg.Exclusions), 5)
	for _, ex := range agg.Exclusions {
		checkStringEqual(t, "reason", ex.Reason, models.ReasonDailyCap)
		if ex.PlayedAt.Before(day.Add(10 * time.Minute)) {
			t.Errorf("capped play %v should be one of the last five", ex.PlayedAt)
		}
	}
}

func TestAggregateCapIsPerTrack(t *testing.T) {
	t.Parallel()

	raw := append(plays("cafe-01", "A", "Band", day, 12), plays("cafe-01", "B", "Band", day.Add(2*time.Hour), 4)...)
	agg := Aggregate(canonical(t, raw), NewAllowList("band"), 10)
	dc := agg.Counts[models.StatKey{Date: "2024-03-01", StoreID: "cafe-01"}]
	checkIntEqual(t, "Validated", dc.Validated, 14)
	checkIntEqual(t, "Capped", dc.Capped, 2)
}

func TestAggregateSameTitleDifferentArtists(t *testing.T) {
	t.Parallel()

	raw := append(plays("cafe-01", "Intro", "Band", day, 10), plays("cafe-01", "Intro", "Other", day.Add(time.Hour), 10)...)
	agg := Aggregate(canonical(t, raw), NewAllowList("Band", "Other"), 10)
	dc := agg.Counts[models.StatKey{Date: "2024-03-01", StoreID: "cafe-01"}]
	checkIntEqual(t, "Validated", dc.Validated, 20)
	checkIntEqual(t, "Capped", dc.Capped, 0)
}

func TestAggregateArtistCaseFoldsIntoOneTrack(t *testing.T) {
	t.Parallel()

	raw := append(plays("cafe-01", "Song", "Band", day, 6), plays("cafe-01", "Song", " BAND ", day.Add(time.Hour), 6)...)
	agg := Aggregate(canonical(t, raw), NewAllowList("band"), 10)
	dc := agg.Counts[models.StatKey{Date: "2024-03-01", StoreID: "cafe-01"}]
	checkIntEqual(t, "Validated", dc.Validated, 10)
	checkIntEqual(t, "Capped", dc.Capped, 2)
}

func TestAggregateAllowList(t *testing.T) {
	t.Parallel()

	raw := append(plays("cafe-01", "Hit", "Allowed", day, 3), plays("cafe-01", "Hit", "Blocked", day.Add(time.Hour), 50)...)
	agg := Aggregate(canonical(t, raw), NewAllowList("allowed"), 10)
	dc := agg.Counts[models.StatKey{Date: "2024-03-01", StoreID: "cafe-01"}]
	checkIntEqual(t, "Validated", dc.Validated, 3)
	checkIntEqual(t, "Excluded", dc.Excluded, 50)
	checkIntEqual(t, "Capped", dc.Capped, 0)
}

func TestAggregateZeroRowWhenAllFiltered(t *testing.T) {
	t.Parallel()

	raw := plays("cafe-02", "Hit", "Nobody", day, 4)
	agg := Aggregate(canonical(t, raw), NewAllowList("someone"), 10)

	dc, ok := agg.Counts[models.StatKey{Date: "2024-03-01", StoreID: "cafe-02"}]
	if !ok {
		t.Fatal("a store with events but none admitted must still have a row")
	}
	checkIntEqual(t, "Validated", dc.Validated, 0)
	checkIntEqual(t, "Excluded", dc.Excluded, 4)

	stats := agg.DailyStats(nil, time.Now())
	checkIntEqual(t, "stats", len(stats), 1)
	checkIntEqual(t, "ValidatedPlays", stats[0].ValidatedPlays, 0)
}

func TestAggregateGroupsByLocalDate(t *testing.T) {
	t.Parallel()

	raw := []models.RawPlayEvent{
		play("cafe-01", "Song", "Band", time.Date(2024, 3, 1, 14, 59, 0, 0, time.UTC)), // 03-01 23:59 local
		play("cafe-01", "Song", "Band", time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)), // 03-02 00:30 local
	}
	agg := Aggregate(canonical(t, raw), NewAllowList("band"), 10)
	checkIntEqual(t, "groups", len(agg.Counts), 2)
	if agg.Counts[models.StatKey{Date: "2024-03-02", StoreID: "cafe-01"}] == nil {
		t.Error("15:30Z should bucket into 2024-03-02 at +9h")
	}
}

func TestAggregateDefaultCap(t *testing.T) {
	t.Parallel()

	agg := Aggregate(canonical(t, plays("cafe-01", "Loop", "Band", day, 12)), NewAllowList("band"), 0)
	checkIntEqual(t, "TotalValidated", agg.TotalValidated(), DefaultDailyCap)
}

func TestAggregateNoEventsNoRows(t *testing.T) {
	t.Parallel()

	agg := Aggregate(nil, NewAllowList("band"), 10)
	checkIntEqual(t, "groups", len(agg.Counts), 0)
	checkIntEqual(t, "stats", len(agg.DailyStats(nil, time.Now())), 0)
}

func TestDailyStatsDenormalizesAndSorts(t *testing.T) {
	t.Parallel()

	raw := append(plays("cafe-02", "S", "Band", day, 1), plays("cafe-01", "S", "Band", day, 2)...)
	raw = append(raw, plays("cafe-01", "S", "Band", day.Add(24*time.Hour), 1)...)
	stores := StoreIndex([]models.MonitoredStore{
		{ID: "cafe-01", Name: "Cafe One", Franchise: "partner-a"},
		{ID: "cafe-02", Name: "Cafe Two", Franchise: "independent"},
	})
	now := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)

	stats := Aggregate(canonical(t, raw), NewAllowList("band"), 10).DailyStats(stores, now)
	checkIntEqual(t, "stats", len(stats), 3)
	checkStringEqual(t, "first key", stats[0].Key().String(), "2024-03-01_cafe-01")
	checkStringEqual(t, "second key", stats[1].Key().String(), "2024-03-01_cafe-02")
	checkStringEqual(t, "third key", stats[2].Key().String(), "2024-03-02_cafe-01")
	checkStringEqual(t, "StoreName", stats[0].StoreName, "Cafe One")
	checkStringEqual(t, "Franchise", stats[1].Franchise, "independent")
	if !stats[0].UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v", stats[0].UpdatedAt)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	t.Parallel()

	raw := append(plays("cafe-01", "Loop", "Band", day, 15), plays("cafe-01", "Other", "Blocked", day.Add(time.Hour), 3)...)
	raw = append(raw, raw[:5]...) // overlapping re-collection
	allow := NewAllowList("band")
	p := Params{Offset: 9 * time.Hour, DailyCap: 10}

	first := Compute(raw, allow, nil, p, time.Now())
	second := Compute(raw, allow, nil, p, time.Now().Add(time.Hour))

	checkIntEqual(t, "Duplicates", first.Duplicates, 5)
	checkIntEqual(t, "Canonical", first.Canonical, 18)
	if len(first.Stats) != len(second.Stats) {
		t.Fatalf("stat counts differ: %d vs %d", len(first.Stats), len(second.Stats))
	}
	for i := range first.Stats {
		if !first.Stats[i].SameCounts(&second.Stats[i]) {
			t.Errorf("run 2 differs at %s: %+v vs %+v", first.Stats[i].Key(), first.Stats[i], second.Stats[i])
		}
	}
	checkIntEqual(t, "ValidatedPlays", first.Stats[0].ValidatedPlays, 10)
}

func TestComputeRestrictsToRange(t *testing.T) {
	t.Parallel()

	raw := append(plays("cafe-01", "S", "Band", day, 2), plays("cafe-01", "S", "Band", day.Add(48*time.Hour), 2)...)
	res := Compute(raw, NewAllowList("band"), nil, Params{Offset: 9 * time.Hour, From: "2024-03-01", To: "2024-03-01"}, time.Now())
	checkIntEqual(t, "stats", len(res.Stats), 1)
	checkIntEqual(t, "Canonical", res.Canonical, 2)
}
