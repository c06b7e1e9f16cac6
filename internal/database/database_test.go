// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/models"
)

// DuckDB's CGO layer does not tolerate many concurrent in-memory databases
// in one test binary; tests take this semaphore for their whole lifetime.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := New(&config.StorageConfig{
		DuckDBPath: ":memory:",
		MaxMemory:  "512MB",
		Threads:    1,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		closeWithLog(db, "test database")
	})
	return db
}

var base = time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)

func rawEvent(store string, at time.Time, track, artist string) models.RawPlayEvent {
	return models.RawPlayEvent{
		StoreID:     store,
		Track:       track,
		Artist:      artist,
		PlayedAt:    at,
		CollectedAt: base,
	}
}

func TestNewCreatesSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	for _, table := range []string{"monitored_stores", "monitored_artists", "raw_play_events", "daily_stats", "settlement_runs"} {
		var n int
		if err := db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Errorf("table %s not queryable: %v", table, err)
		}
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	stores := []models.MonitoredStore{
		{ID: "s2", Name: "Shibuya", Franchise: "partner-a", OwnerID: "o1"},
		{ID: "s1", Name: "Umeda", Franchise: "independent"},
	}
	for _, s := range stores {
		if err := db.UpsertStore(ctx, s); err != nil {
			t.Fatalf("UpsertStore() error = %v", err)
		}
	}
	// Rename overwrites.
	if err := db.UpsertStore(ctx, models.MonitoredStore{ID: "s1", Name: "Umeda 2", Franchise: "independent"}); err != nil {
		t.Fatalf("UpsertStore() error = %v", err)
	}

	got, err := db.LoadStores(ctx)
	if err != nil {
		t.Fatalf("LoadStores() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadStores() len = %d, want 2", len(got))
	}
	if got[0].ID != "s1" || got[0].Name != "Umeda 2" {
		t.Errorf("first store = %+v, want s1 renamed", got[0])
	}

	if err := db.UpsertArtist(ctx, models.MonitoredArtist{Name: "YOASOBI", Normalized: "yoasobi", Active: true}); err != nil {
		t.Fatalf("UpsertArtist() error = %v", err)
	}
	if err := db.UpsertArtist(ctx, models.MonitoredArtist{Name: "Old Band", Normalized: "old band", Active: false}); err != nil {
		t.Fatalf("UpsertArtist() error = %v", err)
	}
	artists, err := db.LoadArtists(ctx)
	if err != nil {
		t.Fatalf("LoadArtists() error = %v", err)
	}
	if len(artists) != 2 {
		t.Fatalf("LoadArtists() len = %d, want 2", len(artists))
	}
}

func TestUpsertRawEventsIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	events := []models.RawPlayEvent{
		rawEvent("s1", base, "Idol", "YOASOBI"),
		rawEvent("s1", base.Add(time.Minute), "Yoru ni Kakeru", "YOASOBI"),
		rawEvent("s2", base, "Idol", "YOASOBI"),
	}
	for i := 0; i < 2; i++ {
		if err := db.UpsertRawEvents(ctx, events); err != nil {
			t.Fatalf("UpsertRawEvents() pass %d error = %v", i, err)
		}
	}

	n, err := db.CountRawEvents(ctx)
	if err != nil {
		t.Fatalf("CountRawEvents() error = %v", err)
	}
	if n != 3 {
		t.Errorf("CountRawEvents() = %d, want 3", n)
	}
}

func TestUpsertRawEventsMergesOptionalFields(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := rawEvent("s1", base, "Idol", "YOASOBI")
	if err := db.UpsertRawEvents(ctx, []models.RawPlayEvent{first}); err != nil {
		t.Fatalf("UpsertRawEvents() error = %v", err)
	}

	second := rawEvent("s1", base, "Idol (Live)", "YOASOBI")
	second.Album = "THE BOOK 3"
	if err := db.UpsertRawEvents(ctx, []models.RawPlayEvent{second}); err != nil {
		t.Fatalf("UpsertRawEvents() error = %v", err)
	}

	got, err := db.RawEventsBetween(ctx, nil, base, base)
	if err != nil {
		t.Fatalf("RawEventsBetween() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("RawEventsBetween() len = %d, want 1", len(got))
	}
	if got[0].Track != "Idol" {
		t.Errorf("Track = %q, want first-written value", got[0].Track)
	}
	if got[0].Album != "THE BOOK 3" {
		t.Errorf("Album = %q, want filled in", got[0].Album)
	}
}

func TestUpsertRawEventsCollapsesSameSecondInChunk(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	events := []models.RawPlayEvent{
		rawEvent("s1", base, "Idol", "YOASOBI"),
		rawEvent("s1", base, "Other", "YOASOBI"),
	}
	if err := db.UpsertRawEvents(ctx, events); err != nil {
		t.Fatalf("UpsertRawEvents() error = %v", err)
	}
	got, err := db.RawEventsBetween(ctx, []string{"s1"}, base, base)
	if err != nil {
		t.Fatalf("RawEventsBetween() error = %v", err)
	}
	if len(got) != 1 || got[0].Track != "Idol" {
		t.Errorf("got %+v, want only the first event", got)
	}
}

func TestRawEventsBetweenFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	events := []models.RawPlayEvent{
		rawEvent("s1", base.Add(-time.Second), "Before", "A"),
		rawEvent("s1", base, "Start", "A"),
		rawEvent("s1", base.Add(time.Hour), "End", "A"),
		rawEvent("s1", base.Add(time.Hour+time.Second), "After", "A"),
		rawEvent("s2", base.Add(time.Minute), "Other store", "A"),
	}
	if err := db.UpsertRawEvents(ctx, events); err != nil {
		t.Fatalf("UpsertRawEvents() error = %v", err)
	}

	tests := []struct {
		name   string
		stores []string
		want   int
	}{
		{"one store", []string{"s1"}, 2},
		{"all stores", nil, 3},
		{"unknown store", []string{"nope"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.RawEventsBetween(ctx, tt.stores, base, base.Add(time.Hour))
			if err != nil {
				t.Fatalf("RawEventsBetween() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
			for _, e := range got {
				if !e.PlayedAt.Equal(base) && !e.PlayedAt.Equal(base.Add(time.Hour)) && !e.PlayedAt.Equal(base.Add(time.Minute)) {
					t.Errorf("event outside window: %v", e.PlayedAt)
				}
			}
		})
	}
}

func TestCommitDailyStatsOverwrites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	stats := []models.DailyStat{
		{Date: "2024-03-02", StoreID: "s1", ValidatedPlays: 12, RawPlays: 15, CappedPlays: 3, StoreName: "Umeda"},
		{Date: "2024-03-02", StoreID: "s2", ValidatedPlays: 0, RawPlays: 4, ExcludedPlays: 4},
		{Date: "2024-03-03", StoreID: "s1", ValidatedPlays: 7, RawPlays: 7},
	}
	if err := db.CommitDailyStats(ctx, stats); err != nil {
		t.Fatalf("CommitDailyStats() error = %v", err)
	}

	stats[0].ValidatedPlays = 13
	stats[0].CappedPlays = 2
	if err := db.CommitDailyStats(ctx, stats[:1]); err != nil {
		t.Fatalf("CommitDailyStats() error = %v", err)
	}

	got, err := db.DailyStatsBetween(ctx, "2024-03-02", "2024-03-02", "")
	if err != nil {
		t.Fatalf("DailyStatsBetween() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].StoreID != "s1" || got[0].ValidatedPlays != 13 || got[0].CappedPlays != 2 {
		t.Errorf("overwritten row = %+v", got[0])
	}
	if got[1].ValidatedPlays != 0 || got[1].ExcludedPlays != 4 {
		t.Errorf("zero row = %+v, want kept with audit counts", got[1])
	}

	one, err := db.DailyStatsBetween(ctx, "2024-03-01", "2024-03-31", "s1")
	if err != nil {
		t.Fatalf("DailyStatsBetween() error = %v", err)
	}
	if len(one) != 2 {
		t.Errorf("store filter len = %d, want 2", len(one))
	}
}

func TestCommitDailyStatsCanceledContext(t *testing.T) {
	db := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := db.CommitDailyStats(ctx, []models.DailyStat{{Date: "2024-03-02", StoreID: "s1"}})
	if err == nil {
		t.Fatal("CommitDailyStats() with canceled context should fail")
	}

	got, err := db.DailyStatsBetween(context.Background(), "2024-03-02", "2024-03-02", "")
	if err != nil {
		t.Fatalf("DailyStatsBetween() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("failed commit left %d rows", len(got))
	}
}

func TestRunLog(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	older := &models.RunSummary{
		RunID: "run-1", Trigger: models.TriggerSchedule, From: "2024-03-01", To: "2024-03-01",
		State: models.StateDone, Success: true, ValidatedPlays: 40,
		StartedAt: base, FinishedAt: base.Add(time.Minute),
	}
	newer := &models.RunSummary{
		RunID: "run-2", Trigger: models.TriggerManual, From: "2024-03-02", To: "2024-03-02",
		State: models.StatePersisting, StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour),
	}
	for _, s := range []*models.RunSummary{older, newer} {
		if err := db.RecordRun(ctx, s); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	newer.State = models.StateFailed
	newer.Cause = "daily_stats chunk 2/3 failed"
	if err := db.RecordRun(ctx, newer); err != nil {
		t.Fatalf("RecordRun() update error = %v", err)
	}

	runs, err := db.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns() len = %d, want 2", len(runs))
	}
	if runs[0].RunID != "run-2" || runs[0].State != models.StateFailed {
		t.Errorf("newest run = %+v", runs[0])
	}

	got, err := db.Run(ctx, "run-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got.ValidatedPlays != 40 {
		t.Errorf("ValidatedPlays = %d, want 40", got.ValidatedPlays)
	}

	if _, err := db.Run(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Run(missing) error = %v, want ErrRunNotFound", err)
	}
}
