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

func TestDeduplicateOverlappingBatches(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	batch1 := plays("cafe-01", "Song", "Artist", base, 30)
	// batch2 overlaps the last 10 events of batch1 and adds 20 new ones
	batch2 := plays("cafe-01", "Song", "Artist", base.Add(20*time.Minute), 30)

	all := append(append([]models.RawPlayEvent{}, batch1...), batch2...)
	got, dropped := Deduplicate(all, 9*time.Hour)

	checkIntEqual(t, "canonical", len(got), 50)
	checkIntEqual(t, "dropped", dropped, 10)
}

func TestDeduplicateFirstSeenWins(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	first := play("cafe-01", "Original Title", "Artist", at)
	second := play("cafe-01", "Edited Title", "Artist", at.Add(400*time.Millisecond))

	got, dropped := Deduplicate([]models.RawPlayEvent{first, second}, 0)
	checkIntEqual(t, "canonical", len(got), 1)
	checkIntEqual(t, "dropped", dropped, 1)
	checkStringEqual(t, "track", got[0].Track, "Original Title")
}

func TestDeduplicateKeysIncludeStore(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	events := []models.RawPlayEvent{
		play("cafe-01", "Song", "Artist", at),
		play("cafe-02", "Song", "Artist", at),
	}
	got, dropped := Deduplicate(events, 0)
	checkIntEqual(t, "canonical", len(got), 2)
	checkIntEqual(t, "dropped", dropped, 0)
}

func TestDeduplicateAssignsLocalDate(t *testing.T) {
	t.Parallel()

	events := []models.RawPlayEvent{play("cafe-01", "Song", "Artist", time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC))}
	got, _ := Deduplicate(events, 9*time.Hour)
	checkStringEqual(t, "LocalDate", got[0].LocalDate, "2024-03-02")
}
