// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package models

import (
	"testing"
	"time"
)

func TestEventKey(t *testing.T) {
	t.Parallel()

	e := RawPlayEvent{StoreID: "cafe-01", PlayedAt: time.Date(2024, 3, 1, 15, 30, 0, 900_000_000, time.UTC)}
	k := e.Key()
	if k.UnixTime != 1709307000 {
		t.Errorf("UnixTime = %d, want 1709307000", k.UnixTime)
	}
	if got := k.String(); got != "cafe-01_1709307000" {
		t.Errorf("String() = %q", got)
	}
}

func TestStatKey(t *testing.T) {
	t.Parallel()

	s := DailyStat{Date: "2024-03-02", StoreID: "cafe-01"}
	if got := s.Key().String(); got != "2024-03-02_cafe-01" {
		t.Errorf("Key() = %q", got)
	}
}

func TestSameCounts(t *testing.T) {
	t.Parallel()

	a := DailyStat{ValidatedPlays: 10, RawPlays: 15, CappedPlays: 5, UpdatedAt: time.Now(), StoreName: "A"}
	b := DailyStat{ValidatedPlays: 10, RawPlays: 15, CappedPlays: 5, StoreName: "B"}
	if !a.SameCounts(&b) {
		t.Error("timestamps and labels should not affect SameCounts")
	}
	b.ValidatedPlays = 9
	if a.SameCounts(&b) {
		t.Error("different validated counts should differ")
	}
}

func TestRunState(t *testing.T) {
	t.Parallel()

	states := []RunState{StateIdle, StateLoadingRegistry, StateCollecting, StateAggregating, StatePersisting, StateDone, StateFailed}
	for i, s := range states {
		if s.Ordinal() != i {
			t.Errorf("%s.Ordinal() = %d, want %d", s, s.Ordinal(), i)
		}
	}
	if !StateDone.Terminal() || !StateFailed.Terminal() || StatePersisting.Terminal() {
		t.Error("only done and failed are terminal")
	}
}
