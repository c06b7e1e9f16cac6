// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package models

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned by run log lookups for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// RunState is the state of one settlement run.
type RunState string

const (
	StateIdle            RunState = "idle"
	StateLoadingRegistry RunState = "loading_registry"
	StateCollecting      RunState = "collecting"
	StateAggregating     RunState = "aggregating"
	StatePersisting      RunState = "persisting"
	StateDone            RunState = "done"
	StateFailed          RunState = "failed"
)

// Ordinal is the numeric form exported as a metric.
func (s RunState) Ordinal() int {
	switch s {
	case StateLoadingRegistry:
		return 1
	case StateCollecting:
		return 2
	case StateAggregating:
		return 3
	case StatePersisting:
		return 4
	case StateDone:
		return 5
	case StateFailed:
		return 6
	default:
		return 0
	}
}

// Terminal reports whether no further transition is possible.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Trigger names what started a run.
type Trigger string

const (
	TriggerManual   Trigger = "manual"
	TriggerSchedule Trigger = "schedule"
	TriggerCLI      Trigger = "cli"
)

// StoreOutcome is the collection result for one store.
type StoreOutcome struct {
	StoreID       string        `json:"store_id"`
	Success       bool          `json:"success"`
	EventsWritten int           `json:"events_written"`
	Skipped       int           `json:"skipped"`
	NowPlaying    int           `json:"now_playing_discarded"`
	Pages         int           `json:"pages"`
	Duration      time.Duration `json:"duration_ns"`
	Error         string        `json:"error,omitempty"`
}

// RunSummary is the audit record of one settlement run.
type RunSummary struct {
	RunID   string   `json:"run_id"`
	Trigger Trigger  `json:"trigger"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	State   RunState `json:"state"`
	Success bool     `json:"success"`

	// Cause is a human-readable failure reason, empty on success.
	Cause string `json:"cause,omitempty"`

	Stores       []StoreOutcome `json:"stores"`
	StoresFailed int            `json:"stores_failed"`

	EventsWritten   int `json:"events_written"`
	CanonicalEvents int `json:"canonical_events"`
	Duplicates      int `json:"duplicates"`
	ValidatedPlays  int `json:"validated_plays"`
	StatsWritten    int `json:"stats_written"`
	ChunksCommitted int `json:"chunks_committed"`

	// FailedChunk and FailedKeys identify the chunk that stopped persistence.
	FailedChunk int      `json:"failed_chunk,omitempty"`
	FailedKeys  []string `json:"failed_keys,omitempty"`

	CollectP50 time.Duration `json:"collect_p50_ns"`
	CollectP95 time.Duration `json:"collect_p95_ns"`

	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration_ns"`
}

// Mismatch is a daily stat whose persisted counts differ from a recomputation.
// Persisted is nil when no record exists; Recomputed is nil when the record
// should not exist.
type Mismatch struct {
	Key        string     `json:"key"`
	Persisted  *DailyStat `json:"persisted,omitempty"`
	Recomputed *DailyStat `json:"recomputed,omitempty"`
}

// ValidationReport is the result of recomputing a date range without writing.
type ValidationReport struct {
	From       string     `json:"from"`
	To         string     `json:"to"`
	Checked    int        `json:"checked"`
	Mismatches []Mismatch `json:"mismatches"`
}
