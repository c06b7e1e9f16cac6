// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package orchestrator runs settlements.
//
// A run walks a fixed state machine:
//
//	idle -> loading_registry -> collecting -> aggregating -> persisting -> done
//	any non-terminal state -> failed
//
// The registry snapshot taken in loading_registry is used for the whole run.
// Collection failures of individual stores are recorded and do not stop the
// run; registry, aggregation and persistence failures do. Every transition is
// reported to the configured Observers and the final summary is stored
// through a RunRecorder.
//
// Validate recomputes daily stats from stored raw events with the same code
// path as a run and reports rows that differ from what is persisted.
package orchestrator
