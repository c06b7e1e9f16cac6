// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package models

import "time"

// RunEvent is published on every run state transition.
type RunEvent struct {
	RunID   string   `json:"run_id"`
	Trigger Trigger  `json:"trigger"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	State   RunState `json:"state"`
	Prev    RunState `json:"previous_state"`

	// Summary is set once the run reaches a terminal state.
	Summary *RunSummary `json:"summary,omitempty"`

	At time.Time `json:"at"`
}
