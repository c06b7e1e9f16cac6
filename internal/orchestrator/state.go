// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package orchestrator

import (
	"errors"
	"fmt"

	"github.com/tomtom215/playledger/internal/models"
)

// ErrInvalidTransition is returned for a state change the machine forbids.
var ErrInvalidTransition = errors.New("invalid run state transition")

// next lists the one forward successor of each state. Failed is reachable
// from every non-terminal state and is handled separately.
var next = map[models.RunState]models.RunState{
	models.StateIdle:            models.StateLoadingRegistry,
	models.StateLoadingRegistry: models.StateCollecting,
	models.StateCollecting:      models.StateAggregating,
	models.StateAggregating:     models.StatePersisting,
	models.StatePersisting:      models.StateDone,
}

// validTransition reports whether from -> to is allowed.
func validTransition(from, to models.RunState) error {
	if from.Terminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}
	if to == models.StateFailed || next[from] == to {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
