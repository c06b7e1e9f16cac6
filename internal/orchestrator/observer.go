// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package orchestrator

import (
	"context"

	"github.com/tomtom215/playledger/internal/metrics"
	"github.com/tomtom215/playledger/internal/models"
)

// Observer receives run state transitions. Implementations must not block;
// they run on the orchestrator's goroutine.
type Observer interface {
	OnRunEvent(ctx context.Context, ev models.RunEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev models.RunEvent)

// OnRunEvent implements Observer.
func (f ObserverFunc) OnRunEvent(ctx context.Context, ev models.RunEvent) {
	f(ctx, ev)
}

// metricsObserver mirrors the current state into the run state gauge.
type metricsObserver struct{}

func (metricsObserver) OnRunEvent(_ context.Context, ev models.RunEvent) {
	metrics.RunState.Set(float64(ev.State.Ordinal()))
}
