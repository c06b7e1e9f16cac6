// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package services

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/playledger/internal/events"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/models"
)

// EventSource matches (*events.Publisher).Subscribe.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// EventLogService consumes run lifecycle events from the in-process
// transport and hands each decoded event to a handler. Malformed messages
// are acked and dropped so they cannot block the topic.
type EventLogService struct {
	source  EventSource
	handler func(models.RunEvent)
	name    string
}

// NewEventLogService creates the consumer. A nil handler logs each event.
func NewEventLogService(source EventSource, handler func(models.RunEvent)) *EventLogService {
	if handler == nil {
		handler = logRunEvent
	}
	return &EventLogService{
		source:  source,
		handler: handler,
		name:    "run-event-log",
	}
}

func logRunEvent(ev models.RunEvent) {
	logging.Info().
		Str("run_id", ev.RunID).
		Str("state", string(ev.State)).
		Str("prev", string(ev.Prev)).
		Msg("Run event")
}

// Serve implements suture.Service.
func (s *EventLogService) Serve(ctx context.Context) error {
	msgs, err := s.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("run event subscribe failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("run event subscription closed")
			}
			ev, err := events.Decode(msg)
			if err != nil {
				logging.Warn().Err(err).Msg("Dropping malformed run event")
			} else {
				s.handler(ev)
			}
			msg.Ack()
		}
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *EventLogService) String() string {
	return s.name
}
