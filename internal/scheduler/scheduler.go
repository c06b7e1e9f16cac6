// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/models"
	"github.com/tomtom215/playledger/internal/orchestrator"
)

// Runner executes one settlement run.
type Runner interface {
	Run(ctx context.Context, req orchestrator.Request) (*models.RunSummary, error)
}

// Scheduler fires a settlement of the previous store-local day each time
// the cron expression matches.
type Scheduler struct {
	cron   *CronExpression
	loc    *time.Location
	runner Runner
	logger zerolog.Logger

	// now and after are replaced in tests.
	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu      sync.Mutex
	running bool
	nextRun time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a scheduler for cfg. The expression is evaluated in the fixed
// zone of the store-region offset.
func New(cfg *config.ScheduleConfig, offset time.Duration, runner Runner) (*Scheduler, error) {
	cron, err := ParseCron(cfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	return &Scheduler{
		cron:   cron,
		loc:    StoreLocation(offset),
		runner: runner,
		logger: logging.WithComponent("scheduler"),
		now:    time.Now,
		after:  time.After,
	}, nil
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info().Str("zone", s.loc.String()).Msg("Starting settlement scheduler")
	go s.run(ctx)
	return nil
}

// Stop stops the loop and waits for an in-flight run to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh
	s.logger.Info().Msg("Settlement scheduler stopped")
	return nil
}

// NextRun returns the next scheduled fire time, zero when not running.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	for {
		next := s.cron.NextRun(s.now(), s.loc)
		if next.IsZero() {
			s.logger.Error().Msg("Cron expression never matches, scheduler idle")
			select {
			case <-s.stopCh:
			case <-ctx.Done():
			}
			return
		}
		s.mu.Lock()
		s.nextRun = next
		s.mu.Unlock()
		s.logger.Debug().Time("next_run", next).Msg("Next settlement scheduled")

		select {
		case <-s.after(time.Until(next)):
			s.fire(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// fire runs the default range. A run still in progress for the same day is
// skipped rather than queued.
func (s *Scheduler) fire(ctx context.Context) {
	sum, err := s.runner.Run(ctx, orchestrator.Request{Trigger: models.TriggerSchedule})
	switch {
	case errors.Is(err, orchestrator.ErrRunInProgress):
		s.logger.Warn().Err(err).Msg("Scheduled settlement skipped")
	case err != nil:
		ev := s.logger.Error().Err(err)
		if sum != nil {
			ev = ev.Str("run_id", sum.RunID)
		}
		ev.Msg("Scheduled settlement failed")
	default:
		s.logger.Info().
			Str("run_id", sum.RunID).
			Str("date", sum.From).
			Int("validated_plays", sum.ValidatedPlays).
			Msg("Scheduled settlement completed")
	}
}
