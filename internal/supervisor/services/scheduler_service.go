// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package services

import (
	"context"
	"fmt"
)

// SchedulerManager matches the *scheduler.Scheduler Start/Stop lifecycle.
type SchedulerManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// SchedulerService adapts the settlement scheduler's Start/Stop lifecycle
// to suture's Serve pattern:
//
//  1. Start(ctx) begins the cron loop
//  2. Serve blocks until the context is canceled
//  3. Stop() waits for the loop, including a run in flight
//
// Usage:
//
//	sched, _ := scheduler.New(&cfg.Schedule, cfg.Settlement.UTCOffset, orch)
//	tree.AddPipelineService(services.NewSchedulerService(sched))
type SchedulerService struct {
	manager SchedulerManager
	name    string
}

// NewSchedulerService creates a new scheduler service wrapper.
func NewSchedulerService(manager SchedulerManager) *SchedulerService {
	return &SchedulerService{
		manager: manager,
		name:    "settlement-scheduler",
	}
}

// Serve implements suture.Service. A Start failure is returned so suture
// restarts the service with backoff.
func (s *SchedulerService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("settlement scheduler start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("settlement scheduler stop failed: %w", err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *SchedulerService) String() string {
	return s.name
}
