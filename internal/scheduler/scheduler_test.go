// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/models"
	"github.com/tomtom215/playledger/internal/orchestrator"
)

type fakeRunner struct {
	mu    sync.Mutex
	reqs  []orchestrator.Request
	err   error
	calls chan struct{}
}

func (r *fakeRunner) Run(_ context.Context, req orchestrator.Request) (*models.RunSummary, error) {
	r.mu.Lock()
	r.reqs = append(r.reqs, req)
	r.mu.Unlock()
	defer func() { r.calls <- struct{}{} }()
	if r.err != nil {
		return nil, r.err
	}
	return &models.RunSummary{RunID: "r1", From: "2024-03-01"}, nil
}

// newTestScheduler returns a scheduler whose timer fires when the test
// sends on the returned channel.
func newTestScheduler(t *testing.T, runner Runner) (*Scheduler, chan time.Time) {
	t.Helper()
	s, err := New(&config.ScheduleConfig{Enabled: true, Cron: "30 1 * * *"}, 9*time.Hour, runner)
	if err != nil {
		t.Fatal(err)
	}
	tick := make(chan time.Time)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC) }
	s.after = func(time.Duration) <-chan time.Time { return tick }
	return s, tick
}

func TestSchedulerFiresScheduledRun(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{calls: make(chan struct{}, 4)}
	s, tick := newTestScheduler(t, runner)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}

	tick <- time.Now()
	<-runner.calls
	tick <- time.Now()
	<-runner.calls

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if len(runner.reqs) != 2 {
		t.Fatalf("runs = %d", len(runner.reqs))
	}
	req := runner.reqs[0]
	if req.Trigger != models.TriggerSchedule || req.From != "" || req.To != "" {
		t.Errorf("request = %+v, want default range with schedule trigger", req)
	}

	want := time.Date(2024, 3, 1, 16, 30, 0, 0, time.UTC)
	if got := s.NextRun(); !got.Equal(want) {
		t.Errorf("NextRun = %v, want %v", got, want)
	}
}

func TestSchedulerSurvivesRunErrors(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{calls: make(chan struct{}, 4), err: orchestrator.ErrRunInProgress}
	s, tick := newTestScheduler(t, runner)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	tick <- time.Now()
	<-runner.calls
	runner.mu.Lock()
	runner.err = errors.New("registry unavailable")
	runner.mu.Unlock()
	tick <- time.Now()
	<-runner.calls

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	s, _ := newTestScheduler(t, &fakeRunner{calls: make(chan struct{}, 1)})
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		_ = s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancel")
	}
}

func TestNewRejectsBadCron(t *testing.T) {
	t.Parallel()

	if _, err := New(&config.ScheduleConfig{Cron: "61 * * * *"}, 0, &fakeRunner{}); err == nil {
		t.Error("expected parse error")
	}
}
