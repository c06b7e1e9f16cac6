// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/playledger/internal/collector"
	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/metrics"
	"github.com/tomtom215/playledger/internal/models"
	"github.com/tomtom215/playledger/internal/persist"
	"github.com/tomtom215/playledger/internal/registry"
	"github.com/tomtom215/playledger/internal/settlement"
)

// ErrRunInProgress is returned when a run overlapping the requested dates
// is already executing in this process.
var ErrRunInProgress = errors.New("settlement run already in progress for overlapping dates")

// ErrInvalidRequest wraps request validation failures.
var ErrInvalidRequest = errors.New("invalid settlement request")

// Collector collects one store's raw events for a window.
type Collector interface {
	Collect(ctx context.Context, storeID string, start, end time.Time) (collector.Result, error)
}

// EventStore reads raw events and reads and writes daily stats.
type EventStore interface {
	RawEventsBetween(ctx context.Context, storeIDs []string, start, end time.Time) ([]models.RawPlayEvent, error)
	DailyStatsBetween(ctx context.Context, from, to, storeID string) ([]models.DailyStat, error)
	persist.StatCommitter
}

// RunRecorder stores run summaries.
type RunRecorder interface {
	RecordRun(ctx context.Context, s *models.RunSummary) error
}

// Request asks for a settlement of the store-local dates From..To. Empty
// From means yesterday in store-local time; empty To means From.
type Request struct {
	From    string
	To      string
	Trigger models.Trigger
}

// Options tune the orchestrator.
type Options struct {
	Offset             time.Duration
	DailyCap           int
	MaxOpsPerCommit    int
	CommitParallelism  int
	CollectConcurrency int
	RunTimeout         time.Duration
}

// OptionsFromConfig reads Options from the settlement section.
func OptionsFromConfig(cfg *config.SettlementConfig) Options {
	return Options{
		Offset:             cfg.UTCOffset,
		DailyCap:           cfg.DailyCapPerTrack,
		MaxOpsPerCommit:    cfg.MaxOpsPerCommit,
		CommitParallelism:  cfg.CommitParallelism,
		CollectConcurrency: cfg.CollectConcurrency,
		RunTimeout:         cfg.RunTimeout,
	}
}

// Deps are the collaborators of an Orchestrator. Recorder may be nil.
type Deps struct {
	Registry  registry.Reader
	Collector Collector
	Store     EventStore
	Recorder  RunRecorder
	Observers []Observer
}

// Orchestrator executes settlement runs. It is safe for concurrent use;
// runs over disjoint date ranges may execute at the same time.
type Orchestrator struct {
	deps      Deps
	opts      Options
	persister *persist.Persister
	observers []Observer
	now       func() time.Time

	mu     sync.Mutex
	active map[string]*run
}

// New creates an Orchestrator.
func New(deps Deps, opts Options) *Orchestrator {
	if opts.CollectConcurrency < 1 {
		opts.CollectConcurrency = 1
	}
	if opts.DailyCap <= 0 {
		opts.DailyCap = settlement.DefaultDailyCap
	}
	observers := append([]Observer{metricsObserver{}}, deps.Observers...)
	return &Orchestrator{
		deps:      deps,
		opts:      opts,
		persister: persist.NewPersister(deps.Store, opts.MaxOpsPerCommit, opts.CommitParallelism),
		observers: observers,
		now:       time.Now,
		active:    make(map[string]*run),
	}
}

// run is the mutable state of one execution.
type run struct {
	mu      sync.Mutex
	summary models.RunSummary
	prev    models.RunState
}

func (r *run) snapshot() models.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.summary
	s.Stores = append([]models.StoreOutcome(nil), r.summary.Stores...)
	return s
}

// Resolve fills request defaults and validates the date range.
func (o *Orchestrator) Resolve(req Request) (Request, error) {
	if req.From == "" {
		if req.To != "" {
			return req, fmt.Errorf("%w: to requires from", ErrInvalidRequest)
		}
		req.From = settlement.Yesterday(o.now(), o.opts.Offset)
	}
	if req.To == "" {
		req.To = req.From
	}
	if req.Trigger == "" {
		req.Trigger = models.TriggerManual
	}
	if _, err := settlement.DatesBetween(req.From, req.To); err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return req, nil
}

// Active returns summaries of the runs currently executing.
func (o *Orchestrator) Active() []models.RunSummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.RunSummary, 0, len(o.active))
	for _, r := range o.active {
		out = append(out, r.snapshot())
	}
	return out
}

func (o *Orchestrator) acquire(r *run) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, other := range o.active {
		s := other.snapshot()
		if r.summary.From <= s.To && s.From <= r.summary.To {
			return fmt.Errorf("%w: run %s covers %s..%s", ErrRunInProgress, s.RunID, s.From, s.To)
		}
	}
	o.active[r.summary.RunID] = r
	return nil
}

func (o *Orchestrator) release(r *run) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, r.summary.RunID)
}

// Run executes one settlement. The returned summary is non-nil whenever the
// request was accepted; a failed run returns its summary together with an
// error describing the cause. ErrInvalidRequest and ErrRunInProgress are
// returned without a summary.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*models.RunSummary, error) {
	req, err := o.Resolve(req)
	if err != nil {
		return nil, err
	}

	r := &run{summary: models.RunSummary{
		RunID:     uuid.New().String(),
		Trigger:   req.Trigger,
		From:      req.From,
		To:        req.To,
		State:     models.StateIdle,
		StartedAt: o.now().UTC(),
	}}
	if err := o.acquire(r); err != nil {
		return nil, err
	}
	defer o.release(r)

	if o.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.RunTimeout)
		defer cancel()
	}
	ctx = logging.ContextWithRunID(ctx, r.summary.RunID)
	log := logging.Ctx(ctx)
	log.Info().
		Str("trigger", string(req.Trigger)).
		Str("from", req.From).
		Str("to", req.To).
		Msg("Settlement run started")

	runErr := o.execute(ctx, r)

	summary := o.finish(ctx, r, runErr)
	if runErr != nil {
		log.Error().Err(runErr).Str("state", string(summary.State)).Msg("Settlement run failed")
		return summary, fmt.Errorf("settlement run %s failed: %w", summary.RunID, runErr)
	}
	log.Info().
		Int("stores", len(summary.Stores)).
		Int("stores_failed", summary.StoresFailed).
		Int("validated_plays", summary.ValidatedPlays).
		Int("stats_written", summary.StatsWritten).
		Dur("duration", summary.Duration).
		Msg("Settlement run completed")
	return summary, nil
}

// execute walks the pipeline. Any returned error fails the run.
func (o *Orchestrator) execute(ctx context.Context, r *run) error {
	if err := o.transition(ctx, r, models.StateLoadingRegistry); err != nil {
		return err
	}
	snap, err := registry.Load(ctx, o.deps.Registry)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	start, end, err := settlement.RangeWindow(r.summary.From, r.summary.To, o.opts.Offset)
	if err != nil {
		return err
	}

	if err := o.transition(ctx, r, models.StateCollecting); err != nil {
		return err
	}
	o.collectAll(ctx, r, snap, start, end)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("collection interrupted: %w", err)
	}

	if err := o.transition(ctx, r, models.StateAggregating); err != nil {
		return err
	}
	result, err := o.compute(ctx, snap, r.summary.From, r.summary.To, start, end)
	if err != nil {
		return err
	}
	excluded, capped := result.Aggregation.Totals()
	metrics.RecordAggregation(result.Canonical, result.Duplicates, excluded, capped)

	r.mu.Lock()
	r.summary.CanonicalEvents = result.Canonical
	r.summary.Duplicates = result.Duplicates
	r.summary.ValidatedPlays = result.Aggregation.TotalValidated()
	r.mu.Unlock()

	if err := o.transition(ctx, r, models.StatePersisting); err != nil {
		return err
	}
	out, err := o.persister.Persist(ctx, result.Stats)
	r.mu.Lock()
	r.summary.StatsWritten = out.Committed
	r.summary.ChunksCommitted = out.Chunks
	var chunkErr *persist.ChunkError
	if errors.As(err, &chunkErr) {
		r.summary.FailedChunk = chunkErr.Index + 1
		r.summary.FailedKeys = chunkErr.Keys
	}
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("persist daily stats: %w", err)
	}

	return o.transition(ctx, r, models.StateDone)
}

// compute loads raw events of the snapshot's stores and runs the shared
// settlement computation.
func (o *Orchestrator) compute(ctx context.Context, snap *registry.Snapshot, from, to string, start, end time.Time) (*settlement.Result, error) {
	var raw []models.RawPlayEvent
	if len(snap.Stores) > 0 {
		var err error
		raw, err = o.deps.Store.RawEventsBetween(ctx, snap.StoreIDs(), start, end)
		if err != nil {
			return nil, fmt.Errorf("load raw events: %w", err)
		}
	}
	return settlement.Compute(raw, snap.Allow, snap.ByID, settlement.Params{
		Offset:   o.opts.Offset,
		DailyCap: o.opts.DailyCap,
		From:     from,
		To:       to,
	}, o.now()), nil
}

func (o *Orchestrator) transition(ctx context.Context, r *run, to models.RunState) error {
	r.mu.Lock()
	from := r.summary.State
	if err := validTransition(from, to); err != nil {
		r.mu.Unlock()
		return err
	}
	r.summary.State = to
	r.prev = from
	ev := models.RunEvent{
		RunID:   r.summary.RunID,
		Trigger: r.summary.Trigger,
		From:    r.summary.From,
		To:      r.summary.To,
		State:   to,
		Prev:    from,
		At:      o.now().UTC(),
	}
	r.mu.Unlock()

	logging.Ctx(ctx).Debug().Str("from", string(from)).Str("to", string(to)).Msg("Run state transition")
	if !to.Terminal() {
		o.notify(ctx, ev)
	}
	return nil
}

func (o *Orchestrator) notify(ctx context.Context, ev models.RunEvent) {
	for _, obs := range o.observers {
		obs.OnRunEvent(ctx, ev)
	}
}

// finish settles the terminal state, records the summary and publishes the
// terminal event.
func (o *Orchestrator) finish(ctx context.Context, r *run, runErr error) *models.RunSummary {
	if runErr != nil && !r.snapshot().State.Terminal() {
		if err := o.transition(ctx, r, models.StateFailed); err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("Failed to mark run failed")
		}
	}

	r.mu.Lock()
	r.summary.Success = runErr == nil && r.summary.State == models.StateDone
	if runErr != nil {
		r.summary.Cause = runErr.Error()
	}
	r.summary.FinishedAt = o.now().UTC()
	r.summary.Duration = r.summary.FinishedAt.Sub(r.summary.StartedAt)
	prev := r.prev
	r.mu.Unlock()

	summary := r.snapshot()
	metrics.RecordRun(string(summary.Trigger), summary.Success, summary.Duration, summary.ValidatedPlays)

	if o.deps.Recorder != nil {
		// The run context may have expired; the record must still be written.
		recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		if err := o.deps.Recorder.RecordRun(recCtx, &summary); err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("Failed to record run summary")
		}
		cancel()
	}

	o.notify(ctx, models.RunEvent{
		RunID:   summary.RunID,
		Trigger: summary.Trigger,
		From:    summary.From,
		To:      summary.To,
		State:   summary.State,
		Prev:    prev,
		Summary: &summary,
		At:      summary.FinishedAt,
	})
	return &summary
}
