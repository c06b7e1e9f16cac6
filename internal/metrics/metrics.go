// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Settlement runs
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playledger_runs_total",
			Help: "Settlement runs by trigger and result",
		},
		[]string{"trigger", "result"}, // result: "success", "failed"
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playledger_run_duration_seconds",
			Help:    "Wall-clock duration of settlement runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	RunLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playledger_run_last_success_timestamp",
			Help: "Unix time of the last successful settlement run",
		},
	)

	RunState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playledger_run_state",
			Help: "Current run state (0=idle, 1=loading_registry, 2=collecting, 3=aggregating, 4=persisting, 5=done, 6=failed)",
		},
	)

	// Collection
	StoreCollections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playledger_store_collections_total",
			Help: "Per-store collection attempts by result",
		},
		[]string{"result"},
	)

	StoreCollectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playledger_store_collection_duration_seconds",
			Help:    "Time to collect one store's window",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	EventsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playledger_events_total",
			Help: "Raw events seen by the collector by outcome",
		},
		[]string{"outcome"}, // "written", "skipped", "now_playing"
	)

	// Event source API
	SourceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playledger_source_requests_total",
			Help: "Requests to the scrobble API by status",
		},
		[]string{"status"},
	)

	SourceRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playledger_source_request_duration_seconds",
			Help:    "Latency of scrobble API requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	SourceRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playledger_source_retries_total",
			Help: "Page fetch retries after transient failures",
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Aggregation
	CanonicalEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playledger_canonical_events_total",
			Help: "Events surviving deduplication",
		},
	)

	DuplicatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playledger_duplicates_dropped_total",
			Help: "Raw events dropped as duplicates of an earlier (store, timestamp) key",
		},
	)

	PlaysExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playledger_plays_excluded_total",
			Help: "Plays not counted by reason",
		},
		[]string{"reason"}, // "artist_not_allowed", "daily_cap"
	)

	ValidatedPlays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playledger_validated_plays_total",
			Help: "Validated plays produced by settlement runs",
		},
	)

	// Persistence
	ChunkCommits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playledger_chunk_commits_total",
			Help: "Batch commits by target and result",
		},
		[]string{"target", "result"}, // target: "raw_events", "daily_stats"
	)

	ChunkCommitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playledger_chunk_commit_duration_seconds",
			Help:    "Duration of one chunk commit",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"target"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "HTTP API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Events and WebSocket
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playledger_events_published_total",
			Help: "Run lifecycle events published by result",
		},
		[]string{"result"},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Active WebSocket connections",
		},
	)
)

// RecordRun records the outcome of one settlement run.
func RecordRun(trigger string, success bool, duration time.Duration, validated int) {
	result := "success"
	if !success {
		result = "failed"
	}
	RunsTotal.WithLabelValues(trigger, result).Inc()
	RunDuration.Observe(duration.Seconds())
	if success {
		RunLastSuccess.Set(float64(time.Now().Unix()))
		ValidatedPlays.Add(float64(validated))
	}
}

// RecordStoreCollection records one store's collection.
func RecordStoreCollection(success bool, duration time.Duration, written, skipped, nowPlaying int) {
	result := "success"
	if !success {
		result = "failed"
	}
	StoreCollections.WithLabelValues(result).Inc()
	StoreCollectionDuration.Observe(duration.Seconds())
	EventsCollected.WithLabelValues("written").Add(float64(written))
	EventsCollected.WithLabelValues("skipped").Add(float64(skipped))
	EventsCollected.WithLabelValues("now_playing").Add(float64(nowPlaying))
}

// RecordSourceRequest records a scrobble API request by HTTP status ("error" for transport failures).
func RecordSourceRequest(status string, duration time.Duration) {
	SourceRequests.WithLabelValues(status).Inc()
	SourceRequestDuration.Observe(duration.Seconds())
}

// RecordAggregation records dedup and filter counts of one run.
func RecordAggregation(canonical, duplicates, notAllowed, capped int) {
	CanonicalEvents.Add(float64(canonical))
	DuplicatesDropped.Add(float64(duplicates))
	PlaysExcluded.WithLabelValues("artist_not_allowed").Add(float64(notAllowed))
	PlaysExcluded.WithLabelValues("daily_cap").Add(float64(capped))
}

// RecordChunkCommit records one batch commit.
func RecordChunkCommit(target string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failed"
	}
	ChunkCommits.WithLabelValues(target, result).Inc()
	ChunkCommitDuration.WithLabelValues(target).Observe(duration.Seconds())
}

// RecordDBQuery records a DuckDB query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an HTTP API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordEventPublished records a lifecycle event publish attempt.
func RecordEventPublished(err error) {
	if err != nil {
		EventsPublished.WithLabelValues("failed").Inc()
		return
	}
	EventsPublished.WithLabelValues("success").Inc()
}
