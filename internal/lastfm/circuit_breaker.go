// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package lastfm

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/metrics"
)

const breakerName = "lastfm-api"

// CircuitBreakerClient wraps a fetcher with a circuit breaker. Only failures
// that IsRetryable counts as transient trip the breaker; a permanent error
// for one user (unknown account) says nothing about API health.
type CircuitBreakerClient struct {
	next RecentTracksFetcher
	cb   *gobreaker.CircuitBreaker[*RecentTracksPage]
	name string
}

// NewCircuitBreakerClient wraps next using cfg.
func NewCircuitBreakerClient(next RecentTracksFetcher, cfg *config.CircuitBreakerConfig) *CircuitBreakerClient {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = time.Minute
	}
	halfOpen := cfg.HalfOpenRequests
	if halfOpen == 0 {
		halfOpen = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*RecentTracksPage](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: halfOpen,
		Interval:    time.Minute,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= failures
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})

	return &CircuitBreakerClient{next: next, cb: cb, name: breakerName}
}

// RecentTracks implements RecentTracksFetcher.
func (c *CircuitBreakerClient) RecentTracks(ctx context.Context, req RecentTracksRequest) (*RecentTracksPage, error) {
	page, err := c.cb.Execute(func() (*RecentTracksPage, error) {
		return c.next.RecentTracks(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	return page, nil
}

// State returns the breaker state for health reporting.
func (c *CircuitBreakerClient) State() string {
	return stateToString(c.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// New builds the fetcher described by cfg: a Client, wrapped in a circuit
// breaker when enabled.
func New(cfg *config.SourceConfig) RecentTracksFetcher {
	client := NewClient(cfg)
	if !cfg.CircuitBreaker.Enabled {
		return client
	}
	return NewCircuitBreakerClient(client, &cfg.CircuitBreaker)
}
