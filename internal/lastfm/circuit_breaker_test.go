// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package lastfm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/playledger/internal/config"
)

type stubFetcher struct {
	calls int
	err   error
}

func (s *stubFetcher) RecentTracks(context.Context, RecentTracksRequest) (*RecentTracksPage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &RecentTracksPage{Page: 1}, nil
}

func TestCircuitBreakerOpensOnTransientFailures(t *testing.T) {
	stub := &stubFetcher{err: &HTTPError{StatusCode: 503}}
	cb := NewCircuitBreakerClient(stub, &config.CircuitBreakerConfig{
		Enabled:             true,
		ConsecutiveFailures: 3,
		OpenTimeout:         time.Hour,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cb.RecentTracks(ctx, RecentTracksRequest{User: "u"}); err == nil {
			t.Fatal("expected failure")
		}
	}
	if cb.State() != "open" {
		t.Fatalf("State() = %s, want open", cb.State())
	}

	_, err := cb.RecentTracks(ctx, RecentTracksRequest{User: "u"})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
	if stub.calls != 3 {
		t.Errorf("calls = %d, open breaker should not reach the client", stub.calls)
	}
	if IsRetryable(err) {
		t.Error("ErrCircuitOpen should not be retryable")
	}
}

func TestCircuitBreakerIgnoresPermanentErrors(t *testing.T) {
	stub := &stubFetcher{err: &APIError{Code: 6, Message: "User not found"}}
	cb := NewCircuitBreakerClient(stub, &config.CircuitBreakerConfig{ConsecutiveFailures: 2})

	for i := 0; i < 5; i++ {
		_, _ = cb.RecentTracks(context.Background(), RecentTracksRequest{User: "u"})
	}
	if cb.State() != "closed" {
		t.Errorf("State() = %s, permanent errors should not trip the breaker", cb.State())
	}
}

func TestNewWrapsWhenEnabled(t *testing.T) {
	if _, ok := New(&config.SourceConfig{}).(*Client); !ok {
		t.Error("New() without breaker should return *Client")
	}
	if _, ok := New(&config.SourceConfig{CircuitBreaker: config.CircuitBreakerConfig{Enabled: true}}).(*CircuitBreakerClient); !ok {
		t.Error("New() with breaker should return *CircuitBreakerClient")
	}
}
