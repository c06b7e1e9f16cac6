// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package lastfm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Last.fm API error codes that signal a transient condition.
const (
	CodeServiceOffline    = 11
	CodeTemporaryError    = 16
	CodeRateLimitExceeded = 29
)

var (
	// ErrRateLimited is returned when HTTP 429 persists through every retry.
	ErrRateLimited = errors.New("lastfm: rate limit exceeded")

	// ErrCircuitOpen is returned while the circuit breaker rejects requests.
	ErrCircuitOpen = errors.New("lastfm: circuit breaker open")
)

// APIError is an error payload returned by the API.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lastfm error %d: %s", e.Code, e.Message)
}

// Temporary reports whether the code is one the API documents as transient.
func (e *APIError) Temporary() bool {
	switch e.Code {
	case CodeServiceOffline, CodeTemporaryError, CodeRateLimitExceeded:
		return true
	}
	return false
}

// HTTPError is a non-200 response without a decodable API error payload.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("lastfm request failed with status %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError means the body was not a recent-tracks document.
type MalformedResponseError struct {
	Err  error
	Body string
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lastfm: malformed response: %v (body: %s)", e.Err, e.Body)
	}
	return fmt.Sprintf("lastfm: malformed response (body: %s)", e.Body)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a RecentTracks failure may succeed on retry.
// Context cancellation, an open circuit and permanent API errors are not
// retryable. Transport failures, 5xx, rate limiting and truncated bodies are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError ||
			httpErr.StatusCode == http.StatusRequestTimeout
	}
	// Transport failures and truncated bodies.
	return true
}
