// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package lastfm is a client for the user.getrecenttracks method of the
// Last.fm 2.0 API.
//
// Every store is a Last.fm account; its scrobbles are the store's play
// history. The client pages through a time window, decoding the API's loose
// JSON (numbers as strings, a single track as an object instead of an array)
// without failing the page on one bad element.
//
// # Errors
//
// API error payloads become *APIError. Codes 11, 16 and 29 are transient;
// IsRetryable reports which failures are worth another attempt. HTTP 429 is
// retried inside the client honouring Retry-After, and surfaces as
// ErrRateLimited once attempts run out.
//
// # Wrapping
//
// CircuitBreakerClient guards a Client with sony/gobreaker so a failing API
// makes later stores fail fast with ErrCircuitOpen instead of each waiting
// through its own retries.
package lastfm
