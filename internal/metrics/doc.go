// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package metrics defines the Prometheus instrumentation for Playledger.
//
// All collectors are registered on the default registry through promauto and
// exposed by the HTTP API at /metrics. Components call the Record* helpers
// rather than touching collectors directly, so label sets stay consistent.
package metrics
