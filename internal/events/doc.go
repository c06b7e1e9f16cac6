// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package events publishes settlement run lifecycle events through Watermill.
//
// With NATS enabled, events go to a JetStream subject, optionally served by
// an embedded nats-server. Otherwise an in-process GoChannel pub/sub carries
// them, which keeps the same publish path in single-binary deployments and
// tests.
//
// Each state transition of a run produces one JSON message whose payload is
// a models.RunEvent. The terminal message carries the full run summary.
package events
