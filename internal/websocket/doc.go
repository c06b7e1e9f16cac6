// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package websocket pushes settlement run progress to browser clients.
//
// A single Hub goroutine owns the client set. Clients register through the
// Register channel, and a slow client whose send buffer fills is dropped
// rather than stalling the broadcast.
//
// Message types:
//
//	run_state      a run changed state (data: models.RunEvent)
//	run_completed  a run reached done or failed (data: models.RunEvent with summary)
//	ping / pong    client keepalive
//
// The Hub implements the orchestrator's Observer interface so it can be
// attached directly to the run pipeline.
package websocket
