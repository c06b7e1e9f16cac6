// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package logging provides the zerolog-based structured logger used across Playledger.
//
// A single global logger is configured once at startup and accessed through
// level helpers. Context-aware helpers attach the settlement run ID and HTTP
// request ID so that every line emitted during one run can be correlated.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("store_id", id).Int("events", n).Msg("Store collected")
//
//	ctx = logging.ContextWithRunID(ctx, runID)
//	logging.Ctx(ctx).Warn().Err(err).Msg("Chunk commit failed")
//
// # Output Formats
//
//   - json: one JSON object per line (default, production)
//   - console: human-readable output for local runs of cmd/settle
//
// # Secrets
//
// The event source API key travels in query strings. Use RedactURL before
// logging any request URL and SanitizeSecret for individual values.
//
// # Suture Integration
//
// NewSlogLogger returns an *slog.Logger backed by zerolog so the supervisor
// tree can log through sutureslog without a second logging stack.
package logging
