// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package database is the DuckDB storage layer for Playledger.
//
// # Tables
//
//   - monitored_stores, monitored_artists: the registry read at the start of a run
//   - raw_play_events: collected events keyed by (store_id, played_at seconds)
//   - daily_stats: validated plays per (stat_date, store_id)
//   - settlement_runs: run summaries stored as JSON
//
// # Writes
//
// UpsertRawEvents and CommitDailyStats each write one chunk in one
// transaction. Both are idempotent: raw events merge on their key and daily
// stats overwrite, so re-running a settlement for the same dates converges to
// the same rows.
//
// # Files
//
//   - database.go: open, pool setup, context defaults
//   - schema.go: table definitions
//   - registry.go: store and artist registry
//   - raw_events.go: raw event upserts and range reads
//   - daily_stats.go: chunk commits and range reads
//   - runs.go: run log
package database
