// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package collector pages one store's scrobbles for a time window and stores
// them as raw play events.
//
// Now-playing entries are discarded. Entries without a timestamp, track name
// or artist are skipped and counted. Completed events are buffered and
// upserted in chunks, so a store with many plays never holds more than
// commit_threshold events in memory and never writes more than
// max_ops_per_commit in one transaction. Upserts are idempotent on
// (store, second), so collecting the same window twice is harmless.
package collector
