// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package persist writes records in chunks that respect a backing store's
// per-transaction operation limit.
//
// Every chunk is committed as its own transaction. A failure leaves earlier
// chunks committed; because every write is a keyed upsert, re-running the
// same input is the recovery path. The limit is a parameter (maxOpsPerCommit)
// rather than a constant so the same code serves DuckDB, Badger or a
// document store with a 500-operation batch ceiling.
//
// Batch is generic and shared with the collector's raw event writes;
// Persister is the daily stat specialisation used by the orchestrator.
package persist
