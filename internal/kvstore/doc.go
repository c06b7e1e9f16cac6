// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package kvstore is an embedded BadgerDB storage backend.
//
// It implements the same raw event, daily stat and run log operations as the
// DuckDB backend for deployments that want a single-file key-value store
// without SQL. Keys are laid out so range reads are prefix scans:
//
//	raw/<store_id>/<unix seconds, 20 digits>   raw play event
//	stat/<YYYY-MM-DD>/<store_id>                daily stat
//	run/<run_id>                                run summary
//	runidx/<started unix nanos>/<run_id>        recency index
//
// Values are JSON. Each chunk write is one Badger transaction; a chunk that
// exceeds Badger's transaction limit fails as a whole and should be retried
// with a smaller max_ops_per_commit.
package kvstore
