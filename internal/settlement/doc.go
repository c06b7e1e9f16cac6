// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package settlement holds the pure, IO-free steps of the settlement pipeline:
// store-local date derivation, deduplication, allow-list filtering and the
// capped daily aggregation.
//
// Nothing in this package reads global state. The allow-list and store map
// are snapshots passed in by the caller, so two runs (or two tests) never
// observe each other's registry.
//
// The store-local date rule lives only in LocalDate. Every other place that
// needs a "day" (collection windows, dedup, aggregation keys, validation)
// goes through it or through DayWindow, its inverse.
package settlement
