// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

/*
Package models defines the data types shared by the settlement pipeline.

# Registry

MonitoredStore and MonitoredArtist are read from the registry at the start of
a run and never mutated by the pipeline.

# Events

RawPlayEvent is one completed play reported by the scrobble API. Its identity
is (StoreID, PlayedAt) at second granularity; source row IDs are not trusted
because paginated windows overlap. CanonicalEvent is a RawPlayEvent that
survived deduplication, carrying its store-local date.

# Output

DailyStat is the durable output, keyed by (Date, StoreID). Re-running a date
overwrites the same key.

# Runs

RunSummary records what one settlement run did: the date range, per-store
StoreOutcome entries, totals and the final state.
*/
package models
