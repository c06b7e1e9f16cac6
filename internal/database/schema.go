// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package database

import (
	"context"
	"fmt"
)

// Played-at instants are stored as Unix seconds so the primary key has the
// same granularity as the dedup key.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS monitored_stores (
		store_id  VARCHAR PRIMARY KEY,
		name      VARCHAR NOT NULL DEFAULT '',
		franchise VARCHAR NOT NULL DEFAULT '',
		owner_id  VARCHAR NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS monitored_artists (
		name       VARCHAR PRIMARY KEY,
		normalized VARCHAR NOT NULL,
		active     BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS raw_play_events (
		store_id     VARCHAR NOT NULL,
		played_at    BIGINT NOT NULL,
		track        VARCHAR NOT NULL,
		artist       VARCHAR NOT NULL,
		album        VARCHAR NOT NULL DEFAULT '',
		track_mbid   VARCHAR NOT NULL DEFAULT '',
		artist_mbid  VARCHAR NOT NULL DEFAULT '',
		url          VARCHAR NOT NULL DEFAULT '',
		image_url    VARCHAR NOT NULL DEFAULT '',
		collected_at TIMESTAMP NOT NULL,
		PRIMARY KEY (store_id, played_at)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_play_events_played_at ON raw_play_events(played_at)`,
	`CREATE TABLE IF NOT EXISTS daily_stats (
		stat_date       VARCHAR NOT NULL,
		store_id        VARCHAR NOT NULL,
		validated_plays INTEGER NOT NULL,
		store_name      VARCHAR NOT NULL DEFAULT '',
		franchise       VARCHAR NOT NULL DEFAULT '',
		raw_plays       INTEGER NOT NULL DEFAULT 0,
		excluded_plays  INTEGER NOT NULL DEFAULT 0,
		capped_plays    INTEGER NOT NULL DEFAULT 0,
		updated_at      TIMESTAMP NOT NULL,
		PRIMARY KEY (stat_date, store_id)
	)`,
	`CREATE TABLE IF NOT EXISTS settlement_runs (
		run_id      VARCHAR PRIMARY KEY,
		trigger     VARCHAR NOT NULL,
		from_date   VARCHAR NOT NULL,
		to_date     VARCHAR NOT NULL,
		state       VARCHAR NOT NULL,
		success     BOOLEAN NOT NULL,
		cause       VARCHAR NOT NULL DEFAULT '',
		started_at  TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		summary     VARCHAR NOT NULL
	)`,
}

func (db *DB) initialize() error {
	ctx, cancel := ensureContext(context.Background())
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
