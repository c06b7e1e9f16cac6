// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/playledger/internal/metrics"
	"github.com/tomtom215/playledger/internal/models"
)

// Re-collected events merge into the stored row: track and artist keep the
// first-written values, empty optional fields are filled in.
const upsertRawEventSQL = `
	INSERT INTO raw_play_events (
		store_id, played_at, track, artist, album,
		track_mbid, artist_mbid, url, image_url, collected_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (store_id, played_at) DO UPDATE SET
		album = COALESCE(NULLIF(raw_play_events.album, ''), EXCLUDED.album),
		track_mbid = COALESCE(NULLIF(raw_play_events.track_mbid, ''), EXCLUDED.track_mbid),
		artist_mbid = COALESCE(NULLIF(raw_play_events.artist_mbid, ''), EXCLUDED.artist_mbid),
		url = COALESCE(NULLIF(raw_play_events.url, ''), EXCLUDED.url),
		image_url = COALESCE(NULLIF(raw_play_events.image_url, ''), EXCLUDED.image_url)`

// UpsertRawEvents writes one chunk of raw events in a single transaction.
// Events sharing a (store, second) key within the chunk collapse to the first.
func (db *DB) UpsertRawEvents(ctx context.Context, events []models.RawPlayEvent) (err error) {
	if len(events) == 0 {
		return nil
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "raw_play_events", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(tx, err)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertRawEventSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare raw event upsert: %w", err)
	}
	defer closeWithLog(stmt, "statement")

	seen := make(map[models.EventKey]struct{}, len(events))
	for i := range events {
		e := &events[i]
		k := e.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		collected := e.CollectedAt
		if collected.IsZero() {
			collected = time.Now()
		}
		if _, err = stmt.ExecContext(ctx,
			e.StoreID, k.UnixTime, e.Track, e.Artist, e.Album,
			e.TrackMBID, e.ArtistMBID, e.URL, e.ImageURL, collected.UTC(),
		); err != nil {
			return fmt.Errorf("failed to upsert raw event %s: %w", k, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit raw events: %w", err)
	}
	return nil
}

// RawEventsBetween returns raw events of the given stores played in
// [start, end], both inclusive, ordered by store then time. An empty storeIDs
// selects every store.
func (db *DB) RawEventsBetween(ctx context.Context, storeIDs []string, start, end time.Time) ([]models.RawPlayEvent, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	query := `
		SELECT store_id, played_at, track, artist, album,
			track_mbid, artist_mbid, url, image_url, collected_at
		FROM raw_play_events
		WHERE played_at BETWEEN ? AND ?`
	args := []any{start.Unix(), end.Unix()}
	if len(storeIDs) > 0 {
		query += " AND store_id IN (" + strings.TrimSuffix(strings.Repeat("?,", len(storeIDs)), ",") + ")"
		for _, id := range storeIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY store_id, played_at"

	qStart := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "raw_play_events", time.Since(qStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw events: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var events []models.RawPlayEvent
	for rows.Next() {
		var (
			e        models.RawPlayEvent
			playedAt int64
		)
		if err := rows.Scan(&e.StoreID, &playedAt, &e.Track, &e.Artist, &e.Album,
			&e.TrackMBID, &e.ArtistMBID, &e.URL, &e.ImageURL, &e.CollectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan raw event: %w", err)
		}
		e.PlayedAt = time.Unix(playedAt, 0).UTC()
		e.CollectedAt = e.CollectedAt.UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountRawEvents returns the number of stored raw events.
func (db *DB) CountRawEvents(ctx context.Context) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_play_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count raw events: %w", err)
	}
	return n, nil
}
