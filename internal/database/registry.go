// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/playledger/internal/metrics"
	"github.com/tomtom215/playledger/internal/models"
)

// LoadStores returns every monitored store ordered by ID.
func (db *DB) LoadStores(ctx context.Context) ([]models.MonitoredStore, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT store_id, name, franchise, owner_id FROM monitored_stores ORDER BY store_id`)
	metrics.RecordDBQuery("select", "monitored_stores", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var stores []models.MonitoredStore
	for rows.Next() {
		var s models.MonitoredStore
		if err := rows.Scan(&s.ID, &s.Name, &s.Franchise, &s.OwnerID); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// LoadArtists returns every monitored artist, active or not.
func (db *DB) LoadArtists(ctx context.Context) ([]models.MonitoredArtist, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name, normalized, active FROM monitored_artists ORDER BY name`)
	metrics.RecordDBQuery("select", "monitored_artists", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var artists []models.MonitoredArtist
	for rows.Next() {
		var a models.MonitoredArtist
		if err := rows.Scan(&a.Name, &a.Normalized, &a.Active); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// UpsertStore inserts or replaces a monitored store.
func (db *DB) UpsertStore(ctx context.Context, s models.MonitoredStore) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO monitored_stores (store_id, name, franchise, owner_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (store_id) DO UPDATE SET
			name = EXCLUDED.name,
			franchise = EXCLUDED.franchise,
			owner_id = EXCLUDED.owner_id`,
		s.ID, s.Name, s.Franchise, s.OwnerID)
	metrics.RecordDBQuery("upsert", "monitored_stores", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to upsert store %s: %w", s.ID, err)
	}
	return nil
}

// UpsertArtist inserts or replaces a monitored artist.
func (db *DB) UpsertArtist(ctx context.Context, a models.MonitoredArtist) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO monitored_artists (name, normalized, active)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			normalized = EXCLUDED.normalized,
			active = EXCLUDED.active`,
		a.Name, a.Normalized, a.Active)
	metrics.RecordDBQuery("upsert", "monitored_artists", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to upsert artist %s: %w", a.Name, err)
	}
	return nil
}
