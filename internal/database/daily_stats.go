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

const upsertDailyStatSQL = `
	INSERT INTO daily_stats (
		stat_date, store_id, validated_plays, store_name, franchise,
		raw_plays, excluded_plays, capped_plays, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (stat_date, store_id) DO UPDATE SET
		validated_plays = EXCLUDED.validated_plays,
		store_name = EXCLUDED.store_name,
		franchise = EXCLUDED.franchise,
		raw_plays = EXCLUDED.raw_plays,
		excluded_plays = EXCLUDED.excluded_plays,
		capped_plays = EXCLUDED.capped_plays,
		updated_at = EXCLUDED.updated_at`

// CommitDailyStats writes one chunk of daily stats in a single transaction,
// overwriting existing rows with the same (date, store) key.
func (db *DB) CommitDailyStats(ctx context.Context, chunk []models.DailyStat) (err error) {
	if len(chunk) == 0 {
		return nil
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "daily_stats", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollback(tx, err)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertDailyStatSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare daily stat upsert: %w", err)
	}
	defer closeWithLog(stmt, "statement")

	for i := range chunk {
		s := &chunk[i]
		updated := s.UpdatedAt
		if updated.IsZero() {
			updated = time.Now()
		}
		if _, err = stmt.ExecContext(ctx,
			s.Date, s.StoreID, s.ValidatedPlays, s.StoreName, s.Franchise,
			s.RawPlays, s.ExcludedPlays, s.CappedPlays, updated.UTC(),
		); err != nil {
			return fmt.Errorf("failed to upsert daily stat %s: %w", s.Key(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily stats: %w", err)
	}
	return nil
}

// DailyStatsBetween returns stats with from <= date <= to, optionally for one
// store, ordered by (date, store).
func (db *DB) DailyStatsBetween(ctx context.Context, from, to, storeID string) ([]models.DailyStat, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	query := `
		SELECT stat_date, store_id, validated_plays, store_name, franchise,
			raw_plays, excluded_plays, capped_plays, updated_at
		FROM daily_stats
		WHERE stat_date BETWEEN ? AND ?`
	args := []any{from, to}
	if storeID != "" {
		query += " AND store_id = ?"
		args = append(args, storeID)
	}
	query += " ORDER BY stat_date, store_id"

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "daily_stats", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var stats []models.DailyStat
	for rows.Next() {
		var s models.DailyStat
		if err := rows.Scan(&s.Date, &s.StoreID, &s.ValidatedPlays, &s.StoreName, &s.Franchise,
			&s.RawPlays, &s.ExcludedPlays, &s.CappedPlays, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		s.UpdatedAt = s.UpdatedAt.UTC()
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
