// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/playledger/internal/metrics"
	"github.com/tomtom215/playledger/internal/models"
)

// ErrRunNotFound is returned by Run for an unknown run ID.
var ErrRunNotFound = models.ErrRunNotFound

// RecordRun stores a run summary, replacing an earlier record of the same run.
func (db *DB) RecordRun(ctx context.Context, s *models.RunSummary) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO settlement_runs (
			run_id, trigger, from_date, to_date, state, success, cause,
			started_at, finished_at, summary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET
			state = EXCLUDED.state,
			success = EXCLUDED.success,
			cause = EXCLUDED.cause,
			finished_at = EXCLUDED.finished_at,
			summary = EXCLUDED.summary`,
		s.RunID, string(s.Trigger), s.From, s.To, string(s.State), s.Success, s.Cause,
		s.StartedAt.UTC(), s.FinishedAt.UTC(), string(payload))
	metrics.RecordDBQuery("upsert", "settlement_runs", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", s.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit run summaries, newest first.
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT summary FROM settlement_runs ORDER BY started_at DESC LIMIT ?`, limit)
	metrics.RecordDBQuery("select", "settlement_runs", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var runs []models.RunSummary
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		var s models.RunSummary
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, fmt.Errorf("failed to decode run summary: %w", err)
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// Run returns one run summary by ID.
func (db *DB) Run(ctx context.Context, runID string) (*models.RunSummary, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var payload string
	err := db.conn.QueryRowContext(ctx,
		`SELECT summary FROM settlement_runs WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	var s models.RunSummary
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, fmt.Errorf("failed to decode run summary: %w", err)
	}
	return &s, nil
}
