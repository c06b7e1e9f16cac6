// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/logging"
)

// defaultQueryTimeout applies when the caller's context has no deadline.
const defaultQueryTimeout = 30 * time.Second

// DB wraps the DuckDB connection. It holds the registry tables, raw play
// events, daily stats and the settlement run log.
type DB struct {
	conn *sql.DB
	cfg  *config.StorageConfig
}

// New opens (or creates) the DuckDB database and initializes the schema.
// Use DuckDBPath ":memory:" for tests.
func New(cfg *config.StorageConfig) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	if cfg.DuckDBPath != ":memory:" {
		dir := filepath.Dir(cfg.DuckDBPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.DuckDBPath, threads, maxMemory)
	if cfg.DuckDBPath == ":memory:" {
		connStr = fmt.Sprintf("?threads=%d&max_memory=%s", threads, maxMemory)
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single in-memory database must not be split across pool connections.
	if cfg.DuckDBPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(threads)
		conn.SetMaxIdleConns(2)
		conn.SetConnMaxIdleTime(5 * time.Minute)
	}

	db := &DB{conn: conn, cfg: cfg}
	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().Str("path", cfg.DuckDBPath).Int("threads", threads).Msg("DuckDB opened")
	return db, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// Conn exposes the raw connection for tests and admin tooling.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// ensureContext adds defaultQueryTimeout to contexts without a deadline.
func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}
