// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package app assembles the settlement pipeline from configuration. Both
// binaries use it: cmd/server adds the HTTP API, scheduler and supervisor
// tree on top, cmd/settle executes a single run and exits.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tomtom215/playledger/internal/api"
	"github.com/tomtom215/playledger/internal/collector"
	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/database"
	"github.com/tomtom215/playledger/internal/events"
	"github.com/tomtom215/playledger/internal/kvstore"
	"github.com/tomtom215/playledger/internal/lastfm"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/orchestrator"
	"github.com/tomtom215/playledger/internal/registry"
	"github.com/tomtom215/playledger/internal/revenue"
)

// Storage is the full method set both storage backends provide.
type Storage interface {
	orchestrator.EventStore
	orchestrator.RunRecorder
	collector.EventWriter
	api.RunLog
	api.Pinger
	io.Closer
}

var (
	_ Storage         = (*database.DB)(nil)
	_ Storage         = (*kvstore.Store)(nil)
	_ registry.Source = (*database.DB)(nil)
)

// App is an assembled pipeline. Close releases everything Build opened.
type App struct {
	Config       *config.Config
	Storage      Storage
	Registry     registry.Reader
	Revenue      *revenue.Calculator
	Publisher    *events.Publisher
	Orchestrator *orchestrator.Orchestrator

	closers []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

// Build opens storage, the registry backend and the event publisher, and
// wires them into an Orchestrator. Extra observers receive run events next
// to the publisher.
func Build(ctx context.Context, cfg *config.Config, observers ...orchestrator.Observer) (*App, error) {
	a := &App{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	var duck *database.DB
	switch cfg.Storage.Backend {
	case "", "duckdb":
		db, err := database.New(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("open duckdb storage: %w", err)
		}
		a.addCloser("duckdb", db)
		duck = db
		a.Storage = db
	case "badger":
		kv, err := kvstore.Open(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("open badger storage: %w", err)
		}
		a.addCloser("badger", kv)
		a.Storage = kv
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	logging.Info().Str("backend", backendName(cfg.Storage.Backend)).Msg("Storage opened")

	// The duckdb registry lives in the DuckDB file even when events go to Badger.
	if duck == nil && (cfg.Registry.Backend == "" || cfg.Registry.Backend == "duckdb") {
		db, err := database.New(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("open duckdb registry: %w", err)
		}
		a.addCloser("duckdb-registry", db)
		duck = db
	}

	var regSource registry.Source
	if duck != nil {
		regSource = duck
	}
	reader, regCloser, err := registry.Open(ctx, &cfg.Registry, regSource)
	if err != nil {
		return nil, err
	}
	a.addCloser("registry", regCloser)
	a.Registry = reader

	calc, err := revenue.NewCalculatorFromConfig(&cfg.Revenue)
	if err != nil {
		return nil, fmt.Errorf("revenue tables: %w", err)
	}
	a.Revenue = calc

	pub, err := events.New(&cfg.NATS)
	if err != nil {
		return nil, fmt.Errorf("event publisher: %w", err)
	}
	a.addCloser("events", pub)
	a.Publisher = pub

	coll := collector.New(lastfm.New(&cfg.Source), a.Storage, collector.OptionsFromConfig(&cfg.Source, &cfg.Settlement))

	a.Orchestrator = orchestrator.New(orchestrator.Deps{
		Registry:  a.Registry,
		Collector: coll,
		Store:     a.Storage,
		Recorder:  a.Storage,
		Observers: append([]orchestrator.Observer{pub}, observers...),
	}, orchestrator.OptionsFromConfig(&cfg.Settlement))

	ok = true
	return a, nil
}

func (a *App) addCloser(name string, c io.Closer) {
	a.closers = append(a.closers, namedCloser{name: name, c: c})
}

// Close releases resources in reverse opening order and joins the errors.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		nc := a.closers[i]
		if err := nc.c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", nc.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func backendName(b string) string {
	if b == "" {
		return "duckdb"
	}
	return b
}
