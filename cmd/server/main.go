// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/playledger/docs" // swagger docs
	"github.com/tomtom215/playledger/internal/api"
	"github.com/tomtom215/playledger/internal/app"
	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/scheduler"
	"github.com/tomtom215/playledger/internal/supervisor"
	"github.com/tomtom215/playledger/internal/supervisor/services"
	ws "github.com/tomtom215/playledger/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("storage", cfg.Storage.Backend).
		Str("registry", cfg.Registry.Backend).
		Bool("nats", cfg.NATS.Enabled).
		Bool("schedule", cfg.Schedule.Enabled).
		Dur("utc_offset", cfg.Settlement.UTCOffset).
		Msg("Starting Playledger with supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Hub is created before the pipeline so it can observe run events.
	wsHub := ws.NewHub()

	pipeline, err := app.Build(ctx, cfg, wsHub)
	if err != nil {
		return err
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing pipeline")
		}
	}()
	logging.Info().Msg("Settlement pipeline initialized")

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		return err
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Messaging layer
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	if !cfg.NATS.Enabled {
		tree.AddMessagingService(services.NewEventLogService(pipeline.Publisher, nil))
	}

	// Pipeline layer
	if cfg.Schedule.Enabled {
		sched, err := scheduler.New(&cfg.Schedule, cfg.Settlement.UTCOffset, pipeline.Orchestrator)
		if err != nil {
			return err
		}
		tree.AddPipelineService(services.NewSchedulerService(sched))
		logging.Info().Str("cron", cfg.Schedule.Cron).Msg("Settlement scheduler added to supervisor tree")
	}

	// API layer
	handler := api.NewHandler(api.Deps{
		Settler:   pipeline.Orchestrator,
		Runs:      pipeline.Storage,
		Stats:     pipeline.Storage,
		Storage:   pipeline.Storage,
		Revenue:   pipeline.Revenue,
		WebSocket: ws.Handler(wsHub, cfg.Server.CORSOrigins),
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.MiddlewareConfigFromServer(&cfg.Server)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Triggered runs answer synchronously and may outlive the read timeout.
		WriteTimeout: cfg.Settlement.RunTimeout + cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	// Report any services that failed to stop within timeout
	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Playledger stopped gracefully")
	return nil
}
