// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

/*
Package supervisor builds the suture v4 supervisor tree that runs the
long-lived parts of the settlement server.

	playledger (root)
	├── messaging-layer   WebSocket hub, run event log
	├── pipeline-layer    settlement scheduler
	└── api-layer         HTTP server

Supervisor events (restarts, backoff, stop timeouts) are logged through
sutureslog into the zerolog-backed slog handler of internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddPipelineService(services.NewSchedulerService(sched))
	tree.AddAPIService(services.NewHTTPServerService(server, 30*time.Second))
	err = tree.Serve(ctx) // blocks until ctx is canceled
*/
package supervisor
