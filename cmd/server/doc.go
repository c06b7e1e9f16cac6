// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

/*
Package main is the entry point for the Playledger server.

Playledger settles store listening history into validated daily play counts.
The server collects scrobbles for every monitored store, filters them against
the artist allow-list, caps repeats and commits one daily stat per store and
store-local date. Revenue is computed from those stats when reports are read.

# Application Architecture

The server runs a Suture v4 supervisor tree:

	RootSupervisor ("playledger")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (run state stream)
	│   └── Run event log (in-process transport only)
	├── PipelineSupervisor ("pipeline-layer")
	│   └── Settlement scheduler (cron, optional)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog, json or console
 3. Storage: DuckDB (default) or BadgerDB for raw events, daily stats and runs
 4. Registry: DuckDB tables, MongoDB or a YAML file
 5. Events: Watermill publisher over NATS JetStream or an in-process channel
 6. Orchestrator: collection, settlement and batch persistence
 7. Scheduler, HTTP API and supervisor tree

# Configuration

Common environment variables:

	LASTFM_API_KEY              scrobble API key (required)
	SETTLEMENT_UTC_OFFSET       store-region offset, default 9h
	SETTLEMENT_DAILY_CAP        plays per track per store per day, default 10
	STORAGE_BACKEND             duckdb or badger
	REGISTRY_BACKEND            duckdb, mongo or file
	SCHEDULE_CRON               5-field cron in store-local time, default "30 1 * * *"
	NATS_ENABLED                publish run events to NATS
	HTTP_PORT                   default 8087

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests, the scheduler waits for a run in progress, and storage and the
event publisher are closed last.

# Example Usage

	export LASTFM_API_KEY=your-key
	export REGISTRY_BACKEND=file
	export REGISTRY_FILE=/etc/playledger/registry.yaml
	./playledger-server

	curl -X POST localhost:8087/api/v1/settlement/runs -d '{"date":"2024-03-02"}'
*/
//
// @title Playledger API
// @version 1.0
// @description Settlement trigger, run log and play count reports for monitored stores.
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8087
// @BasePath /api/v1
// @schemes http https
//
// @tag.name Core
// @tag.description Health and the run state stream
//
// @tag.name Settlement
// @tag.description Run trigger, run log and validation
//
// @tag.name Reports
// @tag.description Daily stats and read-time revenue
package main
