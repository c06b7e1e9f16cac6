// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

/*
Package services provides suture.Service wrappers for Playledger components.

Each wrapper translates a component's lifecycle (ListenAndServe, Start/Stop,
RunWithContext, a message subscription) into suture's context-aware Serve:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Available services:

  - HTTPServerService: the trigger and reporting API, with graceful shutdown
  - WebSocketHubService: the run state broadcast hub
  - SchedulerService: the cron trigger for daily settlement runs
  - EventLogService: logs run lifecycle events from the in-process transport

Every wrapper implements fmt.Stringer so suture names it in logs. Serve
returns ctx.Err() on shutdown and a wrapped error on failure, which suture
answers with a restart under its backoff policy.
*/
package services
