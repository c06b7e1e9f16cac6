// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

/*
Package api provides the HTTP trigger and reporting API for Playledger.

Routes (chi):

  - GET  /api/v1/health                     liveness and storage ping
  - POST /api/v1/settlement/runs            trigger a run ({date} or {from, to})
  - GET  /api/v1/settlement/runs?limit=     recent run summaries
  - GET  /api/v1/settlement/runs/{id}       one run summary
  - GET  /api/v1/settlement/validate        recompute and diff persisted stats
  - GET  /api/v1/daily-stats                persisted daily stats for a range
  - GET  /api/v1/revenue                    read-time revenue report
  - GET  /api/v1/ws                         run state WebSocket stream
  - GET  /metrics                           Prometheus
  - GET  /swagger/*                         Swagger UI and /swagger/doc.json

Every JSON response uses the models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "count": 3}}
	{"status": "error", "error": {"code": "VALIDATION_ERROR", "message": "..."}, "metadata": {...}}

Middleware applied to all routes: request ID with logging context, real IP,
panic recovery, CORS (go-chi/cors) and request logging. API routes add a
per-IP rate limit (go-chi/httprate), security headers and Prometheus
request metrics.

A triggered run executes synchronously and survives client disconnects; the
response carries the finished RunSummary. A run overlapping one already in
progress returns 409 Conflict.
*/
package api
