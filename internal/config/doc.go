// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

/*
Package config loads and validates Playledger configuration.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then a fixed set of environment variables. Later layers win.

# Sections

  - source: external scrobble API (base URL, API key, paging, pacing, circuit breaker)
  - settlement: UTC offset, daily per-track cap, maxOpsPerCommit, retries, timeouts
  - storage: duckdb or badger backend for raw events and daily stats
  - registry: duckdb, mongo or file backend for stores and the artist allow-list
  - revenue: payout tier tables per franchise
  - schedule: cron trigger
  - server: HTTP API, CORS and rate limiting
  - nats: run lifecycle event publishing
  - logging: level and format

# Example YAML

	source:
	  api_key: "..."
	settlement:
	  utc_offset: 9h
	  daily_cap_per_track: 10
	  max_ops_per_commit: 450
	registry:
	  backend: file
	  file_path: /etc/playledger/registry.yaml
	revenue:
	  tables:
	    partner-a:
	      - {min_plays: 2500, amount: 11000}
	      - {min_plays: 5000, amount: 16500}
	      - {min_plays: 7500, amount: 22000}

# Environment Variables

See envMappings in koanf.go for the full list. Common ones:

  - LASTFM_API_KEY, LASTFM_BASE_URL
  - SETTLEMENT_UTC_OFFSET, SETTLEMENT_DAILY_CAP, SETTLEMENT_MAX_OPS_PER_COMMIT
  - STORAGE_BACKEND, DUCKDB_PATH, BADGER_PATH
  - REGISTRY_BACKEND, REGISTRY_FILE, REGISTRY_MONGO_URI
  - HTTP_PORT, LOG_LEVEL, LOG_FORMAT
*/
package config
