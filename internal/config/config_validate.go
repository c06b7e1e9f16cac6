// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

var (
	validStorageBackends  = map[string]bool{"duckdb": true, "badger": true}
	validRegistryBackends = map[string]bool{"duckdb": true, "mongo": true, "file": true}
	validLogLevels        = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats       = map[string]bool{"json": true, "console": true}
)

// maxSourcePageSize is the largest limit the recent-tracks endpoint accepts.
const maxSourcePageSize = 200

// Validate checks every section and returns all problems joined.
func (c *Config) Validate() error {
	return errors.Join(
		c.validateSource(),
		c.validateSettlement(),
		c.validateStorage(),
		c.validateRegistry(),
		c.validateRevenue(),
		c.validateSchedule(),
		c.validateServer(),
		c.validateNATS(),
		c.validateLogging(),
	)
}

func (c *Config) validateSource() error {
	u, err := url.Parse(c.Source.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("LASTFM_BASE_URL must be an http(s) URL, got %q", c.Source.BaseURL)
	}
	if c.Source.PageSize < 1 || c.Source.PageSize > maxSourcePageSize {
		return fmt.Errorf("LASTFM_PAGE_SIZE must be between 1 and %d", maxSourcePageSize)
	}
	if c.Source.RequestsPerSecond < 0 {
		return fmt.Errorf("LASTFM_REQUESTS_PER_SECOND must not be negative")
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("LASTFM_TIMEOUT must be positive")
	}
	if c.Source.CircuitBreaker.Enabled && c.Source.CircuitBreaker.ConsecutiveFailures == 0 {
		return fmt.Errorf("CIRCUIT_BREAKER_FAILURES must be at least 1 when the breaker is enabled")
	}
	return nil
}

func (c *Config) validateSettlement() error {
	s := c.Settlement
	var errs []error
	if s.UTCOffset < -14*time.Hour || s.UTCOffset > 14*time.Hour {
		errs = append(errs, fmt.Errorf("SETTLEMENT_UTC_OFFSET must be within +/-14h, got %s", s.UTCOffset))
	}
	if s.UTCOffset%time.Minute != 0 {
		errs = append(errs, fmt.Errorf("SETTLEMENT_UTC_OFFSET must be a whole number of minutes"))
	}
	if s.DailyCapPerTrack < 1 {
		errs = append(errs, fmt.Errorf("SETTLEMENT_DAILY_CAP must be at least 1"))
	}
	if s.MaxOpsPerCommit < 0 {
		errs = append(errs, fmt.Errorf("SETTLEMENT_MAX_OPS_PER_COMMIT must not be negative (0 means unlimited)"))
	}
	if s.CommitThreshold < 1 {
		errs = append(errs, fmt.Errorf("SETTLEMENT_COMMIT_THRESHOLD must be at least 1"))
	}
	if s.MaxOpsPerCommit > 0 && s.CommitThreshold > s.MaxOpsPerCommit {
		errs = append(errs, fmt.Errorf("SETTLEMENT_COMMIT_THRESHOLD (%d) must not exceed SETTLEMENT_MAX_OPS_PER_COMMIT (%d)",
			s.CommitThreshold, s.MaxOpsPerCommit))
	}
	if s.CollectConcurrency < 1 {
		errs = append(errs, fmt.Errorf("SETTLEMENT_COLLECT_CONCURRENCY must be at least 1"))
	}
	if s.CommitParallelism < 1 {
		errs = append(errs, fmt.Errorf("SETTLEMENT_COMMIT_PARALLELISM must be at least 1"))
	}
	if s.StoreTimeout <= 0 || s.RunTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SETTLEMENT_STORE_TIMEOUT and SETTLEMENT_RUN_TIMEOUT must be positive"))
	}
	if s.RetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("SETTLEMENT_RETRY_ATTEMPTS must be at least 1"))
	}
	if s.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("SETTLEMENT_RETRY_DELAY must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) validateStorage() error {
	if !validStorageBackends[c.Storage.Backend] {
		return fmt.Errorf("STORAGE_BACKEND must be one of: %s", keys(validStorageBackends))
	}
	switch c.Storage.Backend {
	case "duckdb":
		if c.Storage.DuckDBPath == "" {
			return fmt.Errorf("DUCKDB_PATH is required for the duckdb backend")
		}
	case "badger":
		if c.Storage.BadgerPath == "" && !c.Storage.BadgerInMemory {
			return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
		}
		if c.Registry.Backend == "duckdb" && c.Storage.DuckDBPath == "" {
			return fmt.Errorf("DUCKDB_PATH is required for the duckdb registry")
		}
	}
	return nil
}

func (c *Config) validateRegistry() error {
	r := c.Registry
	if !validRegistryBackends[r.Backend] {
		return fmt.Errorf("REGISTRY_BACKEND must be one of: %s", keys(validRegistryBackends))
	}
	switch r.Backend {
	case "file":
		if r.FilePath == "" {
			return fmt.Errorf("REGISTRY_FILE is required for the file registry")
		}
	case "mongo":
		if !strings.HasPrefix(r.MongoURI, "mongodb://") && !strings.HasPrefix(r.MongoURI, "mongodb+srv://") {
			return fmt.Errorf("REGISTRY_MONGO_URI must start with mongodb:// or mongodb+srv://")
		}
		if r.MongoDatabase == "" || r.StoresCollection == "" || r.ArtistsCollection == "" {
			return fmt.Errorf("registry mongo database and collection names are required")
		}
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("REGISTRY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateRevenue() error {
	for franchise, tiers := range c.Revenue.Tables {
		if len(tiers) == 0 {
			return fmt.Errorf("revenue table %q has no tiers", franchise)
		}
		for i, t := range tiers {
			if t.MinPlays < 0 || t.Amount < 0 {
				return fmt.Errorf("revenue table %q tier %d: thresholds and amounts must not be negative", franchise, i)
			}
			if i > 0 && t.MinPlays <= tiers[i-1].MinPlays {
				return fmt.Errorf("revenue table %q tier %d: thresholds must be strictly ascending", franchise, i)
			}
		}
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if !c.Schedule.Enabled {
		return nil
	}
	if len(strings.Fields(c.Schedule.Cron)) != 5 {
		return fmt.Errorf("SCHEDULE_CRON must have 5 fields, got %q", c.Schedule.Cron)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if !c.Server.RateLimitDisabled && (c.Server.RateLimitReqs < 1 || c.Server.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive unless DISABLE_RATE_LIMIT=true")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" && !c.NATS.EmbeddedServer {
		return fmt.Errorf("NATS_URL is required when NATS is enabled without the embedded server")
	}
	if c.NATS.Topic == "" {
		return fmt.Errorf("NATS_TOPIC must not be empty")
	}
	// The topic also names the JetStream stream.
	if strings.ContainsAny(c.NATS.Topic, ". *>") {
		return fmt.Errorf("NATS_TOPIC must not contain '.', '*', '>' or spaces: %q", c.NATS.Topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func keys(m map[string]bool) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
