// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Loading order (Koanf v2):
//  1. Defaults from defaultConfig()
//  2. Optional YAML file (CONFIG_PATH or one of DefaultConfigPaths)
//  3. Environment variables listed in envMappings
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Invalid configuration")
//	}
//	client := lastfm.NewClient(&cfg.Source)
type Config struct {
	Source     SourceConfig     `koanf:"source"`
	Settlement SettlementConfig `koanf:"settlement"`
	Storage    StorageConfig    `koanf:"storage"`
	Registry   RegistryConfig   `koanf:"registry"`
	Revenue    RevenueConfig    `koanf:"revenue"`
	Schedule   ScheduleConfig   `koanf:"schedule"`
	Server     ServerConfig     `koanf:"server"`
	NATS       NATSConfig       `koanf:"nats"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// SourceConfig configures the external scrobble API (Last.fm compatible).
type SourceConfig struct {
	// BaseURL is the API root, e.g. https://ws.audioscrobbler.com/2.0/
	BaseURL string `koanf:"base_url"`

	APIKey string `koanf:"api_key"`

	// PageSize is the number of tracks requested per page. The API caps it at 200.
	PageSize int `koanf:"page_size"`

	// RequestsPerSecond paces outgoing requests across all stores. 0 disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `koanf:"timeout"`

	UserAgent string `koanf:"user_agent"`

	// MaxRateLimitRetries bounds retries after HTTP 429 responses.
	MaxRateLimitRetries int `koanf:"max_rate_limit_retries"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// CircuitBreakerConfig configures the gobreaker wrapper around the source client.
type CircuitBreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32 `koanf:"consecutive_failures"`

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration `koanf:"open_timeout"`

	// HalfOpenRequests is the number of trial requests allowed while half-open.
	HalfOpenRequests uint32 `koanf:"half_open_requests"`
}

// SettlementConfig configures the pipeline itself.
type SettlementConfig struct {
	// UTCOffset is the fixed store-region offset used to derive store-local dates.
	UTCOffset time.Duration `koanf:"utc_offset"`

	// DailyCapPerTrack clamps plays of one track per store per day.
	DailyCapPerTrack int `koanf:"daily_cap_per_track"`

	// MaxOpsPerCommit is the largest number of records written in one transaction.
	MaxOpsPerCommit int `koanf:"max_ops_per_commit"`

	// CommitThreshold is the number of pending raw events that triggers a flush
	// while a store is still being paged. Must not exceed MaxOpsPerCommit.
	CommitThreshold int `koanf:"commit_threshold"`

	// CommitParallelism commits daily stat chunks concurrently when > 1.
	CommitParallelism int `koanf:"commit_parallelism"`

	// CollectConcurrency is the number of stores collected at once.
	CollectConcurrency int `koanf:"collect_concurrency"`

	// StoreTimeout abandons one store's collection after this long.
	StoreTimeout time.Duration `koanf:"store_timeout"`

	// RunTimeout is the deadline for a whole run.
	RunTimeout time.Duration `koanf:"run_timeout"`

	// RetryAttempts bounds page fetch attempts before a store is marked failed.
	RetryAttempts int `koanf:"retry_attempts"`

	// RetryDelay is the initial backoff, doubled after each failed attempt.
	RetryDelay time.Duration `koanf:"retry_delay"`
}

// StorageConfig selects and configures the event and daily stat store.
type StorageConfig struct {
	// Backend is duckdb or badger.
	Backend string `koanf:"backend"`

	DuckDBPath string `koanf:"duckdb_path"`
	MaxMemory  string `koanf:"max_memory"`
	Threads    int    `koanf:"threads"`

	BadgerPath     string `koanf:"badger_path"`
	BadgerInMemory bool   `koanf:"badger_in_memory"`
}

// RegistryConfig selects where monitored stores and artists are read from.
type RegistryConfig struct {
	// Backend is duckdb, mongo or file.
	Backend string `koanf:"backend"`

	// FilePath is the YAML registry used by the file backend.
	FilePath string `koanf:"file_path"`

	MongoURI          string `koanf:"mongo_uri"`
	MongoDatabase     string `koanf:"mongo_database"`
	StoresCollection  string `koanf:"stores_collection"`
	ArtistsCollection string `koanf:"artists_collection"`

	Timeout time.Duration `koanf:"timeout"`
}

// RevenueConfig holds payout tier tables keyed by franchise classification.
// Tables left empty fall back to the built-in tables of the revenue package.
type RevenueConfig struct {
	Tables map[string][]RevenueTier `koanf:"tables"`

	// DefaultFranchise prices stores whose franchise has no table.
	DefaultFranchise string `koanf:"default_franchise"`
}

// RevenueTier is one step of a payout table.
type RevenueTier struct {
	MinPlays int   `koanf:"min_plays"`
	Amount   int64 `koanf:"amount"`
}

// ScheduleConfig configures the cron trigger.
type ScheduleConfig struct {
	Enabled bool `koanf:"enabled"`

	// Cron is a 5-field expression evaluated in store-local time.
	Cron string `koanf:"cron"`
}

// ServerConfig configures the HTTP trigger and reporting API.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// NATSConfig configures run lifecycle event publishing.
type NATSConfig struct {
	// Enabled publishes to NATS. When false events go to an in-process channel.
	Enabled bool `koanf:"enabled"`

	URL string `koanf:"url"`

	// EmbeddedServer starts a NATS server inside the process.
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`

	// Topic receives settlement run events.
	Topic string `koanf:"topic"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
