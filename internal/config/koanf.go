// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/playledger/config.yaml",
	"/etc/playledger/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the defaults applied before file and env layers.
func defaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:             "https://ws.audioscrobbler.com/2.0/",
			PageSize:            200,
			RequestsPerSecond:   5,
			Timeout:             30 * time.Second,
			UserAgent:           "playledger/1.0",
			MaxRateLimitRetries: 5,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:             true,
				ConsecutiveFailures: 5,
				OpenTimeout:         60 * time.Second,
				HalfOpenRequests:    1,
			},
		},
		Settlement: SettlementConfig{
			UTCOffset:          9 * time.Hour,
			DailyCapPerTrack:   10,
			MaxOpsPerCommit:    450, // stays under common 500-write batch limits
			CommitThreshold:    450,
			CommitParallelism:  1,
			CollectConcurrency: 4,
			StoreTimeout:       5 * time.Minute,
			RunTimeout:         1 * time.Hour,
			RetryAttempts:      5,
			RetryDelay:         2 * time.Second,
		},
		Storage: StorageConfig{
			Backend:    "duckdb",
			DuckDBPath: "/data/playledger.duckdb",
			MaxMemory:  "1GB",
			BadgerPath: "/data/badger",
		},
		Registry: RegistryConfig{
			Backend:           "duckdb",
			MongoDatabase:     "playledger",
			StoresCollection:  "stores",
			ArtistsCollection: "artists",
			Timeout:           10 * time.Second,
		},
		Revenue: RevenueConfig{
			DefaultFranchise: "independent",
		},
		Schedule: ScheduleConfig{
			Enabled: true,
			Cron:    "30 1 * * *",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8087,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			StoreDir:       "/data/nats",
			Topic:          "settlement_runs",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from defaults, the optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored so the process environment cannot leak
// into configuration.
var envMappings = map[string]string{
	// Event source
	"lastfm_base_url":              "source.base_url",
	"lastfm_api_key":               "source.api_key",
	"lastfm_page_size":             "source.page_size",
	"lastfm_requests_per_second":   "source.requests_per_second",
	"lastfm_timeout":               "source.timeout",
	"lastfm_user_agent":            "source.user_agent",
	"lastfm_max_rate_limit_retry":  "source.max_rate_limit_retries",
	"circuit_breaker_enabled":      "source.circuit_breaker.enabled",
	"circuit_breaker_failures":     "source.circuit_breaker.consecutive_failures",
	"circuit_breaker_open_timeout": "source.circuit_breaker.open_timeout",

	// Settlement
	"settlement_utc_offset":          "settlement.utc_offset",
	"settlement_daily_cap":           "settlement.daily_cap_per_track",
	"settlement_max_ops_per_commit":  "settlement.max_ops_per_commit",
	"settlement_commit_threshold":    "settlement.commit_threshold",
	"settlement_commit_parallelism":  "settlement.commit_parallelism",
	"settlement_collect_concurrency": "settlement.collect_concurrency",
	"settlement_store_timeout":       "settlement.store_timeout",
	"settlement_run_timeout":         "settlement.run_timeout",
	"settlement_retry_attempts":      "settlement.retry_attempts",
	"settlement_retry_delay":         "settlement.retry_delay",

	// Storage
	"storage_backend":   "storage.backend",
	"duckdb_path":       "storage.duckdb_path",
	"duckdb_max_memory": "storage.max_memory",
	"duckdb_threads":    "storage.threads",
	"badger_path":       "storage.badger_path",
	"badger_in_memory":  "storage.badger_in_memory",

	// Registry
	"registry_backend":   "registry.backend",
	"registry_file":      "registry.file_path",
	"registry_mongo_uri": "registry.mongo_uri",
	"registry_mongo_db":  "registry.mongo_database",
	"registry_timeout":   "registry.timeout",

	// Revenue
	"revenue_default_franchise": "revenue.default_franchise",

	// Schedule
	"schedule_enabled": "schedule.enabled",
	"schedule_cron":    "schedule.cron",

	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_reqs",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",

	// NATS
	"nats_enabled":         "nats.enabled",
	"nats_url":             "nats.url",
	"nats_embedded_server": "nats.embedded_server",
	"nats_store_dir":       "nats.store_dir",
	"nats_topic":           "nats.topic",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps e.g. LASTFM_API_KEY to source.api_key. Unknown keys
// return "" and are dropped by the env provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
