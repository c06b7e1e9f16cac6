// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"page size too large", func(c *Config) { c.Source.PageSize = 500 }, "LASTFM_PAGE_SIZE"},
		{"bad base url", func(c *Config) { c.Source.BaseURL = "ftp://x" }, "LASTFM_BASE_URL"},
		{"offset out of range", func(c *Config) { c.Settlement.UTCOffset = 15 * time.Hour }, "SETTLEMENT_UTC_OFFSET"},
		{"offset with seconds", func(c *Config) { c.Settlement.UTCOffset = 9*time.Hour + time.Second }, "whole number of minutes"},
		{"negative offset ok", func(c *Config) { c.Settlement.UTCOffset = -5 * time.Hour }, ""},
		{"threshold above commit limit", func(c *Config) {
			c.Settlement.MaxOpsPerCommit = 100
			c.Settlement.CommitThreshold = 200
		}, "SETTLEMENT_COMMIT_THRESHOLD"},
		{"unlimited commits", func(c *Config) {
			c.Settlement.MaxOpsPerCommit = 0
			c.Settlement.CommitThreshold = 1000
		}, ""},
		{"no retries", func(c *Config) { c.Settlement.RetryAttempts = 0 }, "SETTLEMENT_RETRY_ATTEMPTS"},
		{"file registry without path", func(c *Config) { c.Registry.Backend = "file" }, "REGISTRY_FILE"},
		{"mongo registry bad uri", func(c *Config) {
			c.Registry.Backend = "mongo"
			c.Registry.MongoURI = "localhost:27017"
		}, "REGISTRY_MONGO_URI"},
		{"mongo registry ok", func(c *Config) {
			c.Registry.Backend = "mongo"
			c.Registry.MongoURI = "mongodb://localhost:27017"
		}, ""},
		{"badger without path", func(c *Config) {
			c.Storage.Backend = "badger"
			c.Storage.BadgerPath = ""
		}, "BADGER_PATH"},
		{"badger in memory", func(c *Config) {
			c.Storage.Backend = "badger"
			c.Storage.BadgerPath = ""
			c.Storage.BadgerInMemory = true
		}, ""},
		{"revenue tiers not ascending", func(c *Config) {
			c.Revenue.Tables = map[string][]RevenueTier{"x": {{MinPlays: 10, Amount: 1}, {MinPlays: 10, Amount: 2}}}
		}, "strictly ascending"},
		{"cron wrong field count", func(c *Config) { c.Schedule.Cron = "* * *" }, "SCHEDULE_CRON"},
		{"cron ignored when disabled", func(c *Config) {
			c.Schedule.Enabled = false
			c.Schedule.Cron = ""
		}, ""},
		{"port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"nats topic", func(c *Config) {
			c.NATS.Enabled = true
			c.NATS.Topic = ""
		}, "NATS_TOPIC"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()
	s := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := s.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q", got)
	}
}
