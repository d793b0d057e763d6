// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

// Package config loads and validates Trunkline configuration.
//
// Configuration is layered via Koanf v2: struct defaults, then an optional
// YAML file, then environment variables (highest priority).
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for the Trunkline service.
type Config struct {
	NATS     NATSConfig     `koanf:"nats"`
	Database DatabaseConfig `koanf:"database"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// NATSConfig configures the JetStream transport carrying the
// trunk-recorder status stream.
type NATSConfig struct {
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	StreamName          string   `koanf:"stream_name"`
	Subjects            []string `koanf:"subjects"`
	StreamRetentionDays int      `koanf:"stream_retention_days"`

	DurableName string `koanf:"durable_name"`
	QueueGroup  string `koanf:"queue_group"`

	// SubscribersCount is the number of concurrent consumers. Keep at 1 for
	// strict per-stream ordering; lifecycle merges assume start is applied
	// before end when both are in flight.
	SubscribersCount int `koanf:"subscribers_count"`

	AckWaitTimeout time.Duration `koanf:"ack_wait_timeout"`
	MaxDeliver     int           `koanf:"max_deliver"`
	MaxAckPending  int           `koanf:"max_ack_pending"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
}

// DatabaseConfig configures the DuckDB archive.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// IngestConfig tunes the normalization engine.
type IngestConfig struct {
	// Breaker settings guard the sink: when the store fails repeatedly the
	// breaker opens and messages are redelivered instead of dropped.
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`

	// CommitTimeout bounds one message's sink transaction.
	CommitTimeout time.Duration `koanf:"commit_timeout"`
}

// MetricsConfig configures the Prometheus/health endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for inconsistencies before startup.
func (c *Config) Validate() error {
	if err := c.validateNATS(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateNATS() error {
	if !c.NATS.EmbeddedServer && c.NATS.URL == "" {
		return fmt.Errorf("nats: url required when embedded_server is disabled")
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("nats: stream_name required")
	}
	if len(c.NATS.Subjects) == 0 {
		return fmt.Errorf("nats: at least one subject required")
	}
	if c.NATS.StreamRetentionDays < 0 {
		return fmt.Errorf("nats: stream_retention_days must be >= 0, got %d", c.NATS.StreamRetentionDays)
	}
	if c.NATS.DurableName == "" {
		return fmt.Errorf("nats: durable_name required")
	}
	if c.NATS.SubscribersCount < 1 {
		return fmt.Errorf("nats: subscribers_count must be >= 1, got %d", c.NATS.SubscribersCount)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database: path required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database: threads must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.BreakerFailureThreshold == 0 {
		return fmt.Errorf("ingest: breaker_failure_threshold must be > 0")
	}
	if c.Ingest.CommitTimeout <= 0 {
		return fmt.Errorf("ingest: commit_timeout must be > 0, got %s", c.Ingest.CommitTimeout)
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if !c.Metrics.Enabled {
		return nil
	}
	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics: port must be 1-65535, got %d", c.Metrics.Port)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging: unknown format %q", c.Logging.Format)
	}
	return nil
}
