// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

// Package main is the entry point for the Trunkline ingest server.
//
// Trunkline archives a trunk-recorder monitoring deployment: it consumes
// the status stream over NATS JetStream, normalizes every message into the
// entity graph (systems, units, talkgroups, recorders, calls, audio,
// control messages), and commits each message atomically into a DuckDB
// archive.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layers (defaults, optional YAML file,
//     environment variables)
//  2. Logging: zerolog, JSON or console
//  3. DuckDB archive: open the file, ensure schema
//  4. NATS: embedded JetStream server (single-box default) or external
//     broker, stream provisioning
//  5. Supervisor tree: ingest consumer plus metrics/health endpoint
//
// # Configuration
//
// Everything has a default; common overrides:
//
//	export NATS_EMBEDDED=false
//	export NATS_URL=nats://broker:4222
//	export DUCKDB_PATH=/data/trunkline.duckdb
//	export LOG_LEVEL=debug
//	./trunkline
//
// # Signal handling
//
// SIGINT and SIGTERM stop consumption, let in-flight transactions finish,
// and shut down the embedded NATS server last so acked state is flushed.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/trunkline/internal/config"
	"github.com/tomtom215/trunkline/internal/ingest"
	"github.com/tomtom215/trunkline/internal/logging"
	"github.com/tomtom215/trunkline/internal/metrics"
	"github.com/tomtom215/trunkline/internal/store/duckdb"
	"github.com/tomtom215/trunkline/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Msg("Trunkline starting")

	store, err := duckdb.Open(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open archive")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Err(err).Msg("Closing archive failed")
		}
	}()

	nats, err := initNATS(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize NATS")
	}
	defer nats.shutdown()

	engine := ingest.NewEngine(store, cfg.Ingest)
	service := ingest.NewService(nats.subscriber, engine, cfg.NATS.Subjects[0])

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddIngestService(service)
	if cfg.Metrics.Enabled {
		tree.AddObservabilityService(metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Err(err).Msg("Supervisor tree exited")
		os.Exit(1)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	// Give the subscriber a moment to flush acks before the embedded
	// server goes down.
	time.Sleep(100 * time.Millisecond)
	logging.Info().Msg("Trunkline stopped")
}
