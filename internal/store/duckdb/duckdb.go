// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

// Package duckdb is the archival ingest.Sink: normalized relational tables
// in a single DuckDB file, with natural-key upserts that merge via
// COALESCE so absent fields never clobber stored values.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/trunkline/internal/config"
	"github.com/tomtom215/trunkline/internal/ingest"
	"github.com/tomtom215/trunkline/internal/logging"
)

// Store wraps the DuckDB connection pool.
type Store struct {
	conn *sql.DB
}

// Open opens (creating if needed) the DuckDB file and ensures the schema.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	// The data directory may not exist on first boot.
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	// Auto-install/auto-load is disabled so startup never reaches for the
	// network in restricted environments.
	connStr := fmt.Sprintf(
		"%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, threads, cfg.MaxMemory,
	)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{conn: conn}
	if err := s.initSchema(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", threads).Msg("DuckDB archive opened")
	return s, nil
}

// Begin starts one ingest transaction.
func (s *Store) Begin(ctx context.Context) (ingest.Tx, error) {
	sqlTx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &tx{tx: sqlTx}, nil
}

// DB exposes the underlying pool for queries outside the ingest path.
func (s *Store) DB() *sql.DB {
	return s.conn
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}
