// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package duckdb

import (
	"context"
	"fmt"
)

// createTableStatements defines the archive schema. Entity tables key on
// the natural key carried by the stream; messages is append-only with a
// generated UUID key.
var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS systems (
		sys_num  INTEGER PRIMARY KEY,
		sys_name VARCHAR,
		type     VARCHAR,
		sysid    VARCHAR,
		wacn     VARCHAR,
		nac      VARCHAR,
		rfss     INTEGER,
		site_id  INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS units (
		unit_id        INTEGER PRIMARY KEY,
		unit_alpha_tag VARCHAR,
		sys_num        INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS talkgroups (
		talkgroup_id          INTEGER PRIMARY KEY,
		talkgroup_alpha_tag   VARCHAR,
		talkgroup_description VARCHAR,
		talkgroup_group       VARCHAR,
		talkgroup_tag         VARCHAR,
		talkgroup_patches     VARCHAR,
		sys_num               INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS recorders (
		id             VARCHAR PRIMARY KEY,
		src_num        INTEGER,
		rec_num        INTEGER,
		type           VARCHAR,
		freq           BIGINT,
		duration       DOUBLE,
		count          INTEGER,
		rec_state      INTEGER,
		rec_state_type VARCHAR,
		squelched      BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS calls (
		id                VARCHAR PRIMARY KEY,
		call_num          INTEGER,
		sys_num           INTEGER,
		freq              BIGINT,
		unit_id           INTEGER,
		talkgroup_id      INTEGER,
		elapsed           DOUBLE,
		length            DOUBLE,
		call_state        INTEGER,
		call_state_type   VARCHAR,
		mon_state         INTEGER,
		mon_state_type    VARCHAR,
		audio_type        VARCHAR,
		phase2_tdma       BOOLEAN,
		tdma_slot         INTEGER,
		analog            BOOLEAN,
		rec_num           INTEGER,
		src_num           INTEGER,
		rec_state         INTEGER,
		rec_state_type    VARCHAR,
		conventional      BOOLEAN,
		encrypted         BOOLEAN,
		emergency         BOOLEAN,
		start_time        BIGINT,
		stop_time         BIGINT,
		process_call_time BIGINT,
		error_count       INTEGER,
		spike_count       INTEGER,
		retry_attempt     INTEGER,
		freq_error        INTEGER,
		signal            INTEGER,
		noise             INTEGER,
		call_filename     VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS audio (
		call_id        VARCHAR PRIMARY KEY,
		audio_m4a      BLOB,
		audio_metadata VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id             UUID PRIMARY KEY,
		sys_num        INTEGER,
		trunk_msg      INTEGER,
		trunk_msg_type VARCHAR,
		opcode         VARCHAR,
		opcode_type    VARCHAR,
		opcode_desc    VARCHAR,
		meta           VARCHAR,
		timestamp      BIGINT,
		instance_id    VARCHAR
	)`,
}

// indexStatements speed up the common lookups: calls by talkgroup and time,
// messages by system and time.
var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_calls_talkgroup ON calls (talkgroup_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_calls_sys ON calls (sys_num, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_sys ON messages (sys_num, timestamp)`,
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range createTableStatements {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	for _, stmt := range indexStatements {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
