// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package ingest

import (
	"context"

	"github.com/tomtom215/trunkline/internal/models"
)

// Sink abstracts the persistence backend. The engine is written against
// this interface only; implementations may be normalized relational tables
// (internal/store/duckdb) or per-type document collections
// (internal/store/memstore).
type Sink interface {
	// Begin opens one transaction. The engine opens exactly one per
	// inbound message and commits or rolls it back before returning.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the unit of atomicity for one message. Every upsert is an atomic
// find-or-insert-or-merge keyed by the entity's natural key: fields that are
// nil in the given attribute set must be left untouched on an existing row,
// never nulled. Calling an upsert twice with the same key inside one
// transaction must not create two rows.
//
// Foreign relationships ride on the child attribute sets (a call carries
// sys_num/unit_id/talkgroup_id), so linking is part of the child upsert.
type Tx interface {
	UpsertSystem(ctx context.Context, sys *models.System) error
	UpsertUnit(ctx context.Context, unit *models.Unit) error
	UpsertTalkgroup(ctx context.Context, tg *models.Talkgroup) error
	UpsertRecorder(ctx context.Context, rec *models.Recorder) error
	UpsertCall(ctx context.Context, call *models.Call) error
	UpsertAudio(ctx context.Context, audio *models.Audio) error

	// InsertMessage appends one control-channel message row. Always an
	// insert, never an update; rows are immutable once written.
	InsertMessage(ctx context.Context, msg *models.TrunkMessage) error

	Commit() error
	Rollback() error
}
