// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package duckdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/trunkline/internal/config"
	"github.com/tomtom215/trunkline/internal/ingest"
	"github.com/tomtom215/trunkline/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(config.DatabaseConfig{
		Path:      filepath.Join(t.TempDir(), "test.duckdb"),
		MaxMemory: "256MB",
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func commit(t *testing.T, tx ingest.Tx) {
	t.Helper()
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestOpenCreatesSchema(t *testing.T) {
	store := newTestStore(t)

	for _, table := range []string{"systems", "units", "talkgroups", "recorders", "calls", "audio", "messages"} {
		var count int
		err := store.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestUpsertSystemMergesWithoutClobber(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	full := &models.System{
		SysNum:  1,
		SysName: strPtr("County P25"),
		Type:    strPtr("p25"),
		WACN:    strPtr("BEE00"),
	}
	if err := tx.UpsertSystem(ctx, full); err != nil {
		t.Fatalf("UpsertSystem: %v", err)
	}
	commit(t, tx)

	// Partial update carrying only rfss must not null the rest.
	tx, _ = store.Begin(ctx)
	if err := tx.UpsertSystem(ctx, &models.System{SysNum: 1, RFSS: intPtr(2)}); err != nil {
		t.Fatalf("UpsertSystem partial: %v", err)
	}
	commit(t, tx)

	var (
		name, typ, wacn sql.NullString
		rfss            sql.NullInt32
		count           int
	)
	row := store.DB().QueryRow("SELECT sys_name, type, wacn, rfss FROM systems WHERE sys_num = 1")
	if err := row.Scan(&name, &typ, &wacn, &rfss); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if name.String != "County P25" || typ.String != "p25" || wacn.String != "BEE00" {
		t.Errorf("partial upsert clobbered fields: name=%v type=%v wacn=%v", name, typ, wacn)
	}
	if !rfss.Valid || rfss.Int32 != 2 {
		t.Errorf("rfss = %v, want 2", rfss)
	}

	if err := store.DB().QueryRow("SELECT COUNT(*) FROM systems").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("system rows = %d, want 1", count)
	}
}

func TestUpsertCallLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	start := int64(1700000000)
	tx, _ := store.Begin(ctx)
	err := tx.UpsertCall(ctx, &models.Call{
		ID:           "1234_1700000000",
		SysNum:       intPtr(1),
		UnitID:       intPtr(4411),
		TalkgroupID:  intPtr(101),
		StartTime:    &start,
		CallFilename: strPtr("1234-1700000000_851250000.0-call_88.wav"),
	})
	if err != nil {
		t.Fatalf("UpsertCall start: %v", err)
	}
	commit(t, tx)

	length := 43.5
	stop := int64(1700000044)
	tx, _ = store.Begin(ctx)
	err = tx.UpsertCall(ctx, &models.Call{
		ID:            "1234_1700000000",
		Length:        &length,
		StopTime:      &stop,
		CallStateType: strPtr("COMPLETED"),
	})
	if err != nil {
		t.Fatalf("UpsertCall end: %v", err)
	}
	commit(t, tx)

	var (
		unitID    sql.NullInt32
		gotLength sql.NullFloat64
		gotStart  sql.NullInt64
		state     sql.NullString
	)
	row := store.DB().QueryRow(
		"SELECT unit_id, length, start_time, call_state_type FROM calls WHERE id = ?",
		"1234_1700000000")
	if err := row.Scan(&unitID, &gotLength, &gotStart, &state); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !unitID.Valid || unitID.Int32 != 4411 {
		t.Errorf("unit_id = %v, want 4411", unitID)
	}
	if !gotStart.Valid || gotStart.Int64 != start {
		t.Errorf("start_time = %v, want %d", gotStart, start)
	}
	if !gotLength.Valid || gotLength.Float64 != length {
		t.Errorf("length = %v, want %v", gotLength, length)
	}
	if state.String != "COMPLETED" {
		t.Errorf("call_state_type = %v, want COMPLETED", state)
	}
}

func TestUpsertAudioKeepsPayload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tx, _ := store.Begin(ctx)
	err := tx.UpsertAudio(ctx, &models.Audio{
		CallID:   "1234_1700000000",
		AudioM4A: []byte("not real audio"),
		Metadata: []byte(`{"call_filename":"1234-x.wav","start_time":1700000000}`),
	})
	if err != nil {
		t.Fatalf("UpsertAudio: %v", err)
	}
	commit(t, tx)

	// Metadata-only upsert must not drop the stored bytes.
	tx, _ = store.Begin(ctx)
	err = tx.UpsertAudio(ctx, &models.Audio{
		CallID:   "1234_1700000000",
		Metadata: []byte(`{"call_filename":"1234-x.wav","start_time":1700000000,"talkgroup":101}`),
	})
	if err != nil {
		t.Fatalf("UpsertAudio metadata only: %v", err)
	}
	commit(t, tx)

	var blob []byte
	var meta string
	row := store.DB().QueryRow("SELECT audio_m4a, audio_metadata FROM audio WHERE call_id = ?", "1234_1700000000")
	if err := row.Scan(&blob, &meta); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if string(blob) != "not real audio" {
		t.Errorf("audio_m4a = %q, want original bytes", blob)
	}
	if meta == "" || meta[0] != '{' {
		t.Errorf("audio_metadata = %q, want JSON blob", meta)
	}
}

func TestInsertMessageAppendOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ts := int64(1700000010)
	for i := 0; i < 2; i++ {
		tx, _ := store.Begin(ctx)
		err := tx.InsertMessage(ctx, &models.TrunkMessage{
			ID:        uuid.New(),
			SysNum:    intPtr(1),
			Opcode:    strPtr("0x00"),
			Timestamp: &ts,
		})
		if err != nil {
			t.Fatalf("InsertMessage %d: %v", i, err)
		}
		commit(t, tx)
	}

	var count int
	if err := store.DB().QueryRow("SELECT COUNT(*) FROM messages").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("message rows = %d, want 2", count)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tx, _ := store.Begin(ctx)
	if err := tx.UpsertSystem(ctx, &models.System{SysNum: 9}); err != nil {
		t.Fatalf("UpsertSystem: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	var count int
	if err := store.DB().QueryRow("SELECT COUNT(*) FROM systems").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("system rows = %d, want 0 after rollback", count)
	}
}
