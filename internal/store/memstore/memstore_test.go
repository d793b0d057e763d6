// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/trunkline/internal/models"
)

func TestCommitAppliesAtomically(t *testing.T) {
	store := New()
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	name := "County P25"
	if err := tx.UpsertSystem(ctx, &models.System{SysNum: 1, SysName: &name}); err != nil {
		t.Fatalf("UpsertSystem: %v", err)
	}
	if err := tx.UpsertUnit(ctx, &models.Unit{UnitID: 4411}); err != nil {
		t.Fatalf("UpsertUnit: %v", err)
	}

	// Nothing visible before commit.
	if _, ok := store.System(1); ok {
		t.Error("system visible before commit")
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, ok := store.System(1); !ok {
		t.Error("system missing after commit")
	}
	if _, ok := store.Unit(4411); !ok {
		t.Error("unit missing after commit")
	}
}

func TestRollbackDiscards(t *testing.T) {
	store := New()
	ctx := context.Background()

	tx, _ := store.Begin(ctx)
	if err := tx.UpsertSystem(ctx, &models.System{SysNum: 1}); err != nil {
		t.Fatalf("UpsertSystem: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if _, ok := store.System(1); ok {
		t.Error("system visible after rollback")
	}
	if err := tx.Commit(); !errors.Is(err, ErrTxDone) {
		t.Errorf("Commit after Rollback = %v, want ErrTxDone", err)
	}
}

func TestSameKeyTwiceInOneTx(t *testing.T) {
	store := New()
	ctx := context.Background()

	tx, _ := store.Begin(ctx)
	name := "Engine 1"
	sys := 1
	if err := tx.UpsertUnit(ctx, &models.Unit{UnitID: 4411, UnitAlphaTag: &name}); err != nil {
		t.Fatalf("UpsertUnit: %v", err)
	}
	if err := tx.UpsertUnit(ctx, &models.Unit{UnitID: 4411, SysNum: &sys}); err != nil {
		t.Fatalf("UpsertUnit: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	_, units, _, _, _, _, _ := store.Counts()
	if units != 1 {
		t.Fatalf("unit rows = %d, want 1", units)
	}
	u, _ := store.Unit(4411)
	if u.UnitAlphaTag == nil || *u.UnitAlphaTag != "Engine 1" {
		t.Errorf("UnitAlphaTag = %v, want Engine 1", u.UnitAlphaTag)
	}
	if u.SysNum == nil || *u.SysNum != 1 {
		t.Errorf("SysNum = %v, want 1", u.SysNum)
	}
}
