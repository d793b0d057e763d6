// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

// Package memstore is an in-memory ingest.Sink: per-type collections keyed
// by natural key, with buffered transactions that apply atomically on
// commit. It backs the engine tests and serves as a sink for ephemeral
// deployments where the DuckDB archive is not wanted.
package memstore

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/trunkline/internal/ingest"
	"github.com/tomtom215/trunkline/internal/models"
)

// ErrTxDone is returned when a transaction is used after Commit or Rollback.
var ErrTxDone = errors.New("memstore: transaction has already been committed or rolled back")

// Store holds all entity collections. Safe for concurrent use; every
// transaction commits under one lock, so readers never observe a partially
// applied message.
type Store struct {
	mu         sync.RWMutex
	systems    map[int]*models.System
	units      map[int]*models.Unit
	talkgroups map[int]*models.Talkgroup
	recorders  map[string]*models.Recorder
	calls      map[string]*models.Call
	audio      map[string]*models.Audio
	messages   []*models.TrunkMessage

	commitErr error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		systems:    make(map[int]*models.System),
		units:      make(map[int]*models.Unit),
		talkgroups: make(map[int]*models.Talkgroup),
		recorders:  make(map[string]*models.Recorder),
		calls:      make(map[string]*models.Call),
		audio:      make(map[string]*models.Audio),
	}
}

// Begin opens a buffered transaction. Upserts are staged and applied only
// on Commit.
func (s *Store) Begin(_ context.Context) (ingest.Tx, error) {
	return &tx{store: s}, nil
}

// FailCommits makes every subsequent Commit fail with err without applying
// anything. Pass nil to restore normal behavior. Test hook.
func (s *Store) FailCommits(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

// System returns a copy of the stored system, if present.
func (s *Store) System(sysNum int) (models.System, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sys, ok := s.systems[sysNum]
	if !ok {
		return models.System{}, false
	}
	return *sys, true
}

// Unit returns a copy of the stored unit, if present.
func (s *Store) Unit(unitID int) (models.Unit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.units[unitID]
	if !ok {
		return models.Unit{}, false
	}
	return *u, true
}

// Talkgroup returns a copy of the stored talkgroup, if present.
func (s *Store) Talkgroup(talkgroupID int) (models.Talkgroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tg, ok := s.talkgroups[talkgroupID]
	if !ok {
		return models.Talkgroup{}, false
	}
	return *tg, true
}

// Recorder returns a copy of the stored recorder, if present.
func (s *Store) Recorder(id string) (models.Recorder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recorders[id]
	if !ok {
		return models.Recorder{}, false
	}
	return *r, true
}

// Call returns a copy of the stored call, if present.
func (s *Store) Call(id string) (models.Call, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.calls[id]
	if !ok {
		return models.Call{}, false
	}
	return *c, true
}

// Audio returns a copy of the stored audio row, if present.
func (s *Store) Audio(callID string) (models.Audio, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.audio[callID]
	if !ok {
		return models.Audio{}, false
	}
	return *a, true
}

// Messages returns copies of all stored control messages in insert order.
func (s *Store) Messages() []models.TrunkMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TrunkMessage, len(s.messages))
	for i, m := range s.messages {
		out[i] = *m
	}
	return out
}

// Counts returns the number of rows per collection, for test assertions.
func (s *Store) Counts() (systems, units, talkgroups, recorders, calls, audio, messages int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.systems), len(s.units), len(s.talkgroups),
		len(s.recorders), len(s.calls), len(s.audio), len(s.messages)
}

// tx stages upserts as closures applied in order under the store lock on
// Commit. Each closure re-reads current state, so two upserts of the same
// key inside one transaction merge instead of duplicating.
type tx struct {
	store *Store
	ops   []func(*Store)
	done  bool
}

func (t *tx) UpsertSystem(_ context.Context, sys *models.System) error {
	if t.done {
		return ErrTxDone
	}
	in := *sys
	t.ops = append(t.ops, func(s *Store) {
		if existing, ok := s.systems[in.SysNum]; ok {
			existing.Merge(&in)
			return
		}
		row := in
		s.systems[in.SysNum] = &row
	})
	return nil
}

func (t *tx) UpsertUnit(_ context.Context, unit *models.Unit) error {
	if t.done {
		return ErrTxDone
	}
	in := *unit
	t.ops = append(t.ops, func(s *Store) {
		if existing, ok := s.units[in.UnitID]; ok {
			existing.Merge(&in)
			return
		}
		row := in
		s.units[in.UnitID] = &row
	})
	return nil
}

func (t *tx) UpsertTalkgroup(_ context.Context, tg *models.Talkgroup) error {
	if t.done {
		return ErrTxDone
	}
	in := *tg
	t.ops = append(t.ops, func(s *Store) {
		if existing, ok := s.talkgroups[in.TalkgroupID]; ok {
			existing.Merge(&in)
			return
		}
		row := in
		s.talkgroups[in.TalkgroupID] = &row
	})
	return nil
}

func (t *tx) UpsertRecorder(_ context.Context, rec *models.Recorder) error {
	if t.done {
		return ErrTxDone
	}
	in := *rec
	t.ops = append(t.ops, func(s *Store) {
		if existing, ok := s.recorders[in.ID]; ok {
			existing.Merge(&in)
			return
		}
		row := in
		s.recorders[in.ID] = &row
	})
	return nil
}

func (t *tx) UpsertCall(_ context.Context, call *models.Call) error {
	if t.done {
		return ErrTxDone
	}
	in := *call
	t.ops = append(t.ops, func(s *Store) {
		if existing, ok := s.calls[in.ID]; ok {
			existing.Merge(&in)
			return
		}
		row := in
		s.calls[in.ID] = &row
	})
	return nil
}

func (t *tx) UpsertAudio(_ context.Context, audio *models.Audio) error {
	if t.done {
		return ErrTxDone
	}
	in := *audio
	t.ops = append(t.ops, func(s *Store) {
		if existing, ok := s.audio[in.CallID]; ok {
			existing.Merge(&in)
			return
		}
		row := in
		s.audio[in.CallID] = &row
	})
	return nil
}

func (t *tx) InsertMessage(_ context.Context, msg *models.TrunkMessage) error {
	if t.done {
		return ErrTxDone
	}
	in := *msg
	t.ops = append(t.ops, func(s *Store) {
		s.messages = append(s.messages, &in)
	})
	return nil
}

func (t *tx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.commitErr != nil {
		return t.store.commitErr
	}
	for _, op := range t.ops {
		op(t.store)
	}
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.ops = nil
	return nil
}
