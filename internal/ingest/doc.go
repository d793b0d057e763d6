// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

// Package ingest implements the normalization engine that turns the
// trunk-recorder status stream into the entity graph in internal/models.
//
// The pipeline per delivered message:
//
//	DecodeEnvelope -> classify -> decode typed payload -> resolve/merge
//	entities through one Sink transaction -> commit
//
// Entities are identified by natural keys and created as stubs when a child
// arrives before its parent (a call can reference a system or unit nothing
// has described yet). Partial payloads merge onto stored rows without
// clobbering fields they do not carry. Audio deliveries carry no call id at
// all; the id is reconstructed from the delivery metadata (see correlate.go)
// so the audio row and the call row correlate by key alone.
//
// Failure policy: malformed payloads, unrecognized types, and underivable
// correlation keys drop the single message with a logged diagnostic and no
// state change. Store failures roll back the whole message's transaction and
// surface an error so the transport redelivers it; nothing is ever partially
// committed.
package ingest
