// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

// Package models defines the normalized entity graph materialized from the
// trunk-recorder status stream: systems, units, talkgroups, recorders,
// calls, audio payloads, and control-channel messages.
//
// Entities use natural keys (system number, unit id, talkgroup id, call id)
// rather than generated surrogates. Optional attributes are pointer-typed so
// a partial message can be merged onto a stored row without clobbering
// fields it does not carry; the per-entity Merge methods implement that
// non-destructive overlay and are shared by every sink implementation.
package models
