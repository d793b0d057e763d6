// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package ingest

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Kind is the classified semantic type of an envelope.
type Kind string

// Envelope kinds. Call lifecycle covers both call_start and call_end; the
// two follow the identical resolve/merge path and differ only in which
// fields the payload populates.
const (
	KindSystem   Kind = "system"
	KindCall     Kind = "call"
	KindAudio    Kind = "audio"
	KindControl  Kind = "message"
	KindRecorder Kind = "recorder"
	KindUnit     Kind = "unit"
	KindUnknown  Kind = "unknown"
)

// unitActivityTypes are the per-unit event types. For these the type tag
// doubles as the payload section key ({"type":"join","join":{...}}).
var unitActivityTypes = map[string]struct{}{
	"join":     {},
	"on":       {},
	"off":      {},
	"data":     {},
	"location": {},
	"ackresp":  {},
}

// Envelope is one decoded stream message: the type discriminator, the
// envelope-level fields shared by all types, and the raw payload sections
// keyed by name.
type Envelope struct {
	Type       string
	Timestamp  *int64
	InstanceID *string

	sections map[string]json.RawMessage
}

// DecodeEnvelope parses a raw delivery into an Envelope. Only the structure
// is validated here; payload sections stay raw until the engine decodes the
// one matching the classified kind.
func DecodeEnvelope(payload []byte) (*Envelope, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(payload, &sections); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	env := &Envelope{sections: sections}

	raw, ok := sections["type"]
	if !ok {
		return nil, fmt.Errorf("decode envelope: missing type field")
	}
	if err := json.Unmarshal(raw, &env.Type); err != nil {
		return nil, fmt.Errorf("decode envelope: type is not a string: %w", err)
	}

	if raw, ok := sections["timestamp"]; ok {
		if err := json.Unmarshal(raw, &env.Timestamp); err != nil {
			return nil, fmt.Errorf("decode envelope: bad timestamp: %w", err)
		}
	}
	if raw, ok := sections["instance_id"]; ok {
		if err := json.Unmarshal(raw, &env.InstanceID); err != nil {
			return nil, fmt.Errorf("decode envelope: bad instance_id: %w", err)
		}
	}

	return env, nil
}

// Kind classifies the envelope by its declared type. Pure; unrecognized
// types map to KindUnknown and are dropped by the engine with a diagnostic,
// never an error.
func (e *Envelope) Kind() Kind {
	switch e.Type {
	case "system":
		return KindSystem
	case "call_start", "call_end":
		return KindCall
	case "audio":
		return KindAudio
	case "message":
		return KindControl
	case "recorder":
		return KindRecorder
	}
	if _, ok := unitActivityTypes[e.Type]; ok {
		return KindUnit
	}
	return KindUnknown
}

// Section returns the named raw payload section, if present.
func (e *Envelope) Section(name string) (json.RawMessage, bool) {
	raw, ok := e.sections[name]
	return raw, ok
}

// decodeSection unmarshals the named section into v. Returns an error when
// the section is absent or malformed.
func (e *Envelope) decodeSection(name string, v interface{}) error {
	raw, ok := e.sections[name]
	if !ok {
		return fmt.Errorf("missing %q section", name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %q section: %w", name, err)
	}
	return nil
}
