// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package ingest

import (
	"testing"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantErr  bool
		wantType string
	}{
		{
			name:     "system message",
			payload:  `{"type":"system","system":{"sys_num":1},"timestamp":1700000000,"instance_id":"tr-site-1"}`,
			wantType: "system",
		},
		{
			name:     "call start",
			payload:  `{"type":"call_start","call":{"id":"1234_1700000000"}}`,
			wantType: "call_start",
		},
		{
			name:    "not json",
			payload: `{{{`,
			wantErr: true,
		},
		{
			name:    "missing type",
			payload: `{"call":{"id":"x"}}`,
			wantErr: true,
		},
		{
			name:    "type not a string",
			payload: `{"type":42}`,
			wantErr: true,
		},
		{
			name:    "bad timestamp",
			payload: `{"type":"system","timestamp":"yesterday"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if env.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", env.Type, tt.wantType)
			}
		})
	}
}

func TestDecodeEnvelopeFields(t *testing.T) {
	payload := `{"type":"message","message":{},"timestamp":1700000123,"instance_id":"tr-a"}`

	env, err := DecodeEnvelope([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Timestamp == nil || *env.Timestamp != 1700000123 {
		t.Errorf("Timestamp = %v, want 1700000123", env.Timestamp)
	}
	if env.InstanceID == nil || *env.InstanceID != "tr-a" {
		t.Errorf("InstanceID = %v, want tr-a", env.InstanceID)
	}
	if _, ok := env.Section("message"); !ok {
		t.Error("expected message section to be present")
	}
	if _, ok := env.Section("call"); ok {
		t.Error("did not expect call section")
	}
}

func TestEnvelopeKind(t *testing.T) {
	tests := []struct {
		msgType string
		want    Kind
	}{
		{"system", KindSystem},
		{"call_start", KindCall},
		{"call_end", KindCall},
		{"audio", KindAudio},
		{"message", KindControl},
		{"recorder", KindRecorder},
		{"join", KindUnit},
		{"on", KindUnit},
		{"off", KindUnit},
		{"data", KindUnit},
		{"location", KindUnit},
		{"ackresp", KindUnit},
		{"rates", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.msgType, func(t *testing.T) {
			env := &Envelope{Type: tt.msgType}
			if got := env.Kind(); got != tt.want {
				t.Errorf("Kind(%q) = %v, want %v", tt.msgType, got, tt.want)
			}
		})
	}
}
