// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package ingest

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// audioMetadata is the subset of the audio delivery's metadata blob needed
// to reconstruct the call id. The full blob is stored verbatim on the audio
// row regardless.
type audioMetadata struct {
	CallFilename *string `json:"call_filename,omitempty"`
	StartTime    *int64  `json:"start_time,omitempty"`
}

// DeriveCallID reconstructs a call id from an audio delivery's metadata.
// The producer names call rows "<prefix>_<start_time>" where prefix is the
// call filename up to its first dash, so the same id falls out of the audio
// metadata deterministically and the audio row keys directly onto the call
// row without a lookup.
//
// Both call_filename and start_time are required; an error here means the
// delivery cannot be correlated and must be dropped.
func DeriveCallID(metadata json.RawMessage) (string, error) {
	if len(metadata) == 0 {
		return "", fmt.Errorf("derive call id: no metadata")
	}

	var meta audioMetadata
	if err := json.Unmarshal(metadata, &meta); err != nil {
		return "", fmt.Errorf("derive call id: decode metadata: %w", err)
	}
	if meta.CallFilename == nil || *meta.CallFilename == "" {
		return "", fmt.Errorf("derive call id: metadata missing call_filename")
	}
	if meta.StartTime == nil {
		return "", fmt.Errorf("derive call id: metadata missing start_time")
	}

	prefix, _, _ := strings.Cut(*meta.CallFilename, "-")
	return fmt.Sprintf("%s_%d", prefix, *meta.StartTime), nil
}
