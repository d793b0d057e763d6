// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package models

import (
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// System is a monitored trunking system. Identified by its system number;
// every other entity references a system by that number.
//
// Optional fields are pointers: nil means "not carried by this message" and
// must never overwrite a previously stored value on merge.
type System struct {
	SysNum  int     `json:"sys_num"`
	SysName *string `json:"sys_name,omitempty"`
	Type    *string `json:"type,omitempty"`
	SysID   *string `json:"sysid,omitempty"`
	WACN    *string `json:"wacn,omitempty"`
	NAC     *string `json:"nac,omitempty"`
	RFSS    *int    `json:"rfss,omitempty"`
	SiteID  *int    `json:"site_id,omitempty"`
}

// Merge overwrites fields present in the incoming attribute set and leaves
// the rest untouched.
func (s *System) Merge(in *System) {
	if in.SysName != nil {
		s.SysName = in.SysName
	}
	if in.Type != nil {
		s.Type = in.Type
	}
	if in.SysID != nil {
		s.SysID = in.SysID
	}
	if in.WACN != nil {
		s.WACN = in.WACN
	}
	if in.NAC != nil {
		s.NAC = in.NAC
	}
	if in.RFSS != nil {
		s.RFSS = in.RFSS
	}
	if in.SiteID != nil {
		s.SiteID = in.SiteID
	}
}

// Unit is a radio unit, created lazily on first mention.
type Unit struct {
	UnitID       int     `json:"unit_id"`
	UnitAlphaTag *string `json:"unit_alpha_tag,omitempty"`
	SysNum       *int    `json:"sys_num,omitempty"`
}

// Merge overwrites fields present in the incoming attribute set.
func (u *Unit) Merge(in *Unit) {
	if in.UnitAlphaTag != nil {
		u.UnitAlphaTag = in.UnitAlphaTag
	}
	if in.SysNum != nil {
		u.SysNum = in.SysNum
	}
}

// Talkgroup fields arrive incrementally across unrelated messages, so every
// attribute beyond the id is optional.
type Talkgroup struct {
	TalkgroupID int     `json:"talkgroup_id"`
	AlphaTag    *string `json:"talkgroup_alpha_tag,omitempty"`
	Description *string `json:"talkgroup_description,omitempty"`
	Group       *string `json:"talkgroup_group,omitempty"`
	Tag         *string `json:"talkgroup_tag,omitempty"`
	Patches     *string `json:"talkgroup_patches,omitempty"`
	SysNum      *int    `json:"sys_num,omitempty"`
}

// Merge overwrites fields present in the incoming attribute set.
func (t *Talkgroup) Merge(in *Talkgroup) {
	if in.AlphaTag != nil {
		t.AlphaTag = in.AlphaTag
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.Group != nil {
		t.Group = in.Group
	}
	if in.Tag != nil {
		t.Tag = in.Tag
	}
	if in.Patches != nil {
		t.Patches = in.Patches
	}
	if in.SysNum != nil {
		t.SysNum = in.SysNum
	}
}

// Recorder is one of trunk-recorder's capture channels. Calls reference
// recorders by value (rec_num/src_num on the call row), not by relation.
type Recorder struct {
	ID           string   `json:"id"`
	SrcNum       *int     `json:"src_num,omitempty"`
	RecNum       *int     `json:"rec_num,omitempty"`
	Type         *string  `json:"type,omitempty"`
	Freq         *int64   `json:"freq,omitempty"`
	Duration     *float64 `json:"duration,omitempty"`
	Count        *int     `json:"count,omitempty"`
	RecState     *int     `json:"rec_state,omitempty"`
	RecStateType *string  `json:"rec_state_type,omitempty"`
	Squelched    *bool    `json:"squelched,omitempty"`
}

// Merge overwrites fields present in the incoming attribute set.
func (r *Recorder) Merge(in *Recorder) {
	if in.SrcNum != nil {
		r.SrcNum = in.SrcNum
	}
	if in.RecNum != nil {
		r.RecNum = in.RecNum
	}
	if in.Type != nil {
		r.Type = in.Type
	}
	if in.Freq != nil {
		r.Freq = in.Freq
	}
	if in.Duration != nil {
		r.Duration = in.Duration
	}
	if in.Count != nil {
		r.Count = in.Count
	}
	if in.RecState != nil {
		r.RecState = in.RecState
	}
	if in.RecStateType != nil {
		r.RecStateType = in.RecStateType
	}
	if in.Squelched != nil {
		r.Squelched = in.Squelched
	}
}

// Call is one radio transmission session. The row is created by whichever
// lifecycle message arrives first and mutated in place until the call ends.
// The id is supplied by the producer and treated as opaque.
type Call struct {
	ID              string   `json:"id"`
	CallNum         *int     `json:"call_num,omitempty"`
	SysNum          *int     `json:"sys_num,omitempty"`
	Freq            *int64   `json:"freq,omitempty"`
	UnitID          *int     `json:"unit_id,omitempty"`
	TalkgroupID     *int     `json:"talkgroup_id,omitempty"`
	Elapsed         *float64 `json:"elapsed,omitempty"`
	Length          *float64 `json:"length,omitempty"`
	CallState       *int     `json:"call_state,omitempty"`
	CallStateType   *string  `json:"call_state_type,omitempty"`
	MonState        *int     `json:"mon_state,omitempty"`
	MonStateType    *string  `json:"mon_state_type,omitempty"`
	AudioType       *string  `json:"audio_type,omitempty"`
	Phase2TDMA      *bool    `json:"phase2_tdma,omitempty"`
	TDMASlot        *int     `json:"tdma_slot,omitempty"`
	Analog          *bool    `json:"analog,omitempty"`
	RecNum          *int     `json:"rec_num,omitempty"`
	SrcNum          *int     `json:"src_num,omitempty"`
	RecState        *int     `json:"rec_state,omitempty"`
	RecStateType    *string  `json:"rec_state_type,omitempty"`
	Conventional    *bool    `json:"conventional,omitempty"`
	Encrypted       *bool    `json:"encrypted,omitempty"`
	Emergency       *bool    `json:"emergency,omitempty"`
	StartTime       *int64   `json:"start_time,omitempty"`
	StopTime        *int64   `json:"stop_time,omitempty"`
	ProcessCallTime *int64   `json:"process_call_time,omitempty"`
	ErrorCount      *int     `json:"error_count,omitempty"`
	SpikeCount      *int     `json:"spike_count,omitempty"`
	RetryAttempt    *int     `json:"retry_attempt,omitempty"`
	FreqError       *int     `json:"freq_error,omitempty"`
	Signal          *int     `json:"signal,omitempty"`
	Noise           *int     `json:"noise,omitempty"`
	CallFilename    *string  `json:"call_filename,omitempty"`
}

// Merge overwrites fields present in the incoming attribute set. Start and
// end messages follow the same path; whichever merges last wins on the
// fields it populates.
//
//nolint:gocyclo // one presence check per optional column
func (c *Call) Merge(in *Call) {
	if in.CallNum != nil {
		c.CallNum = in.CallNum
	}
	if in.SysNum != nil {
		c.SysNum = in.SysNum
	}
	if in.Freq != nil {
		c.Freq = in.Freq
	}
	if in.UnitID != nil {
		c.UnitID = in.UnitID
	}
	if in.TalkgroupID != nil {
		c.TalkgroupID = in.TalkgroupID
	}
	if in.Elapsed != nil {
		c.Elapsed = in.Elapsed
	}
	if in.Length != nil {
		c.Length = in.Length
	}
	if in.CallState != nil {
		c.CallState = in.CallState
	}
	if in.CallStateType != nil {
		c.CallStateType = in.CallStateType
	}
	if in.MonState != nil {
		c.MonState = in.MonState
	}
	if in.MonStateType != nil {
		c.MonStateType = in.MonStateType
	}
	if in.AudioType != nil {
		c.AudioType = in.AudioType
	}
	if in.Phase2TDMA != nil {
		c.Phase2TDMA = in.Phase2TDMA
	}
	if in.TDMASlot != nil {
		c.TDMASlot = in.TDMASlot
	}
	if in.Analog != nil {
		c.Analog = in.Analog
	}
	if in.RecNum != nil {
		c.RecNum = in.RecNum
	}
	if in.SrcNum != nil {
		c.SrcNum = in.SrcNum
	}
	if in.RecState != nil {
		c.RecState = in.RecState
	}
	if in.RecStateType != nil {
		c.RecStateType = in.RecStateType
	}
	if in.Conventional != nil {
		c.Conventional = in.Conventional
	}
	if in.Encrypted != nil {
		c.Encrypted = in.Encrypted
	}
	if in.Emergency != nil {
		c.Emergency = in.Emergency
	}
	if in.StartTime != nil {
		c.StartTime = in.StartTime
	}
	if in.StopTime != nil {
		c.StopTime = in.StopTime
	}
	if in.ProcessCallTime != nil {
		c.ProcessCallTime = in.ProcessCallTime
	}
	if in.ErrorCount != nil {
		c.ErrorCount = in.ErrorCount
	}
	if in.SpikeCount != nil {
		c.SpikeCount = in.SpikeCount
	}
	if in.RetryAttempt != nil {
		c.RetryAttempt = in.RetryAttempt
	}
	if in.FreqError != nil {
		c.FreqError = in.FreqError
	}
	if in.Signal != nil {
		c.Signal = in.Signal
	}
	if in.Noise != nil {
		c.Noise = in.Noise
	}
	if in.CallFilename != nil {
		c.CallFilename = in.CallFilename
	}
}

// Audio is the recorded payload for a call, one-to-one by call id. It may
// arrive before or after the call row exists; the two rows are correlated
// only by sharing the derived call id.
type Audio struct {
	CallID   string          `json:"call_id"`
	AudioM4A []byte          `json:"audio_m4a,omitempty"`
	Metadata json.RawMessage `json:"audio_metadata,omitempty"`
}

// Merge keeps existing audio bytes when the incoming set has none and
// replaces the metadata blob whenever one is carried.
func (a *Audio) Merge(in *Audio) {
	if len(in.AudioM4A) > 0 {
		a.AudioM4A = in.AudioM4A
	}
	if in.Metadata != nil {
		a.Metadata = in.Metadata
	}
}

// TrunkMessage is one decoded control-channel event. Rows are append-only;
// there is no update path and no merge.
type TrunkMessage struct {
	ID           uuid.UUID `json:"id"`
	SysNum       *int      `json:"sys_num,omitempty"`
	TrunkMsg     *int      `json:"trunk_msg,omitempty"`
	TrunkMsgType *string   `json:"trunk_msg_type,omitempty"`
	Opcode       *string   `json:"opcode,omitempty"`
	OpcodeType   *string   `json:"opcode_type,omitempty"`
	OpcodeDesc   *string   `json:"opcode_desc,omitempty"`
	Meta         *string   `json:"meta,omitempty"`
	Timestamp    *int64    `json:"timestamp,omitempty"`
	InstanceID   *string   `json:"instance_id,omitempty"`
}
