// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package ingest

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/trunkline/internal/models"
)

// callPayload is the "call" section of a lifecycle message. Beyond the call
// attributes themselves it carries the referenced entities inline: the unit
// and talkgroup ids plus whatever descriptive fields the producer knows, and
// the system name for stub creation.
type callPayload struct {
	models.Call

	SysName *string `json:"sys_name,omitempty"`

	Unit         *int    `json:"unit,omitempty"`
	UnitAlphaTag *string `json:"unit_alpha_tag,omitempty"`

	Talkgroup            *int    `json:"talkgroup,omitempty"`
	TalkgroupAlphaTag    *string `json:"talkgroup_alpha_tag,omitempty"`
	TalkgroupDescription *string `json:"talkgroup_description,omitempty"`
	TalkgroupGroup       *string `json:"talkgroup_group,omitempty"`
	TalkgroupTag         *string `json:"talkgroup_tag,omitempty"`
	TalkgroupPatches     *string `json:"talkgroup_patches,omitempty"`
}

// unitModel builds the Unit attribute set referenced by this call, or nil
// when the payload names no unit.
func (p *callPayload) unitModel() *models.Unit {
	if p.Unit == nil {
		return nil
	}
	return &models.Unit{
		UnitID:       *p.Unit,
		UnitAlphaTag: p.UnitAlphaTag,
		SysNum:       p.SysNum,
	}
}

// talkgroupModel builds the Talkgroup attribute set referenced by this
// call, or nil when the payload names no talkgroup.
func (p *callPayload) talkgroupModel() *models.Talkgroup {
	if p.Talkgroup == nil {
		return nil
	}
	return &models.Talkgroup{
		TalkgroupID: *p.Talkgroup,
		AlphaTag:    p.TalkgroupAlphaTag,
		Description: p.TalkgroupDescription,
		Group:       p.TalkgroupGroup,
		Tag:         p.TalkgroupTag,
		Patches:     p.TalkgroupPatches,
		SysNum:      p.SysNum,
	}
}

// callModel returns the call attribute set with entity links resolved onto
// the foreign-key fields.
func (p *callPayload) callModel() *models.Call {
	call := p.Call
	call.UnitID = p.Unit
	call.TalkgroupID = p.Talkgroup
	return &call
}

// audioPayload is the "call" section of an audio delivery. The binary
// payload arrives base64-encoded; metadata is kept as a raw blob and stored
// unconditionally.
type audioPayload struct {
	AudioM4ABase64 *string         `json:"audio_m4a_base64,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

// messagePayload is the "message" section of a control-channel event. The
// sys_name rides along only for stub system creation.
type messagePayload struct {
	models.TrunkMessage

	SysName *string `json:"sys_name,omitempty"`
}

// unitPayload is the section of a unit-activity message (keyed by the
// activity type itself). Talkgroup fields are present for group-affiliated
// activity.
type unitPayload struct {
	Unit         *int    `json:"unit,omitempty"`
	UnitAlphaTag *string `json:"unit_alpha_tag,omitempty"`
	SysNum       *int    `json:"sys_num,omitempty"`
	SysName      *string `json:"sys_name,omitempty"`

	Talkgroup            *int    `json:"talkgroup,omitempty"`
	TalkgroupAlphaTag    *string `json:"talkgroup_alpha_tag,omitempty"`
	TalkgroupDescription *string `json:"talkgroup_description,omitempty"`
	TalkgroupGroup       *string `json:"talkgroup_group,omitempty"`
	TalkgroupTag         *string `json:"talkgroup_tag,omitempty"`
	TalkgroupPatches     *string `json:"talkgroup_patches,omitempty"`
}

// talkgroupModel builds the Talkgroup attribute set carried by this
// activity, or nil when none is named.
func (p *unitPayload) talkgroupModel() *models.Talkgroup {
	if p.Talkgroup == nil {
		return nil
	}
	return &models.Talkgroup{
		TalkgroupID: *p.Talkgroup,
		AlphaTag:    p.TalkgroupAlphaTag,
		Description: p.TalkgroupDescription,
		Group:       p.TalkgroupGroup,
		Tag:         p.TalkgroupTag,
		Patches:     p.TalkgroupPatches,
		SysNum:      p.SysNum,
	}
}
