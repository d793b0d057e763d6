// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func strPtr(s string) *string   { return &s }
func intPtr(n int) *int         { return &n }
func f64Ptr(f float64) *float64 { return &f }
func i64Ptr(n int64) *int64     { return &n }
func boolPtr(b bool) *bool      { return &b }

func TestSystemMerge_NonDestructive(t *testing.T) {
	s := System{SysNum: 1, SysName: strPtr("CountyPD"), WACN: strPtr("BEE00")}
	s.Merge(&System{SysNum: 1, Type: strPtr("p25"), SiteID: intPtr(3)})

	if s.SysName == nil || *s.SysName != "CountyPD" {
		t.Errorf("Merge dropped sys_name: %+v", s)
	}
	if s.WACN == nil || *s.WACN != "BEE00" {
		t.Errorf("Merge dropped wacn: %+v", s)
	}
	if s.Type == nil || *s.Type != "p25" {
		t.Errorf("Merge did not apply type: %+v", s)
	}
	if s.SiteID == nil || *s.SiteID != 3 {
		t.Errorf("Merge did not apply site_id: %+v", s)
	}
}

func TestSystemMerge_OverwritesPresentFields(t *testing.T) {
	s := System{SysNum: 1, SysName: strPtr("old")}
	s.Merge(&System{SysNum: 1, SysName: strPtr("new")})

	if *s.SysName != "new" {
		t.Errorf("expected present field to overwrite, got %q", *s.SysName)
	}
}

func TestCallMerge_StartThenEnd(t *testing.T) {
	// A start message populates identity and frequency; the end message
	// carries length and stop time. Both must survive on the same row.
	call := Call{
		ID:     "1001_1699999999",
		SysNum: intPtr(1),
		Freq:   i64Ptr(851000000),
		UnitID: intPtr(42),
	}
	call.Merge(&Call{
		ID:        "1001_1699999999",
		Length:    f64Ptr(12.5),
		StopTime:  i64Ptr(1700000012),
		Emergency: boolPtr(false),
	})

	if call.Freq == nil || *call.Freq != 851000000 {
		t.Errorf("end merge dropped freq: %+v", call)
	}
	if call.UnitID == nil || *call.UnitID != 42 {
		t.Errorf("end merge dropped unit_id: %+v", call)
	}
	if call.Length == nil || *call.Length != 12.5 {
		t.Errorf("length not applied: %+v", call)
	}
	if call.StopTime == nil || *call.StopTime != 1700000012 {
		t.Errorf("stop_time not applied: %+v", call)
	}
}

func TestTalkgroupMerge_IncrementalEnrichment(t *testing.T) {
	tg := Talkgroup{TalkgroupID: 100}
	tg.Merge(&Talkgroup{TalkgroupID: 100, AlphaTag: strPtr("PD Disp")})
	tg.Merge(&Talkgroup{TalkgroupID: 100, Group: strPtr("Police"), SysNum: intPtr(1)})

	if tg.AlphaTag == nil || *tg.AlphaTag != "PD Disp" {
		t.Errorf("alpha tag lost across merges: %+v", tg)
	}
	if tg.Group == nil || *tg.Group != "Police" {
		t.Errorf("group not applied: %+v", tg)
	}
	if tg.SysNum == nil || *tg.SysNum != 1 {
		t.Errorf("sys_num not applied: %+v", tg)
	}
}

func TestAudioMerge_MetadataReplacedPayloadKept(t *testing.T) {
	a := Audio{
		CallID:   "1001_1699999999",
		AudioM4A: []byte{0x00, 0x01},
		Metadata: json.RawMessage(`{"call_filename":"1001-1699999999"}`),
	}
	a.Merge(&Audio{
		CallID:   "1001_1699999999",
		Metadata: json.RawMessage(`{"call_filename":"1001-1699999999","freq":851000000}`),
	})

	if len(a.AudioM4A) != 2 {
		t.Errorf("audio bytes dropped on metadata-only merge: %v", a.AudioM4A)
	}
	if string(a.Metadata) != `{"call_filename":"1001-1699999999","freq":851000000}` {
		t.Errorf("metadata not replaced: %s", a.Metadata)
	}
}

func TestUnitMerge(t *testing.T) {
	u := Unit{UnitID: 42}
	u.Merge(&Unit{UnitID: 42, UnitAlphaTag: strPtr("Engine 7"), SysNum: intPtr(1)})
	u.Merge(&Unit{UnitID: 42})

	if u.UnitAlphaTag == nil || *u.UnitAlphaTag != "Engine 7" {
		t.Errorf("empty merge clobbered alpha tag: %+v", u)
	}
	if u.SysNum == nil || *u.SysNum != 1 {
		t.Errorf("empty merge clobbered sys_num: %+v", u)
	}
}
