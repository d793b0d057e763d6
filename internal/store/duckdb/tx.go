// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trunkline/internal/models"
)

// tx implements ingest.Tx on one sql.Tx. Merge-without-clobber is pushed
// into SQL: every updatable column resolves to
// COALESCE(EXCLUDED.col, col), so a NULL in the incoming row keeps the
// stored value.
type tx struct {
	tx *sql.Tx
}

const upsertSystemSQL = `
	INSERT INTO systems (sys_num, sys_name, type, sysid, wacn, nac, rfss, site_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (sys_num) DO UPDATE SET
		sys_name = COALESCE(EXCLUDED.sys_name, sys_name),
		type     = COALESCE(EXCLUDED.type, type),
		sysid    = COALESCE(EXCLUDED.sysid, sysid),
		wacn     = COALESCE(EXCLUDED.wacn, wacn),
		nac      = COALESCE(EXCLUDED.nac, nac),
		rfss     = COALESCE(EXCLUDED.rfss, rfss),
		site_id  = COALESCE(EXCLUDED.site_id, site_id)`

func (t *tx) UpsertSystem(ctx context.Context, sys *models.System) error {
	_, err := t.tx.ExecContext(ctx, upsertSystemSQL,
		sys.SysNum, sys.SysName, sys.Type, sys.SysID, sys.WACN, sys.NAC, sys.RFSS, sys.SiteID)
	if err != nil {
		return fmt.Errorf("upsert system %d: %w", sys.SysNum, err)
	}
	return nil
}

const upsertUnitSQL = `
	INSERT INTO units (unit_id, unit_alpha_tag, sys_num)
	VALUES (?, ?, ?)
	ON CONFLICT (unit_id) DO UPDATE SET
		unit_alpha_tag = COALESCE(EXCLUDED.unit_alpha_tag, unit_alpha_tag),
		sys_num        = COALESCE(EXCLUDED.sys_num, sys_num)`

func (t *tx) UpsertUnit(ctx context.Context, unit *models.Unit) error {
	_, err := t.tx.ExecContext(ctx, upsertUnitSQL,
		unit.UnitID, unit.UnitAlphaTag, unit.SysNum)
	if err != nil {
		return fmt.Errorf("upsert unit %d: %w", unit.UnitID, err)
	}
	return nil
}

const upsertTalkgroupSQL = `
	INSERT INTO talkgroups (talkgroup_id, talkgroup_alpha_tag, talkgroup_description,
		talkgroup_group, talkgroup_tag, talkgroup_patches, sys_num)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (talkgroup_id) DO UPDATE SET
		talkgroup_alpha_tag   = COALESCE(EXCLUDED.talkgroup_alpha_tag, talkgroup_alpha_tag),
		talkgroup_description = COALESCE(EXCLUDED.talkgroup_description, talkgroup_description),
		talkgroup_group       = COALESCE(EXCLUDED.talkgroup_group, talkgroup_group),
		talkgroup_tag         = COALESCE(EXCLUDED.talkgroup_tag, talkgroup_tag),
		talkgroup_patches     = COALESCE(EXCLUDED.talkgroup_patches, talkgroup_patches),
		sys_num               = COALESCE(EXCLUDED.sys_num, sys_num)`

func (t *tx) UpsertTalkgroup(ctx context.Context, tg *models.Talkgroup) error {
	_, err := t.tx.ExecContext(ctx, upsertTalkgroupSQL,
		tg.TalkgroupID, tg.AlphaTag, tg.Description, tg.Group, tg.Tag, tg.Patches, tg.SysNum)
	if err != nil {
		return fmt.Errorf("upsert talkgroup %d: %w", tg.TalkgroupID, err)
	}
	return nil
}

const upsertRecorderSQL = `
	INSERT INTO recorders (id, src_num, rec_num, type, freq, duration, count,
		rec_state, rec_state_type, squelched)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		src_num        = COALESCE(EXCLUDED.src_num, src_num),
		rec_num        = COALESCE(EXCLUDED.rec_num, rec_num),
		type           = COALESCE(EXCLUDED.type, type),
		freq           = COALESCE(EXCLUDED.freq, freq),
		duration       = COALESCE(EXCLUDED.duration, duration),
		count          = COALESCE(EXCLUDED.count, count),
		rec_state      = COALESCE(EXCLUDED.rec_state, rec_state),
		rec_state_type = COALESCE(EXCLUDED.rec_state_type, rec_state_type),
		squelched      = COALESCE(EXCLUDED.squelched, squelched)`

func (t *tx) UpsertRecorder(ctx context.Context, rec *models.Recorder) error {
	_, err := t.tx.ExecContext(ctx, upsertRecorderSQL,
		rec.ID, rec.SrcNum, rec.RecNum, rec.Type, rec.Freq, rec.Duration, rec.Count,
		rec.RecState, rec.RecStateType, rec.Squelched)
	if err != nil {
		return fmt.Errorf("upsert recorder %s: %w", rec.ID, err)
	}
	return nil
}

const upsertCallSQL = `
	INSERT INTO calls (id, call_num, sys_num, freq, unit_id, talkgroup_id, elapsed,
		length, call_state, call_state_type, mon_state, mon_state_type, audio_type,
		phase2_tdma, tdma_slot, analog, rec_num, src_num, rec_state, rec_state_type,
		conventional, encrypted, emergency, start_time, stop_time, process_call_time,
		error_count, spike_count, retry_attempt, freq_error, signal, noise, call_filename)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		call_num          = COALESCE(EXCLUDED.call_num, call_num),
		sys_num           = COALESCE(EXCLUDED.sys_num, sys_num),
		freq              = COALESCE(EXCLUDED.freq, freq),
		unit_id           = COALESCE(EXCLUDED.unit_id, unit_id),
		talkgroup_id      = COALESCE(EXCLUDED.talkgroup_id, talkgroup_id),
		elapsed           = COALESCE(EXCLUDED.elapsed, elapsed),
		length            = COALESCE(EXCLUDED.length, length),
		call_state        = COALESCE(EXCLUDED.call_state, call_state),
		call_state_type   = COALESCE(EXCLUDED.call_state_type, call_state_type),
		mon_state         = COALESCE(EXCLUDED.mon_state, mon_state),
		mon_state_type    = COALESCE(EXCLUDED.mon_state_type, mon_state_type),
		audio_type        = COALESCE(EXCLUDED.audio_type, audio_type),
		phase2_tdma       = COALESCE(EXCLUDED.phase2_tdma, phase2_tdma),
		tdma_slot         = COALESCE(EXCLUDED.tdma_slot, tdma_slot),
		analog            = COALESCE(EXCLUDED.analog, analog),
		rec_num           = COALESCE(EXCLUDED.rec_num, rec_num),
		src_num           = COALESCE(EXCLUDED.src_num, src_num),
		rec_state         = COALESCE(EXCLUDED.rec_state, rec_state),
		rec_state_type    = COALESCE(EXCLUDED.rec_state_type, rec_state_type),
		conventional      = COALESCE(EXCLUDED.conventional, conventional),
		encrypted         = COALESCE(EXCLUDED.encrypted, encrypted),
		emergency         = COALESCE(EXCLUDED.emergency, emergency),
		start_time        = COALESCE(EXCLUDED.start_time, start_time),
		stop_time         = COALESCE(EXCLUDED.stop_time, stop_time),
		process_call_time = COALESCE(EXCLUDED.process_call_time, process_call_time),
		error_count       = COALESCE(EXCLUDED.error_count, error_count),
		spike_count       = COALESCE(EXCLUDED.spike_count, spike_count),
		retry_attempt     = COALESCE(EXCLUDED.retry_attempt, retry_attempt),
		freq_error        = COALESCE(EXCLUDED.freq_error, freq_error),
		signal            = COALESCE(EXCLUDED.signal, signal),
		noise             = COALESCE(EXCLUDED.noise, noise),
		call_filename     = COALESCE(EXCLUDED.call_filename, call_filename)`

func (t *tx) UpsertCall(ctx context.Context, call *models.Call) error {
	_, err := t.tx.ExecContext(ctx, upsertCallSQL,
		call.ID, call.CallNum, call.SysNum, call.Freq, call.UnitID, call.TalkgroupID,
		call.Elapsed, call.Length, call.CallState, call.CallStateType, call.MonState,
		call.MonStateType, call.AudioType, call.Phase2TDMA, call.TDMASlot, call.Analog,
		call.RecNum, call.SrcNum, call.RecState, call.RecStateType, call.Conventional,
		call.Encrypted, call.Emergency, call.StartTime, call.StopTime,
		call.ProcessCallTime, call.ErrorCount, call.SpikeCount, call.RetryAttempt,
		call.FreqError, call.Signal, call.Noise, call.CallFilename)
	if err != nil {
		return fmt.Errorf("upsert call %s: %w", call.ID, err)
	}
	return nil
}

const upsertAudioSQL = `
	INSERT INTO audio (call_id, audio_m4a, audio_metadata)
	VALUES (?, ?, ?)
	ON CONFLICT (call_id) DO UPDATE SET
		audio_m4a      = COALESCE(EXCLUDED.audio_m4a, audio_m4a),
		audio_metadata = COALESCE(EXCLUDED.audio_metadata, audio_metadata)`

func (t *tx) UpsertAudio(ctx context.Context, audio *models.Audio) error {
	_, err := t.tx.ExecContext(ctx, upsertAudioSQL,
		audio.CallID, nullableBytes(audio.AudioM4A), nullableJSON(audio.Metadata))
	if err != nil {
		return fmt.Errorf("upsert audio %s: %w", audio.CallID, err)
	}
	return nil
}

const insertMessageSQL = `
	INSERT INTO messages (id, sys_num, trunk_msg, trunk_msg_type, opcode,
		opcode_type, opcode_desc, meta, timestamp, instance_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (t *tx) InsertMessage(ctx context.Context, msg *models.TrunkMessage) error {
	_, err := t.tx.ExecContext(ctx, insertMessageSQL,
		msg.ID.String(), msg.SysNum, msg.TrunkMsg, msg.TrunkMsgType, msg.Opcode,
		msg.OpcodeType, msg.OpcodeDesc, msg.Meta, msg.Timestamp, msg.InstanceID)
	if err != nil {
		return fmt.Errorf("insert message %s: %w", msg.ID, err)
	}
	return nil
}

func (t *tx) Commit() error {
	return t.tx.Commit()
}

func (t *tx) Rollback() error {
	return t.tx.Rollback()
}

// nullableBytes maps an empty blob to NULL so COALESCE keeps stored bytes.
func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

// nullableJSON stores a raw JSON blob as text, NULL when absent.
func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
