// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/trunkline/internal/config"
	"github.com/tomtom215/trunkline/internal/logging"
	"github.com/tomtom215/trunkline/internal/metrics"
	"github.com/tomtom215/trunkline/internal/models"
)

// dropError marks a message as unprocessable: it is logged, counted under
// its reason, and acknowledged so it never blocks the stream. Store errors
// are never dropErrors.
type dropError struct {
	reason string
	err    error
}

func (e *dropError) Error() string {
	return fmt.Sprintf("drop (%s): %v", e.reason, e.err)
}

func (e *dropError) Unwrap() error {
	return e.err
}

func dropf(reason, format string, args ...interface{}) error {
	return &dropError{reason: reason, err: fmt.Errorf(format, args...)}
}

// applyFunc is one message's planned set of upserts, executed inside a
// single sink transaction.
type applyFunc func(ctx context.Context, tx Tx) error

// Engine normalizes decoded stream messages into entity upserts against a
// Sink. One engine serves all message kinds; processing is safe for
// concurrent use as long as the sink is.
type Engine struct {
	sink          Sink
	breaker       *gobreaker.CircuitBreaker[any]
	commitTimeout time.Duration
}

// NewEngine creates an engine writing to sink, tuned by cfg.
func NewEngine(sink Sink, cfg config.IngestConfig) *Engine {
	return &Engine{
		sink:          sink,
		breaker:       newSinkBreaker(cfg),
		commitTimeout: cfg.CommitTimeout,
	}
}

// ProcessRaw runs one raw delivery through the full pipeline: decode,
// classify, plan, and commit in a single sink transaction.
//
// A nil return means the message is finished (committed or deliberately
// dropped) and must be acknowledged. A non-nil return means the store
// rejected it; nothing was committed and the message must be redelivered.
func (e *Engine) ProcessRaw(ctx context.Context, payload []byte) error {
	env, err := DecodeEnvelope(payload)
	if err != nil {
		e.logDrop(&dropError{reason: "decode", err: err}, "unknown")
		return nil
	}

	kind := env.Kind()
	metrics.RecordReceived(string(kind))

	apply, err := e.plan(env, kind)
	if err != nil {
		var de *dropError
		if errors.As(err, &de) {
			e.logDrop(de, env.Type)
			return nil
		}
		return err
	}

	start := time.Now()
	if err := e.withTx(ctx, apply); err != nil {
		metrics.RecordStoreError(string(kind))
		logging.Err(err).Str("type", env.Type).Msg("Sink transaction failed, message will be redelivered")
		return fmt.Errorf("process %s: %w", env.Type, err)
	}
	metrics.CommitDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	return nil
}

// plan decodes the payload section for the classified kind and returns the
// upserts to run. All validation that can fail without touching the store
// happens here; a dropError from plan never opens a transaction.
func (e *Engine) plan(env *Envelope, kind Kind) (applyFunc, error) {
	switch kind {
	case KindSystem:
		return e.planSystem(env)
	case KindCall:
		return e.planCall(env)
	case KindAudio:
		return e.planAudio(env)
	case KindControl:
		return e.planControl(env)
	case KindRecorder:
		return e.planRecorder(env)
	case KindUnit:
		return e.planUnit(env)
	default:
		return nil, dropf("unrecognized", "unrecognized message type %q", env.Type)
	}
}

func (e *Engine) planSystem(env *Envelope) (applyFunc, error) {
	var sys models.System
	if err := env.decodeSection("system", &sys); err != nil {
		return nil, dropf("decode", "system payload: %w", err)
	}
	return func(ctx context.Context, tx Tx) error {
		return tx.UpsertSystem(ctx, &sys)
	}, nil
}

func (e *Engine) planCall(env *Envelope) (applyFunc, error) {
	var p callPayload
	if err := env.decodeSection("call", &p); err != nil {
		return nil, dropf("decode", "call payload: %w", err)
	}
	call := p.callModel()
	if call.ID == "" {
		return nil, dropf("missing_key", "call payload has no id")
	}

	unit := p.unitModel()
	tg := p.talkgroupModel()
	return func(ctx context.Context, tx Tx) error {
		if call.SysNum != nil {
			sys := &models.System{SysNum: *call.SysNum, SysName: p.SysName}
			if err := tx.UpsertSystem(ctx, sys); err != nil {
				return err
			}
		}
		if unit != nil {
			if err := tx.UpsertUnit(ctx, unit); err != nil {
				return err
			}
		}
		if tg != nil {
			if err := tx.UpsertTalkgroup(ctx, tg); err != nil {
				return err
			}
		}
		return tx.UpsertCall(ctx, call)
	}, nil
}

func (e *Engine) planAudio(env *Envelope) (applyFunc, error) {
	var p audioPayload
	if err := env.decodeSection("call", &p); err != nil {
		return nil, dropf("decode", "audio payload: %w", err)
	}

	callID, err := DeriveCallID(p.Metadata)
	if err != nil {
		return nil, dropf("correlation", "%w", err)
	}

	audio := &models.Audio{CallID: callID, Metadata: p.Metadata}
	if p.AudioM4ABase64 != nil && *p.AudioM4ABase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(*p.AudioM4ABase64)
		if err != nil {
			return nil, dropf("decode", "audio_m4a_base64: %w", err)
		}
		audio.AudioM4A = raw
	}

	return func(ctx context.Context, tx Tx) error {
		return tx.UpsertAudio(ctx, audio)
	}, nil
}

func (e *Engine) planControl(env *Envelope) (applyFunc, error) {
	var p messagePayload
	if err := env.decodeSection("message", &p); err != nil {
		return nil, dropf("decode", "message payload: %w", err)
	}

	msg := p.TrunkMessage
	msg.ID = uuid.New()
	if msg.Timestamp == nil {
		msg.Timestamp = env.Timestamp
	}
	if msg.InstanceID == nil {
		msg.InstanceID = env.InstanceID
	}

	return func(ctx context.Context, tx Tx) error {
		if msg.SysNum != nil {
			sys := &models.System{SysNum: *msg.SysNum, SysName: p.SysName}
			if err := tx.UpsertSystem(ctx, sys); err != nil {
				return err
			}
		}
		return tx.InsertMessage(ctx, &msg)
	}, nil
}

func (e *Engine) planRecorder(env *Envelope) (applyFunc, error) {
	var rec models.Recorder
	if err := env.decodeSection("recorder", &rec); err != nil {
		return nil, dropf("decode", "recorder payload: %w", err)
	}
	if rec.ID == "" {
		return nil, dropf("missing_key", "recorder payload has no id")
	}
	return func(ctx context.Context, tx Tx) error {
		return tx.UpsertRecorder(ctx, &rec)
	}, nil
}

func (e *Engine) planUnit(env *Envelope) (applyFunc, error) {
	var p unitPayload
	if err := env.decodeSection(env.Type, &p); err != nil {
		return nil, dropf("decode", "%s payload: %w", env.Type, err)
	}
	if p.Unit == nil {
		return nil, dropf("missing_key", "%s payload has no unit id", env.Type)
	}

	unit := &models.Unit{
		UnitID:       *p.Unit,
		UnitAlphaTag: p.UnitAlphaTag,
		SysNum:       p.SysNum,
	}
	tg := p.talkgroupModel()
	return func(ctx context.Context, tx Tx) error {
		if p.SysNum != nil {
			sys := &models.System{SysNum: *p.SysNum, SysName: p.SysName}
			if err := tx.UpsertSystem(ctx, sys); err != nil {
				return err
			}
		}
		if tg != nil {
			if err := tx.UpsertTalkgroup(ctx, tg); err != nil {
				return err
			}
		}
		return tx.UpsertUnit(ctx, unit)
	}, nil
}

// withTx runs apply inside one sink transaction, guarded by the circuit
// breaker and bounded by the commit timeout.
func (e *Engine) withTx(ctx context.Context, apply applyFunc) error {
	_, err := e.breaker.Execute(func() (any, error) {
		txCtx, cancel := context.WithTimeout(ctx, e.commitTimeout)
		defer cancel()

		tx, err := e.sink.Begin(txCtx)
		if err != nil {
			return nil, fmt.Errorf("begin: %w", err)
		}
		if err := apply(txCtx, tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Warn().Err(rbErr).Msg("Rollback failed after apply error")
			}
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("commit: %w", err)
		}
		return nil, nil
	})
	return err
}

func (e *Engine) logDrop(de *dropError, msgType string) {
	metrics.RecordDropped(de.reason)
	logging.Warn().
		Str("type", msgType).
		Str("reason", de.reason).
		Err(de.err).
		Msg("Dropping unprocessable message")
}
