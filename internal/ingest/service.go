// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package ingest

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/trunkline/internal/logging"
)

// Service consumes the status stream and drives each delivery through the
// engine. Acks are tied to the engine contract: nil means committed or
// deliberately dropped, error means nothing was persisted and the message
// must come back.
//
// Implements suture.Service.
type Service struct {
	subscriber *Subscriber
	engine     *Engine
	topic      string
}

// NewService wires a subscriber to an engine for one topic.
func NewService(subscriber *Subscriber, engine *Engine, topic string) *Service {
	return &Service{
		subscriber: subscriber,
		engine:     engine,
		topic:      topic,
	}
}

// Serve consumes messages until the context is canceled.
func (s *Service) Serve(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.topic, err)
	}

	logging.Info().Str("topic", s.topic).Msg("Ingest service consuming")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			s.handle(ctx, msg)
		}
	}
}

func (s *Service) handle(ctx context.Context, msg *message.Message) {
	if err := s.engine.ProcessRaw(ctx, msg.Payload); err != nil {
		logging.Err(err).
			Str("message_uuid", msg.UUID).
			Str("topic", s.topic).
			Msg("Message processing failed, nacking")
		msg.Nack()
		return
	}
	msg.Ack()
}

// String names the service in supervisor logs.
func (s *Service) String() string {
	return fmt.Sprintf("ingest[%s]", s.topic)
}
