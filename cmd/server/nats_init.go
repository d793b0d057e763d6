// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package main

import (
	"context"
	"fmt"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/trunkline/internal/config"
	"github.com/tomtom215/trunkline/internal/ingest"
	"github.com/tomtom215/trunkline/internal/logging"
	"github.com/tomtom215/trunkline/internal/natsutil"
)

// natsComponents bundles everything the transport side owns so shutdown
// happens in one place, in reverse order of startup.
type natsComponents struct {
	embedded   *natsutil.EmbeddedServer
	conn       *natsgo.Conn
	subscriber *ingest.Subscriber
}

// initNATS starts the embedded server when configured, provisions the
// stream, and builds the durable subscriber. The config URL is rewritten to
// the embedded server's client URL so the subscriber connects locally.
func initNATS(cfg *config.Config) (*natsComponents, error) {
	c := &natsComponents{}

	if cfg.NATS.EmbeddedServer {
		es, err := natsutil.NewEmbeddedServer(cfg.NATS)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		c.embedded = es
		cfg.NATS.URL = es.ClientURL()
		logging.Info().Str("url", cfg.NATS.URL).Msg("Embedded NATS server started")
	}

	conn, err := natsgo.Connect(cfg.NATS.URL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.NATS.MaxReconnects),
		natsgo.ReconnectWait(cfg.NATS.ReconnectWait),
	)
	if err != nil {
		c.shutdown()
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	c.conn = conn

	mgr, err := natsutil.NewStreamManager(conn, cfg.NATS)
	if err != nil {
		c.shutdown()
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := mgr.EnsureStream(ctx); err != nil {
		c.shutdown()
		return nil, fmt.Errorf("ensure stream %s: %w", cfg.NATS.StreamName, err)
	}
	logging.Info().
		Str("stream", cfg.NATS.StreamName).
		Strs("subjects", cfg.NATS.Subjects).
		Msg("JetStream stream ready")

	wmLogger := ingest.NewWatermillLogger(logging.With().Str("component", "nats").Logger())
	sub, err := ingest.NewSubscriber(cfg.NATS, wmLogger)
	if err != nil {
		c.shutdown()
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	c.subscriber = sub

	return c, nil
}

// shutdown stops transport components in reverse startup order.
func (c *natsComponents) shutdown() {
	if c.subscriber != nil {
		if err := c.subscriber.Close(); err != nil {
			logging.Err(err).Msg("Closing subscriber failed")
		}
	}
	if c.conn != nil {
		c.conn.Close()
	}
	if c.embedded != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.embedded.Shutdown(ctx); err != nil {
			logging.Err(err).Msg("Embedded NATS shutdown failed")
		}
	}
}
