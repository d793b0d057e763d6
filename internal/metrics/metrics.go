// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

// Package metrics provides Prometheus instrumentation for the ingest
// pipeline: message throughput by kind, drop reasons, commit latency, and
// store errors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesReceived counts messages consumed from the stream, by
	// classified kind (system, call, audio, message, recorder, unit,
	// unknown).
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trunkline_messages_received_total",
			Help: "Total number of stream messages received, by classified kind",
		},
		[]string{"kind"},
	)

	// MessagesDropped counts messages dropped without a state change, by
	// reason (decode, unrecognized, correlation, missing_key).
	MessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trunkline_messages_dropped_total",
			Help: "Total number of messages dropped without persisting, by reason",
		},
		[]string{"reason"},
	)

	// CommitDuration observes the duration of one message's sink
	// transaction, from begin to commit.
	CommitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trunkline_commit_duration_seconds",
			Help:    "Duration of per-message sink transactions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// StoreErrors counts failed sink transactions (rolled back, message
	// redelivered).
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trunkline_store_errors_total",
			Help: "Total number of sink transaction failures",
		},
		[]string{"kind"},
	)

	// BreakerState tracks the sink circuit breaker state
	// (0=closed, 1=half-open, 2=open).
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trunkline_breaker_state",
			Help: "Sink circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// RecordReceived increments the received counter for a message kind.
func RecordReceived(kind string) {
	MessagesReceived.WithLabelValues(kind).Inc()
}

// RecordDropped increments the dropped counter for a reason.
func RecordDropped(reason string) {
	MessagesDropped.WithLabelValues(reason).Inc()
}

// RecordStoreError increments the store error counter for a message kind.
func RecordStoreError(kind string) {
	StoreErrors.WithLabelValues(kind).Inc()
}
