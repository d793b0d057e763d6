// Trunkline - Trunk-Recorder Stream Ingestion and Archival
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trunkline

package ingest

import (
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/trunkline/internal/config"
	"github.com/tomtom215/trunkline/internal/logging"
	"github.com/tomtom215/trunkline/internal/metrics"
)

// newSinkBreaker builds the circuit breaker guarding sink transactions.
// The breaker trips after consecutive store failures; while open, messages
// fail fast and stay in the stream for redelivery instead of hammering a
// sick store.
func newSinkBreaker(cfg config.IngestConfig) *gobreaker.CircuitBreaker[any] {
	settings := gobreaker.Settings{
		Name:     "sink",
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Sink circuit breaker state changed")
		},
	}
	return gobreaker.NewCircuitBreaker[any](settings)
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
