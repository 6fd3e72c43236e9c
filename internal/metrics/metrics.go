// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package metrics exposes Prometheus collectors for XR session lifecycle
// and frame pacing. Collectors register with the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Frame results.
const (
	FrameSubmitted = "submitted"
	FrameSkipped   = "skipped"
	FrameDropped   = "dropped"
)

var (
	// SessionStatus is the numeric session status per backend.
	SessionStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "xr",
			Subsystem: "session",
			Name:      "status",
			Help:      "Current session status (0=unavailable .. 6=exiting)",
		},
		[]string{"backend"},
	)

	// StatusTransitions counts entered states.
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xr",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session status transitions by target status",
		},
		[]string{"backend", "status"},
	)

	// SessionsCreated counts session creation attempts.
	SessionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xr",
			Subsystem: "session",
			Name:      "created_total",
			Help:      "Session creation attempts by result",
		},
		[]string{"backend", "result"}, // result: "ok", "error"
	)

	// Frames counts frame cycles by result.
	Frames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xr",
			Subsystem: "frame",
			Name:      "cycles_total",
			Help:      "Frame cycles by result",
		},
		[]string{"backend", "result"}, // result: submitted, skipped, dropped
	)

	// FrameWait observes how long the runtime's frame throttle blocked.
	FrameWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "xr",
			Subsystem: "frame",
			Name:      "wait_seconds",
			Help:      "Time spent blocked in the runtime frame wait",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10), // 0.5ms to 256ms
		},
		[]string{"backend"},
	)
)

// SetStatus records a status change.
func SetStatus(backend, status string, value int) {
	SessionStatus.WithLabelValues(backend).Set(float64(value))
	StatusTransitions.WithLabelValues(backend, status).Inc()
}

// RecordSessionCreated records a session creation attempt.
func RecordSessionCreated(backend string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	SessionsCreated.WithLabelValues(backend, result).Inc()
}

// RecordFrame records the outcome of one frame cycle.
func RecordFrame(backend, result string) {
	Frames.WithLabelValues(backend, result).Inc()
}

// ObserveFrameWait records a frame wait duration in seconds.
func ObserveFrameWait(backend string, seconds float64) {
	FrameWait.WithLabelValues(backend).Observe(seconds)
}
