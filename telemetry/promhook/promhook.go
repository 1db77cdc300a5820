// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package promhook exports unpack telemetry as Prometheus metrics.
package promhook

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	arkiv "github.com/hashicorp/go-arkiv"
)

const namespace = "arkiv"

// Hook records [arkiv.TelemetryData] in Prometheus metrics. All metrics are
// labeled with the archive format.
type Hook struct {
	registry prometheus.Registerer

	unpacks  *prometheus.CounterVec
	errors   *prometheus.CounterVec
	entries  *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	input    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a hook and registers its metrics. Registering a second hook on
// the same registry fails.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) (*Hook, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	h := &Hook{
		registry: registry,
		unpacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unpacks_total",
			Help:      "Number of finished unpack operations.",
		}, []string{"format"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unpack_errors_total",
			Help:      "Number of unpack operations that failed.",
		}, []string{"format"}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unpacked_entries_total",
			Help:      "Number of unpacked entries by kind.",
		}, []string{"format", "kind"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unpacked_bytes_total",
			Help:      "Number of bytes written to the destination.",
		}, []string{"format"}),
		input: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "Number of archive bytes consumed.",
		}, []string{"format"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unpack_duration_seconds",
			Help:      "Duration of unpack operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
	}

	for _, c := range []prometheus.Collector{h.unpacks, h.errors, h.entries, h.bytes, h.input, h.duration} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Observe records td. It satisfies [arkiv.TelemetryHook].
func (h *Hook) Observe(_ context.Context, td *arkiv.TelemetryData) {
	if td == nil {
		return
	}
	format := td.Format

	h.unpacks.WithLabelValues(format).Inc()
	if td.UnpackErrors > 0 {
		h.errors.WithLabelValues(format).Inc()
	}
	h.entries.WithLabelValues(format, "file").Add(float64(td.UnpackedFiles))
	h.entries.WithLabelValues(format, "dir").Add(float64(td.UnpackedDirs))
	h.entries.WithLabelValues(format, "symlink").Add(float64(td.UnpackedSymlinks))
	h.bytes.WithLabelValues(format).Add(float64(td.UnpackedSize))
	h.input.WithLabelValues(format).Add(float64(td.InputSize))
	h.duration.WithLabelValues(format).Observe(td.UnpackDuration.Seconds())
}

// TelemetryHook returns Observe as [arkiv.TelemetryHook].
func (h *Hook) TelemetryHook() arkiv.TelemetryHook {
	return h.Observe
}
