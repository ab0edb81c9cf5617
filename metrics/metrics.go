// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values
const (
	OutcomeSaved   = "saved"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics tracks save outcomes per entity (election, vote, token).
type Metrics struct {
	Saves              *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	SaveDuration       *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Saves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quickly_grade_saves_total",
			Help: "Total save calls by entity and outcome",
		}, []string{"entity", "outcome"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quickly_grade_validation_failures_total",
			Help: "Total rejected saves by entity and failed rule",
		}, []string{"entity", "kind"}),
		SaveDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quickly_grade_save_duration_seconds",
			Help:    "Duration of save calls including validation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"entity"}),
	}
}

// ObserveSave records one save call.
// Call with time.Now() at the start of the operation; kind is empty unless
// the outcome is OutcomeInvalid.
func (m *Metrics) ObserveSave(entity, outcome, kind string, start time.Time) {
	if m == nil {
		return
	}
	m.Saves.WithLabelValues(entity, outcome).Inc()
	if outcome == OutcomeInvalid {
		m.ValidationFailures.WithLabelValues(entity, kind).Inc()
	}
	m.SaveDuration.WithLabelValues(entity).Observe(time.Since(start).Seconds())
}
