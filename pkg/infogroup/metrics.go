package infogroup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sourceReadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "machinestate_source_read_duration_seconds",
			Help:    "Time taken to read and extract a single source",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"kind"}, // file, command, constant
	)

	sourceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machinestate_source_failures_total",
			Help: "Total number of sources recorded as failed",
		},
		[]string{"kind", "reason"}, // reason: unavailable, mismatch, conversion, other
	)
)
