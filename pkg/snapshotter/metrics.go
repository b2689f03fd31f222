package snapshotter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Snapshot collection metrics
	snapshotCollectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "machinestate_snapshot_duration_seconds",
			Help:    "Time taken to collect a complete snapshot",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	snapshotCollectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machinestate_snapshot_total",
			Help: "Total number of snapshot collection attempts",
		},
		[]string{"status"}, // success or error
	)

	snapshotGroupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "machinestate_snapshot_group_duration_seconds",
			Help:    "Time taken to update a single top-level group",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"group"},
	)

	snapshotGroupCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "machinestate_snapshot_groups",
			Help: "Number of top-level groups in the last collected snapshot",
		},
	)
)
