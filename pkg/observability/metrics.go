package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CleanupCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "janitord_cleanup_cycles_total",
		Help: "The total number of cleanup cycles, by outcome",
	}, []string{"result"})

	DeletedEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "janitord_deleted_entries_total",
		Help: "Entries removed by cleanup cycles",
	}, []string{"kind"})

	ReclaimedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "janitord_reclaimed_bytes_total",
		Help: "Bytes of file content removed by cleanup cycles",
	})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "janitord_cycle_duration_seconds",
		Help:    "Duration of a full build-expire-reclaim cycle",
		Buckets: prometheus.DefBuckets,
	})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "janitord_http_duration_seconds",
		Help:    "Duration of admin API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)
