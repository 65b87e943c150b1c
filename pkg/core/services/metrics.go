package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkvault_sync_runs_total",
		Help: "Cache sync runs by outcome.",
	}, []string{"status"})

	syncEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkvault_sync_entries_total",
		Help: "Entries written to the edge cache by sync, by result.",
	}, []string{"result"})

	syncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "linkvault_sync_duration_seconds",
		Help:    "Duration of sync runs that touched the store.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	visitsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkvault_visits_dropped_total",
		Help: "Visits dropped because the recorder buffer was full.",
	})
)
