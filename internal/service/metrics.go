package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnapshotFallbacks counts dashboard requests answered with the zeroed snapshot.
	SnapshotFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inventory",
		Subsystem: "dashboard",
		Name:      "snapshot_fallback_total",
		Help:      "Number of dashboard snapshots replaced by the zeroed fallback after a read failure.",
	})

	snapshotCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Subsystem: "dashboard",
		Name:      "snapshot_cache_total",
		Help:      "Dashboard snapshot cache lookups by result.",
	}, []string{"result"})
)
