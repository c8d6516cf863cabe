// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for recommendation operations
var (
	// recommendRequestsTotal counts requests by algorithm and outcome kind
	// ("ok" or a Kind value).
	recommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelpick_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"algorithm", "outcome"},
	)

	// recommendLatency measures selector latency, cache hits included.
	recommendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelpick_recommend_latency_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"algorithm"},
	)

	// recommendCacheLookups counts result cache lookups by result.
	recommendCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelpick_recommend_cache_lookups_total",
			Help: "Total number of recommendation cache lookups",
		},
		[]string{"result"},
	)

	// snapshotVersion is the version of the active snapshot.
	snapshotVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reelpick_snapshot_version",
		Help: "Version of the active recommendation snapshot",
	})

	// snapshotMovies is the catalog size of the active snapshot.
	snapshotMovies = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reelpick_snapshot_movies",
		Help: "Number of catalog movies in the active snapshot",
	})

	// snapshotEmbeddedMovies is the number of movies with a collaborative embedding.
	snapshotEmbeddedMovies = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reelpick_snapshot_embedded_movies",
		Help: "Number of movies with a collaborative embedding in the active snapshot",
	})

	// rebuildsTotal counts rebuild attempts by result.
	rebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelpick_rebuilds_total",
			Help: "Total number of snapshot rebuild attempts",
		},
		[]string{"result"},
	)

	// rebuildDuration measures rebuild duration.
	rebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reelpick_rebuild_duration_seconds",
		Help:    "Snapshot rebuild duration in seconds",
		Buckets: []float64{.01, .1, .5, 1, 5, 15, 30, 60, 120, 300, 600},
	})
)
