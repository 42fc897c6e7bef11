// Package metrics defines Prometheus metrics for feiramap.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "feiramap"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last /healthz probe returned OK (1) or not (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last /readyz probe returned OK (1) or not (0).",
	})
)

// Snapshot ingestion metrics.
var (
	SnapshotOffersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_offers_total",
		Help:      "Total number of offers accepted into snapshots.",
	})

	SnapshotGeometryFilteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_geometry_filtered_total",
		Help:      "Total number of offers dropped for invalid coordinates.",
	})

	SnapshotRefreshErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_refresh_errors_total",
		Help:      "Total number of failed catalog snapshot refreshes.",
	})
)

// Ranking metrics.
var (
	RankRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rank_runs_total",
		Help:      "Total ranking pipeline runs by view mode.",
	}, []string{"mode"})

	RankPricelessExcludedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rank_priceless_excluded_total",
		Help:      "Total number of offers excluded from ranking for missing prices.",
	})

	ScoreDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "score_distribution",
		Help:      "Distribution of composite offer scores.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11), // 0.0, 0.1, ..., 1.0
	})
)

// Pipeline metrics.
var (
	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of full score-rank-marker-layerize pipeline runs.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	LayerClusters = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layer_clusters",
		Help:      "Cluster nodes produced per layer.",
		Buckets:   prometheus.LinearBuckets(0, 5, 9),
	}, []string{"bucket"})

	LayerMarkers = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layer_markers",
		Help:      "Individual markers produced per layer.",
		Buckets:   prometheus.LinearBuckets(0, 10, 9),
	}, []string{"bucket"})
)
