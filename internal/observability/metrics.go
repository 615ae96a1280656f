package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the telemetry service.
type Metrics struct {
	// Bundle fetch metrics.
	FetchRequests   *prometheus.CounterVec   // labels: bundle, outcome={success,construction_error,canceled}
	FetchDuration   *prometheus.HistogramVec // labels: bundle
	PointsGenerated *prometheus.CounterVec   // labels: bundle
	FetchInFlight   prometheus.Gauge

	// Session tracking metrics.
	SupersededRequests *prometheus.CounterVec // labels: bundle

	// Feed metrics.
	SnapshotsPublished  prometheus.Counter
	SnapshotBuildErrors prometheus.Counter
	FeedRunning         prometheus.Gauge
	FeedCycleDuration   prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.PointsGenerated,
		m.FetchInFlight,
		m.SupersededRequests,
		m.SnapshotsPublished,
		m.SnapshotBuildErrors,
		m.FeedRunning,
		m.FeedCycleDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_telemetry",
			Name:      "fetch_requests_total",
			Help:      "Bundle fetches by bundle and outcome.",
		}, []string{"bundle", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "field_telemetry",
			Name:      "fetch_duration_seconds",
			Help:      "Bundle fetch duration including simulated latency.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 1.5, 2, 5},
		}, []string{"bundle"}),
		PointsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_telemetry",
			Name:      "points_generated_total",
			Help:      "Time-series points synthesized, by bundle.",
		}, []string{"bundle"}),
		FetchInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "field_telemetry",
			Name:      "fetch_in_flight",
			Help:      "Bundle fetches currently waiting on simulated latency.",
		}),
		SupersededRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "field_telemetry",
			Name:      "superseded_requests_total",
			Help:      "Fetch results discarded because a newer request for the same session began.",
		}, []string{"bundle"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "field_telemetry",
			Name:      "snapshots_published_total",
			Help:      "Field snapshots written to the feed topic.",
		}),
		SnapshotBuildErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "field_telemetry",
			Name:      "snapshot_build_errors_total",
			Help:      "Field snapshots skipped because a bundle failed to build.",
		}),
		FeedRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "field_telemetry",
			Name:      "feed_running",
			Help:      "1 when the snapshot feed is active, 0 when shut down.",
		}),
		FeedCycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "field_telemetry",
			Name:      "feed_cycle_duration_seconds",
			Help:      "Duration of a complete build-and-publish feed cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}
