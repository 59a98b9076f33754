// Package metrics defines the Prometheus metrics exported in serve mode.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cloud_compass"

// Metrics holds the Prometheus counters and histograms for lookup sessions.
type Metrics struct {
	// Directory fetch metrics.
	DirectoryFetches       *prometheus.CounterVec // labels: outcome={success,error}
	DirectoryFetchDuration prometheus.Histogram

	// Position lookup metrics.
	PositionLookups *prometheus.CounterVec // labels: outcome={success,unsupported,permission denied,timeout,unavailable}

	// Result metrics.
	Views         *prometheus.CounterVec // labels: state={loading,error,no_selection,unranked,ranked}
	RankedRegions prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DirectoryFetches,
		m.DirectoryFetchDuration,
		m.PositionLookups,
		m.Views,
		m.RankedRegions,
	)

	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DirectoryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_fetches_total",
			Help:      "Cloud directory fetches by outcome.",
		}, []string{"outcome"}),
		DirectoryFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "directory_fetch_duration_seconds",
			Help:      "Duration of a cloud directory fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		PositionLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "position_lookups_total",
			Help:      "Observer position lookups by outcome.",
		}, []string{"outcome"}),
		Views: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_total",
			Help:      "Rendered results by state.",
		}, []string{"state"}),
		RankedRegions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranked_regions",
			Help:      "Number of regions in a ranked result.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		}),
	}
}
