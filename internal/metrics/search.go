package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodisco",
			Name:      "search_requests_total",
			Help:      "Total number of product search requests",
		},
		[]string{"status"}, // "success" / "invalid" / "error"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prodisco",
			Name:      "search_duration_seconds",
			Help:      "End-to-end product search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	SearchResultsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prodisco",
			Name:      "search_results_returned",
			Help:      "Number of products returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResultsReturned)
	searchMetricsRegistered = true
}
