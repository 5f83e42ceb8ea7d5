package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var SearchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "temudoc",
		Name:      "search_requests_total",
		Help:      "Total number of search requests by strategy",
	},
	[]string{"strategy"},
)

// RegisterSearchMetrics registers search metrics explicitly (no init()).
func RegisterSearchMetrics() {
	prometheus.MustRegister(SearchesTotal)
}
