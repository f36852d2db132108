// Package observability provides usage counters for the token service:
// Prometheus metrics for scraping and a best-effort statsd transport for
// the UDP counter collector.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// AuthRequestsTotal counts guard invocations by outcome
	// (success, failed, unauthorized).
	AuthRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "piarka_auth_requests_total",
			Help: "Authentication guard invocations by outcome",
		},
		[]string{"outcome"},
	)

	// AuthDuration records the authentication pipeline duration in seconds
	// by outcome, measured from header extraction to the recorded result.
	AuthDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "piarka_auth_duration_seconds",
			Help:    "Authentication pipeline duration by outcome",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"outcome"},
	)

	// HTTPRequestsTotal counts all HTTP requests by method and status class.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "piarka_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "status"},
	)

	// HTTPRequestDuration records request duration in seconds by method.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "piarka_http_request_duration_seconds",
			Help:    "Request duration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(
		AuthRequestsTotal,
		AuthDuration,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
