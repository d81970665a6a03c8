// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts API requests by method, route pattern and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventar_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPDuration records API latency by method and route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventar_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// RequestTransitions counts procurement requests entering each status.
	RequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventar_request_transitions_total",
		Help: "Total number of procurement request status transitions",
	}, []string{"status"})

	// SweepArchived counts requests moved into the archive.
	SweepArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventar_sweep_archived_total",
		Help: "Total number of requests moved to the archive",
	})

	// SweepFailures counts per-request archive failures left for the next sweep.
	SweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventar_sweep_failures_total",
		Help: "Total number of requests that failed to archive",
	})

	// SweepDuration records how long each archive sweep took.
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventar_sweep_duration_seconds",
		Help:    "Archive sweep duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveHTTP records one finished API request.
func ObserveHTTP(method, route string, status int, start time.Time) {
	HTTPRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
