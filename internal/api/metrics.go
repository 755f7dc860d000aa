package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitmint",
		Subsystem: "api_client",
		Name:      "requests_total",
		Help:      "Requests sent to the SplitMint API, by endpoint and status code.",
	}, []string{"endpoint", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "splitmint",
		Subsystem: "api_client",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests sent to the SplitMint API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// observeRequest records one completed attempt. code is the HTTP status or "error".
func observeRequest(endpoint, code string, elapsed time.Duration) {
	requestsTotal.WithLabelValues(endpoint, code).Inc()
	requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
