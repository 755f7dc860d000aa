package web

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitmint",
		Subsystem: "web",
		Name:      "requests_total",
		Help:      "Requests served by the web client, by route and status code.",
	}, []string{"route", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "splitmint",
		Subsystem: "web",
		Name:      "request_duration_seconds",
		Help:      "Latency of web client requests, including API round trips.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	pageRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitmint",
		Subsystem: "web",
		Name:      "page_renders_total",
		Help:      "Rendered pages, by template.",
	}, []string{"page"})
)

func observeRequest(route string, status int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
