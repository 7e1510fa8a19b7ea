// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "social_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	LoginFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "social_login_failures_total",
			Help: "Total number of rejected login attempts",
		},
	)

	ContentEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_content_events_published_total",
			Help: "Content events published to the broker",
		},
		[]string{"type", "result"},
	)

	ImageCleanupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_image_cleanup_total",
			Help: "Orphaned image deletions performed by the cleanup worker",
		},
		[]string{"result"},
	)
)

func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
