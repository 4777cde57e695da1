package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// StoreCommandDuration document store command latency in seconds.
	StoreCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_command_duration_seconds",
			Help:    "Document store command duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"command", "status"},
	)

	SlowStoreCommandCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_slow_command_count",
			Help: "Total number of document store commands over the slow threshold",
		},
		[]string{"command"},
	)

	// IdentityEventCount identity-sync webhook events by type and outcome.
	IdentityEventCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_event_count",
			Help: "Total number of identity provider webhook events",
		},
		[]string{"type", "outcome"}, // outcome: applied, noop, ignored, duplicate, failed
	)

	// UpstreamCallLatency external API latency in milliseconds.
	UpstreamCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_call_latency_ms",
			Help:    "External API call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"endpoint", "status"},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordStoreCommand(command, status string, duration time.Duration) {
	StoreCommandDuration.WithLabelValues(command, status).Observe(duration.Seconds())
}

func IncrementSlowStoreCommand(command string) {
	SlowStoreCommandCount.WithLabelValues(command).Inc()
}

func IncrementIdentityEvent(eventType, outcome string) {
	IdentityEventCount.WithLabelValues(eventType, outcome).Inc()
}

func RecordUpstreamCallLatency(endpoint, status string, duration time.Duration) {
	UpstreamCallLatency.WithLabelValues(endpoint, status).Observe(float64(duration.Milliseconds()))
}
