// Package metrics holds the Prometheus collectors for the shell.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dairyshell",
			Subsystem: "session",
			Name:      "events_total",
			Help:      "Total number of session events emitted.",
		},
		[]string{"type"},
	)

	storageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dairyshell",
			Subsystem: "session",
			Name:      "storage_failures_total",
			Help:      "Total number of swallowed session storage failures.",
		},
		[]string{"op"},
	)

	hydrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dairyshell",
			Subsystem: "session",
			Name:      "hydrations_total",
			Help:      "Hydration outcomes.",
		},
		[]string{"outcome"},
	)

	hydrationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dairyshell",
			Subsystem: "session",
			Name:      "hydration_duration_seconds",
			Help:      "Duration of the startup hydration.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dairyshell",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of marketplace API requests.",
		},
		[]string{"method", "path", "status"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dairyshell",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of marketplace API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	navigations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dairyshell",
			Subsystem: "navigation",
			Name:      "mounts_total",
			Help:      "Total number of graph mounts.",
		},
		[]string{"graph"},
	)
)

func init() {
	Registry.MustRegister(
		sessionEvents,
		storageFailures,
		hydrations,
		hydrationDuration,
		apiRequests,
		apiDuration,
		navigations,
	)
}

// Handler exposes the registry over HTTP
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordSessionEvent counts an emitted session event
func RecordSessionEvent(eventType string) {
	sessionEvents.WithLabelValues(eventType).Inc()
}

// RecordStorageFailure counts a swallowed storage failure for op (open, read, write, delete)
func RecordStorageFailure(op string) {
	storageFailures.WithLabelValues(op).Inc()
}

// RecordHydration records the hydration outcome (restored, empty, failed)
func RecordHydration(outcome string, d time.Duration) {
	hydrations.WithLabelValues(outcome).Inc()
	hydrationDuration.Observe(d.Seconds())
}

// RecordAPIRequest records a marketplace API call; status 0 means transport failure
func RecordAPIRequest(method, path string, status int, d time.Duration) {
	apiRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	apiDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordMount counts a navigation graph mount
func RecordMount(graph string) {
	navigations.WithLabelValues(graph).Inc()
}
