package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, route, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HistoryEntriesTotal counts appended asset history entries by kind.
	HistoryEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_history_entries_total",
			Help: "Total number of asset history entries recorded, by kind",
		},
		[]string{"kind"},
	)

	// LoginsTotal counts login attempts by outcome (success, denied, error).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_logins_total",
			Help: "Total number of login attempts, by outcome",
		},
		[]string{"outcome"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, HistoryEntriesTotal, LoginsTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// It is the fallback when no route pattern is known, e.g. for 404s.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. route should be the
// matched router pattern (e.g. /api/assets/{id}); when empty, path is normalized instead.
func RecordRequest(method, route, path string, statusCode int, durationSeconds float64) {
	if route == "" {
		route = NormalizePath(path)
	}
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

// IncHistoryEntry counts one recorded history entry of the given kind.
func IncHistoryEntry(kind string) {
	HistoryEntriesTotal.WithLabelValues(kind).Inc()
}

// IncLogin counts one login attempt with the given outcome.
func IncLogin(outcome string) {
	LoginsTotal.WithLabelValues(outcome).Inc()
}
