// Package metrics exposes the Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "toolshub",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "toolshub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "toolshub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	toolUsages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "toolshub",
			Subsystem: "catalog",
			Name:      "tool_usages_total",
			Help:      "Total number of recorded tool usages.",
		},
		[]string{"tool_id", "authenticated"},
	)

	toolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "toolshub",
			Subsystem: "catalog",
			Name:      "tool_executions_total",
			Help:      "Total number of tool execution runs.",
		},
		[]string{"tool", "kind"},
	)

	searches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "toolshub",
			Subsystem: "catalog",
			Name:      "searches_total",
			Help:      "Total number of catalog searches.",
		},
	)

	reviewsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "toolshub",
			Subsystem: "catalog",
			Name:      "reviews_total",
			Help:      "Total number of reviews created.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		toolUsages,
		toolExecutions,
		searches,
		reviewsCreated,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordToolUsage counts a recorded usage event. The usage path only has the
// numeric tool id at hand, so the label carries the id rather than the slug.
func RecordToolUsage(toolID string, authenticated bool) {
	if toolID == "" {
		toolID = "unknown"
	}
	toolUsages.WithLabelValues(toolID, strconv.FormatBool(authenticated)).Inc()
}

// RecordToolExecution counts a tool execution by result kind.
func RecordToolExecution(toolSlug, kind string) {
	if toolSlug == "" {
		toolSlug = "unknown"
	}
	toolExecutions.WithLabelValues(toolSlug, kind).Inc()
}

// RecordSearch counts a catalog search.
func RecordSearch() {
	searches.Inc()
}

// RecordReview counts a created review.
func RecordReview() {
	reviewsCreated.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses ids and slugs so label cardinality stays bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" {
		return "/" + parts[0]
	}
	if len(parts) == 1 {
		return "/api"
	}
	resource := parts[1]
	switch {
	case len(parts) == 2:
		return "/api/" + resource
	case resource == "tools" && len(parts) >= 4:
		return "/api/tools/:id/" + parts[3]
	case resource == "tools" && parts[2] == "search":
		return "/api/tools/search"
	case resource == "tools":
		return "/api/tools/:slug"
	case resource == "categories":
		return "/api/categories/:slug"
	case resource == "favorites" && len(parts) >= 4:
		return "/api/favorites/:id/check"
	case resource == "favorites":
		return "/api/favorites/:id"
	default:
		return "/api/" + resource + "/" + parts[2]
	}
}
