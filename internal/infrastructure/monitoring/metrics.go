// Package monitoring exposes Prometheus metrics for the HTTP layer.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	chatStreams     prometheus.Counter
	chatFailures    prometheus.Counter
}

// NewMetrics creates and registers the collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cocina",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, path pattern, and status.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cocina",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and path pattern.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		chatStreams: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cocina",
			Name:      "chat_streams_total",
			Help:      "Total chat relay streams started.",
		}),
		chatFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cocina",
			Name:      "chat_stream_failures_total",
			Help:      "Total chat relay streams that ended in an upstream failure.",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.chatStreams,
		m.chatFailures,
	)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ChatStreamStarted increments the chat stream counter.
func (m *Metrics) ChatStreamStarted() { m.chatStreams.Inc() }

// ChatStreamFailed increments the chat failure counter.
func (m *Metrics) ChatStreamFailed() { m.chatFailures.Inc() }

// Middleware records request counts and latency. The path label uses the
// matched route pattern, not the raw URL, to keep cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		pattern := routePattern(r)
		m.requestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(ww.Status())).Inc()
		m.requestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
