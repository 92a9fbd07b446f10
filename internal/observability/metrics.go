// Package observability exposes the Prometheus metrics of the console backend.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry with HTTP, sale and runtime collectors.
// Every method is safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge

	commits     *prometheus.CounterVec
	adjustments *prometheus.CounterVec
	lookups     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fabricdesk_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "code"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fabricdesk_http_request_duration_seconds",
			Help:    "HTTP request duration per route.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 60},
		}, []string{"route"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fabricdesk_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		commits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fabricdesk_sale_commits_total",
			Help: "Sale commits by outcome.",
		}, []string{"outcome"}),
		adjustments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fabricdesk_sale_adjustments_total",
			Help: "Stock adjustments sent while committing sales, by result.",
		}, []string{"result"}),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fabricdesk_lookup_failures_total",
			Help: "Failed backend lookups served as empty results.",
		}, []string{"lookup"}),
	}
}

// Handler serves the registry, or 503 when metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts and times requests by their chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// CommitFinished counts a sale commit by outcome.
func (m *Metrics) CommitFinished(outcome string) {
	if m != nil {
		m.commits.WithLabelValues(outcome).Inc()
	}
}

// AdjustmentFinished counts one stock adjustment by result.
func (m *Metrics) AdjustmentFinished(result string) {
	if m != nil {
		m.adjustments.WithLabelValues(result).Inc()
	}
}

// LookupFailed counts a lookup that degraded to an empty result.
func (m *Metrics) LookupFailed(lookup string) {
	if m != nil {
		m.lookups.WithLabelValues(lookup).Inc()
	}
}
