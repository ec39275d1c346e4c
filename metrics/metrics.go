package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry               *prometheus.Registry
	httpRequests           *prometheus.CounterVec
	httpRequestDuration    *prometheus.HistogramVec
	analyticsRequests      *prometheus.CounterVec
	catalogRebuilds        *prometheus.CounterVec
	catalogRebuildDuration prometheus.Histogram
}

// New creates a fresh Metrics registry with HTTP, analytics and catalog metrics registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restaurants",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "restaurants",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	analyticsRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restaurants",
		Name:      "analytics_requests_total",
		Help:      "Analytics requests by result mode",
	}, []string{"mode"})

	catalogRebuilds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restaurants",
		Name:      "catalog_rebuilds_total",
		Help:      "Catalog rebuilds by outcome",
	}, []string{"status"})

	catalogRebuildDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "restaurants",
		Name:      "catalog_rebuild_duration_seconds",
		Help:      "Duration of catalog rebuilds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
	})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		analyticsRequests,
		catalogRebuilds,
		catalogRebuildDuration,
	)

	return &Metrics{
		registry:               registry,
		httpRequests:           httpRequests,
		httpRequestDuration:    httpRequestDuration,
		analyticsRequests:      analyticsRequests,
		catalogRebuilds:        catalogRebuilds,
		catalogRebuildDuration: catalogRebuildDuration,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// IncAnalytics counts an analytics request served in the given mode
// ("clusters", "listing" or "error").
func (m *Metrics) IncAnalytics(mode string) {
	if m == nil {
		return
	}
	m.analyticsRequests.WithLabelValues(mode).Inc()
}

// ObserveCatalogRebuild records one catalog rebuild and its outcome.
func (m *Metrics) ObserveCatalogRebuild(err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.catalogRebuilds.WithLabelValues(status).Inc()
	m.catalogRebuildDuration.Observe(duration.Seconds())
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
