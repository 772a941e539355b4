package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors on a private registry so
// several servers (and tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	apiErrorsTotal  *prometheus.CounterVec
	analysesTotal   *prometheus.CounterVec
	recordsAnalyzed prometheus.Histogram
	rateLimited     prometheus.Counter
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartbiz_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartbiz_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		apiErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartbiz_api_errors_total",
				Help: "Total number of API errors by code and status",
			},
			[]string{"code", "status"},
		),
		analysesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartbiz_analyses_total",
				Help: "Total number of analysis runs by outcome",
			},
			[]string{"outcome"},
		),
		recordsAnalyzed: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "smartbiz_records_analyzed",
				Help:    "Number of normalized records per analysis run",
				Buckets: prometheus.ExponentialBuckets(10, 4, 8),
			},
		),
		rateLimited: f.NewCounter(
			prometheus.CounterOpts{
				Name: "smartbiz_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
