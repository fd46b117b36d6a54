// Package metrics exposes Prometheus instruments for the intake service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every instrument, registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	SubmissionsCreated *prometheus.CounterVec
	SubmissionsDeleted prometheus.Counter
	AnalysesRequested  prometheus.Counter
	LoginAttempts      *prometheus.CounterVec
	RateLimited        prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

// New registers the instruments plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SubmissionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadintake_submissions_created_total",
				Help: "Total number of submissions stored, by income type",
			},
			[]string{"income_type"},
		),
		SubmissionsDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leadintake_submissions_deleted_total",
				Help: "Total number of submissions deleted from the dashboard",
			},
		),
		AnalysesRequested: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leadintake_analyses_total",
				Help: "Total number of preview analyses served without storing",
			},
		),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadintake_admin_logins_total",
				Help: "Total number of admin login attempts, by outcome",
			},
			[]string{"outcome"},
		),
		RateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "leadintake_rate_limited_total",
				Help: "Total number of public requests rejected by the rate limiter",
			},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadintake_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
