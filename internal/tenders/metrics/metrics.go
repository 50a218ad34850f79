// Package metrics provides Prometheus metrics for the tenders service.
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

// Metrics holds all collectors. A disabled instance records nothing and
// serves an empty handler.
type Metrics struct {
	enabled  bool
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Upstream metrics
	upstreamRequestsTotal   *prometheus.CounterVec
	upstreamRequestDuration *prometheus.HistogramVec
	enrichmentsTotal        *prometheus.CounterVec

	// Authentication metrics
	loginsTotal    *prometheus.CounterVec
	refreshesTotal *prometheus.CounterVec
}

// New creates a private registry and registers every collector on it.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	m := &Metrics{enabled: enabled}
	if !enabled {
		return m
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(m.registry)

	m.httpRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "tenders_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "code"})

	m.httpRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenders_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	m.upstreamRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "tenders_upstream_requests_total",
		Help: "Total BOAMP requests by kind and status code (0 for transport errors)",
	}, []string{"kind", "code"})

	m.upstreamRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenders_upstream_request_duration_seconds",
		Help:    "BOAMP request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
	}, []string{"kind"})

	m.enrichmentsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "tenders_enrichments_total",
		Help: "Contract records by enrichment outcome",
	}, []string{"outcome"})

	m.loginsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "tenders_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	m.refreshesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "tenders_token_refreshes_total",
		Help: "Token refresh attempts by result",
	}, []string{"result"})

	return m
}

// Enabled reports whether collectors are registered.
func (m *Metrics) Enabled() bool { return m.enabled }

// Registry exposes the private registry, nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if !m.enabled {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveUpstream records one BOAMP call.
func (m *Metrics) ObserveUpstream(kind string, status int, elapsed time.Duration) {
	if !m.enabled {
		return
	}
	m.upstreamRequestsTotal.WithLabelValues(kind, strconv.Itoa(status)).Inc()
	m.upstreamRequestDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveEnrichment records the outcome for one contract record.
func (m *Metrics) ObserveEnrichment(outcome string) {
	if !m.enabled {
		return
	}
	m.enrichmentsTotal.WithLabelValues(outcome).Inc()
}

// RecordLogin records a login attempt.
func (m *Metrics) RecordLogin(success bool) {
	if !m.enabled {
		return
	}
	m.loginsTotal.WithLabelValues(result(success)).Inc()
}

// RecordRefresh records a refresh attempt.
func (m *Metrics) RecordRefresh(success bool) {
	if !m.enabled {
		return
	}
	m.refreshesTotal.WithLabelValues(result(success)).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
