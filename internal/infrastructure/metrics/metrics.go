// Package metrics exposes the backend's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopify-app-backend/internal/ports"
)

const namespace = "shopify_app"

// Metrics holds the collectors on a private registry so tests can create
// as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	webhooksReceived *prometheus.CounterVec
	installs         *prometheus.CounterVec
	upstreamFailures *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// New creates and registers every collector
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		webhooksReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_received_total",
			Help:      "Webhook deliveries by topic and outcome.",
		}, []string{"topic", "outcome"}),
		installs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oauth_installs_total",
			Help:      "Completed OAuth callbacks by result.",
		}, []string{"result"}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shopify_api_failures_total",
			Help:      "Failed Shopify API calls by operation.",
		}, []string{"operation"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.webhooksReceived,
		m.installs,
		m.upstreamFailures,
		m.requestDuration,
	)
	return m
}

var _ ports.MetricsRecorder = (*Metrics)(nil)

func (m *Metrics) WebhookReceived(topic, outcome string) {
	m.webhooksReceived.WithLabelValues(topic, outcome).Inc()
}

// InstallCompleted counts callbacks; created distinguishes first installs from re-auths
func (m *Metrics) InstallCompleted(created bool) {
	result := "reinstalled"
	if created {
		result = "installed"
	}
	m.installs.WithLabelValues(result).Inc()
}

func (m *Metrics) InstallFailed() {
	m.installs.WithLabelValues("failed").Inc()
}

func (m *Metrics) UpstreamFailure(operation string) {
	m.upstreamFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
