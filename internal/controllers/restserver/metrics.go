package restserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard collectors on a private registry
type Metrics struct {
	registry       *prometheus.Registry
	renderPasses   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
}

// NewMetrics creates and registers the dashboard collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		renderPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikedash",
			Name:      "render_passes_total",
			Help:      "Render passes of the analysis pipeline, by mode.",
		}, []string{"mode"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bikedash",
			Name:      "render_duration_seconds",
			Help:      "Time spent filtering and aggregating one render pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"mode"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikedash",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "code"}),
	}

	m.registry.MustRegister(
		m.renderPasses,
		m.renderDuration,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) observeRender(mode string, elapsed time.Duration) {
	m.renderPasses.WithLabelValues(mode).Inc()
	m.renderDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func (m *Metrics) observeRequest(method string, status int) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
