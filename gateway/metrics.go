package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the gateway's Prometheus instruments. Each Gateway owns its
// own registry so concurrent instances (and tests) never collide.
type metrics struct {
	registry *prometheus.Registry

	requestsTotal  *prometheus.CounterVec // by route and status
	upstreamErrors *prometheus.CounterVec // by error kind
	forwardedLines prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "relay",
				Name:      "requests_total",
				Help:      "Total number of requests handled, by route and status",
			},
			[]string{"route", "status"},
		),

		upstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "relay",
				Name:      "upstream_errors_total",
				Help:      "Total number of upstream failures, by kind",
			},
			[]string{"kind"},
		),

		forwardedLines: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "relay",
				Name:      "forwarded_lines_total",
				Help:      "Total number of backend stream lines forwarded to callers",
			},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.upstreamErrors,
		m.forwardedLines,
	)

	return m
}

// handler returns the scrape endpoint for this gateway's registry.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
