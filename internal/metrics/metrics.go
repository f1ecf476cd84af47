// Package metrics holds the storefront's Prometheus collectors. A nil
// *Metrics is valid and records nothing, so components can run without it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	ordersPlaced   prometheus.Counter
	ackFailures    prometheus.Counter
	catalogSize    *prometheus.GaugeVec
	liveStreams    prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_http_requests_total",
				Help: "Total number of HTTP requests handled by the storefront API",
			},
			[]string{"method", "route", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_http_request_duration_seconds",
				Help:    "Duration of storefront API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders written at checkout",
		}),
		ackFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_inbox_ack_failures_total",
			Help: "Read acknowledgements that could not be written",
		}),
		catalogSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "storefront_catalog_products",
				Help: "Products in the merged catalog by origin",
			},
			[]string{"origin"},
		),
		liveStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_live_streams",
			Help: "Open server-sent event streams",
		}),
	}
	reg.MustRegister(m.requestCounter, m.requestLatency, m.ordersPlaced, m.ackFailures, m.catalogSize, m.liveStreams)
	return m
}

func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestCounter.WithLabelValues(method, route, status).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) OrderPlaced() {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func (m *Metrics) AckFailed() {
	if m == nil {
		return
	}
	m.ackFailures.Inc()
}

func (m *Metrics) SetCatalogSize(origin string, n int) {
	if m == nil {
		return
	}
	m.catalogSize.WithLabelValues(origin).Set(float64(n))
}

// StreamOpened returns a func that marks the stream closed.
func (m *Metrics) StreamOpened() func() {
	if m == nil {
		return func() {}
	}
	m.liveStreams.Inc()
	return m.liveStreams.Dec
}
