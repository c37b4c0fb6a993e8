package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	CourierErrors    *prometheus.CounterVec
	QuoteCacheEvents *prometheus.CounterVec
}

// NewMetrics creates metrics registered on the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates metrics on the given registerer. Tests pass their
// own registry so repeated construction never collides.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipdesk_requests_total",
				Help: "Total number of requests by operation, courier, and status",
			},
			[]string{"operation", "courier", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shipdesk_request_duration_seconds",
				Help:    "Request duration in seconds by operation and courier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "courier"},
		),
		CourierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipdesk_courier_errors_total",
				Help: "Total courier API errors by courier and error kind",
			},
			[]string{"courier", "kind"},
		),
		QuoteCacheEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipdesk_quote_cache_events_total",
				Help: "Quote cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, courier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, courier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, courier).Observe(duration)
}

// RecordError records a courier error metric.
func (m *Metrics) RecordError(courier, kind string) {
	m.CourierErrors.WithLabelValues(courier, kind).Inc()
}

// RecordCacheEvent records a quote-cache hit or miss.
func (m *Metrics) RecordCacheEvent(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.QuoteCacheEvents.WithLabelValues(result).Inc()
}
