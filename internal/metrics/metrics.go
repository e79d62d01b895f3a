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

type Metrics struct {
	gatherer prometheus.Gatherer

	upstreamRequests  *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	activeConnections prometheus.Gauge
	transitions       *prometheus.CounterVec
}

// New registers the gateway collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewWithRegistry(reg, reg)
}

func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: gatherer,

		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barikoi",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total requests sent to the Barikoi API",
		}, []string{"endpoint", "method", "status"}),

		upstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "barikoi",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Barikoi API round trip latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"endpoint", "method"}),

		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "barikoi",
			Subsystem: "ws",
			Name:      "active_connections",
			Help:      "Current number of active watch WebSocket connections",
		}),

		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barikoi",
			Subsystem: "geofence",
			Name:      "transitions_total",
			Help:      "Total geofence enter/exit transitions detected",
		}, []string{"action"}),
	}
}

// ObserveRequest records one upstream round trip. A zero status means the
// request failed before a response arrived.
func (m *Metrics) ObserveRequest(endpoint, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamRequests.WithLabelValues(endpoint, method, label).Inc()
	m.upstreamDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.activeConnections.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

func (m *Metrics) ObserveTransition(action string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
