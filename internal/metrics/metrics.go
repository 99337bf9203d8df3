// Package metrics owns the Prometheus registry of the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server collectors.
type Metrics struct {
	reg *prometheus.Registry

	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthEvents      *prometheus.CounterVec
	Propagation     prometheus.Counter
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		RequestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AuthEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Authentication operations by outcome.",
		}, []string{"op", "outcome"}),
		Propagation: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_propagated_records_total",
			Help: "Inventory records created by propagation.",
		}),
	}
	m.reg.MustRegister(
		m.RequestCount,
		m.RequestDuration,
		m.AuthEvents,
		m.Propagation,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.RequestCount.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// AuthEvent counts an authentication operation.
func (m *Metrics) AuthEvent(op, outcome string) {
	m.AuthEvents.WithLabelValues(op, outcome).Inc()
}

// Propagated counts created inventory records.
func (m *Metrics) Propagated(n int) {
	if n > 0 {
		m.Propagation.Add(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
