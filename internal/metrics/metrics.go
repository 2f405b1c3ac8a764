// internal/metrics/metrics.go

// Package metrics exports poller counters to Prometheus.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cncpoller"

// Publish results.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultNoRoute = "disconnected"
)

type Metrics struct {
	cycles        prometheus.Counter
	fieldFailures *prometheus.CounterVec
	publishes     *prometheus.CounterVec
	dropped       prometheus.Counter
	overruns      prometheus.Counter
	cycleDuration prometheus.Histogram
	busConnected  prometheus.Gauge
	health        prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed poll cycles.",
		}),
		fieldFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_failures_total",
			Help:      "Failed field reads by field.",
		}, []string{"field"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Publish attempts by result.",
		}, []string{"result"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Records dropped before a publish attempt.",
		}),
		overruns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_overruns_total",
			Help:      "Cycles that took longer than the poll interval.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time spent reading all fields of one cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		busConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bus_connected",
			Help:      "1 while the outbound bus connection is up.",
		}),
		health: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_health",
			Help:      "Device health: 0 unknown, 1 ok, 2 degraded, 3 error.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.cycles, m.fieldFailures, m.publishes, m.dropped,
			m.overruns, m.cycleDuration, m.busConnected, m.health,
		)
	}
	return m
}

func (m *Metrics) CycleDone(d time.Duration) {
	if m == nil {
		return
	}
	m.cycles.Inc()
	m.cycleDuration.Observe(d.Seconds())
}

func (m *Metrics) FieldFailed(field string) {
	if m == nil {
		return
	}
	m.fieldFailures.WithLabelValues(field).Inc()
}

func (m *Metrics) Published(result string) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(result).Inc()
}

func (m *Metrics) Dropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *Metrics) Overrun() {
	if m == nil {
		return
	}
	m.overruns.Inc()
}

func (m *Metrics) BusConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.busConnected.Set(1)
		return
	}
	m.busConnected.Set(0)
}

func (m *Metrics) Health(level int) {
	if m == nil {
		return
	}
	m.health.Set(float64(level))
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
