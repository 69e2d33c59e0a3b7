package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "onecard"

// Metrics groups the collectors shared by the services. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ActiveRooms     prometheus.Gauge
	GamesStarted    prometheus.Counter
	OnlineSockets   prometheus.Gauge
	Requests        *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
	UpdateConflicts prometheus.Counter
}

func NewMetrics(service string) *Metrics {
	labels := prometheus.Labels{"service": service}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   Namespace,
			Name:        "active_rooms",
			Help:        "Number of rooms currently stored",
			ConstLabels: labels,
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "games_started_total",
			Help:        "Total number of games dealt",
			ConstLabels: labels,
		}),
		OnlineSockets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   Namespace,
			Name:        "online_sockets",
			Help:        "Number of open websocket connections",
			ConstLabels: labels,
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "requests_total",
			Help:        "Requests handled by message type and result code",
			ConstLabels: labels,
		}, []string{"type", "code"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   Namespace,
			Name:        "request_latency_seconds",
			Help:        "Request processing latency",
			Buckets:     prometheus.ExponentialBuckets(0.001, 2, 10),
			ConstLabels: labels,
		}, []string{"type"}),
		UpdateConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   Namespace,
			Name:        "room_update_conflicts_total",
			Help:        "Room updates retried after a concurrent write",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.ActiveRooms,
		m.GamesStarted,
		m.OnlineSockets,
		m.Requests,
		m.RequestLatency,
		m.UpdateConflicts,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) AddRooms(delta int) {
	if m == nil {
		return
	}
	m.ActiveRooms.Add(float64(delta))
}

func (m *Metrics) SetRooms(count int) {
	if m == nil {
		return
	}
	m.ActiveRooms.Set(float64(count))
}

func (m *Metrics) IncGamesStarted() {
	if m == nil {
		return
	}
	m.GamesStarted.Inc()
}

func (m *Metrics) IncOnlineSockets() {
	if m == nil {
		return
	}
	m.OnlineSockets.Inc()
}

func (m *Metrics) DecOnlineSockets() {
	if m == nil {
		return
	}
	m.OnlineSockets.Dec()
}

func (m *Metrics) IncUpdateConflicts() {
	if m == nil {
		return
	}
	m.UpdateConflicts.Inc()
}

// ObserveRequest counts one handled request and its latency.
func (m *Metrics) ObserveRequest(msgType, code string, took time.Duration) {
	if m == nil {
		return
	}
	if code == "" {
		code = "OK"
	}
	m.Requests.WithLabelValues(msgType, code).Inc()
	m.RequestLatency.WithLabelValues(msgType).Observe(took.Seconds())
}
