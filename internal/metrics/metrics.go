package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all console metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Refresh metrics
	RefreshesTotal   *prometheus.CounterVec
	RefreshDiscards  prometheus.Counter
	RefreshDuration  prometheus.Histogram
	SnapshotOrders   prometheus.Gauge
	SelectionCleared prometheus.Counter

	// Stream metrics
	StreamState      prometheus.Gauge
	StreamReconnects prometheus.Counter
	StreamUpdates    prometheus.Counter

	// Overlay metrics
	OverlayRecomputes *prometheus.CounterVec

	// Operator action metrics
	ActionsTotal *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.RefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Name:      "refreshes_total",
			Help:      "Total number of state refreshes by outcome",
		},
		[]string{"trigger", "status"},
	)

	m.RefreshDiscards = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "console",
			Name:      "refresh_discards_total",
			Help:      "Completed refreshes dropped because a newer one was issued",
		},
	)

	m.RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "console",
			Name:      "refresh_duration_seconds",
			Help:      "State refresh duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	m.SnapshotOrders = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "console",
			Name:      "snapshot_orders",
			Help:      "Number of orders in the last committed snapshot",
		},
	)

	m.SelectionCleared = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "console",
			Name:      "selection_cleared_total",
			Help:      "Times the selected order vanished from a committed snapshot",
		},
	)

	m.StreamState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "console",
			Name:      "stream_state",
			Help:      "Push connection state (0=disconnected, 1=reconnecting, 2=connected)",
		},
	)

	m.StreamReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "console",
			Name:      "stream_reconnects_total",
			Help:      "Total number of push connection reconnect attempts",
		},
	)

	m.StreamUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "console",
			Name:      "stream_updates_total",
			Help:      "Total number of actionable update notifications received",
		},
	)

	m.OverlayRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Name:      "overlay_recomputes_total",
			Help:      "Total number of route overlay recomputations by resulting state",
		},
		[]string{"state"},
	)

	m.ActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Name:      "actions_total",
			Help:      "Total number of operator actions by result",
		},
		[]string{"action", "status"},
	)

	registry.MustRegister(
		m.RefreshesTotal,
		m.RefreshDiscards,
		m.RefreshDuration,
		m.SnapshotOrders,
		m.SelectionCleared,
		m.StreamState,
		m.StreamReconnects,
		m.StreamUpdates,
		m.OverlayRecomputes,
		m.ActionsTotal,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRefresh records one refresh attempt and its duration.
func (m *Metrics) RecordRefresh(trigger string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RefreshesTotal.WithLabelValues(trigger, status).Inc()
	m.RefreshDuration.Observe(duration.Seconds())
}

// RecordAction records an operator action outcome.
func (m *Metrics) RecordAction(action string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ActionsTotal.WithLabelValues(action, status).Inc()
}

// RecordOverlay records an overlay recompute by its resulting state.
func (m *Metrics) RecordOverlay(state string) {
	m.OverlayRecomputes.WithLabelValues(state).Inc()
}

// SetStreamState records the push connection state.
func (m *Metrics) SetStreamState(state int) {
	m.StreamState.Set(float64(state))
}
