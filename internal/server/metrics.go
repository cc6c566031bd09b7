package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/nodecanvas/pkg/observability"
)

// Metrics holds the server's Prometheus collectors. It implements the
// observability hook interfaces so library events land in the same registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SessionsActive   prometheus.Gauge
	SessionDuration  prometheus.Histogram
	DragEventsTotal  *prometheus.CounterVec
	LayoutDuration   prometheus.Histogram
	LayoutNodes      prometheus.Histogram
	RenderDuration   *prometheus.HistogramVec
	CacheEventsTotal *prometheus.CounterVec
	SearchesTotal    *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodecanvas_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.HTTPRequestDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodecanvas_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.SessionsActive = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "nodecanvas_sessions_active",
			Help: "Current number of open websocket sessions",
		},
	)
	m.SessionDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodecanvas_session_duration_seconds",
			Help:    "Lifetime of websocket sessions in seconds",
			Buckets: []float64{1, 10, 60, 300, 1800, 3600},
		},
	)
	m.DragEventsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodecanvas_drag_events_total",
			Help: "Total number of dispatched drag events",
		},
		[]string{"phase", "result"},
	)

	m.LayoutDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodecanvas_layout_duration_seconds",
			Help:    "Time to lay out a document in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
	)
	m.LayoutNodes = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodecanvas_layout_nodes",
			Help:    "Number of nodes per laid-out document",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		},
	)
	m.RenderDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodecanvas_render_duration_seconds",
			Help:    "Time to render artifacts in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	m.CacheEventsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodecanvas_cache_events_total",
			Help: "Total number of artifact cache lookups and writes",
		},
		[]string{"key_type", "event"},
	)
	m.SearchesTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodecanvas_searches_total",
			Help: "Total number of corpus searches by outcome",
		},
		[]string{"result"},
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Install registers m as the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetDragHooks(m)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnLayoutStart(context.Context, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, nodes int, d time.Duration, err error) {
	m.LayoutDuration.Observe(d.Seconds())
	if err == nil {
		m.LayoutNodes.Observe(float64(nodes))
	}
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.RenderDuration.WithLabelValues(status(err)).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheEventsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheEventsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.CacheEventsTotal.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnSessionOpen(context.Context, string) {
	m.SessionsActive.Inc()
}

func (m *Metrics) OnSessionClose(_ context.Context, _ string, d time.Duration) {
	m.SessionsActive.Dec()
	m.SessionDuration.Observe(d.Seconds())
}

func (m *Metrics) OnDrag(_ context.Context, phase string, moved bool, err error) {
	result := "idle"
	switch {
	case err != nil:
		result = "error"
	case moved:
		result = "moved"
	}
	m.DragEventsTotal.WithLabelValues(phase, result).Inc()
}

// observeSearch counts one search. hits is the number of matching
// instances.
func (m *Metrics) observeSearch(hits int, err error) {
	result := "hit"
	switch {
	case err != nil:
		result = "error"
	case hits == 0:
		result = "empty"
	}
	m.SearchesTotal.WithLabelValues(result).Inc()
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.DragHooks     = (*Metrics)(nil)
)
