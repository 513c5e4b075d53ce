package lumen

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	registry   *prometheus.Registry
	reloads    *prometheus.CounterVec
	snapshots  prometheus.Counter
	lastReload prometheus.Gauge
	menuItems  prometheus.Gauge
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	m := &metrics{
		registry: reg,
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lumen_config_reloads_total",
			Help: "Configuration reload attempts by result.",
		}, []string{"result"}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lumen_config_snapshots_total",
			Help: "Snapshots written to the store.",
		}),
		lastReload: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lumen_config_last_reload_timestamp_seconds",
			Help: "Unix time of the last successful load.",
		}),
		menuItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lumen_config_menu_items",
			Help: "Number of menu entries in the current configuration.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lumen_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lumen_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(
		m.reloads, m.snapshots, m.lastReload, m.menuItems, m.requests, m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) observeLoad(s Site) {
	m.reloads.WithLabelValues("success").Inc()
	m.lastReload.Set(float64(time.Now().Unix()))
	m.menuItems.Set(float64(len(s.Menu)))
}
