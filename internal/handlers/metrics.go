package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// metrics is a per-handler registry so several routers can coexist in tests.
type metrics struct {
	registry       *prometheus.Registry
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	sessionsSaved  prometheus.Counter
	pulsesRelayed  prometheus.Counter
	liveClients    prometheus.Gauge
	rateLimited    prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "regenx",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "regenx",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route"}),
		sessionsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "regenx",
			Subsystem: "activity",
			Name:      "sessions_saved_total",
			Help:      "Save-session submissions merged into history",
		}),
		pulsesRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "regenx",
			Subsystem: "live",
			Name:      "pulses_relayed_total",
			Help:      "Step pulses rebroadcast on the live channel",
		}),
		liveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "regenx",
			Subsystem: "live",
			Name:      "connected_clients",
			Help:      "Currently connected live channel clients",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "regenx",
			Subsystem: "api",
			Name:      "rate_limit_hits_total",
			Help:      "Number of rate-limited responses",
		}),
	}
	m.registry.MustRegister(
		m.requestTotal,
		m.requestLatency,
		m.sessionsSaved,
		m.pulsesRelayed,
		m.liveClients,
		m.rateLimited,
	)
	return m
}

func (m *metrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// requestMetrics records count and latency per matched route.
func (h *Handler) requestMetrics(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	method := c.Request.Method
	h.metrics.requestTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
	h.metrics.requestLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}
