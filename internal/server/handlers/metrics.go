package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics owns a private registry so that several servers (and tests) can
// coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpInFlight    prometheus.Gauge
	cacheResults    *prometheus.CounterVec
	upstreamCalls   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	buildInfo       *prometheus.GaugeVec
}

func NewMetrics(version string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"method", "route", "status"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of HTTP requests being served.",
		}),
		cacheResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Cache lookups by outcome.",
		}, []string{"cache", "outcome"}),
		upstreamCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kma_upstream_calls_total",
			Help: "KMA API attempts by operation and result.",
		}, []string{"operation", "result"}),
		upstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kma_upstream_latency_seconds",
			Help:    "Latency of single KMA API attempts in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"operation"}),
		buildInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		}, []string{"version"}),
	}

	if version == "" {
		version = "dev"
	}
	m.buildInfo.WithLabelValues(version).Set(1)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	st := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, route, st).Inc()
	m.httpDuration.WithLabelValues(method, route, st).Observe(duration.Seconds())
}

func (m *Metrics) TrackInFlight(delta float64) {
	m.httpInFlight.Add(delta)
}

// RecordCacheHit records a cache hit metric
func (m *Metrics) RecordCacheHit(_ context.Context, cacheType string) {
	m.cacheResults.WithLabelValues(cacheType, "hit").Inc()
}

// RecordCacheMiss records a cache miss metric
func (m *Metrics) RecordCacheMiss(_ context.Context, cacheType string) {
	m.cacheResults.WithLabelValues(cacheType, "miss").Inc()
}

// RecordUpstreamCall records one KMA API attempt.
func (m *Metrics) RecordUpstreamCall(_ context.Context, operation string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "error"
	}
	m.upstreamCalls.WithLabelValues(operation, result).Inc()
	m.upstreamLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

type MetricsHandler struct {
	logger  *zap.Logger
	handler http.Handler
}

func NewMetricsHandler(metrics *Metrics, logger *zap.Logger) *MetricsHandler {
	return &MetricsHandler{
		logger: logger,
		handler: promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{
			ErrorLog: zap.NewStdLog(logger),
		}),
	}
}

// ServeMetrics exposes the registry in Prometheus text format.
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	h.handler.ServeHTTP(c.Writer, c.Request)
}
