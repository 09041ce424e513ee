package infrastructure

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "floodmap"

// PrometheusMetricsCollector implements the MetricsCollector port on a
// dedicated Prometheus registry.
type PrometheusMetricsCollector struct {
	registry         *prometheus.Registry
	remoteCalls      *prometheus.CounterVec
	remoteDuration   *prometheus.HistogramVec
	materializations *prometheus.CounterVec
	areaCache        *prometheus.CounterVec
}

// NewPrometheusMetricsCollector creates the collector and registers its
// metrics together with the Go runtime and process collectors.
func NewPrometheusMetricsCollector() *PrometheusMetricsCollector {
	m := &PrometheusMetricsCollector{
		registry: prometheus.NewRegistry(),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "gfm_requests_total",
			Help:      "GFM API calls by operation and success.",
		}, []string{"operation", "success"}),
		remoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "gfm_request_duration_seconds",
			Help:      "GFM API call duration.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"operation"}),
		materializations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "product_materializations_total",
			Help:      "Product download outcomes.",
		}, []string{"outcome"}),
		areaCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "area_cache_requests_total",
			Help:      "AOI listing cache lookups by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.remoteCalls,
		m.remoteDuration,
		m.materializations,
		m.areaCache,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *PrometheusMetricsCollector) RecordCacheHit(ctx context.Context) {
	m.areaCache.WithLabelValues("hit").Inc()
}

func (m *PrometheusMetricsCollector) RecordCacheMiss(ctx context.Context) {
	m.areaCache.WithLabelValues("miss").Inc()
}

func (m *PrometheusMetricsCollector) RecordRemoteCall(ctx context.Context, operation string, success bool, duration time.Duration) {
	m.remoteCalls.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
	m.remoteDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *PrometheusMetricsCollector) RecordMaterialization(ctx context.Context, outcome string) {
	m.materializations.WithLabelValues(outcome).Inc()
}

// Registry returns the registry the metrics are registered on
func (m *PrometheusMetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *PrometheusMetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
