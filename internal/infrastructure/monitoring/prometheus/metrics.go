// Package prometheus exposes the engine's operational metrics.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultHTTPDurationBuckets covers interactive API latencies.
var DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// DefaultAssessmentDurationBuckets covers full pipeline runs, which scale
// with dataset size.
var DefaultAssessmentDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30}

// Metrics holds all application metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	AssessmentsTotal   *prometheus.CounterVec
	AssessmentDuration *prometheus.HistogramVec
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	ComponentsStored   prometheus.Gauge
	AggregationsTotal  prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		AssessmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eva",
			Name:      "assessments_total",
			Help:      "Completed assessment pipeline runs",
		}, []string{"data_type"}),
		AssessmentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eva",
			Name:      "assessment_duration_seconds",
			Help:      "Assessment pipeline duration",
			Buckets:   DefaultAssessmentDurationBuckets,
		}, []string{"data_type"}),
		CacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "eva",
			Name:      "cache_hits_total",
			Help:      "Assessment results served from cache",
		}),
		CacheMissesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "eva",
			Name:      "cache_misses_total",
			Help:      "Assessment cache lookups that missed",
		}),
		ComponentsStored: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "eva",
			Name:      "components_stored",
			Help:      "Ecosystem components currently saved",
		}),
		AggregationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "eva",
			Name:      "aggregations_total",
			Help:      "Cross-component Total EV aggregations",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eva",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eva",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   DefaultHTTPDurationBuckets,
		}, []string{"method", "path"}),
	}
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one served HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// The following methods satisfy the assessment service's MetricsCollector
// port.

func (m *Metrics) IncAssessments(dataType string) {
	m.AssessmentsTotal.WithLabelValues(dataType).Inc()
}

func (m *Metrics) ObserveAssessmentDuration(dataType string, seconds float64) {
	m.AssessmentDuration.WithLabelValues(dataType).Observe(seconds)
}

func (m *Metrics) IncCacheHit() { m.CacheHitsTotal.Inc() }

func (m *Metrics) IncCacheMiss() { m.CacheMissesTotal.Inc() }

// SetComponentsStored tracks the component store size.
func (m *Metrics) SetComponentsStored(n int) {
	m.ComponentsStored.Set(float64(n))
}

// IncAggregations counts Total EV aggregations.
func (m *Metrics) IncAggregations() { m.AggregationsTotal.Inc() }
