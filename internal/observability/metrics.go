// Package observability groups the Prometheus instruments for the
// translation pipeline.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service. A nil
// *Metrics disables instrumentation; every method is nil-safe.
type Metrics struct {
	StageLatency     *prometheus.HistogramVec
	PipelineTotal    prometheus.Histogram
	PipelineRequests *prometheus.CounterVec
	PipelineFailures *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_ms",
			Help:      "Latency of one pipeline stage in milliseconds.",
			Buckets:   []float64{50, 100, 200, 300, 500, 700, 1000, 1500, 2500, 5000},
		}, []string{"stage"}),
		PipelineTotal: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_total_ms",
			Help:      "End-to-end push-to-talk pipeline latency in milliseconds.",
			Buckets:   []float64{200, 500, 800, 1200, 2000, 3000, 5000, 10000},
		}),
		PipelineRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_requests_total",
			Help:      "Pipeline requests by language pair.",
		}, []string{"source", "target"}),
		PipelineFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_failures_total",
			Help:      "Pipeline failures by stage.",
		}, []string{"stage"}),
	}
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageLatency.WithLabelValues(stage).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) ObserveTotal(d time.Duration) {
	if m == nil {
		return
	}
	m.PipelineTotal.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) CountRequest(source, target string) {
	if m == nil {
		return
	}
	m.PipelineRequests.WithLabelValues(source, target).Inc()
}

func (m *Metrics) CountFailure(stage string) {
	if m == nil {
		return
	}
	m.PipelineFailures.WithLabelValues(stage).Inc()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
