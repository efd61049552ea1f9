package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bot80-alt/certa/internal/model"
)

// Metrics records HTTP and pipeline stage metrics. It satisfies
// pipeline.Observer so the pipeline reports stage timings directly.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	checks   *prometheus.CounterVec
	stages   *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewMetrics creates metrics on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "certa",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "certa",
			Name:      "checks_total",
			Help:      "Completed pipeline runs by status and failing stage.",
		}, []string{"status", "stage"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "certa",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage", "modality"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "certa",
			Name:      "stage_failures_total",
			Help:      "Stage failures by stage and error kind.",
		}, []string{"stage", "kind"}),
	}
	m.registry.MustRegister(
		m.requests, m.checks, m.stages, m.failures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP counts one response
func (m *Metrics) ObserveHTTP(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// StageDone records a stage's latency and any failure
func (m *Metrics) StageDone(stage model.Stage, modality model.Modality, elapsed time.Duration, err error) {
	m.stages.WithLabelValues(string(stage), string(modality)).Observe(elapsed.Seconds())
	if err != nil {
		kind := string(model.KindOf(err))
		if kind == "" {
			kind = "UNKNOWN"
		}
		m.failures.WithLabelValues(string(stage), kind).Inc()
	}
}

// RunDone counts a finished run
func (m *Metrics) RunDone(result *model.PipelineResult, _ time.Duration) {
	m.checks.WithLabelValues(string(result.Status), string(result.Stage)).Inc()
}
