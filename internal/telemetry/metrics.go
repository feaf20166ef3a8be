package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the pipeline. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RunTotal           *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
	StageTotal         *prometheus.CounterVec
	ProviderFallback   *prometheus.CounterVec
	BenchmarkTaskTotal *prometheus.CounterVec
	TaskLatency        *prometheus.HistogramVec
	CatalogModels      prometheus.Gauge
	DealsTotal         *prometheus.GaugeVec
	HTTPRequests       *prometheus.CounterVec
}

// NewMetrics creates all metrics on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RunTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_pipeline_runs_total",
			Help: "Pipeline runs by final status.",
		}, []string{"status"}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "radar_stage_duration_seconds",
			Help:    "Wall time of each pipeline stage.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"stage"}),

		StageTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_stage_total",
			Help: "Stage executions by outcome.",
		}, []string{"stage", "status"}),

		ProviderFallback: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_provider_fallback_total",
			Help: "Catalog discoveries that fell back to suggested models.",
		}, []string{"provider", "reason"}),

		BenchmarkTaskTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_benchmark_tasks_total",
			Help: "Benchmark task executions by mode.",
		}, []string{"task", "mode"}),

		TaskLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "radar_benchmark_task_latency_seconds",
			Help:    "Latency of benchmark tasks, real or simulated.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		}, []string{"mode"}),

		CatalogModels: factory.NewGauge(prometheus.GaugeOpts{
			Name: "radar_catalog_models",
			Help: "Entries in the current catalog snapshot.",
		}),

		DealsTotal: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "radar_deals",
			Help: "Models flagged by the last arbitrage detection.",
		}, []string{"category"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "radar_http_requests_total",
			Help: "HTTP requests served by route and status code.",
		}, []string{"route", "code"}),
	}
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordRun(status string) {
	if m == nil {
		return
	}
	m.RunTotal.WithLabelValues(status).Inc()
}

// RecordStage records how long a stage ran and whether it succeeded.
func (m *Metrics) RecordStage(stage, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	m.StageTotal.WithLabelValues(stage, status).Inc()
}

func (m *Metrics) RecordFallback(provider, reason string) {
	if m == nil {
		return
	}
	m.ProviderFallback.WithLabelValues(provider, reason).Inc()
}

func (m *Metrics) RecordTask(task, mode string, latency time.Duration) {
	if m == nil {
		return
	}
	m.BenchmarkTaskTotal.WithLabelValues(task, mode).Inc()
	m.TaskLatency.WithLabelValues(mode).Observe(latency.Seconds())
}

func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.CatalogModels.Set(float64(n))
}

func (m *Metrics) SetDeals(category string, n int) {
	if m == nil {
		return
	}
	m.DealsTotal.WithLabelValues(category).Set(float64(n))
}

func (m *Metrics) RecordHTTP(route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
}
