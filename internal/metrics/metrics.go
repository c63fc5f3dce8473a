// Package metrics exposes Prometheus counters and histograms for fetch
// attempts, reconcile outcomes and adapter runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "internship_fetcher"

// Metrics is safe to use through a nil pointer; every method is then a
// no-op.
type Metrics struct {
	registry *prometheus.Registry

	FetchAttempts   *prometheus.CounterVec
	Reconciled      *prometheus.CounterVec
	AdapterDuration *prometheus.HistogramVec
	AdapterRecords  *prometheus.CounterVec
	Runs            *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.FetchAttempts = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_attempts_total",
		Help:      "Outbound HTTP attempts by outcome",
	}, []string{"outcome"})

	m.Reconciled = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciled_total",
		Help:      "Reconciled records by source and outcome (created, updated, error)",
	}, []string{"source", "outcome"})

	m.AdapterDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "adapter_duration_seconds",
		Help:      "Time spent by one adapter fetching a query",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	}, []string{"source"})

	m.AdapterRecords = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "adapter_records_total",
		Help:      "Records returned by adapters",
	}, []string{"source"})

	m.Runs = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Orchestrated runs by status",
	}, []string{"status"})

	return m
}

// Handler serves the registry on /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) FetchAttempt(outcome string) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Reconcile(source, outcome string) {
	if m == nil {
		return
	}
	m.Reconciled.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) AdapterRun(source string, d time.Duration, records int) {
	if m == nil {
		return
	}
	m.AdapterDuration.WithLabelValues(source).Observe(d.Seconds())
	m.AdapterRecords.WithLabelValues(source).Add(float64(records))
}

func (m *Metrics) Run(status string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(status).Inc()
}
