// Package metrics exposes job execution metrics in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cronzimus"

// Run outcomes used as the "status" label.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusPanic   = "panic"
	StatusSkipped = "skipped"
)

// Metrics owns its registry so tests and multiple instances never clash on
// the global default registerer. All methods are safe on a nil receiver.
type Metrics struct {
	reg *prometheus.Registry

	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   *prometheus.GaugeVec
	registered prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Job executions by outcome.",
		}, []string{"job_id", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Job execution time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job_id"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_in_flight",
			Help:      "Job executions currently running.",
		}, []string{"job_id"}),
		registered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_registered",
			Help:      "Jobs registered with the running scheduler.",
		}),
	}
	m.reg.MustRegister(
		m.runs, m.duration, m.inFlight, m.registered,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) SetRegistered(n int) {
	if m == nil {
		return
	}
	m.registered.Set(float64(n))
}

// Started marks a run as in flight.
func (m *Metrics) Started(jobID string) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(jobID).Inc()
}

// Finished records the outcome of a run begun with Started.
func (m *Metrics) Finished(jobID, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(jobID).Dec()
	m.runs.WithLabelValues(jobID, status).Inc()
	m.duration.WithLabelValues(jobID).Observe(took.Seconds())
}

// Skipped records a firing dropped because the previous run was still going.
func (m *Metrics) Skipped(jobID string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(jobID, StatusSkipped).Inc()
}
