package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records reassignment activity for the /metrics endpoint.
type Metrics struct {
	registry            *prometheus.Registry
	reassignmentsTotal  *prometheus.CounterVec
	reassignmentSeconds prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reassignmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reassignments_total",
				Help: "Number of reassignment requests by outcome.",
			},
			[]string{"outcome"},
		),
		reassignmentSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reassignment_duration_seconds",
				Help:    "Duration of reassignment requests.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	m.registry.MustRegister(m.reassignmentsTotal, m.reassignmentSeconds)
	return m
}

// RecordReassignment counts one reassignment attempt with its outcome
// ("success", "invalid_target", "fixed_host", "not_found", "error").
func (m *Metrics) RecordReassignment(outcome string, duration time.Duration) {
	m.reassignmentsTotal.WithLabelValues(outcome).Inc()
	m.reassignmentSeconds.Observe(duration.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
