// Package prometheus implements roster.HarvestMetrics with Prometheus
// collectors on a private registry.
package prometheus

import (
	"net/http"
	"time"

	"github.com/fwojciec/roster"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "roster"

// Ensure Metrics implements roster.HarvestMetrics.
var _ roster.HarvestMetrics = (*Metrics)(nil)

// Metrics records harvest activity.
type Metrics struct {
	registry *prometheus.Registry

	ticks        *prometheus.CounterVec
	added        *prometheus.CounterVec
	tickDuration *prometheus.HistogramVec
	attempts     *prometheus.CounterVec
	harvests     *prometheus.CounterVec
	members      prometheus.Gauge
}

// NewMetrics creates Metrics registered on a fresh registry, so several
// instances can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ticks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "ticks_total",
				Help:      "Extraction passes by phase.",
			},
			[]string{"phase"},
		),
		added: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "members_added_total",
				Help:      "Newly discovered members by phase.",
			},
			[]string{"phase"},
		),
		tickDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "tick_duration_seconds",
				Help:      "Wall time of an extraction pass.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"phase"},
		),
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "attempts_total",
				Help:      "Session attempts by outcome.",
			},
			[]string{"result"},
		),
		harvests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "harvests_total",
				Help:      "Finished harvests by termination reason.",
			},
			[]string{"reason"},
		),
		members: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "last_harvest_members",
				Help:      "Members collected by the most recent harvest.",
			},
		),
	}
}

func (m *Metrics) TickObserved(phase string, added int, d time.Duration) {
	m.ticks.WithLabelValues(phase).Inc()
	if added > 0 {
		m.added.WithLabelValues(phase).Add(float64(added))
	}
	m.tickDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (m *Metrics) AttemptFinished(_ int, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.attempts.WithLabelValues(result).Inc()
}

func (m *Metrics) HarvestFinished(reason string, members int) {
	m.harvests.WithLabelValues(reason).Inc()
	m.members.Set(float64(members))
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
