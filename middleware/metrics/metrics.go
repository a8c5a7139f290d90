// Package metrics counts and times capability calls with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweetpotato0/chainsocket/middleware"
)

// Metrics records capability call counts and durations
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainsocket_capability_calls_total",
				Help: "Total number of capability calls.",
			},
			[]string{"kind", "name", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chainsocket_capability_call_duration_seconds",
				Help:    "Capability call duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "name"},
		),
	}
	for _, c := range []prometheus.Collector{m.calls, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Name returns the middleware name
func (m *Metrics) Name() string {
	return "Metrics"
}

// Execute times the call and counts it by outcome
func (m *Metrics) Execute(ctx *middleware.Context, next middleware.Handler) error {
	start := time.Now()
	err := next(ctx)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	kind := string(ctx.Kind)
	m.calls.WithLabelValues(kind, ctx.Name, outcome).Inc()
	m.duration.WithLabelValues(kind, ctx.Name).Observe(time.Since(start).Seconds())
	return err
}
