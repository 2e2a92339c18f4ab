// SPDX-License-Identifier: MIT
package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps the Prometheus collectors updated by the dispatcher. A nil
// *Metrics records nothing.
type Metrics struct {
	Invocations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewMetrics creates the dispatcher collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sigbench",
			Subsystem: "dispatch",
			Name:      "invocations_total",
			Help:      "Total number of method invocations by outcome status",
		}, []string{"method", "task", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sigbench",
			Subsystem: "dispatch",
			Name:      "invocation_duration_seconds",
			Help:      "Duration of method invocations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"method"}),
	}

	for _, c := range []prometheus.Collector{m.Invocations, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(o Outcome) {
	if m == nil {
		return
	}
	m.Invocations.WithLabelValues(o.MethodID, o.Task.String(), o.Status()).Inc()
	m.Duration.WithLabelValues(o.MethodID).Observe(o.Elapsed.Seconds())
}
