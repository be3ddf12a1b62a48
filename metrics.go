package agentrt

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the set of instrumentation points a Tree can be wired to.
// A nil *Metrics (the zero value of the pointer) is valid and a no-op —
// call sites never need a guard.
type Metrics struct {
	ticksTotal   *prometheus.CounterVec
	tickLatency  prometheus.Histogram
	statusTotal  *prometheus.CounterVec
}

// NewMetrics registers the tree's Prometheus collectors against reg and
// returns a Metrics ready to pass to WithMetrics. Passing a nil registry
// uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		ticksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentrt",
			Name:      "tree_ticks_total",
			Help:      "Number of times Tree.Tick has been called, by root node name.",
		}, []string{"root"}),
		tickLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agentrt",
			Name:      "tree_tick_seconds",
			Help:      "Wall-clock duration of a single Tree.Tick call.",
			Buckets:   prometheus.DefBuckets,
		}),
		statusTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentrt",
			Name:      "tree_tick_status_total",
			Help:      "Terminal/Running status counts returned by Tree.Tick, by status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.ticksTotal, m.tickLatency, m.statusTotal)
	return m
}

func (m *Metrics) observe(root string, status Status, dur time.Duration) {
	if m == nil {
		return
	}
	m.ticksTotal.WithLabelValues(root).Inc()
	m.tickLatency.Observe(dur.Seconds())
	m.statusTotal.WithLabelValues(status.String()).Inc()
}

// WithMetrics attaches m to the Tree so that every call to TickInstrumented
// records tick count, latency, and status.
func WithMetrics(m *Metrics) TreeOption {
	return func(t *Tree) { t.metrics = m }
}

// TickInstrumented behaves exactly like Tick, additionally recording
// Prometheus observations if the Tree was built with WithMetrics.
func (t *Tree) TickInstrumented(ctx context.Context) (Status, error) {
	start := time.Now()
	status, err := t.Tick(ctx)
	t.metrics.observe(t.Root.Name(), status, time.Since(start))
	return status, err
}
