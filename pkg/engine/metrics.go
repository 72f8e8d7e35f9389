package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports frame work as prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	LayoutPasses     prometheus.Counter
	NodesLaidOut     prometheus.Counter
	LayoutMemoHits   prometheus.Counter
	Regenerations    prometheus.Counter
	EventsDispatched prometheus.Counter
	Errors           *prometheus.CounterVec
	TreeNodes        prometheus.Gauge
	HostedSubtrees   prometheus.Gauge
	FrameDuration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg, if non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LayoutPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbor", Subsystem: "layout", Name: "passes_total",
			Help: "Dirty-set batches drained by the layout engine.",
		}),
		NodesLaidOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbor", Subsystem: "layout", Name: "nodes_total",
			Help: "PerformLayout calls.",
		}),
		LayoutMemoHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbor", Subsystem: "layout", Name: "memo_hits_total",
			Help: "Child layouts answered from the layout store.",
		}),
		Regenerations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbor", Subsystem: "reconcile", Name: "regenerations_total",
			Help: "Dynamic regions regenerated.",
		}),
		EventsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbor", Subsystem: "events", Name: "dispatched_total",
			Help: "Events delivered through the tree.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbor", Name: "errors_total",
			Help: "Failed frames and inputs by phase.",
		}, []string{"phase"}),
		TreeNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arbor", Subsystem: "tree", Name: "nodes",
			Help: "Live nodes in the arena.",
		}),
		HostedSubtrees: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arbor", Subsystem: "tree", Name: "hosted_subtrees",
			Help: "Removed subtrees kept alive by delay-drop.",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arbor", Subsystem: "frame", Name: "duration_seconds",
			Help:    "Time spent laying out and painting a frame.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.LayoutPasses, m.NodesLaidOut, m.LayoutMemoHits, m.Regenerations,
			m.EventsDispatched, m.Errors, m.TreeNodes, m.HostedSubtrees, m.FrameDuration,
		)
	}
	return m
}

func (m *Metrics) observeFrame(c FrameCounts, d time.Duration) {
	if m == nil {
		return
	}
	m.LayoutPasses.Add(float64(c.Passes))
	m.NodesLaidOut.Add(float64(c.LaidOut))
	m.LayoutMemoHits.Add(float64(c.MemoHits))
	m.Regenerations.Add(float64(c.Regenerations))
	m.TreeNodes.Set(float64(c.NodeCount))
	m.HostedSubtrees.Set(float64(c.Hosted))
	m.FrameDuration.Observe(d.Seconds())
}

func (m *Metrics) observeEvents(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.EventsDispatched.Add(float64(n))
}

func (m *Metrics) observeError(phase string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(phase).Inc()
}
