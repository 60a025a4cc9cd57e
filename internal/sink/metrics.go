package sink

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports visit counts and scheduling lateness to Prometheus.
type Metrics struct {
	visits   *prometheus.CounterVec
	lateness prometheus.Histogram
	depth    prometheus.Gauge

	mu       sync.Mutex
	maxDepth int
}

// NewMetrics registers the traversal collectors with reg. It panics if they
// are already registered there, like promauto.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		visits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "traverse_visits_total",
			Help: "Total node visits by node name",
		}, []string{"node"}),
		lateness: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "traverse_visit_lateness_seconds",
			Help:    "Measured minus planned time since the root visit",
			Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		depth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "traverse_max_depth",
			Help: "Deepest visited node, in edges from the root",
		}),
	}
}

// Visit implements Sink. Collectors are safe for concurrent use.
func (m *Metrics) Visit(_ context.Context, v Visit) error {
	m.visits.WithLabelValues(v.Name).Inc()

	late := (v.Elapsed - v.Offset).Seconds()
	if late < 0 {
		late = 0
	}
	m.lateness.Observe(late)

	m.mu.Lock()
	if v.Depth > m.maxDepth {
		m.maxDepth = v.Depth
		m.depth.Set(float64(v.Depth))
	}
	m.mu.Unlock()
	return nil
}
