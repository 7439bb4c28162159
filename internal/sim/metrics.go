package sim

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports simulation counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	steps    prometheus.Counter
	spawned  prometheus.Counter
	resets   prometheus.Counter
	marbles  prometheus.Gauge
	pegs     prometheus.Gauge
	elapsed  prometheus.Gauge
	tickTime prometheus.Histogram
}

// NewMetrics registers the simulation collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		steps: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fallingstuff",
			Name:      "physics_steps_total",
			Help:      "Fixed physics steps taken.",
		}),
		spawned: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fallingstuff",
			Name:      "marbles_spawned_total",
			Help:      "Marbles dropped into the world.",
		}),
		resets: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fallingstuff",
			Name:      "world_resets_total",
			Help:      "World rebuilds after the first.",
		}),
		marbles: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "fallingstuff",
			Name:      "marbles",
			Help:      "Marbles in the current world.",
		}),
		pegs: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "fallingstuff",
			Name:      "pegs",
			Help:      "Pegs in the current world.",
		}),
		elapsed: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "fallingstuff",
			Name:      "session_elapsed_seconds",
			Help:      "Wall time covered by the current session.",
		}),
		tickTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fallingstuff",
			Name:      "tick_duration_seconds",
			Help:      "Time spent in one Update call.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}
}

func (m *Metrics) stepped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.steps.Add(float64(n))
}

func (m *Metrics) marbleSpawned() {
	if m == nil {
		return
	}
	m.spawned.Inc()
}

func (m *Metrics) worldReset() {
	if m == nil {
		return
	}
	m.resets.Inc()
}

func (m *Metrics) observe(s *Simulation, took time.Duration) {
	if m == nil {
		return
	}
	st := s.Stats()
	m.marbles.Set(float64(st.Marbles))
	m.pegs.Set(float64(st.Pegs))
	m.elapsed.Set(st.ElapsedS)
	m.tickTime.Observe(took.Seconds())
}
