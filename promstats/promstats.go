// Package promstats exports nebula frame statistics as Prometheus metrics.
package promstats

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/phanxgames/nebula"
)

// Sink implements nebula.StatsSink on top of Prometheus collectors.
type Sink struct {
	Frames    prometheus.Counter
	Spawned   prometheus.Counter
	Dropped   *prometheus.CounterVec
	Particles *prometheus.GaugeVec
	Effects   prometheus.Gauge
	TickTime  prometheus.Histogram
	Delta     prometheus.Histogram
}

// New creates a Sink and registers its collectors with reg. A nil reg
// registers nothing, which is useful when the caller gathers the collectors
// itself.
func New(reg prometheus.Registerer, namespace string) (*Sink, error) {
	s := &Sink{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Simulation ticks completed",
		}),
		Spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effects_spawned_total",
			Help:      "Explosions spawned by clicks",
		}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "effects_dropped_total",
			Help:      "Effects removed from the scene, by reason",
		}, []string{"reason"}),
		Particles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "particles",
			Help:      "Live particles",
		}, []string{"kind"}),
		Effects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "effects",
			Help:      "Live effects",
		}),
		TickTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_seconds",
			Help:      "Time spent in a simulation tick",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
		Delta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_delta_seconds",
			Help:      "Wall time between ticks",
			Buckets:   []float64{0.004, 0.008, 0.0167, 0.025, 0.034, 0.05, 0.1, 0.25},
		}),
	}
	if reg == nil {
		return s, nil
	}
	for _, c := range []prometheus.Collector{s.Frames, s.Spawned, s.Dropped, s.Particles, s.Effects, s.TickTime, s.Delta} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ObserveFrame implements nebula.StatsSink.
func (s *Sink) ObserveFrame(st nebula.FrameStats) {
	s.Frames.Inc()
	s.Spawned.Add(float64(st.Spawned))
	if expired := st.Dropped - st.Failed; expired > 0 {
		s.Dropped.WithLabelValues("expired").Add(float64(expired))
	}
	if st.Failed > 0 {
		s.Dropped.WithLabelValues("failed").Add(float64(st.Failed))
	}
	s.Particles.WithLabelValues("ambient").Set(float64(st.AmbientParticles))
	s.Particles.WithLabelValues("effect").Set(float64(st.EffectParticles))
	s.Effects.Set(float64(st.Effects))
	s.TickTime.Observe(st.TickTime.Seconds())
	s.Delta.Observe(st.Delta.Seconds())
}

var _ nebula.StatsSink = (*Sink)(nil)
