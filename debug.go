package nebula

import (
	"time"

	"go.uber.org/zap"
)

// FrameStats holds per-tick counters and timings.
type FrameStats struct {
	Frame uint64
	// Delta is the raw time since the previous tick, before clamping.
	Delta time.Duration
	// TickTime is the time spent inside Update.
	TickTime time.Duration
	// AmbientParticles is the ambient field size.
	AmbientParticles int
	// EffectParticles is the summed particle count of live explosions.
	EffectParticles int
	Effects         int
	// Spawned and Dropped count effects added and removed this tick.
	Spawned int
	Dropped int
	// Failed counts effects dropped because they panicked.
	Failed int
}

// StatsSink receives FrameStats once per tick. The promstats package
// provides a Prometheus-backed implementation.
type StatsSink interface {
	ObserveFrame(stats FrameStats)
}

// observeFrame hands stats to the sink. A panicking sink is logged and
// does not abort the tick.
func (s *Scene) observeFrame(stats FrameStats) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("stats sink panicked", zap.Any("panic", r))
		}
	}()
	s.stats.ObserveFrame(stats)
}

// debugLog writes frame stats at debug level.
func (s *Scene) debugLog(stats FrameStats) {
	if !s.debug {
		return
	}
	s.log.Debug("frame",
		zap.Uint64("frame", stats.Frame),
		zap.Duration("delta", stats.Delta),
		zap.Duration("tick", stats.TickTime),
		zap.Int("ambient", stats.AmbientParticles),
		zap.Int("effect_particles", stats.EffectParticles),
		zap.Int("effects", stats.Effects),
		zap.Int("spawned", stats.Spawned),
		zap.Int("dropped", stats.Dropped),
	)
}

// effectParticles sums the particle count of every live explosion.
func effectParticles(effects []Effect) int {
	n := 0
	for _, fx := range effects {
		if e, ok := fx.(*Explosion); ok {
			n += e.Len()
		}
	}
	return n
}
