package nebula

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// lifeEpsilon absorbs float drift so that life reaching zero after exactly
// 1/decayRate steps counts as expired.
const lifeEpsilon = 1e-9

// ExplosionParams describes a single burst.
type ExplosionParams struct {
	Count     int
	DecayRate float64
	Color     Color
	Speed     Range
	// Gravity is subtracted from each particle's Y velocity every update.
	Gravity float64
	// Drag multiplies every velocity component every update.
	Drag float64
	// SizeStart and SizeEnd bound the point size, eased over the lifetime.
	SizeStart float64
	SizeEnd   float64
}

// params draws randomized burst parameters from the config.
func (c ExplosionConfig) params(rng *rand.Rand, color Color) ExplosionParams {
	return ExplosionParams{
		Count:     c.Count.Random(rng),
		DecayRate: c.Decay.Random(rng),
		Color:     color,
		Speed:     c.Speed,
		Gravity:   c.Gravity,
		Drag:      c.Drag,
		SizeStart: c.SizeStart,
		SizeEnd:   c.SizeEnd,
	}
}

// Explosion is a self-expiring particle burst. It owns its buffers and its
// PointCloud; both are released by Dispose.
type Explosion struct {
	positions  []float32
	velocities []float32
	life       float64
	decayRate  float64
	gravity    float32
	drag       float32
	color      Color
	sizeTween  *gween.Tween

	cloud    *PointCloud
	owner    *renderList
	expired  bool
	disposed bool
}

// NewExplosion creates a burst of p.Count particles at origin.
func NewExplosion(rng *rand.Rand, origin mgl32.Vec3, p ExplosionParams) *Explosion {
	positions, velocities := InitExplosion(rng, p.Count, origin, p.Speed)
	e := &Explosion{
		positions:  positions,
		velocities: velocities,
		life:       1,
		decayRate:  p.DecayRate,
		gravity:    float32(p.Gravity),
		drag:       float32(p.Drag),
		color:      p.Color,
		sizeTween:  gween.New(float32(p.SizeStart), float32(p.SizeEnd), 1, ease.OutQuad),
	}
	e.cloud = NewPointCloud("explosion", positions)
	e.cloud.Color = p.Color
	e.cloud.Size = float32(p.SizeStart)
	e.cloud.Alpha = 1
	return e
}

// attach registers the explosion's cloud with a render list. Dispose
// detaches it again.
func (e *Explosion) attach(list *renderList) {
	if e.disposed || list == nil {
		return
	}
	e.owner = list
	list.add(e.cloud)
}

// Life returns the remaining life in [0, 1].
func (e *Explosion) Life() float64 {
	if e.life < 0 {
		return 0
	}
	return e.life
}

// DecayRate returns the life lost per update.
func (e *Explosion) DecayRate() float64 {
	return e.decayRate
}

// Color returns the emission color.
func (e *Explosion) Color() Color {
	return e.color
}

// Len returns the particle count.
func (e *Explosion) Len() int {
	return len(e.positions) / 3
}

// Positions returns the live position buffer. Nil after Dispose.
func (e *Explosion) Positions() []float32 {
	return e.positions
}

// Velocities returns the live velocity buffer. Nil after Dispose.
func (e *Explosion) Velocities() []float32 {
	return e.velocities
}

// Cloud returns the explosion's renderable.
func (e *Explosion) Cloud() *PointCloud {
	return e.cloud
}

// Expired reports whether the explosion's life has run out.
func (e *Explosion) Expired() bool {
	return e.expired
}

// IsDisposed reports whether Dispose has run.
func (e *Explosion) IsDisposed() bool {
	return e.disposed
}

// Update advances the burst by one step and reports whether it is still
// alive. After it has returned false further calls return false without
// touching any buffer.
func (e *Explosion) Update() bool {
	if e.expired || e.disposed {
		return false
	}
	e.life -= e.decayRate
	if e.life <= lifeEpsilon {
		e.expired = true
		e.cloud.Alpha = 0
		return false
	}

	pos, vel := e.positions, e.velocities
	for i := 0; i+2 < len(pos); i += 3 {
		pos[i] += vel[i]
		pos[i+1] += vel[i+1]
		pos[i+2] += vel[i+2]

		vel[i+1] -= e.gravity
		vel[i] *= e.drag
		vel[i+1] *= e.drag
		vel[i+2] *= e.drag
	}

	size, _ := e.sizeTween.Update(float32(e.decayRate))
	e.cloud.Size = size
	e.cloud.Alpha = float32(e.life)
	e.cloud.MarkNeedsUpdate()
	return true
}

// Dispose detaches the renderable and releases the buffers. Safe to call
// more than once.
func (e *Explosion) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	if e.owner != nil {
		e.owner.remove(e.cloud)
		e.owner = nil
	}
	e.cloud.dispose()
	e.positions = nil
	e.velocities = nil
}
