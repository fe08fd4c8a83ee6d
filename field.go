package nebula

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// Field is the ambient particle cloud: a fixed set of particles drifting on
// a smooth noise-like path and accumulating impulses from pointer clicks.
type Field struct {
	buf    *ParticleBuffers
	motion FieldMotion
	rng    *rand.Rand
	dirty  bool
}

// NewField wraps buf with the given motion parameters. rng supplies the
// direction for impulses applied exactly at a particle's position.
func NewField(buf *ParticleBuffers, motion FieldMotion, rng *rand.Rand) *Field {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	return &Field{buf: buf, motion: motion, rng: rng}
}

// Buffers returns the underlying particle buffers. Nil after Dispose.
func (f *Field) Buffers() *ParticleBuffers {
	return f.buf
}

// Motion returns the current motion parameters.
func (f *Field) Motion() FieldMotion {
	return f.motion
}

// SetMotion replaces the motion parameters. Takes effect on the next Advance.
func (f *Field) SetMotion(m FieldMotion) {
	f.motion = m
}

// Len returns the particle count.
func (f *Field) Len() int {
	if f.buf == nil {
		return 0
	}
	return f.buf.Len()
}

// TimeScale converts a frame delta into reference frames, clamping it to
// [0, MaxDelta] first.
func (m FieldMotion) TimeScale(dt float64) float64 {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	if m.MaxDelta > 0 && dt > m.MaxDelta {
		dt = m.MaxDelta
	}
	fps := m.ReferenceFPS
	if fps <= 0 {
		fps = 60
	}
	return dt * fps
}

// Advance moves the field forward by dt seconds at elapsed time t.
// Drift and integration scale linearly with the frame delta; drag is
// applied as Drag^timeScale so two half steps damp exactly as much as one
// full step.
func (f *Field) Advance(t, dt float64) {
	if f.buf == nil || f.buf.Released() {
		return
	}
	ts := f.motion.TimeScale(dt)
	if ts == 0 {
		return
	}
	amp := f.motion.Amplitude * ts
	fx, fy, fz := f.motion.Frequency[0], f.motion.Frequency[1], f.motion.Frequency[2]
	drag := float32(math.Pow(f.motion.Drag, ts))
	step := float32(ts)

	pos, vel := f.buf.Positions, f.buf.Velocities
	for i := 0; i+2 < len(pos); i += 3 {
		x, y, z := float64(pos[i]), float64(pos[i+1]), float64(pos[i+2])
		pos[i] += float32(math.Sin(t*fx+y) * amp)
		pos[i+1] += float32(math.Cos(t*fy+x) * amp)
		pos[i+2] += float32(math.Sin(t*fz+z) * amp)

		pos[i] += vel[i] * step
		pos[i+1] += vel[i+1] * step
		pos[i+2] += vel[i+2] * step

		vel[i] *= drag
		vel[i+1] *= drag
		vel[i+2] *= drag
	}
	f.dirty = true
}

// ApplyImpulse pushes every particle within radius of origin away from it.
// The push is strength scaled by the quadratic falloff (1 - d/radius)^2, so
// it is strength at the center and zero at the boundary. Returns the number
// of particles affected.
func (f *Field) ApplyImpulse(origin mgl32.Vec3, radius, strength float64) int {
	if f.buf == nil || f.buf.Released() || radius <= 0 {
		return 0
	}
	pos, vel := f.buf.Positions, f.buf.Velocities
	hit := 0
	for i := 0; i+2 < len(pos); i += 3 {
		d := mgl32.Vec3{pos[i] - origin[0], pos[i+1] - origin[1], pos[i+2] - origin[2]}
		dist := float64(d.Len())
		if dist >= radius {
			continue
		}
		var dir mgl32.Vec3
		if dist == 0 {
			dir = SampleUnitSphere(f.rng)
		} else {
			dir = d.Mul(float32(1 / dist))
		}
		falloff := 1 - dist/radius
		force := float32(strength * falloff * falloff)
		vel[i] += dir[0] * force
		vel[i+1] += dir[1] * force
		vel[i+2] += dir[2] * force
		hit++
	}
	if hit > 0 {
		f.dirty = true
	}
	return hit
}

// TakeDirty reports whether positions changed since the last call and
// clears the flag.
func (f *Field) TakeDirty() bool {
	d := f.dirty
	f.dirty = false
	return d
}

// Dispose releases the particle buffers. Safe to call more than once.
func (f *Field) Dispose() {
	if f.buf != nil {
		f.buf.Release()
	}
	f.dirty = false
}
