package nebula

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// ParticleBuffers holds the ambient field as parallel flat arrays, laid out
// the way they are uploaded for rendering.
type ParticleBuffers struct {
	Positions  []float32 // N*3
	Colors     []float32 // N*3, 0..1
	Sizes      []float32 // N
	Velocities []float32 // N*3, impulse only
}

// NewParticleBuffers allocates zeroed buffers for n particles.
func NewParticleBuffers(n int) *ParticleBuffers {
	if n < 0 {
		n = 0
	}
	return &ParticleBuffers{
		Positions:  make([]float32, n*3),
		Colors:     make([]float32, n*3),
		Sizes:      make([]float32, n),
		Velocities: make([]float32, n*3),
	}
}

// Len returns the particle count.
func (b *ParticleBuffers) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Sizes)
}

// Released reports whether Release has been called.
func (b *ParticleBuffers) Released() bool {
	return b == nil || b.Positions == nil
}

// Release drops every buffer. Safe to call more than once.
func (b *ParticleBuffers) Release() {
	if b == nil {
		return
	}
	b.Positions = nil
	b.Colors = nil
	b.Sizes = nil
	b.Velocities = nil
}

// SampleUnitSphere returns a direction uniformly distributed on the unit
// sphere. The polar angle comes from acos(2u-1) so the poles are not
// oversampled.
func SampleUnitSphere(rng *rand.Rand) mgl32.Vec3 {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)
	sinPhi := math.Sin(phi)
	return mgl32.Vec3{
		float32(sinPhi * math.Cos(theta)),
		float32(sinPhi * math.Sin(theta)),
		float32(math.Cos(phi)),
	}
}

// InitAmbientField fills fresh buffers with count particles inside a sphere
// of shape.Radius. Each particle gets a palette color, a size in shape.Size
// and zero velocity. An empty palette colors every particle white.
func InitAmbientField(rng *rand.Rand, count int, shape FieldShape, palette []Color) *ParticleBuffers {
	buf := NewParticleBuffers(count)
	n := buf.Len()
	for i := 0; i < n; i++ {
		i3 := i * 3
		r := float32(rng.Float64() * shape.Radius)
		dir := SampleUnitSphere(rng)
		buf.Positions[i3] = dir[0] * r
		buf.Positions[i3+1] = dir[1] * r
		buf.Positions[i3+2] = dir[2] * r

		c := ColorWhite
		if len(palette) > 0 {
			c = palette[rng.IntN(len(palette))]
		}
		buf.Colors[i3] = float32(c.R)
		buf.Colors[i3+1] = float32(c.G)
		buf.Colors[i3+2] = float32(c.B)

		buf.Sizes[i] = float32(shape.Size.Random(rng))
	}
	return buf
}

// InitExplosion returns position and velocity buffers for a burst of count
// particles. Every particle starts at origin and moves outward in a uniform
// random direction with a speed drawn from speed.
func InitExplosion(rng *rand.Rand, count int, origin mgl32.Vec3, speed Range) (positions, velocities []float32) {
	if count < 0 {
		count = 0
	}
	positions = make([]float32, count*3)
	velocities = make([]float32, count*3)
	for i := 0; i < count; i++ {
		i3 := i * 3
		positions[i3] = origin[0]
		positions[i3+1] = origin[1]
		positions[i3+2] = origin[2]

		v := SampleUnitSphere(rng).Mul(float32(speed.Random(rng)))
		velocities[i3] = v[0]
		velocities[i3+1] = v[1]
		velocities[i3+2] = v[2]
	}
	return positions, velocities
}

// RecolorField assigns every particle a fresh color drawn from palette.
func RecolorField(rng *rand.Rand, buf *ParticleBuffers, palette []Color) {
	if buf.Released() || len(palette) == 0 {
		return
	}
	for i := 0; i+2 < len(buf.Colors); i += 3 {
		c := palette[rng.IntN(len(palette))]
		buf.Colors[i] = float32(c.R)
		buf.Colors[i+1] = float32(c.G)
		buf.Colors[i+2] = float32(c.B)
	}
}
