package nebula

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"pgregory.net/rapid"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func testRNGSeed(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func TestInitAmbientFieldProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 300).Draw(rt, "n")
		radius := rapid.Float64Range(0.1, 20).Draw(rt, "radius")
		seed := rapid.Uint64().Draw(rt, "seed")
		rng := rand.New(rand.NewPCG(seed, seed+1))
		shape := FieldShape{Radius: radius, Size: Range{Min: 0.05, Max: 0.35}}

		buf := InitAmbientField(rng, n, shape, DefaultPalette)

		if buf.Len() != n {
			rt.Fatalf("Len = %d, want %d", buf.Len(), n)
		}
		if len(buf.Positions) != 3*n || len(buf.Colors) != 3*n || len(buf.Velocities) != 3*n || len(buf.Sizes) != n {
			rt.Fatalf("buffer lengths %d/%d/%d/%d for n=%d",
				len(buf.Positions), len(buf.Colors), len(buf.Velocities), len(buf.Sizes), n)
		}
		for i := 0; i < n; i++ {
			i3 := i * 3
			p := mgl32.Vec3{buf.Positions[i3], buf.Positions[i3+1], buf.Positions[i3+2]}
			if d := float64(p.Len()); d > radius*(1+1e-5) {
				rt.Fatalf("particle %d at distance %v > radius %v", i, d, radius)
			}
			if !inPalette(buf.Colors[i3:i3+3], DefaultPalette) {
				rt.Fatalf("particle %d color %v not in palette", i, buf.Colors[i3:i3+3])
			}
			if s := buf.Sizes[i]; s < 0.05-1e-6 || s > 0.35+1e-6 {
				rt.Fatalf("particle %d size %v outside range", i, s)
			}
			if buf.Velocities[i3] != 0 || buf.Velocities[i3+1] != 0 || buf.Velocities[i3+2] != 0 {
				rt.Fatalf("particle %d has non-zero velocity", i)
			}
		}
	})
}

func inPalette(rgb []float32, palette []Color) bool {
	for _, c := range palette {
		if rgb[0] == float32(c.R) && rgb[1] == float32(c.G) && rgb[2] == float32(c.B) {
			return true
		}
	}
	return false
}

func TestInitAmbientFieldEmptyPalette(t *testing.T) {
	buf := InitAmbientField(testRNG(), 10, FieldShape{Radius: 1, Size: Range{Min: 0.1, Max: 0.1}}, nil)
	for i, c := range buf.Colors {
		if c != 1 {
			t.Fatalf("Colors[%d] = %v, want 1 (white)", i, c)
		}
	}
}

func TestInitAmbientFieldNegativeCount(t *testing.T) {
	buf := InitAmbientField(testRNG(), -5, FieldShape{Radius: 1}, DefaultPalette)
	if buf.Len() != 0 {
		t.Errorf("Len = %d, want 0", buf.Len())
	}
}

func TestSampleUnitSphereLength(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		v := SampleUnitSphere(rand.New(rand.NewPCG(seed, 7)))
		if l := v.Len(); math.Abs(float64(l)-1) > 1e-5 {
			rt.Fatalf("|v| = %v, want 1", l)
		}
	})
}

// The cosine of the polar angle of a uniform point on the sphere is uniform
// in [-1, 1]. Sampling phi uniformly instead would crowd the poles and put
// far fewer than 10% of samples in the equatorial buckets.
func TestSampleUnitSphereCosineUniform(t *testing.T) {
	const (
		samples = 100000
		buckets = 10
	)
	rng := testRNG()
	var counts [buckets]int
	for i := 0; i < samples; i++ {
		z := float64(SampleUnitSphere(rng)[2])
		b := int((z + 1) / 2 * buckets)
		if b == buckets {
			b = buckets - 1
		}
		counts[b]++
	}
	want := samples / buckets
	for i, c := range counts {
		if math.Abs(float64(c-want)) > 0.05*float64(want) {
			t.Errorf("bucket %d: %d samples, want %d ±5%%", i, c, want)
		}
	}
}

func TestInitExplosion(t *testing.T) {
	origin := mgl32.Vec3{1, -2, 0.5}
	speed := Range{Min: 0.05, Max: 0.15}
	pos, vel := InitExplosion(testRNG(), 64, origin, speed)
	if len(pos) != 64*3 || len(vel) != 64*3 {
		t.Fatalf("lengths %d/%d, want %d", len(pos), len(vel), 64*3)
	}
	for i := 0; i < 64; i++ {
		i3 := i * 3
		if pos[i3] != origin[0] || pos[i3+1] != origin[1] || pos[i3+2] != origin[2] {
			t.Fatalf("particle %d starts at %v, want origin", i, pos[i3:i3+3])
		}
		s := mgl32.Vec3{vel[i3], vel[i3+1], vel[i3+2]}.Len()
		if s < 0.05-1e-5 || s > 0.15+1e-5 {
			t.Fatalf("particle %d speed %v outside %v", i, s, speed)
		}
	}
}

func TestParticleBuffersRelease(t *testing.T) {
	buf := NewParticleBuffers(4)
	if buf.Released() {
		t.Fatal("fresh buffers reported released")
	}
	buf.Release()
	buf.Release()
	if !buf.Released() || buf.Len() != 0 {
		t.Errorf("after Release: released=%v len=%d", buf.Released(), buf.Len())
	}
}

func TestRecolorField(t *testing.T) {
	buf := InitAmbientField(testRNG(), 50, FieldShape{Radius: 1}, DefaultPalette)
	red := []Color{{R: 1, A: 1}}
	RecolorField(testRNG(), buf, red)
	for i := 0; i < buf.Len(); i++ {
		if !inPalette(buf.Colors[i*3:i*3+3], red) {
			t.Fatalf("particle %d not recolored", i)
		}
	}
	RecolorField(testRNG(), buf, nil) // no-op
	buf.Release()
	RecolorField(testRNG(), buf, red) // no-op on released buffers
}
