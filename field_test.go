package nebula

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func singleParticleField(pos, vel mgl32.Vec3, motion FieldMotion) *Field {
	buf := NewParticleBuffers(1)
	copy(buf.Positions, pos[:])
	copy(buf.Velocities, vel[:])
	return NewField(buf, motion, testRNG())
}

func fieldVelocity(f *Field) mgl32.Vec3 {
	v := f.Buffers().Velocities
	return mgl32.Vec3{v[0], v[1], v[2]}
}

func TestFieldDragFrameRateIndependent(t *testing.T) {
	motion := DefaultFieldMotion()
	motion.Amplitude = 0
	const dt = 1.0 / 60

	one := singleParticleField(mgl32.Vec3{}, mgl32.Vec3{1, -0.5, 0.25}, motion)
	two := singleParticleField(mgl32.Vec3{}, mgl32.Vec3{1, -0.5, 0.25}, motion)

	one.Advance(0, 2*dt)
	two.Advance(0, dt)
	two.Advance(dt, dt)

	a, b := fieldVelocity(one), fieldVelocity(two)
	if !a.ApproxEqualThreshold(b, 1e-6) {
		t.Errorf("one 2dt step: %v, two dt steps: %v", a, b)
	}
	want := float32(math.Pow(0.95, 2))
	if math.Abs(float64(a[0]-want)) > 1e-6 {
		t.Errorf("vx = %v, want %v", a[0], want)
	}
}

func TestFieldTimeScaleClamp(t *testing.T) {
	m := DefaultFieldMotion()
	tests := []struct {
		dt, want float64
	}{
		{1.0 / 60, 1},
		{0.05, 3},
		{1.0, 6}, // clamped to MaxDelta 0.1
		{-0.5, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := m.TimeScale(tt.dt); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("TimeScale(%v) = %v, want %v", tt.dt, got, tt.want)
		}
	}
}

func TestFieldAdvanceZeroDeltaIsNoop(t *testing.T) {
	f := singleParticleField(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0.1, 0, 0}, DefaultFieldMotion())
	f.Advance(10, 0)
	p := f.Buffers().Positions
	if p[0] != 1 || p[1] != 2 || p[2] != 3 {
		t.Errorf("positions moved on zero delta: %v", p)
	}
	if f.TakeDirty() {
		t.Error("zero delta marked the field dirty")
	}
}

func TestFieldDriftDeterministic(t *testing.T) {
	a := singleParticleField(mgl32.Vec3{0.3, -0.7, 1.1}, mgl32.Vec3{}, DefaultFieldMotion())
	b := singleParticleField(mgl32.Vec3{0.3, -0.7, 1.1}, mgl32.Vec3{}, DefaultFieldMotion())
	a.Advance(12.5, 1.0/60)
	b.Advance(12.5, 1.0/60)
	pa, pb := a.Buffers().Positions, b.Buffers().Positions
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("drift differs at %d: %v vs %v", i, pa[i], pb[i])
		}
	}

	want := 0.3 + math.Sin(12.5*1.0+(-0.7))*0.01
	if math.Abs(float64(pa[0])-want) > 1e-6 {
		t.Errorf("x = %v, want %v", pa[0], want)
	}
	if !a.TakeDirty() || a.TakeDirty() {
		t.Error("TakeDirty should report once after Advance")
	}
}

func TestApplyImpulseFalloff(t *testing.T) {
	const radius, strength = 2.0, 0.08
	tests := []struct {
		name string
		pos  mgl32.Vec3
		want float64
	}{
		{"boundary", mgl32.Vec3{2, 0, 0}, 0},
		{"outside", mgl32.Vec3{0, 3, 0}, 0},
		{"half", mgl32.Vec3{1, 0, 0}, 0.02},
		{"center", mgl32.Vec3{}, strength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := singleParticleField(tt.pos, mgl32.Vec3{}, DefaultFieldMotion())
			f.ApplyImpulse(mgl32.Vec3{}, radius, strength)
			got := float64(fieldVelocity(f).Len())
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("|v| = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyImpulseDirection(t *testing.T) {
	f := singleParticleField(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, DefaultFieldMotion())
	if n := f.ApplyImpulse(mgl32.Vec3{}, 2.0, 0.08); n != 1 {
		t.Fatalf("affected = %d, want 1", n)
	}
	v := fieldVelocity(f)
	if !v.ApproxEqualThreshold(mgl32.Vec3{0.02, 0, 0}, 1e-7) {
		t.Errorf("velocity = %v, want (0.02, 0, 0)", v)
	}
}

func TestApplyImpulseAccumulates(t *testing.T) {
	f := singleParticleField(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0.01, 0}, DefaultFieldMotion())
	f.ApplyImpulse(mgl32.Vec3{}, 2.0, 0.08)
	if v := fieldVelocity(f); math.Abs(float64(v[1])-0.03) > 1e-7 {
		t.Errorf("vy = %v, want 0.03", v[1])
	}
}

func TestFieldDispose(t *testing.T) {
	f := singleParticleField(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, DefaultFieldMotion())
	f.Dispose()
	f.Dispose()
	if f.Len() != 0 {
		t.Errorf("Len = %d after Dispose", f.Len())
	}
	f.Advance(1, 1.0/60)
	if n := f.ApplyImpulse(mgl32.Vec3{}, 2, 0.08); n != 0 {
		t.Errorf("ApplyImpulse on disposed field affected %d", n)
	}
}
