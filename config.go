package nebula

import "time"

// PowerPreference hints how aggressively the host should drive the GPU.
type PowerPreference string

const (
	PowerHighPerformance PowerPreference = "high-performance"
	PowerLowPower        PowerPreference = "low-power"
	PowerDefault         PowerPreference = "default"
)

// RenderConfig describes the render surface and perspective camera.
type RenderConfig struct {
	// FieldOfView is the vertical field of view in degrees.
	FieldOfView float32
	Near        float32
	Far         float32
	// CameraZ is the camera distance from the field center along +Z.
	CameraZ float32
	// BackgroundColor fills the surface each frame. Nil leaves it transparent.
	BackgroundColor *Color
	Antialias       bool
	// PixelRatio scales the surface resolution. Zero means
	// min(device scale factor, 2), resolved on the first Layout.
	PixelRatio      float64
	PowerPreference PowerPreference
	// PointScale converts a particle size into pixels at unit view depth.
	PointScale float64
}

// FieldShape controls where ambient particles are placed and how big they are.
type FieldShape struct {
	Radius float64
	Size   Range
}

// FieldMotion controls how the ambient field moves each frame.
type FieldMotion struct {
	// Amplitude scales the oscillatory drift, in world units per reference frame.
	Amplitude float64
	// Frequency is the per-axis angular frequency of the drift.
	Frequency [3]float64
	// Drag is the fraction of impulse velocity kept per reference frame.
	Drag float64
	// MaxDelta caps a single step, in seconds.
	MaxDelta float64
	// ReferenceFPS is the frame rate at which timeScale equals 1.
	ReferenceFPS float64
}

// FieldConfig configures the ambient field.
type FieldConfig struct {
	// Count is the number of ambient particles. Zero selects the device-tier
	// default; a negative count disables the ambient field.
	Count   int
	Shape   FieldShape
	Motion  FieldMotion
	Palette []Color
}

// ExplosionConfig configures explosions spawned on click.
type ExplosionConfig struct {
	Count     IntRange
	Decay     Range
	Speed     Range
	Gravity   float64
	Drag      float64
	SizeStart float64
	SizeEnd   float64
}

// InteractionConfig configures pointer response and resize handling.
type InteractionConfig struct {
	ImpulseRadius   float64
	ImpulseStrength float64
	// Easing is the per-tick fraction of the distance to the pointer-derived
	// rotation target covered by the field rotation.
	Easing float64
	// PointerScale converts pointer offset from the surface center into radians.
	PointerScale float64
	// AutoRotate is the Y rotation added per reference frame.
	AutoRotate     float64
	ResizeDebounce time.Duration
}

// Config aggregates every tunable of a Scene.
type Config struct {
	Render      RenderConfig
	Field       FieldConfig
	Explosion   ExplosionConfig
	Interaction InteractionConfig
	Tier        DeviceTier
	// Seed seeds the scene's random source. Zero picks a random seed.
	Seed uint64
	// Debug enables per-frame debug logging.
	Debug bool
	// ShowStats draws the FPS and particle counter overlay.
	ShowStats bool
}

// DefaultPalette is the palette used when FieldConfig.Palette is empty.
var DefaultPalette = []Color{
	{R: 0x63 / 255.0, G: 0x66 / 255.0, B: 0xF1 / 255.0, A: 1},
	{R: 0x8B / 255.0, G: 0x5C / 255.0, B: 0xF6 / 255.0, A: 1},
	{R: 0xEC / 255.0, G: 0x48 / 255.0, B: 0x99 / 255.0, A: 1},
	{R: 0x3B / 255.0, G: 0x82 / 255.0, B: 0xF6 / 255.0, A: 1},
}

// DefaultRenderConfig returns the render defaults.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		FieldOfView:     75,
		Near:            0.1,
		Far:             100,
		CameraZ:         5,
		Antialias:       true,
		PowerPreference: PowerHighPerformance,
		PointScale:      300,
	}
}

// DefaultFieldMotion returns the ambient motion defaults.
func DefaultFieldMotion() FieldMotion {
	return FieldMotion{
		Amplitude:    0.01,
		Frequency:    [3]float64{1.0, 0.8, 1.2},
		Drag:         0.95,
		MaxDelta:     0.1,
		ReferenceFPS: 60,
	}
}

// DefaultConfig returns a Config for the given device tier.
func DefaultConfig(tier DeviceTier) Config {
	cfg := Config{
		Render: DefaultRenderConfig(),
		Field: FieldConfig{
			Shape:  FieldShape{Radius: 5, Size: Range{Min: 0.05, Max: 0.35}},
			Motion: DefaultFieldMotion(),
		},
		Explosion: ExplosionConfig{
			Count:     IntRange{Min: 50, Max: 100},
			Decay:     Range{Min: 0.015, Max: 0.03},
			Speed:     Range{Min: 0.05, Max: 0.15},
			Gravity:   0.001,
			Drag:      0.98,
			SizeStart: 0.12,
			SizeEnd:   0.04,
		},
		Interaction: InteractionConfig{
			ImpulseRadius:   2.0,
			ImpulseStrength: 0.08,
			Easing:          0.05,
			PointerScale:    0.001,
			AutoRotate:      0.0005,
			ResizeDebounce:  100 * time.Millisecond,
		},
		Tier: tier,
	}
	cfg.Field.Count = tier.AmbientCount()
	if tier == TierMobile {
		cfg.Explosion.Count = IntRange{Min: 30, Max: 60}
	}
	return cfg
}

// withDefaults fills zero-valued fields with the tier defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig(c.Tier)
	r := &c.Render
	if r.FieldOfView <= 0 {
		r.FieldOfView = def.Render.FieldOfView
	}
	if r.Near <= 0 {
		r.Near = def.Render.Near
	}
	if r.Far <= r.Near {
		r.Far = def.Render.Far
	}
	if r.CameraZ == 0 {
		r.CameraZ = def.Render.CameraZ
	}
	if r.PowerPreference == "" {
		r.PowerPreference = def.Render.PowerPreference
	}
	if r.PointScale <= 0 {
		r.PointScale = def.Render.PointScale
	}
	switch {
	case c.Field.Count == 0:
		c.Field.Count = def.Field.Count
	case c.Field.Count < 0:
		c.Field.Count = 0
	}
	if c.Field.Shape.Radius <= 0 {
		c.Field.Shape = def.Field.Shape
	}
	if c.Field.Motion == (FieldMotion{}) {
		c.Field.Motion = def.Field.Motion
	}
	m := &c.Field.Motion
	if m.ReferenceFPS <= 0 {
		m.ReferenceFPS = def.Field.Motion.ReferenceFPS
	}
	if m.MaxDelta <= 0 {
		m.MaxDelta = def.Field.Motion.MaxDelta
	}
	if m.Drag <= 0 || m.Drag > 1 {
		m.Drag = def.Field.Motion.Drag
	}
	if m.Frequency == ([3]float64{}) {
		m.Frequency = def.Field.Motion.Frequency
	}
	if len(c.Field.Palette) == 0 {
		c.Field.Palette = DefaultPalette
	}
	if c.Explosion.Count.Max <= 0 {
		c.Explosion = def.Explosion
	}
	if c.Interaction.ImpulseRadius <= 0 {
		c.Interaction = def.Interaction
	}
	if c.Interaction.ResizeDebounce <= 0 {
		c.Interaction.ResizeDebounce = def.Interaction.ResizeDebounce
	}
	return c
}
