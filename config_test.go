package nebula

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigTiers(t *testing.T) {
	desk := DefaultConfig(TierDesktop)
	mob := DefaultConfig(TierMobile)
	assert.Equal(t, 500, desk.Field.Count)
	assert.Equal(t, 200, mob.Field.Count)
	assert.Equal(t, IntRange{Min: 50, Max: 100}, desk.Explosion.Count)
	assert.Equal(t, IntRange{Min: 30, Max: 60}, mob.Explosion.Count)
	assert.Equal(t, 2.0, desk.Interaction.ImpulseRadius)
	assert.Equal(t, 0.08, desk.Interaction.ImpulseStrength)
}

func TestWithDefaultsFillsZeroSections(t *testing.T) {
	cfg := Config{Tier: TierMobile}.withDefaults()
	def := DefaultConfig(TierMobile)
	assert.Equal(t, def.Render.FieldOfView, cfg.Render.FieldOfView)
	assert.Equal(t, def.Render.Far, cfg.Render.Far)
	assert.Equal(t, def.Render.CameraZ, cfg.Render.CameraZ)
	assert.Equal(t, def.Render.PointScale, cfg.Render.PointScale)
	assert.Equal(t, def.Field.Count, cfg.Field.Count)
	assert.Equal(t, def.Field.Shape, cfg.Field.Shape)
	assert.Equal(t, def.Field.Motion, cfg.Field.Motion)
	assert.Equal(t, def.Explosion, cfg.Explosion)
	assert.Equal(t, def.Interaction, cfg.Interaction)
	assert.Equal(t, DefaultPalette, cfg.Field.Palette)
}

func TestWithDefaultsKeepsOverrides(t *testing.T) {
	var cfg Config
	cfg.Field.Count = 7
	cfg.Field.Motion.Drag = 0.5
	cfg.Render.FieldOfView = 50
	cfg.Interaction.ImpulseRadius = 3
	cfg = cfg.withDefaults()

	assert.Equal(t, 7, cfg.Field.Count)
	assert.Equal(t, 0.5, cfg.Field.Motion.Drag)
	assert.Equal(t, float32(50), cfg.Render.FieldOfView)
	assert.Equal(t, 3.0, cfg.Interaction.ImpulseRadius)
	// A partially filled section still gets a debounce window.
	assert.Equal(t, 100*time.Millisecond, cfg.Interaction.ResizeDebounce)
}

func TestWithDefaultsNegativeCount(t *testing.T) {
	var cfg Config
	cfg.Field.Count = -1
	assert.Equal(t, 0, cfg.withDefaults().Field.Count)
}

func TestWithDefaultsRejectsBadDrag(t *testing.T) {
	var cfg Config
	cfg.Field.Motion.Drag = 1.5
	assert.Equal(t, 0.95, cfg.withDefaults().Field.Motion.Drag)
}

func TestManualClock(t *testing.T) {
	start := time.Unix(100, 0)
	c := NewManualClock(start)
	assert.Equal(t, start, c.Now())
	c.Advance(time.Second)
	assert.Equal(t, start.Add(time.Second), c.Now())
}
