package nebula

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera is a perspective camera looking down -Z from Position.
type Camera struct {
	// FieldOfView is the vertical field of view in degrees.
	FieldOfView float32
	// Aspect is width / height of the render surface.
	Aspect float32
	Near   float32
	Far    float32
	// Position is the camera location in world space.
	Position mgl32.Vec3

	projection  mgl32.Mat4
	view        mgl32.Mat4
	viewProj    mgl32.Mat4
	invViewProj mgl32.Mat4
	dirty       bool
	dollyTween  *gween.Tween
}

// NewCamera creates a Camera from render settings and an aspect ratio.
func NewCamera(cfg RenderConfig, aspect float32) *Camera {
	if aspect <= 0 {
		aspect = 1
	}
	return &Camera{
		FieldOfView: cfg.FieldOfView,
		Aspect:      aspect,
		Near:        cfg.Near,
		Far:         cfg.Far,
		Position:    mgl32.Vec3{0, 0, cfg.CameraZ},
		dirty:       true,
	}
}

// MarkDirty forces a recomputation of the cached matrices.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// UpdateProjectionMatrix recomputes the cached matrices. Call it after
// changing Aspect, FieldOfView, Near, Far or Position.
func (c *Camera) UpdateProjectionMatrix() {
	c.dirty = true
	c.compute()
}

// SetAspect updates the aspect ratio and recomputes the projection.
func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.Aspect = aspect
	c.UpdateProjectionMatrix()
}

// DollyTo animates the camera's Z position to z over duration seconds.
func (c *Camera) DollyTo(z float32, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.OutCubic
	}
	c.dollyTween = gween.New(c.Position[2], z, duration, easeFn)
}

// Dollying reports whether a DollyTo animation is in progress.
func (c *Camera) Dollying() bool {
	return c.dollyTween != nil
}

// update advances the dolly animation. Called once per tick by the Scene.
func (c *Camera) update(dt float32) {
	if c.dollyTween == nil {
		return
	}
	z, done := c.dollyTween.Update(dt)
	c.Position[2] = z
	c.dirty = true
	if done {
		c.dollyTween = nil
	}
}

// compute recomputes the cached matrices if dirty.
func (c *Camera) compute() {
	if !c.dirty {
		return
	}
	c.dirty = false
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.FieldOfView), c.Aspect, c.Near, c.Far)
	target := c.Position.Sub(mgl32.Vec3{0, 0, 1})
	c.view = mgl32.LookAtV(c.Position, target, mgl32.Vec3{0, 1, 0})
	c.viewProj = c.projection.Mul4(c.view)
	c.invViewProj = c.viewProj.Inv()
}

// ProjectionMatrix returns the cached projection matrix.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	c.compute()
	return c.projection
}

// ViewMatrix returns the cached world-to-camera matrix.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	c.compute()
	return c.view
}

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	c.compute()
	return c.viewProj
}

// InverseViewProjection returns the inverse of ViewProjection, used to
// unproject normalized device coordinates back into world space.
func (c *Camera) InverseViewProjection() mgl32.Mat4 {
	c.compute()
	return c.invViewProj
}

// WorldToScreen projects a world point into pixel coordinates of viewport.
// ok is false when the point is behind the camera or outside the depth range.
func (c *Camera) WorldToScreen(p mgl32.Vec3, viewport Rect) (sx, sy float64, ok bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return 0, 0, false
	}
	nx := float64(clip[0] / clip[3])
	ny := float64(clip[1] / clip[3])
	nz := float64(clip[2] / clip[3])
	if nz < -1 || nz > 1 {
		return 0, 0, false
	}
	sx = viewport.X + (nx+1)/2*viewport.Width
	sy = viewport.Y + (1-ny)/2*viewport.Height
	return sx, sy, true
}
