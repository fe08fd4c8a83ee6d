package nebula

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MouseToWorld converts a pointer position inside surface into the world
// point where the camera ray through it crosses the z=0 plane.
//
// ok is false when the surface is empty, the ray runs parallel to the plane,
// or the result is not finite. Callers skip the spawn in that case.
func MouseToWorld(px, py float64, surface Rect, cam *Camera) (p mgl32.Vec3, ok bool) {
	if cam == nil || surface.Empty() {
		return mgl32.Vec3{}, false
	}
	nx := (px-surface.X)/surface.Width*2 - 1
	ny := -((py-surface.Y)/surface.Height)*2 + 1
	if !finite(nx) || !finite(ny) {
		return mgl32.Vec3{}, false
	}

	v := cam.InverseViewProjection().Mul4x1(mgl32.Vec4{float32(nx), float32(ny), 0.5, 1})
	if v[3] == 0 {
		return mgl32.Vec3{}, false
	}
	point := v.Vec3().Mul(1 / v[3])
	dir := point.Sub(cam.Position)
	if dir.Len() == 0 {
		return mgl32.Vec3{}, false
	}
	return intersectZPlane(cam.Position, dir.Normalize())
}

// intersectZPlane returns origin + dir*t where the ray meets z=0.
func intersectZPlane(origin, dir mgl32.Vec3) (mgl32.Vec3, bool) {
	if dir[2] == 0 {
		return mgl32.Vec3{}, false
	}
	distance := -origin[2] / dir[2]
	p := origin.Add(dir.Mul(distance))
	if !finiteVec(p) {
		return mgl32.Vec3{}, false
	}
	return p, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(v mgl32.Vec3) bool {
	return finite(float64(v[0])) && finite(float64(v[1])) && finite(float64(v[2]))
}
