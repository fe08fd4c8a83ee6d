package nebula

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// dotSize is the edge length of the soft point texture in pixels.
const dotSize = 32

// pointRenderer projects PointClouds through a camera and submits them as
// textured quads, one DrawTriangles32 call per cloud.
type pointRenderer struct {
	dot        *ebiten.Image
	pointScale float64
	pixelRatio float64
	antialias  bool
}

// ensureDot lazily creates the radial falloff texture. Alpha fades linearly
// from 1 at the center to 0 at the edge of the inscribed circle.
func (r *pointRenderer) ensureDot() *ebiten.Image {
	if r.dot != nil {
		return r.dot
	}
	r.dot = ebiten.NewImage(dotSize, dotSize)
	r.dot.WritePixels(dotPixels(dotSize))
	return r.dot
}

// dotPixels returns premultiplied RGBA pixels for a white soft dot.
func dotPixels(size int) []byte {
	pix := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			u := (float64(x)+0.5)/float64(size) - 0.5
			v := (float64(y)+0.5)/float64(size) - 0.5
			dist := math.Hypot(u, v)
			a := 1 - dist*2
			if a < 0 {
				a = 0
			}
			b := uint8(a * 255)
			i := (y*size + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = b, b, b, b
		}
	}
	return pix
}

// release frees the GPU texture. Safe to call more than once.
func (r *pointRenderer) release() {
	if r.dot != nil {
		r.dot.Deallocate()
		r.dot = nil
	}
}

// draw renders pc onto target. Invisible, disposed and empty clouds are skipped.
func (r *pointRenderer) draw(target *ebiten.Image, pc *PointCloud, cam *Camera) int {
	if pc == nil || pc.disposed || !pc.Visible || pc.Len() == 0 {
		return 0
	}
	b := target.Bounds()
	r.build(pc, cam, float64(b.Dx()), float64(b.Dy()))
	if len(pc.inds) == 0 {
		return 0
	}
	var op ebiten.DrawTrianglesOptions
	op.Blend = pc.BlendMode.EbitenBlend()
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	op.AntiAlias = r.antialias
	target.DrawTriangles32(pc.verts, pc.inds, r.ensureDot(), &op)
	return len(pc.inds) / 6
}

// build projects every point of pc into pc.verts/pc.inds. The previous
// frame's quads are kept when neither the data nor the transform changed.
func (r *pointRenderer) build(pc *PointCloud, cam *Camera, w, h float64) {
	mvp := cam.ViewProjection().Mul4(pc.Model)
	if pc.valid && !pc.needsUpdate && pc.lastMVP == mvp && pc.lastW == w && pc.lastH == h {
		return
	}
	pc.needsUpdate = false
	pc.lastMVP = mvp
	pc.lastW, pc.lastH = w, h
	pc.valid = true

	mv := cam.ViewMatrix().Mul4(pc.Model)
	proj := cam.ProjectionMatrix()
	near := cam.Near

	pc.verts = pc.verts[:0]
	pc.inds = pc.inds[:0]

	alpha := pc.Alpha * float32(pc.Color.A)
	if alpha <= 0 {
		return
	}
	n := pc.Len()
	for i := 0; i < n; i++ {
		i3 := i * 3
		eye := mv.Mul4x1(mgl32.Vec4{pc.Positions[i3], pc.Positions[i3+1], pc.Positions[i3+2], 1})
		depth := -eye[2]
		if depth <= near {
			continue
		}
		clip := proj.Mul4x1(eye)
		nz := clip[2] / clip[3]
		if nz < -1 || nz > 1 {
			continue
		}
		sx := (float64(clip[0]/clip[3]) + 1) / 2 * w
		sy := (1 - float64(clip[1]/clip[3])) / 2 * h

		size := pc.Size
		if pc.Sizes != nil {
			size = pc.Sizes[i]
		}
		half := float64(size) * r.pointScale / float64(depth) * r.pixelRatio / 2
		if half <= 0 || sx+half < 0 || sy+half < 0 || sx-half > w || sy-half > h {
			continue
		}

		cr, cg, cb := float32(pc.Color.R), float32(pc.Color.G), float32(pc.Color.B)
		if pc.Colors != nil {
			cr, cg, cb = pc.Colors[i3], pc.Colors[i3+1], pc.Colors[i3+2]
		}
		cr, cg, cb = cr*alpha, cg*alpha, cb*alpha

		x0, y0 := float32(sx-half), float32(sy-half)
		x1, y1 := float32(sx+half), float32(sy+half)
		base := uint32(len(pc.verts))
		pc.verts = append(pc.verts,
			ebiten.Vertex{DstX: x0, DstY: y0, SrcX: 0, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: alpha},
			ebiten.Vertex{DstX: x1, DstY: y0, SrcX: dotSize, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: alpha},
			ebiten.Vertex{DstX: x0, DstY: y1, SrcX: 0, SrcY: dotSize, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: alpha},
			ebiten.Vertex{DstX: x1, DstY: y1, SrcX: dotSize, SrcY: dotSize, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: alpha},
		)
		pc.inds = append(pc.inds,
			base+0, base+1, base+2,
			base+1, base+3, base+2,
		)
	}
}
