package nebula

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testRenderer() *pointRenderer {
	return &pointRenderer{pointScale: 300, pixelRatio: 1}
}

func TestBuildProjectsVisiblePoints(t *testing.T) {
	cam := NewCamera(DefaultRenderConfig(), 800.0/600)
	pc := NewPointCloud("t", []float32{
		0, 0, 0, // in front, center
		0, 0, 6, // behind the camera
		0, 0, -200, // beyond far
	})
	r := testRenderer()
	r.build(pc, cam, 800, 600)

	if len(pc.verts) != 4 || len(pc.inds) != 6 {
		t.Fatalf("verts/inds = %d/%d, want 4/6", len(pc.verts), len(pc.inds))
	}
	// size 0.1 * 300 / depth 5 = 6px wide, centered on (400, 300).
	v0, v3 := pc.verts[0], pc.verts[3]
	if !approxEqual(float64(v0.DstX), 397, 1e-3) || !approxEqual(float64(v0.DstY), 297, 1e-3) {
		t.Errorf("top-left = (%v, %v), want (397, 297)", v0.DstX, v0.DstY)
	}
	if !approxEqual(float64(v3.DstX), 403, 1e-3) || !approxEqual(float64(v3.DstY), 303, 1e-3) {
		t.Errorf("bottom-right = (%v, %v), want (403, 303)", v3.DstX, v3.DstY)
	}
	if v3.SrcX != dotSize || v3.SrcY != dotSize {
		t.Errorf("texture corner = (%v, %v), want (%d, %d)", v3.SrcX, v3.SrcY, dotSize, dotSize)
	}
}

func TestBuildPixelRatioScalesPoints(t *testing.T) {
	cam := NewCamera(DefaultRenderConfig(), 1)
	pc := NewPointCloud("t", []float32{0, 0, 0})
	r := testRenderer()
	r.pixelRatio = 2
	r.build(pc, cam, 400, 400)
	if w := pc.verts[1].DstX - pc.verts[0].DstX; !approxEqual(float64(w), 12, 1e-3) {
		t.Errorf("quad width = %v, want 12", w)
	}
}

func TestBuildPremultipliesColor(t *testing.T) {
	cam := NewCamera(DefaultRenderConfig(), 1)
	pc := NewPointCloud("t", []float32{0, 0, 0})
	pc.Colors = []float32{1, 0.5, 0}
	pc.Alpha = 0.5
	testRenderer().build(pc, cam, 100, 100)
	v := pc.verts[0]
	if v.ColorR != 0.5 || v.ColorG != 0.25 || v.ColorB != 0 || v.ColorA != 0.5 {
		t.Errorf("vertex color = (%v, %v, %v, %v), want (0.5, 0.25, 0, 0.5)", v.ColorR, v.ColorG, v.ColorB, v.ColorA)
	}
}

func TestBuildCachesUntilChanged(t *testing.T) {
	cam := NewCamera(DefaultRenderConfig(), 1)
	pc := NewPointCloud("t", []float32{0, 0, 0})
	r := testRenderer()
	r.build(pc, cam, 100, 100)
	if pc.NeedsUpdate() {
		t.Fatal("NeedsUpdate still set after build")
	}

	// Data changed without MarkNeedsUpdate: cached quads are reused.
	pc.Positions[0] = 1
	r.build(pc, cam, 100, 100)
	if !approxEqual(float64(pc.verts[0].DstX), 47, 1e-3) {
		t.Errorf("cache not reused: DstX = %v", pc.verts[0].DstX)
	}

	pc.MarkNeedsUpdate()
	r.build(pc, cam, 100, 100)
	if approxEqual(float64(pc.verts[0].DstX), 47, 1e-3) {
		t.Error("quads not rebuilt after MarkNeedsUpdate")
	}

	// A model change invalidates the cache on its own.
	prev := pc.verts[0].DstX
	pc.Model = mgl32.Translate3D(0.5, 0, 0)
	r.build(pc, cam, 100, 100)
	if pc.verts[0].DstX == prev {
		t.Error("quads not rebuilt after a model change")
	}
}

func TestBuildZeroAlphaEmitsNothing(t *testing.T) {
	cam := NewCamera(DefaultRenderConfig(), 1)
	pc := NewPointCloud("t", []float32{0, 0, 0})
	pc.Alpha = 0
	testRenderer().build(pc, cam, 100, 100)
	if len(pc.inds) != 0 {
		t.Errorf("inds = %d, want 0", len(pc.inds))
	}
}

func TestDotPixels(t *testing.T) {
	pix := dotPixels(dotSize)
	if len(pix) != dotSize*dotSize*4 {
		t.Fatalf("len = %d", len(pix))
	}
	center := ((dotSize/2)*dotSize + dotSize/2) * 4
	if pix[center+3] < 230 {
		t.Errorf("center alpha = %d, want near 255", pix[center+3])
	}
	if pix[3] != 0 {
		t.Errorf("corner alpha = %d, want 0", pix[3])
	}
	for i := 0; i < len(pix); i += 4 {
		if pix[i] > pix[i+3] {
			t.Fatalf("pixel %d not premultiplied", i/4)
		}
	}
}

func TestRenderListRemove(t *testing.T) {
	var l renderList
	a := NewPointCloud("a", nil)
	b := NewPointCloud("b", nil)
	l.add(a)
	l.add(b)
	if !l.remove(a) || l.remove(a) {
		t.Error("remove should succeed once")
	}
	if l.len() != 1 || l.clouds[0] != b {
		t.Errorf("clouds = %v", l.clouds)
	}
	l.clear()
	if l.len() != 0 || !b.IsDisposed() {
		t.Error("clear did not dispose and detach")
	}
}
