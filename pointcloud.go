package nebula

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// PointCloud is the renderable form of a particle set: positions plus either
// per-point or uniform color and size. The Scene draws every attached
// PointCloud each frame as soft additive points.
type PointCloud struct {
	Name string
	// Positions holds x,y,z triples in the cloud's local space.
	Positions []float32
	// Colors holds r,g,b triples. Nil uses Color for every point.
	Colors []float32
	// Sizes holds one size per point. Nil uses Size for every point.
	Sizes []float32
	Color Color
	Size  float32
	// Alpha multiplies the final point alpha.
	Alpha float32
	// Model transforms local positions into world space.
	Model     mgl32.Mat4
	BlendMode BlendMode
	Visible   bool

	needsUpdate bool
	disposed    bool

	// Cached quads from the last projection, reused across frames.
	verts   []ebiten.Vertex
	inds    []uint32
	lastMVP mgl32.Mat4
	lastW   float64
	lastH   float64
	valid   bool
}

// NewPointCloud creates a visible, additive PointCloud over positions.
func NewPointCloud(name string, positions []float32) *PointCloud {
	return &PointCloud{
		Name:        name,
		Positions:   positions,
		Color:       ColorWhite,
		Size:        0.1,
		Alpha:       1,
		Model:       mgl32.Ident4(),
		BlendMode:   BlendAdd,
		Visible:     true,
		needsUpdate: true,
	}
}

// Len returns the number of points.
func (pc *PointCloud) Len() int {
	return len(pc.Positions) / 3
}

// MarkNeedsUpdate flags the position data as changed so the cached quads
// are rebuilt on the next draw.
func (pc *PointCloud) MarkNeedsUpdate() {
	pc.needsUpdate = true
}

// NeedsUpdate reports whether the position data changed since the last draw.
func (pc *PointCloud) NeedsUpdate() bool {
	return pc.needsUpdate
}

// IsDisposed reports whether the cloud has been disposed.
func (pc *PointCloud) IsDisposed() bool {
	return pc.disposed
}

// dispose releases the cloud's buffers. Safe to call more than once.
func (pc *PointCloud) dispose() {
	if pc.disposed {
		return
	}
	pc.disposed = true
	pc.Visible = false
	pc.Positions = nil
	pc.Colors = nil
	pc.Sizes = nil
	pc.verts = nil
	pc.inds = nil
	pc.valid = false
}

// renderList is the ordered set of clouds drawn by a Scene.
type renderList struct {
	clouds []*PointCloud
}

func (l *renderList) add(pc *PointCloud) {
	l.clouds = append(l.clouds, pc)
}

// remove detaches pc. Returns false if pc was not attached.
func (l *renderList) remove(pc *PointCloud) bool {
	for i, c := range l.clouds {
		if c == pc {
			copy(l.clouds[i:], l.clouds[i+1:])
			l.clouds[len(l.clouds)-1] = nil
			l.clouds = l.clouds[:len(l.clouds)-1]
			return true
		}
	}
	return false
}

func (l *renderList) len() int {
	return len(l.clouds)
}

// clear disposes and detaches every cloud.
func (l *renderList) clear() {
	for i, c := range l.clouds {
		c.dispose()
		l.clouds[i] = nil
	}
	l.clouds = l.clouds[:0]
}
