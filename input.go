package nebula

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

//go:generate go tool mockgen -destination=./mocks/input_mock.go -package=mocks . InputSource

// PointerSample is a pointer or touch position in surface pixels.
type PointerSample struct {
	X, Y float64
}

// FrameInput is the input observed during one tick. The Scene reuses a
// single FrameInput across ticks; sources only append to it.
type FrameInput struct {
	// Pointer is the most recent pointer or single-touch position.
	Pointer PointerSample
	// PointerMoved is set when Pointer changed this tick.
	PointerMoved bool
	// Clicks holds every pointer click or touch tap of this tick, in order.
	Clicks []PointerSample
}

// Move records a pointer position.
func (in *FrameInput) Move(x, y float64) {
	in.Pointer = PointerSample{X: x, Y: y}
	in.PointerMoved = true
}

// Click records a click at (x, y).
func (in *FrameInput) Click(x, y float64) {
	in.Clicks = append(in.Clicks, PointerSample{X: x, Y: y})
}

func (in *FrameInput) reset() {
	in.PointerMoved = false
	in.Clicks = in.Clicks[:0]
}

// InputSource feeds raw pointer and touch observations into a FrameInput.
// Poll is called once per tick from the loop goroutine.
type InputSource interface {
	Poll(in *FrameInput)
}

// ebitenInput reads the mouse and touch screen through Ebitengine.
// A touch that ends this tick counts as a click at its last position.
type ebitenInput struct {
	lastX, lastY int
	seen         bool
	touchIDs     []ebiten.TouchID
	releasedIDs  []ebiten.TouchID
}

// NewEbitenInput returns the InputSource used by default in a running game.
func NewEbitenInput() InputSource {
	return &ebitenInput{}
}

func (e *ebitenInput) Poll(in *FrameInput) {
	mx, my := ebiten.CursorPosition()
	if !e.seen || mx != e.lastX || my != e.lastY {
		e.seen = true
		e.lastX, e.lastY = mx, my
		in.Move(float64(mx), float64(my))
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		in.Click(float64(mx), float64(my))
	}

	e.touchIDs = ebiten.AppendTouchIDs(e.touchIDs[:0])
	if len(e.touchIDs) == 1 {
		tx, ty := ebiten.TouchPosition(e.touchIDs[0])
		in.Move(float64(tx), float64(ty))
	}

	e.releasedIDs = inpututil.AppendJustReleasedTouchIDs(e.releasedIDs[:0])
	for _, id := range e.releasedIDs {
		tx, ty := inpututil.TouchPositionInPreviousTick(id)
		in.Click(float64(tx), float64(ty))
	}
}
