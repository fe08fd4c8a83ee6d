package nebula

type injectKind uint8

const (
	injectMove injectKind = iota
	injectClick
	injectResize
)

// syntheticEvent is a single injected input event. Pointer coordinates are
// surface pixels, identical to real input.
type syntheticEvent struct {
	kind injectKind
	x, y float64
	w, h int
}

// InjectMove queues a pointer move to (x, y). The event is consumed on the
// next tick in place of real input.
func (s *Scene) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: injectMove, x: x, y: y})
}

// InjectTouchMove queues a single-touch move. Touch and mouse moves drive
// the same pointer state.
func (s *Scene) InjectTouchMove(x, y float64) {
	s.InjectMove(x, y)
}

// InjectClick queues a click at (x, y). The pointer moves there in the same
// tick, as a real click is always preceded by a move.
func (s *Scene) InjectClick(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: injectClick, x: x, y: y})
}

// InjectResize queues a surface size change. It goes through the same
// debounce as window resizes.
func (s *Scene) InjectResize(w, h int) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{kind: injectResize, w: w, h: h})
}

// PendingInjections returns the number of queued synthetic events.
func (s *Scene) PendingInjections() int {
	return len(s.injectQueue)
}

// processInjectedInput pops one event from the inject queue into in.
// Returns true if an event was consumed (real input should be skipped).
func (s *Scene) processInjectedInput(in *FrameInput) bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	switch evt.kind {
	case injectMove:
		in.Move(evt.x, evt.y)
	case injectClick:
		in.Move(evt.x, evt.y)
		in.Click(evt.x, evt.y)
	case injectResize:
		s.requestResize(evt.w, evt.h)
	}
	return true
}
