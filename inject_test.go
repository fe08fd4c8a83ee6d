package nebula

import "testing"

func TestInjectQueueOrder(t *testing.T) {
	s, _ := newTestScene(t, nil)
	s.InjectMove(1, 2)
	s.InjectClick(3, 4)
	s.InjectResize(640, 480)

	if s.PendingInjections() != 3 {
		t.Fatalf("PendingInjections = %d, want 3", s.PendingInjections())
	}
	kinds := []injectKind{injectMove, injectClick, injectResize}
	for i, k := range kinds {
		if s.injectQueue[i].kind != k {
			t.Errorf("event %d kind = %d, want %d", i, s.injectQueue[i].kind, k)
		}
	}
}

func TestProcessInjectedInput(t *testing.T) {
	s, _ := newTestScene(t, nil)
	s.InjectClick(30, 40)

	var in FrameInput
	if !s.processInjectedInput(&in) {
		t.Fatal("expected an event to be consumed")
	}
	if !in.PointerMoved || in.Pointer != (PointerSample{X: 30, Y: 40}) {
		t.Errorf("pointer = %+v moved=%v, want (30, 40) moved", in.Pointer, in.PointerMoved)
	}
	if len(in.Clicks) != 1 || in.Clicks[0] != (PointerSample{X: 30, Y: 40}) {
		t.Errorf("clicks = %v, want [(30, 40)]", in.Clicks)
	}
	if s.PendingInjections() != 0 {
		t.Errorf("PendingInjections = %d, want 0", s.PendingInjections())
	}
}

func TestProcessInjectedInput_EmptyQueue(t *testing.T) {
	s, _ := newTestScene(t, nil)
	var in FrameInput
	if s.processInjectedInput(&in) {
		t.Error("empty queue should not report a consumed event")
	}
	if in.PointerMoved || len(in.Clicks) != 0 {
		t.Error("FrameInput should be untouched")
	}
}

func TestInjectResizeDebounces(t *testing.T) {
	s, clock := newTestScene(t, nil)
	s.InjectResize(800, 600)
	s.InjectResize(1024, 768)

	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	if s.Surface().Width != 800 {
		t.Fatalf("first size not applied: %+v", s.Surface())
	}
	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	if s.Surface().Width != 800 {
		t.Errorf("second size applied before debounce: %+v", s.Surface())
	}
	clock.Advance(s.Config().Interaction.ResizeDebounce)
	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	if s.Surface().Width != 1024 {
		t.Errorf("surface = %+v, want 1024 wide", s.Surface())
	}
}

func TestInjectResizeIgnoresEmpty(t *testing.T) {
	s, _ := newTestScene(t, nil)
	s.InjectResize(0, 600)
	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	if s.Surface().Width != 0 {
		t.Errorf("empty size applied: %+v", s.Surface())
	}
}
