package nebula

import (
	"math"
	"testing"
)

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "resize", "width": 800, "height": 600},
			{"action": "click", "x": 100, "y": 200},
			{"action": "wait", "frames": 3},
			{"action": "screenshot", "label": "after-click"}
		]
	}`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[0].Action != "resize" || runner.steps[0].Width != 800 || runner.steps[0].Height != 600 {
		t.Error("step 0 mismatch")
	}
	if runner.steps[1].Action != "click" || runner.steps[1].X != 100 || runner.steps[1].Y != 200 {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "wait" || runner.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
	if runner.steps[3].Label != "after-click" {
		t.Error("step 3 mismatch")
	}
}

func TestLoadTestScript_Invalid(t *testing.T) {
	_, err := LoadTestScript([]byte(`not json`))
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadTestScript_Empty(t *testing.T) {
	_, err := LoadTestScript([]byte(`{"steps": []}`))
	if err == nil {
		t.Error("expected error for empty steps")
	}
}

func TestLoadTestScript_UnknownAction(t *testing.T) {
	_, err := LoadTestScript([]byte(`{"steps": [{"action": "drag"}]}`))
	if err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestRunnerStep_Click(t *testing.T) {
	s, _ := newTestScene(t, nil)
	s.Layout(800, 600)

	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "click", "x": 400, "y": 300}]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetTestRunner(runner)

	// The click is queued and consumed in the same tick.
	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	if s.EffectCount() != 1 {
		t.Fatalf("EffectCount = %d, want 1", s.EffectCount())
	}
	if runner.Done() {
		t.Error("runner finished in the tick that queued its last injection")
	}

	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	if !runner.Done() {
		t.Error("runner should be done after the queue drained")
	}
}

func TestRunnerStep_Wait(t *testing.T) {
	s, _ := newTestScene(t, nil)

	data := []byte(`{"steps": [
		{"action": "wait", "frames": 3},
		{"action": "screenshot", "label": "done"}
	]}`)
	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatal(err)
	}

	// Frame 1 executes the wait; frames 2 and 3 count it down.
	for i := 0; i < 3; i++ {
		runner.step(s)
		if runner.Done() {
			t.Fatalf("done during wait at frame %d", i+1)
		}
	}

	runner.step(s)
	if !runner.Done() {
		t.Error("runner should be done after screenshot step")
	}
	if len(s.screenshotQueue) != 1 || s.screenshotQueue[0] != "done" {
		t.Errorf("expected screenshot 'done', got %v", s.screenshotQueue)
	}
}

func TestRunnerStep_Sweep(t *testing.T) {
	s, _ := newTestScene(t, nil)

	data := []byte(`{"steps": [{"action": "sweep", "fromX": 0, "fromY": 0, "toX": 300, "toY": 30, "frames": 4}]}`)
	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatal(err)
	}

	runner.step(s)
	if len(s.injectQueue) != 4 {
		t.Fatalf("expected 4 queued moves for sweep, got %d", len(s.injectQueue))
	}
	want := []float64{0, 100, 200, 300}
	for i, ev := range s.injectQueue {
		if ev.kind != injectMove || math.Abs(ev.x-want[i]) > 1e-9 || math.Abs(ev.y-want[i]/10) > 1e-9 {
			t.Errorf("move %d = %+v", i, ev)
		}
	}
}

func TestRunnerStep_SweepMinFrames(t *testing.T) {
	s, _ := newTestScene(t, nil)
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "sweep", "toX": 10, "frames": 1}]}`))
	if err != nil {
		t.Fatal(err)
	}
	runner.step(s)
	if len(s.injectQueue) != 2 {
		t.Fatalf("expected 2 queued moves, got %d", len(s.injectQueue))
	}
}

func TestRunnerStep_Resize(t *testing.T) {
	s, _ := newTestScene(t, nil)
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "resize", "width": 640, "height": 480}]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.SetTestRunner(runner)
	if err := s.Update(); err != nil {
		t.Fatal(err)
	}
	// First size: applied without waiting for the debounce.
	if got := s.Surface(); got.Width != 640 || got.Height != 480 {
		t.Errorf("surface = %+v, want 640x480", got)
	}
}

func TestRunnerDone(t *testing.T) {
	s, _ := newTestScene(t, nil)

	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "screenshot", "label": "only"}]}`))
	if err != nil {
		t.Fatal(err)
	}

	if runner.Done() {
		t.Error("runner should not be done before any steps")
	}

	runner.step(s)
	if !runner.Done() {
		t.Error("runner should be done after single screenshot step")
	}
}

func TestRunnerWaitsForInjectQueue(t *testing.T) {
	s, _ := newTestScene(t, nil)

	data := []byte(`{"steps": [
		{"action": "move", "x": 50, "y": 50},
		{"action": "screenshot", "label": "after"}
	]}`)
	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatal(err)
	}

	runner.step(s)
	if len(s.injectQueue) != 1 {
		t.Fatalf("expected 1 event, got %d", len(s.injectQueue))
	}

	// Does not advance while the queue holds events.
	runner.step(s)
	if runner.cursor != 1 {
		t.Errorf("cursor should still be 1, got %d", runner.cursor)
	}

	s.injectQueue = s.injectQueue[:0]

	runner.step(s)
	if len(s.screenshotQueue) != 1 || s.screenshotQueue[0] != "after" {
		t.Errorf("expected screenshot 'after', got %v", s.screenshotQueue)
	}
	if !runner.Done() {
		t.Error("runner should be done")
	}
}
