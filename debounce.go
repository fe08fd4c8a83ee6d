package nebula

import "time"

// debouncer coalesces bursts of size changes. Only the last size requested
// within delay of the previous request is applied, once the window elapses.
// It is polled from the tick so no timer goroutine outlives the Scene.
type debouncer struct {
	delay    time.Duration
	pending  bool
	deadline time.Time
	w, h     int
}

func (d *debouncer) trigger(now time.Time, w, h int) {
	d.pending = true
	d.deadline = now.Add(d.delay)
	d.w, d.h = w, h
}

// poll returns the pending size once the quiet period has elapsed.
func (d *debouncer) poll(now time.Time) (w, h int, ok bool) {
	if !d.pending || now.Before(d.deadline) {
		return 0, 0, false
	}
	d.pending = false
	return d.w, d.h, true
}

func (d *debouncer) cancel() {
	d.pending = false
}
