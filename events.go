package nebula

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// PointerContext carries a pointer or single-touch move.
type PointerContext struct {
	X, Y float64
}

// SpawnContext describes an explosion spawned by a click.
type SpawnContext struct {
	// ScreenX and ScreenY are the click position in surface pixels.
	ScreenX, ScreenY float64
	// World is the click projected onto the z=0 plane.
	World     mgl32.Vec3
	Explosion *Explosion
	// Pushed is the number of ambient particles the impulse reached.
	Pushed int
}

// ExpireContext describes an effect leaving the scene. Err is non-nil when
// the effect was dropped because it panicked.
type ExpireContext struct {
	Effect Effect
	Err    error
}

// ResizeContext carries the surface applied by a debounced resize.
type ResizeContext struct {
	Surface Surface
}

// FieldEvent is the flattened form of a scene event, forwarded to an
// optional EventStore.
type FieldEvent struct {
	Type    EventType
	ScreenX float64
	ScreenY float64
	World   mgl32.Vec3
	// Count is the explosion size for EventSpawn and the number of pushed
	// ambient particles for EventClick.
	Count  int
	Color  Color
	Width  float64
	Height float64
}

// EventStore receives every scene event. The ecs module provides a
// Donburi-backed implementation.
type EventStore interface {
	EmitEvent(event FieldEvent)
}

type handler[T any] struct {
	id uint32
	fn func(T)
}

func removeHandler[T any](s []handler[T], id uint32) []handler[T] {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = handler[T]{}
			return s[:len(s)-1]
		}
	}
	return s
}

// fire calls every handler in registration order. A panicking handler is
// logged and skipped; the remaining handlers still run.
func fire[T any](log *zap.Logger, event EventType, s []handler[T], ctx T) {
	for _, h := range s {
		callHandler(log, event, h.fn, ctx)
	}
}

func callHandler[T any](log *zap.Logger, event EventType, fn func(T), ctx T) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("listener panicked", zap.Stringer("event", event), zap.Any("panic", r))
		}
	}()
	fn(ctx)
}

type handlerRegistry struct {
	pointerMove []handler[PointerContext]
	click       []handler[PointerContext]
	spawn       []handler[SpawnContext]
	expire      []handler[ExpireContext]
	resize      []handler[ResizeContext]
	nextID      uint32
}

func (r *handlerRegistry) count() int {
	return len(r.pointerMove) + len(r.click) + len(r.spawn) + len(r.expire) + len(r.resize)
}

func (r *handlerRegistry) clear() {
	clear(r.pointerMove)
	clear(r.click)
	clear(r.spawn)
	clear(r.expire)
	clear(r.resize)
	r.pointerMove = nil
	r.click = nil
	r.spawn = nil
	r.expire = nil
	r.resize = nil
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires. Removing twice,
// or after the scene was disposed, is a no-op.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventPointerMove:
		h.reg.pointerMove = removeHandler(h.reg.pointerMove, h.id)
	case EventClick:
		h.reg.click = removeHandler(h.reg.click, h.id)
	case EventSpawn:
		h.reg.spawn = removeHandler(h.reg.spawn, h.id)
	case EventExpire:
		h.reg.expire = removeHandler(h.reg.expire, h.id)
	case EventResize:
		h.reg.resize = removeHandler(h.reg.resize, h.id)
	}
}

// --- Scene-level event registration ---
//
// Callbacks run on the loop goroutine during Update. Register them before
// Run or from inside another callback.

// OnPointerMove registers a callback for pointer and single-touch moves.
func (s *Scene) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerMove = append(s.handlers.pointerMove, handler[PointerContext]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerMove}
}

// OnClick registers a callback for clicks and touch taps. It fires before
// the explosion is spawned, including for clicks that cannot be projected.
func (s *Scene) OnClick(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.click = append(s.handlers.click, handler[PointerContext]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventClick}
}

// OnSpawn registers a callback for spawned explosions.
func (s *Scene) OnSpawn(fn func(SpawnContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.spawn = append(s.handlers.spawn, handler[SpawnContext]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventSpawn}
}

// OnExpire registers a callback for effects leaving the scene.
func (s *Scene) OnExpire(fn func(ExpireContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.expire = append(s.handlers.expire, handler[ExpireContext]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventExpire}
}

// OnResize registers a callback for debounced surface changes.
func (s *Scene) OnResize(fn func(ResizeContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.resize = append(s.handlers.resize, handler[ResizeContext]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventResize}
}

// ListenerCount returns the number of registered callbacks across all events.
func (s *Scene) ListenerCount() int {
	return s.handlers.count()
}

func (s *Scene) emit(ev FieldEvent) {
	if s.store == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("event store panicked", zap.Stringer("event", ev.Type), zap.Any("panic", r))
		}
	}()
	s.store.EmitEvent(ev)
}
