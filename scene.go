package nebula

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// ErrSceneDisposed is returned by operations attempted on a disposed Scene.
var ErrSceneDisposed = errors.New("nebula: scene disposed")

// tuningBuffer is the capacity of the tuning hand-off channel.
const tuningBuffer = 8

// Surface is the applied render surface size in layout pixels.
type Surface struct {
	Width, Height         float64
	HalfWidth, HalfHeight float64
}

func newSurface(w, h int) Surface {
	return Surface{
		Width:      float64(w),
		Height:     float64(h),
		HalfWidth:  float64(w) / 2,
		HalfHeight: float64(h) / 2,
	}
}

// Rect returns the surface as a rectangle at the origin.
func (s Surface) Rect() Rect {
	return Rect{Width: s.Width, Height: s.Height}
}

// Scene owns the ambient field, the live effects, the camera and the render
// resources. It implements ebiten.Game; Update is the simulation tick.
//
// All state is mutated on the loop goroutine. Dispose and SubmitTuning are
// the only methods safe to call from other goroutines.
type Scene struct {
	cfg    Config
	log    *zap.Logger
	clock  Clock
	input  InputSource
	stats  StatsSink
	store  EventStore
	runner *TestRunner
	rng    *rand.Rand
	debug  bool

	camera     *Camera
	field      *Field
	fieldCloud *PointCloud
	effects    []Effect
	clouds     renderList
	renderer   pointRenderer
	overlay    statsOverlay
	handlers   handlerRegistry

	frame       FrameInput
	pointer     PointerSample
	injectQueue []syntheticEvent

	resize   debouncer
	surface  Surface
	sized    bool
	requestW int
	requestH int

	rotX, rotY float64

	started    bool
	start      time.Time
	last       time.Time
	elapsed    float64
	frameCount uint64
	cur        FrameStats

	tuning chan Tuning

	// ScreenshotDir is the directory where screenshot PNGs are written.
	ScreenshotDir   string
	screenshotQueue []string

	mu       sync.Mutex
	disposed atomic.Bool
	released bool
}

// NewScene builds a Scene from cfg. Zero-valued config sections fall back to
// the defaults of cfg.Tier.
func NewScene(cfg Config) *Scene {
	cfg = cfg.withDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	buf := InitAmbientField(rng, cfg.Field.Count, cfg.Field.Shape, cfg.Field.Palette)
	s := &Scene{
		cfg:           cfg,
		log:           zap.NewNop(),
		clock:         systemClock{},
		input:         NewEbitenInput(),
		rng:           rng,
		debug:         cfg.Debug,
		camera:        NewCamera(cfg.Render, 1),
		field:         NewField(buf, cfg.Field.Motion, rng),
		resize:        debouncer{delay: cfg.Interaction.ResizeDebounce},
		tuning:        make(chan Tuning, tuningBuffer),
		ScreenshotDir: "screenshots",
		renderer: pointRenderer{
			pointScale: cfg.Render.PointScale,
			pixelRatio: 1,
			antialias:  cfg.Render.Antialias,
		},
	}
	s.fieldCloud = NewPointCloud("field", buf.Positions)
	s.fieldCloud.Colors = buf.Colors
	s.fieldCloud.Sizes = buf.Sizes
	s.clouds.add(s.fieldCloud)
	return s
}

// Config returns the active configuration, including applied tuning.
func (s *Scene) Config() Config {
	return s.cfg
}

// SetLogger replaces the scene logger. Nil restores the no-op logger.
func (s *Scene) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	s.log = l
}

// SetClock replaces the time source. Nil restores the system clock.
func (s *Scene) SetClock(c Clock) {
	if c == nil {
		c = systemClock{}
	}
	s.clock = c
}

// SetInputSource replaces the input source. Nil disables real input; only
// injected events are processed.
func (s *Scene) SetInputSource(src InputSource) {
	s.input = src
}

// SetStatsSink sets the optional per-tick stats receiver.
func (s *Scene) SetStatsSink(sink StatsSink) {
	s.stats = sink
}

// SetEventStore sets the optional event bridge.
func (s *Scene) SetEventStore(store EventStore) {
	s.store = store
}

// SetDebugMode enables or disables per-tick debug logging.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// SetStatsOverlay toggles the on-screen stats overlay.
func (s *Scene) SetStatsOverlay(enabled bool) {
	s.cfg.ShowStats = enabled
}

// Camera returns the scene camera.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// Field returns the ambient field.
func (s *Scene) Field() *Field {
	return s.field
}

// Effects returns a snapshot of the live effects in spawn order.
func (s *Scene) Effects() []Effect {
	return slices.Clone(s.effects)
}

// EffectCount returns the number of live effects.
func (s *Scene) EffectCount() int {
	return len(s.effects)
}

// Surface returns the applied surface size.
func (s *Scene) Surface() Surface {
	return s.surface
}

// Rotation returns the field rotation around X and Y in radians.
func (s *Scene) Rotation() (x, y float64) {
	return s.rotX, s.rotY
}

// Elapsed returns the seconds since the first tick.
func (s *Scene) Elapsed() float64 {
	return s.elapsed
}

// Frame returns the number of completed ticks.
func (s *Scene) Frame() uint64 {
	return s.frameCount
}

// IsDisposed reports whether Dispose has been called.
func (s *Scene) IsDisposed() bool {
	return s.disposed.Load()
}

// SubmitTuning validates a tuning update and hands it to the loop. It is
// applied at the top of the next tick. Returns ErrSceneDisposed after
// Dispose, the validation error for out-of-range values, and an error if
// the hand-off buffer is full.
func (s *Scene) SubmitTuning(t Tuning) error {
	if s.disposed.Load() {
		return ErrSceneDisposed
	}
	if err := t.validate(); err != nil {
		return fmt.Errorf("nebula: tuning: %w", err)
	}
	select {
	case s.tuning <- t:
		return nil
	default:
		return fmt.Errorf("nebula: tuning buffer full (%d pending)", tuningBuffer)
	}
}

// Update advances the simulation by one tick. A panicking listener or sink
// is logged and the tick continues; Update only returns an error
// (ebiten.Termination) once the scene has been disposed.
func (s *Scene) Update() error {
	if s.disposed.Load() {
		s.tryTeardown()
		return ebiten.Termination
	}
	s.mu.Lock()
	s.tick()
	s.mu.Unlock()
	if s.disposed.Load() {
		s.tryTeardown()
		return ebiten.Termination
	}
	return nil
}

func (s *Scene) tick() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tick panicked", zap.Any("panic", r), zap.Uint64("frame", s.frameCount))
		}
	}()
	t0 := time.Now()

	now := s.clock.Now()
	if !s.started {
		s.started = true
		s.start, s.last = now, now
	}
	delta := now.Sub(s.last)
	if delta < 0 {
		delta = 0
	}
	s.last = now
	s.elapsed = now.Sub(s.start).Seconds()
	dt := delta.Seconds()
	ts := s.cfg.Field.Motion.TimeScale(dt)
	s.cur = FrameStats{Frame: s.frameCount, Delta: delta}

	s.drainTuning()
	if s.runner != nil {
		s.runner.step(s)
	}

	in := &s.frame
	in.reset()
	if !s.processInjectedInput(in) && s.input != nil {
		s.input.Poll(in)
	}

	if w, h, ok := s.resize.poll(now); ok {
		s.applySurface(w, h)
	}

	if in.PointerMoved {
		s.pointer = in.Pointer
		fire(s.log, EventPointerMove, s.handlers.pointerMove, PointerContext(in.Pointer))
		s.emit(FieldEvent{Type: EventPointerMove, ScreenX: in.Pointer.X, ScreenY: in.Pointer.Y})
	}
	for _, c := range in.Clicks {
		if s.disposed.Load() {
			return
		}
		s.spawnAt(c.X, c.Y)
	}

	s.ease(ts)
	s.camera.update(float32(ts / s.referenceFPS()))
	s.field.Advance(s.elapsed, dt)
	if s.field.TakeDirty() {
		s.fieldCloud.MarkNeedsUpdate()
	}
	s.fieldCloud.Model = s.model()

	s.effects = updateEffects(s.effects, s.dropEffect)

	s.frameCount++
	s.cur.AmbientParticles = s.field.Len()
	s.cur.EffectParticles = effectParticles(s.effects)
	s.cur.Effects = len(s.effects)
	s.cur.TickTime = time.Since(t0)
	if s.cfg.ShowStats {
		s.overlay.update(dt, s.cur)
	}
	if s.stats != nil {
		s.observeFrame(s.cur)
	}
	s.debugLog(s.cur)
}

func (s *Scene) referenceFPS() float64 {
	if fps := s.cfg.Field.Motion.ReferenceFPS; fps > 0 {
		return fps
	}
	return 60
}

// ease moves the field rotation toward the pointer-derived target and adds
// the constant auto-rotation around Y.
func (s *Scene) ease(ts float64) {
	ic := s.cfg.Interaction
	// PointerScale is per layout pixel; the surface is in device pixels.
	scale := ic.PointerScale
	if r := s.renderer.pixelRatio; r > 0 {
		scale /= r
	}
	targetY := (s.pointer.X - s.surface.HalfWidth) * scale
	targetX := (s.pointer.Y - s.surface.HalfHeight) * scale
	s.rotY += (targetY - s.rotY) * ic.Easing
	s.rotX += (targetX - s.rotX) * ic.Easing
	s.rotY += ic.AutoRotate * ts
}

// model returns the field's local-to-world transform.
func (s *Scene) model() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(float32(s.rotX)).Mul4(mgl32.HomogRotate3DY(float32(s.rotY)))
}

// toFieldLocal maps a world point into the rotated field's local space.
func (s *Scene) toFieldLocal(p mgl32.Vec3) mgl32.Vec3 {
	rot := mgl32.Rotate3DX(float32(s.rotX)).Mul3(mgl32.Rotate3DY(float32(s.rotY)))
	return rot.Transpose().Mul3x1(p)
}

// spawnAt projects a click and, when it lands on the z=0 plane, spawns an
// explosion there and pushes nearby ambient particles away.
func (s *Scene) spawnAt(x, y float64) {
	fire(s.log, EventClick, s.handlers.click, PointerContext{X: x, Y: y})

	p, ok := MouseToWorld(x, y, s.surface.Rect(), s.camera)
	if !ok {
		s.log.Debug("click not projectable", zap.Float64("x", x), zap.Float64("y", y))
		s.emit(FieldEvent{Type: EventClick, ScreenX: x, ScreenY: y})
		return
	}

	color := s.pickColor()
	ex := NewExplosion(s.rng, p, s.cfg.Explosion.params(s.rng, color))
	ex.attach(&s.clouds)
	s.effects = append(s.effects, ex)
	s.cur.Spawned++

	ic := s.cfg.Interaction
	pushed := s.field.ApplyImpulse(s.toFieldLocal(p), ic.ImpulseRadius, ic.ImpulseStrength)

	s.emit(FieldEvent{Type: EventClick, ScreenX: x, ScreenY: y, World: p, Count: pushed})
	fire(s.log, EventSpawn, s.handlers.spawn, SpawnContext{ScreenX: x, ScreenY: y, World: p, Explosion: ex, Pushed: pushed})
	s.emit(FieldEvent{Type: EventSpawn, ScreenX: x, ScreenY: y, World: p, Count: ex.Len(), Color: color})
}

// SpawnAt spawns an explosion at a world point and applies the click
// impulse there, bypassing pointer projection.
func (s *Scene) SpawnAt(p mgl32.Vec3) (*Explosion, error) {
	if s.disposed.Load() {
		return nil, ErrSceneDisposed
	}
	if !finiteVec(p) {
		return nil, fmt.Errorf("nebula: spawn at non-finite point %v", p)
	}
	color := s.pickColor()
	ex := NewExplosion(s.rng, p, s.cfg.Explosion.params(s.rng, color))
	ex.attach(&s.clouds)
	s.effects = append(s.effects, ex)
	ic := s.cfg.Interaction
	pushed := s.field.ApplyImpulse(s.toFieldLocal(p), ic.ImpulseRadius, ic.ImpulseStrength)
	fire(s.log, EventSpawn, s.handlers.spawn, SpawnContext{World: p, Explosion: ex, Pushed: pushed})
	s.emit(FieldEvent{Type: EventSpawn, World: p, Count: ex.Len(), Color: color})
	return ex, nil
}

func (s *Scene) pickColor() Color {
	pal := s.cfg.Field.Palette
	if len(pal) == 0 {
		return ColorWhite
	}
	return pal[s.rng.IntN(len(pal))]
}

// dropEffect is called by updateEffects for every effect leaving the scene.
func (s *Scene) dropEffect(fx Effect, err error) {
	s.cur.Dropped++
	if err != nil {
		s.cur.Failed++
		s.log.Warn("effect dropped", zap.Error(err))
	}
	fire(s.log, EventExpire, s.handlers.expire, ExpireContext{Effect: fx, Err: err})
	ev := FieldEvent{Type: EventExpire}
	if ex, ok := fx.(*Explosion); ok {
		ev.Color = ex.Color()
	}
	s.emit(ev)
}

// AddEffect appends a custom effect. It is updated every tick after the
// built-in explosions spawned before it.
func (s *Scene) AddEffect(fx Effect) error {
	if s.disposed.Load() {
		return ErrSceneDisposed
	}
	if fx == nil {
		return errors.New("nebula: nil effect")
	}
	s.effects = append(s.effects, fx)
	return nil
}

// requestResize records a requested surface size. The first size is
// applied at once; later changes wait for the debounce window.
func (s *Scene) requestResize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	if !s.sized {
		s.requestW, s.requestH = w, h
		s.applySurface(w, h)
		return
	}
	if w == s.requestW && h == s.requestH {
		return
	}
	s.requestW, s.requestH = w, h
	s.resize.trigger(s.clock.Now(), w, h)
}

// applySurface recomputes the surface and camera projection.
func (s *Scene) applySurface(w, h int) {
	first := !s.sized
	s.sized = true
	s.surface = newSurface(w, h)
	s.camera.SetAspect(float32(w) / float32(h))
	if first {
		s.pointer = PointerSample{X: s.surface.HalfWidth, Y: s.surface.HalfHeight}
	}
	s.log.Info("surface resized", zap.Int("width", w), zap.Int("height", h))
	fire(s.log, EventResize, s.handlers.resize, ResizeContext{Surface: s.surface})
	s.emit(FieldEvent{Type: EventResize, Width: s.surface.Width, Height: s.surface.Height})
}

// Layout implements ebiten.Game. The outside size is scaled by the pixel
// ratio and fed through the resize debounce; the returned size is the
// currently applied surface.
func (s *Scene) Layout(outsideWidth, outsideHeight int) (int, int) {
	if s.disposed.Load() {
		return max(outsideWidth, 1), max(outsideHeight, 1)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ratio := s.pixelRatio()
	s.renderer.pixelRatio = ratio
	w := int(math.Ceil(float64(outsideWidth) * ratio))
	h := int(math.Ceil(float64(outsideHeight) * ratio))
	s.requestResize(w, h)
	if !s.sized {
		return max(w, 1), max(h, 1)
	}
	return int(s.surface.Width), int(s.surface.Height)
}

// deviceScale reports the monitor scale factor. Replaced in tests.
var deviceScale = func() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// pixelRatio returns the configured ratio, or min(device scale, 2).
func (s *Scene) pixelRatio() float64 {
	if r := s.cfg.Render.PixelRatio; r > 0 {
		return r
	}
	r := deviceScale()
	if r <= 0 {
		r = 1
	}
	return min(r, 2)
}

// Draw implements ebiten.Game.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.disposed.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	if bg := s.cfg.Render.BackgroundColor; bg != nil {
		screen.Fill(bg.toRGBA())
	} else {
		screen.Clear()
	}
	for _, pc := range s.clouds.clouds {
		s.renderer.draw(screen, pc, s.camera)
	}
	if s.cfg.ShowStats {
		s.overlay.draw(screen)
	}
	s.flushScreenshots(screen)
}

// Dispose stops the loop and releases every resource the scene owns: the
// ambient field, all live effects, render resources and every listener.
// It is safe to call more than once, from any goroutine, including from a
// callback running inside Update.
func (s *Scene) Dispose() {
	s.disposed.Store(true)
	s.tryTeardown()
}

// tryTeardown releases resources unless a tick or draw holds the lock. In
// that case the holder tears down once it finishes.
func (s *Scene) tryTeardown() {
	if !s.mu.TryLock() {
		return
	}
	defer s.mu.Unlock()
	s.teardown()
}

func (s *Scene) teardown() {
	if s.released {
		return
	}
	s.released = true
	for i, fx := range s.effects {
		if err := disposeEffect(fx); err != nil {
			s.log.Warn("effect dispose failed", zap.Error(err))
		}
		s.effects[i] = nil
	}
	s.effects = s.effects[:0]
	s.clouds.clear()
	s.field.Dispose()
	s.renderer.release()
	s.overlay.release()
	s.handlers.clear()
	s.resize.cancel()
	s.injectQueue = nil
	s.screenshotQueue = nil
	s.runner = nil
	s.store = nil
	s.stats = nil
drain:
	for {
		select {
		case <-s.tuning:
		default:
			break drain
		}
	}
	s.log.Debug("scene disposed", zap.Uint64("frames", s.frameCount))
}
