package nebula

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// tuningDebounce coalesces the burst of write events editors produce on save.
const tuningDebounce = 150 * time.Millisecond

// Tuning is a partial live override of a Scene's Config. Nil fields are
// left unchanged.
type Tuning struct {
	Amplitude *float64  `mapstructure:"amplitude"`
	Frequency []float64 `mapstructure:"frequency"`
	Drag      *float64  `mapstructure:"drag"`
	MaxDelta  *float64  `mapstructure:"max_delta"`

	ImpulseRadius   *float64       `mapstructure:"impulse_radius"`
	ImpulseStrength *float64       `mapstructure:"impulse_strength"`
	Easing          *float64       `mapstructure:"easing"`
	PointerScale    *float64       `mapstructure:"pointer_scale"`
	AutoRotate      *float64       `mapstructure:"auto_rotate"`
	ResizeDebounce  *time.Duration `mapstructure:"resize_debounce"`

	ExplosionMin *int     `mapstructure:"explosion_min"`
	ExplosionMax *int     `mapstructure:"explosion_max"`
	DecayMin     *float64 `mapstructure:"decay_min"`
	DecayMax     *float64 `mapstructure:"decay_max"`
	Gravity      *float64 `mapstructure:"gravity"`

	FieldOfView *float32 `mapstructure:"fov"`
	// Palette replaces the palette and recolors the ambient field.
	Palette   []string `mapstructure:"palette"`
	ShowStats *bool    `mapstructure:"show_stats"`
	Debug     *bool    `mapstructure:"debug"`
}

// DecodeTuning parses a JSON tuning document. Unknown keys are rejected so
// typos surface instead of being ignored.
func DecodeTuning(data []byte) (Tuning, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning: %w", err)
	}
	var t Tuning
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &t,
		ErrorUnused: true,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return Tuning{}, fmt.Errorf("parse tuning: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning: %w", err)
	}
	if err := t.validate(); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning: %w", err)
	}
	return t, nil
}

// LoadTuningFile reads and decodes a tuning file.
func LoadTuningFile(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning %s: %w", path, err)
	}
	return DecodeTuning(data)
}

func (t Tuning) validate() error {
	for name, v := range map[string]*float64{
		"amplitude":        t.Amplitude,
		"drag":             t.Drag,
		"max_delta":        t.MaxDelta,
		"impulse_radius":   t.ImpulseRadius,
		"impulse_strength": t.ImpulseStrength,
		"easing":           t.Easing,
		"pointer_scale":    t.PointerScale,
		"auto_rotate":      t.AutoRotate,
		"decay_min":        t.DecayMin,
		"decay_max":        t.DecayMax,
		"gravity":          t.Gravity,
	} {
		if v != nil && !finite(*v) {
			return fmt.Errorf("%s must be finite, got %v", name, *v)
		}
	}
	for i, f := range t.Frequency {
		if !finite(f) {
			return fmt.Errorf("frequency[%d] must be finite, got %v", i, f)
		}
	}
	if t.Drag != nil && (*t.Drag <= 0 || *t.Drag > 1) {
		return fmt.Errorf("drag %v outside (0, 1]", *t.Drag)
	}
	if t.MaxDelta != nil && *t.MaxDelta <= 0 {
		return fmt.Errorf("max_delta must be positive, got %v", *t.MaxDelta)
	}
	if t.Frequency != nil && len(t.Frequency) != 3 {
		return fmt.Errorf("frequency needs 3 components, got %d", len(t.Frequency))
	}
	if t.ImpulseRadius != nil && *t.ImpulseRadius <= 0 {
		return fmt.Errorf("impulse_radius must be positive, got %v", *t.ImpulseRadius)
	}
	if t.Easing != nil && (*t.Easing < 0 || *t.Easing > 1) {
		return fmt.Errorf("easing %v outside [0, 1]", *t.Easing)
	}
	if t.ResizeDebounce != nil && *t.ResizeDebounce < 0 {
		return fmt.Errorf("resize_debounce must not be negative, got %v", *t.ResizeDebounce)
	}
	if t.ExplosionMin != nil && *t.ExplosionMin < 0 {
		return fmt.Errorf("explosion_min must not be negative, got %d", *t.ExplosionMin)
	}
	if t.ExplosionMax != nil && *t.ExplosionMax < 0 {
		return fmt.Errorf("explosion_max must not be negative, got %d", *t.ExplosionMax)
	}
	if t.ExplosionMin != nil && t.ExplosionMax != nil && *t.ExplosionMax < *t.ExplosionMin {
		return fmt.Errorf("explosion_max %d below explosion_min %d", *t.ExplosionMax, *t.ExplosionMin)
	}
	if t.DecayMin != nil && *t.DecayMin <= 0 {
		return fmt.Errorf("decay_min must be positive, got %v", *t.DecayMin)
	}
	if t.DecayMax != nil && *t.DecayMax <= 0 {
		return fmt.Errorf("decay_max must be positive, got %v", *t.DecayMax)
	}
	if t.DecayMin != nil && t.DecayMax != nil && *t.DecayMax < *t.DecayMin {
		return fmt.Errorf("decay_max %v below decay_min %v", *t.DecayMax, *t.DecayMin)
	}
	if t.FieldOfView != nil && !(*t.FieldOfView > 0 && *t.FieldOfView < 180) {
		return fmt.Errorf("fov %v outside (0, 180)", *t.FieldOfView)
	}
	if len(t.Palette) > 0 {
		if _, err := ParsePalette(t.Palette...); err != nil {
			return err
		}
	}
	return nil
}

// apply writes the non-nil fields into cfg. It returns the parsed palette
// when the tuning replaced it.
func (t Tuning) apply(cfg *Config) ([]Color, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	// Parsed before any write so a rejected tuning leaves cfg untouched.
	var pal []Color
	if len(t.Palette) > 0 {
		p, err := ParsePalette(t.Palette...)
		if err != nil {
			return nil, err
		}
		if len(p) > 0 {
			pal = p
		}
	}

	m := &cfg.Field.Motion
	setF(&m.Amplitude, t.Amplitude)
	setF(&m.Drag, t.Drag)
	setF(&m.MaxDelta, t.MaxDelta)
	if len(t.Frequency) == 3 {
		m.Frequency = [3]float64{t.Frequency[0], t.Frequency[1], t.Frequency[2]}
	}

	ic := &cfg.Interaction
	setF(&ic.ImpulseRadius, t.ImpulseRadius)
	setF(&ic.ImpulseStrength, t.ImpulseStrength)
	setF(&ic.Easing, t.Easing)
	setF(&ic.PointerScale, t.PointerScale)
	setF(&ic.AutoRotate, t.AutoRotate)
	if t.ResizeDebounce != nil {
		ic.ResizeDebounce = *t.ResizeDebounce
	}

	ec := &cfg.Explosion
	if t.ExplosionMin != nil {
		ec.Count.Min = *t.ExplosionMin
	}
	if t.ExplosionMax != nil {
		ec.Count.Max = *t.ExplosionMax
	}
	if ec.Count.Max < ec.Count.Min {
		ec.Count.Max = ec.Count.Min
	}
	setF(&ec.Decay.Min, t.DecayMin)
	setF(&ec.Decay.Max, t.DecayMax)
	if ec.Decay.Max < ec.Decay.Min {
		ec.Decay.Max = ec.Decay.Min
	}
	setF(&ec.Gravity, t.Gravity)

	if t.FieldOfView != nil {
		cfg.Render.FieldOfView = *t.FieldOfView
	}
	if t.ShowStats != nil {
		cfg.ShowStats = *t.ShowStats
	}
	if t.Debug != nil {
		cfg.Debug = *t.Debug
	}

	if pal != nil {
		cfg.Field.Palette = pal
	}
	return pal, nil
}

func setF(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// drainTuning applies every pending tuning update.
func (s *Scene) drainTuning() {
	for {
		select {
		case t := <-s.tuning:
			s.applyTuning(t)
		default:
			return
		}
	}
}

func (s *Scene) applyTuning(t Tuning) {
	pal, err := t.apply(&s.cfg)
	if err != nil {
		s.log.Warn("tuning rejected", zap.Error(err))
		return
	}
	s.field.SetMotion(s.cfg.Field.Motion)
	s.resize.delay = s.cfg.Interaction.ResizeDebounce
	if s.camera.FieldOfView != s.cfg.Render.FieldOfView {
		s.camera.FieldOfView = s.cfg.Render.FieldOfView
		s.camera.UpdateProjectionMatrix()
	}
	if t.Debug != nil {
		s.debug = *t.Debug
	}
	if pal != nil {
		RecolorField(s.rng, s.field.Buffers(), pal)
		s.fieldCloud.MarkNeedsUpdate()
	}
	s.log.Info("tuning applied")
}

// WatchTuning loads path, submits it, and then resubmits it every time the
// file changes until ctx is done. The parent directory is watched so that
// editors which replace the file on save are picked up. A missing file is
// not an error; it is loaded once it appears.
func WatchTuning(ctx context.Context, path string, submit func(Tuning) error, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create tuning watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	reload := func() {
		t, err := LoadTuningFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return
			}
			log.Warn("Failed to load tuning", zap.String("path", path), zap.Error(err))
			return
		}
		if err := submit(t); err != nil {
			log.Warn("Failed to submit tuning", zap.Error(err))
			return
		}
		log.Info("Tuning loaded", zap.String("path", path))
	}
	reload()

	debounceTimer := time.NewTimer(tuningDebounce)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}

	go func() {
		defer watcher.Close()
		defer debounceTimer.Stop()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				debounceTimer.Reset(tuningDebounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error("Tuning watcher error", zap.Error(err))

			case <-debounceTimer.C:
				reload()

			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
