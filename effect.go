package nebula

import "fmt"

// Effect is a transient, self-owned animation driven by the Scene tick.
//
// Update advances the effect by one tick and reports whether it is still
// alive. Once Update returns false the owner calls Dispose exactly once and
// forgets the effect. Dispose must tolerate repeated calls.
type Effect interface {
	Update() bool
	Dispose()
}

// updateEffects advances every effect and compacts the slice in place,
// keeping insertion order. Expired effects are disposed and passed to drop
// with a nil error; effects whose Update panicked are disposed and passed
// with the recovered error. The vacated tail is zeroed.
func updateEffects(effects []Effect, drop func(Effect, error)) []Effect {
	kept := effects[:0]
	for _, fx := range effects {
		alive, err := stepEffect(fx)
		if alive {
			kept = append(kept, fx)
			continue
		}
		if derr := disposeEffect(fx); err == nil {
			err = derr
		}
		if drop != nil {
			drop(fx, err)
		}
	}
	clear(effects[len(kept):])
	return kept
}

func stepEffect(fx Effect) (alive bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			alive = false
			err = fmt.Errorf("effect update: %v", r)
		}
	}()
	return fx.Update(), nil
}

func disposeEffect(fx Effect) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("effect dispose: %v", r)
		}
	}()
	fx.Dispose()
	return nil
}
