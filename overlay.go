package nebula

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// overlayInterval is how often the stats text is refreshed, in seconds.
const overlayInterval = 0.5

// statsOverlay draws FPS, TPS and particle counts in the top-left corner.
// The text image is redrawn at most every overlayInterval.
type statsOverlay struct {
	img   *ebiten.Image
	accum float64
	text  string
}

// update accumulates dt and refreshes the text when the interval elapsed.
// Returns true when the text changed.
func (o *statsOverlay) update(dt float64, stats FrameStats) bool {
	o.accum += dt
	if o.text != "" && o.accum < overlayInterval {
		return false
	}
	o.accum = 0
	o.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nParticles: %d\nEffects: %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		stats.AmbientParticles+stats.EffectParticles, stats.Effects)
	if o.img != nil {
		o.redraw()
	}
	return true
}

func (o *statsOverlay) redraw() {
	o.img.Clear()
	// Semi-transparent background for readability
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, o.text)
}

func (o *statsOverlay) draw(screen *ebiten.Image) {
	if o.text == "" {
		return
	}
	if o.img == nil {
		// 120x64 fits four lines of the debug font.
		o.img = ebiten.NewImage(120, 64)
		o.redraw()
	}
	screen.DrawImage(o.img, nil)
}

func (o *statsOverlay) release() {
	if o.img != nil {
		o.img.Deallocate()
		o.img = nil
	}
}
