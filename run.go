package nebula

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// lowPowerTPS is the tick rate used with PowerLowPower.
const lowPowerTPS = 30

// RunConfig configures the host window.
type RunConfig struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
	// Fullscreen starts the window fullscreen.
	Fullscreen bool
}

// Run opens a window and drives scene until the window is closed or the
// scene is disposed. A nil scene is a silent no-op. The scene is disposed
// when Run returns.
func Run(scene *Scene, rc RunConfig) error {
	if scene == nil {
		return nil
	}
	defer scene.Dispose()

	if rc.Title == "" {
		rc.Title = "nebula"
	}
	if rc.Width <= 0 || rc.Height <= 0 {
		rc.Width, rc.Height = 1280, 720
	}
	ebiten.SetWindowTitle(rc.Title)
	ebiten.SetWindowSize(rc.Width, rc.Height)
	if rc.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetFullscreen(rc.Fullscreen)
	ebiten.SetVsyncEnabled(true)
	if scene.cfg.Render.PowerPreference == PowerLowPower {
		ebiten.SetTPS(lowPowerTPS)
	}

	op := &ebiten.RunGameOptions{
		ScreenTransparent: scene.cfg.Render.BackgroundColor == nil,
	}
	if err := ebiten.RunGameWithOptions(scene, op); err != nil {
		return fmt.Errorf("nebula: run: %w", err)
	}
	return nil
}
