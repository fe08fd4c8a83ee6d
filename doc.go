// Package nebula is an interactive 3D particle backdrop for [Ebitengine].
//
// A [Scene] owns an ambient field of drifting particles viewed through a
// perspective [Camera]. The field slowly rotates toward the pointer and
// around its own Y axis. Clicking or tapping projects the pointer onto the
// z=0 plane, spawns an [Explosion] there and pushes nearby ambient
// particles away with a quadratic falloff.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	scene := nebula.NewScene(nebula.DefaultConfig(nebula.HostDeviceTier()))
//	nebula.Run(scene, nebula.RunConfig{
//		Title: "Nebula", Width: 1280, Height: 720,
//	})
//
// Scene implements [ebiten.Game], so it can also be driven directly or
// wrapped by another game:
//
//	type Game struct{ *nebula.Scene }
//
//	func (g *Game) Update() error {
//		// ... game logic ...
//		return g.Scene.Update()
//	}
//
// # Motion
//
// Every per-frame quantity is scaled by the frame delta against a 60 Hz
// reference, so the field moves at the same speed on any refresh rate.
// Drag is applied as Drag^timeScale. Explosions age a fixed amount per
// tick and remove themselves once their life reaches zero.
//
// # Live tuning
//
// [WatchTuning] watches a JSON file and hands each decoded [Tuning] to
// [Scene.SubmitTuning]. Updates are applied at the start of the next tick.
//
// # Integration
//
// [StatsSink] receives per-tick [FrameStats]; the promstats package exports
// them to Prometheus. [EventStore] receives every [FieldEvent]; the ecs
// module forwards them to a [Donburi] world.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package nebula
