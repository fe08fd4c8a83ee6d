// Package ecs provides ECS adapters for nebula's scene event system.
//
// The primary adapter is [NewDonburiStore], which bridges nebula field
// events (pointer moves, clicks, spawns, expiries, resizes) into a [Donburi]
// world as typed events. Subscribe to [FieldEventType] in your ECS systems
// to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEventStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
