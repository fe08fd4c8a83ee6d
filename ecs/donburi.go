package ecs

import (
	"github.com/phanxgames/nebula"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// FieldEventType is the Donburi event type for nebula scene events.
var FieldEventType = events.NewEventType[nebula.FieldEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventStore backed by a Donburi world.
// Events are published to FieldEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) nebula.EventStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event nebula.FieldEvent) {
	FieldEventType.Publish(s.world, event)
}
