// Package bus is the in-process publish/subscribe hub simulation subsystems use to
// announce lifecycle and contact events to outer layers (telemetry, feeds, tools).
package bus

import "github.com/zeusync/scenecore/internal/core/scene"

// Type is the routing key of an event.
type Type string

const (
	EntityCreated   Type = "entity.created"
	EntityDestroyed Type = "entity.destroyed"
	ContactBegan    Type = "contact.began"
	ContactEnded    Type = "contact.ended"
	Message         Type = "script.message"
	LoopStarted     Type = "loop.started"
	LoopStopped     Type = "loop.stopped"
)

// Event is a value describing something that happened during a frame. Events are
// stamped with the frame index rather than wall time so replays compare equal.
type Event struct {
	Type   Type
	Source string
	Frame  uint64

	Entity     scene.EntityID
	EntityName string
	Other      scene.EntityID
	OtherName  string

	Data any
}

// Handler is invoked once per delivered event. Returned errors are joined and
// handed back to the publisher.
type Handler func(Event) error

// Publisher is the narrow view producers depend on.
type Publisher interface {
	Publish(Event) error
}

// Observer is told about every publish. Observers should return quickly.
type Observer interface {
	OnPublish(ev Event)
	OnDelivered(ev Event, handlers int, err error)
}

// Metrics counts bus activity since creation.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
