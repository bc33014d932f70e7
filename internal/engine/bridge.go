package engine

import (
	"github.com/zeusync/scenecore/internal/core/events/bus"
	"github.com/zeusync/scenecore/internal/core/physics"
	"github.com/zeusync/scenecore/internal/core/scene"
)

// sceneEvents republishes scene membership changes on the bus.
type sceneEvents struct {
	engine *Engine
}

var _ scene.Listener = (*sceneEvents)(nil)

func (s *sceneEvents) EntityAdded(e *scene.Entity) {
	s.engine.publish(bus.Event{Type: bus.EntityCreated, Source: "scene", Entity: e.ID(), EntityName: e.Name()})
}

func (s *sceneEvents) EntityRemoved(e *scene.Entity) {
	s.engine.publish(bus.Event{Type: bus.EntityDestroyed, Source: "scene", Entity: e.ID(), EntityName: e.Name()})
}

// contactEvents republishes contact transitions on the bus. Stay is not published.
type contactEvents struct {
	engine *Engine
}

var _ physics.ContactListener = (*contactEvents)(nil)

func (c *contactEvents) ContactBegan(a, b *scene.Entity) {
	c.engine.publish(contactEvent(bus.ContactBegan, a, b))
}

func (c *contactEvents) ContactStay(_, _ *scene.Entity) {}

func (c *contactEvents) ContactEnded(a, b *scene.Entity) {
	c.engine.publish(contactEvent(bus.ContactEnded, a, b))
}

func contactEvent(t bus.Type, a, b *scene.Entity) bus.Event {
	return bus.Event{
		Type:       t,
		Source:     "physics",
		Entity:     a.ID(),
		EntityName: a.Name(),
		Other:      b.ID(),
		OtherName:  b.Name(),
	}
}
