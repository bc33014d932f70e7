// Package scene holds the entity tree: entities, their transforms and the
// component registry every simulation subsystem hangs off.
package scene

import (
	"slices"

	"github.com/zeusync/scenecore/internal/core/observability/log"
)

// Listener observes entities entering and leaving a scene.
type Listener interface {
	EntityAdded(e *Entity)
	EntityRemoved(e *Entity)
}

// Scene owns a set of root entities and indexes every entity beneath them.
type Scene struct {
	roots     []*Entity
	byID      map[EntityID]*Entity
	listeners []Listener
	scratch   []*Entity
	depth     int

	log log.Log
}

func New(logger log.Log) *Scene {
	return &Scene{
		byID: make(map[EntityID]*Entity),
		log:  log.OrNop(logger).With(log.String("component", "scene")),
	}
}

// Subscribe registers l for entity lifecycle notifications.
func (s *Scene) Subscribe(l Listener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

// CreateEntity creates an entity, adding it under parent or as a root when parent is nil.
func (s *Scene) CreateEntity(name string, parent *Entity) (*Entity, error) {
	e := NewEntity(name)
	if parent != nil {
		if parent.scene != s {
			return nil, ErrForeignScene
		}
		if err := parent.AddChild(e); err != nil {
			return nil, err
		}
		return e, nil
	}
	if err := s.Add(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Add inserts a detached entity, with its subtree, as a root.
func (s *Scene) Add(e *Entity) error {
	if e == nil {
		return nil
	}
	if e.destroyed {
		return ErrDestroyed
	}
	if e.scene != nil && e.scene != s {
		return ErrForeignScene
	}
	if e.parent != nil {
		e.parent.RemoveChild(e)
		if e.scene == s {
			return nil
		}
	}
	if e.scene == s {
		s.addRoot(e)
		return nil
	}
	s.register(e)
	return nil
}

// Remove destroys e and its subtree.
func (s *Scene) Remove(e *Entity) {
	if e == nil || e.scene != s {
		return
	}
	e.Destroy()
}

// Entity looks up a live entity by id.
func (s *Scene) Entity(id EntityID) (*Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// FindByName returns the first entity with the given name in depth-first order.
func (s *Scene) FindByName(name string) (*Entity, bool) {
	var found *Entity
	s.Walk(func(e *Entity) bool {
		if e.name == name {
			found = e
			return false
		}
		return true
	})
	return found, found != nil
}

// FindAllByName returns every entity with the given name in depth-first order.
func (s *Scene) FindAllByName(name string) []*Entity {
	return s.collect(func(e *Entity) bool { return e.name == name })
}

// FindByTag returns every entity carrying tag in depth-first order.
func (s *Scene) FindByTag(tag string) []*Entity {
	return s.collect(func(e *Entity) bool { return e.HasTag(tag) })
}

func (s *Scene) collect(match func(*Entity) bool) []*Entity {
	var out []*Entity
	s.Walk(func(e *Entity) bool {
		if match(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Walk visits every entity depth-first, parents before children, until fn returns false.
func (s *Scene) Walk(fn func(*Entity) bool) {
	var visit func(e *Entity) bool
	visit = func(e *Entity) bool {
		if !fn(e) {
			return false
		}
		for _, c := range e.children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	for _, r := range slices.Clone(s.roots) {
		if !visit(r) {
			return
		}
	}
}

// Roots returns a copy of the root list.
func (s *Scene) Roots() []*Entity {
	return slices.Clone(s.roots)
}

// Len is the number of live entities in the scene.
func (s *Scene) Len() int {
	return len(s.byID)
}

// Update steps every root subtree. Roots added during the pass wait for the next
// frame. A nested Update from a component iterates its own copy of the roots.
func (s *Scene) Update(dt float64) {
	var roots []*Entity
	if s.depth == 0 {
		s.scratch = append(s.scratch[:0], s.roots...)
		roots = s.scratch
	} else {
		roots = slices.Clone(s.roots)
	}
	s.depth++
	defer func() {
		s.depth--
		if s.depth == 0 {
			clear(s.scratch)
		}
	}()
	for _, r := range roots {
		if !r.destroyed {
			r.Update(dt)
		}
	}
}

// Clear destroys every entity.
func (s *Scene) Clear() {
	for _, r := range slices.Clone(s.roots) {
		r.Destroy()
	}
	s.roots = nil
}

func (s *Scene) register(e *Entity) {
	if e.parent == nil {
		s.addRoot(e)
	}
	s.adopt(e)
}

func (s *Scene) adopt(e *Entity) {
	e.scene = s
	s.byID[e.id] = e
	for _, l := range s.listeners {
		l.EntityAdded(e)
	}
	for _, c := range e.children {
		s.adopt(c)
	}
}

func (s *Scene) addRoot(e *Entity) {
	if !slices.Contains(s.roots, e) {
		s.roots = append(s.roots, e)
	}
}

func (s *Scene) dropRoot(e *Entity) {
	if i := slices.Index(s.roots, e); i >= 0 {
		s.roots = slices.Delete(s.roots, i, i+1)
	}
}

func (s *Scene) forget(e *Entity) {
	if _, ok := s.byID[e.id]; !ok {
		return
	}
	delete(s.byID, e.id)
	s.dropRoot(e)
	for _, l := range s.listeners {
		l.EntityRemoved(e)
	}
	s.log.Debug("entity removed", log.String("name", e.name), log.Stringer("id", e.id))
}
