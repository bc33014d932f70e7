package scene

import (
	"slices"

	"github.com/google/uuid"

	"github.com/zeusync/scenecore/internal/core/vmath"
)

// EntityID is the stable identity of an entity.
type EntityID = uuid.UUID

// Entity is a named container that owns its components and child entities. The
// parent link is a non-owning reference.
type Entity struct {
	id     EntityID
	name   string
	active bool
	tags   []string

	components [kindCount]Component
	order      []Kind

	transform *Transform
	parent    *Entity
	children  []*Entity
	scene     *Scene

	destroyed bool
}

// NewEntity creates a detached, active entity with its transform.
func NewEntity(name string) *Entity {
	if name == "" {
		name = "Entity"
	}
	e := &Entity{
		id:     uuid.New(),
		name:   name,
		active: true,
	}
	e.transform = newTransform(e)
	e.AddComponent(e.transform)
	return e
}

func (e *Entity) ID() EntityID          { return e.id }
func (e *Entity) Name() string          { return e.name }
func (e *Entity) SetName(name string)   { e.name = name }
func (e *Entity) Active() bool          { return e.active }
func (e *Entity) SetActive(active bool) { e.active = active }
func (e *Entity) Destroyed() bool       { return e.destroyed }
func (e *Entity) Transform() *Transform { return e.transform }
func (e *Entity) Parent() *Entity       { return e.parent }
func (e *Entity) Scene() *Scene         { return e.scene }

// AddTag labels e with tag. Tags are kept once, in insertion order.
func (e *Entity) AddTag(tag string) {
	if tag != "" && !slices.Contains(e.tags, tag) {
		e.tags = append(e.tags, tag)
	}
}

func (e *Entity) RemoveTag(tag string) bool {
	i := slices.Index(e.tags, tag)
	if i < 0 {
		return false
	}
	e.tags = slices.Delete(e.tags, i, i+1)
	return true
}

func (e *Entity) HasTag(tag string) bool { return slices.Contains(e.tags, tag) }
func (e *Entity) Tags() []string         { return slices.Clone(e.tags) }

// ActiveInHierarchy reports whether e and every ancestor are active and alive.
func (e *Entity) ActiveInHierarchy() bool {
	for p := e; p != nil; p = p.parent {
		if !p.active || p.destroyed {
			return false
		}
	}
	return true
}

// Children returns a copy of the child list.
func (e *Entity) Children() []*Entity {
	return slices.Clone(e.children)
}

// WorldPosition is shorthand for Transform().WorldPosition().
func (e *Entity) WorldPosition() vmath.Vec3 {
	return e.transform.WorldPosition()
}

// AddComponent attaches c under its kind. When a component of that kind already
// exists it is returned unchanged and c is discarded. Returns nil for a destroyed
// entity or a nil component.
func (e *Entity) AddComponent(c Component) Component {
	if c == nil || e.destroyed {
		return nil
	}
	k := c.Kind()
	if k >= kindCount {
		return nil
	}
	if existing := e.components[k]; existing != nil {
		return existing
	}
	e.components[k] = c
	e.order = append(e.order, k)
	if en, ok := c.(Enabler); ok {
		en.OnEnable()
	}
	return c
}

// Component returns the component of kind k.
func (e *Entity) Component(k Kind) (Component, bool) {
	if k >= kindCount {
		return nil, false
	}
	c := e.components[k]
	return c, c != nil
}

// HasComponent reports whether a component of kind k is attached.
func (e *Entity) HasComponent(k Kind) bool {
	_, ok := e.Component(k)
	return ok
}

// Components lists attached components in insertion order.
func (e *Entity) Components() []Component {
	out := make([]Component, 0, len(e.order))
	for _, k := range e.order {
		out = append(out, e.components[k])
	}
	return out
}

// RemoveComponent runs the component's teardown hook and detaches it. Missing kinds
// and the transform are left alone.
func (e *Entity) RemoveComponent(k Kind) bool {
	if k == KindTransform || k >= kindCount {
		return false
	}
	c := e.components[k]
	if c == nil {
		return false
	}
	if d, ok := c.(Destroyer); ok {
		d.OnDestroy()
	}
	e.components[k] = nil
	if i := slices.Index(e.order, k); i >= 0 {
		e.order = slices.Delete(e.order, i, i+1)
	}
	return true
}

// AddChild reparents child under e. Reparenting that would make an entity its own
// ancestor fails with ErrHierarchyCycle.
func (e *Entity) AddChild(child *Entity) error {
	if child == nil {
		return nil
	}
	if e.destroyed || child.destroyed {
		return ErrDestroyed
	}
	if e.IsDescendantOf(child) {
		return ErrHierarchyCycle
	}
	if child.scene != nil && child.scene != e.scene {
		return ErrForeignScene
	}
	if child.parent == e {
		return nil
	}
	if child.parent != nil {
		child.parent.detachChild(child)
	} else if child.scene != nil {
		child.scene.dropRoot(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	if e.scene != nil && child.scene == nil {
		e.scene.register(child)
	}
	return nil
}

// RemoveChild detaches child from e. A detached child that lives in a scene
// becomes a root of that scene.
func (e *Entity) RemoveChild(child *Entity) {
	if child == nil || child.parent != e {
		return
	}
	e.detachChild(child)
	child.parent = nil
	if child.scene != nil && !child.destroyed {
		child.scene.addRoot(child)
	}
}

// SetParent attaches e under parent, or detaches it when parent is nil.
func (e *Entity) SetParent(parent *Entity) error {
	if parent == nil {
		if e.parent != nil {
			e.parent.RemoveChild(e)
		}
		return nil
	}
	return parent.AddChild(e)
}

// IsDescendantOf reports whether ancestor is e or one of e's ancestors.
func (e *Entity) IsDescendantOf(ancestor *Entity) bool {
	for p := e; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func (e *Entity) detachChild(child *Entity) {
	if i := slices.Index(e.children, child); i >= 0 {
		e.children = slices.Delete(e.children, i, i+1)
	}
}

// Update steps enabled Updater components, then children. Inactive entities do
// nothing and their children are frozen for the frame.
func (e *Entity) Update(dt float64) {
	if !e.active || e.destroyed {
		return
	}
	for i := 0; i < len(e.order); i++ {
		c := e.components[e.order[i]]
		if c == nil || !c.Enabled() {
			continue
		}
		if u, ok := c.(Updater); ok {
			u.Update(dt)
		}
	}
	for i := 0; i < len(e.children); i++ {
		e.children[i].Update(dt)
	}
}

// Clone returns a detached copy of e and its subtree with fresh ids. Names, active
// flags, tags, local transforms and meshes are copied; the mesh gets its own
// geometry and material. Components that register with an engine are not copied.
func (e *Entity) Clone() *Entity {
	c := NewEntity(e.name)
	c.active = e.active
	c.tags = slices.Clone(e.tags)
	t := c.transform
	t.SetPositionVec(e.transform.position)
	t.SetRotationVec(e.transform.rotation)
	t.SetScaleVec(e.transform.scale)
	if m, ok := Get[*Mesh](e); ok {
		m.copyTo(c)
	}
	for _, child := range e.children {
		_ = c.AddChild(child.Clone())
	}
	return c
}

// Destroy tears down every component (running teardown hooks, which release
// engine registrations) and then every child. A destroyed entity must not be used.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	for _, k := range slices.Clone(e.order) {
		if d, ok := e.components[k].(Destroyer); ok {
			d.OnDestroy()
		}
		e.components[k] = nil
	}
	e.order = nil
	e.destroyed = true

	children := e.children
	e.children = nil
	for _, child := range children {
		child.Destroy()
	}

	if e.parent != nil && !e.parent.destroyed {
		e.parent.detachChild(e)
	}
	if e.scene != nil {
		e.scene.forget(e)
	}
}
