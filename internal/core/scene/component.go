package scene

// Kind is the closed set of component types an entity can hold. Each entity holds
// at most one component of each kind.
type Kind uint8

const (
	KindTransform Kind = iota
	KindMesh
	KindBody
	KindCollider
	KindAnimator
	KindScript
	KindEmitter

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindTransform:
		return "transform"
	case KindMesh:
		return "mesh"
	case KindBody:
		return "body"
	case KindCollider:
		return "collider"
	case KindAnimator:
		return "animator"
	case KindScript:
		return "script"
	case KindEmitter:
		return "emitter"
	default:
		return "unknown"
	}
}

// Component is a typed unit of data or behavior attached to exactly one entity.
type Component interface {
	Kind() Kind
	Entity() *Entity
	Enabled() bool
	SetEnabled(bool)
}

// Updater components are stepped by Entity.Update once per rendered frame.
type Updater interface {
	Update(dt float64)
}

// Enabler components are notified once, when first attached.
type Enabler interface {
	OnEnable()
}

// Destroyer components release registrations when removed or when their entity is destroyed.
type Destroyer interface {
	OnDestroy()
}

// Base carries the owner pointer and enabled flag shared by every component.
type Base struct {
	entity   *Entity
	disabled bool
}

func NewBase(e *Entity) Base {
	return Base{entity: e}
}

func (b *Base) Entity() *Entity { return b.entity }
func (b *Base) Enabled() bool   { return !b.disabled }
func (b *Base) SetEnabled(v bool) {
	b.disabled = !v
}

// Active reports whether the component should take part in simulation: enabled,
// owned by a live entity, and that entity active.
func (b *Base) Active() bool {
	return !b.disabled && b.entity != nil && !b.entity.destroyed && b.entity.active
}

// Get returns the component of type T attached to e.
func Get[T Component](e *Entity) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	for _, c := range e.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	return zero, false
}

// Attach returns the component of kind k on e, building and adding it with build
// only when absent. An existing instance is never rebuilt.
func Attach[T Component](e *Entity, k Kind, build func(*Entity) T) T {
	if c, ok := e.Component(k); ok {
		if t, ok := c.(T); ok {
			return t
		}
	}
	c := build(e)
	e.AddComponent(c)
	return c
}
