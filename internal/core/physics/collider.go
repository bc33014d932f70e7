package physics

import (
	"math"

	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/vmath"
)

// Shape tags a collider. Every shape is tested through its axis-aligned box.
type Shape uint8

const (
	ShapeBox Shape = iota
	ShapeSphere
	ShapeCapsule
)

func (s Shape) String() string {
	switch s {
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	default:
		return "box"
	}
}

func ParseShape(name string) (Shape, error) {
	switch name {
	case "", "box":
		return ShapeBox, nil
	case "sphere":
		return ShapeSphere, nil
	case "capsule":
		return ShapeCapsule, nil
	default:
		return ShapeBox, ErrUnknownShape
	}
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min, Max vmath.Vec3
}

// Intersects uses closed intervals: boxes that only touch still intersect.
func (b Bounds) Intersects(o Bounds) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}

// CollisionFunc is invoked on every tick a collider overlaps another.
type CollisionFunc func(self, other *Collider)

type Collider struct {
	scene.Base
	engine *Engine

	Shape       Shape
	HalfExtents vmath.Vec3
	Trigger     bool
	OnCollision CollisionFunc
}

// AddCollider attaches a unit box collider registered with eng, or returns the
// existing one.
func AddCollider(e *scene.Entity, eng *Engine) *Collider {
	return scene.Attach(e, scene.KindCollider, func(e *scene.Entity) *Collider {
		return NewCollider(e, eng)
	})
}

func NewCollider(e *scene.Entity, eng *Engine) *Collider {
	return &Collider{
		Base:        scene.NewBase(e),
		engine:      eng,
		HalfExtents: vmath.Vec3{0.5, 0.5, 0.5},
	}
}

func (c *Collider) Kind() scene.Kind { return scene.KindCollider }

func (c *Collider) OnEnable() {
	if c.engine != nil {
		c.engine.RegisterCollider(c)
	}
}

func (c *Collider) OnDestroy() {
	if c.engine != nil {
		c.engine.DeregisterCollider(c)
	}
}

// CopyTo attaches a collider with c's shape to dst, registered with c's engine.
// OnCollision is not copied.
func (c *Collider) CopyTo(dst *scene.Entity) *Collider {
	d := AddCollider(dst, c.engine)
	d.Shape, d.HalfExtents, d.Trigger = c.Shape, c.HalfExtents, c.Trigger
	d.SetEnabled(c.Enabled())
	return d
}

// Bounds derives the box from the entity's world position and local scale.
func (c *Collider) Bounds() Bounds {
	t := c.Entity().Transform()
	center := t.WorldPosition()
	s := t.Scale()
	h := vmath.Vec3{
		math.Abs(c.HalfExtents[0] * s[0]),
		math.Abs(c.HalfExtents[1] * s[1]),
		math.Abs(c.HalfExtents[2] * s[2]),
	}
	return Bounds{Min: center.Sub(h), Max: center.Add(h)}
}

// Intersects reports overlap between two enabled colliders.
func (c *Collider) Intersects(o *Collider) bool {
	if !c.Enabled() || !o.Enabled() {
		return false
	}
	return c.Bounds().Intersects(o.Bounds())
}
