package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/scenecore/internal/core/vmath"
)

// Transform is the local position, Euler rotation and scale of an entity. Every
// entity owns exactly one, created with it and never removable.
type Transform struct {
	Base
	position vmath.Vec3
	rotation vmath.Vec3
	scale    vmath.Vec3

	matrix mgl64.Mat4
	dirty  bool
}

func newTransform(e *Entity) *Transform {
	return &Transform{
		Base:   NewBase(e),
		scale:  vmath.One,
		matrix: mgl64.Ident4(),
		dirty:  true,
	}
}

func (t *Transform) Kind() Kind { return KindTransform }

func (t *Transform) Position() vmath.Vec3 { return t.position }
func (t *Transform) Rotation() vmath.Vec3 { return t.rotation }
func (t *Transform) Scale() vmath.Vec3    { return t.scale }

// Dirty reports whether the cached local matrix is stale.
func (t *Transform) Dirty() bool { return t.dirty }

func (t *Transform) SetPosition(x, y, z float64) {
	t.SetPositionVec(vmath.Vec3{x, y, z})
}

func (t *Transform) SetPositionVec(p vmath.Vec3) {
	t.position = p
	t.dirty = true
}

func (t *Transform) Translate(x, y, z float64) {
	t.TranslateVec(vmath.Vec3{x, y, z})
}

func (t *Transform) TranslateVec(d vmath.Vec3) {
	t.position = t.position.Add(d)
	t.dirty = true
}

func (t *Transform) SetRotation(x, y, z float64) {
	t.SetRotationVec(vmath.Vec3{x, y, z})
}

func (t *Transform) SetRotationVec(r vmath.Vec3) {
	t.rotation = r
	t.dirty = true
}

// Rotate adds d to the Euler angles.
func (t *Transform) Rotate(d vmath.Vec3) {
	t.rotation = t.rotation.Add(d)
	t.dirty = true
}

func (t *Transform) SetScale(x, y, z float64) {
	t.SetScaleVec(vmath.Vec3{x, y, z})
}

func (t *Transform) SetScaleVec(s vmath.Vec3) {
	t.scale = s
	t.dirty = true
}

// Matrix returns the local T*R*S matrix, recomposing it if a mutation happened
// since the last call.
func (t *Transform) Matrix() mgl64.Mat4 {
	if t.dirty {
		t.matrix = vmath.Compose(t.position, t.rotation, t.scale)
		t.dirty = false
	}
	return t.matrix
}

// WorldPosition walks the parent chain, rotating the accumulated point by each
// ancestor's rotation and then adding its position. Nothing is cached between calls.
func (t *Transform) WorldPosition() vmath.Vec3 {
	pos := t.position
	if t.entity == nil {
		return pos
	}
	for p := t.entity.parent; p != nil; p = p.parent {
		pt := p.transform
		pos = vmath.RotateEuler(pos, pt.rotation).Add(pt.position)
	}
	return pos
}

// WorldMatrix composes the local matrices of every ancestor, outermost first.
func (t *Transform) WorldMatrix() mgl64.Mat4 {
	m := t.Matrix()
	if t.entity == nil {
		return m
	}
	for p := t.entity.parent; p != nil; p = p.parent {
		m = p.transform.Matrix().Mul4(m)
	}
	return m
}
