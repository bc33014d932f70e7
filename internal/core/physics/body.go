package physics

import (
	"math"

	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/vmath"
)

const (
	DefaultMass        = 1.0
	DefaultFriction    = 0.1
	DefaultRestitution = 0.8
)

// Body is a rigid body integrated once per fixed tick. Kinematic bodies are never
// moved by the engine, forces or impulses, but still take part in collisions.
type Body struct {
	scene.Base
	engine *Engine

	Velocity        vmath.Vec3
	Acceleration    vmath.Vec3
	AngularVelocity vmath.Vec3
	UseGravity      bool
	Kinematic       bool

	mass        float64
	friction    float64
	restitution float64
}

// AddBody attaches a body registered with eng, or returns the existing one.
func AddBody(e *scene.Entity, eng *Engine) *Body {
	return scene.Attach(e, scene.KindBody, func(e *scene.Entity) *Body {
		return NewBody(e, eng)
	})
}

// NewBody returns a body with default mass, friction and restitution and gravity
// enabled. It registers with eng once attached to its entity.
func NewBody(e *scene.Entity, eng *Engine) *Body {
	return &Body{
		Base:        scene.NewBase(e),
		engine:      eng,
		UseGravity:  true,
		mass:        DefaultMass,
		friction:    DefaultFriction,
		restitution: DefaultRestitution,
	}
}

func (b *Body) Kind() scene.Kind { return scene.KindBody }

func (b *Body) OnEnable() {
	if b.engine != nil {
		b.engine.RegisterBody(b)
	}
}

func (b *Body) OnDestroy() {
	if b.engine != nil {
		b.engine.DeregisterBody(b)
	}
}

// CopyTo attaches a body to dst, registered with b's engine, carrying b's settings
// and velocities. Forces accumulated for the next tick stay with b.
func (b *Body) CopyTo(dst *scene.Entity) *Body {
	c := AddBody(dst, b.engine)
	c.Velocity, c.AngularVelocity = b.Velocity, b.AngularVelocity
	c.UseGravity, c.Kinematic = b.UseGravity, b.Kinematic
	c.mass, c.friction, c.restitution = b.mass, b.friction, b.restitution
	c.SetEnabled(b.Enabled())
	return c
}

func (b *Body) Mass() float64        { return b.mass }
func (b *Body) Friction() float64    { return b.friction }
func (b *Body) Restitution() float64 { return b.restitution }

// SetMass rejects non-positive or non-finite values and keeps the previous mass.
func (b *Body) SetMass(m float64) error {
	if !(m > 0) || math.IsInf(m, 0) {
		return ErrInvalidMass
	}
	b.mass = m
	return nil
}

func (b *Body) SetFriction(f float64)    { b.friction = vmath.Clamp01(f) }
func (b *Body) SetRestitution(r float64) { b.restitution = vmath.Clamp01(r) }

// ApplyForce accumulates f/mass into the acceleration for the next tick.
func (b *Body) ApplyForce(f vmath.Vec3) {
	if b.Kinematic {
		return
	}
	b.Acceleration = b.Acceleration.Add(f.Mul(1 / b.mass))
}

// ApplyImpulse changes the velocity by j/mass immediately.
func (b *Body) ApplyImpulse(j vmath.Vec3) {
	if b.Kinematic {
		return
	}
	b.Velocity = b.Velocity.Add(j.Mul(1 / b.mass))
}

func (b *Body) inverseMass() float64 {
	if b.Kinematic {
		return 0
	}
	return 1 / b.mass
}

func (b *Body) integrate(dt float64, gravity vmath.Vec3) {
	if b.UseGravity {
		b.Acceleration = b.Acceleration.Add(gravity)
	}
	b.Velocity = b.Velocity.Add(b.Acceleration.Mul(dt)).Mul(1 - b.friction)

	t := b.Entity().Transform()
	t.TranslateVec(b.Velocity.Mul(dt))
	if b.AngularVelocity != vmath.Zero {
		t.Rotate(b.AngularVelocity.Mul(dt))
	}
	b.Acceleration = vmath.Zero
}
