package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/vmath"
)

func newWorld(model ImpulseModel) *Engine {
	return NewEngine(Options{TimeScale: 1, Model: model}, nil)
}

func spawn(t *testing.T, eng *Engine, name string, pos vmath.Vec3, withBody bool) (*scene.Entity, *Body, *Collider) {
	t.Helper()
	e := scene.NewEntity(name)
	e.Transform().SetPositionVec(pos)
	var b *Body
	if withBody {
		b = AddBody(e, eng)
		b.UseGravity = false
		b.SetFriction(0)
	}
	c := AddCollider(e, eng)
	return e, b, c
}

type contactLog struct {
	events []string
}

func (l *contactLog) ContactBegan(a, b *scene.Entity) {
	l.events = append(l.events, "began:"+a.Name()+"/"+b.Name())
}
func (l *contactLog) ContactStay(a, b *scene.Entity) {
	l.events = append(l.events, "stay:"+a.Name()+"/"+b.Name())
}
func (l *contactLog) ContactEnded(a, b *scene.Entity) {
	l.events = append(l.events, "ended:"+a.Name()+"/"+b.Name())
}

func TestBoundsIntersects(t *testing.T) {
	unit := Bounds{Min: vmath.Vec3{0, 0, 0}, Max: vmath.Vec3{1, 1, 1}}
	tests := []struct {
		name  string
		other Bounds
		want  bool
	}{
		{"overlapping", Bounds{Min: vmath.Vec3{0.5, 0.5, 0.5}, Max: vmath.Vec3{1.5, 1.5, 1.5}}, true},
		{"touching face", Bounds{Min: vmath.Vec3{1, 0, 0}, Max: vmath.Vec3{2, 1, 1}}, true},
		{"separated on x", Bounds{Min: vmath.Vec3{1.01, 0, 0}, Max: vmath.Vec3{2, 1, 1}}, false},
		{"separated on y only", Bounds{Min: vmath.Vec3{0, 2, 0}, Max: vmath.Vec3{1, 3, 1}}, false},
		{"contained", Bounds{Min: vmath.Vec3{0.2, 0.2, 0.2}, Max: vmath.Vec3{0.4, 0.4, 0.4}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, unit.Intersects(tc.other))
			assert.Equal(t, tc.want, tc.other.Intersects(unit))
		})
	}
}

func TestColliderBoundsFollowWorldPositionAndScale(t *testing.T) {
	eng := newWorld(Normalized)
	parent := scene.NewEntity("parent")
	parent.Transform().SetPosition(10, 0, 0)
	child, _, c := spawn(t, eng, "child", vmath.Vec3{1, 0, 0}, false)
	require.NoError(t, parent.AddChild(child))
	child.Transform().SetScale(2, 1, 1)

	b := c.Bounds()
	assert.Equal(t, vmath.Vec3{10, -0.5, -0.5}, b.Min)
	assert.Equal(t, vmath.Vec3{12, 0.5, 0.5}, b.Max)
}

func TestTouchingCollidersIntersect(t *testing.T) {
	eng := newWorld(Normalized)
	_, _, a := spawn(t, eng, "a", vmath.Vec3{0.5, 0.5, 0.5}, false)
	_, _, b := spawn(t, eng, "b", vmath.Vec3{1.5, 0.5, 0.5}, false)
	assert.True(t, a.Intersects(b))

	b.SetEnabled(false)
	assert.False(t, a.Intersects(b))
}

func TestHeadOnElasticSwap(t *testing.T) {
	eng := newWorld(Normalized)
	_, b1, _ := spawn(t, eng, "left", vmath.Vec3{0, 0, 0}, true)
	_, b2, _ := spawn(t, eng, "right", vmath.Vec3{0.5, 0, 0}, true)
	b1.SetRestitution(1)
	b2.SetRestitution(1)
	b1.Velocity = vmath.Vec3{1, 0, 0}
	b2.Velocity = vmath.Vec3{-1, 0, 0}

	eng.Step(0.01)

	assert.Equal(t, vmath.Vec3{-1, 0, 0}, b1.Velocity)
	assert.Equal(t, vmath.Vec3{1, 0, 0}, b2.Velocity)
	assert.Equal(t, 1, eng.LastStep().Resolved)
}

func TestRawImpulseModel(t *testing.T) {
	eng := newWorld(Raw)
	_, b1, _ := spawn(t, eng, "left", vmath.Vec3{0, 0, 0}, true)
	_, b2, _ := spawn(t, eng, "right", vmath.Vec3{0.5, 0, 0}, true)
	b1.SetRestitution(1)
	b2.SetRestitution(1)
	b1.Velocity = vmath.Vec3{1, 0, 0}
	b2.Velocity = vmath.Vec3{-1, 0, 0}

	require.True(t, eng.resolve(b1, b2))

	assert.Equal(t, vmath.Vec3{-3, 0, 0}, b1.Velocity)
	assert.Equal(t, vmath.Vec3{3, 0, 0}, b2.Velocity)
}

func TestRestitutionUsesMinimum(t *testing.T) {
	eng := newWorld(Normalized)
	_, b1, _ := spawn(t, eng, "a", vmath.Zero, true)
	_, b2, _ := spawn(t, eng, "b", vmath.Zero, true)
	b1.SetRestitution(1)
	b2.SetRestitution(0)
	b1.Velocity = vmath.Vec3{2, 0, 0}

	eng.resolve(b1, b2)

	assert.Equal(t, vmath.Vec3{1, 0, 0}, b1.Velocity)
	assert.Equal(t, vmath.Vec3{1, 0, 0}, b2.Velocity)
}

func TestKinematicSideIsUntouched(t *testing.T) {
	eng := newWorld(Normalized)
	_, ball, _ := spawn(t, eng, "ball", vmath.Vec3{0, 0, 0}, true)
	_, wall, _ := spawn(t, eng, "wall", vmath.Vec3{0.9, 0, 0}, true)
	wall.Kinematic = true
	ball.SetRestitution(1)
	wall.SetRestitution(1)
	ball.Velocity = vmath.Vec3{1, 0, 0}

	eng.Step(0.01)

	assert.Equal(t, vmath.Vec3{-1, 0, 0}, ball.Velocity)
	assert.Equal(t, vmath.Zero, wall.Velocity)
	assert.Equal(t, vmath.Vec3{0.9, 0, 0}, wall.Entity().Transform().Position())
}

func TestBothKinematicSkipped(t *testing.T) {
	eng := newWorld(Normalized)
	_, a, _ := spawn(t, eng, "a", vmath.Zero, true)
	_, b, _ := spawn(t, eng, "b", vmath.Zero, true)
	a.Kinematic, b.Kinematic = true, true
	a.Velocity = vmath.Vec3{1, 0, 0}
	assert.False(t, eng.resolve(a, b))
	assert.Equal(t, vmath.Vec3{1, 0, 0}, a.Velocity)
}

func TestTriggerSkipsResolutionButFiresCallbacks(t *testing.T) {
	eng := newWorld(Normalized)
	_, b1, c1 := spawn(t, eng, "a", vmath.Zero, true)
	_, b2, c2 := spawn(t, eng, "b", vmath.Zero, true)
	c2.Trigger = true
	b1.Velocity = vmath.Vec3{1, 0, 0}

	var hits []string
	c1.OnCollision = func(self, other *Collider) { hits = append(hits, self.Entity().Name()+">"+other.Entity().Name()) }
	c2.OnCollision = func(self, other *Collider) { hits = append(hits, self.Entity().Name()+">"+other.Entity().Name()) }

	eng.Step(0.001)

	assert.Equal(t, []string{"a>b", "b>a"}, hits)
	assert.Equal(t, vmath.Vec3{1, 0, 0}, b1.Velocity)
	assert.Equal(t, vmath.Zero, b2.Velocity)
}

func TestColliderWithoutBodyStillReportsContact(t *testing.T) {
	eng := newWorld(Normalized)
	_, b1, _ := spawn(t, eng, "a", vmath.Zero, true)
	_, _, c2 := spawn(t, eng, "b", vmath.Zero, false)
	b1.Velocity = vmath.Vec3{1, 0, 0}
	called := 0
	c2.OnCollision = func(*Collider, *Collider) { called++ }

	eng.Step(0.001)

	assert.Equal(t, 1, called)
	assert.Equal(t, vmath.Vec3{1, 0, 0}, b1.Velocity)
	assert.Zero(t, eng.LastStep().Resolved)
}

func TestIntegration(t *testing.T) {
	t.Run("friction damps velocity", func(t *testing.T) {
		eng := newWorld(Normalized)
		e, b, _ := spawn(t, eng, "slider", vmath.Zero, true)
		b.SetFriction(0.1)
		b.Velocity = vmath.Vec3{10, 0, 0}
		eng.Step(1)
		assert.InDelta(t, 9.0, b.Velocity.X(), 1e-12)
		assert.InDelta(t, 9.0, e.Transform().Position().X(), 1e-12)
	})
	t.Run("gravity accelerates", func(t *testing.T) {
		eng := NewEngine(DefaultOptions(), nil)
		e, b, _ := spawn(t, eng, "faller", vmath.Zero, true)
		b.UseGravity = true
		eng.Step(0.1)
		assert.InDelta(t, -0.981, b.Velocity.Y(), 1e-12)
		assert.InDelta(t, -0.0981, e.Transform().Position().Y(), 1e-12)
		assert.Equal(t, vmath.Zero, b.Acceleration)
	})
	t.Run("forces are consumed per tick", func(t *testing.T) {
		eng := newWorld(Normalized)
		_, b, _ := spawn(t, eng, "pushed", vmath.Zero, true)
		require.NoError(t, b.SetMass(2))
		b.ApplyForce(vmath.Vec3{4, 0, 0})
		eng.Step(1)
		assert.InDelta(t, 2.0, b.Velocity.X(), 1e-12)
		eng.Step(1)
		assert.InDelta(t, 2.0, b.Velocity.X(), 1e-12)
	})
	t.Run("angular velocity rotates", func(t *testing.T) {
		eng := newWorld(Normalized)
		e, b, _ := spawn(t, eng, "spinner", vmath.Zero, true)
		b.AngularVelocity = vmath.Vec3{0, 2, 0}
		eng.Step(0.5)
		assert.InDelta(t, 1.0, e.Transform().Rotation().Y(), 1e-12)
	})
	t.Run("kinematic bodies are not integrated", func(t *testing.T) {
		eng := NewEngine(DefaultOptions(), nil)
		e, b, _ := spawn(t, eng, "static", vmath.Zero, true)
		b.UseGravity = true
		b.Kinematic = true
		b.Velocity = vmath.Vec3{1, 0, 0}
		b.ApplyImpulse(vmath.Vec3{5, 0, 0})
		eng.Step(1)
		assert.Equal(t, vmath.Zero, e.Transform().Position())
		assert.Equal(t, vmath.Vec3{1, 0, 0}, b.Velocity)
	})
	t.Run("inactive entities are skipped", func(t *testing.T) {
		eng := newWorld(Normalized)
		e, b, _ := spawn(t, eng, "sleeping", vmath.Zero, true)
		b.Velocity = vmath.Vec3{1, 0, 0}
		e.SetActive(false)
		eng.Step(1)
		assert.Equal(t, vmath.Zero, e.Transform().Position())
	})
	t.Run("time scale", func(t *testing.T) {
		eng := newWorld(Normalized)
		e, b, _ := spawn(t, eng, "slow", vmath.Zero, true)
		require.NoError(t, eng.SetTimeScale(0.5))
		b.Velocity = vmath.Vec3{1, 0, 0}
		eng.Step(1)
		assert.InDelta(t, 0.5, e.Transform().Position().X(), 1e-12)
		assert.ErrorIs(t, eng.SetTimeScale(-1), ErrNegativeTimeScale)
	})
}

func TestBodyParameterValidation(t *testing.T) {
	b := NewBody(scene.NewEntity("e"), nil)
	assert.ErrorIs(t, b.SetMass(0), ErrInvalidMass)
	assert.ErrorIs(t, b.SetMass(-1), ErrInvalidMass)
	assert.Equal(t, DefaultMass, b.Mass())
	b.SetFriction(2)
	b.SetRestitution(-1)
	assert.Equal(t, 1.0, b.Friction())
	assert.Equal(t, 0.0, b.Restitution())
}

func TestContactTransitions(t *testing.T) {
	eng := newWorld(Normalized)
	events := &contactLog{}
	eng.AddListener(events)
	_, _, _ = spawn(t, eng, "a", vmath.Zero, false)
	b, _, _ := spawn(t, eng, "b", vmath.Vec3{0.5, 0, 0}, false)

	eng.Step(0.01)
	eng.Step(0.01)
	b.Transform().SetPosition(5, 0, 0)
	eng.Step(0.01)
	eng.Step(0.01)

	assert.Equal(t, []string{"began:a/b", "stay:a/b", "ended:a/b"}, events.events)
}

func TestDestroyDeregisters(t *testing.T) {
	eng := newWorld(Normalized)
	events := &contactLog{}
	eng.AddListener(events)
	_, _, _ = spawn(t, eng, "a", vmath.Zero, true)
	b, _, _ := spawn(t, eng, "b", vmath.Zero, true)
	eng.Step(0.01)
	require.Equal(t, 2, eng.BodyCount())

	b.Destroy()
	assert.Equal(t, 1, eng.BodyCount())
	assert.Equal(t, 1, eng.ColliderCount())

	eng.Step(0.01)
	assert.Equal(t, []string{"began:a/b"}, events.events)
	assert.Zero(t, eng.LastStep().Contacts)
}

func TestCallbackDestroyingEntityMidPass(t *testing.T) {
	eng := newWorld(Normalized)
	_, _, ca := spawn(t, eng, "a", vmath.Zero, false)
	b, _, _ := spawn(t, eng, "b", vmath.Zero, false)
	_, _, _ = spawn(t, eng, "c", vmath.Zero, false)
	ca.OnCollision = func(_, other *Collider) {
		if other.Entity() == b {
			b.Destroy()
		}
	}

	assert.NotPanics(t, func() { eng.Step(0.01) })
	assert.Equal(t, 2, eng.ColliderCount())
	assert.Equal(t, 1, eng.LastStep().Contacts)
}

func TestParsers(t *testing.T) {
	m, err := ParseImpulseModel("raw")
	require.NoError(t, err)
	assert.Equal(t, Raw, m)
	_, err = ParseImpulseModel("exact")
	assert.ErrorIs(t, err, ErrUnknownImpulseModel)

	s, err := ParseShape("capsule")
	require.NoError(t, err)
	assert.Equal(t, ShapeCapsule, s)
	_, err = ParseShape("torus")
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestStepFromCollisionCallback(t *testing.T) {
	eng := newWorld(Normalized)
	_, _, ca := spawn(t, eng, "a", vmath.Zero, false)
	_, _, _ = spawn(t, eng, "b", vmath.Zero, false)
	_, _, cc := spawn(t, eng, "c", vmath.Zero, false)
	nested := false
	ca.OnCollision = func(*Collider, *Collider) {
		if !nested {
			nested = true
			eng.Step(0.01)
		}
	}
	seen := map[string]int{}
	cc.OnCollision = func(_, other *Collider) { seen[other.Entity().Name()]++ }

	require.NotPanics(t, func() { eng.Step(0.01) })
	assert.Equal(t, 2, seen["a"])
	assert.Equal(t, 2, seen["b"])
	assert.Equal(t, 3, eng.ColliderCount())
}

func TestCopyToRegistersWithSameEngine(t *testing.T) {
	eng := newWorld(Normalized)
	src, b, c := spawn(t, eng, "src", vmath.Zero, true)
	require.NoError(t, b.SetMass(4))
	b.SetRestitution(0.25)
	b.Velocity = vmath.Vec3{1, 0, 0}
	b.ApplyForce(vmath.Vec3{8, 0, 0})
	c.HalfExtents = vmath.Vec3{1, 2, 3}
	c.Trigger = true
	c.OnCollision = func(*Collider, *Collider) {}

	dst := scene.NewEntity("dst")
	db := b.CopyTo(dst)
	dc := c.CopyTo(dst)

	assert.Equal(t, 2, eng.BodyCount())
	assert.Equal(t, 2, eng.ColliderCount())
	assert.Equal(t, 4.0, db.Mass())
	assert.Equal(t, 0.25, db.Restitution())
	assert.Equal(t, vmath.Vec3{1, 0, 0}, db.Velocity)
	assert.Equal(t, vmath.Zero, db.Acceleration)
	assert.False(t, db.UseGravity)
	assert.Equal(t, vmath.Vec3{1, 2, 3}, dc.HalfExtents)
	assert.True(t, dc.Trigger)
	assert.Nil(t, dc.OnCollision)

	src.Destroy()
	assert.Equal(t, 1, eng.BodyCount())
	assert.Equal(t, 1, eng.ColliderCount())
}
