package particles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/vmath"
)

func TestFractionalRateCarriesAcrossFrames(t *testing.T) {
	em := AddEmitter(scene.NewEntity("fx"), 1)
	em.Rate = 50
	em.Lifetime = 100

	for range 60 {
		em.Update(1.0 / 60)
	}
	// 50/s for one second; allow for float rounding on the last frame.
	assert.InDelta(t, 50, em.Len(), 1)
}

func TestMaxParticles(t *testing.T) {
	em := AddEmitter(scene.NewEntity("fx"), 1)
	em.MaxParticles = 10
	assert.Equal(t, 10, em.Emit(25))
	assert.Equal(t, 0, em.Emit(1))
	assert.Equal(t, uint64(10), em.Emitted())
}

func TestParticlesExpireAndFade(t *testing.T) {
	em := AddEmitter(scene.NewEntity("fx"), 7)
	em.Rate = 0
	em.Lifetime = 1
	em.Emit(5)

	em.Update(0.5)
	require.Equal(t, 5, em.Len())
	for _, p := range em.Particles() {
		assert.InDelta(t, 1-0.5/p.Lifetime, p.Alpha, 1e-12)
	}

	em.Update(1)
	assert.Zero(t, em.Len())
}

func TestGravityPullsParticlesDown(t *testing.T) {
	em := AddEmitter(scene.NewEntity("fx"), 3)
	em.Rate = 0
	em.Speed = vmath.Zero
	em.SpeedVariance = vmath.Zero
	em.Gravity = 10
	em.Emit(1)

	em.Update(0.1)
	p := em.Particles()[0]
	assert.InDelta(t, -1.0, p.Velocity.Y(), 1e-12)
	assert.InDelta(t, -0.1, p.Position.Y(), 1e-12)
}

func TestSeedIsDeterministic(t *testing.T) {
	a := AddEmitter(scene.NewEntity("a"), 42)
	b := AddEmitter(scene.NewEntity("b"), 42)
	a.Emit(20)
	b.Emit(20)
	assert.Equal(t, a.Particles(), b.Particles())
}

func TestStoppedEmitterIsFrozen(t *testing.T) {
	em := AddEmitter(scene.NewEntity("fx"), 1)
	em.Emit(3)
	em.Stop()
	em.Update(10)
	assert.Equal(t, 3, em.Len())
	em.Play()
	em.Clear()
	assert.Zero(t, em.Len())
}

func TestEmitFromWorldPosition(t *testing.T) {
	parent := scene.NewEntity("parent")
	parent.Transform().SetPosition(0, 100, 0)
	child := scene.NewEntity("nozzle")
	require.NoError(t, parent.AddChild(child))
	em := AddEmitter(child, 1)
	em.SpeedVariance = vmath.Zero
	em.Emit(1)
	assert.Equal(t, vmath.Vec3{0, 100, 0}, em.Particles()[0].Position)
}
