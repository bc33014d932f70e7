// Package particles simulates CPU point particles spawned from an entity.
package particles

import (
	"math/rand/v2"

	"github.com/zeusync/scenecore/internal/core/asset"
	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/vmath"
)

type Particle struct {
	Position vmath.Vec3
	Velocity vmath.Vec3
	Age      float64
	Lifetime float64
	Size     float64
	Alpha    float64
	Color    asset.Color
}

// Emitter spawns particles at its entity's world position. Emission carries the
// fractional part of rate·dt across frames, so low rates at high frame rates
// still emit.
type Emitter struct {
	scene.Base

	MaxParticles  int
	Rate          float64 // particles per second
	Lifetime      float64
	Speed         vmath.Vec3
	SpeedVariance vmath.Vec3
	Gravity       float64
	Size          float64
	SizeVariance  float64
	Color         asset.Color
	ColorVariance float64

	playing   bool
	carry     float64
	emitted   uint64
	particles []Particle
	rng       *rand.Rand
}

// AddEmitter attaches an emitter seeded with seed, or returns the existing one.
func AddEmitter(e *scene.Entity, seed uint64) *Emitter {
	return scene.Attach(e, scene.KindEmitter, func(e *scene.Entity) *Emitter {
		return NewEmitter(e, seed)
	})
}

func NewEmitter(e *scene.Entity, seed uint64) *Emitter {
	return &Emitter{
		Base:          scene.NewBase(e),
		MaxParticles:  1000,
		Rate:          50,
		Lifetime:      2,
		Speed:         vmath.Vec3{0, 10, 0},
		SpeedVariance: vmath.Vec3{5, 2, 5},
		Gravity:       9.81,
		Size:          0.1,
		SizeVariance:  0.05,
		Color:         asset.Color{R: 1, G: 1, B: 1},
		playing:       true,
		rng:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (em *Emitter) Kind() scene.Kind { return scene.KindEmitter }

func (em *Emitter) Play()           { em.playing = true }
func (em *Emitter) Stop()           { em.playing = false }
func (em *Emitter) Playing() bool   { return em.playing }
func (em *Emitter) Len() int        { return len(em.particles) }
func (em *Emitter) Emitted() uint64 { return em.emitted }

// Particles returns a copy of the live particles.
func (em *Emitter) Particles() []Particle {
	return append([]Particle(nil), em.particles...)
}

// Clear drops every live particle.
func (em *Emitter) Clear() {
	em.particles = em.particles[:0]
	em.carry = 0
}

// jitter returns a value in [-0.5, 0.5) scaled by v.
func (em *Emitter) jitter(v float64) float64 {
	return (em.rng.Float64() - 0.5) * v
}

// Emit spawns up to n particles, bounded by MaxParticles. Returns how many were spawned.
func (em *Emitter) Emit(n int) int {
	origin := em.Entity().WorldPosition()
	spawned := 0
	for ; spawned < n && len(em.particles) < em.MaxParticles; spawned++ {
		v := em.SpeedVariance
		p := Particle{
			Position: origin.Add(vmath.Vec3{em.jitter(v[0]), em.jitter(v[1]), em.jitter(v[2])}),
			Velocity: em.Speed.Add(vmath.Vec3{em.jitter(v[0]), em.jitter(v[1]), em.jitter(v[2])}),
			Lifetime: em.Lifetime + em.jitter(em.Lifetime*0.2),
			Size:     em.Size + em.jitter(em.SizeVariance),
			Alpha:    1,
			Color:    em.Color,
		}
		if em.ColorVariance > 0 {
			f := 1 + em.jitter(em.ColorVariance)
			p.Color = asset.Color{R: p.Color.R * f, G: p.Color.G * f, B: p.Color.B * f}
		}
		em.particles = append(em.particles, p)
	}
	em.emitted += uint64(spawned)
	return spawned
}

// Update emits for this frame and ages, moves and fades live particles.
func (em *Emitter) Update(dt float64) {
	if !em.playing {
		return
	}
	em.carry += em.Rate * dt
	if n := int(em.carry); n > 0 {
		em.carry -= float64(n)
		em.Emit(n)
	}

	live := em.particles[:0]
	for _, p := range em.particles {
		p.Age += dt
		if p.Age >= p.Lifetime {
			continue
		}
		p.Velocity[1] -= em.Gravity * dt
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
		p.Alpha = 1 - p.Age/p.Lifetime
		live = append(live, p)
	}
	clear(em.particles[len(live):])
	em.particles = live
}
