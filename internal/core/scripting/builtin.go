package scripting

import (
	"math"

	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/vmath"
)

// Rotator spins its entity at a constant angular speed (radians per second per axis).
type Rotator struct {
	Speed vmath.Vec3
}

func NewRotator() *Rotator { return &Rotator{Speed: vmath.One} }

func (r *Rotator) Name() string { return "rotator" }

func (r *Rotator) Update(e *scene.Entity, dt float64) {
	e.Transform().Rotate(r.Speed.Mul(dt))
}

// Bouncer oscillates its entity vertically around the height it started at. The
// phase comes from accumulated simulation time, so runs are reproducible.
type Bouncer struct {
	Height float64
	Speed  float64

	baseY   float64
	elapsed float64
}

func NewBouncer() *Bouncer { return &Bouncer{Height: 2, Speed: 2} }

func (b *Bouncer) Name() string { return "bouncer" }

func (b *Bouncer) Start(e *scene.Entity) {
	b.baseY = e.Transform().Position().Y()
}

func (b *Bouncer) Update(e *scene.Entity, dt float64) {
	b.elapsed += dt
	p := e.Transform().Position()
	p[1] = b.baseY + math.Sin(b.elapsed*b.Speed)*b.Height
	e.Transform().SetPositionVec(p)
}

// Follower eases its entity toward a target's world position plus an offset.
type Follower struct {
	Target     *scene.Entity
	Offset     vmath.Vec3
	Smoothness float64
}

func NewFollower(target *scene.Entity) *Follower {
	return &Follower{Target: target, Offset: vmath.Vec3{0, 2, 5}, Smoothness: 5}
}

func (f *Follower) Name() string { return "follower" }

func (f *Follower) Update(e *scene.Entity, dt float64) {
	if f.Target == nil {
		return
	}
	if f.Target.Destroyed() {
		f.Target = nil
		return
	}
	goal := f.Target.WorldPosition().Add(f.Offset)
	delta := goal.Sub(e.WorldPosition())
	// Never step past the goal on long frames.
	step := math.Min(1, f.Smoothness*dt)
	e.Transform().TranslateVec(delta.Mul(step))
}

// Key is a logical movement control, independent of any physical keyboard layout.
type Key uint8

const (
	KeyForward Key = iota
	KeyBack
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyBoost
)

// Input is the host-supplied view of pressed controls.
type Input interface {
	Pressed(k Key) bool
}

// KeySet is a plain Input backed by a map.
type KeySet map[Key]bool

func (k KeySet) Pressed(key Key) bool { return k[key] }

// FreeFlyer moves its entity along the pressed directions; boost doubles the speed.
type FreeFlyer struct {
	Input     Input
	MoveSpeed float64
}

func NewFreeFlyer(in Input) *FreeFlyer {
	return &FreeFlyer{Input: in, MoveSpeed: 20}
}

func (f *FreeFlyer) Name() string { return "free_flyer" }

func (f *FreeFlyer) Update(e *scene.Entity, dt float64) {
	if f.Input == nil {
		return
	}
	var dir vmath.Vec3
	axis := func(neg, pos Key, i int) {
		if f.Input.Pressed(neg) {
			dir[i]--
		}
		if f.Input.Pressed(pos) {
			dir[i]++
		}
	}
	axis(KeyLeft, KeyRight, 0)
	axis(KeyDown, KeyUp, 1)
	axis(KeyForward, KeyBack, 2)
	if dir == vmath.Zero {
		return
	}
	speed := f.MoveSpeed
	if f.Input.Pressed(KeyBoost) {
		speed *= 2
	}
	e.Transform().TranslateVec(vmath.Normalize(dir).Mul(speed * dt))
}
