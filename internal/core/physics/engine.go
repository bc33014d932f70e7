// Package physics integrates rigid bodies at a fixed rate and resolves
// axis-aligned box contacts with a velocity-only impulse model.
package physics

import (
	"bytes"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/scenecore/internal/core/observability/log"
	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/vmath"
)

// ImpulseModel selects how the contact impulse is scaled.
type ImpulseModel uint8

const (
	// Normalized divides the impulse by the summed inverse mass of the movable
	// sides, so equal-mass elastic bodies exchange velocities.
	Normalized ImpulseModel = iota
	// Raw applies (1+e)·(v1−v2) directly, scaled only by each side's 1/mass.
	Raw
)

func (m ImpulseModel) String() string {
	if m == Raw {
		return "raw"
	}
	return "normalized"
}

func ParseImpulseModel(name string) (ImpulseModel, error) {
	switch name {
	case "", "normalized":
		return Normalized, nil
	case "raw":
		return Raw, nil
	default:
		return Normalized, ErrUnknownImpulseModel
	}
}

// ContactListener observes the start, continuation and end of overlaps between
// two colliding entities.
type ContactListener interface {
	ContactBegan(a, b *scene.Entity)
	ContactStay(a, b *scene.Entity)
	ContactEnded(a, b *scene.Entity)
}

type Options struct {
	Gravity   vmath.Vec3
	TimeScale float64
	Model     ImpulseModel
}

func DefaultOptions() Options {
	return Options{Gravity: vmath.Vec3{0, -9.81, 0}, TimeScale: 1}
}

// StepStats describes the work done by the last Step.
type StepStats struct {
	Integrated  int
	PairsTested int
	Overlaps    int
	Resolved    int
	Contacts    int
}

type contact struct {
	a, b *Collider
}

type contactEvent struct {
	kind int
	a, b *scene.Entity
}

const (
	eventBegan = iota
	eventStay
	eventEnded
)

// Engine holds non-owning registration lists of bodies and colliders. Components
// register themselves when attached and deregister when destroyed.
type Engine struct {
	bodies    []*Body
	colliders []*Collider

	gravity   vmath.Vec3
	timeScale float64
	model     ImpulseModel

	listeners    []ContactListener
	contacts     map[uint64]contact
	contactOrder []uint64
	current      map[uint64]contact
	currentOrder []uint64
	events       []contactEvent
	scratch      []*Collider
	depth        int
	last         StepStats

	log log.Log
}

func NewEngine(opts Options, logger log.Log) *Engine {
	if opts.TimeScale < 0 {
		opts.TimeScale = 0
	}
	return &Engine{
		gravity:   opts.Gravity,
		timeScale: opts.TimeScale,
		model:     opts.Model,
		contacts:  make(map[uint64]contact),
		current:   make(map[uint64]contact),
		log:       log.OrNop(logger).With(log.String("component", "physics")),
	}
}

func (e *Engine) Gravity() vmath.Vec3     { return e.gravity }
func (e *Engine) SetGravity(g vmath.Vec3) { e.gravity = g }
func (e *Engine) TimeScale() float64      { return e.timeScale }
func (e *Engine) Model() ImpulseModel     { return e.model }
func (e *Engine) SetModel(m ImpulseModel) { e.model = m }
func (e *Engine) LastStep() StepStats     { return e.last }
func (e *Engine) BodyCount() int          { return len(e.bodies) }
func (e *Engine) ColliderCount() int      { return len(e.colliders) }

func (e *Engine) AddListener(l ContactListener) {
	if l != nil {
		e.listeners = append(e.listeners, l)
	}
}

func (e *Engine) SetTimeScale(s float64) error {
	if s < 0 {
		return ErrNegativeTimeScale
	}
	e.timeScale = s
	return nil
}

func (e *Engine) RegisterBody(b *Body) {
	if b == nil || slices.Contains(e.bodies, b) {
		return
	}
	e.bodies = append(e.bodies, b)
	e.log.Debug("body registered", log.String("entity", b.Entity().Name()))
}

func (e *Engine) DeregisterBody(b *Body) {
	if i := slices.Index(e.bodies, b); i >= 0 {
		e.bodies = slices.Delete(e.bodies, i, i+1)
	}
}

func (e *Engine) RegisterCollider(c *Collider) {
	if c == nil || slices.Contains(e.colliders, c) {
		return
	}
	e.colliders = append(e.colliders, c)
	e.log.Debug("collider registered", log.String("entity", c.Entity().Name()), log.Stringer("shape", c.Shape))
}

// DeregisterCollider removes c and silently drops any contact it was part of.
func (e *Engine) DeregisterCollider(c *Collider) {
	i := slices.Index(e.colliders, c)
	if i < 0 {
		return
	}
	e.colliders = slices.Delete(e.colliders, i, i+1)
	for k, ct := range e.contacts {
		if ct.a == c || ct.b == c {
			delete(e.contacts, k)
		}
	}
}

// Step advances the world by dt scaled by the time scale: integration first, then
// the exhaustive pair test with resolution and callbacks, then contact transitions.
func (e *Engine) Step(dt float64) {
	dt *= e.timeScale
	e.last = StepStats{}

	for _, b := range slices.Clone(e.bodies) {
		if b.Kinematic || !b.Enabled() || !b.Entity().ActiveInHierarchy() {
			continue
		}
		b.integrate(dt, e.gravity)
		e.last.Integrated++
	}

	e.detect()
	e.flushContacts()
	e.last.Contacts = len(e.contacts)
}

// detect runs the pair test over a snapshot of the collider list. A Step issued
// from an OnCollision callback detects over its own copy.
func (e *Engine) detect() {
	var cols []*Collider
	if e.depth == 0 {
		e.scratch = append(e.scratch[:0], e.colliders...)
		cols = e.scratch
	} else {
		cols = slices.Clone(e.colliders)
	}
	e.depth++
	defer func() {
		e.depth--
		if e.depth == 0 {
			clear(e.scratch)
		}
	}()
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			c1, c2 := cols[i], cols[j]
			if !e.live(c1) || !e.live(c2) {
				continue
			}
			e.last.PairsTested++
			if !c1.Intersects(c2) {
				continue
			}
			e.last.Overlaps++

			b1, ok1 := scene.Get[*Body](c1.Entity())
			b2, ok2 := scene.Get[*Body](c2.Entity())
			if ok1 && ok2 && !c1.Trigger && !c2.Trigger {
				if e.resolve(b1, b2) {
					e.last.Resolved++
				}
			}
			if c1.OnCollision != nil {
				c1.OnCollision(c1, c2)
			}
			if c2.OnCollision != nil {
				c2.OnCollision(c2, c1)
			}
			k := pairKey(c1, c2)
			if _, dup := e.current[k]; !dup {
				e.currentOrder = append(e.currentOrder, k)
			}
			e.current[k] = contact{a: c1, b: c2}
		}
	}
}

// live skips colliders removed or deactivated by a callback earlier in the pass.
func (e *Engine) live(c *Collider) bool {
	ent := c.Entity()
	return ent != nil && !ent.Destroyed() && ent.ActiveInHierarchy()
}

// flushContacts diffs this tick's overlaps against the previous tick's and reports
// transitions in detection order.
func (e *Engine) flushContacts() {
	for _, k := range e.currentOrder {
		ct := e.current[k]
		if !e.live(ct.a) || !e.live(ct.b) {
			delete(e.current, k)
			continue
		}
		kind := eventBegan
		if _, ok := e.contacts[k]; ok {
			kind = eventStay
		}
		e.events = append(e.events, contactEvent{kind: kind, a: ct.a.Entity(), b: ct.b.Entity()})
	}
	for _, k := range e.contactOrder {
		ct, ok := e.contacts[k]
		if !ok {
			continue
		}
		if _, still := e.current[k]; !still {
			e.events = append(e.events, contactEvent{kind: eventEnded, a: ct.a.Entity(), b: ct.b.Entity()})
		}
	}

	e.contacts, e.current = e.current, e.contacts
	e.contactOrder, e.currentOrder = e.currentOrder, e.contactOrder[:0]
	clear(e.current)

	for _, ev := range e.events {
		for _, l := range e.listeners {
			switch ev.kind {
			case eventBegan:
				l.ContactBegan(ev.a, ev.b)
			case eventStay:
				l.ContactStay(ev.a, ev.b)
			case eventEnded:
				l.ContactEnded(ev.a, ev.b)
			}
		}
	}
	clear(e.events)
	e.events = e.events[:0]
}

// resolve applies the contact impulse to b1 and b2. Kinematic sides are left
// untouched; a pair with no movable side is skipped.
func (e *Engine) resolve(b1, b2 *Body) bool {
	inv1, inv2 := b1.inverseMass(), b2.inverseMass()
	if inv1 == 0 && inv2 == 0 {
		return false
	}
	rel := b1.Velocity.Sub(b2.Velocity)
	restitution := min(b1.restitution, b2.restitution)
	k := 1.0
	if e.model == Normalized {
		k = 1 / (inv1 + inv2)
	}
	j := rel.Mul((1 + restitution) * k)
	if !b1.Kinematic {
		b1.Velocity = b1.Velocity.Sub(j.Mul(inv1))
	}
	if !b2.Kinematic {
		b2.Velocity = b2.Velocity.Add(j.Mul(inv2))
	}
	return true
}

// pairKey hashes the two entity ids in a fixed order.
func pairKey(a, b *Collider) uint64 {
	ida, idb := a.Entity().ID(), b.Entity().ID()
	if bytes.Compare(ida[:], idb[:]) > 0 {
		ida, idb = idb, ida
	}
	var buf [32]byte
	copy(buf[:16], ida[:])
	copy(buf[16:], idb[:])
	return xxhash.Sum64(buf[:])
}
