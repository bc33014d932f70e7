package scripting

import (
	"slices"

	"github.com/zeusync/scenecore/internal/core/observability/log"
	"github.com/zeusync/scenecore/internal/core/scene"
)

// Scheduler dispatches lifecycle phases to registered instances in registration
// order. Each phase iterates a snapshot of the list, so registrations made during a
// phase take effect from the next one. Instances removed mid-phase are skipped.
type Scheduler struct {
	instances []*Instance
	scratch   []*Instance
	depth     int
	log       log.Log
}

func NewScheduler(logger log.Log) *Scheduler {
	return &Scheduler{
		log: log.OrNop(logger).With(log.String("component", "scripting")),
	}
}

// Register adds inst once.
func (s *Scheduler) Register(inst *Instance) {
	if inst == nil || slices.Contains(s.instances, inst) {
		return
	}
	s.instances = append(s.instances, inst)
	s.log.Debug("behavior registered",
		log.String("behavior", inst.behavior.Name()),
		log.String("entity", inst.Entity().Name()))
}

func (s *Scheduler) Deregister(inst *Instance) {
	if i := slices.Index(s.instances, inst); i >= 0 {
		s.instances = slices.Delete(s.instances, i, i+1)
	}
}

func (s *Scheduler) Len() int { return len(s.instances) }

func (s *Scheduler) Instances() []*Instance {
	return slices.Clone(s.instances)
}

// each iterates a snapshot of the instance list. Only the outermost dispatch
// reuses the scratch buffer; a nested one, such as a Broadcast sent from inside
// Update, takes its own copy.
func (s *Scheduler) each(fn func(*Instance)) {
	var list []*Instance
	if s.depth == 0 {
		s.scratch = append(s.scratch[:0], s.instances...)
		list = s.scratch
	} else {
		list = slices.Clone(s.instances)
	}
	s.depth++
	defer func() {
		s.depth--
		if s.depth == 0 {
			clear(s.scratch)
		}
	}()
	for _, inst := range list {
		if inst.runnable() {
			fn(inst)
		}
	}
}

// Update runs the variable-rate phase.
func (s *Scheduler) Update(dt float64) {
	s.each(func(inst *Instance) {
		inst.ensureStarted()
		if u, ok := inst.behavior.(Updater); ok {
			u.Update(inst.Entity(), dt)
		}
	})
}

// FixedUpdate runs once per physics tick.
func (s *Scheduler) FixedUpdate(dt float64) {
	s.each(func(inst *Instance) {
		inst.ensureStarted()
		if u, ok := inst.behavior.(FixedUpdater); ok {
			u.FixedUpdate(inst.Entity(), dt)
		}
	})
}

// LateUpdate runs after the scene update.
func (s *Scheduler) LateUpdate(dt float64) {
	s.each(func(inst *Instance) {
		inst.ensureStarted()
		if u, ok := inst.behavior.(LateUpdater); ok {
			u.LateUpdate(inst.Entity(), dt)
		}
	})
}

// Broadcast delivers msg to every runnable Receiver.
func (s *Scheduler) Broadcast(msg string, payload any) {
	s.each(func(inst *Instance) {
		if r, ok := inst.behavior.(Receiver); ok {
			r.Receive(inst.Entity(), msg, payload)
		}
	})
}

// ContactBegan, ContactStay and ContactEnded forward collision transitions to the
// ContactHandler behaviors on both entities.
func (s *Scheduler) ContactBegan(a, b *scene.Entity) {
	s.contact(a, b, ContactHandler.CollisionEnter)
}

func (s *Scheduler) ContactStay(a, b *scene.Entity) {
	s.contact(a, b, ContactHandler.CollisionStay)
}

func (s *Scheduler) ContactEnded(a, b *scene.Entity) {
	s.contact(a, b, ContactHandler.CollisionExit)
}

func (s *Scheduler) contact(a, b *scene.Entity, hook func(ContactHandler, *scene.Entity, *scene.Entity)) {
	s.each(func(inst *Instance) {
		h, ok := inst.behavior.(ContactHandler)
		if !ok {
			return
		}
		switch inst.Entity() {
		case a:
			hook(h, a, b)
		case b:
			hook(h, b, a)
		}
	})
}
