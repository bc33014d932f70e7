package scripting

import (
	"slices"

	"github.com/zeusync/scenecore/internal/core/scene"
)

// Script is the component that owns an entity's behavior instances and keeps
// them registered with a scheduler.
type Script struct {
	scene.Base
	scheduler *Scheduler
	instances []*Instance
}

// AddScript attaches a Script bound to sched, or returns the existing one.
func AddScript(e *scene.Entity, sched *Scheduler) *Script {
	return scene.Attach(e, scene.KindScript, func(e *scene.Entity) *Script {
		return &Script{Base: scene.NewBase(e), scheduler: sched}
	})
}

func (s *Script) Kind() scene.Kind { return scene.KindScript }

// Add hosts b on the entity and registers it with the scheduler.
func (s *Script) Add(b Behavior) *Instance {
	inst := &Instance{behavior: b, script: s}
	s.instances = append(s.instances, inst)
	if s.scheduler != nil {
		s.scheduler.Register(inst)
	}
	return inst
}

// Remove deregisters inst and runs its teardown hook.
func (s *Script) Remove(inst *Instance) bool {
	i := slices.Index(s.instances, inst)
	if i < 0 {
		return false
	}
	s.instances = slices.Delete(s.instances, i, i+1)
	if s.scheduler != nil {
		s.scheduler.Deregister(inst)
	}
	inst.destroy()
	return true
}

func (s *Script) Instances() []*Instance {
	return slices.Clone(s.instances)
}

// Find returns the first instance whose behavior has the given name.
func (s *Script) Find(name string) (*Instance, bool) {
	for _, inst := range s.instances {
		if inst.behavior.Name() == name {
			return inst, true
		}
	}
	return nil, false
}

// OnDestroy deregisters every instance.
func (s *Script) OnDestroy() {
	for _, inst := range slices.Clone(s.instances) {
		s.Remove(inst)
	}
}
