package scripting

import "github.com/zeusync/scenecore/internal/core/scene"

// Instance is one behavior bound to one entity.
type Instance struct {
	behavior Behavior
	script   *Script

	disabled  bool
	started   bool
	destroyed bool
}

func (i *Instance) Behavior() Behavior    { return i.behavior }
func (i *Instance) Entity() *scene.Entity { return i.script.Entity() }
func (i *Instance) Enabled() bool         { return !i.disabled }
func (i *Instance) SetEnabled(v bool)     { i.disabled = !v }
func (i *Instance) Started() bool         { return i.started }
func (i *Instance) Destroyed() bool       { return i.destroyed }

// runnable reports whether the instance should receive hooks this phase.
func (i *Instance) runnable() bool {
	if i.disabled || i.destroyed || !i.script.Enabled() {
		return false
	}
	e := i.script.Entity()
	return e != nil && e.ActiveInHierarchy()
}

func (i *Instance) ensureStarted() {
	if i.started {
		return
	}
	i.started = true
	if s, ok := i.behavior.(Starter); ok {
		s.Start(i.Entity())
	}
}

func (i *Instance) destroy() {
	if i.destroyed {
		return
	}
	i.destroyed = true
	if d, ok := i.behavior.(Destroyer); ok {
		d.Destroy(i.Entity())
	}
}
