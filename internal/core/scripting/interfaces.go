// Package scripting runs per-entity behaviors in the update, fixed-update and
// late-update phases of a frame.
package scripting

import "github.com/zeusync/scenecore/internal/core/scene"

// Behavior is user logic hosted by a Script component. Everything beyond Name is
// optional and discovered through the hook interfaces below.
type Behavior interface {
	Name() string
}

// Starter runs once, before the first phase the instance takes part in.
type Starter interface {
	Start(e *scene.Entity)
}

type Updater interface {
	Update(e *scene.Entity, dt float64)
}

type FixedUpdater interface {
	FixedUpdate(e *scene.Entity, dt float64)
}

type LateUpdater interface {
	LateUpdate(e *scene.Entity, dt float64)
}

// ContactHandler receives collision transitions involving the owning entity.
type ContactHandler interface {
	CollisionEnter(e, other *scene.Entity)
	CollisionStay(e, other *scene.Entity)
	CollisionExit(e, other *scene.Entity)
}

// Receiver handles messages sent through Scheduler.Broadcast.
type Receiver interface {
	Receive(e *scene.Entity, msg string, payload any)
}

// Destroyer runs when the instance is removed or its entity destroyed.
type Destroyer interface {
	Destroy(e *scene.Entity)
}
