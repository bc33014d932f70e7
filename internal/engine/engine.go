// Package engine assembles one simulation: the scene, physics world, behavior
// scheduler, event bus and fixed-timestep loop, built from a single config.
package engine

import (
	"context"
	"fmt"

	"github.com/zeusync/scenecore/internal/core/animation"
	"github.com/zeusync/scenecore/internal/core/asset"
	"github.com/zeusync/scenecore/internal/core/config"
	"github.com/zeusync/scenecore/internal/core/events/bus"
	"github.com/zeusync/scenecore/internal/core/loop"
	"github.com/zeusync/scenecore/internal/core/observability/log"
	"github.com/zeusync/scenecore/internal/core/particles"
	"github.com/zeusync/scenecore/internal/core/physics"
	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/scripting"
	"github.com/zeusync/scenecore/internal/core/snapshot"
	"github.com/zeusync/scenecore/internal/core/vmath"
	"github.com/zeusync/scenecore/internal/telemetry"
)

// Engine is the root of one simulation. It is not safe for concurrent use; every
// method runs on the goroutine driving the loop.
type Engine struct {
	cfg *config.Config
	log log.Log

	scene    *scene.Scene
	physics  *physics.Engine
	scripts  *scripting.Scheduler
	bus      *bus.Bus
	loop     *loop.Loop
	library  *asset.Library
	registry *scripting.Registry
	clips    map[string]*animation.Clip
}

// New builds an engine from cfg. A nil cfg uses the defaults.
func New(cfg *config.Config, logger log.Log) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	logger = log.OrNop(logger)

	model, err := physics.ParseImpulseModel(cfg.Physics.ImpulseModel)
	if err != nil {
		return nil, err
	}
	world := physics.NewEngine(physics.Options{
		Gravity:   vmath.FromArray(cfg.Physics.Gravity),
		TimeScale: cfg.Physics.TimeScale,
		Model:     model,
	}, logger)

	e := &Engine{
		cfg:      cfg,
		log:      logger.With(log.String("component", "engine")),
		scene:    scene.New(logger),
		physics:  world,
		scripts:  scripting.NewScheduler(logger),
		bus:      bus.New(),
		library:  asset.NewLibrary(),
		registry: scripting.DefaultRegistry(),
		clips:    make(map[string]*animation.Clip),
	}

	e.loop, err = loop.New(loop.Config{
		FixedDelta:    cfg.Loop.FixedDelta,
		MaxFrameDelta: cfg.Loop.MaxFrameDelta,
	}, e.scene, e.physics, e.scripts, logger)
	if err != nil {
		return nil, err
	}

	e.scene.Subscribe(&sceneEvents{engine: e})
	e.physics.AddListener(e.scripts)
	e.physics.AddListener(&contactEvents{engine: e})
	return e, nil
}

func (e *Engine) Config() *config.Config                    { return e.cfg }
func (e *Engine) Scene() *scene.Scene                       { return e.scene }
func (e *Engine) Physics() *physics.Engine                  { return e.physics }
func (e *Engine) Scripts() *scripting.Scheduler             { return e.scripts }
func (e *Engine) Bus() *bus.Bus                             { return e.bus }
func (e *Engine) Loop() *loop.Loop                          { return e.loop }
func (e *Engine) Library() *asset.Library                   { return e.library }
func (e *Engine) Registry() *scripting.Registry             { return e.registry }
func (e *Engine) Logger() log.Log                           { return e.log }
func (e *Engine) AddObserver(o loop.Observer)               { e.loop.AddObserver(o) }
func (e *Engine) Frame() uint64                             { return e.loop.FrameCount() }
func (e *Engine) SimTime() float64                          { return e.loop.SimTime() }
func (e *Engine) Step(raw float64) (loop.FrameStats, error) { return e.loop.Frame(raw) }

// AddClip registers a clip in the engine-wide clip library used by scene files.
func (e *Engine) AddClip(c *animation.Clip) {
	if c != nil {
		e.clips[c.Name] = c
	}
}

func (e *Engine) Clip(name string) (*animation.Clip, bool) {
	c, ok := e.clips[name]
	return c, ok
}

// Start moves the loop to running and announces it on the bus.
func (e *Engine) Start() error {
	if err := e.loop.Start(); err != nil {
		return err
	}
	e.log.Debug("engine started",
		log.Int("entities", e.scene.Len()),
		log.Int("subscribers", e.bus.Subscribers()))
	e.publish(bus.Event{Type: bus.LoopStarted})
	return nil
}

// Stop halts the loop. Stopping an engine that is not running is a no-op.
func (e *Engine) Stop() {
	if e.loop.State() != loop.Running {
		return
	}
	e.loop.Stop()
	e.publish(bus.Event{Type: bus.LoopStopped, Data: e.loop.SimTime()})
}

// Run drives the loop from d until ctx ends or d runs dry. The loop is stopped
// on return.
func (e *Engine) Run(ctx context.Context, d loop.Driver) error {
	if e.loop.State() == loop.Idle {
		if err := e.Start(); err != nil {
			return err
		}
	}
	if e.loop.State() != loop.Running {
		return loop.ErrNotRunning
	}
	err := e.loop.Run(ctx, d)
	e.publish(bus.Event{Type: bus.LoopStopped, Data: e.loop.SimTime()})
	return err
}

// CreateEntity creates an entity under parent, or as a root when parent is nil.
func (e *Engine) CreateEntity(name string, parent *scene.Entity) (*scene.Entity, error) {
	return e.scene.CreateEntity(name, parent)
}

// RemoveEntity destroys ent and its subtree, releasing every physics and script
// registration they hold.
func (e *Engine) RemoveEntity(ent *scene.Entity) {
	e.scene.Remove(ent)
}

// Duplicate clones src and its subtree under parent, or as a root when parent is
// nil. Meshes, tags, bodies and colliders are copied; scripts, animators and
// emitters are not.
func (e *Engine) Duplicate(src, parent *scene.Entity) (*scene.Entity, error) {
	if src == nil || src.Scene() != e.scene || src.Destroyed() {
		return nil, scene.ErrForeignScene
	}
	if parent != nil && parent.Scene() != e.scene {
		return nil, scene.ErrForeignScene
	}
	dup := src.Clone()
	copyPhysics(src, dup)
	var err error
	if parent != nil {
		err = parent.AddChild(dup)
	} else {
		err = e.scene.Add(dup)
	}
	if err != nil {
		dup.Destroy()
		return nil, err
	}
	return dup, nil
}

// copyPhysics walks the source tree and its clone in step.
func copyPhysics(src, dst *scene.Entity) {
	if b, ok := scene.Get[*physics.Body](src); ok {
		b.CopyTo(dst)
	}
	if c, ok := scene.Get[*physics.Collider](src); ok {
		c.CopyTo(dst)
	}
	kids, copies := src.Children(), dst.Children()
	for i := range min(len(kids), len(copies)) {
		copyPhysics(kids[i], copies[i])
	}
}

// Broadcast delivers msg to every Receiver behavior and publishes it on the bus.
func (e *Engine) Broadcast(msg string, payload any) {
	e.scripts.Broadcast(msg, payload)
	e.publish(bus.Event{Type: bus.Message, Source: msg, Data: payload})
}

// Capture records the current scene.
func (e *Engine) Capture() snapshot.Snapshot {
	return snapshot.Capture(e.scene, e.loop.FrameCount())
}

// Restore replaces the scene's contents with snap's entities, resolving materials
// and geometries against the engine library. An invalid snapshot leaves the scene
// untouched.
func (e *Engine) Restore(snap snapshot.Snapshot) ([]*scene.Entity, error) {
	if err := snapshot.Validate(snap); err != nil {
		return nil, err
	}
	e.scene.Clear()
	return snapshot.Restore(e.scene, snap, e.library)
}

// Gauges reports world sizes for telemetry.
func (e *Engine) Gauges() telemetry.Gauges {
	g := telemetry.Gauges{
		Entities:  e.scene.Len(),
		Bodies:    e.physics.BodyCount(),
		Colliders: e.physics.ColliderCount(),
		Scripts:   e.scripts.Len(),

		EventsTotal: e.bus.Metrics().Published,
	}
	e.scene.Walk(func(ent *scene.Entity) bool {
		if em, ok := scene.Get[*particles.Emitter](ent); ok {
			g.Particles += em.Len()
		}
		return true
	})
	return g
}

func (e *Engine) publish(ev bus.Event) {
	ev.Frame = e.loop.FrameCount()
	if ev.Source == "" {
		ev.Source = "engine"
	}
	if err := e.bus.Publish(ev); err != nil {
		e.log.Warn("event handler failed", log.String("type", string(ev.Type)), log.Error(err))
	}
}
