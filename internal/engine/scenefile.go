package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/scenecore/internal/core/animation"
	"github.com/zeusync/scenecore/internal/core/asset"
	"github.com/zeusync/scenecore/internal/core/observability/log"
	"github.com/zeusync/scenecore/internal/core/particles"
	"github.com/zeusync/scenecore/internal/core/physics"
	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/scripting"
	"github.com/zeusync/scenecore/internal/core/vmath"
)

var (
	ErrUnknownMaterial = errors.New("unknown material")
	ErrUnknownClip     = errors.New("unknown clip")
	ErrUnknownTarget   = errors.New("unknown follow target")
)

// SceneFile describes entities, materials and clips to spawn into an engine.
//
//	materials:
//	  - {name: Orange, color: [1, 0.5, 0]}
//	entities:
//	  - name: crate
//	    position: [0, 5, 0]
//	    mesh: {geometry: box, material: Orange}
//	    body: {mass: 2}
//	    collider: {shape: box}
//	    scripts:
//	      - {type: rotator, params: {speed: [0, 1, 0]}}
type SceneFile struct {
	Materials []MaterialDef          `yaml:"materials"`
	Clips     []animation.ClipConfig `yaml:"clips"`
	Entities  []EntityDef            `yaml:"entities"`
}

type MaterialDef struct {
	Name  string     `yaml:"name"`
	Color [3]float64 `yaml:"color,flow"`
}

type EntityDef struct {
	Name     string      `yaml:"name"`
	Active   *bool       `yaml:"active,omitempty"`
	Tags     []string    `yaml:"tags,flow,omitempty"`
	Position *[3]float64 `yaml:"position,flow,omitempty"`
	Rotation *[3]float64 `yaml:"rotation,flow,omitempty"`
	Scale    *[3]float64 `yaml:"scale,flow,omitempty"`

	Mesh     *MeshDef     `yaml:"mesh,omitempty"`
	Body     *BodyDef     `yaml:"body,omitempty"`
	Collider *ColliderDef `yaml:"collider,omitempty"`
	Animator *AnimatorDef `yaml:"animator,omitempty"`
	Emitter  *EmitterDef  `yaml:"emitter,omitempty"`
	Scripts  []ScriptDef  `yaml:"scripts,omitempty"`
	Children []EntityDef  `yaml:"children,omitempty"`
}

type MeshDef struct {
	Geometry asset.GeometryKind `yaml:"geometry"`
	Params   asset.Params       `yaml:"params,omitempty"`
	Material string             `yaml:"material,omitempty"`
}

type BodyDef struct {
	Mass        *float64    `yaml:"mass,omitempty"`
	Friction    *float64    `yaml:"friction,omitempty"`
	Restitution *float64    `yaml:"restitution,omitempty"`
	UseGravity  *bool       `yaml:"use_gravity,omitempty"`
	Kinematic   bool        `yaml:"kinematic,omitempty"`
	Velocity    *[3]float64 `yaml:"velocity,flow,omitempty"`
	Angular     *[3]float64 `yaml:"angular_velocity,flow,omitempty"`
}

type ColliderDef struct {
	Shape       string      `yaml:"shape,omitempty"`
	HalfExtents *[3]float64 `yaml:"half_extents,flow,omitempty"`
	Trigger     bool        `yaml:"trigger,omitempty"`
}

type AnimatorDef struct {
	Clips []string `yaml:"clips"`
	Play  string   `yaml:"play,omitempty"`
	Loop  *bool    `yaml:"loop,omitempty"`
}

type EmitterDef struct {
	Seed         uint64      `yaml:"seed"`
	Rate         *float64    `yaml:"rate,omitempty"`
	Lifetime     *float64    `yaml:"lifetime,omitempty"`
	MaxParticles int         `yaml:"max_particles,omitempty"`
	Speed        *[3]float64 `yaml:"speed,flow,omitempty"`
	Gravity      *float64    `yaml:"gravity,omitempty"`
	Color        *[3]float64 `yaml:"color,flow,omitempty"`
	Stopped      bool        `yaml:"stopped,omitempty"`
}

type ScriptDef struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params,omitempty"`
}

// DecodeSceneFile parses a YAML scene description.
func DecodeSceneFile(r io.Reader) (*SceneFile, error) {
	var f SceneFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing scene file: %w", err)
	}
	return &f, nil
}

// LoadSceneFile reads path and spawns its contents. See Spawn.
func (e *Engine) LoadSceneFile(path string) ([]*scene.Entity, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scene file: %w", err)
	}
	defer fh.Close()

	f, err := DecodeSceneFile(fh)
	if err != nil {
		return nil, err
	}
	return e.Spawn(f)
}

type pendingFollow struct {
	follower *scripting.Follower
	target   string
}

// Spawn registers f's materials and clips, then creates its entity trees as scene
// roots. On error, entities spawned so far are destroyed again.
func (e *Engine) Spawn(f *SceneFile) ([]*scene.Entity, error) {
	for _, m := range f.Materials {
		e.library.AddMaterial(asset.NewMaterial(m.Name, asset.Color{R: m.Color[0], G: m.Color[1], B: m.Color[2]}))
	}

	set := animation.ClipSet{Clips: make([]animation.ClipConfig, len(f.Clips))}
	for i, cc := range f.Clips {
		if cc.Interpolation == "" {
			cc.Interpolation = e.cfg.Animation.Interpolation
		}
		set.Clips[i] = cc
	}
	clips, err := set.Build()
	if err != nil {
		return nil, err
	}
	for _, c := range clips {
		e.AddClip(c)
	}

	var (
		roots   []*scene.Entity
		follows []pendingFollow
	)
	fail := func(err error) ([]*scene.Entity, error) {
		for _, r := range roots {
			e.RemoveEntity(r)
		}
		return nil, err
	}
	for i := range f.Entities {
		root, err := e.spawn(&f.Entities[i], nil, &follows)
		if root != nil {
			roots = append(roots, root)
		}
		if err != nil {
			return fail(err)
		}
	}
	for _, p := range follows {
		target, ok := e.scene.FindByName(p.target)
		if !ok {
			return fail(fmt.Errorf("%w: %s", ErrUnknownTarget, p.target))
		}
		p.follower.Target = target
	}

	e.log.Info("scene spawned",
		log.Int("roots", len(roots)),
		log.Int("entities", e.scene.Len()),
		log.Int("clips", len(clips)))
	return roots, nil
}

func (e *Engine) spawn(def *EntityDef, parent *scene.Entity, follows *[]pendingFollow) (*scene.Entity, error) {
	ent, err := e.CreateEntity(def.Name, parent)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", def.Name, err)
	}
	if err := e.populate(ent, def, follows); err != nil {
		return ent, fmt.Errorf("entity %s: %w", def.Name, err)
	}
	for i := range def.Children {
		if _, err := e.spawn(&def.Children[i], ent, follows); err != nil {
			return ent, err
		}
	}
	return ent, nil
}

func (e *Engine) populate(ent *scene.Entity, def *EntityDef, follows *[]pendingFollow) error {
	if def.Active != nil {
		ent.SetActive(*def.Active)
	}
	for _, tag := range def.Tags {
		ent.AddTag(tag)
	}
	t := ent.Transform()
	if def.Position != nil {
		t.SetPositionVec(vmath.FromArray(*def.Position))
	}
	if def.Rotation != nil {
		t.SetRotationVec(vmath.FromArray(*def.Rotation))
	}
	if def.Scale != nil {
		t.SetScaleVec(vmath.FromArray(*def.Scale))
	}

	if m := def.Mesh; m != nil {
		mat := asset.DefaultMaterial()
		if m.Material != "" {
			found, ok := e.library.Material(m.Material)
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownMaterial, m.Material)
			}
			mat = found.Clone()
		}
		kind := m.Geometry
		if kind == "" {
			kind = asset.GeometryBox
		}
		scene.AddMesh(ent, asset.NewGeometry(kind, m.Params), mat)
	}

	if b := def.Body; b != nil {
		body := physics.AddBody(ent, e.physics)
		if b.Mass != nil {
			if err := body.SetMass(*b.Mass); err != nil {
				return err
			}
		}
		if b.Friction != nil {
			body.SetFriction(*b.Friction)
		}
		if b.Restitution != nil {
			body.SetRestitution(*b.Restitution)
		}
		if b.UseGravity != nil {
			body.UseGravity = *b.UseGravity
		}
		body.Kinematic = b.Kinematic
		if b.Velocity != nil {
			body.Velocity = vmath.FromArray(*b.Velocity)
		}
		if b.Angular != nil {
			body.AngularVelocity = vmath.FromArray(*b.Angular)
		}
	}

	if c := def.Collider; c != nil {
		col := physics.AddCollider(ent, e.physics)
		if c.Shape != "" {
			shape, err := physics.ParseShape(c.Shape)
			if err != nil {
				return err
			}
			col.Shape = shape
		}
		if c.HalfExtents != nil {
			col.HalfExtents = vmath.FromArray(*c.HalfExtents)
		}
		col.Trigger = c.Trigger
	}

	if a := def.Animator; a != nil {
		anim := animation.AddAnimator(ent, e.cfg.Animation.BlendDuration)
		for _, name := range a.Clips {
			clip, ok := e.clips[name]
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownClip, name)
			}
			anim.AddClip(clip)
		}
		if a.Play != "" {
			loop := true
			if a.Loop != nil {
				loop = *a.Loop
			}
			if !anim.Play(a.Play, loop) {
				return fmt.Errorf("%w: %s", ErrUnknownClip, a.Play)
			}
		}
	}

	if em := def.Emitter; em != nil {
		emitter := particles.AddEmitter(ent, em.Seed)
		if em.Rate != nil {
			emitter.Rate = *em.Rate
		}
		if em.Lifetime != nil {
			emitter.Lifetime = *em.Lifetime
		}
		if em.MaxParticles > 0 {
			emitter.MaxParticles = em.MaxParticles
		}
		if em.Speed != nil {
			emitter.Speed = vmath.FromArray(*em.Speed)
		}
		if em.Gravity != nil {
			emitter.Gravity = *em.Gravity
		}
		if em.Color != nil {
			emitter.Color = asset.Color{R: em.Color[0], G: em.Color[1], B: em.Color[2]}
		}
		if em.Stopped {
			emitter.Stop()
		}
	}

	if len(def.Scripts) > 0 {
		script := scripting.AddScript(ent, e.scripts)
		for _, sd := range def.Scripts {
			b, err := e.registry.New(sd.Type, sd.Params)
			if err != nil {
				return err
			}
			if f, ok := b.(*scripting.Follower); ok {
				if target, ok := sd.Params["target"].(string); ok && target != "" {
					*follows = append(*follows, pendingFollow{follower: f, target: target})
				}
			}
			script.Add(b)
		}
	}
	return nil
}
