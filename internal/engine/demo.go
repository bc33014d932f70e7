package engine

import (
	"fmt"

	"github.com/zeusync/scenecore/internal/core/animation"
	"github.com/zeusync/scenecore/internal/core/asset"
	"github.com/zeusync/scenecore/internal/core/particles"
	"github.com/zeusync/scenecore/internal/core/physics"
	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/scripting"
	"github.com/zeusync/scenecore/internal/core/vmath"
)

// DemoCrates is the number of falling crates BuildDemo drops onto the ground.
const DemoCrates = 3

// BuildDemo populates the scene with a small showcase: a static ground, falling
// crates, a spinning pyramid, a bouncing sphere, a pulsing cylinder driven by a
// clip, a particle fountain and a camera rig following the first crate.
func (e *Engine) BuildDemo() error {
	mat := func(name string) *asset.Material {
		m, ok := e.library.Material(name)
		if !ok {
			return asset.DefaultMaterial()
		}
		return m.Clone()
	}

	ground, err := e.CreateEntity("ground", nil)
	if err != nil {
		return err
	}
	ground.Transform().SetPosition(0, -0.25, 0)
	ground.Transform().SetScale(20, 0.5, 20)
	scene.AddMesh(ground, asset.NewGeometry(asset.GeometryBox, asset.Params{}), mat("White"))
	floor := physics.AddBody(ground, e.physics)
	floor.Kinematic = true
	floor.UseGravity = false
	physics.AddCollider(ground, e.physics)

	colors := []string{"Red", "Green", "Blue"}
	first, err := e.CreateEntity("crate-0", nil)
	if err != nil {
		return err
	}
	first.AddTag("crate")
	scene.AddMesh(first, asset.NewGeometry(asset.GeometryBox, asset.Params{}), mat(colors[0]))
	physics.AddBody(first, e.physics)
	physics.AddCollider(first, e.physics)
	for i := range DemoCrates {
		crate := first
		if i > 0 {
			if crate, err = e.Duplicate(first, nil); err != nil {
				return err
			}
			crate.SetName(fmt.Sprintf("crate-%d", i))
			if m, ok := scene.Get[*scene.Mesh](crate); ok {
				m.Material = mat(colors[i%len(colors)])
			}
		}
		crate.Transform().SetPosition(float64(i*2-2), 3+float64(i)*2, 0)
		body, _ := scene.Get[*physics.Body](crate)
		if err := body.SetMass(1 + float64(i)); err != nil {
			return err
		}
	}

	spinner, err := e.CreateEntity("spinner", nil)
	if err != nil {
		return err
	}
	spinner.Transform().SetPosition(-5, 1, -3)
	scene.AddMesh(spinner, asset.NewGeometry(asset.GeometryPyramid, asset.Params{}), mat("Green"))
	rot := scripting.NewRotator()
	rot.Speed = vmath.Vec3{0, 1.5, 0}
	scripting.AddScript(spinner, e.scripts).Add(rot)

	bobber, err := e.CreateEntity("bobber", nil)
	if err != nil {
		return err
	}
	bobber.Transform().SetPosition(5, 1, -3)
	scene.AddMesh(bobber, asset.NewGeometry(asset.GeometrySphere, asset.Params{Radius: 0.5}), mat("Blue"))
	scripting.AddScript(bobber, e.scripts).Add(scripting.NewBouncer())

	pulse := animation.NewClip("pulse", 2)
	for _, ch := range []animation.Channel{animation.ScaleX, animation.ScaleY, animation.ScaleZ} {
		pulse.AddKeyframe(ch, 0, 1)
		pulse.AddKeyframe(ch, 1, 1.5)
		pulse.AddKeyframe(ch, 2, 1)
	}
	interp, err := animation.ParseInterpolation(e.cfg.Animation.Interpolation)
	if err != nil {
		return err
	}
	pulse.Interpolation = interp
	e.AddClip(pulse)

	pillar, err := e.CreateEntity("pillar", nil)
	if err != nil {
		return err
	}
	pillar.Transform().SetPosition(0, 1, -6)
	scene.AddMesh(pillar, asset.NewGeometry(asset.GeometryCylinder, asset.Params{}), mat("Red"))
	anim := animation.AddAnimator(pillar, e.cfg.Animation.BlendDuration)
	anim.AddClip(pulse)
	anim.PlayDefault("pulse")

	fountain, err := e.CreateEntity("fountain", nil)
	if err != nil {
		return err
	}
	fountain.Transform().SetPosition(0, 0, 6)
	em := particles.AddEmitter(fountain, 1)
	em.Rate = 30
	em.MaxParticles = 300

	camera, err := e.CreateEntity("camera", nil)
	if err != nil {
		return err
	}
	camera.Transform().SetPosition(0, 5, 10)
	scripting.AddScript(camera, e.scripts).Add(scripting.NewFollower(first))

	e.log.Info("demo scene built")
	return nil
}
