package animation

import (
	"sort"

	"github.com/zeusync/scenecore/internal/core/scene"
)

// DefaultBlendDuration is the cross-fade gate in seconds when none is configured.
const DefaultBlendDuration = 0.5

type State uint8

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Animator plays clips onto its entity's transform. A clip requested while another
// is active becomes the blend target and takes over once the blend gate completes;
// sampled values are never averaged.
type Animator struct {
	scene.Base

	clips   map[string]*Clip
	current *Clip
	time    float64
	state   State
	loop    bool

	target        *Clip
	targetLoop    bool
	blendProgress float64
	blendDuration float64
}

// AddAnimator attaches an animator to e, or returns the existing one.
func AddAnimator(e *scene.Entity, blendDuration float64) *Animator {
	return scene.Attach(e, scene.KindAnimator, func(e *scene.Entity) *Animator {
		return NewAnimator(e, blendDuration)
	})
}

func NewAnimator(e *scene.Entity, blendDuration float64) *Animator {
	if blendDuration <= 0 {
		blendDuration = DefaultBlendDuration
	}
	return &Animator{
		Base:          scene.NewBase(e),
		clips:         make(map[string]*Clip),
		blendDuration: blendDuration,
	}
}

func (a *Animator) Kind() scene.Kind { return scene.KindAnimator }

func (a *Animator) AddClip(c *Clip) {
	if c != nil {
		a.clips[c.Name] = c
	}
}

func (a *Animator) Clip(name string) (*Clip, bool) {
	c, ok := a.clips[name]
	return c, ok
}

func (a *Animator) ClipNames() []string {
	names := make([]string, 0, len(a.clips))
	for n := range a.clips {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Current returns the active clip name, or "" when nothing has played yet.
func (a *Animator) Current() string {
	if a.current == nil {
		return ""
	}
	return a.current.Name
}

func (a *Animator) Time() float64 { return a.time }
func (a *Animator) State() State  { return a.state }

// Blend returns the pending target clip name and gate progress in [0, 1).
func (a *Animator) Blend() (string, float64) {
	if a.target == nil {
		return "", 0
	}
	return a.target.Name, a.blendProgress
}

func (a *Animator) BlendDuration() float64 { return a.blendDuration }

// Play starts the named clip. With nothing active the clip starts immediately;
// otherwise it becomes the blend target. Unknown names are ignored.
func (a *Animator) Play(name string, loop bool) bool {
	clip, ok := a.clips[name]
	if !ok {
		return false
	}
	switch {
	case a.current == nil:
		a.start(clip, loop)
	case a.current == clip:
		a.target = nil
		a.blendProgress = 0
		a.loop = loop
		if a.state != Playing {
			a.start(clip, loop)
		}
	case a.target != clip:
		a.target = clip
		a.targetLoop = loop
		a.blendProgress = 0
	}
	return true
}

func (a *Animator) start(c *Clip, loop bool) {
	a.current = c
	a.time = 0
	a.loop = loop
	a.state = Playing
}

func (a *Animator) Pause() {
	if a.state == Playing {
		a.state = Paused
	}
}

func (a *Animator) Resume() {
	if a.state == Paused {
		a.state = Playing
	}
}

// Stop halts playback, rewinds to 0 and drops any pending blend.
func (a *Animator) Stop() {
	a.state = Stopped
	a.time = 0
	a.target = nil
	a.blendProgress = 0
}

// Update advances playback and applies the sampled pose.
func (a *Animator) Update(dt float64) {
	if a.current == nil {
		return
	}
	if a.state == Playing {
		a.advance(dt)
		a.current.Sample(a.time).Apply(a.Entity().Transform())
	}
	if a.target != nil {
		a.blendProgress += dt / a.blendDuration
		if a.blendProgress >= 1 {
			a.start(a.target, a.targetLoop)
			a.target = nil
			a.blendProgress = 0
		}
	}
}

func (a *Animator) advance(dt float64) {
	speed := a.current.Speed
	a.time += dt * speed
	if a.time < 0 {
		a.time = 0
	}
	if a.time >= a.current.Duration {
		if a.loop {
			a.time = 0
			return
		}
		a.time = a.current.Duration
		a.state = Stopped
	}
}

// PlayDefault plays the named clip with the clip's own loop setting.
func (a *Animator) PlayDefault(name string) bool {
	clip, ok := a.clips[name]
	if !ok {
		return false
	}
	return a.Play(name, clip.Loop)
}
