package animation

import (
	"fmt"
	"math"

	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/vmath"
)

// Channel names one scalar of a transform.
type Channel uint8

const (
	PositionX Channel = iota
	PositionY
	PositionZ
	RotationX
	RotationY
	RotationZ
	ScaleX
	ScaleY
	ScaleZ

	channelCount
)

var channelNames = [channelCount]string{
	"position.x", "position.y", "position.z",
	"rotation.x", "rotation.y", "rotation.z",
	"scale.x", "scale.y", "scale.z",
}

func (c Channel) String() string {
	if c >= channelCount {
		return "unknown"
	}
	return channelNames[c]
}

// ParseChannel maps names like "position.y" onto a Channel.
func ParseChannel(name string) (Channel, error) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("animation: unknown channel %q", name)
}

// Clip is a named bundle of channel curves with a fixed duration.
type Clip struct {
	Name          string
	Duration      float64
	Loop          bool
	Speed         float64
	Interpolation Interpolation

	curves [channelCount]Curve
}

func NewClip(name string, duration float64) *Clip {
	return &Clip{
		Name:     name,
		Duration: math.Max(0, duration),
		Loop:     true,
		Speed:    1,
	}
}

// AddKeyframe keys channel ch at time t. The duration grows to cover t.
func (c *Clip) AddKeyframe(ch Channel, t, v float64) {
	if ch >= channelCount {
		return
	}
	c.curves[ch].Add(t, v)
	if t > c.Duration {
		c.Duration = t
	}
}

// Curve returns the curve for ch.
func (c *Clip) Curve(ch Channel) *Curve {
	if ch >= channelCount {
		return nil
	}
	return &c.curves[ch]
}

// Sample evaluates every keyed channel at t.
func (c *Clip) Sample(t float64) Pose {
	var p Pose
	for ch := Channel(0); ch < channelCount; ch++ {
		if v, ok := c.curves[ch].Evaluate(t, c.Interpolation); ok {
			p.Values[ch] = v
			p.Mask |= 1 << ch
		}
	}
	return p
}

// Pose is a sampled set of channel values. Only channels present in Mask carry data.
type Pose struct {
	Values [channelCount]float64
	Mask   uint16
}

func (p Pose) Has(ch Channel) bool {
	return ch < channelCount && p.Mask&(1<<ch) != 0
}

// Apply writes the keyed channels onto t, leaving the rest untouched.
func (p Pose) Apply(t *scene.Transform) {
	if p.Mask == 0 || t == nil {
		return
	}
	if pos, ok := p.merge(PositionX, t.Position()); ok {
		t.SetPositionVec(pos)
	}
	if rot, ok := p.merge(RotationX, t.Rotation()); ok {
		t.SetRotationVec(rot)
	}
	if s, ok := p.merge(ScaleX, t.Scale()); ok {
		t.SetScaleVec(s)
	}
}

func (p Pose) merge(first Channel, cur vmath.Vec3) (vmath.Vec3, bool) {
	changed := false
	for i := range 3 {
		ch := first + Channel(i)
		if p.Has(ch) {
			cur[i] = p.Values[ch]
			changed = true
		}
	}
	return cur, changed
}
