// Package animation evaluates keyframed transform curves and drives clip playback
// on entities.
package animation

import (
	"fmt"
	"sort"

	"github.com/zeusync/scenecore/internal/core/vmath"
)

// Interpolation selects how a clip shapes the fraction between two keyframes.
// One policy applies to every curve of a clip.
type Interpolation uint8

const (
	Linear Interpolation = iota
	Eased
)

func (i Interpolation) String() string {
	if i == Eased {
		return "eased"
	}
	return "linear"
}

// ParseInterpolation maps a config name onto an Interpolation.
func ParseInterpolation(name string) (Interpolation, error) {
	switch name {
	case "", "linear":
		return Linear, nil
	case "eased":
		return Eased, nil
	default:
		return Linear, fmt.Errorf("animation: unknown interpolation %q", name)
	}
}

// ease is quadratic ease-in-out.
func ease(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := 1 - t
	return 1 - 2*u*u
}

func (i Interpolation) shape(t float64) float64 {
	if i == Eased {
		return ease(t)
	}
	return t
}

type Keyframe struct {
	Time  float64 `json:"t" yaml:"t"`
	Value float64 `json:"v" yaml:"v"`
}

// Curve is a time-ordered list of keyframes for one scalar channel.
type Curve struct {
	keys []Keyframe
}

// Add inserts a keyframe, keeping the list sorted by time. Keyframes sharing a
// time stay in insertion order.
func (c *Curve) Add(t, v float64) {
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Time > t })
	c.keys = append(c.keys, Keyframe{})
	copy(c.keys[i+1:], c.keys[i:])
	c.keys[i] = Keyframe{Time: t, Value: v}
}

func (c *Curve) Len() int { return len(c.keys) }

// Keys returns a copy of the keyframes.
func (c *Curve) Keys() []Keyframe {
	return append([]Keyframe(nil), c.keys...)
}

// Evaluate samples the curve at t. Outside the keyed range the nearest boundary
// value is returned. An empty curve yields false.
func (c *Curve) Evaluate(t float64, interp Interpolation) (float64, bool) {
	n := len(c.keys)
	if n == 0 {
		return 0, false
	}
	if t <= c.keys[0].Time {
		return c.keys[0].Value, true
	}
	if t >= c.keys[n-1].Time {
		return c.keys[n-1].Value, true
	}
	i := sort.Search(n, func(i int) bool { return c.keys[i].Time > t }) - 1
	a, b := c.keys[i], c.keys[i+1]
	span := b.Time - a.Time
	if span <= 0 {
		return b.Value, true
	}
	f := interp.shape((t - a.Time) / span)
	return vmath.Lerp(a.Value, b.Value, f), true
}
