package scripting

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zeusync/scenecore/internal/core/vmath"
)

// Factory builds a behavior from loosely typed parameters, as found in scene files.
type Factory func(params map[string]any) (Behavior, error)

// Registry maps behavior type names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding the built-in behaviors that can be
// configured from parameters alone.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("rotator", func(p map[string]any) (Behavior, error) {
		b := NewRotator()
		if v, ok, err := vecParam(p, "speed"); err != nil {
			return nil, err
		} else if ok {
			b.Speed = v
		}
		return b, nil
	})
	r.Register("bouncer", func(p map[string]any) (Behavior, error) {
		b := NewBouncer()
		if err := floatParam(p, "height", &b.Height); err != nil {
			return nil, err
		}
		if err := floatParam(p, "speed", &b.Speed); err != nil {
			return nil, err
		}
		return b, nil
	})
	// The follow target is resolved by whoever spawns the entity.
	r.Register("follower", func(p map[string]any) (Behavior, error) {
		b := NewFollower(nil)
		if v, ok, err := vecParam(p, "offset"); err != nil {
			return nil, err
		} else if ok {
			b.Offset = v
		}
		if err := floatParam(p, "smoothness", &b.Smoothness); err != nil {
			return nil, err
		}
		return b, nil
	})
	return r
}

func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	r.factories[name] = f
	r.mu.Unlock()
}

func (r *Registry) New(name string, params map[string]any) (Behavior, error) {
	r.mu.RLock()
	f := r.factories[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("unknown behavior: %s", name)
	}
	return f(params)
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func floatParam(p map[string]any, key string, dst *float64) error {
	raw, ok := p[key]
	if !ok {
		return nil
	}
	f, ok := toFloat(raw)
	if !ok {
		return fmt.Errorf("param %s: expected number, got %T", key, raw)
	}
	*dst = f
	return nil
}

func vecParam(p map[string]any, key string) (vmath.Vec3, bool, error) {
	raw, ok := p[key]
	if !ok {
		return vmath.Zero, false, nil
	}
	list, ok := raw.([]any)
	if !ok || len(list) != 3 {
		return vmath.Zero, false, fmt.Errorf("param %s: expected [x, y, z]", key)
	}
	var v vmath.Vec3
	for i, item := range list {
		f, ok := toFloat(item)
		if !ok {
			return vmath.Zero, false, fmt.Errorf("param %s: expected number, got %T", key, item)
		}
		v[i] = f
	}
	return v, true, nil
}
