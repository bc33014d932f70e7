// Package snapshot converts a scene to and from plain per-entity records.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/zeusync/scenecore/internal/core/asset"
	"github.com/zeusync/scenecore/internal/core/scene"
	"github.com/zeusync/scenecore/internal/core/vmath"
)

// Version is bumped when the record layout changes incompatibly.
const Version = 1

var (
	ErrBadParent = errors.New("snapshot: parent index must refer to an earlier record")
	ErrVersion   = errors.New("snapshot: unsupported version")
)

// Record is one entity. Parent is the index of the parent record, or -1 for roots.
type Record struct {
	Name     string             `json:"name" yaml:"name"`
	Parent   int                `json:"parent" yaml:"parent"`
	Active   bool               `json:"active" yaml:"active"`
	Tags     []string           `json:"tags,omitempty" yaml:"tags,flow,omitempty"`
	Position [3]float64         `json:"position" yaml:"position,flow"`
	Rotation [3]float64         `json:"rotation" yaml:"rotation,flow"`
	Scale    [3]float64         `json:"scale" yaml:"scale,flow"`
	Geometry asset.GeometryKind `json:"geometry,omitempty" yaml:"geometry,omitempty"`
	Params   *asset.Params      `json:"params,omitempty" yaml:"params,omitempty"`
	Material string             `json:"material,omitempty" yaml:"material,omitempty"`
	Color    [3]float64         `json:"color" yaml:"color,flow"`
}

type Snapshot struct {
	Version  int      `json:"version" yaml:"version"`
	Frame    uint64   `json:"frame" yaml:"frame"`
	Entities []Record `json:"entities" yaml:"entities"`
}

// Capture records every entity of s depth-first, parents before children.
func Capture(s *scene.Scene, frame uint64) Snapshot {
	snap := Snapshot{Version: Version, Frame: frame, Entities: make([]Record, 0, s.Len())}
	index := make(map[*scene.Entity]int, s.Len())
	s.Walk(func(e *scene.Entity) bool {
		parent := -1
		if p := e.Parent(); p != nil {
			if i, ok := index[p]; ok {
				parent = i
			}
		}
		index[e] = len(snap.Entities)
		snap.Entities = append(snap.Entities, record(e, parent))
		return true
	})
	return snap
}

func record(e *scene.Entity, parent int) Record {
	t := e.Transform()
	r := Record{
		Name:     e.Name(),
		Parent:   parent,
		Active:   e.Active(),
		Tags:     e.Tags(),
		Position: vmath.Array(t.Position()),
		Rotation: vmath.Array(t.Rotation()),
		Scale:    vmath.Array(t.Scale()),
	}
	if m, ok := scene.Get[*scene.Mesh](e); ok {
		if m.Geometry != nil {
			r.Geometry = m.Geometry.Kind
			if m.Geometry.Params != (asset.Params{}) {
				p := m.Geometry.Params
				r.Params = &p
			}
		}
		if m.Material != nil {
			r.Material = m.Material.Name
			r.Color = [3]float64{m.Material.Color.R, m.Material.Color.G, m.Material.Color.B}
		}
	}
	return r
}

// Validate checks the version and that every parent index points at an earlier record.
func Validate(snap Snapshot) error {
	if snap.Version != 0 && snap.Version != Version {
		return fmt.Errorf("%w: %d", ErrVersion, snap.Version)
	}
	for i, r := range snap.Entities {
		if r.Parent >= i {
			return fmt.Errorf("%w: record %d (%s) names %d", ErrBadParent, i, r.Name, r.Parent)
		}
	}
	return nil
}

// Restore rebuilds the recorded entities into s, alongside whatever s already
// holds, and returns them in record order. Materials are looked up in lib by name
// and recolored from the record; names lib does not know become new materials.
func Restore(s *scene.Scene, snap Snapshot, lib *asset.Library) ([]*scene.Entity, error) {
	if err := Validate(snap); err != nil {
		return nil, err
	}
	if lib == nil {
		lib = asset.NewLibrary()
	}
	out := make([]*scene.Entity, 0, len(snap.Entities))
	for _, r := range snap.Entities {
		var parent *scene.Entity
		if r.Parent >= 0 {
			parent = out[r.Parent]
		}
		e, err := s.CreateEntity(r.Name, parent)
		if err != nil {
			return out, fmt.Errorf("restoring %s: %w", r.Name, err)
		}
		e.SetActive(r.Active)
		for _, tag := range r.Tags {
			e.AddTag(tag)
		}
		t := e.Transform()
		t.SetPositionVec(vmath.FromArray(r.Position))
		t.SetRotationVec(vmath.FromArray(r.Rotation))
		t.SetScaleVec(vmath.FromArray(r.Scale))

		if r.Geometry != "" || r.Material != "" {
			scene.AddMesh(e, geometry(r, lib), material(r, lib))
		}
		out = append(out, e)
	}
	return out, nil
}

func geometry(r Record, lib *asset.Library) *asset.Geometry {
	if r.Params != nil {
		return asset.NewGeometry(r.Geometry, *r.Params)
	}
	g, _ := lib.Geometry(r.Geometry)
	return g
}

func material(r Record, lib *asset.Library) *asset.Material {
	color := asset.Color{R: r.Color[0], G: r.Color[1], B: r.Color[2]}
	if m, ok := lib.Material(r.Material); ok {
		m = m.Clone()
		m.Color = color
		return m
	}
	return asset.NewMaterial(r.Material, color)
}
