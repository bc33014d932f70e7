package scene

import "github.com/zeusync/scenecore/internal/core/asset"

// Mesh attaches renderable geometry and a material to an entity. The simulation
// only carries the handles; drawing is left to whoever reads them.
type Mesh struct {
	Base
	Geometry *asset.Geometry
	Material *asset.Material
	Visible  bool
}

func (m *Mesh) Kind() Kind { return KindMesh }

// AddMesh attaches a mesh to e, or returns the existing one untouched.
func AddMesh(e *Entity, g *asset.Geometry, mat *asset.Material) *Mesh {
	return Attach(e, KindMesh, func(e *Entity) *Mesh {
		if g == nil {
			g = asset.NewGeometry(asset.GeometryBox, asset.Params{})
		}
		if mat == nil {
			mat = asset.DefaultMaterial()
		}
		return &Mesh{Base: NewBase(e), Geometry: g, Material: mat, Visible: true}
	})
}

func (m *Mesh) copyTo(e *Entity) {
	var g *asset.Geometry
	if m.Geometry != nil {
		g = m.Geometry.Clone()
	}
	var mat *asset.Material
	if m.Material != nil {
		mat = m.Material.Clone()
	}
	c := AddMesh(e, g, mat)
	c.Visible = m.Visible
	c.SetEnabled(m.Enabled())
}
