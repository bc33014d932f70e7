// Package asset holds the plain-data geometry and material handles entities carry
// for the renderer. Nothing here touches GPU state.
package asset

import "math"

// GeometryKind tags a procedural mesh.
type GeometryKind string

const (
	GeometryBox      GeometryKind = "box"
	GeometrySphere   GeometryKind = "sphere"
	GeometryCylinder GeometryKind = "cylinder"
	GeometryPlane    GeometryKind = "plane"
	GeometryPyramid  GeometryKind = "pyramid"
)

// Kinds lists every supported geometry kind in a stable order.
func Kinds() []GeometryKind {
	return []GeometryKind{GeometryBox, GeometrySphere, GeometryCylinder, GeometryPlane, GeometryPyramid}
}

const ringSegments = 16

// Params carries the optional dimensions of a geometry. Zero fields fall back to
// per-kind defaults.
type Params struct {
	Size   float64 `json:"size,omitempty" yaml:"size,omitempty"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Depth  float64 `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// Geometry is generated vertex/index data for one mesh.
type Geometry struct {
	Kind     GeometryKind
	Params   Params
	Vertices [][3]float64
	Indices  []int
}

// NewGeometry generates geometry for kind. Unknown kinds produce an empty geometry
// that still carries the requested tag.
func NewGeometry(kind GeometryKind, p Params) *Geometry {
	g := &Geometry{Kind: kind, Params: p}
	g.generate()
	return g
}

// Empty reports whether the geometry has no vertices.
func (g *Geometry) Empty() bool {
	return len(g.Vertices) == 0
}

func (g *Geometry) Clone() *Geometry {
	return NewGeometry(g.Kind, g.Params)
}

func (g *Geometry) generate() {
	switch g.Kind {
	case GeometryBox:
		s := orDefault(g.Params.Size, 1) / 2
		g.Vertices = [][3]float64{
			{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s},
			{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s},
		}
		g.Indices = []int{0, 1, 2, 0, 2, 3, 4, 6, 5, 4, 7, 6, 0, 4, 5, 0, 5, 1, 2, 6, 7, 2, 7, 3, 0, 3, 7, 0, 7, 4, 1, 5, 6, 1, 6, 2}
	case GeometrySphere:
		r := orDefault(g.Params.Radius, 1)
		for i := 0; i <= ringSegments; i++ {
			phi := math.Pi * float64(i) / ringSegments
			for j := 0; j < ringSegments; j++ {
				theta := 2 * math.Pi * float64(j) / ringSegments
				g.Vertices = append(g.Vertices, [3]float64{
					r * math.Sin(phi) * math.Cos(theta),
					r * math.Cos(phi),
					r * math.Sin(phi) * math.Sin(theta),
				})
			}
		}
	case GeometryCylinder:
		r := orDefault(g.Params.Radius, 1)
		h := orDefault(g.Params.Height, 2)
		for i := 0; i < ringSegments; i++ {
			a := 2 * math.Pi * float64(i) / ringSegments
			g.Vertices = append(g.Vertices,
				[3]float64{r * math.Cos(a), h / 2, r * math.Sin(a)},
				[3]float64{r * math.Cos(a), -h / 2, r * math.Sin(a)},
			)
		}
	case GeometryPlane:
		w := orDefault(g.Params.Width, 1)
		d := orDefault(g.Params.Depth, 1)
		g.Vertices = [][3]float64{{-w / 2, 0, -d / 2}, {w / 2, 0, -d / 2}, {w / 2, 0, d / 2}, {-w / 2, 0, d / 2}}
		g.Indices = []int{0, 1, 2, 0, 2, 3}
	case GeometryPyramid:
		s := orDefault(g.Params.Size, 1)
		g.Vertices = [][3]float64{
			{-s / 2, 0, -s / 2}, {s / 2, 0, -s / 2}, {s / 2, 0, s / 2}, {-s / 2, 0, s / 2},
			{0, s, 0},
		}
		g.Indices = []int{0, 1, 4, 1, 2, 4, 2, 3, 4, 3, 0, 4, 0, 2, 1, 0, 3, 2}
	}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
