package asset

import (
	"fmt"
	"math"
)

// Color is a linear RGB triple in [0, 1].
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
}

// CSS renders the color as an rgb() string for host UIs.
func (c Color) CSS() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int {
	return int(math.Floor(v * 255))
}

// Material is a named flat color.
type Material struct {
	Name  string
	Color Color
}

func NewMaterial(name string, color Color) *Material {
	return &Material{Name: name, Color: color}
}

func (m *Material) Clone() *Material {
	return &Material{Name: m.Name, Color: m.Color}
}

// DefaultMaterial is the material new meshes start with.
func DefaultMaterial() *Material {
	return NewMaterial("Default", Color{R: 0, G: 1, B: 0.8})
}
