package asset

import "sort"

// Library is a lookup of named materials and prototype geometries.
type Library struct {
	materials map[string]*Material
	meshes    map[GeometryKind]*Geometry
}

// NewLibrary returns a library preloaded with the stock materials and one
// prototype per geometry kind.
func NewLibrary() *Library {
	lib := &Library{
		materials: make(map[string]*Material),
		meshes:    make(map[GeometryKind]*Geometry),
	}
	for _, m := range []*Material{
		DefaultMaterial(),
		NewMaterial("Red", Color{R: 1}),
		NewMaterial("Green", Color{G: 1}),
		NewMaterial("Blue", Color{B: 1}),
		NewMaterial("White", Color{R: 1, G: 1, B: 1}),
		NewMaterial("Black", Color{}),
	} {
		lib.materials[m.Name] = m
	}
	for _, k := range Kinds() {
		lib.meshes[k] = NewGeometry(k, Params{})
	}
	return lib
}

// AddMaterial registers or replaces a material.
func (l *Library) AddMaterial(m *Material) {
	l.materials[m.Name] = m
}

// Material returns the named material, if present.
func (l *Library) Material(name string) (*Material, bool) {
	m, ok := l.materials[name]
	return m, ok
}

// Geometry returns a fresh copy of the prototype for kind. Unknown kinds yield an
// empty geometry and false.
func (l *Library) Geometry(kind GeometryKind) (*Geometry, bool) {
	g, ok := l.meshes[kind]
	if !ok {
		return NewGeometry(kind, Params{}), false
	}
	return g.Clone(), true
}

// MaterialNames returns the registered material names, sorted.
func (l *Library) MaterialNames() []string {
	names := make([]string, 0, len(l.materials))
	for name := range l.materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
