package mesh

import (
	"errors"
	"fmt"
)

// ErrDuplicateName is returned when a group already holds a mesh by that name.
var ErrDuplicateName = errors.New("duplicate mesh name")

// Group maps names to meshes and remembers insertion order.
type Group struct {
	names  []string
	meshes map[string]*Mesh
}

// NewGroup creates an empty group.
func NewGroup() *Group {
	return &Group{meshes: make(map[string]*Mesh)}
}

// Add stores m under name and sets m.Name.
func (g *Group) Add(name string, m *Mesh) error {
	if _, ok := g.meshes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	m.Name = name
	g.names = append(g.names, name)
	g.meshes[name] = m
	return nil
}

// Get returns the mesh stored under name.
func (g *Group) Get(name string) (*Mesh, bool) {
	m, ok := g.meshes[name]
	return m, ok
}

// Names returns the mesh names in insertion order.
func (g *Group) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Len returns the number of meshes.
func (g *Group) Len() int { return len(g.names) }
