// Package world implements the level graph of rooms, portals and
// sculptures: construction from a mesh group, position lookup, collision
// dispatch and the portal-limited draw traversal.
package world

import (
	"github.com/Faultbox/manor/internal/mesh"
	"github.com/Faultbox/manor/pkg/geom"
)

// NodeID is the index of a node in its world. Node.ID always equals it.
type NodeID int

// NoNode marks the absence of a node.
const NoNode NodeID = -1

// Kind discriminates the node variants.
type Kind uint8

// Node kinds.
const (
	KindRoom Kind = iota + 1
	KindPortal
	KindSculpture
)

func (k Kind) String() string {
	switch k {
	case KindRoom:
		return "room"
	case KindPortal:
		return "portal"
	case KindSculpture:
		return "sculpture"
	default:
		return "unknown"
	}
}

// Room is the payload of a KindRoom node.
type Room struct {
	Declared   int // numeric id from the mesh name
	Portals    []NodeID
	Sculptures []NodeID
}

// Portal is the payload of a KindPortal node. It joins two rooms.
type Portal struct {
	Front NodeID
	Back  NodeID
}

// Sculpture is the payload of a KindSculpture node.
type Sculpture struct {
	Owner NodeID
}

// Node is one element of the world graph. Only the payload matching Kind
// is meaningful.
type Node struct {
	ID   NodeID
	Kind Kind
	Name string
	Mesh *mesh.Mesh
	BBox geom.BBox

	Room      Room
	Portal    Portal
	Sculpture Sculpture

	visited bool
}
