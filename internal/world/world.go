package world

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/manor/internal/mesh"
	"github.com/Faultbox/manor/pkg/geom"
	"github.com/Faultbox/manor/pkg/math"
)

var (
	ErrNoRooms        = errors.New("level has no rooms")
	ErrDanglingRoom   = errors.New("reference to unknown room")
	ErrDuplicateRoom  = errors.New("duplicated room id")
	ErrBadName        = errors.New("malformed node name")
	ErrDegenerateMesh = errors.New("degenerate mesh")
)

var namePattern = regexp.MustCompile(`^([RPS])_(\d+)(?:_(\d+))?$`)

// World owns the node arena built from a level's mesh group. Rooms come
// first sorted by declared id, then portals, then sculptures.
type World struct {
	nodes []Node
	group *mesh.Group
	log   *zap.Logger

	frustum    geom.Frustum
	hasFrustum bool
}

type entry struct {
	name   string
	kind   byte
	id1    int
	id2    int
	hasID2 bool
	mesh   *mesh.Mesh
}

// New builds the world graph from group. Mesh names select the node kind:
// R_<id> is a room, P_<id1>_<id2> a portal with front room id1 and back room
// id2, S_<id> a sculpture owned by room id. A sculpture may carry a second
// number (S_<id>_<n>) so that a room can own several; a second number on a
// room is ignored. A portal may lead back into its own room. Other names are
// ignored. Every topology problem found is reported in the returned error.
func New(group *mesh.Group, log *zap.Logger) (*World, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		rooms, portals, sculptures []entry
		errs                       error
	)

	for _, name := range group.Names() {
		m := namePattern.FindStringSubmatch(name)
		if m == nil {
			log.Debug("ignoring mesh", zap.String("name", name))
			continue
		}
		e := entry{name: name, kind: m[1][0]}
		e.mesh, _ = group.Get(name)

		var err error
		if e.id1, err = strconv.Atoi(m[2]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s: %v", ErrBadName, name, err))
			continue
		}
		if m[3] != "" {
			e.hasID2 = true
			if e.id2, err = strconv.Atoi(m[3]); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s: %v", ErrBadName, name, err))
				continue
			}
		}

		switch {
		case e.kind == 'P' && !e.hasID2:
			errs = multierr.Append(errs, fmt.Errorf("%w: portal %s needs two room ids", ErrBadName, name))
		case e.kind == 'R':
			// A second number on a room is a tag; the room keeps id1.
			rooms = append(rooms, e)
		case e.kind == 'P':
			portals = append(portals, e)
		default:
			sculptures = append(sculptures, e)
		}
	}

	w := &World{
		nodes: make([]Node, 0, len(rooms)+len(portals)+len(sculptures)),
		group: group,
		log:   log,
	}

	// Rooms, sorted by declared id.
	sort.SliceStable(rooms, func(i, j int) bool { return rooms[i].id1 < rooms[j].id1 })
	index := make(map[int]NodeID, len(rooms))
	for _, e := range rooms {
		if prev, ok := index[e.id1]; ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s and %s", ErrDuplicateRoom, w.nodes[prev].Name, e.name))
			continue
		}
		n, err := w.appendNode(e, KindRoom)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		n.Room.Declared = e.id1
		index[e.id1] = n.ID
	}
	if len(rooms) == 0 {
		errs = multierr.Append(errs, ErrNoRooms)
	}

	lookup := func(e entry, id int) (NodeID, bool) {
		ref, ok := index[id]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s references room %d", ErrDanglingRoom, e.name, id))
		}
		return ref, ok
	}

	// Portals, prepended to both rooms.
	sortByName(portals)
	for _, e := range portals {
		front, okf := lookup(e, e.id1)
		back, okb := lookup(e, e.id2)
		if !okf || !okb {
			continue
		}
		n, err := w.appendNode(e, KindPortal)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		n.Portal = Portal{Front: front, Back: back}
		w.nodes[front].Room.Portals = prepend(w.nodes[front].Room.Portals, n.ID)
		if back != front {
			w.nodes[back].Room.Portals = prepend(w.nodes[back].Room.Portals, n.ID)
		}
	}

	// Sculptures, prepended to their owner.
	sortByName(sculptures)
	for _, e := range sculptures {
		owner, ok := lookup(e, e.id1)
		if !ok {
			continue
		}
		n, err := w.appendNode(e, KindSculpture)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		n.Sculpture = Sculpture{Owner: owner}
		w.nodes[owner].Room.Sculptures = prepend(w.nodes[owner].Room.Sculptures, n.ID)
	}

	if errs != nil {
		return nil, fmt.Errorf("building world: %w", errs)
	}

	log.Info("world built",
		zap.Int("rooms", len(rooms)),
		zap.Int("portals", len(portals)),
		zap.Int("sculptures", len(sculptures)))
	for i := range w.nodes {
		n := &w.nodes[i]
		log.Debug("node",
			zap.Int("id", int(n.ID)),
			zap.Stringer("kind", n.Kind),
			zap.String("name", n.Name),
			zap.Any("center", n.BBox.Center),
			zap.Any("extent", n.BBox.Extent))
	}
	return w, nil
}

// appendNode adds a node for e. The returned pointer is valid until the
// next append; capacity is reserved up front so earlier pointers survive.
func (w *World) appendNode(e entry, kind Kind) (*Node, error) {
	if e.mesh == nil {
		return nil, fmt.Errorf("%w: %s has no mesh", ErrDegenerateMesh, e.name)
	}
	box, err := e.mesh.ComputeBBox(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDegenerateMesh, e.name, err)
	}
	w.nodes = append(w.nodes, Node{
		ID:   NodeID(len(w.nodes)),
		Kind: kind,
		Name: e.name,
		Mesh: e.mesh,
		BBox: box,
	})
	return &w.nodes[len(w.nodes)-1], nil
}

func sortByName(entries []entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
}

func prepend(ids []NodeID, id NodeID) []NodeID {
	return append([]NodeID{id}, ids...)
}

// Free releases the nodes and the mesh group. The world is empty afterwards.
func (w *World) Free() {
	w.nodes = nil
	w.group = nil
}

// Group returns the mesh group the world was built from.
func (w *World) Group() *mesh.Group { return w.group }

// Len returns the number of nodes.
func (w *World) Len() int { return len(w.nodes) }

// Node returns the node with the given id.
func (w *World) Node(id NodeID) (*Node, bool) {
	if !w.valid(id) {
		return nil, false
	}
	return &w.nodes[id], true
}

// Rooms returns the ids of all rooms in arena order.
func (w *World) Rooms() []NodeID {
	var ids []NodeID
	for i := range w.nodes {
		if w.nodes[i].Kind == KindRoom {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

func (w *World) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(w.nodes)
}

// NodeAt returns the first room or portal, scanning from index 1, whose
// box contains pos. Reaching a sculpture ends the scan without a result.
func (w *World) NodeAt(pos math.Vec3) (NodeID, bool) {
	for i := 1; i < len(w.nodes); i++ {
		n := &w.nodes[i]
		if n.Kind == KindSculpture {
			return NoNode, false
		}
		if n.BBox.Contains(pos) {
			return n.ID, true
		}
	}
	return NoNode, false
}

// Collide zeroes *reaction and accumulates the push-out of box against
// node id: for a room, every sculpture whose box overlaps box, then the
// node's own mesh. Every candidate is tested even after a hit.
func (w *World) Collide(id NodeID, box geom.BBox, reaction *math.Vec3) bool {
	*reaction = math.Vec3{}
	if !w.valid(id) {
		return false
	}

	n := &w.nodes[id]
	hit := false

	if n.Kind == KindRoom {
		for _, sid := range n.Room.Sculptures {
			s := &w.nodes[sid]
			if !s.BBox.Overlaps(box) {
				continue
			}
			if s.Mesh.Collide(0, box, reaction) {
				hit = true
			}
		}
	}

	if n.Mesh.Collide(0, box, reaction) {
		hit = true
	}
	return hit
}
