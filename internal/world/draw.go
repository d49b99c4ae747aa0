package world

import (
	"github.com/Faultbox/manor/internal/mesh"
	"github.com/Faultbox/manor/pkg/geom"
	"github.com/Faultbox/manor/pkg/math"
)

// DrawDepth is the number of portal hops Draw follows from its root.
const DrawDepth = 2

// Drawer renders a mesh with the current view.
type Drawer interface {
	DrawMesh(m *mesh.Mesh)
}

// SetProjection updates the frustum used for culling. Until it is called
// Draw culls nothing.
func (w *World) SetProjection(proj math.Mat4) {
	w.frustum = geom.NewFrustum(proj)
	w.hasFrustum = true
}

// Draw renders the nodes visible from root, following at most DrawDepth
// portal hops.
func (w *World) Draw(view math.Mat4, root NodeID, d Drawer) {
	w.DrawWithDepth(view, root, DrawDepth, d)
}

// DrawWithDepth is Draw with an explicit portal hop budget. Each node is
// drawn at most once per call.
func (w *World) DrawWithDepth(view math.Mat4, root NodeID, depth int, d Drawer) {
	if len(w.nodes) == 0 || !w.valid(root) {
		return
	}
	w.resetVisited()
	w.drawNode(view, root, depth, d)
}

// resetVisited clears the visited flags. Node 0 stays marked and is never
// drawn by a traversal.
func (w *World) resetVisited() {
	w.nodes[0].visited = true
	for i := 1; i < len(w.nodes); i++ {
		w.nodes[i].visited = false
	}
}

func (w *World) drawNode(view math.Mat4, id NodeID, depth int, d Drawer) {
	if depth <= 0 {
		return
	}
	n := &w.nodes[id]
	if n.visited {
		return
	}
	n.visited = true

	// Culled nodes stay visited for the rest of the frame.
	if !w.visible(view, n) {
		return
	}
	d.DrawMesh(n.Mesh)

	switch n.Kind {
	case KindRoom:
		for _, pid := range n.Room.Portals {
			w.drawNode(view, pid, depth, d)
		}
		for _, sid := range n.Room.Sculptures {
			s := &w.nodes[sid]
			if w.visible(view, s) {
				d.DrawMesh(s.Mesh)
			}
		}
	case KindPortal:
		w.drawNode(view, n.Portal.Back, depth-1, d)
		w.drawNode(view, n.Portal.Front, depth-1, d)
	}
}

func (w *World) visible(view math.Mat4, n *Node) bool {
	if !w.hasFrustum {
		return true
	}
	return w.frustum.TestBBox(view, n.BBox)
}
