// Package mesh provides frame-animated triangle meshes together with the
// bounding box and collision queries the world graph runs against them.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/manor/pkg/geom"
	"github.com/Faultbox/manor/pkg/math"
)

var (
	ErrNoFrames      = errors.New("mesh has no frames")
	ErrNoVertices    = errors.New("mesh has no vertices")
	ErrNoTriangles   = errors.New("mesh has no triangles")
	ErrFrameMismatch = errors.New("frames have different vertex counts")
	ErrIndexRange    = errors.New("triangle index out of range")
	ErrPartRange     = errors.New("part range out of bounds")
	ErrFrameRange    = errors.New("frame out of range")
)

// Vertex is a mesh vertex with position, normal, and texture coordinates.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
}

// Part is a run of triangle indices drawn with one material.
type Part struct {
	Material string
	Offset   int // first index in Triangles
	Count    int // number of indices
}

// Mesh holds one or more frames of vertices sharing the same triangle list.
// Frame 0 is the static frame used for bounds and collision.
type Mesh struct {
	Name      string
	Frames    [][]Vertex
	Triangles []uint32 // three indices per triangle
	Parts     []Part
}

// New validates and assembles a mesh. When parts is empty a single part
// covering every triangle is created.
func New(frames [][]Vertex, triangles []uint32, parts []Part) (*Mesh, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	n := len(frames[0])
	if n == 0 {
		return nil, ErrNoVertices
	}
	for i, f := range frames[1:] {
		if len(f) != n {
			return nil, fmt.Errorf("%w: frame %d has %d vertices, want %d", ErrFrameMismatch, i+1, len(f), n)
		}
	}
	if len(triangles) == 0 {
		return nil, ErrNoTriangles
	}
	if len(triangles)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a multiple of 3", ErrIndexRange, len(triangles))
	}
	for i, idx := range triangles {
		if int(idx) >= n {
			return nil, fmt.Errorf("%w: index %d at %d (vertices: %d)", ErrIndexRange, idx, i, n)
		}
	}

	if len(parts) == 0 {
		parts = []Part{{Offset: 0, Count: len(triangles)}}
	}
	for _, p := range parts {
		if p.Offset < 0 || p.Count < 0 || p.Offset+p.Count > len(triangles) {
			return nil, fmt.Errorf("%w: part %q [%d, %d)", ErrPartRange, p.Material, p.Offset, p.Offset+p.Count)
		}
	}

	return &Mesh{Frames: frames, Triangles: triangles, Parts: parts}, nil
}

// FrameCount returns the number of animation frames.
func (m *Mesh) FrameCount() int { return len(m.Frames) }

// VertexCount returns the number of vertices per frame.
func (m *Mesh) VertexCount() int { return len(m.Frames[0]) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Triangles) / 3 }

// Triangle returns triangle i of the given frame.
func (m *Mesh) Triangle(frame, i int) geom.Triangle {
	f := m.Frames[frame]
	idx := m.Triangles[i*3 : i*3+3]
	return geom.Triangle{f[idx[0]].Position, f[idx[1]].Position, f[idx[2]].Position}
}

// ComputeBBox returns the bounds of the vertices of frame.
func (m *Mesh) ComputeBBox(frame int) (geom.BBox, error) {
	if frame < 0 || frame >= len(m.Frames) {
		return geom.BBox{}, fmt.Errorf("%w: %d of %d", ErrFrameRange, frame, len(m.Frames))
	}
	verts := m.Frames[frame]
	if len(verts) == 0 {
		return geom.BBox{}, ErrNoVertices
	}

	mn, mx := verts[0].Position, verts[0].Position
	for _, v := range verts[1:] {
		mn = mn.Min(v.Position)
		mx = mx.Max(v.Position)
	}
	return geom.BBoxFromMinMax(mn, mx), nil
}

// Collide tests box against every triangle of frame and adds the push-out
// to *reaction. Each triangle is mapped into the box's unit space, where the
// box becomes the cube [-1, 1]^3. A triangle contributes (1-D)*normal when
// its plane lies at a distance D in [0, 1] in front of the origin and the
// origin projects inside it. This approximates the push-out, it is not a
// time of impact. The result is added only if some triangle contributed;
// callers zero *reaction first. Boxes with a zero extent never collide.
func (m *Mesh) Collide(frame int, box geom.BBox, reaction *math.Vec3) bool {
	if frame < 0 || frame >= len(m.Frames) {
		return false
	}
	e := box.Extent
	if e.X == 0 || e.Y == 0 || e.Z == 0 {
		return false
	}
	s := math.Vec3{X: 1 / e.X, Y: 1 / e.Y, Z: 1 / e.Z}

	verts := m.Frames[frame]
	var r math.Vec3
	hit := false

	for i := 0; i+2 < len(m.Triangles); i += 3 {
		var t geom.Triangle
		for j := 0; j < 3; j++ {
			t[j] = verts[m.Triangles[i+j]].Position.Sub(box.Center).Mul(s)
		}

		pl := t.Plane()
		if pl.D < 0 || pl.D > 1 {
			continue
		}
		if !t.ContainsPoint(pl.Normal.Scale(-pl.D)) {
			continue
		}

		r = r.Add(pl.Normal.Scale(1 - pl.D))
		hit = true
	}

	if hit {
		*reaction = reaction.Add(r.Mul(e))
	}
	return hit
}

// Interpolate blends frames a and b by t into dst, which is grown as needed.
// Texture coordinates are taken from frame a.
func (m *Mesh) Interpolate(a, b int, t float32, dst []Vertex) []Vertex {
	fa, fb := m.Frames[a], m.Frames[b]
	if cap(dst) < len(fa) {
		dst = make([]Vertex, len(fa))
	}
	dst = dst[:len(fa)]
	for i := range fa {
		dst[i] = Vertex{
			Position: fa[i].Position.Lerp(fb[i].Position, t),
			Normal:   fa[i].Normal.Lerp(fb[i].Normal, t),
			TexCoord: fa[i].TexCoord,
		}
	}
	return dst
}
