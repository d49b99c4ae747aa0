// Package geom provides the bounding volumes, planes and intersection
// tests used by the world graph and the collision code.
package geom

import (
	"github.com/Faultbox/manor/pkg/math"
)

// BBox is an axis-aligned bounding box stored as center and half-extent.
// Extent components are never negative.
type BBox struct {
	Center math.Vec3
	Extent math.Vec3
}

// BBoxFromMinMax builds a box spanning the two corners.
func BBoxFromMinMax(min, max math.Vec3) BBox {
	return BBox{
		Center: max.Add(min).Scale(0.5),
		Extent: max.Sub(min).Abs().Scale(0.5),
	}
}

// Min returns the lowest corner.
func (b BBox) Min() math.Vec3 {
	return b.Center.Sub(b.Extent)
}

// Max returns the highest corner.
func (b BBox) Max() math.Vec3 {
	return b.Center.Add(b.Extent)
}

// Translate returns the box moved by v. The extent is unchanged.
func (b BBox) Translate(v math.Vec3) BBox {
	return BBox{Center: b.Center.Add(v), Extent: b.Extent}
}

// Contains reports whether p lies inside the box, boundary included.
func (b BBox) Contains(p math.Vec3) bool {
	d := b.Center.Sub(p).Abs()
	return d.X <= b.Extent.X && d.Y <= b.Extent.Y && d.Z <= b.Extent.Z
}

// Overlaps reports whether the two boxes intersect, touching included.
func (b BBox) Overlaps(other BBox) bool {
	d := b.Center.Sub(other.Center).Abs()
	e := b.Extent.Add(other.Extent)
	return d.X <= e.X && d.Y <= e.Y && d.Z <= e.Z
}

// Corners returns the eight corners of the box.
func (b BBox) Corners() [8]math.Vec3 {
	c, e := b.Center, b.Extent
	return [8]math.Vec3{
		{X: c.X - e.X, Y: c.Y + e.Y, Z: c.Z + e.Z},
		{X: c.X + e.X, Y: c.Y + e.Y, Z: c.Z + e.Z},
		{X: c.X + e.X, Y: c.Y - e.Y, Z: c.Z + e.Z},
		{X: c.X - e.X, Y: c.Y - e.Y, Z: c.Z + e.Z},
		{X: c.X - e.X, Y: c.Y + e.Y, Z: c.Z - e.Z},
		{X: c.X + e.X, Y: c.Y + e.Y, Z: c.Z - e.Z},
		{X: c.X + e.X, Y: c.Y - e.Y, Z: c.Z - e.Z},
		{X: c.X - e.X, Y: c.Y - e.Y, Z: c.Z - e.Z},
	}
}

// WireframeVertices returns the 12 box edges as 24 line endpoints,
// packed as x, y, z triples.
func (b BBox) WireframeVertices() []float32 {
	mn, mx := b.Min(), b.Max()
	return []float32{
		// Bottom face
		mn.X, mn.Y, mn.Z, mx.X, mn.Y, mn.Z,
		mx.X, mn.Y, mn.Z, mx.X, mn.Y, mx.Z,
		mx.X, mn.Y, mx.Z, mn.X, mn.Y, mx.Z,
		mn.X, mn.Y, mx.Z, mn.X, mn.Y, mn.Z,
		// Top face
		mn.X, mx.Y, mn.Z, mx.X, mx.Y, mn.Z,
		mx.X, mx.Y, mn.Z, mx.X, mx.Y, mx.Z,
		mx.X, mx.Y, mx.Z, mn.X, mx.Y, mx.Z,
		mn.X, mx.Y, mx.Z, mn.X, mx.Y, mn.Z,
		// Vertical edges
		mn.X, mn.Y, mn.Z, mn.X, mx.Y, mn.Z,
		mx.X, mn.Y, mn.Z, mx.X, mx.Y, mn.Z,
		mx.X, mn.Y, mx.Z, mx.X, mx.Y, mx.Z,
		mn.X, mn.Y, mx.Z, mn.X, mx.Y, mx.Z,
	}
}

// WireframeVertexCount is the number of vertices produced by WireframeVertices.
const WireframeVertexCount = 24
