package geom

import (
	"github.com/Faultbox/manor/pkg/math"
)

// BSphere is an axis-aligned ellipsoid. Radius holds one radius per axis;
// a true sphere has equal components.
type BSphere struct {
	Center math.Vec3
	Radius math.Vec3
}

// ratios returns the factors that map Y and Z distances into X radius units.
func (s BSphere) ratios() (ry, rz float32) {
	return s.Radius.X / s.Radius.Y, s.Radius.X / s.Radius.Z
}

// Segment is a line segment between two points. It also describes the
// infinite line through them where noted.
type Segment [2]math.Vec3

// Direction returns the vector from the first to the second point.
func (s Segment) Direction() math.Vec3 {
	return s[1].Sub(s[0])
}

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// PlaneFromPoint builds the plane through p with the given normal.
func PlaneFromPoint(p, normal math.Vec3) Plane {
	return Plane{Normal: normal, D: -p.Dot(normal)}
}

// PlaneFromVec4 builds a plane from packed (a, b, c, d) coefficients.
func PlaneFromVec4(v math.Vec4) Plane {
	return Plane{Normal: v.XYZ(), D: v[3]}
}

// Distance returns the signed distance of p to the plane, in units of the
// normal's length.
func (pl Plane) Distance(p math.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.D
}

// Normalize scales the plane so that its normal has unit length.
// A zero normal is returned unchanged.
func (pl Plane) Normalize() Plane {
	l := pl.Normal.Length()
	if l == 0 {
		return pl
	}
	return Plane{Normal: pl.Normal.Scale(1 / l), D: pl.D / l}
}

// IntersectLine returns the ratio t at which the infinite line through seg
// crosses the plane (seg[0] + t*(seg[1]-seg[0])). ok is false when the line
// is parallel to the plane.
func (pl Plane) IntersectLine(seg Segment) (t float32, ok bool) {
	k := pl.Normal.Dot(seg.Direction())
	if k == 0 {
		return 0, false
	}
	return -pl.Distance(seg[0]) / k, true
}

// IntersectSegment is IntersectLine restricted to t in [0, 1].
func (pl Plane) IntersectSegment(seg Segment) (t float32, ok bool) {
	t, ok = pl.IntersectLine(seg)
	if !ok || t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

// Triangle is three points in counter-clockwise order.
type Triangle [3]math.Vec3

// Plane returns the supporting plane: normal = normalize((t1-t0) x (t2-t0)),
// D = -t0·normal.
func (t Triangle) Plane() Plane {
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Normalize()
	return PlaneFromPoint(t[0], n)
}

// PlaneFromTriangle is a shorthand for t.Plane().
func PlaneFromTriangle(t Triangle) Plane {
	return t.Plane()
}

// ContainsPoint reports whether p, assumed to lie in the triangle's plane,
// falls inside the triangle. With barycentric coordinates u (towards t2)
// and v (towards t1) the test is u >= 0, v >= 0 and u+v < 1: the edge
// t1-t2 is excluded so that a shared edge belongs to one triangle only.
// Degenerate triangles contain nothing.
func (t Triangle) ContainsPoint(p math.Vec3) bool {
	v0 := t[2].Sub(t[0])
	v1 := t[1].Sub(t[0])
	v2 := p.Sub(t[0])

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d02 := v0.Dot(v2)
	d11 := v1.Dot(v1)
	d12 := v1.Dot(v2)

	den := d00*d11 - d01*d01
	if den == 0 {
		return false
	}
	k := 1 / den
	u := (d11*d02 - d01*d12) * k
	v := (d00*d12 - d01*d02) * k

	return u >= 0 && v >= 0 && u+v < 1
}
