package geom

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/manor/pkg/math"
)

// ClosestPointLine returns the point on the infinite line through seg that
// is closest to p. A zero-length segment yields its start point.
func ClosestPointLine(seg Segment, p math.Vec3) math.Vec3 {
	u := seg.Direction()
	l := u.LengthSqr()
	if l == 0 {
		return seg[0]
	}
	t := u.Dot(p.Sub(seg[0])) / l
	return seg[0].Add(u.Scale(t))
}

// ClosestPointPlane projects p onto the plane and returns the projected
// point together with the signed distance of p. The plane normal must be
// unit length.
func ClosestPointPlane(pl Plane, p math.Vec3) (math.Vec3, float32) {
	k := pl.Distance(p)
	return p.Sub(pl.Normal.Scale(k)), k
}

// ClosestPointSphere returns the point on the ellipsoid surface along the
// direction from its center to p. A p at the center yields the center.
func ClosestPointSphere(s BSphere, p math.Vec3) math.Vec3 {
	u := p.Sub(s.Center).Normalize()
	return s.Center.Add(u.Mul(s.Radius))
}

// ClosestPointBox returns the point of the box surface closest to p.
// Outside the box this is p clamped to the box. Inside, the corner of the
// octant p lies in is returned.
func ClosestPointBox(b BBox, p math.Vec3) math.Vec3 {
	mn, mx := b.Min(), b.Max()
	if b.Contains(p) && !onBoundary(mn, mx, p) {
		r := mn
		if p.X >= b.Center.X {
			r.X = mx.X
		}
		if p.Y >= b.Center.Y {
			r.Y = mx.Y
		}
		if p.Z >= b.Center.Z {
			r.Z = mx.Z
		}
		return r
	}
	return math.Vec3{
		X: clamp(p.X, mn.X, mx.X),
		Y: clamp(p.Y, mn.Y, mx.Y),
		Z: clamp(p.Z, mn.Z, mx.Z),
	}
}

func onBoundary(mn, mx, p math.Vec3) bool {
	return p.X <= mn.X || p.X >= mx.X ||
		p.Y <= mn.Y || p.Y >= mx.Y ||
		p.Z <= mn.Z || p.Z >= mx.Z
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(v, hi))
}
