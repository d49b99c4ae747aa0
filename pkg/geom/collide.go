package geom

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/manor/pkg/math"
)

// Reaction vectors returned by the Collide* functions are the displacement
// that moves the second shape out of the first one.

// OverlapBoxBox reports whether two boxes intersect.
func OverlapBoxBox(a, b BBox) bool {
	return a.Overlaps(b)
}

// OverlapBoxSphere reports whether a box and an ellipsoid intersect.
func OverlapBoxSphere(b BBox, s BSphere) bool {
	mn, mx := b.Min(), b.Max()
	ry, rz := s.ratios()

	var d float32
	d += sqr(axisGap(s.Center.X, mn.X, mx.X))
	d += sqr(axisGap(s.Center.Y, mn.Y, mx.Y) * ry)
	d += sqr(axisGap(s.Center.Z, mn.Z, mx.Z) * rz)

	return d <= sqr(s.Radius.X)
}

// OverlapSphereSphere reports whether the center of b is inside a, or
// within b's radius of a's surface.
func OverlapSphereSphere(a, b BSphere) bool {
	if scaledOffset(a, b.Center).LengthSqr() <= sqr(a.Radius.X) {
		return true
	}
	p := ClosestPointSphere(a, b.Center)
	return scaledOffset(b, p).LengthSqr() <= sqr(b.Radius.X)
}

// CollideBoxBox returns the minimal axis-aligned push that separates b
// from a. The axis of least penetration is chosen; ties prefer X, then Y.
func CollideBoxBox(a, b BBox) (math.Vec3, bool) {
	if !a.Overlaps(b) {
		return math.Vec3{}, false
	}

	d := b.Center.Sub(a.Center)
	pen := a.Extent.Add(b.Extent).Sub(d.Abs())

	var r math.Vec3
	switch {
	case pen.X <= pen.Y && pen.X <= pen.Z:
		r.X = sign(d.X) * pen.X
	case pen.Y <= pen.Z:
		r.Y = sign(d.Y) * pen.Y
	default:
		r.Z = sign(d.Z) * pen.Z
	}
	return r, true
}

// CollideBoxSphere returns the push that moves the ellipsoid s out of box b.
// When the center is inside the box the push reaches the corner of the
// octant the center lies in.
func CollideBoxSphere(b BBox, s BSphere) (math.Vec3, bool) {
	mn, mx := b.Min(), b.Max()
	c := s.Center

	if c.X > mn.X && c.X < mx.X && c.Y > mn.Y && c.Y < mx.Y && c.Z > mn.Z && c.Z < mx.Z {
		corner := ClosestPointBox(b, c)
		return math.Vec3{
			X: corner.X - c.X,
			Y: (corner.Y - c.Y) * s.Radius.Y / s.Radius.X,
			Z: (corner.Z - c.Z) * s.Radius.Z / s.Radius.X,
		}, true
	}

	// Face, edge and vertex regions all reduce to the clamped point.
	return collidePoint(ClosestPointBox(b, c), s)
}

// CollideSphereSphere returns the push that moves b out of a.
func CollideSphereSphere(a, b BSphere) (math.Vec3, bool) {
	return collidePoint(ClosestPointSphere(a, b.Center), b)
}

// collidePoint pushes the ellipsoid s away from p until p lies on its surface.
func collidePoint(p math.Vec3, s BSphere) (math.Vec3, bool) {
	ry, rz := s.ratios()
	r := scaledOffset(s, p)

	d := r.LengthSqr()
	if d > sqr(s.Radius.X) {
		return math.Vec3{}, false
	}
	if d == 0 {
		return math.Vec3{}, true
	}

	d = math32.Sqrt(d)
	t := (s.Radius.X - d) / d
	return math.Vec3{X: r.X * t, Y: r.Y * t / ry, Z: r.Z * t / rz}, true
}

// scaledOffset returns s.Center - p with Y and Z mapped into X radius units.
func scaledOffset(s BSphere, p math.Vec3) math.Vec3 {
	ry, rz := s.ratios()
	d := s.Center.Sub(p)
	return math.Vec3{X: d.X, Y: d.Y * ry, Z: d.Z * rz}
}

func axisGap(v, lo, hi float32) float32 {
	switch {
	case v < lo:
		return v - lo
	case v > hi:
		return v - hi
	}
	return 0
}

func sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}

func sqr(v float32) float32 { return v * v }
