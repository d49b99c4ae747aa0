package geom

import (
	"github.com/Faultbox/manor/pkg/math"
)

// Frustum plane indices.
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// Frustum holds six clip planes with normals pointing inwards.
type Frustum [6]Plane

// NewFrustum extracts the clip planes of a projection matrix using the
// Gribb-Hartmann row combinations.
func NewFrustum(proj math.Mat4) Frustum {
	r0, r1, r2, r3 := proj.Row(0), proj.Row(1), proj.Row(2), proj.Row(3)

	var f Frustum
	f[PlaneLeft] = PlaneFromVec4(add4(r3, r0)).Normalize()
	f[PlaneRight] = PlaneFromVec4(sub4(r3, r0)).Normalize()
	f[PlaneBottom] = PlaneFromVec4(add4(r3, r1)).Normalize()
	f[PlaneTop] = PlaneFromVec4(sub4(r3, r1)).Normalize()
	f[PlaneNear] = PlaneFromVec4(add4(r3, r2)).Normalize()
	f[PlaneFar] = PlaneFromVec4(sub4(r3, r2)).Normalize()
	return f
}

// TestBBox transforms the corners of box by view and reports whether the
// box may be visible. A box is rejected only when all eight corners lie
// outside one and the same plane, so boxes near the frustum edges can be
// accepted although they are not visible. Visible boxes are never rejected.
func (f *Frustum) TestBBox(view math.Mat4, box BBox) bool {
	corners := box.Corners()
	for i := range corners {
		corners[i] = view.TransformVec3(corners[i])
	}

	for _, pl := range f {
		inside := false
		for _, c := range corners {
			if pl.Distance(c) > 0 {
				inside = true
				break
			}
		}
		if !inside {
			return false
		}
	}
	return true
}

func add4(a, b math.Vec4) math.Vec4 {
	return math.Vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

func sub4(a, b math.Vec4) math.Vec4 {
	return math.Vec4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}
