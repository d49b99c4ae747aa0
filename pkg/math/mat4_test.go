package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(Vec3{5, 10, 15})

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformVec3(t *testing.T) {
	m := Translate(Vec3{10, 20, 30}).Mul(Scale(2, 2, 2))
	got := m.TransformVec3(Vec3{1, 2, 3})
	want := Vec3{12, 24, 36}
	if got != want {
		t.Errorf("TransformVec3: got %v, want %v", got, want)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2))
	result := m.TransformVec3(Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result.X) > 0.001 || abs(result.Y) > 0.001 || abs(result.Z+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestRotateMatchesRotateY(t *testing.T) {
	a := Rotate(37, Vec3{0, 1, 0})
	b := RotateY(DegToRad(37))
	for i := range a {
		if abs(a[i]-b[i]) > 1e-5 {
			t.Fatalf("Rotate(37, Y)[%d] = %f, RotateY = %f", i, a[i], b[i])
		}
	}
}

func TestRotateZeroAxis(t *testing.T) {
	if got := Rotate(45, Vec3{}); got != Identity() {
		t.Errorf("Rotate with zero axis = %v, want identity", got)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1, 0.1, 100)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestFrustumSymmetricMatchesPerspective(t *testing.T) {
	// fov 90 degrees, aspect 1: tan(45) = 1 so the near plane spans [-near, near].
	p := Perspective(float32(math.Pi/2), 1, 1, 100)
	f := Frustum(-1, 1, -1, 1, 1, 100)
	for i := range p {
		if abs(p[i]-f[i]) > 1e-4 {
			t.Fatalf("element %d: Perspective %f, Frustum %f", i, p[i], f[i])
		}
	}
}

func TestRow(t *testing.T) {
	m := Translate(Vec3{7, 8, 9})
	if got, want := m.Row(0), (Vec4{1, 0, 0, 7}); got != want {
		t.Errorf("Row(0) = %v, want %v", got, want)
	}
	if got, want := m.Row(3), (Vec4{0, 0, 0, 1}); got != want {
		t.Errorf("Row(3) = %v, want %v", got, want)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
