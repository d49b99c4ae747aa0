package mesh

import (
	"errors"
	"testing"
	"time"

	"github.com/Faultbox/manor/pkg/geom"
	"github.com/Faultbox/manor/pkg/math"
)

func v(x, y, z float32) Vertex {
	return Vertex{Position: math.Vec3{X: x, Y: y, Z: z}}
}

// floorTriangle returns a horizontal triangle at height y whose normal points up and
// whose interior covers the XZ origin.
func floorTriangle(y float32) []Vertex {
	return []Vertex{v(-2, y, -2), v(-2, y, 4), v(4, y, -2)}
}

func TestNewValidation(t *testing.T) {
	tri := []uint32{0, 1, 2}

	tests := []struct {
		name      string
		frames    [][]Vertex
		triangles []uint32
		parts     []Part
		wantErr   error
	}{
		{"no frames", nil, tri, nil, ErrNoFrames},
		{"no vertices", [][]Vertex{{}}, tri, nil, ErrNoVertices},
		{"no triangles", [][]Vertex{floorTriangle(0)}, nil, nil, ErrNoTriangles},
		{"frame mismatch", [][]Vertex{floorTriangle(0), {v(0, 0, 0)}}, tri, nil, ErrFrameMismatch},
		{"index out of range", [][]Vertex{floorTriangle(0)}, []uint32{0, 1, 3}, nil, ErrIndexRange},
		{"partial triangle", [][]Vertex{floorTriangle(0)}, []uint32{0, 1}, nil, ErrIndexRange},
		{"part out of range", [][]Vertex{floorTriangle(0)}, tri, []Part{{Offset: 0, Count: 6}}, ErrPartRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.frames, tt.triangles, tt.parts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewDefaultPart(t *testing.T) {
	m, err := New([][]Vertex{floorTriangle(0)}, []uint32{0, 1, 2}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(m.Parts) != 1 || m.Parts[0].Count != 3 {
		t.Errorf("Parts = %+v, want one part of 3 indices", m.Parts)
	}
	if m.TriangleCount() != 1 || m.VertexCount() != 3 || m.FrameCount() != 1 {
		t.Errorf("counts = %d/%d/%d", m.TriangleCount(), m.VertexCount(), m.FrameCount())
	}
}

func TestComputeBBox(t *testing.T) {
	frame0 := []Vertex{v(-1, 0, 2), v(3, -4, 0), v(1, 2, 6)}
	frame1 := []Vertex{v(0, 0, 0), v(1, 1, 1), v(2, 2, 2)}
	m, err := New([][]Vertex{frame0, frame1}, []uint32{0, 1, 2}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	box, err := m.ComputeBBox(0)
	if err != nil {
		t.Fatalf("ComputeBBox() error = %v", err)
	}
	// min (-1,-4,0), max (3,2,6)
	if want := (math.Vec3{X: 1, Y: -1, Z: 3}); box.Center != want {
		t.Errorf("Center = %v, want %v", box.Center, want)
	}
	if want := (math.Vec3{X: 2, Y: 3, Z: 3}); box.Extent != want {
		t.Errorf("Extent = %v, want %v", box.Extent, want)
	}

	box, _ = m.ComputeBBox(1)
	if want := (math.Vec3{X: 1, Y: 1, Z: 1}); box.Center != want || box.Extent != want {
		t.Errorf("frame 1 box = %+v", box)
	}

	if _, err := m.ComputeBBox(2); !errors.Is(err, ErrFrameRange) {
		t.Errorf("ComputeBBox(2) error = %v, want ErrFrameRange", err)
	}
}

func TestComputeBBoxSingleVertex(t *testing.T) {
	m, err := New([][]Vertex{{v(5, -3, 2)}}, []uint32{0, 0, 0}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	box, err := m.ComputeBBox(0)
	if err != nil {
		t.Fatalf("ComputeBBox() error = %v", err)
	}
	if box.Center != (math.Vec3{X: 5, Y: -3, Z: 2}) || box.Extent != (math.Vec3{}) {
		t.Errorf("ComputeBBox() = %+v, want zero extent at the vertex", box)
	}
}

func TestCollideFloor(t *testing.T) {
	m, err := New([][]Vertex{floorTriangle(-0.5)}, []uint32{0, 1, 2}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	box := geom.BBox{Extent: math.Vec3{X: 1, Y: 1, Z: 1}}
	var reaction math.Vec3
	if !m.Collide(0, box, &reaction) {
		t.Fatal("Collide() = false, want true")
	}
	if want := (math.Vec3{Y: 0.5}); reaction != want {
		t.Errorf("reaction = %v, want %v", reaction, want)
	}
}

func TestCollideScalesByExtent(t *testing.T) {
	m, _ := New([][]Vertex{floorTriangle(-1)}, []uint32{0, 1, 2}, nil)

	// Extent 2 along Y puts the floor half way down in unit space.
	box := geom.BBox{Extent: math.Vec3{X: 1, Y: 2, Z: 1}}
	reaction := math.Vec3{X: 3}
	if !m.Collide(0, box, &reaction) {
		t.Fatal("Collide() = false, want true")
	}
	if want := (math.Vec3{X: 3, Y: 1}); reaction != want {
		t.Errorf("reaction = %v, want %v (accumulated onto the input)", reaction, want)
	}
}

func TestCollideRejectedTrianglesLeaveReaction(t *testing.T) {
	// One plane too far below the box, one with the origin behind it.
	frame := append(floorTriangle(-5), floorTriangle(0.5)...)
	m, err := New([][]Vertex{frame}, []uint32{0, 1, 2, 3, 4, 5}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	box := geom.BBox{Extent: math.Vec3{X: 1, Y: 1, Z: 1}}
	var reaction math.Vec3
	if m.Collide(0, box, &reaction) {
		t.Error("Collide() = true, want false")
	}
	if reaction != (math.Vec3{}) {
		t.Errorf("reaction = %v, want zero", reaction)
	}
}

func TestCollideOutsideFootprint(t *testing.T) {
	// The plane crosses the box but the triangle lies off to the side.
	frame := []Vertex{v(5, -0.5, 5), v(5, -0.5, 6), v(6, -0.5, 5)}
	m, _ := New([][]Vertex{frame}, []uint32{0, 1, 2}, nil)

	var reaction math.Vec3
	if m.Collide(0, geom.BBox{Extent: math.Vec3{X: 1, Y: 1, Z: 1}}, &reaction) {
		t.Error("Collide() = true, want false")
	}
}

func TestCollideAccumulatesTriangles(t *testing.T) {
	frame := append(floorTriangle(-0.5), floorTriangle(-0.75)...)
	m, _ := New([][]Vertex{frame}, []uint32{0, 1, 2, 3, 4, 5}, nil)

	var reaction math.Vec3
	if !m.Collide(0, geom.BBox{Extent: math.Vec3{X: 1, Y: 1, Z: 1}}, &reaction) {
		t.Fatal("Collide() = false, want true")
	}
	if want := (math.Vec3{Y: 0.75}); reaction != want {
		t.Errorf("reaction = %v, want %v", reaction, want)
	}
}

func TestCollideZeroExtent(t *testing.T) {
	m, _ := New([][]Vertex{floorTriangle(0)}, []uint32{0, 1, 2}, nil)
	var reaction math.Vec3
	if m.Collide(0, geom.BBox{}, &reaction) {
		t.Error("Collide() with zero extent = true, want false")
	}
}

func TestInterpolate(t *testing.T) {
	a := []Vertex{v(0, 0, 0)}
	b := []Vertex{v(2, 4, 6)}
	m, _ := New([][]Vertex{a, b}, []uint32{0, 0, 0}, nil)

	out := m.Interpolate(0, 1, 0.5, nil)
	if len(out) != 1 || out[0].Position != (math.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("Interpolate() = %+v", out)
	}
}

func TestGroup(t *testing.T) {
	g := NewGroup()
	for _, name := range []string{"R_1", "P_0_1", "R_0"} {
		m, _ := New([][]Vertex{floorTriangle(0)}, []uint32{0, 1, 2}, nil)
		if err := g.Add(name, m); err != nil {
			t.Fatalf("Add(%s) error = %v", name, err)
		}
	}

	m, _ := New([][]Vertex{floorTriangle(0)}, []uint32{0, 1, 2}, nil)
	if err := g.Add("R_1", m); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Add duplicate error = %v, want ErrDuplicateName", err)
	}

	names := g.Names()
	want := []string{"R_1", "P_0_1", "R_0"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
		}
	}

	got, ok := g.Get("P_0_1")
	if !ok || got.Name != "P_0_1" {
		t.Errorf("Get(P_0_1) = %v, %v", got, ok)
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
}

func TestAnimatorRepeat(t *testing.T) {
	var a Animator
	a.Play(Clip{First: 40, Last: 45, FPS: 10, Repeat: true})

	// 0.25s at 10 fps = 2.5 frames.
	if !a.Advance(250 * time.Millisecond) {
		t.Error("repeating clip should keep playing")
	}
	from, to, blend := a.Frames()
	if from != 42 || to != 43 || blend < 0.49 || blend > 0.51 {
		t.Errorf("Frames() = %d, %d, %v, want 42, 43, 0.5", from, to, blend)
	}

	// Past the last frame wraps to the start.
	a.Advance(500 * time.Millisecond)
	if from, _, _ := a.Frames(); from != 40 {
		t.Errorf("after wrap from = %d, want 40", from)
	}
}

func TestAnimatorOnce(t *testing.T) {
	var a Animator
	a.Play(Clip{First: 54, Last: 57, FPS: 7})

	if !a.Advance(100 * time.Millisecond) {
		t.Error("clip should still be playing")
	}
	if a.Advance(time.Second) {
		t.Error("clip should have finished")
	}
	from, _, blend := a.Frames()
	if from != 57 || blend != 0 {
		t.Errorf("Frames() = %d, %v, want 57, 0", from, blend)
	}

	a.Reset()
	if from, _, _ := a.Frames(); from != 54 {
		t.Errorf("after Reset from = %d, want 54", from)
	}
}

func TestClipClamp(t *testing.T) {
	c := Clip{First: 66, Last: 71, FPS: 7}.Clamp(10)
	if c.First != 9 || c.Last != 9 {
		t.Errorf("Clamp(10) = %+v, want 9..9", c)
	}
	c = Clip{First: 0, Last: 39}.Clamp(1)
	if c.First != 0 || c.Last != 0 {
		t.Errorf("Clamp(1) = %+v, want 0..0", c)
	}
}
