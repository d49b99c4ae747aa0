package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/manor/internal/mesh"
)

var vertexSize = int(unsafe.Sizeof(mesh.Vertex{}))

// gpuMesh holds the buffers of one uploaded mesh.
type gpuMesh struct {
	vao, vbo, ebo uint32
	parts         []mesh.Part

	usage     uint32
	vertexCap int
	indexCap  int

	lastUsed uint64
}

func newStaticMesh(m *mesh.Mesh) *gpuMesh {
	gm := &gpuMesh{usage: gl.STATIC_DRAW}
	gm.init()
	gm.update(m.Frames[0], m.Triangles)
	gm.parts = m.Parts
	return gm
}

func newDynamicMesh() *gpuMesh {
	gm := &gpuMesh{usage: gl.STREAM_DRAW}
	gm.init()
	return gm
}

func (gm *gpuMesh) init() {
	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)
	// TexCoord
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &gm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)

	gl.BindVertexArray(0)
}

// update uploads vertices and indices, reallocating storage only when it
// grows. The whole index list becomes a single part.
func (gm *gpuMesh) update(vertices []mesh.Vertex, indices []uint32) {
	gl.BindVertexArray(gm.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	if len(vertices) > gm.vertexCap {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*vertexSize, unsafe.Pointer(&vertices[0]), gm.usage)
		gm.vertexCap = len(vertices)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*vertexSize, unsafe.Pointer(&vertices[0]))
	}

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
	if len(indices) > gm.indexCap {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gm.usage)
		gm.indexCap = len(indices)
	} else {
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, len(indices)*4, unsafe.Pointer(&indices[0]))
	}

	gl.BindVertexArray(0)
	gm.parts = []mesh.Part{{Offset: 0, Count: len(indices)}}
}

func (gm *gpuMesh) draw() {
	gl.BindVertexArray(gm.vao)
	for _, p := range gm.parts {
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(p.Count), gl.UNSIGNED_INT, uintptr(p.Offset*4))
	}
	gl.BindVertexArray(0)
}

func (gm *gpuMesh) delete() {
	if gm.ebo != 0 {
		gl.DeleteBuffers(1, &gm.ebo)
	}
	if gm.vbo != 0 {
		gl.DeleteBuffers(1, &gm.vbo)
	}
	if gm.vao != 0 {
		gl.DeleteVertexArrays(1, &gm.vao)
	}
	*gm = gpuMesh{}
}

// gpuLines streams position-only geometry for overlays and wireframes.
type gpuLines struct {
	vao, vbo uint32
}

func (lb *gpuLines) init() {
	gl.GenVertexArrays(1, &lb.vao)
	gl.BindVertexArray(lb.vao)
	gl.GenBuffers(1, &lb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, lb.vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
}

// draw uploads xyz triples and draws them with mode.
func (lb *gpuLines) draw(mode uint32, xyz []float32) {
	if len(xyz) == 0 {
		return
	}
	gl.BindVertexArray(lb.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, lb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(xyz)*4, unsafe.Pointer(&xyz[0]), gl.STREAM_DRAW)
	gl.DrawArrays(mode, 0, int32(len(xyz)/3))
	gl.BindVertexArray(0)
}

func (lb *gpuLines) delete() {
	if lb.vbo != 0 {
		gl.DeleteBuffers(1, &lb.vbo)
	}
	if lb.vao != 0 {
		gl.DeleteVertexArrays(1, &lb.vao)
	}
	*lb = gpuLines{}
}
