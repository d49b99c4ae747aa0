package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/manor/pkg/math"
)

// OBJ format errors.
var (
	ErrOBJSyntax = errors.New("OBJ syntax error")
	ErrOBJIndex  = errors.New("OBJ index out of range")
	ErrOBJEmpty  = errors.New("OBJ file has no faces")
)

// DefaultObjectName names the faces that appear before any "o" statement.
const DefaultObjectName = "default"

// OBJVertex is a unique position/texcoord/normal combination.
type OBJVertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
}

// OBJPart is a run of indices sharing a material.
type OBJPart struct {
	Material string
	Offset   int
	Count    int
}

// OBJObject is one "o" block, triangulated and with deduplicated vertices.
type OBJObject struct {
	Name     string
	Vertices []OBJVertex
	Indices  []uint32
	Parts    []OBJPart
}

// TriangleCount returns the number of triangles in the object.
func (o *OBJObject) TriangleCount() int {
	return len(o.Indices) / 3
}

// OBJ is a parsed Wavefront OBJ file.
type OBJ struct {
	Objects []*OBJObject // in file order
}

// Object returns the object with the given name, or nil.
func (o *OBJ) Object(name string) *OBJObject {
	for _, obj := range o.Objects {
		if obj.Name == name {
			return obj
		}
	}
	return nil
}

type objKey struct {
	p, t, n int
}

type objParser struct {
	line int

	positions []math.Vec3
	normals   []math.Vec3
	texcoords []math.Vec2

	result *OBJ
	cur    *OBJObject
	lookup map[objKey]uint32
}

// ParseOBJ parses Wavefront OBJ text. Supported statements are o, g, usemtl,
// v, vn, vt and f; others are skipped. Polygons are fan triangulated and
// texture V is flipped to the GL convention.
func ParseOBJ(data []byte) (*OBJ, error) {
	p := &objParser{result: &OBJ{}}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if err := p.statement(fields); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	p.flush()
	if len(p.result.Objects) == 0 {
		return nil, ErrOBJEmpty
	}
	return p.result, nil
}

// ParseOBJFile parses an OBJ file from disk. Files ending in .gz or .zst are
// decompressed first.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	obj, err := ParseOBJ(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obj, nil
}

// ReadFile reads a whole file, transparently decompressing gzip (.gz) and
// zstd (.zst) content.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)

	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		return io.ReadAll(dec)

	default:
		return io.ReadAll(f)
	}
}

func (p *objParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrOBJSyntax, p.line, fmt.Sprintf(format, args...))
}

func (p *objParser) statement(fields []string) error {
	switch fields[0] {
	case "o":
		if len(fields) < 2 {
			return p.errorf("object name expected")
		}
		p.flush()
		p.begin(strings.Join(fields[1:], " "))

	case "g", "usemtl":
		if len(fields) < 2 {
			return p.errorf("%s name expected", fields[0])
		}
		p.part(strings.Join(fields[1:], " "))

	case "v":
		v, err := p.floats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})

	case "vn":
		v, err := p.floats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, math.Vec3{X: v[0], Y: v[1], Z: v[2]})

	case "vt":
		v, err := p.floats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.texcoords = append(p.texcoords, math.Vec2{X: v[0], Y: 1 - v[1]})

	case "f":
		return p.face(fields[1:])
	}
	return nil
}

func (p *objParser) floats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, p.errorf("%d numbers expected, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, p.errorf("bad number %q", fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (p *objParser) begin(name string) {
	p.cur = &OBJObject{Name: name}
	p.lookup = make(map[objKey]uint32)
}

// flush keeps the current object if it has faces.
func (p *objParser) flush() {
	if p.cur == nil || len(p.cur.Indices) == 0 {
		return
	}
	parts := p.cur.Parts[:0]
	for _, part := range p.cur.Parts {
		if part.Count > 0 {
			parts = append(parts, part)
		}
	}
	p.cur.Parts = parts
	p.result.Objects = append(p.result.Objects, p.cur)
	p.cur = nil
}

func (p *objParser) part(material string) {
	if p.cur == nil {
		p.begin(DefaultObjectName)
	}
	p.cur.Parts = append(p.cur.Parts, OBJPart{Material: material, Offset: len(p.cur.Indices)})
}

func (p *objParser) face(fields []string) error {
	if len(fields) < 3 {
		return p.errorf("face needs at least 3 vertices, got %d", len(fields))
	}
	if p.cur == nil {
		p.begin(DefaultObjectName)
	}
	if len(p.cur.Parts) == 0 {
		p.cur.Parts = append(p.cur.Parts, OBJPart{Offset: len(p.cur.Indices)})
	}

	idx := make([]uint32, len(fields))
	for i, f := range fields {
		k, err := p.vertexKey(f)
		if err != nil {
			return err
		}
		idx[i] = p.vertex(k)
	}

	for i := 1; i+1 < len(idx); i++ {
		p.cur.Indices = append(p.cur.Indices, idx[0], idx[i], idx[i+1])
	}
	p.cur.Parts[len(p.cur.Parts)-1].Count += 3 * (len(idx) - 2)
	return nil
}

// vertexKey decodes v, v/t, v//n or v/t/n into zero-based indices; -1 marks
// an absent texcoord or normal.
func (p *objParser) vertexKey(s string) (objKey, error) {
	k := objKey{t: -1, n: -1}
	refs := strings.Split(s, "/")
	if len(refs) > 3 {
		return k, p.errorf("bad face vertex %q", s)
	}

	var err error
	if k.p, err = p.resolve(refs[0], len(p.positions)); err != nil {
		return k, err
	}
	if len(refs) > 1 && refs[1] != "" {
		if k.t, err = p.resolve(refs[1], len(p.texcoords)); err != nil {
			return k, err
		}
	}
	if len(refs) > 2 && refs[2] != "" {
		if k.n, err = p.resolve(refs[2], len(p.normals)); err != nil {
			return k, err
		}
	}
	return k, nil
}

// resolve turns a one-based or negative (relative) reference into an index.
func (p *objParser) resolve(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.errorf("bad index %q", s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, fmt.Errorf("%w: line %d: index 0", ErrOBJIndex, p.line)
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("%w: line %d: %s of %d", ErrOBJIndex, p.line, s, count)
	}
	return i, nil
}

func (p *objParser) vertex(k objKey) uint32 {
	if i, ok := p.lookup[k]; ok {
		return i
	}
	v := OBJVertex{Position: p.positions[k.p]}
	if k.t >= 0 {
		v.TexCoord = p.texcoords[k.t]
	}
	if k.n >= 0 {
		v.Normal = p.normals[k.n]
	}
	i := uint32(len(p.cur.Vertices))
	p.cur.Vertices = append(p.cur.Vertices, v)
	p.lookup[k] = i
	return i
}
