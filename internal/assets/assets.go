// Package assets loads levels and hero meshes from the data directory and
// shares them through a reference counted cache.
package assets

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/manor/internal/mesh"
	"github.com/Faultbox/manor/pkg/formats"
)

var (
	ErrUnknownHero      = errors.New("unknown hero")
	ErrNoFrames         = errors.New("hero has no frame files")
	ErrTopologyMismatch = errors.New("hero frames have different triangles")
)

const levelKey = "level"

// Hero describes where the frames of one hero live. Frames is a glob
// relative to the data directory; matches are sorted by name and
// concatenated in that order.
type Hero struct {
	Name   string
	Frames string
}

// Config holds the asset locations.
type Config struct {
	DataDir string
	Level   string // level file relative to DataDir
	Heroes  []Hero
}

// Manager hands out levels and heroes.
type Manager struct {
	cfg   Config
	cache *Cache
	log   *zap.Logger
}

// NewManager creates a new asset manager.
func NewManager(cfg Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cfg:   cfg,
		cache: NewCache(),
		log:   log,
	}
}

// Cache exposes the underlying cache.
func (m *Manager) Cache() *Cache { return m.cache }

// LevelPath returns the absolute path of the level file.
func (m *Manager) LevelPath() string {
	return filepath.Join(m.cfg.DataDir, m.cfg.Level)
}

// HeroCount returns the number of configured heroes.
func (m *Manager) HeroCount() int { return len(m.cfg.Heroes) }

// HeroName returns the name of hero i.
func (m *Manager) HeroName(i int) string {
	if i < 0 || i >= len(m.cfg.Heroes) {
		return ""
	}
	return m.cfg.Heroes[i].Name
}

// AcquireLevel returns the level mesh group, loading it on first use.
func (m *Manager) AcquireLevel() (*mesh.Group, error) {
	v, err := m.cache.Ref(levelKey, func() (any, error) {
		return m.loadLevel()
	})
	if err != nil {
		return nil, err
	}
	return v.(*mesh.Group), nil
}

// ReleaseLevel drops a reference to the level.
func (m *Manager) ReleaseLevel() {
	if m.cache.Unref(levelKey) {
		m.log.Debug("level released", zap.String("path", m.LevelPath()))
	}
}

// AcquireHero returns the mesh of hero i, loading it on first use.
func (m *Manager) AcquireHero(i int) (*mesh.Mesh, error) {
	if i < 0 || i >= len(m.cfg.Heroes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHero, i)
	}
	h := m.cfg.Heroes[i]
	v, err := m.cache.Ref(heroKey(h), func() (any, error) {
		return m.loadHero(h)
	})
	if err != nil {
		return nil, err
	}
	return v.(*mesh.Mesh), nil
}

// ReleaseHero drops a reference to hero i.
func (m *Manager) ReleaseHero(i int) {
	if i < 0 || i >= len(m.cfg.Heroes) {
		return
	}
	h := m.cfg.Heroes[i]
	if m.cache.Unref(heroKey(h)) {
		m.log.Debug("hero released", zap.String("name", h.Name))
	}
}

// Close drops every cached asset.
func (m *Manager) Close() {
	m.cache.Clear()
}

func heroKey(h Hero) string { return "hero." + h.Name }

func (m *Manager) loadLevel() (*mesh.Group, error) {
	path := m.LevelPath()
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading level: %w", err)
	}

	group := mesh.NewGroup()
	for _, o := range obj.Objects {
		msh, err := meshFromOBJ([]*formats.OBJObject{o})
		if err != nil {
			return nil, fmt.Errorf("loading level %s: object %s: %w", path, o.Name, err)
		}
		if err := group.Add(o.Name, msh); err != nil {
			return nil, fmt.Errorf("loading level %s: %w", path, err)
		}
	}

	m.log.Info("level loaded",
		zap.String("path", path),
		zap.Int("objects", group.Len()))
	return group, nil
}

func (m *Manager) loadHero(h Hero) (*mesh.Mesh, error) {
	files, err := filepath.Glob(filepath.Join(m.cfg.DataDir, h.Frames))
	if err != nil {
		return nil, fmt.Errorf("hero %s: %w", h.Name, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoFrames, h.Name, h.Frames)
	}
	sort.Strings(files)

	frames := make([]*formats.OBJObject, 0, len(files))
	for _, f := range files {
		obj, err := formats.ParseOBJFile(f)
		if err != nil {
			return nil, fmt.Errorf("hero %s: %w", h.Name, err)
		}
		frames = append(frames, obj.Objects[0])
	}

	msh, err := meshFromOBJ(frames)
	if err != nil {
		return nil, fmt.Errorf("hero %s: %w", h.Name, err)
	}
	msh.Name = h.Name

	m.log.Info("hero loaded",
		zap.String("name", h.Name),
		zap.Int("frames", msh.FrameCount()),
		zap.Int("triangles", msh.TriangleCount()))
	return msh, nil
}

// meshFromOBJ builds a mesh whose frames are the given objects. Every frame
// must share the triangle list of the first.
func meshFromOBJ(frames []*formats.OBJObject) (*mesh.Mesh, error) {
	first := frames[0]

	verts := make([][]mesh.Vertex, len(frames))
	for i, o := range frames {
		if i > 0 && !slices.Equal(o.Indices, first.Indices) {
			return nil, fmt.Errorf("%w: frame %d", ErrTopologyMismatch, i)
		}
		verts[i] = make([]mesh.Vertex, len(o.Vertices))
		for j, v := range o.Vertices {
			verts[i][j] = mesh.Vertex{
				Position: v.Position,
				Normal:   v.Normal,
				TexCoord: v.TexCoord,
			}
		}
	}

	parts := make([]mesh.Part, len(first.Parts))
	for i, p := range first.Parts {
		parts[i] = mesh.Part{Material: p.Material, Offset: p.Offset, Count: p.Count}
	}
	return mesh.New(verts, first.Indices, parts)
}
