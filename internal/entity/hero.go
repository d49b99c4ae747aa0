// Package entity implements the player-controlled hero: input handling,
// the jump and fall integration and collision response against the world.
package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/chewxy/math32"

	"github.com/Faultbox/manor/internal/mesh"
	"github.com/Faultbox/manor/internal/world"
	"github.com/Faultbox/manor/pkg/geom"
	"github.com/Faultbox/manor/pkg/math"
)

// ErrNoMesh is returned when spawning a hero without a mesh.
var ErrNoMesh = errors.New("hero has no mesh")

// Action is the hero's animation state.
type Action uint8

const (
	ActionNone Action = iota
	ActionRunning
	ActionJumping
	ActionFalling
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionRunning:
		return "running"
	case ActionJumping:
		return "jumping"
	case ActionFalling:
		return "falling"
	default:
		return "unknown"
	}
}

// Movement tuning, per physics tick.
const (
	TurnStep    float32 = 0.8    // degrees of yaw per tick
	RunSpeed    float32 = 0.04   // horizontal distance per tick
	JumpImpulse float32 = 0.15   // vertical velocity given by a jump
	JumpDecay   float32 = 0.0004 // vertical deceleration while rising
	FallStep    float32 = 0.0981 // downward offset applied every tick
)

// SpawnPosition is where a new hero starts.
var SpawnPosition = math.Vec3{X: 0, Y: 4, Z: 0}

// Input is the decoded input state of one tick.
type Input struct {
	Left     bool
	Right    bool
	Forward  bool
	Backward bool
	Jump     bool

	// Crouch is bound but has no effect on movement; heroes have no
	// crouching clip.
	Crouch bool

	// Console is true while the console captures the keyboard.
	Console bool
}

// ClipFor returns the animation clip played for an action.
func ClipFor(a Action) mesh.Clip {
	switch a {
	case ActionRunning:
		return mesh.Clip{First: 40, Last: 45, FPS: 10, Repeat: true}
	case ActionJumping:
		return mesh.Clip{First: 66, Last: 71, FPS: 7}
	case ActionFalling:
		return mesh.Clip{First: 54, Last: 57, FPS: 7}
	default:
		return mesh.Clip{First: 0, Last: 39, FPS: 9, Repeat: true}
	}
}

// Hero is the player entity.
type Hero struct {
	Position math.Vec3
	Rotation float32 // yaw in degrees
	Velocity math.Vec3
	Action   Action

	// Animating is false once a non-repeating clip has played to its end.
	Animating bool

	Node  world.NodeID
	BBox  geom.BBox // relative to Position
	Index int
	Mesh  *mesh.Mesh

	Animator mesh.Animator

	lastAction Action
}

// New returns a hero at SpawnPosition without a mesh.
func New() *Hero {
	return &Hero{
		Position:  SpawnPosition,
		Animating: true,
		Node:      world.NoNode,
	}
}

// Spawn attaches mesh m as hero number index and locates the hero in w.
// The collision box is the frame 0 bounds with X and Z extents doubled.
func (h *Hero) Spawn(m *mesh.Mesh, index int, w *world.World) error {
	if m == nil {
		return ErrNoMesh
	}
	box, err := m.ComputeBBox(0)
	if err != nil {
		return fmt.Errorf("spawning hero %d: %w", index, err)
	}
	box.Extent.X *= 2
	box.Extent.Z *= 2

	h.Mesh = m
	h.Index = index
	h.BBox = box
	h.Animator.Reset()
	h.Locate(w)
	return nil
}

// Locate sets Node to the world node containing Position.
func (h *Hero) Locate(w *world.World) {
	h.Node = world.NoNode
	if w == nil {
		return
	}
	if id, ok := w.NodeAt(h.Position); ok {
		h.Node = id
	}
}

// Kill detaches the mesh. Position and motion are kept for the next Spawn.
func (h *Hero) Kill() {
	h.Mesh = nil
	h.Node = world.NoNode
}

// Physics advances the hero by one tick.
func (h *Hero) Physics(w *world.World, in Input) {
	h.Velocity.X = 0
	h.Velocity.Z = 0
	if h.Velocity.Y > 0 {
		h.Velocity.Y -= JumpDecay
	}

	moved := false
	if !in.Console && h.Action != ActionFalling {
		if in.Left {
			h.run()
			h.Rotation += TurnStep
			moved = true
		}
		if in.Right {
			h.run()
			h.Rotation -= TurnStep
			moved = true
		}
		if in.Forward {
			h.run()
			h.setHorizontal(-RunSpeed)
			moved = true
		}
		if in.Backward {
			h.run()
			h.setHorizontal(RunSpeed)
			moved = true
		}
		if in.Jump {
			h.Action = ActionJumping
			if h.Velocity.Y == 0 {
				h.Velocity.Y = JumpImpulse
			}
			moved = true
		}
	}

	if !moved {
		switch h.Action {
		case ActionJumping:
		case ActionFalling:
			if !h.Animating {
				h.Action = ActionNone
			}
		default:
			h.Action = ActionNone
		}
	}

	h.Position.X += h.Velocity.X
	h.Position.Y += h.Velocity.Y - FallStep
	h.Position.Z += h.Velocity.Z

	if w == nil {
		h.Node = world.NoNode
		return
	}

	box := h.BBox.Translate(h.Position)
	id, ok := w.NodeAt(box.Center)
	h.Node = id
	if !ok {
		return
	}

	var reaction math.Vec3
	if !w.Collide(id, box, &reaction) {
		return
	}
	h.Position = h.Position.Add(reaction)

	if h.Action == ActionJumping {
		if reaction.Y < 0 {
			h.Velocity.Y = -math.Epsilon
		}
		if reaction.Y > 0 {
			h.Velocity.Y = 0
			h.Action = ActionFalling
		}
	}
}

func (h *Hero) run() {
	if h.Action != ActionJumping {
		h.Action = ActionRunning
	}
}

func (h *Hero) setHorizontal(speed float32) {
	rad := math.DegToRad(h.Rotation)
	h.Velocity.X = speed * math32.Sin(rad)
	h.Velocity.Z = speed * math32.Cos(rad)
}

// TakeActionChange reports a change of action since the last call.
func (h *Hero) TakeActionChange() (Action, bool) {
	if h.Action == h.lastAction {
		return h.Action, false
	}
	h.lastAction = h.Action
	return h.Action, true
}

// Animate advances the hero animation by dt, restarting the clip when the
// action changed, and returns the frames to blend. It updates Animating.
func (h *Hero) Animate(dt time.Duration) (from, to int, t float32) {
	if _, changed := h.TakeActionChange(); changed {
		h.Animator.Reset()
	}

	clip := ClipFor(h.Action)
	if h.Mesh != nil {
		clip = clip.Clamp(h.Mesh.FrameCount())
	}
	h.Animator.Play(clip)
	h.Animating = h.Animator.Advance(dt)
	return h.Animator.Frames()
}

// View returns the camera matrix that follows the hero from behind.
func (h *Hero) View() math.Mat4 {
	return math.Translate(math.Vec3{Y: -0.4, Z: -2}).
		Mul(math.Rotate(-h.Rotation, math.Vec3{Y: 1})).
		Mul(math.Translate(h.Position.Neg()))
}

// Model returns the hero model matrix in camera space.
func (h *Hero) Model() math.Mat4 {
	return math.Translate(math.Vec3{Y: -0.4, Z: -2}).
		Mul(math.Rotate(-90, math.Vec3{Y: 1}))
}
