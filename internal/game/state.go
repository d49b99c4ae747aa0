package game

import (
	"github.com/Faultbox/manor/internal/entity"
	"github.com/Faultbox/manor/internal/world"
)

// State is a phase of the game scheduler.
type State int

const (
	StateInit State = iota
	StateLoading
	StateScene
	StateChangeHero
	StateDestroy
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoading:
		return "loading"
	case StateScene:
		return "scene"
	case StateChangeHero:
		return "change-hero"
	case StateDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// Progress counts completed loading steps.
type Progress struct {
	max     int
	current int
}

// Start resets the bar for max steps.
func (p *Progress) Start(max int) {
	p.max = max
	p.current = 0
}

// Step marks one step done.
func (p *Progress) Step() {
	if p.current < p.max {
		p.current++
	}
}

// Done reports whether every step completed.
func (p *Progress) Done() bool { return p.current >= p.max }

// Value returns the completed fraction in [0, 1].
func (p *Progress) Value() float32 {
	if p.max == 0 {
		return 0
	}
	return float32(p.current) / float32(p.max)
}

// GameState is everything the scheduler owns between ticks.
type GameState struct {
	State State

	Selected int // hero in play
	Desired  int // hero requested by change

	Fullscreen bool
	GrabInput  bool

	Actions  Actions
	Console  *Console
	Progress Progress

	World *world.World
	Hero  *entity.Hero

	// FrameCount counts rendered frames since the last benchmark report.
	FrameCount int
}
