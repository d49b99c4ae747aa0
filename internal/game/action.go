package game

// Action is a bindable input action.
type Action int

const (
	ActionQuit Action = iota
	ActionFullscreen
	ActionGrabInput
	ActionConsole
	ActionChangeHero

	ActionHeroLeft
	ActionHeroRight
	ActionHeroJump
	ActionHeroCrouch
	ActionHeroForward
	ActionHeroBackward

	actionCount
)

var actionNames = [actionCount]string{
	ActionQuit:         "quit",
	ActionFullscreen:   "fullscreen",
	ActionGrabInput:    "grab-input",
	ActionConsole:      "console",
	ActionChangeHero:   "change-hero",
	ActionHeroLeft:     "hero-left",
	ActionHeroRight:    "hero-right",
	ActionHeroJump:     "hero-jump",
	ActionHeroCrouch:   "hero-crouch",
	ActionHeroForward:  "hero-forward",
	ActionHeroBackward: "hero-backward",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// Binding maps a key, by its SDL key name, to an action.
type Binding struct {
	Key    string
	Action Action
}

// DefaultBindings are registered when the game initializes.
var DefaultBindings = []Binding{
	{"Escape", ActionQuit},
	{"F1", ActionFullscreen},
	{"F2", ActionGrabInput},
	{"F3", ActionConsole},
	{"F4", ActionChangeHero},

	{"Left", ActionHeroLeft},
	{"Right", ActionHeroRight},
	{"Q", ActionHeroJump},
	{"A", ActionHeroCrouch},
	{"Up", ActionHeroForward},
	{"Down", ActionHeroBackward},
}

// Actions tracks the state of every action. Held reports whether the key is
// down; a press also latches the action until Take consumes it, so a tap
// shorter than one engine tick is not lost.
type Actions struct {
	held    [actionCount]bool
	latched [actionCount]bool
}

// Press marks a as down and latches it.
func (s *Actions) Press(a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	s.held[a] = true
	s.latched[a] = true
}

// Release marks a as up. A pending latch survives.
func (s *Actions) Release(a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	s.held[a] = false
}

// Held reports whether a is currently down.
func (s *Actions) Held(a Action) bool {
	return a >= 0 && a < actionCount && s.held[a]
}

// Take reports whether a was pressed since the last Take and resets it.
func (s *Actions) Take(a Action) bool {
	if a < 0 || a >= actionCount || !s.latched[a] {
		return false
	}
	s.latched[a] = false
	return true
}

// Reset releases every action and drops pending latches.
func (s *Actions) Reset() {
	*s = Actions{}
}
