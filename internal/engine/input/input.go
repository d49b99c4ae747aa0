// Package input turns SDL2 events into game actions and console lines.
package input

import (
	"strings"
	"unicode/utf8"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/manor/internal/game"
	"github.com/Faultbox/manor/internal/logger"
)

// EventType classifies events that are not bound to an action.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
)

// Event is a window event the caller may need besides actions.
type Event struct {
	Type   EventType
	Width  int
	Height int
}

// Input maps key scancodes to actions and collects console text.
type Input struct {
	events   []Event
	bindings map[sdl.Scancode]game.Action

	text  bool
	line  strings.Builder
	lines []string
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events:   make([]Event, 0, 16),
		bindings: make(map[sdl.Scancode]game.Action),
	}
}

// Bind registers key bindings by SDL key name. Unknown names are skipped.
func (i *Input) Bind(bindings []game.Binding) {
	for _, b := range bindings {
		sc := sdl.GetScancodeFromName(b.Key)
		if sc == sdl.SCANCODE_UNKNOWN {
			logger.Warn("unknown key in binding",
				zap.String("key", b.Key),
				zap.Stringer("action", b.Action),
			)
			continue
		}
		i.bindings[sc] = b.Action
	}
	logger.Debug("key bindings registered", zap.Int("count", len(i.bindings)))
}

// SetConsoleInput starts or stops collecting typed text.
func (i *Input) SetConsoleInput(on bool) {
	if on == i.text {
		return
	}
	i.text = on
	i.line.Reset()
	if on {
		sdl.StartTextInput()
	} else {
		sdl.StopTextInput()
	}
}

// Update polls SDL events into actions. It returns true if the window was
// closed.
func (i *Input) Update(actions *game.Actions) bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if i.text && e.Type == sdl.KEYDOWN && i.editLine(e.Keysym.Scancode) {
				continue
			}
			action, ok := i.bindings[e.Keysym.Scancode]
			if !ok {
				continue
			}
			switch {
			case e.Type == sdl.KEYDOWN && e.Repeat == 0:
				actions.Press(action)
			case e.Type == sdl.KEYUP:
				actions.Release(action)
			}

		case *sdl.TextInputEvent:
			if i.text {
				i.line.WriteString(e.GetText())
			}
		}
	}

	return false
}

// editLine handles line editing keys. It reports whether the key was used.
func (i *Input) editLine(sc sdl.Scancode) bool {
	switch sc {
	case sdl.SCANCODE_RETURN, sdl.SCANCODE_KP_ENTER:
		i.lines = append(i.lines, i.line.String())
		i.line.Reset()
		return true
	case sdl.SCANCODE_BACKSPACE:
		s := i.line.String()
		if s == "" {
			return true
		}
		_, size := utf8.DecodeLastRuneInString(s)
		i.line.Reset()
		i.line.WriteString(s[:len(s)-size])
		return true
	}
	return false
}

// TakeLines returns console lines completed since the last call.
func (i *Input) TakeLines() []string {
	lines := i.lines
	i.lines = nil
	return lines
}

// Pending returns the console line being typed.
func (i *Input) Pending() string {
	return i.line.String()
}

// Events returns the unbound events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}
