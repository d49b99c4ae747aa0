package main

import (
	"github.com/Faultbox/manor/internal/engine/input"
	"github.com/Faultbox/manor/internal/engine/renderer"
	"github.com/Faultbox/manor/internal/engine/window"
	"github.com/Faultbox/manor/internal/game"
)

// platform joins the SDL window and input handler into game.Platform.
type platform struct {
	*window.Window
	*input.Input

	renderer *renderer.Renderer
	pending  string
}

func (p *platform) Poll(actions *game.Actions) ([]string, bool) {
	quit := p.Input.Update(actions)
	for _, e := range p.Input.Events() {
		if e.Type == input.EventWindowResize {
			p.renderer.Resize(e.Width, e.Height)
		}
	}

	// The typed console line is shown in the title bar.
	if line := p.Input.Pending(); line != p.pending {
		p.pending = line
		p.SetTitle(windowTitle + " > " + line)
	}
	return p.Input.TakeLines(), quit
}

func (p *platform) SetConsoleInput(on bool) {
	p.Input.SetConsoleInput(on)
	p.pending = ""
	if on {
		p.SetTitle(windowTitle + " > ")
	} else {
		p.SetTitle(windowTitle)
	}
}

func (p *platform) Present() {
	p.SwapBuffers()
}
