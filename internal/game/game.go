// Package game implements the tick scheduler and the game state machine.
package game

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/manor/internal/entity"
	"github.com/Faultbox/manor/internal/mesh"
	"github.com/Faultbox/manor/internal/world"
	"github.com/Faultbox/manor/pkg/math"
)

// ErrNoHeroes is returned when no hero is configured.
var ErrNoHeroes = errors.New("no heroes configured")

// LoadingSteps is the number of steps shown by the loading progress bar.
const LoadingSteps = 4

// Platform is the window and input layer.
type Platform interface {
	// Bind registers key bindings.
	Bind(bindings []Binding)

	// Poll feeds pending window events into actions. It returns the console
	// lines completed since the last call and whether the window was closed.
	Poll(actions *Actions) (lines []string, quit bool)

	SetFullscreen(on bool)
	SetGrabInput(on bool)
	SetConsoleInput(on bool)

	// Present shows the rendered frame.
	Present()
}

// Renderer draws frames. DrawMesh draws with the view given to Begin.
type Renderer interface {
	world.Drawer

	Projection() math.Mat4
	Begin(view math.Mat4)
	DrawHero(model math.Mat4, m *mesh.Mesh, from, to int, t float32)
	DrawProgress(progress float32)
	DrawConsole(lines []string)
	End()
}

// Resources hands out shared level and hero meshes.
type Resources interface {
	AcquireLevel() (*mesh.Group, error)
	ReleaseLevel()
	AcquireHero(i int) (*mesh.Mesh, error)
	ReleaseHero(i int)
	HeroCount() int
	HeroName(i int) string
}

// Config holds scheduler settings.
type Config struct {
	StartHero int
	Spawn     math.Vec3

	PhysicsTick    time.Duration
	EngineTick     time.Duration
	BenchmarkEvery time.Duration
}

// DefaultConfig returns the stock tick rates.
func DefaultConfig() Config {
	return Config{
		Spawn:          entity.SpawnPosition,
		PhysicsTick:    10 * time.Millisecond,
		EngineTick:     20 * time.Millisecond,
		BenchmarkEvery: 5 * time.Second,
	}
}

// Game is the main game instance.
type Game struct {
	GameState

	config    Config
	platform  Platform
	renderer  Renderer
	resources Resources
	log       *zap.Logger

	reload chan struct{}

	// resources currently held
	levelHeld bool
	heroHeld  int
	group     *mesh.Group
	heroMesh  *mesh.Mesh

	physics   ticker
	engine    ticker
	benchmark ticker
	lastFrame time.Time
	lastBench time.Time
}

// New creates a new game instance.
func New(cfg Config, p Platform, r Renderer, res Resources, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if res.HeroCount() == 0 {
		return nil, ErrNoHeroes
	}

	g := &Game{
		config:    cfg,
		platform:  p,
		renderer:  r,
		resources: res,
		log:       log,
		reload:    make(chan struct{}, 1),
		heroHeld:  -1,
		physics:   ticker{every: cfg.PhysicsTick},
		engine:    ticker{every: cfg.EngineTick},
		benchmark: ticker{every: cfg.BenchmarkEvery},
	}
	g.State = StateInit
	g.Selected = mod(cfg.StartHero, res.HeroCount())
	g.Desired = g.Selected
	g.Console = NewConsole()
	g.Console.Echo = func(line string) { log.Debug("console", zap.String("line", line)) }
	g.Hero = entity.New()
	g.Hero.Position = cfg.Spawn

	g.Console.Register("list", "list heroes", g.cmdList)
	g.Console.Register("who", "show the current hero", g.cmdWho)
	g.Console.Register("change", "change [n]: switch to the next or the given hero", g.cmdChange)
	g.Console.Register("quit", "leave the game", g.cmdQuit)

	log.Info("game created",
		zap.Int("heroes", res.HeroCount()),
		zap.Int("start_hero", g.Selected))
	return g, nil
}

// Running reports whether the game has not been destroyed yet.
func (g *Game) Running() bool {
	return g.State != StateDestroy
}

// RequestReload asks for the level to be rebuilt at the next scene tick.
// It is safe to call from any goroutine and never blocks.
func (g *Game) RequestReload() {
	select {
	case g.reload <- struct{}{}:
	default:
	}
}

// Run drives the game until it is destroyed.
func (g *Game) Run() error {
	g.log.Info("starting game loop")

	for g.Running() {
		if err := g.Step(time.Now()); err != nil {
			return err
		}
		// Yield to the OS between frames.
		time.Sleep(time.Millisecond)
	}

	g.release()
	g.log.Info("game loop stopped")
	return nil
}

// Step polls input, runs whichever ticks are due at now and renders one
// frame.
func (g *Game) Step(now time.Time) error {
	lines, quit := g.platform.Poll(&g.Actions)
	for _, line := range lines {
		g.Console.Exec(line)
	}
	if quit {
		g.State = StateDestroy
	}

	if g.physics.due(now) {
		g.Physics()
	}
	if g.engine.due(now) {
		if err := g.Engine(); err != nil {
			return err
		}
	}
	if !g.Running() {
		return nil
	}

	dt := time.Duration(0)
	if !g.lastFrame.IsZero() {
		dt = now.Sub(g.lastFrame)
	}
	g.lastFrame = now
	g.Render(dt)
	g.platform.Present()

	if g.benchmark.due(now) {
		g.reportBenchmark(now)
	}
	return nil
}

// Engine runs one tick of the state machine.
func (g *Game) Engine() error {
	switch g.State {
	case StateInit:
		g.platform.Bind(DefaultBindings)
		g.platform.SetGrabInput(g.GrabInput)
		g.Console.Printf("manor")
		g.startLoading()

	case StateLoading:
		if err := g.loadStep(); err != nil {
			return err
		}
		if g.Progress.Done() {
			g.log.Info("scene ready", zap.String("hero", g.resources.HeroName(g.Selected)))
			g.State = StateScene
		}

	case StateScene:
		g.scene()

	case StateChangeHero:
		if err := g.changeHero(); err != nil {
			return err
		}
		g.State = StateScene

	case StateDestroy:
	}
	return nil
}

func (g *Game) scene() {
	if g.Actions.Take(ActionQuit) {
		g.State = StateDestroy
		return
	}
	if g.Actions.Take(ActionFullscreen) {
		g.Fullscreen = !g.Fullscreen
		g.platform.SetFullscreen(g.Fullscreen)
	}
	if g.Actions.Take(ActionGrabInput) {
		g.GrabInput = !g.GrabInput
		g.platform.SetGrabInput(g.GrabInput)
	}
	if g.Actions.Take(ActionConsole) {
		g.Console.Mode = !g.Console.Mode
		g.platform.SetConsoleInput(g.Console.Mode)
	}
	if g.Actions.Take(ActionChangeHero) {
		g.Desired = mod(g.Selected+1, g.resources.HeroCount())
		g.State = StateChangeHero
		return
	}

	select {
	case <-g.reload:
		g.reloadLevel()
	default:
	}
}

func (g *Game) startLoading() {
	g.Progress.Start(LoadingSteps)
	g.State = StateLoading
}

// loadStep performs the next loading step.
func (g *Game) loadStep() error {
	switch g.Progress.current {
	case 0:
		group, err := g.resources.AcquireLevel()
		if err != nil {
			return fmt.Errorf("loading level: %w", err)
		}
		g.levelHeld = true
		g.group = group

	case 1:
		w, err := world.New(g.group, g.log.Named("world"))
		if err != nil {
			return err
		}
		w.SetProjection(g.renderer.Projection())
		g.World = w

	case 2:
		m, err := g.acquireHero(g.Selected)
		if err != nil {
			return err
		}
		g.heroMesh = m

	case 3:
		if err := g.Hero.Spawn(g.heroMesh, g.Selected, g.World); err != nil {
			return err
		}
		g.heroMesh = nil
	}
	g.Progress.Step()
	return nil
}

// reloadLevel rebuilds the world from a fresh copy of the level. On failure
// the current world stays in place.
func (g *Game) reloadLevel() {
	if g.levelHeld {
		g.resources.ReleaseLevel()
		g.levelHeld = false
	}

	group, err := g.resources.AcquireLevel()
	if err != nil {
		g.log.Error("level reload failed", zap.Error(err))
		g.Console.Printf("reload: %v", err)
		return
	}
	g.levelHeld = true

	w, err := world.New(group, g.log.Named("world"))
	if err != nil {
		g.log.Error("level reload failed", zap.Error(err))
		g.Console.Printf("reload: %v", err)
		return
	}
	w.SetProjection(g.renderer.Projection())

	if g.World != nil {
		g.World.Free()
	}
	g.World = w
	g.group = group
	g.Hero.Locate(w)
	g.log.Info("level reloaded", zap.Int("nodes", w.Len()))
}

func (g *Game) acquireHero(i int) (*mesh.Mesh, error) {
	m, err := g.resources.AcquireHero(i)
	if err != nil {
		return nil, fmt.Errorf("loading hero %d: %w", i, err)
	}
	g.heroHeld = i
	return m, nil
}

func (g *Game) changeHero() error {
	prev := g.Selected
	g.Hero.Kill()
	g.releaseHero()

	g.Selected = g.Desired
	m, err := g.acquireHero(g.Selected)
	if err != nil {
		g.log.Error("hero change failed", zap.Int("hero", g.Selected), zap.Error(err))
		g.Console.Printf("change: %v", err)
		g.Selected = prev
		if m, err = g.acquireHero(prev); err != nil {
			return err
		}
	}
	if err := g.Hero.Spawn(m, g.Selected, g.World); err != nil {
		return err
	}
	g.log.Info("hero changed",
		zap.Int("hero", g.Selected),
		zap.String("name", g.resources.HeroName(g.Selected)))
	return nil
}

func (g *Game) releaseHero() {
	if g.heroHeld >= 0 {
		g.resources.ReleaseHero(g.heroHeld)
		g.heroHeld = -1
	}
}

// release frees the world and every held resource.
func (g *Game) release() {
	g.Hero.Kill()
	g.releaseHero()
	if g.World != nil {
		g.World.Free()
		g.World = nil
	}
	g.group = nil
	if g.levelHeld {
		g.resources.ReleaseLevel()
		g.levelHeld = false
	}
}

// Physics runs one hero physics tick.
func (g *Game) Physics() {
	if g.State != StateScene {
		return
	}
	a := &g.Actions
	g.Hero.Physics(g.World, entity.Input{
		Left:     a.Held(ActionHeroLeft),
		Right:    a.Held(ActionHeroRight),
		Forward:  a.Held(ActionHeroForward),
		Backward: a.Held(ActionHeroBackward),
		Jump:     a.Held(ActionHeroJump),
		Crouch:   a.Held(ActionHeroCrouch),
		Console:  g.Console.Mode,
	})
}

// Render draws one frame for the current state.
func (g *Game) Render(dt time.Duration) {
	switch g.State {
	case StateLoading:
		g.renderer.Begin(math.Identity())
		g.renderer.DrawProgress(g.Progress.Value())
		g.renderer.End()

	case StateScene:
		from, to, t := g.Hero.Animate(dt)
		view := g.Hero.View()

		g.renderer.Begin(view)
		if g.World != nil && g.Hero.Node != world.NoNode {
			g.World.SetProjection(g.renderer.Projection())
			g.World.Draw(view, g.Hero.Node, g.renderer)
		}
		if g.Hero.Mesh != nil {
			g.renderer.DrawHero(g.Hero.Model(), g.Hero.Mesh, from, to, t)
		}
		if g.Console.Mode {
			g.renderer.DrawConsole(g.Console.Lines())
		}
		g.renderer.End()
	}
	g.FrameCount++
}

func (g *Game) reportBenchmark(now time.Time) {
	if !g.lastBench.IsZero() {
		elapsed := now.Sub(g.lastBench).Seconds()
		if elapsed > 0 {
			fps := float64(g.FrameCount) / elapsed
			g.log.Info(fmt.Sprintf("%d frames in %.1f seconds = %.3f FPS", g.FrameCount, elapsed, fps),
				zap.Float64("fps", fps))
		}
	}
	g.FrameCount = 0
	g.lastBench = now
}

func (g *Game) cmdList([]string) {
	for i := 0; i < g.resources.HeroCount(); i++ {
		g.Console.Printf("%d: %s", i, g.resources.HeroName(i))
	}
}

func (g *Game) cmdWho([]string) {
	g.Console.Printf("%d: %s", g.Selected, g.resources.HeroName(g.Selected))
}

func (g *Game) cmdChange(args []string) {
	if g.State != StateScene {
		g.Console.Printf("change: not in game")
		return
	}
	n := g.resources.HeroCount()
	if len(args) < 2 {
		g.Desired = mod(g.Selected+1, n)
	} else {
		v, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			g.Console.Printf("change: bad hero number %q", args[1])
			return
		}
		g.Desired = int(v % uint64(n))
	}
	g.State = StateChangeHero
	g.Console.Printf("OK")
}

func (g *Game) cmdQuit([]string) {
	g.State = StateDestroy
}

func mod(a, n int) int {
	if n <= 0 {
		return 0
	}
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

// ticker fires at most once per call to due, then waits a full period.
type ticker struct {
	every time.Duration
	next  time.Time
}

func (t *ticker) due(now time.Time) bool {
	if now.Before(t.next) {
		return false
	}
	t.next = now.Add(t.every)
	return true
}
