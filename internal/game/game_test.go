package game

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/manor/internal/mesh"
	"github.com/Faultbox/manor/pkg/math"
)

func vec(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

func mustMesh(positions ...math.Vec3) *mesh.Mesh {
	frame := make([]mesh.Vertex, len(positions))
	for i, p := range positions {
		frame[i].Position = p
	}
	m, err := mesh.New([][]mesh.Vertex{frame}, []uint32{0, 1, 2}, nil)
	if err != nil {
		panic(err)
	}
	return m
}

// buildLevel returns a far away sentinel room and a large room around the
// spawn point.
func buildLevel() *mesh.Group {
	g := mesh.NewGroup()
	g.Add("R_0", mustMesh(vec(500, 500, 500), vec(501, 501, 501), vec(501, 500, 500)))
	g.Add("R_1", mustMesh(vec(-20, 0, -20), vec(-20, 0, 40), vec(40, 0, -20), vec(0, 10, 0)))
	return g
}

type fakeResources struct {
	names    []string
	levelErr error
	heroErr  map[int]error

	level      *mesh.Group
	levelRefs  int
	levelLoads int
	heroRefs   map[int]int
}

func newFakeResources() *fakeResources {
	return &fakeResources{
		names:    []string{"blade", "ladydeath", "warrior", "yoko", "hueteotl", "slith", "rhino"},
		heroErr:  make(map[int]error),
		heroRefs: make(map[int]int),
	}
}

func (r *fakeResources) AcquireLevel() (*mesh.Group, error) {
	if r.levelErr != nil {
		return nil, r.levelErr
	}
	if r.levelRefs == 0 {
		r.level = buildLevel()
		r.levelLoads++
	}
	r.levelRefs++
	return r.level, nil
}

func (r *fakeResources) ReleaseLevel() { r.levelRefs-- }

func (r *fakeResources) AcquireHero(i int) (*mesh.Mesh, error) {
	if err := r.heroErr[i]; err != nil {
		return nil, err
	}
	r.heroRefs[i]++
	return mustMesh(vec(-0.25, -0.5, -0.25), vec(0.25, 0.5, 0.25), vec(0.25, -0.5, -0.25)), nil
}

func (r *fakeResources) ReleaseHero(i int) { r.heroRefs[i]-- }

func (r *fakeResources) HeroCount() int { return len(r.names) }

func (r *fakeResources) HeroName(i int) string { return r.names[i] }

func (r *fakeResources) heldHeroes() int {
	n := 0
	for _, refs := range r.heroRefs {
		n += refs
	}
	return n
}

type fakePlatform struct {
	bindings   []Binding
	fullscreen bool
	grab       bool
	console    bool
	lines      []string
	quit       bool
	presents   int
}

func (p *fakePlatform) Bind(b []Binding) { p.bindings = b }

func (p *fakePlatform) Poll(*Actions) ([]string, bool) {
	lines := p.lines
	p.lines = nil
	return lines, p.quit
}

func (p *fakePlatform) SetFullscreen(on bool)   { p.fullscreen = on }
func (p *fakePlatform) SetGrabInput(on bool)    { p.grab = on }
func (p *fakePlatform) SetConsoleInput(on bool) { p.console = on }
func (p *fakePlatform) Present()                { p.presents++ }

type fakeRenderer struct {
	begins   int
	ends     int
	view     math.Mat4
	meshes   []string
	heroes   int
	progress []float32
	console  []string
}

func (r *fakeRenderer) DrawMesh(m *mesh.Mesh) { r.meshes = append(r.meshes, m.Name) }
func (r *fakeRenderer) Projection() math.Mat4 { return math.Frustum(-1, 1, -1, 1, 1, 100) }
func (r *fakeRenderer) Begin(view math.Mat4) {
	r.begins++
	r.view = view
}
func (r *fakeRenderer) DrawHero(math.Mat4, *mesh.Mesh, int, int, float32) { r.heroes++ }
func (r *fakeRenderer) DrawProgress(p float32)                           { r.progress = append(r.progress, p) }
func (r *fakeRenderer) DrawConsole(lines []string)                       { r.console = lines }
func (r *fakeRenderer) End()                                             { r.ends++ }

type fixture struct {
	game     *Game
	platform *fakePlatform
	renderer *fakeRenderer
	res      *fakeResources
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		platform: &fakePlatform{},
		renderer: &fakeRenderer{},
		res:      newFakeResources(),
	}
	g, err := New(DefaultConfig(), f.platform, f.renderer, f.res, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.game = g
	return f
}

// inScene runs the engine through init and loading.
func (f *fixture) inScene(t *testing.T) *fixture {
	t.Helper()
	for i := 0; i < 1+LoadingSteps; i++ {
		if err := f.game.Engine(); err != nil {
			t.Fatalf("Engine() error = %v", err)
		}
	}
	if f.game.State != StateScene {
		t.Fatalf("State = %v, want scene", f.game.State)
	}
	return f
}

func TestNew_NoHeroes(t *testing.T) {
	res := newFakeResources()
	res.names = nil
	if _, err := New(DefaultConfig(), &fakePlatform{}, &fakeRenderer{}, res, nil); !errors.Is(err, ErrNoHeroes) {
		t.Errorf("New() error = %v, want ErrNoHeroes", err)
	}
}

func TestGame_InitAndLoading(t *testing.T) {
	f := newFixture(t)
	g := f.game

	if err := g.Engine(); err != nil {
		t.Fatal(err)
	}
	if g.State != StateLoading {
		t.Fatalf("State = %v, want loading", g.State)
	}
	if len(f.platform.bindings) != len(DefaultBindings) {
		t.Errorf("bindings = %d, want %d", len(f.platform.bindings), len(DefaultBindings))
	}

	want := []float32{0.25, 0.5, 0.75, 1}
	for i, w := range want {
		if g.Progress.Value() != float32(i)/LoadingSteps {
			t.Errorf("step %d: progress = %v before the step", i, g.Progress.Value())
		}
		if err := g.Engine(); err != nil {
			t.Fatalf("step %d: Engine() error = %v", i, err)
		}
		if g.Progress.Value() != w {
			t.Errorf("step %d: progress = %v, want %v", i, g.Progress.Value(), w)
		}
	}

	if g.State != StateScene {
		t.Errorf("State = %v, want scene", g.State)
	}
	if g.World == nil || g.World.Len() != 2 {
		t.Fatal("world not built")
	}
	if g.Hero.Mesh == nil || g.Hero.Node != 1 {
		t.Errorf("hero not spawned: mesh = %v, node = %d", g.Hero.Mesh != nil, g.Hero.Node)
	}
	if f.res.levelRefs != 1 || f.res.heroRefs[0] != 1 {
		t.Errorf("refs: level = %d, hero = %d, want 1 and 1", f.res.levelRefs, f.res.heroRefs[0])
	}
}

func TestGame_LoadingError(t *testing.T) {
	f := newFixture(t)
	f.res.levelErr = errors.New("disk on fire")

	f.game.Engine()
	if err := f.game.Engine(); err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Engine() error = %v, want the level error", err)
	}
}

func TestGame_RenderLoading(t *testing.T) {
	f := newFixture(t)
	g := f.game
	g.Engine()
	g.Engine()

	g.Render(0)
	if len(f.renderer.progress) != 1 || f.renderer.progress[0] != 0.25 {
		t.Errorf("progress drawn = %v, want [0.25]", f.renderer.progress)
	}
	if f.renderer.begins != 1 || f.renderer.ends != 1 {
		t.Errorf("begins = %d, ends = %d", f.renderer.begins, f.renderer.ends)
	}
	if g.FrameCount != 1 {
		t.Errorf("FrameCount = %d, want 1", g.FrameCount)
	}
}

func TestGame_RenderScene(t *testing.T) {
	f := newFixture(t).inScene(t)
	g := f.game

	g.Render(10 * time.Millisecond)
	if len(f.renderer.meshes) != 1 || f.renderer.meshes[0] != "R_1" {
		t.Errorf("meshes drawn = %v, want [R_1]", f.renderer.meshes)
	}
	if f.renderer.heroes != 1 {
		t.Errorf("hero drawn %d times", f.renderer.heroes)
	}
	if f.renderer.view != g.Hero.View() {
		t.Error("scene not drawn with the hero view")
	}
	if f.renderer.console != nil {
		t.Error("console drawn while closed")
	}

	g.Console.Mode = true
	g.Render(10 * time.Millisecond)
	if f.renderer.console == nil {
		t.Error("console not drawn while open")
	}
}

func TestGame_SceneToggles(t *testing.T) {
	f := newFixture(t).inScene(t)
	g := f.game

	g.Actions.Press(ActionFullscreen)
	g.Actions.Press(ActionGrabInput)
	g.Actions.Press(ActionConsole)
	g.Engine()
	if !g.Fullscreen || !f.platform.fullscreen {
		t.Error("fullscreen not toggled on")
	}
	if !g.GrabInput || !f.platform.grab {
		t.Error("grab not toggled on")
	}
	if !g.Console.Mode || !f.platform.console {
		t.Error("console not opened")
	}

	// Flags are consumed; holding the key does not toggle again.
	g.Engine()
	if !g.Fullscreen || !g.GrabInput || !g.Console.Mode {
		t.Error("toggle fired twice for one press")
	}
}

func TestGame_ConsoleBlocksHero(t *testing.T) {
	f := newFixture(t).inScene(t)
	g := f.game
	g.Console.Mode = true

	g.Actions.Press(ActionHeroLeft)
	g.Physics()
	if g.Hero.Rotation != 0 {
		t.Errorf("hero turned with the console open: %v", g.Hero.Rotation)
	}

	g.Console.Mode = false
	g.Physics()
	if g.Hero.Rotation == 0 {
		t.Error("hero did not turn")
	}
}

func TestGame_PhysicsOnlyInScene(t *testing.T) {
	f := newFixture(t)
	g := f.game
	start := g.Hero.Position
	g.Physics()
	if g.Hero.Position != start {
		t.Error("physics ran before the scene")
	}
}

func TestGame_ChangeHeroKey(t *testing.T) {
	f := newFixture(t).inScene(t)
	g := f.game

	g.Actions.Press(ActionChangeHero)
	g.Engine()
	if g.State != StateChangeHero || g.Desired != 1 {
		t.Fatalf("State = %v, Desired = %d", g.State, g.Desired)
	}
	g.Engine()
	if g.State != StateScene || g.Selected != 1 {
		t.Errorf("State = %v, Selected = %d", g.State, g.Selected)
	}
	if f.res.heroRefs[0] != 0 || f.res.heroRefs[1] != 1 {
		t.Errorf("hero refs = %v", f.res.heroRefs)
	}
	if g.Hero.Mesh == nil || g.Hero.Index != 1 {
		t.Error("new hero not spawned")
	}
}

func TestGame_ChangeHeroWraps(t *testing.T) {
	f := newFixture(t).inScene(t)
	g := f.game
	g.Selected = 6
	g.Actions.Press(ActionChangeHero)
	g.Engine()
	if g.Desired != 0 {
		t.Errorf("Desired = %d, want 0", g.Desired)
	}
}

func TestGame_ChangeHeroFailureKeepsPrevious(t *testing.T) {
	f := newFixture(t).inScene(t)
	g := f.game
	f.res.heroErr[1] = errors.New("missing frames")

	g.Actions.Press(ActionChangeHero)
	g.Engine()
	if err := g.Engine(); err != nil {
		t.Fatalf("Engine() error = %v", err)
	}
	if g.Selected != 0 || g.Hero.Mesh == nil {
		t.Errorf("Selected = %d, mesh = %v, want hero 0 back", g.Selected, g.Hero.Mesh != nil)
	}
	if f.res.heldHeroes() != 1 {
		t.Errorf("held heroes = %d, want 1", f.res.heldHeroes())
	}
}

func TestGame_ConsoleCommands(t *testing.T) {
	f := newFixture(t).inScene(t)
	g := f.game

	tests := []struct {
		line      string
		wantLast  string
		wantState State
		desired   int
	}{
		{"who", "0: blade", StateScene, 0},
		{"list", "6: rhino", StateScene, 0},
		{"bogus arg", "bogus: command not found", StateScene, 0},
		{"change x", `change: bad hero number "x"`, StateScene, 0},
		{"change 9", "OK", StateChangeHero, 2},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			g.State = StateScene
			g.Desired = 0
			g.Console.Exec(tt.line)
			lines := g.Console.Lines()
			if last := lines[len(lines)-1]; last != tt.wantLast {
				t.Errorf("last line = %q, want %q", last, tt.wantLast)
			}
			if g.State != tt.wantState || g.Desired != tt.desired {
				t.Errorf("State = %v, Desired = %d", g.State, g.Desired)
			}
		})
	}
}

func TestGame_ChangeWithoutArgument(t *testing.T) {
	f := newFixture(t).inScene(t)
	g := f.game
	g.Selected = 3
	g.Console.Exec("change")
	if g.Desired != 4 || g.State != StateChangeHero {
		t.Errorf("Desired = %d, State = %v", g.Desired, g.State)
	}
}

func TestGame_Quit(t *testing.T) {
	t.Run("key", func(t *testing.T) {
		f := newFixture(t).inScene(t)
		f.game.Actions.Press(ActionQuit)
		f.game.Engine()
		if f.game.Running() {
			t.Error("still running after quit key")
		}
	})
	t.Run("console", func(t *testing.T) {
		f := newFixture(t).inScene(t)
		f.game.Console.Exec("quit")
		if f.game.Running() {
			t.Error("still running after quit command")
		}
	})
	t.Run("window", func(t *testing.T) {
		f := newFixture(t).inScene(t)
		f.platform.quit = true
		if err := f.game.Step(time.Unix(100, 0)); err != nil {
			t.Fatal(err)
		}
		if f.game.Running() {
			t.Error("still running after window close")
		}
		if f.platform.presents != 0 {
			t.Error("frame presented after quit")
		}
	})
}

func TestGame_RunReleasesResources(t *testing.T) {
	f := newFixture(t).inScene(t)
	f.platform.quit = true

	if err := f.game.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if f.res.levelRefs != 0 || f.res.heldHeroes() != 0 {
		t.Errorf("refs after run: level = %d, heroes = %d", f.res.levelRefs, f.res.heldHeroes())
	}
	if f.game.World != nil {
		t.Error("world not freed")
	}
}

func TestGame_Reload(t *testing.T) {
	f := newFixture(t).inScene(t)
	g := f.game
	old := g.World

	g.RequestReload()
	g.RequestReload() // coalesced
	g.Engine()

	if g.World == old {
		t.Fatal("world not rebuilt")
	}
	if old.Len() != 0 {
		t.Error("old world not freed")
	}
	if f.res.levelLoads != 2 || f.res.levelRefs != 1 {
		t.Errorf("loads = %d, refs = %d, want 2 and 1", f.res.levelLoads, f.res.levelRefs)
	}
	if g.Hero.Node != 1 {
		t.Errorf("hero node = %d, want 1", g.Hero.Node)
	}

	g.Engine()
	if f.res.levelLoads != 2 {
		t.Error("second request was not coalesced")
	}
}

func TestGame_ReloadFailureKeepsWorld(t *testing.T) {
	f := newFixture(t).inScene(t)
	g := f.game
	old := g.World
	f.res.levelErr = errors.New("syntax error")

	g.RequestReload()
	if err := g.Engine(); err != nil {
		t.Fatalf("Engine() error = %v", err)
	}
	if g.World != old || old.Len() != 2 {
		t.Error("world replaced after failed reload")
	}
	if g.State != StateScene {
		t.Errorf("State = %v, want scene", g.State)
	}
}

func TestGame_StepSchedule(t *testing.T) {
	f := newFixture(t)
	g := f.game
	t0 := time.Unix(1000, 0)

	// Engine runs at t0 (init) and every 20ms afterwards.
	steps := []struct {
		at    time.Duration
		state State
	}{
		{0, StateLoading},
		{10 * time.Millisecond, StateLoading},
		{19 * time.Millisecond, StateLoading},
	}
	for _, s := range steps {
		if err := g.Step(t0.Add(s.at)); err != nil {
			t.Fatal(err)
		}
		if g.State != s.state {
			t.Errorf("at %v: State = %v, want %v", s.at, g.State, s.state)
		}
	}
	if g.Progress.Value() != 0 {
		t.Errorf("progress = %v, engine ran early", g.Progress.Value())
	}

	g.Step(t0.Add(20 * time.Millisecond))
	if g.Progress.Value() != 0.25 {
		t.Errorf("progress = %v, want 0.25", g.Progress.Value())
	}
	if f.platform.presents != 4 {
		t.Errorf("presents = %d, want one per step", f.platform.presents)
	}
}

func TestGame_Benchmark(t *testing.T) {
	f := newFixture(t)
	g := f.game
	t0 := time.Unix(1000, 0)

	g.Step(t0)
	if g.FrameCount != 0 {
		t.Errorf("FrameCount = %d, want reset at the first report", g.FrameCount)
	}
	g.Step(t0.Add(time.Second))
	g.Step(t0.Add(2 * time.Second))
	if g.FrameCount != 2 {
		t.Errorf("FrameCount = %d, want 2", g.FrameCount)
	}
	g.Step(t0.Add(5 * time.Second))
	if g.FrameCount != 0 {
		t.Errorf("FrameCount = %d, want reset after 5s", g.FrameCount)
	}
}

func TestActions(t *testing.T) {
	var a Actions

	a.Press(ActionHeroJump)
	a.Release(ActionHeroJump)
	if a.Held(ActionHeroJump) {
		t.Error("held after release")
	}
	if !a.Take(ActionHeroJump) {
		t.Error("tap lost before Take")
	}
	if a.Take(ActionHeroJump) {
		t.Error("Take fired twice")
	}

	a.Press(ActionQuit)
	a.Reset()
	if a.Held(ActionQuit) || a.Take(ActionQuit) {
		t.Error("Reset kept state")
	}

	a.Press(actionCount)
	if a.Held(-1) || a.Take(actionCount) {
		t.Error("out of range action reported")
	}
	if ActionHeroBackward.String() != "hero-backward" || Action(99).String() != "unknown" {
		t.Error("unexpected action names")
	}
}

func TestConsole(t *testing.T) {
	c := NewConsole()
	c.Exec("   ")
	if len(c.Lines()) != 0 {
		t.Error("blank line produced output")
	}

	c.Register("echo", "print arguments", func(args []string) {
		c.Printf("%s", strings.Join(args[1:], " "))
	})
	c.Exec("echo  hello   world")
	lines := c.Lines()
	if lines[0] != "> echo hello world" || lines[1] != "hello world" {
		t.Errorf("lines = %q", lines)
	}

	c.Clear()
	c.Exec("help")
	lines = c.Lines()
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "echo") || !strings.HasPrefix(lines[2], "help") {
		t.Errorf("help output = %q", lines)
	}

	for i := 0; i < 2*MaxConsoleLines; i++ {
		c.Printf("%d", i)
	}
	lines = c.Lines()
	if len(lines) != MaxConsoleLines || lines[len(lines)-1] != "127" {
		t.Errorf("scrollback = %d lines ending in %q", len(lines), lines[len(lines)-1])
	}

	var echoed []string
	c.Echo = func(line string) { echoed = append(echoed, line) }
	c.Exec("nope")
	if len(echoed) != 2 || echoed[1] != "nope: command not found" {
		t.Errorf("echoed = %q", echoed)
	}
}

func TestProgress(t *testing.T) {
	var p Progress
	if p.Value() != 0 {
		t.Error("empty progress should be 0")
	}
	p.Start(2)
	p.Step()
	p.Step()
	p.Step()
	if p.Value() != 1 || !p.Done() {
		t.Errorf("Value() = %v, want clamped to 1", p.Value())
	}
}

func TestMod(t *testing.T) {
	tests := []struct{ a, n, want int }{
		{8, 7, 1},
		{-1, 7, 6},
		{3, 0, 0},
	}
	for _, tt := range tests {
		if got := mod(tt.a, tt.n); got != tt.want {
			t.Errorf("mod(%d, %d) = %d, want %d", tt.a, tt.n, got, tt.want)
		}
	}
}

func TestState_String(t *testing.T) {
	if StateChangeHero.String() != "change-hero" || State(42).String() != "unknown" {
		t.Error("unexpected state names")
	}
}
