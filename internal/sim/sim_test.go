package sim

import (
	"math"
	"os"
	"testing"
	"time"

	"fallingstuff/internal/config"
	"fallingstuff/internal/core"
	"fallingstuff/internal/event"
	"fallingstuff/internal/render"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	core.SetFatalHandler(func(msg string) { panic(msg) })
	os.Exit(m.Run())
}

func expectFatal(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected fatal error")
		}
	}()
	fn()
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	sim   *Simulation
	store *render.Store
	clock *fakeClock
}

// newHarness builds a simulation over a 100×50 mm field.
func newHarness(t *testing.T, cfg config.Sim, opts ...func(*Options)) *harness {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	h := &harness{
		store: render.NewStore(nil),
		clock: &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	o := Options{Config: cfg, Renderer: h.store, Now: h.clock.Now}
	for _, fn := range opts {
		fn(&o)
	}
	h.sim = New(o)
	h.sim.ViewChanged(core.ViewSizeFromPixels(400, 200, 0.25))
	return h
}

// run ticks at 60 Hz for d of fake time, starting with an immediate tick.
func (h *harness) run(d time.Duration) {
	tick := time.Second / 60
	h.sim.Update()
	for elapsed := time.Duration(0); elapsed < d; elapsed += tick {
		h.clock.Advance(tick)
		h.sim.Update()
	}
}

func TestInitWithoutRendererIsFatal(t *testing.T) {
	s := New(Options{Config: config.DefaultSim()})
	expectFatal(t, s.Init)
	expectFatal(t, func() { s.ViewChanged(core.ViewSizeFromPixels(10, 10, 1)) })
}

func TestInitWithoutViewIsFatal(t *testing.T) {
	s := New(Options{Config: config.DefaultSim(), Renderer: render.NewStore(nil)})
	expectFatal(t, s.Init)
	if s.DidInit() {
		t.Fatal("failed Init must leave the simulation dead")
	}
}

func TestInitIsIdempotent(t *testing.T) {
	h := newHarness(t, config.DefaultSim())
	h.sim.Init()
	buffers := h.store.NumVertexBuffers()
	pegs := h.sim.Arena().NumPegs()
	h.sim.Init()
	if h.store.NumVertexBuffers() != buffers || h.sim.Arena().NumPegs() != pegs {
		t.Fatal("second Init must not rebuild anything")
	}
	if h.sim.State() != core.Alive {
		t.Fatalf("state = %v", h.sim.State())
	}
}

func TestPegCountFollowsDensity(t *testing.T) {
	h := newHarness(t, config.DefaultSim())
	h.sim.Init()
	if w, hh := h.sim.WorldWidth(), h.sim.WorldHeight(); w != 100 || hh != 50 {
		t.Fatalf("world = %vx%v", w, hh)
	}
	a := h.sim.Arena()
	if a.NumPegs() != 3 {
		t.Fatalf("pegs = %d, want 3", a.NumPegs())
	}
	if a.NumSegments() != 3 {
		t.Fatalf("walls = %d, want 3", a.NumSegments())
	}
	if a.NumCirclePegs()+a.NumBoxes() != 3 {
		t.Fatalf("circle pegs %d + box pegs %d != 3", a.NumCirclePegs(), a.NumBoxes())
	}
}

func TestSpawnUpToCapThenArmReset(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.MarblesMax = 5
	cfg.SpawnRate = 10
	h := newHarness(t, cfg)
	h.run(10 * time.Second)

	st := h.sim.Stats()
	if st.Marbles != 5 {
		t.Fatalf("marbles = %d, want 5", st.Marbles)
	}
	if st.Circles != st.CirclePegs+5 {
		t.Fatalf("circles = %d, circle pegs = %d", st.Circles, st.CirclePegs)
	}
	if !st.ResetArmed || st.ResetInS <= 0 || st.ResetInS >= cfg.ResetDelayS {
		t.Fatalf("reset countdown armed=%v in=%v", st.ResetArmed, st.ResetInS)
	}
	if st.Resets != 0 {
		t.Fatalf("resets = %d", st.Resets)
	}
}

func TestFirstTickSpawns(t *testing.T) {
	h := newHarness(t, config.DefaultSim())
	h.sim.Update()
	if got := h.sim.Stats().Marbles; got != 1 {
		t.Fatalf("marbles after first tick = %d, want 1", got)
	}
}

func TestZeroRateNeverSpawns(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.SpawnRate = 0
	h := newHarness(t, cfg)
	h.run(2 * time.Second)
	if got := h.sim.Stats().Marbles; got != 0 {
		t.Fatalf("marbles = %d", got)
	}
}

func TestResetAfterDelay(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.MarblesMax = 2
	cfg.SpawnRate = 10
	cfg.ResetDelayS = 1
	h := newHarness(t, cfg)
	h.run(2 * time.Second)
	st := h.sim.Stats()
	if st.Resets != 1 {
		t.Fatalf("resets = %d, want 1", st.Resets)
	}
	if st.Marbles > cfg.MarblesMax {
		t.Fatalf("marbles = %d exceeds cap", st.Marbles)
	}
}

func TestZeroDelayResetsImmediately(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.MarblesMax = 1
	cfg.ResetDelayS = 0
	h := newHarness(t, cfg)
	h.sim.Update()
	st := h.sim.Stats()
	if st.Resets != 1 || st.Marbles != 0 {
		t.Fatalf("resets=%d marbles=%d", st.Resets, st.Marbles)
	}
}

func TestResetWorldClearsEntities(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.SpawnRate = 10
	h := newHarness(t, cfg)
	h.run(time.Second)
	a := h.sim.Arena()
	before := a.NumCircles()
	if h.sim.Stats().Marbles == 0 {
		t.Fatal("expected marbles before reset")
	}
	old := a.Circle(before - 1)

	h.sim.ResetWorld()
	st := h.sim.Stats()
	if st.Marbles != 0 || st.Circles != st.CirclePegs {
		t.Fatalf("after reset marbles=%d circles=%d circle pegs=%d", st.Marbles, st.Circles, st.CirclePegs)
	}
	if st.ElapsedS != 0 || st.Steps != 0 {
		t.Fatalf("clock not reset: %+v", st)
	}
	if h.sim.State() != core.Alive {
		t.Fatal("reset must not change the lifecycle state")
	}
	expectFatal(t, func() { a.IndexOfCircle(old) })
}

func TestResetUsesFreshSeed(t *testing.T) {
	h := newHarness(t, config.DefaultSim())
	h.sim.Init()
	first := h.sim.seed + int64(h.sim.resets)
	h.sim.ResetWorld()
	if got := h.sim.seed + int64(h.sim.resets); got == first {
		t.Fatal("session seed must change on reset")
	}
}

func TestSnapshotMatchesArena(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.SpawnRate = 10
	h := newHarness(t, cfg)
	h.run(time.Second)
	a := h.sim.Arena()
	for i := 0; i < a.NumCircles(); i++ {
		if got := a.IndexOfCircle(a.Circle(i)); got != i {
			t.Fatalf("circle %d maps back to %d", i, got)
		}
		inst, ok := h.store.Instance(render.ShapeCircle, i)
		if !ok {
			t.Fatalf("circle %d missing from snapshot", i)
		}
		if inst.Color != a.CircleColor(i) {
			t.Fatalf("circle %d colour %v, arena %v", i, inst.Color, a.CircleColor(i))
		}
	}
	for i := 0; i < a.NumSegments(); i++ {
		if _, ok := h.store.Instance(render.ShapeSegment, i); !ok {
			t.Fatalf("segment %d missing from snapshot", i)
		}
	}
	if h.store.Projection() != h.sim.Projection() {
		t.Fatal("projection not published")
	}
}

func TestRenderPasses(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.DebugPegs = true
	cfg.SpawnRate = 0
	h := newHarness(t, cfg)
	h.sim.Init()
	h.sim.AddMarble()
	h.sim.Update()

	h.store.BeginFrame()
	h.sim.Render()
	byName := map[string]render.Command{}
	for _, c := range h.store.Commands() {
		byName[c.Template.Name] = c
	}
	a := h.sim.Arena()
	if a.NumCirclePegs() != 2 || a.NumCircles() != 3 || a.NumSegments() != 0 {
		t.Fatalf("debug world: circle pegs=%d circles=%d segments=%d", a.NumCirclePegs(), a.NumCircles(), a.NumSegments())
	}
	if c := byName["circle-dots"]; c.Count != 2 || c.Offset != 0 {
		t.Fatalf("dots pass = %+v", c)
	}
	if c := byName["circle-filled"]; c.Count != 3 || c.Alpha != fillAlpha {
		t.Fatalf("filled pass = %+v", c)
	}
	if c := byName["circle-edged"]; c.Count != 3 || c.Alpha != edgeAlpha {
		t.Fatalf("edged pass = %+v", c)
	}
	if c, ok := byName["debug"]; !ok || c.Alpha != debugAlpha {
		t.Fatalf("debug pass = %+v", c)
	}
	if _, ok := byName["segment-filled"]; ok {
		t.Fatal("empty collections must not be drawn")
	}
}

func TestRenderBeforeInitDrawsNothing(t *testing.T) {
	h := newHarness(t, config.DefaultSim())
	h.sim.Render()
	if n := len(h.store.Commands()); n != 0 {
		t.Fatalf("commands = %d", n)
	}
}

func TestShutdownReleasesTemplates(t *testing.T) {
	h := newHarness(t, config.DefaultSim())
	h.sim.Init()
	if h.store.NumVertexBuffers() == 0 {
		t.Fatal("templates not uploaded")
	}
	h.sim.Shutdown()
	if h.store.NumVertexBuffers() != 0 {
		t.Fatalf("buffers left = %d", h.store.NumVertexBuffers())
	}
	if h.sim.DidInit() {
		t.Fatal("shutdown must leave the simulation dead")
	}
}

func keyDown(r rune) *event.Event {
	ev := event.NewKey(event.KeyDownKind, r)
	return &ev
}

func TestKeyBindings(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.AllowDemoOverlay = true
	h := newHarness(t, cfg)
	h.sim.Init()

	ev := keyDown('r')
	h.sim.EventReceived(ev)
	if !ev.Handled || h.sim.Stats().Resets != 1 {
		t.Fatalf("r: handled=%v resets=%d", ev.Handled, h.sim.Stats().Resets)
	}

	ev = keyDown('S')
	h.sim.EventReceived(ev)
	if !ev.Handled || !h.sim.SettingsVisible() {
		t.Fatal("S must open the settings panel")
	}

	ev = keyDown('d')
	h.sim.EventReceived(ev)
	if !ev.Handled || !h.sim.DemoVisible() {
		t.Fatal("d must toggle the overlay")
	}

	ev = keyDown('x')
	h.sim.EventReceived(ev)
	if ev.Handled {
		t.Fatal("x is not bound")
	}
	if !h.sim.KeyPressed('x') {
		t.Fatal("key bitmap not updated")
	}
	up := event.NewKey(event.KeyUpKind, 'x')
	h.sim.EventReceived(&up)
	if h.sim.KeyPressed('x') {
		t.Fatal("key still pressed after key up")
	}
}

func TestDemoKeyNeedsPermission(t *testing.T) {
	h := newHarness(t, config.DefaultSim())
	h.sim.Init()
	ev := keyDown('D')
	h.sim.EventReceived(ev)
	if ev.Handled || h.sim.DemoVisible() {
		t.Fatal("D must be ignored unless the overlay is allowed")
	}
}

func TestSettingsKeyIgnoredInConfigurationMode(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.ConfigurationMode = true
	h := newHarness(t, cfg)
	h.sim.Init()
	ev := keyDown('s')
	h.sim.EventReceived(ev)
	if ev.Handled || !h.sim.SettingsVisible() {
		t.Fatal("panel must stay pinned open in configuration mode")
	}
}

func TestArrowsPanView(t *testing.T) {
	h := newHarness(t, config.DefaultSim())
	h.sim.Init()
	before := h.sim.Projection()
	ev := keyDown(event.ArrowLeft)
	h.sim.EventReceived(ev)
	if !ev.Handled {
		t.Fatal("arrow not handled")
	}
	after := h.sim.Projection()
	if after == before {
		t.Fatal("projection unchanged after pan")
	}
	right := keyDown(event.ArrowRight)
	h.sim.EventReceived(right)
	if h.sim.Projection() != before {
		t.Fatal("left then right must cancel")
	}
}

func TestCursorIsEdgeTriggered(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	h := newHarness(t, config.DefaultSim(), func(o *Options) { o.Logger = zap.New(obs) })
	h.sim.Init()

	h.store.SetCursor(core.CursorInfo{X: 10, Y: 20, Pressed: true})
	h.sim.Update()
	h.sim.Update()
	if n := logs.FilterMessage("cursor button").Len(); n != 1 {
		t.Fatalf("button events = %d, want 1", n)
	}
	button := logs.FilterMessage("cursor button").All()[0].ContextMap()
	if button["x"] != float32(-1) || button["down"] != true {
		t.Fatalf("button event carried %v", button)
	}
	if got := h.sim.Cursor(); got.X != 10 || got.Y != 20 || !got.Pressed {
		t.Fatalf("cursor = %+v", got)
	}

	h.store.SetCursor(core.CursorInfo{X: 10, Y: 20})
	h.sim.Update()
	if n := logs.FilterMessage("cursor button").Len(); n != 2 {
		t.Fatalf("button events = %d, want 2", n)
	}
}

type fakeUI struct {
	open    bool
	press   map[string]bool
	marbles int
	rate    float64
	calls   []string
}

func (u *fakeUI) Begin(title string, closable bool) bool {
	u.calls = append(u.calls, "begin:"+title)
	return u.open
}

func (u *fakeUI) SliderInt(ctrl core.ParameterControl, v *int) bool {
	u.calls = append(u.calls, "int:"+ctrl.Label)
	if u.marbles == 0 {
		return false
	}
	*v = u.marbles
	return true
}

func (u *fakeUI) SliderFloat(ctrl core.ParameterControl, v *float64) bool {
	u.calls = append(u.calls, "float:"+ctrl.Label)
	if u.rate == 0 {
		return false
	}
	*v = u.rate
	return true
}

func (u *fakeUI) Separator() { u.calls = append(u.calls, "sep") }

func (u *fakeUI) Button(label string) bool {
	u.calls = append(u.calls, "button:"+label)
	return u.press[label]
}

func (u *fakeUI) End() { u.calls = append(u.calls, "end") }

func TestSettingsPanelAppliesValues(t *testing.T) {
	ui := &fakeUI{open: true, marbles: 5000, rate: 2.5, press: map[string]bool{}}
	cfg := config.DefaultSim()
	h := newHarness(t, cfg, func(o *Options) { o.UI = ui })
	h.sim.Init()
	h.sim.ToggleSettings()
	h.sim.Update()

	got := h.sim.Settings()
	if got.MarblesMax != cfg.MarblesLimit {
		t.Fatalf("marbles max = %d, want clamp to %d", got.MarblesMax, cfg.MarblesLimit)
	}
	if got.SpawnRate != 2.5 {
		t.Fatalf("spawn rate = %v", got.SpawnRate)
	}

	ui.press["Restart Simulation"] = true
	h.sim.Update()
	st := h.sim.Stats()
	if st.Resets != 1 || st.MarblesMax != cfg.MarblesLimit || st.SpawnRate != 2.5 {
		t.Fatalf("settings must survive a restart: %+v", st)
	}
	if ui.calls[len(ui.calls)-1] != "end" {
		t.Fatal("panel not closed with End")
	}
}

func TestSettingsPanelClose(t *testing.T) {
	ui := &fakeUI{open: false}
	h := newHarness(t, config.DefaultSim(), func(o *Options) { o.UI = ui })
	h.sim.Init()
	h.sim.ToggleSettings()
	h.sim.Update()
	if h.sim.SettingsVisible() {
		t.Fatal("closing the window must hide the panel")
	}
}

func TestConfigurationModeOK(t *testing.T) {
	ui := &fakeUI{open: true, press: map[string]bool{"OK": true}}
	cfg := config.DefaultSim()
	cfg.ConfigurationMode = true
	h := newHarness(t, cfg, func(o *Options) { o.UI = ui })
	h.sim.Update()
	if !h.sim.ConfigurationDone() {
		t.Fatal("OK must finish configuration")
	}
}

func TestMetricsTrackTicks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	cfg := config.DefaultSim()
	cfg.SpawnRate = 10
	cfg.MarblesMax = 3
	h := newHarness(t, cfg, func(o *Options) { o.Metrics = m })
	h.run(time.Second)

	if got := testutil.ToFloat64(m.spawned); got != 3 {
		t.Fatalf("spawned = %v", got)
	}
	if got := testutil.ToFloat64(m.marbles); got != 3 {
		t.Fatalf("marbles gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.steps); got < 590 {
		t.Fatalf("steps = %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.stepped(3)
	m.marbleSpawned()
	m.worldReset()
}

func TestParametersSnapshot(t *testing.T) {
	h := newHarness(t, config.DefaultSim())
	h.sim.Update()
	snap := h.sim.Parameters()
	found := false
	for _, g := range snap.Groups {
		for _, p := range g.Params {
			if p.Key == "pegs" && p.Value == "3" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("pegs missing from %+v", snap)
	}
}

func TestGlobalScaleShrinksWorld(t *testing.T) {
	h := newHarness(t, config.DefaultSim())
	h.sim.SetGlobalScale(2, 2)
	h.sim.Init()
	if w, hh := h.sim.WorldWidth(), h.sim.WorldHeight(); w != 50 || hh != 25 {
		t.Fatalf("world at scale 2 = %vx%v, want 50x25", w, hh)
	}
	// round(50 * 25 * 0.0005)
	if got := h.sim.Arena().NumPegs(); got != 1 {
		t.Fatalf("pegs = %d, want 1", got)
	}
	corner := h.sim.Projection().Mul4x1(mgl32.Vec4{50, 25, 0, 1})
	if math.Abs(float64(corner.X())-1) > 1e-5 || math.Abs(float64(corner.Y())-1) > 1e-5 {
		t.Fatalf("world corner projects to %v, want (1, 1)", corner)
	}

	h.sim.SetGlobalScale(0, 1)
	if h.sim.WorldWidth() != 50 {
		t.Fatal("non-positive scale must be ignored")
	}
}

func TestPegCountLimitedByCapacity(t *testing.T) {
	cfg := config.DefaultSim()
	cfg.Capacity.Boxes = 2
	zc, logs := observer.New(zapcore.WarnLevel)
	h := newHarness(t, cfg, func(o *Options) { o.Logger = zap.New(zc) })
	h.sim.Init()
	if got := h.sim.Arena().NumPegs(); got != 2 {
		t.Fatalf("pegs = %d, want 2", got)
	}
	if logs.FilterMessage("peg count limited by arena capacity").Len() != 1 {
		t.Fatal("expected a capacity warning")
	}
}

func TestStallIsClampedToOneSecondOfSteps(t *testing.T) {
	h := newHarness(t, config.DefaultSim())
	h.run(time.Second / 2)
	before := h.sim.Stats()
	h.clock.Advance(5 * time.Second)
	h.sim.Update()
	after := h.sim.Stats()
	if got := after.Steps - before.Steps; got != 600 {
		t.Fatalf("steps after a 5s stall = %d, want 600", got)
	}
	if d := after.ElapsedS - before.ElapsedS; math.Abs(d-1) > 1e-9 {
		t.Fatalf("elapsed advanced by %v, want 1", d)
	}
	if math.Abs(after.SimulatedS-float64(after.Steps)/600) > 1e-9 {
		t.Fatalf("simulated %v for %d steps", after.SimulatedS, after.Steps)
	}
}
