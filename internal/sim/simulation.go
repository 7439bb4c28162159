// Package sim owns the falling-marble world: the entity arena, the physics
// space, the fixed-step clock, the spawn and reset schedule and the snapshot
// handed to a renderer each tick.
package sim

import (
	"time"

	"fallingstuff/internal/arena"
	"fallingstuff/internal/config"
	"fallingstuff/internal/core"
	"fallingstuff/internal/event"
	"fallingstuff/internal/geom"
	"fallingstuff/internal/render"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options wires a Simulation to its collaborators. Renderer is borrowed and
// must outlive the Simulation.
type Options struct {
	Config   config.Sim
	Renderer render.Renderer
	UI       SettingsUI
	Logger   *zap.Logger
	Metrics  *Metrics
	Now      func() time.Time
}

// session is everything discarded and rebuilt on every reset.
type session struct {
	rng     *core.RNG
	stepper core.Stepper

	gravity         cp.Vector
	marbleRadiusMin float64
	marbleRadiusMax float64

	numMarbles int
	marblesMax int
	spawnRate  float64
	spawnInS   float64

	resetInS    float64
	resetDelayS float64
	resetArmed  bool

	viewTranslation geom.Vec2
}

// Simulation is single-threaded: every method must be called from the
// goroutine driving Update.
type Simulation struct {
	cfg      config.Sim
	log      *zap.Logger
	renderer render.Renderer
	ui       SettingsUI
	metrics  *Metrics
	now      func() time.Time
	epoch    time.Time

	state LifeState
	game  session
	arena *arena.Arena
	space *cp.Space

	view        core.ViewSize
	globalScale geom.Vec2
	projection  mgl32.Mat4
	cursor      core.CursorInfo
	keys        event.KeyBitmap

	templates templates
	settings  Settings

	seed              int64
	resets            int
	showSettings      bool
	showDemo          bool
	configurationDone bool

	noisy *rate.Limiter
}

// LifeState mirrors core.LifeState for callers that only import sim.
type LifeState = core.LifeState

// New constructs a dead Simulation. Nothing touches the renderer until Init.
func New(opts Options) *Simulation {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Simulation{
		cfg:         opts.Config,
		log:         opts.Logger,
		renderer:    opts.Renderer,
		ui:          opts.UI,
		metrics:     opts.Metrics,
		now:         opts.Now,
		state:       core.Dead,
		globalScale: geom.Vec2{X: 1, Y: 1},
		projection:  mgl32.Ident4(),
		cursor:      core.NoCursor,
		settings: Settings{
			MarblesMax: opts.Config.MarblesMax,
			SpawnRate:  opts.Config.SpawnRate,
		},
		showSettings: opts.Config.ConfigurationMode,
		noisy:        rate.NewLimiter(rate.Every(time.Second), 5),
	}
	s.epoch = s.now()
	return s
}

func (s *Simulation) newSession() session {
	return session{
		rng:             core.NewRNG(s.seed + int64(s.resets)),
		stepper:         core.NewStepper(s.cfg.StepS, s.cfg.MaxDeltaS),
		gravity:         cp.Vector{X: s.cfg.GravityX, Y: s.cfg.GravityY},
		marbleRadiusMin: s.cfg.MarbleRadiusMin,
		marbleRadiusMax: s.cfg.MarbleRadiusMax,
		marblesMax:      s.settings.MarblesMax,
		spawnRate:       s.settings.SpawnRate,
		resetDelayS:     s.cfg.ResetDelayS,
	}
}

// Init brings a dead simulation to life. It is a no-op when already alive.
// A missing renderer or an empty view is fatal.
func (s *Simulation) Init() {
	if s.renderer == nil {
		core.Fatalf("Simulation renderer must be set before Init")
	}
	if s.state == core.Alive {
		return
	}
	if !s.view.Valid() {
		core.Fatalf("Simulation view size must be set before Init, got %+v", s.view)
	}

	s.seed = s.cfg.Seed
	if s.seed == 0 {
		s.seed = s.now().UnixNano()
	}
	s.resets = 0
	s.game = s.newSession()
	s.state = core.Alive
	s.keys.Reset()
	s.initTemplates()
	s.buildWorld()
	s.updateProjection()
	s.log.Info("simulation initialised",
		zap.Int64("seed", s.seed),
		zap.Float64("world_w_mm", s.WorldWidth()),
		zap.Float64("world_h_mm", s.WorldHeight()),
		zap.Int("pegs", s.arena.NumPegs()))
}

// DidInit reports whether Init has run.
func (s *Simulation) DidInit() bool { return s.state != core.Dead }

// State returns the lifecycle state.
func (s *Simulation) State() LifeState { return s.state }

// ResetWorld discards every entity and the session state and builds a new
// world. The lifecycle state is unchanged.
func (s *Simulation) ResetWorld() {
	if s.state != core.Alive {
		return
	}
	s.teardownWorld()
	s.resets++
	s.game = s.newSession()
	s.buildWorld()
	s.updateProjection()
	s.metrics.worldReset()
	s.log.Info("world reset", zap.Int("resets", s.resets), zap.Int("pegs", s.arena.NumPegs()))
}

// Shutdown releases the world and the renderer-side templates.
func (s *Simulation) Shutdown() {
	if s.state == core.Dead {
		return
	}
	s.teardownWorld()
	s.destroyTemplates()
	s.state = core.Dead
	s.log.Info("simulation shut down")
}

// Update advances one tick: initialise if needed, poll the cursor, step
// physics, run the spawn and reset schedules, drive the settings panel and
// publish the render snapshot.
func (s *Simulation) Update() {
	if s.state == core.Dead {
		s.Init()
	}
	started := time.Now()

	s.UpdateCursorInfo(s.renderer.CursorInfo())

	nowS := s.now().Sub(s.epoch).Seconds()
	deltaS, steps := s.game.stepper.Advance(nowS, s.space)
	s.metrics.stepped(steps)

	s.spawnMarbles(deltaS)
	s.applyResetPolicy(deltaS)
	s.updateSettingsUI()
	s.buildSnapshot()

	s.metrics.observe(s, time.Since(started))
}

// ViewChanged records a new view size and recomputes the projection.
func (s *Simulation) ViewChanged(v core.ViewSize) {
	if s.renderer == nil {
		core.Fatalf("Simulation renderer must be set before ViewChanged")
	}
	s.view = v
	s.updateProjection()
	s.renderer.ViewChanged()
	s.log.Debug("view changed",
		zap.Float64("w_mm", v.WidthMM), zap.Float64("h_mm", v.HeightMM),
		zap.Int("w_px", v.WidthPixels), zap.Int("h_px", v.HeightPixels))
}

// SetGlobalScale zooms the world; world size shrinks as scale grows.
func (s *Simulation) SetGlobalScale(x, y float64) {
	if x <= 0 || y <= 0 {
		return
	}
	s.globalScale = geom.Vec2{X: x, Y: y}
	s.updateProjection()
}

func (s *Simulation) updateProjection() {
	s.projection = geom.Projection(s.view.WidthMM, s.view.HeightMM, s.globalScale, s.game.viewTranslation)
	s.log.Debug("projection updated",
		zap.Float64("scale_x", s.globalScale.X), zap.Float64("scale_y", s.globalScale.Y),
		zap.Float64("pan_x", s.game.viewTranslation.X), zap.Float64("pan_y", s.game.viewTranslation.Y))
}

// WorldWidth is the play-field width in millimetres.
func (s *Simulation) WorldWidth() float64 { return s.view.WidthMM / s.globalScale.X }

// WorldHeight is the play-field height in millimetres.
func (s *Simulation) WorldHeight() float64 { return s.view.HeightMM / s.globalScale.Y }

func (s *Simulation) Projection() mgl32.Mat4 { return s.projection }

func (s *Simulation) View() core.ViewSize { return s.view }

// Arena exposes the entity slots for inspection. Callers must not mutate it.
func (s *Simulation) Arena() *arena.Arena { return s.arena }

// KeyPressed reports whether a 7-bit key is currently held.
func (s *Simulation) KeyPressed(r rune) bool { return s.keys.Pressed(r) }

// SettingsVisible reports whether the settings panel is open.
func (s *Simulation) SettingsVisible() bool { return s.showSettings }

// DemoVisible reports whether the diagnostic overlay is toggled on.
func (s *Simulation) DemoVisible() bool { return s.showDemo }

// ConfigurationMode reports whether the panel is pinned open for setup.
func (s *Simulation) ConfigurationMode() bool { return s.cfg.ConfigurationMode }

// ConfigurationDone reports whether OK was pressed in configuration mode.
func (s *Simulation) ConfigurationDone() bool { return s.configurationDone }
