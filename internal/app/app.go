//go:build ebiten

package app

import (
	"image"

	"fallingstuff/internal/config"
	"fallingstuff/internal/core"
	"fallingstuff/internal/event"
	"fallingstuff/internal/render"
	"fallingstuff/internal/sim"
	"fallingstuff/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

// Game adapts a Simulation to the ebiten.Game interface.
type Game struct {
	sim      *sim.Simulation
	renderer *render.Ebiten
	panel    *ui.Panel
	overlay  *ui.Overlay
	log      *zap.Logger

	mmPerPixel float64
	width      int
	height     int
	contained  bool

	keys []ebiten.Key
}

// New wires the simulation to its ebiten renderer and widgets. panel may be
// nil when the simulation was built without a settings UI.
func New(s *sim.Simulation, r *render.Ebiten, panel *ui.Panel, view config.View, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	s.SetGlobalScale(view.Scale, view.Scale)
	return &Game{
		sim:        s,
		renderer:   r,
		panel:      panel,
		overlay:    ui.NewOverlay(s),
		log:        log,
		mmPerPixel: view.MMPerPixel,
	}
}

// Update handles input and advances the simulation by one tick.
func (g *Game) Update() error {
	if g.sim.ConfigurationMode() {
		if g.sim.ConfigurationDone() {
			return ebiten.Termination
		}
	} else if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if g.panel != nil {
		g.panel.Poll()
	}
	g.dispatchKeys()
	g.checkContainment()

	g.sim.Update()
	g.renderer.BeginFrame()
	g.sim.Render()

	if g.sim.DemoVisible() {
		g.overlay.Update()
	}
	return nil
}

func (g *Game) dispatchKeys() {
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.send(event.KeyDownKind, k)
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.send(event.KeyUpKind, k)
	}
}

func (g *Game) send(kind event.Kind, k ebiten.Key) {
	r, ok := TranslateKey(k.String())
	if !ok {
		return
	}
	ev := event.NewKey(kind, r)
	g.sim.EventReceived(&ev)
	if kind == event.KeyDownKind && !ev.Handled {
		g.log.Debug("key not handled", zap.String("key", k.String()))
	}
}

func (g *Game) checkContainment() {
	x, y := ebiten.CursorPosition()
	in := image.Pt(x, y).In(image.Rect(0, 0, g.width, g.height))
	if in == g.contained {
		return
	}
	g.contained = in
	ev := event.NewCursorContained(in)
	g.sim.EventReceived(&ev)
}

// Draw flushes the recorded frame and the widgets onto screen.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
	if g.panel != nil && g.sim.SettingsVisible() {
		g.panel.Draw(screen)
	}
	if g.sim.DemoVisible() {
		g.overlay.Draw(screen)
	}
}

// Layout keeps the logical screen equal to the window and reports size
// changes to the simulation.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.sim.ViewChanged(core.ViewSizeFromPixels(outsideWidth, outsideHeight, g.mmPerPixel))
	}
	return outsideWidth, outsideHeight
}
