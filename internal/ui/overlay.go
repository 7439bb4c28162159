//go:build ebiten

package ui

import (
	"image/color"

	"fallingstuff/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

type parameterProvider interface {
	Parameters() core.ParameterSnapshot
	Cursor() core.CursorInfo
}

// Overlay draws the diagnostic readout and a pointer crosshair over the
// world.
type Overlay struct {
	src   parameterProvider
	lines []string
}

// NewOverlay reads its values from src every Update.
func NewOverlay(src parameterProvider) *Overlay {
	return &Overlay{src: src}
}

// Update refreshes the cached readout.
func (o *Overlay) Update() {
	o.lines = SnapshotLines(o.src.Parameters())
}

// Draw paints the readout in the top left corner.
func (o *Overlay) Draw(screen *ebiten.Image) {
	const lineStep = 15
	face := basicfont.Face7x13
	w := 0
	for _, l := range o.lines {
		if d := text.BoundString(face, l).Dx(); d > w {
			w = d
		}
	}
	h := len(o.lines)*lineStep + panelPadding
	vector.DrawFilledRect(screen, 4, 4, float32(w+panelPadding), float32(h), color.RGBA{A: 170}, false)
	for i, l := range o.lines {
		text.Draw(screen, l, face, 4+panelPadding/2, 4+panelPadding/2+(i+1)*lineStep-3, color.RGBA{R: 220, G: 220, B: 230, A: 255})
	}

	c := o.src.Cursor()
	if c.X < 0 || c.Y < 0 {
		return
	}
	clr := color.RGBA{R: 255, G: 255, A: 255}
	if c.Pressed {
		clr = color.RGBA{R: 255, A: 255}
	}
	vector.StrokeLine(screen, c.X-8, c.Y, c.X+8, c.Y, 1, clr, true)
	vector.StrokeLine(screen, c.X, c.Y-8, c.X, c.Y+8, 1, clr, true)
}
