//go:build ebiten

package ui

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

var (
	panelBackground = color.RGBA{R: 16, G: 16, B: 20, A: 230}
	titleColor      = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	labelColor      = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	ruleColor       = color.RGBA{R: 70, G: 72, B: 80, A: 255}
	buttonColor     = color.RGBA{R: 54, G: 56, B: 64, A: 255}
	buttonText      = color.RGBA{R: 230, G: 230, B: 240, A: 255}
	disabledColor   = color.RGBA{R: 32, G: 34, B: 40, A: 255}
	disabledText    = color.RGBA{R: 120, G: 120, B: 130, A: 255}
)

// Poll samples the ebiten pointer for the next pass.
func (p *Panel) Poll() {
	x, y := ebiten.CursorPosition()
	p.SetPointer(Pointer{X: x, Y: y, Clicked: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)})
}

// Draw paints the widgets laid out by the last pass.
func (p *Panel) Draw(screen *ebiten.Image) {
	if p.height == 0 {
		return
	}
	b := p.Bounds()
	vector.DrawFilledRect(screen, float32(b.Min.X), float32(b.Min.Y), float32(b.Dx()), float32(b.Dy()), panelBackground, false)

	face := basicfont.Face7x13
	text.Draw(screen, p.title, face, b.Min.X+panelPadding, b.Min.Y+panelPadding+headerBaseline, titleColor)
	if r, ok := p.CloseBox(); ok {
		p.drawButton(screen, r, "x", true)
	}
	for _, row := range p.rows {
		switch row.Kind {
		case rowSliderInt, rowSliderFloat:
			top := row.Rect.Min.Y
			text.Draw(screen, row.Label, face, b.Min.X+panelPadding, b.Min.Y+top+labelBaseline, labelColor)
			w := text.BoundString(face, row.Value).Dx()
			text.Draw(screen, row.Value, face, b.Min.X+row.Minus.Min.X-buttonGap-w, b.Min.Y+top+labelBaseline, labelColor)
			p.drawButton(screen, row.Minus, "-", row.MinusEnabled)
			p.drawButton(screen, row.Plus, "+", row.PlusEnabled)
		case rowSeparator:
			r := row.Rect.Add(b.Min)
			vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), 1, ruleColor, false)
		case rowButton:
			p.drawButton(screen, row.Rect, row.Label, true)
		}
	}
}

func (p *Panel) drawButton(screen *ebiten.Image, local image.Rectangle, label string, enabled bool) {
	r := local.Add(p.origin)
	bg, fg := buttonColor, buttonText
	if !enabled {
		bg, fg = disabledColor, disabledText
	}
	vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), bg, false)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := r.Min.X + (r.Dx()-bounds.Dx())/2
	y := r.Min.Y + (r.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(screen, label, face, x, y, fg)
}
