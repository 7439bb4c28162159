// Package ui draws the settings panel and the diagnostic overlay.
package ui

import (
	"image"
	"math"
	"strconv"

	"fallingstuff/internal/core"
)

// Pointer is the mouse state the panel hit-tests against for one frame.
type Pointer struct {
	X, Y    int
	Clicked bool
}

type rowKind int

const (
	rowSliderInt rowKind = iota
	rowSliderFloat
	rowSeparator
	rowButton
)

// Row is one laid out widget, kept for drawing after End.
type Row struct {
	Kind  rowKind
	Label string
	Value string

	Rect  image.Rectangle
	Minus image.Rectangle
	Plus  image.Rectangle

	MinusEnabled bool
	PlusEnabled  bool
}

// Panel is an immediate-mode widget set. Widgets are laid out top to bottom
// in call order between Begin and End and react to the click recorded with
// SetPointer. A click is consumed by the first widget it hits.
type Panel struct {
	origin image.Point
	width  int

	pointer Pointer
	title   string
	close   image.Rectangle
	hasX    bool
	rows    []Row
	cursorY int
	height  int
	active  bool
}

// NewPanel places a panel of the given width with its top left corner at x, y.
func NewPanel(x, y, width int) *Panel {
	if width < 4*buttonSize {
		width = 4 * buttonSize
	}
	return &Panel{origin: image.Pt(x, y), width: width}
}

// SetPointer records the pointer for the next Begin/End pass. Coordinates
// are in screen pixels.
func (p *Panel) SetPointer(ptr Pointer) {
	p.pointer = ptr
}

// Begin starts a new pass. It returns false if the panel is closable and the
// close box was clicked.
func (p *Panel) Begin(title string, closable bool) bool {
	p.title = title
	p.rows = p.rows[:0]
	p.cursorY = controlsTop
	p.hasX = closable
	p.active = true
	if closable {
		p.close = image.Rect(p.width-panelPadding-buttonSize, panelPadding, p.width-panelPadding, panelPadding+buttonSize)
		if p.hit(p.close) {
			return false
		}
	}
	return true
}

// SliderInt draws a stepper for an integer control and reports whether v
// changed.
func (p *Panel) SliderInt(ctrl core.ParameterControl, v *int) bool {
	step := int(math.Round(ctrl.Step))
	if step <= 0 {
		step = 1
	}
	row := p.stepperRow(rowSliderInt, ctrl.Label)
	down := ctrl.ClampInt(*v - step)
	up := ctrl.ClampInt(*v + step)
	row.MinusEnabled = down != *v
	row.PlusEnabled = up != *v

	changed := false
	switch {
	case row.MinusEnabled && p.hit(row.Minus):
		*v, changed = down, true
	case row.PlusEnabled && p.hit(row.Plus):
		*v, changed = up, true
	}
	row.Value = strconv.Itoa(*v)
	p.rows = append(p.rows, row)
	return changed
}

// SliderFloat draws a stepper for a float control and reports whether v
// changed.
func (p *Panel) SliderFloat(ctrl core.ParameterControl, v *float64) bool {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	row := p.stepperRow(rowSliderFloat, ctrl.Label)
	down := ctrl.ClampFloat(*v - step)
	up := ctrl.ClampFloat(*v + step)
	row.MinusEnabled = math.Abs(down-*v) > 1e-9
	row.PlusEnabled = math.Abs(up-*v) > 1e-9

	changed := false
	switch {
	case row.MinusEnabled && p.hit(row.Minus):
		*v, changed = down, true
	case row.PlusEnabled && p.hit(row.Plus):
		*v, changed = up, true
	}
	row.Value = FormatFloat(step, *v)
	p.rows = append(p.rows, row)
	return changed
}

// Separator adds a horizontal rule.
func (p *Panel) Separator() {
	top := p.cursorY
	p.cursorY += separatorHeight
	p.rows = append(p.rows, Row{
		Kind: rowSeparator,
		Rect: image.Rect(panelPadding, top+separatorHeight/2, p.width-panelPadding, top+separatorHeight/2+1),
	})
}

// Button adds a full-width button and reports whether it was clicked.
func (p *Panel) Button(label string) bool {
	top := p.cursorY
	p.cursorY += lineHeight
	rect := image.Rect(panelPadding, top+(lineHeight-buttonSize)/2, p.width-panelPadding, top+(lineHeight+buttonSize)/2)
	p.rows = append(p.rows, Row{Kind: rowButton, Label: label, Rect: rect})
	return p.hit(rect)
}

// End finishes the pass and drops any click no widget consumed.
func (p *Panel) End() {
	p.height = p.cursorY + panelPadding
	p.pointer.Clicked = false
	p.active = false
}

// Rows returns the widgets laid out by the last pass, in panel coordinates.
func (p *Panel) Rows() []Row { return p.rows }

// Title returns the title given to the last Begin.
func (p *Panel) Title() string { return p.title }

// Bounds is the screen rectangle covered by the last pass.
func (p *Panel) Bounds() image.Rectangle {
	return image.Rectangle{Min: p.origin, Max: p.origin.Add(image.Pt(p.width, p.height))}
}

// CloseBox returns the close box in panel coordinates, if any.
func (p *Panel) CloseBox() (image.Rectangle, bool) { return p.close, p.hasX }

// Contains reports whether a screen point lies over the panel.
func (p *Panel) Contains(x, y int) bool {
	return image.Pt(x, y).In(p.Bounds())
}

func (p *Panel) stepperRow(kind rowKind, label string) Row {
	top := p.cursorY
	p.cursorY += lineHeight
	buttonY := top + (lineHeight-buttonSize)/2
	plus := image.Rect(p.width-panelPadding-buttonSize, buttonY, p.width-panelPadding, buttonY+buttonSize)
	minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
	return Row{
		Kind:  kind,
		Label: label,
		Rect:  image.Rect(panelPadding, top, p.width-panelPadding, top+lineHeight),
		Minus: minus,
		Plus:  plus,
	}
}

// hit tests the pending click against a panel-local rectangle and consumes
// it on a match.
func (p *Panel) hit(r image.Rectangle) bool {
	if !p.active || !p.pointer.Clicked {
		return false
	}
	pt := image.Pt(p.pointer.X, p.pointer.Y).Sub(p.origin)
	if !pt.In(r) {
		return false
	}
	p.pointer.Clicked = false
	return true
}

const (
	panelPadding    = 12
	lineHeight      = 36
	separatorHeight = 12
	buttonSize      = 24
	buttonGap       = 6
	headerBaseline  = 18
	labelBaseline   = 24
	controlsTop     = panelPadding + headerBaseline + 14
)
