// Package event normalises keyboard and pointer input into a single Event
// value carrying one of a closed set of payloads.
package event

import "unicode/utf8"

// Kind enumerates the payload variants.
type Kind int

const (
	None Kind = iota
	KeyDownKind
	KeyUpKind
	CursorMotionKind
	CursorButtonKind
	CursorContainedKind
)

func (k Kind) String() string {
	switch k {
	case KeyDownKind:
		return "key-down"
	case KeyUpKind:
		return "key-up"
	case CursorMotionKind:
		return "cursor-motion"
	case CursorButtonKind:
		return "cursor-button"
	case CursorContainedKind:
		return "cursor-contained"
	default:
		return "none"
	}
}

// Arrow keys are delivered as their Unicode arrow characters.
const (
	ArrowLeft  rune = '←'
	ArrowUp    rune = '↑'
	ArrowRight rune = '→'
	ArrowDown  rune = '↓'
)

// Data is implemented only by the payload types in this package.
type Data interface {
	Kind() Kind
	sealed()
}

type KeyDown struct{ Key rune }
type KeyUp struct{ Key rune }

// CursorMotion carries the new pointer position in OS coordinates.
type CursorMotion struct{ X, Y float32 }

// CursorButton reports a primary button transition at the pointer position.
type CursorButton struct {
	X, Y float32
	Down bool
}

// CursorContained reports the pointer entering or leaving the view.
type CursorContained struct{ Contained bool }

func (KeyDown) Kind() Kind         { return KeyDownKind }
func (KeyUp) Kind() Kind           { return KeyUpKind }
func (CursorMotion) Kind() Kind    { return CursorMotionKind }
func (CursorButton) Kind() Kind    { return CursorButtonKind }
func (CursorContained) Kind() Kind { return CursorContainedKind }

func (KeyDown) sealed()         {}
func (KeyUp) sealed()           {}
func (CursorMotion) sealed()    {}
func (CursorButton) sealed()    {}
func (CursorContained) sealed() {}

// Event is one normalised input. Consumers set Handled to stop further
// propagation.
type Event struct {
	Handled bool
	Data    Data
}

// Kind reports the payload variant, None for an empty event.
func (e *Event) Kind() Kind {
	if e == nil || e.Data == nil {
		return None
	}
	return e.Data.Kind()
}

// NewKey builds a key event. kind must be KeyDownKind or KeyUpKind; anything
// else yields an empty event.
func NewKey(kind Kind, key rune) Event {
	switch kind {
	case KeyDownKind:
		return Event{Data: KeyDown{Key: key}}
	case KeyUpKind:
		return Event{Data: KeyUp{Key: key}}
	default:
		return Event{}
	}
}

// NewKeyFromName builds a key event from the first character of a key name
// as reported by a windowing backend. Empty names yield an empty event.
func NewKeyFromName(kind Kind, name string) Event {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return Event{}
	}
	return NewKey(kind, r)
}

func NewCursorMotion(x, y float32) Event {
	return Event{Data: CursorMotion{X: x, Y: y}}
}

func NewCursorButton(x, y float32, down bool) Event {
	return Event{Data: CursorButton{X: x, Y: y, Down: down}}
}

func NewCursorContained(contained bool) Event {
	return Event{Data: CursorContained{Contained: contained}}
}
