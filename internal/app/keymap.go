// Package app runs a Simulation inside an ebiten window.
package app

import (
	"strings"
	"unicode/utf8"

	"fallingstuff/internal/event"
)

var namedKeys = map[string]rune{
	"ArrowLeft":  event.ArrowLeft,
	"ArrowUp":    event.ArrowUp,
	"ArrowRight": event.ArrowRight,
	"ArrowDown":  event.ArrowDown,
	"Space":      ' ',
	"Enter":      '\r',
	"Tab":        '\t',
	"Backspace":  '\b',
	"Minus":      '-',
	"Equal":      '=',
	"Comma":      ',',
	"Period":     '.',
	"Slash":      '/',
}

// TranslateKey maps a backend key name to the rune the simulation expects.
// Letters become lower case, "DigitN" becomes N and arrows become the arrow
// runes. Anything else is not forwarded.
func TranslateKey(name string) (rune, bool) {
	if r, ok := namedKeys[name]; ok {
		return r, true
	}
	if d, ok := strings.CutPrefix(name, "Digit"); ok && len(d) == 1 && d[0] >= '0' && d[0] <= '9' {
		return rune(d[0]), true
	}
	if utf8.RuneCountInString(name) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(name)
	switch {
	case r >= 'A' && r <= 'Z':
		return r - 'A' + 'a', true
	case r >= 'a' && r <= 'z':
		return r, true
	}
	return 0, false
}
