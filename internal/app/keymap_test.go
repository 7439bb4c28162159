package app

import (
	"testing"

	"fallingstuff/internal/event"
)

func TestTranslateKey(t *testing.T) {
	cases := []struct {
		name string
		want rune
		ok   bool
	}{
		{"A", 'a', true},
		{"R", 'r', true},
		{"s", 's', true},
		{"Digit7", '7', true},
		{"ArrowLeft", event.ArrowLeft, true},
		{"ArrowDown", event.ArrowDown, true},
		{"Space", ' ', true},
		{"Escape", 0, false},
		{"F1", 0, false},
		{"Digit", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := TranslateKey(c.name)
		if got != c.want || ok != c.ok {
			t.Errorf("TranslateKey(%q) = %q, %v; want %q, %v", c.name, got, ok, c.want, c.ok)
		}
	}
}
