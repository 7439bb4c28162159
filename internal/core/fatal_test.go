package core

import (
	"strings"
	"testing"
)

func TestFatalfUsesHandler(t *testing.T) {
	var got string
	prev := SetFatalHandler(func(msg string) { got = msg })
	defer SetFatalHandler(prev)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("Fatalf must not return to its caller")
			}
		}()
		Fatalf("capacity %d exceeded", 4)
	}()

	if !strings.HasPrefix(got, "FATAL ERROR: Function/Line/File/Message: ") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, "fatal_test.go") || !strings.Contains(got, "capacity 4 exceeded") {
		t.Fatalf("message lacks location or text: %q", got)
	}
	if !strings.Contains(got, "TestFatalfUsesHandler") {
		t.Fatalf("message lacks function name: %q", got)
	}
}

func TestAssertPassesThrough(t *testing.T) {
	prev := SetFatalHandler(func(msg string) { t.Fatalf("unexpected fatal: %s", msg) })
	defer SetFatalHandler(prev)
	Assert(true, "never")
}

func TestRNGRanges(t *testing.T) {
	r := NewRNG(7)
	for i := 0; i < 1000; i++ {
		if v := r.Float64Range(2, 4); v < 2 || v >= 4 {
			t.Fatalf("Float64Range out of bounds: %v", v)
		}
		if v := r.IntRange(1, 3); v < 1 || v > 3 {
			t.Fatalf("IntRange out of bounds: %v", v)
		}
	}
	if r.Float64Range(5, 5) != 5 {
		t.Fatal("empty range should return lower bound")
	}
	a, b := NewRNG(3), NewRNG(3)
	for i := 0; i < 10; i++ {
		if a.Float64Range(0, 1) != b.Float64Range(0, 1) {
			t.Fatal("same seed must produce the same sequence")
		}
	}
}
