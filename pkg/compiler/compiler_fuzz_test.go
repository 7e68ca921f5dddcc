package compiler

import (
	"errors"
	"strings"
	"testing"
)

// balanced reports whether the brackets of src nest properly.
func balanced(src string) bool {
	depth := 0
	for _, r := range src {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func FuzzTranslate(f *testing.F) {
	for _, seed := range []string{"", exampleSource, "[]", "][", "[[", "+-<>.,", "hello [ world ]", "é]"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, src string) {
		prog, err := Translate(src, DefaultConfig())
		if balanced(src) {
			if err != nil {
				t.Fatalf("balanced program %q failed: %v", src, err)
			}
			if got, want := strings.Count(prog.Text, "while "), strings.Count(src, "["); got != want {
				t.Fatalf("expected %d loops, got %d", want, got)
			}
			return
		}
		if !errors.Is(err, ErrUnmatchedLoopOpen) && !errors.Is(err, ErrUnmatchedLoopClose) {
			t.Fatalf("unbalanced program %q: unexpected result %v", src, err)
		}
	})
}
