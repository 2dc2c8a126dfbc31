package dispatcher_test

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestCountRepeatsX(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		line := rapid.StringMatching(`[a-z ]{1,12}`).Draw(rt, "line")
		n := rapid.IntRange(1, 15).Draw(rt, "n")

		counted := runKeys(rt, line, fmt.Sprintf("%dx", n)).text()
		repeated := runKeys(rt, line, strings.Repeat("x", n)).text()
		if counted != repeated {
			rt.Fatalf("%dx on %q = %q, x repeated = %q", n, line, counted, repeated)
		}
	})
}

func TestCountsMultiply(t *testing.T) {
	words := make([]string, 20)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	line := strings.Join(words, " ")

	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(1, 4).Draw(rt, "a")
		b := rapid.IntRange(1, 4).Draw(rt, "b")

		want := runKeys(rt, line, fmt.Sprintf("d%dw", a*b)).text()
		for _, keys := range []string{
			fmt.Sprintf("%dd%dw", a, b),
			fmt.Sprintf("%ddw", a*b),
		} {
			if got := runKeys(rt, line, keys).text(); got != want {
				rt.Fatalf("%s = %q, want %q", keys, got, want)
			}
		}
	})
}

func TestCountedMotionMatchesRepeated(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.IntRange(2, 10).Draw(rt, "lines")
		n := rapid.IntRange(1, lines-1).Draw(rt, "n")
		text := strings.TrimSuffix(strings.Repeat("x\n", lines), "\n")

		counted := runKeys(rt, text, fmt.Sprintf("%dj", n)).d.Cursor()
		repeated := runKeys(rt, text, strings.Repeat("j", n)).d.Cursor()
		if counted != repeated {
			rt.Fatalf("%dj = %v, j repeated = %v", n, counted, repeated)
		}
		if counted.Line != 1+n {
			rt.Fatalf("%dj ended on line %d, want %d", n, counted.Line, 1+n)
		}
	})
}

func TestUndoRestoresText(t *testing.T) {
	edits := []string{"x", "dw", "dd", "J", "~", ">>"}
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[a-z]{1,5}( [a-z]{1,5}){0,3}(\n[a-z]{1,5}( [a-z]{1,5}){0,3}){0,3}`).Draw(rt, "text")
		cmds := rapid.SliceOfN(rapid.SampledFrom(edits), 1, 5).Draw(rt, "cmds")

		keys := strings.Join(cmds, "") + strings.Repeat("u", len(cmds))
		if got := runKeys(rt, text, keys).text(); got != text {
			rt.Fatalf("%q after %q = %q", text, keys, got)
		}
	})
}
