package renderer

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modalcore/internal/dispatcher/handlers/cmdline"
	"github.com/dshills/modalcore/internal/engine/buffer"
)

// grid is an in-memory Surface.
type grid struct {
	w, h   int
	cells  [][]rune
	cx, cy int
	shown  bool
	hidden bool
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h}
	g.Clear()
	return g
}

func (g *grid) Size() (int, int) { return g.w, g.h }
func (g *grid) SetContent(x, y int, r rune, _ []rune, _ tcell.Style) {
	if x >= 0 && x < g.w && y >= 0 && y < g.h {
		g.cells[y][x] = r
	}
}
func (g *grid) ShowCursor(x, y int) { g.cx, g.cy, g.hidden = x, y, false }
func (g *grid) HideCursor()         { g.hidden = true }
func (g *grid) Show()               { g.shown = true }
func (g *grid) Clear() {
	g.cells = make([][]rune, g.h)
	for y := range g.cells {
		g.cells[y] = []rune(strings.Repeat(" ", g.w))
	}
}

func (g *grid) row(y int) string {
	return strings.TrimRight(string(g.cells[y]), " ")
}

func TestViewDraw(t *testing.T) {
	g := newGrid(20, 5)
	v := NewView(g)
	v.Draw(Frame{
		Lines:     []string{"abc", "\tx"},
		Top:       1,
		LineCount: 2,
		Cursor:    buffer.Pos{Line: 2, Col: 1},
		TabStop:   4,
		Name:      "a.txt",
		Modified:  true,
		Mode:      "VISUAL",
		Message:   "2 fewer lines",
	})

	want := []string{
		"abc",
		"    x",
		"~",
		"a.txt [+]  -- VISUAL",
		"2 fewer lines",
	}
	for y, w := range want {
		if got := g.row(y); got != w {
			t.Errorf("row %d = %q, want %q", y, got, w)
		}
	}
	if g.hidden || g.cx != 4 || g.cy != 1 {
		t.Errorf("cursor = (%d,%d) hidden=%v, want (4,1)", g.cx, g.cy, g.hidden)
	}
	if !g.shown {
		t.Error("Show() not called")
	}
}

func TestViewScrolled(t *testing.T) {
	g := newGrid(4, 3)
	v := NewView(g)
	v.Draw(Frame{
		Lines:   []string{"abcdefgh"},
		Top:     5,
		Left:    3,
		Cursor:  buffer.Pos{Line: 5, Col: 4},
		TabStop: 8,
		Name:    "x",
	})
	if got := g.row(0); got != "defg" {
		t.Errorf("row 0 = %q, want %q", got, "defg")
	}
	if g.cx != 1 || g.cy != 0 {
		t.Errorf("cursor = (%d,%d), want (1,0)", g.cx, g.cy)
	}
}

func TestViewWideCharacters(t *testing.T) {
	g := newGrid(10, 3)
	v := NewView(g)
	v.Draw(Frame{
		Lines:   []string{"世界x"},
		Top:     1,
		Cursor:  buffer.Pos{Line: 1, Col: len("世界")},
		TabStop: 8,
	})
	if g.cx != 4 {
		t.Errorf("cursor column = %d, want 4", g.cx)
	}
}

func TestViewCmdline(t *testing.T) {
	g := newGrid(20, 4)
	v := NewView(g)
	v.Draw(Frame{Lines: []string{"a"}, Top: 1, Message: "old"})
	v.DrawCmdline(cmdline.Line{FirstC: ':', Text: "s/é/x/", Cursor: 3})

	if got := g.row(3); got != ":s/é/x/" {
		t.Errorf("command row = %q, want %q", got, ":s/é/x/")
	}
	if g.cx != 4 || g.cy != 3 {
		t.Errorf("cursor = (%d,%d), want (4,3)", g.cx, g.cy)
	}

	// The next frame has no command line.
	v.Draw(Frame{Lines: []string{"a"}, Top: 1})
	if got := g.row(3); got != "" {
		t.Errorf("command row after Draw = %q, want empty", got)
	}
}

func TestViewLongMessage(t *testing.T) {
	g := newGrid(20, 5)
	v := NewView(g)
	v.Draw(Frame{
		Lines:   []string{"1", "2", "3"},
		Top:     1,
		Message: "Type Name Content\n  c  \"a   x",
		Name:    "f",
	})
	want := []string{"1", "2", "3", "Type Name Content", "  c  \"a   x"}
	for y, w := range want {
		if got := g.row(y); got != w {
			t.Errorf("row %d = %q, want %q", y, got, w)
		}
	}
}

func TestFrameStatus(t *testing.T) {
	tests := []struct {
		f    Frame
		want string
	}{
		{Frame{Name: "a", Mode: "NORMAL", Cursor: buffer.Pos{Line: 3, Col: 0}}, "a  3,1"},
		{Frame{Name: "a", Modified: true, Mode: "OPERATOR", Cursor: buffer.Pos{Line: 1, Col: 4}}, "a [+]  -- OPERATOR --  1,5"},
	}
	for _, tt := range tests {
		if got := tt.f.Status(); got != tt.want {
			t.Errorf("Status() = %q, want %q", got, tt.want)
		}
	}
}
