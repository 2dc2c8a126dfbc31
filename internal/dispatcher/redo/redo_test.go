package redo

import (
	"errors"
	"slices"
	"testing"

	"github.com/dshills/modalcore/internal/input/key"
)

func TestPrepAndStart(t *testing.T) {
	tests := []struct {
		name   string
		reg    rune
		count  int
		cmds   []key.Code
		replay int
		want   string
		visual bool
	}{
		{"plain", 0, 0, []key.Code{'d', 'w'}, 0, "dw", false},
		{"keeps count", 0, 3, []key.Code{'d', 'w'}, 0, "3dw", false},
		{"replaces count", 0, 3, []key.Code{'d', 'w'}, 5, "5dw", false},
		{"adds count", 0, 0, []key.Code{'d', 'd'}, 2, "2dd", false},
		{"register", 'a', 0, []key.Code{'d', 'd'}, 0, `"add`, false},
		{"numbered register advances", '1', 0, []key.Code{'p'}, 0, `"2p`, false},
		{"register 9 stays", '9', 0, []key.Code{'p'}, 0, `"9p`, false},
		{"visual marker", 0, 0, []key.Code{VisualMarker, 'd'}, 0, "d", true},
		{"skips NUL", 0, 0, []key.Code{'d', key.NUL, 'w'}, 0, "dw", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(0)
			if err := b.Prep(tt.reg, tt.count, tt.cmds...); err != nil {
				t.Fatalf("Prep() error = %v", err)
			}
			r, err := b.Start(tt.replay)
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			if got := key.Format(r.Keys); got != tt.want {
				t.Errorf("Start() keys = %q, want %q", got, tt.want)
			}
			if r.Visual != tt.visual {
				t.Errorf("Start() Visual = %v, want %v", r.Visual, tt.visual)
			}
		})
	}
}

func TestCancelRestoresPrevious(t *testing.T) {
	b := New(0)
	_ = b.Prep(0, 0, 'x')
	_ = b.Prep(0, 0, 'd', 'w')
	b.Cancel()
	if got := b.Content(); !slices.Equal(got, []key.Code{'x'}) {
		t.Errorf("Content() after Cancel = %v, want [x]", got)
	}
}

func TestBlock(t *testing.T) {
	b := New(0)
	_ = b.Prep(0, 0, 'x')
	b.Block()
	b.Reset()
	_ = b.Append('y')
	b.Unblock()
	if got := b.Content(); !slices.Equal(got, []key.Code{'x'}) {
		t.Errorf("Content() after blocked edits = %v, want [x]", got)
	}
}

func TestOverflow(t *testing.T) {
	b := New(3)
	b.Reset()
	if err := b.Append('a', 'b'); err != nil {
		t.Fatal(err)
	}
	if err := b.Append('c', 'd'); !errors.Is(err, ErrFull) {
		t.Errorf("Append() past capacity error = %v, want ErrFull", err)
	}
	if _, err := b.Start(0); !errors.Is(err, ErrFull) {
		t.Errorf("Start() on truncated error = %v, want ErrFull", err)
	}
	b.Reset()
	if _, err := b.Start(0); !errors.Is(err, ErrEmpty) {
		t.Errorf("Start() on empty error = %v, want ErrEmpty", err)
	}
}

func TestAppendLiteral(t *testing.T) {
	b := New(0)
	b.Reset()
	_ = b.AppendLiteral("a\tb")
	want := []key.Code{'a', key.CtrlV, key.Tab, 'b'}
	if got := b.Content(); !slices.Equal(got, want) {
		t.Errorf("Content() = %v, want %v", got, want)
	}
}

func TestSaveRestore(t *testing.T) {
	b := New(0)
	_ = b.Prep(0, 2, 'd', 'd')
	saved := b.Save()
	_ = b.Prep(0, 0, 'x')
	b.Restore(saved)
	if got := key.Format(b.Content()); got != "2dd" {
		t.Errorf("Content() after Restore = %q, want 2dd", got)
	}
}
