package history

import (
	"errors"
	"testing"

	"github.com/dshills/modalcore/internal/engine/buffer"
)

func edit(t *testing.T, h *History, b *buffer.Buffer, line int, text string) {
	t.Helper()
	if err := h.Save(line-1, line+1, buffer.Pos{Line: line}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := b.ReplaceLine(line, text); err != nil {
		t.Fatalf("ReplaceLine() error = %v", err)
	}
}

func TestUndoRedo(t *testing.T) {
	b := buffer.NewBufferFromString("one\ntwo\nthree")
	h := NewHistory(b, 0)

	edit(t, h, b, 2, "TWO")
	h.Sync()
	edit(t, h, b, 3, "THREE")
	h.Sync()

	pos, err := h.Undo(1)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if b.Text() != "one\nTWO\nthree" {
		t.Errorf("Text() after one undo = %q", b.Text())
	}
	if pos.Line != 3 {
		t.Errorf("Undo() line = %d, want 3", pos.Line)
	}

	if _, err := h.Undo(5); err != nil {
		t.Fatalf("Undo(5) error = %v", err)
	}
	if b.Text() != "one\ntwo\nthree" {
		t.Errorf("Text() after undoing all = %q", b.Text())
	}
	if _, err := h.Undo(1); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() on empty stack error = %v, want ErrNothingToUndo", err)
	}

	if _, err := h.Redo(2); err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if b.Text() != "one\nTWO\nTHREE" {
		t.Errorf("Text() after redo = %q", b.Text())
	}
	if _, err := h.Redo(1); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() error = %v, want ErrNothingToRedo", err)
	}
}

func TestSavesCollectUntilSync(t *testing.T) {
	b := buffer.NewBufferFromString("a\nb\nc")
	h := NewHistory(b, 0)

	edit(t, h, b, 1, "A")
	edit(t, h, b, 3, "C")
	h.Sync()

	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want 1", h.UndoCount())
	}
	if e := h.Last(); e.Top != 0 || e.Bot != 4 {
		t.Errorf("entry range = (%d, %d), want (0, 4)", e.Top, e.Bot)
	}
	if _, err := h.Undo(1); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if b.Text() != "a\nb\nc" {
		t.Errorf("Text() = %q, want original", b.Text())
	}
}

func TestUnchangedEntryDropped(t *testing.T) {
	b := buffer.NewBufferFromString("a")
	h := NewHistory(b, 0)
	if err := h.Save(0, 2, buffer.Pos{Line: 1}); err != nil {
		t.Fatal(err)
	}
	h.Sync()
	if h.UndoCount() != 0 {
		t.Errorf("UndoCount() = %d, want 0", h.UndoCount())
	}
}

func TestGroupSuspendsSync(t *testing.T) {
	b := buffer.NewBufferFromString("a\nb")
	h := NewHistory(b, 0)

	err := h.Transaction(func() error {
		edit(t, h, b, 1, "x")
		h.Sync()
		edit(t, h, b, 2, "y")
		h.Sync()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	h.Sync()
	if h.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", h.UndoCount())
	}
}

func TestUndoLine(t *testing.T) {
	b := buffer.NewBufferFromString("hello\nworld")
	h := NewHistory(b, 0)

	edit(t, h, b, 2, "wOrld")
	h.Sync()
	edit(t, h, b, 2, "wOrlD")
	h.Sync()

	if _, err := h.UndoLine(buffer.Pos{Line: 2}); err != nil {
		t.Fatalf("UndoLine() error = %v", err)
	}
	if b.Line(2) != "world" {
		t.Errorf("Line(2) after U = %q, want %q", b.Line(2), "world")
	}

	if _, err := h.UndoLine(buffer.Pos{Line: 2}); err != nil {
		t.Fatalf("second UndoLine() error = %v", err)
	}
	if b.Line(2) != "wOrlD" {
		t.Errorf("Line(2) after UU = %q, want %q", b.Line(2), "wOrlD")
	}
}

func TestMaxEntries(t *testing.T) {
	b := buffer.NewBufferFromString("0")
	h := NewHistory(b, 2)
	for _, s := range []string{"1", "2", "3"} {
		edit(t, h, b, 1, s)
		h.Sync()
	}
	if h.UndoCount() != 2 {
		t.Errorf("UndoCount() = %d, want 2", h.UndoCount())
	}
}

func TestSaveInvalidRange(t *testing.T) {
	h := NewHistory(buffer.NewBuffer(), 0)
	if err := h.Save(3, 3, buffer.Pos{}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Save(3, 3) error = %v, want ErrInvalidRange", err)
	}
}

func TestEntries(t *testing.T) {
	b := buffer.NewBufferFromString("0\n1\n2")
	h := NewHistory(b, 2)
	if got := h.Entries(); len(got) != 0 {
		t.Fatalf("Entries() on a new history = %d entries", len(got))
	}

	for _, s := range []string{"a", "b"} {
		edit(t, h, b, 1, s)
		h.Sync()
	}
	if err := h.Save(0, 4, buffer.Pos{Line: 1}); err != nil {
		t.Fatal(err)
	}
	if err := b.ReplaceLine(3, "c"); err != nil {
		t.Fatal(err)
	}
	// The pending change is closed and the oldest entry falls off.
	got := h.Entries()
	if len(got) != 2 {
		t.Fatalf("Entries() = %d entries, want 2", len(got))
	}
	if got[0].Seq != 2 || got[1].Seq != 3 {
		t.Errorf("Entries() seq = %d, %d, want 2, 3", got[0].Seq, got[1].Seq)
	}
	if got[0].Lines() != 1 || got[1].Lines() != 3 {
		t.Errorf("Entries() lines = %d, %d, want 1, 3", got[0].Lines(), got[1].Lines())
	}
	if got[0].ID == got[1].ID {
		t.Error("Entries() share an ID")
	}

	h.BeginGroup()
	edit(t, h, b, 2, "c")
	if n := len(h.Entries()); n != 2 {
		t.Errorf("Entries() inside a group = %d entries, want 2", n)
	}
	h.EndGroup()
	got = h.Entries()
	if len(got) != 2 || got[1].Seq != 4 {
		t.Errorf("Entries() after the group = %+v, want seq 3, 4", got)
	}
}
