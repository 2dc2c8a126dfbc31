package buffer

import (
	"errors"
	"testing"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer()
	if b.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1", b.LineCount())
	}
	if b.Line(1) != "" {
		t.Errorf("Line(1) = %q, want empty", b.Line(1))
	}
}

func TestNewBufferFromString(t *testing.T) {
	tests := []struct {
		in        string
		wantCount int
		wantLast  string
	}{
		{"alpha", 1, "alpha"},
		{"alpha\nbeta\n", 2, "beta"},
		{"a\r\nb\r\nc", 3, "c"},
		{"\n\n", 2, ""},
	}

	for _, tt := range tests {
		b := NewBufferFromString(tt.in)
		if got := b.LineCount(); got != tt.wantCount {
			t.Errorf("NewBufferFromString(%q).LineCount() = %d, want %d", tt.in, got, tt.wantCount)
		}
		if got := b.Line(b.LineCount()); got != tt.wantLast {
			t.Errorf("NewBufferFromString(%q) last line = %q, want %q", tt.in, got, tt.wantLast)
		}
	}
}

func TestBufferLineEdits(t *testing.T) {
	b := NewBufferFromString("one\nthree")

	if err := b.AppendLine(1, "two"); err != nil {
		t.Fatalf("AppendLine() error = %v", err)
	}
	if err := b.AppendLine(0, "zero"); err != nil {
		t.Fatalf("AppendLine(0) error = %v", err)
	}
	if err := b.ReplaceLine(4, "THREE"); err != nil {
		t.Fatalf("ReplaceLine() error = %v", err)
	}
	if got, want := b.Text(), "zero\none\ntwo\nTHREE"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	if err := b.DeleteLine(1); err != nil {
		t.Fatalf("DeleteLine() error = %v", err)
	}
	if got, want := b.Text(), "one\ntwo\nTHREE"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestBufferDeleteLastLine(t *testing.T) {
	b := NewBufferFromString("only")
	if err := b.DeleteLine(1); err != nil {
		t.Fatalf("DeleteLine() error = %v", err)
	}
	if b.LineCount() != 1 || b.Line(1) != "" {
		t.Errorf("after deleting the only line: count %d, line %q", b.LineCount(), b.Line(1))
	}
}

func TestBufferOutOfRange(t *testing.T) {
	b := NewBufferFromString("a\nb")
	if err := b.ReplaceLine(3, "x"); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("ReplaceLine(3) error = %v, want ErrLineOutOfRange", err)
	}
	if err := b.DeleteLine(0); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("DeleteLine(0) error = %v, want ErrLineOutOfRange", err)
	}
	if err := b.AppendLine(5, "x"); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("AppendLine(5) error = %v, want ErrLineOutOfRange", err)
	}
}

func TestBufferReadOnly(t *testing.T) {
	b := NewBufferFromString("a", WithReadOnly())
	if err := b.ReplaceLine(1, "b"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("ReplaceLine() error = %v, want ErrReadOnly", err)
	}
	if b.Modifiable() {
		t.Error("Modifiable() = true, want false")
	}
}

func TestBufferListeners(t *testing.T) {
	b := NewBufferFromString("a\nb\nc")
	var got []Change
	b.OnChange(func(c Change) { got = append(got, c) })

	_ = b.AppendLine(1, "x")
	_ = b.DeleteLine(3)
	_ = b.ReplaceLine(1, "y")

	want := []Change{
		{Kind: LinesInserted, Line: 1, Count: 1},
		{Kind: LinesDeleted, Line: 3, Count: 1},
		{Kind: LineChanged, Line: 1, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d changes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSnapshotIsolation(t *testing.T) {
	b := NewBufferFromString("a\nb")
	snap := b.Snapshot()
	_ = b.ReplaceLine(1, "changed")

	if snap.Lines()[0] != "a" {
		t.Errorf("snapshot line 1 = %q, want %q", snap.Lines()[0], "a")
	}
	if snap.Equal(b.Snapshot()) {
		t.Error("Equal() = true after an edit, want false")
	}

	b.SetLines(snap.Lines())
	if b.Text() != "a\nb" {
		t.Errorf("Text() after SetLines = %q, want %q", b.Text(), "a\nb")
	}
}

func TestPosCompare(t *testing.T) {
	tests := []struct {
		a, b Pos
		want int
	}{
		{Pos{1, 0}, Pos{1, 0}, 0},
		{Pos{1, 5}, Pos{2, 0}, -1},
		{Pos{3, 1}, Pos{3, 0}, 1},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
