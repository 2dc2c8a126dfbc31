package charclass

import (
	"errors"
	"testing"
)

func TestClass(t *testing.T) {
	c := Default()
	tests := []struct {
		r    rune
		want int
	}{
		{' ', ClassBlank},
		{'\t', ClassBlank},
		{0, ClassBlank},
		{'a', ClassWord},
		{'Z', ClassWord},
		{'7', ClassWord},
		{'_', ClassWord},
		{'é', ClassWord},
		{'.', ClassPunct},
		{'(', ClassPunct},
		{'λ', ClassWord},
		{'漢', classHan},
	}

	for _, tt := range tests {
		if got := c.Class(tt.r); got != tt.want {
			t.Errorf("Class(%q) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestIsKeywordOption(t *testing.T) {
	c, err := New("@,48-57,_,-", 8)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !c.IsWord('-') {
		t.Error("IsWord('-') = false, want true")
	}

	c, err = New("@,^a", 8)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.IsWord('a') {
		t.Error("IsWord('a') = true with ^a, want false")
	}
	if c.IsWord('1') {
		t.Error("IsWord('1') = true without digits, want false")
	}

	if _, err := New("300-400", 8); !errors.Is(err, ErrInvalidKeyword) {
		t.Errorf("New(300-400) error = %v, want ErrInvalidKeyword", err)
	}
}

func TestVirtCol(t *testing.T) {
	c := Default()
	tests := []struct {
		line      string
		col       int
		wantStart int
		wantEnd   int
	}{
		{"abc", 0, 0, 0},
		{"abc", 2, 2, 2},
		{"abc", 3, 3, 3},
		{"\tx", 0, 0, 7},
		{"\tx", 1, 8, 8},
		{"a\tx", 1, 1, 7},
		{"漢x", 0, 0, 1},
		{"漢x", 3, 2, 2},
	}

	for _, tt := range tests {
		start, end := c.VirtCol(tt.line, tt.col)
		if start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("VirtCol(%q, %d) = (%d, %d), want (%d, %d)", tt.line, tt.col, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestColAt(t *testing.T) {
	c := Default()
	tests := []struct {
		line string
		vcol int
		want int
	}{
		{"abcdef", 3, 3},
		{"abc", 10, 3},
		{"\tx", 4, 0},
		{"\tx", 8, 1},
		{"漢x", 1, 0},
		{"漢x", 2, 3},
	}

	for _, tt := range tests {
		if got := c.ColAt(tt.line, tt.vcol); got != tt.want {
			t.Errorf("ColAt(%q, %d) = %d, want %d", tt.line, tt.vcol, got, tt.want)
		}
	}
}

func TestCharLen(t *testing.T) {
	tests := []struct {
		line string
		col  int
		want int
	}{
		{"abc", 0, 1},
		{"abc", 3, 0},
		{"é", 0, 2},
		{"éx", 0, 3},
		{"漢", 0, 3},
	}

	for _, tt := range tests {
		if got := CharLen(tt.line, tt.col); got != tt.want {
			t.Errorf("CharLen(%q, %d) = %d, want %d", tt.line, tt.col, got, tt.want)
		}
	}
}

func TestCharStart(t *testing.T) {
	line := "aé漢"
	tests := []struct {
		col  int
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{4, 3},
		{5, 3},
	}
	for _, tt := range tests {
		if got := CharStart(line, tt.col); got != tt.want {
			t.Errorf("CharStart(%q, %d) = %d, want %d", line, tt.col, got, tt.want)
		}
	}
	if got := LastCharStart(line); got != 3 {
		t.Errorf("LastCharStart(%q) = %d, want 3", line, got)
	}
	if got := PrevCharStart(line, 3); got != 1 {
		t.Errorf("PrevCharStart(%q, 3) = %d, want 1", line, got)
	}
}

func TestIsComposing(t *testing.T) {
	if !IsComposing('\u0301') {
		t.Error("IsComposing(U+0301) = false, want true")
	}
	if IsComposing('a') || IsComposing('é') {
		t.Error("IsComposing() = true for a base character")
	}
}
