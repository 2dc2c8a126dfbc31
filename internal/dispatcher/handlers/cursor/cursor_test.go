package cursor_test

import (
	"errors"
	"testing"

	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/engine/buffer"
)

func newText(s string) *cursor.Text {
	return cursor.New(buffer.NewBufferFromString(s), nil)
}

func at(line, col int) buffer.Pos {
	return buffer.Pos{Line: line, Col: col}
}

func TestFwdWord(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		from    buffer.Pos
		count   int
		bigword bool
		eol     bool
		want    buffer.Pos
		wantErr bool
	}{
		{"next word", "foo bar.baz\nqux", at(1, 0), 1, false, false, at(1, 4), false},
		{"stops on punctuation", "foo bar.baz\nqux", at(1, 0), 2, false, false, at(1, 7), false},
		{"after punctuation", "foo bar.baz\nqux", at(1, 0), 3, false, false, at(1, 8), false},
		{"WORD crosses line", "foo bar.baz\nqux", at(1, 4), 1, true, false, at(2, 0), false},
		{"eol stops at end of line", "foo bar.baz\nqux", at(1, 8), 1, false, true, at(1, 11), false},
		{"empty line is a word", "foo\n\nbar", at(1, 0), 1, false, false, at(2, 0), false},
		{"fails on last char", "foo bar.baz\nqux", at(2, 2), 1, false, false, at(2, 3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newText(tt.text).FwdWord(tt.from, tt.count, tt.bigword, tt.eol)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FwdWord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FwdWord() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackwardAndEndWord(t *testing.T) {
	txt := newText("foo bar.baz")

	if got, _ := txt.BckWord(at(1, 8), 1, false, false); got != at(1, 7) {
		t.Errorf("BckWord() from baz = %v, want (1:7)", got)
	}
	if got, _ := txt.BckWord(at(1, 4), 1, false, false); got != at(1, 0) {
		t.Errorf("BckWord() from bar = %v, want (1:0)", got)
	}
	if _, err := txt.BckWord(at(1, 0), 1, false, false); !errors.Is(err, cursor.ErrFailed) {
		t.Errorf("BckWord() at start error = %v, want ErrFailed", err)
	}

	txt = newText("foo bar")
	if got, _ := txt.EndWord(at(1, 0), 1, false, false, false); got != at(1, 2) {
		t.Errorf("EndWord() = %v, want (1:2)", got)
	}
	if got, _ := txt.EndWord(at(1, 2), 1, false, false, false); got != at(1, 6) {
		t.Errorf("EndWord() from word end = %v, want (1:6)", got)
	}
	if got, _ := txt.BckendWord(at(1, 5), 1, false, false); got != at(1, 2) {
		t.Errorf("BckendWord() = %v, want (1:2)", got)
	}
}

func TestFindPar(t *testing.T) {
	txt := newText("a\nb\n\nc\nd")

	got, incl, err := txt.FindPar(at(1, 0), cursor.Forward, 1, 0, false)
	if err != nil || got != at(3, 0) || incl {
		t.Errorf("FindPar() forward = %v, %v, %v, want (3:0), false, nil", got, incl, err)
	}

	got, incl, err = txt.FindPar(at(3, 0), cursor.Forward, 1, 0, false)
	if err != nil || got != at(5, 0) || !incl {
		t.Errorf("FindPar() to last line = %v, %v, %v, want (5:0), true, nil", got, incl, err)
	}

	got, _, _ = txt.FindPar(at(5, 0), cursor.Backward, 1, 0, false)
	if got != at(3, 0) {
		t.Errorf("FindPar() backward = %v, want (3:0)", got)
	}

	if _, _, err = txt.FindPar(at(1, 0), cursor.Forward, 3, 0, false); !errors.Is(err, cursor.ErrFailed) {
		t.Errorf("FindPar() past end error = %v, want ErrFailed", err)
	}
}

func TestStartPSMacros(t *testing.T) {
	txt := newText(".PP\n.SH NAME\n.XX\n{\n}")
	tests := []struct {
		lnum int
		para rune
		both bool
		want bool
	}{
		{1, 0, false, true},
		{2, '{', false, true},
		{3, 0, false, false},
		{4, '{', false, true},
		{5, '{', false, false},
		{5, '{', true, true},
	}
	for _, tt := range tests {
		if got := txt.StartPS(tt.lnum, tt.para, tt.both); got != tt.want {
			t.Errorf("StartPS(%d, %q, %v) = %v, want %v", tt.lnum, tt.para, tt.both, got, tt.want)
		}
	}
}

func TestFindSent(t *testing.T) {
	txt := newText("Hello world. This is it.  Next one")

	if got, _ := txt.FindSent(at(1, 0), cursor.Forward, 1, false); got != at(1, 13) {
		t.Errorf("FindSent() forward = %v, want (1:13)", got)
	}
	if got, _ := txt.FindSent(at(1, 13), cursor.Backward, 1, false); got != at(1, 0) {
		t.Errorf("FindSent() backward = %v, want (1:0)", got)
	}
	if got, _ := txt.FindSent(at(1, 13), cursor.Forward, 1, false); got != at(1, 26) {
		t.Errorf("FindSent() over two spaces = %v, want (1:26)", got)
	}
}

func TestCharSearch(t *testing.T) {
	txt := newText("a,b,c,d")
	var cs cursor.CharSearch

	tests := []struct {
		name    string
		from    buffer.Pos
		dir     int
		till    bool
		count   int
		want    buffer.Pos
		wantErr bool
	}{
		{"f", at(1, 0), cursor.Forward, false, 2, at(1, 3), false},
		{"t", at(1, 0), cursor.Forward, true, 1, at(1, 0), false},
		{"F", at(1, 6), cursor.Backward, false, 1, at(1, 5), false},
		{"T", at(1, 6), cursor.Backward, true, 2, at(1, 4), false},
		{"f past end", at(1, 0), cursor.Forward, false, 4, at(1, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cs.Find(txt, tt.from, ',', tt.dir, tt.till, tt.count, true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Find() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Find() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCharSearchRepeat(t *testing.T) {
	txt := newText("a,b,c,d")
	var cs cursor.CharSearch

	if _, _, err := cs.Repeat(txt, at(1, 0), false, 1, false); !errors.Is(err, cursor.ErrFailed) {
		t.Errorf("Repeat() without search error = %v, want ErrFailed", err)
	}

	p, _ := cs.Find(txt, at(1, 0), ',', cursor.Forward, true, 1, true)
	p, dir, err := cs.Repeat(txt, p, false, 1, false)
	if err != nil || p != at(1, 2) || dir != cursor.Forward {
		t.Errorf("Repeat() = %v, %d, %v, want (1:2), 1, nil", p, dir, err)
	}
	if stuck, _, _ := cs.Repeat(txt, at(1, 0), false, 1, true); stuck != at(1, 0) {
		t.Errorf("Repeat() keepStuck = %v, want (1:0)", stuck)
	}
	p, dir, _ = cs.Repeat(txt, at(1, 6), true, 1, false)
	if p != at(1, 4) || dir != cursor.Backward {
		t.Errorf("Repeat() reversed = %v, %d, want (1:4), -1", p, dir)
	}
}

func TestFindMatch(t *testing.T) {
	mp := cursor.ParseMatchPairs(cursor.DefaultMatchPairs)
	tests := []struct {
		name string
		text string
		from buffer.Pos
		want buffer.Pos
	}{
		{"paren ahead", "if (a[1]) {", at(1, 0), at(1, 8)},
		{"bracket", "if (a[1]) {", at(1, 5), at(1, 7)},
		{"backward", "if (a[1]) {", at(1, 8), at(1, 3)},
		{"across lines", "{\n  x\n}", at(1, 0), at(3, 0)},
		{"comment", "/* x */", at(1, 0), at(1, 6)},
		{"comment end", "/* x */", at(1, 5), at(1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newText(tt.text).FindMatch(tt.from, mp)
			if err != nil {
				t.Fatalf("FindMatch() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FindMatch() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := newText("no pairs").FindMatch(at(1, 0), mp); !errors.Is(err, cursor.ErrFailed) {
		t.Errorf("FindMatch() without pair error = %v, want ErrFailed", err)
	}
}

func TestFindUnmatched(t *testing.T) {
	txt := newText("{ a { b } c }")
	if got, _ := txt.FindUnmatched(at(1, 10), '{', '}', cursor.Backward, 1); got != at(1, 0) {
		t.Errorf("FindUnmatched() backward = %v, want (1:0)", got)
	}
	if got, _ := txt.FindUnmatched(at(1, 6), '{', '}', cursor.Forward, 2); got != at(1, 12) {
		t.Errorf("FindUnmatched() count 2 = %v, want (1:12)", got)
	}
}

func TestWordObject(t *testing.T) {
	txt := newText("foo bar baz")
	op := func(c int) cursor.Selection { return cursor.Selection{Cursor: at(1, c)} }

	tests := []struct {
		name      string
		sel       cursor.Selection
		count     int
		include   bool
		wantStart buffer.Pos
		wantEnd   buffer.Pos
	}{
		{"iw", op(5), 1, false, at(1, 4), at(1, 6)},
		{"aw takes trailing white", op(5), 1, true, at(1, 4), at(1, 7)},
		{"aw at line end takes leading white", op(9), 1, true, at(1, 7), at(1, 10)},
		{"2iw counts the white", op(1), 2, false, at(1, 0), at(1, 3)},
		{"visual iw", cursor.Selection{Active: true, Mode: cursor.ModeChar, Start: at(1, 5), Cursor: at(1, 5)}, 1, false, at(1, 4), at(1, 6)},
		{"visual iw extends", cursor.Selection{Active: true, Mode: cursor.ModeChar, Start: at(1, 4), Cursor: at(1, 6)}, 1, false, at(1, 4), at(1, 7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := txt.Word(tt.sel, tt.count, tt.include, false)
			if err != nil {
				t.Fatalf("Word() error = %v", err)
			}
			if obj.Start != tt.wantStart || obj.End != tt.wantEnd || !obj.Inclusive {
				t.Errorf("Word() = %v-%v inclusive %v, want %v-%v inclusive", obj.Start, obj.End, obj.Inclusive, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestSentenceObject(t *testing.T) {
	txt := newText("One. Two. Three.")

	obj, err := txt.Sentence(cursor.Selection{Cursor: at(1, 6)}, 1, false, false)
	if err != nil {
		t.Fatalf("Sentence() error = %v", err)
	}
	if obj.Start != at(1, 5) || obj.End != at(1, 9) || obj.Inclusive {
		t.Errorf("is = %v-%v inclusive %v, want (1:5)-(1:9) exclusive", obj.Start, obj.End, obj.Inclusive)
	}

	obj, _ = txt.Sentence(cursor.Selection{Cursor: at(1, 6)}, 1, true, false)
	if obj.Start != at(1, 5) || obj.End != at(1, 10) || obj.Inclusive {
		t.Errorf("as = %v-%v inclusive %v, want (1:5)-(1:10) exclusive", obj.Start, obj.End, obj.Inclusive)
	}
}

func TestParagraphObject(t *testing.T) {
	txt := newText("a\nb\n\nc")

	tests := []struct {
		name     string
		include  bool
		from     int
		wantFrom int
		wantTo   int
	}{
		{"ip", false, 1, 1, 2},
		{"ap", true, 1, 1, 3},
		{"ip on blank", false, 3, 3, 3},
		{"ap at last paragraph takes white before", true, 4, 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := txt.Paragraph(cursor.Selection{Cursor: at(tt.from, 0)}, 1, tt.include)
			if err != nil {
				t.Fatalf("Paragraph() error = %v", err)
			}
			if obj.Start.Line != tt.wantFrom || obj.End.Line != tt.wantTo || !obj.Linewise {
				t.Errorf("Paragraph() = %d-%d linewise %v, want %d-%d linewise", obj.Start.Line, obj.End.Line, obj.Linewise, tt.wantFrom, tt.wantTo)
			}
		})
	}

	if _, err := txt.Paragraph(cursor.Selection{Cursor: at(4, 0)}, 2, false); !errors.Is(err, cursor.ErrFailed) {
		t.Errorf("Paragraph() past end error = %v, want ErrFailed", err)
	}
}

func TestBlockObject(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		from      buffer.Pos
		count     int
		include   bool
		wantStart buffer.Pos
		wantEnd   buffer.Pos
		inclusive bool
	}{
		{"i(", "f(a, (b), c)", at(1, 6), 1, false, at(1, 6), at(1, 6), true},
		{"a(", "f(a, (b), c)", at(1, 6), 1, true, at(1, 5), at(1, 7), true},
		{"2i(", "f(a, (b), c)", at(1, 6), 2, false, at(1, 2), at(1, 10), true},
		{"i( on open paren", "f(a)", at(1, 1), 1, false, at(1, 2), at(1, 2), true},
		{"i( empty", "f()", at(1, 1), 1, false, at(1, 2), at(1, 2), false},
		{"i{ over lines", "if {\n\tfoo\n}", at(2, 1), 1, false, at(2, 0), at(3, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, close := '(', ')'
			if tt.name == "i{ over lines" {
				open, close = '{', '}'
			}
			obj, err := newText(tt.text).Block(cursor.Selection{Cursor: tt.from}, tt.count, tt.include, open, close)
			if err != nil {
				t.Fatalf("Block() error = %v", err)
			}
			if obj.Start != tt.wantStart || obj.End != tt.wantEnd || obj.Inclusive != tt.inclusive {
				t.Errorf("Block() = %v-%v inclusive %v, want %v-%v inclusive %v",
					obj.Start, obj.End, obj.Inclusive, tt.wantStart, tt.wantEnd, tt.inclusive)
			}
		})
	}

	if _, err := newText("no block").Block(cursor.Selection{Cursor: at(1, 3)}, 1, false, '(', ')'); !errors.Is(err, cursor.ErrFailed) {
		t.Errorf("Block() outside block error = %v, want ErrFailed", err)
	}
}

func TestQuoteObject(t *testing.T) {
	txt := newText(`x = "hello" + y`)

	tests := []struct {
		name      string
		sel       cursor.Selection
		include   bool
		wantStart buffer.Pos
		wantEnd   buffer.Pos
		inclusive bool
	}{
		{"i\"", cursor.Selection{Cursor: at(1, 6)}, false, at(1, 5), at(1, 10), false},
		{"i\" on closing quote", cursor.Selection{Cursor: at(1, 10)}, false, at(1, 5), at(1, 10), false},
		{"a\" takes trailing white", cursor.Selection{Cursor: at(1, 6)}, true, at(1, 4), at(1, 12), false},
		{"visual i\"", cursor.Selection{Active: true, Mode: cursor.ModeChar, Start: at(1, 6), Cursor: at(1, 6)}, false, at(1, 5), at(1, 9), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := txt.Quote(tt.sel, 1, tt.include, '"', `\`)
			if err != nil {
				t.Fatalf("Quote() error = %v", err)
			}
			if obj.Start != tt.wantStart || obj.End != tt.wantEnd || obj.Inclusive != tt.inclusive {
				t.Errorf("Quote() = %v-%v inclusive %v, want %v-%v inclusive %v",
					obj.Start, obj.End, obj.Inclusive, tt.wantStart, tt.wantEnd, tt.inclusive)
			}
		})
	}

	escaped := newText(`say "a \" b" now`)
	obj, err := escaped.Quote(cursor.Selection{Cursor: at(1, 6)}, 1, false, '"', `\`)
	if err != nil || obj.Start != at(1, 5) || obj.End != at(1, 11) {
		t.Errorf("Quote() with escape = %v-%v, %v, want (1:5)-(1:11)", obj.Start, obj.End, err)
	}
}

func TestTagObject(t *testing.T) {
	txt := newText("<div><b>hi</b></div>")
	sel := cursor.Selection{Cursor: at(1, 8)}

	tests := []struct {
		name      string
		count     int
		include   bool
		wantStart buffer.Pos
		wantEnd   buffer.Pos
	}{
		{"it", 1, false, at(1, 8), at(1, 10)},
		{"at", 1, true, at(1, 5), at(1, 14)},
		{"2it", 2, false, at(1, 5), at(1, 14)},
		{"2at", 2, true, at(1, 0), at(1, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := txt.Tag(sel, tt.count, tt.include)
			if err != nil {
				t.Fatalf("Tag() error = %v", err)
			}
			if obj.Start != tt.wantStart || obj.End != tt.wantEnd {
				t.Errorf("Tag() = %v-%v, want %v-%v", obj.Start, obj.End, tt.wantStart, tt.wantEnd)
			}
		})
	}

	if _, err := txt.Tag(sel, 3, false); !errors.Is(err, cursor.ErrFailed) {
		t.Errorf("Tag() count 3 error = %v, want ErrFailed", err)
	}
}

func TestColumnHelpers(t *testing.T) {
	if got := cursor.FirstNonBlank("\t  x", false); got != 3 {
		t.Errorf("FirstNonBlank() = %d, want 3", got)
	}
	if got := cursor.FirstNonBlank("   ", true); got != 2 {
		t.Errorf("FirstNonBlank(fix) = %d, want 2", got)
	}

	txt := newText("abc\n")
	if got := txt.Coladvance("abc", buffer.MaxCol, false); got != 2 {
		t.Errorf("Coladvance(MaxCol) = %d, want 2", got)
	}
	if got := txt.Coladvance("abc", buffer.MaxCol, true); got != 3 {
		t.Errorf("Coladvance(MaxCol, onemore) = %d, want 3", got)
	}
	if got := txt.Clamp(at(5, 9), false); got != at(1, 2) {
		t.Errorf("Clamp() = %v, want (1:2)", got)
	}
}
