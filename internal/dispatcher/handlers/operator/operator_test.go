package operator_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/MakeNowJust/heredoc"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/history"
	"github.com/dshills/modalcore/internal/input/vim"
)

type fixture struct {
	h    *operator.Handler
	buf  *buffer.Buffer
	hist *history.History
	regs *vim.RegisterStore
}

func newFixture(text string) *fixture {
	buf := buffer.NewBufferFromString(text)
	hist := history.NewHistory(buf, 0)
	regs := vim.NewRegisterStore()
	return &fixture{
		h:    operator.New(buf, hist, regs, nil),
		buf:  buf,
		hist: hist,
		regs: regs,
	}
}

func (f *fixture) lines() []string {
	return f.buf.Lines(1, f.buf.LineCount())
}

func at(line, col int) buffer.Pos {
	return buffer.Pos{Line: line, Col: col}
}

func charSpan(op vim.OpType, start, end buffer.Pos, inclusive bool) *execctx.OpArg {
	return &execctx.OpArg{
		OpType:     op,
		MotionType: vim.MotionCharwise,
		Inclusive:  inclusive,
		Start:      start,
		End:        end,
		LineCount:  end.Line - start.Line + 1,
	}
}

func lineSpan(op vim.OpType, first, last int) *execctx.OpArg {
	return &execctx.OpArg{
		OpType:     op,
		MotionType: vim.MotionLinewise,
		Start:      at(first, 0),
		End:        at(last, 0),
		LineCount:  last - first + 1,
	}
}

func blockSpan(op vim.OpType, first, last, startVcol, endVcol int) *execctx.OpArg {
	return &execctx.OpArg{
		OpType:     op,
		MotionType: vim.MotionCharwise,
		Inclusive:  true,
		BlockMode:  true,
		Start:      at(first, startVcol),
		End:        at(last, endVcol),
		StartVcol:  startVcol,
		EndVcol:    endVcol,
		LineCount:  last - first + 1,
		IsVisual:   true,
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		oa      *execctx.OpArg
		want    []string
		wantPos buffer.Pos
		reg     rune
		regText []string
	}{
		{
			name:    "dw",
			text:    "hello world",
			oa:      charSpan(vim.OpDelete, at(1, 0), at(1, 6), false),
			want:    []string{"world"},
			wantPos: at(1, 0),
			reg:     '-',
			regText: []string{"hello "},
		},
		{
			name:    "d$ moves back onto the line",
			text:    "abc def",
			oa:      charSpan(vim.OpDelete, at(1, 4), at(1, 6), true),
			want:    []string{"abc "},
			wantPos: at(1, 3),
			reg:     '-',
			regText: []string{"def"},
		},
		{
			name:    "dd over two lines",
			text:    "a\nb\n  c",
			oa:      lineSpan(vim.OpDelete, 1, 2),
			want:    []string{"  c"},
			wantPos: at(1, 2),
			reg:     '1',
			regText: []string{"a", "b"},
		},
		{
			name:    "across lines",
			text:    "abc\ndef\nghi",
			oa:      charSpan(vim.OpDelete, at(1, 1), at(3, 1), true),
			want:    []string{"ai"},
			wantPos: at(1, 1),
			reg:     '1',
			regText: []string{"bc", "def", "gh"},
		},
		{
			name:    "blank remainder becomes linewise",
			text:    "x\n  foo\n\nz",
			oa:      charSpan(vim.OpDelete, at(2, 2), at(3, 0), false),
			want:    []string{"x", "z"},
			wantPos: at(2, 0),
			reg:     '1',
			regText: []string{"  foo", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.text)
			pos, err := f.h.Delete(tt.oa)
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if got := f.lines(); !slices.Equal(got, tt.want) {
				t.Errorf("Delete() lines = %q, want %q", got, tt.want)
			}
			if pos != tt.wantPos {
				t.Errorf("Delete() cursor = %v, want %v", pos, tt.wantPos)
			}
			reg, _ := f.regs.Get(tt.reg)
			if !slices.Equal(reg.Lines, tt.regText) {
				t.Errorf("register %q = %q, want %q", tt.reg, reg.Lines, tt.regText)
			}
		})
	}
}

func TestDeleteUndo(t *testing.T) {
	f := newFixture("one\ntwo\nthree")
	if _, err := f.h.Delete(lineSpan(vim.OpDelete, 2, 2)); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.hist.Undo(1); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := f.lines(); !slices.Equal(got, []string{"one", "two", "three"}) {
		t.Errorf("after Undo() lines = %q", got)
	}
}

func TestDeleteBlackHole(t *testing.T) {
	f := newFixture("keep\ndrop")
	_ = f.regs.Yank(0, []string{"keep"}, vim.MotionLinewise, 0)
	oa := lineSpan(vim.OpDelete, 2, 2)
	oa.Regname = '_'
	if _, err := f.h.Delete(oa); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if reg, _ := f.regs.Get('"'); reg.Lines[0] != "keep" {
		t.Errorf(`"" = %q, want keep`, reg.Lines)
	}

	oa = lineSpan(vim.OpDelete, 1, 1)
	oa.Regname = '.'
	if _, err := f.h.Delete(oa); !errors.Is(err, vim.ErrInvalidRegister) {
		t.Errorf("Delete() into '.' error = %v, want ErrInvalidRegister", err)
	}
}

func TestChange(t *testing.T) {
	f := newFixture("foo bar")
	pos, err := f.h.Change(charSpan(vim.OpChange, at(1, 4), at(1, 6), true))
	if err != nil {
		t.Fatalf("Change() error = %v", err)
	}
	if got := f.buf.Line(1); got != "foo " {
		t.Errorf("Change() line = %q, want %q", got, "foo ")
	}
	if pos != at(1, 4) {
		t.Errorf("Change() cursor = %v, want (1:4)", pos)
	}

	f = newFixture("  foo\nbar\nbaz")
	f.h.SetSettings(operator.Settings{AutoIndent: true, ShiftWidth: 8})
	pos, err = f.h.Change(lineSpan(vim.OpChange, 1, 2))
	if err != nil {
		t.Fatalf("Change() error = %v", err)
	}
	if got := f.lines(); !slices.Equal(got, []string{"  ", "baz"}) {
		t.Errorf("cc lines = %q", got)
	}
	if pos != at(1, 2) {
		t.Errorf("cc cursor = %v, want (1:2)", pos)
	}
}

func TestYank(t *testing.T) {
	f := newFixture("one two\nthree")
	if err := f.h.Yank(charSpan(vim.OpYank, at(1, 0), at(1, 2), true)); err != nil {
		t.Fatalf("Yank() error = %v", err)
	}
	for _, name := range []rune{'0', '"'} {
		if reg, _ := f.regs.Get(name); !slices.Equal(reg.Lines, []string{"one"}) {
			t.Errorf("register %q = %q, want [one]", name, reg.Lines)
		}
	}

	oa := charSpan(vim.OpYank, at(1, 0), at(2, 0), false)
	oa.Regname = 'a'
	if err := f.h.Yank(oa); err != nil {
		t.Fatalf("Yank() error = %v", err)
	}
	reg, _ := f.regs.Get('a')
	if reg.Type != vim.MotionLinewise || !slices.Equal(reg.Lines, []string{"one two"}) {
		t.Errorf("column zero yank = %v %q, want linewise [one two]", reg.Type, reg.Lines)
	}
}

func TestBlockDelete(t *testing.T) {
	f := newFixture(heredoc.Doc(`
		abcd
		efgh
		ij`))
	oa := blockSpan(vim.OpDelete, 1, 3, 1, 2)
	pos, err := f.h.Delete(oa)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := f.lines(); !slices.Equal(got, []string{"ad", "eh", "i"}) {
		t.Errorf("block delete lines = %q", got)
	}
	if pos != at(1, 1) {
		t.Errorf("block delete cursor = %v, want (1:1)", pos)
	}
	reg, _ := f.regs.Get('1')
	if reg.Type != vim.MotionBlockwise || !slices.Equal(reg.Lines, []string{"bc", "fg", "j"}) {
		t.Errorf(`"1 = %v %q`, reg.Type, reg.Lines)
	}
}

func TestBlockEdit(t *testing.T) {
	f := newFixture("abc\ndef\n\n")
	oa := blockSpan(vim.OpInsert, 1, 3, 1, 1)
	be, pos, err := f.h.StartBlockEdit(oa, false)
	if err != nil {
		t.Fatalf("StartBlockEdit() error = %v", err)
	}
	if pos != at(1, 1) {
		t.Fatalf("StartBlockEdit() = %v, want (1:1)", pos)
	}
	_ = f.buf.ReplaceLine(1, "aXXbc")
	if err := f.h.FinishBlockEdit(be); err != nil {
		t.Fatalf("FinishBlockEdit() error = %v", err)
	}
	if got := f.lines(); !slices.Equal(got, []string{"aXXbc", "dXXef", ""}) {
		t.Errorf("block insert lines = %q", got)
	}

	f = newFixture("ab\nabcd")
	oa = blockSpan(vim.OpAppend, 1, 2, 0, 1)
	be, pos, err = f.h.StartBlockEdit(oa, false)
	if err != nil {
		t.Fatalf("StartBlockEdit() error = %v", err)
	}
	if pos != at(1, 2) {
		t.Fatalf("StartBlockEdit() append = %v, want (1:2)", pos)
	}
	_ = f.buf.ReplaceLine(1, "abZ")
	if err := f.h.FinishBlockEdit(be); err != nil {
		t.Fatalf("FinishBlockEdit() error = %v", err)
	}
	if got := f.lines(); !slices.Equal(got, []string{"abZ", "abZcd"}) {
		t.Errorf("block append lines = %q", got)
	}
}

func TestShift(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		settings operator.Settings
		op       vim.OpType
		amount   int
		want     []string
	}{
		{"right with spaces", "foo\n\n  bar", operator.Settings{ShiftWidth: 4, ExpandTab: true}, vim.OpRshift, 1, []string{"    foo", "", "      bar"}},
		{"right with tabs", "x", operator.Settings{ShiftWidth: 8}, vim.OpRshift, 1, []string{"\tx"}},
		{"left", "\t\tx", operator.Settings{ShiftWidth: 8}, vim.OpLshift, 1, []string{"\tx"}},
		{"left past zero", "  x", operator.Settings{ShiftWidth: 4}, vim.OpLshift, 1, []string{"x"}},
		{"left rounded", "      x", operator.Settings{ShiftWidth: 4, ShiftRound: true, ExpandTab: true}, vim.OpLshift, 1, []string{"    x"}},
		{"right twice", "x", operator.Settings{ShiftWidth: 2, ExpandTab: true}, vim.OpRshift, 2, []string{"    x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.text)
			f.h.SetSettings(tt.settings)
			if _, err := f.h.Shift(lineSpan(tt.op, 1, f.buf.LineCount()), tt.amount); err != nil {
				t.Fatalf("Shift() error = %v", err)
			}
			if got := f.lines(); !slices.Equal(got, tt.want) {
				t.Errorf("Shift() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShiftCursor(t *testing.T) {
	f := newFixture("foo")
	f.h.SetSettings(operator.Settings{ShiftWidth: 4, ExpandTab: true})
	pos, _ := f.h.Shift(lineSpan(vim.OpRshift, 1, 1), 1)
	if pos != at(1, 4) {
		t.Errorf("Shift() cursor = %v, want (1:4)", pos)
	}
}

func TestReindent(t *testing.T) {
	f := newFixture(heredoc.Doc(`
		{
		foo
		      }`))
	f.h.SetSettings(operator.Settings{ShiftWidth: 4, ExpandTab: true})
	if _, err := f.h.Reindent(lineSpan(vim.OpIndent, 1, 3)); err != nil {
		t.Fatalf("Reindent() error = %v", err)
	}
	if got := f.lines(); !slices.Equal(got, []string{"{", "    foo", "}"}) {
		t.Errorf("Reindent() = %q", got)
	}
}

func TestChangeCase(t *testing.T) {
	tests := []struct {
		name string
		text string
		oa   *execctx.OpArg
		want string
	}{
		{"gU", "hello world", charSpan(vim.OpUpper, at(1, 0), at(1, 4), true), "HELLO world"},
		{"gu linewise", "MiXeD", lineSpan(vim.OpLower, 1, 1), "mixed"},
		{"g~", "AbC", lineSpan(vim.OpTilde, 1, 1), "aBc"},
		{"g?", "aBc!", lineSpan(vim.OpRot13, 1, 1), "nOp!"},
		{"exclusive end", "abcd", charSpan(vim.OpUpper, at(1, 1), at(1, 3), false), "aBCd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.text)
			pos, err := f.h.ChangeCase(tt.oa)
			if err != nil {
				t.Fatalf("ChangeCase() error = %v", err)
			}
			if got := f.buf.Line(1); got != tt.want {
				t.Errorf("ChangeCase() = %q, want %q", got, tt.want)
			}
			if pos.Col != tt.oa.Start.Col {
				t.Errorf("ChangeCase() cursor = %v, want start", pos)
			}
		})
	}
}

func TestSwapAndReplaceChars(t *testing.T) {
	f := newFixture("abc")
	pos, err := f.h.SwapChars(at(1, 0), 2)
	if err != nil || f.buf.Line(1) != "ABc" || pos != at(1, 2) {
		t.Errorf("SwapChars() = %q %v %v", f.buf.Line(1), pos, err)
	}

	f = newFixture("abcd")
	pos, err = f.h.ReplaceChars(at(1, 1), 2, "x")
	if err != nil || f.buf.Line(1) != "axxd" || pos != at(1, 2) {
		t.Errorf("ReplaceChars() = %q %v %v", f.buf.Line(1), pos, err)
	}
	if _, err := f.h.ReplaceChars(at(1, 1), 5, "x"); !errors.Is(err, operator.ErrFailed) {
		t.Errorf("ReplaceChars() past end error = %v, want ErrFailed", err)
	}

	pos, err = f.h.ReplaceSpan(charSpan(vim.OpReplace, at(1, 0), at(1, 2), true), "-")
	if err != nil || f.buf.Line(1) != "---d" || pos != at(1, 0) {
		t.Errorf("ReplaceSpan() = %q %v %v", f.buf.Line(1), pos, err)
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		count       int
		insertSpace bool
		joinSpaces  bool
		want        string
		wantCol     int
	}{
		{"three lines", "foo\n  bar\nbaz.", 3, true, false, "foo bar baz.", 7},
		{"joinspaces", "end.\nnext", 2, true, true, "end.  next", 4},
		{"no space", "a\n  b", 2, false, false, "a  b", 1},
		{"closing paren", "f(\n)", 2, true, false, "f()", 2},
		{"trailing blank", "a \nb", 2, true, false, "a b", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.text)
			f.h.SetSettings(operator.Settings{JoinSpaces: tt.joinSpaces})
			pos, err := f.h.Join(1, tt.count, tt.insertSpace)
			if err != nil {
				t.Fatalf("Join() error = %v", err)
			}
			if got := f.buf.Line(1); got != tt.want {
				t.Errorf("Join() = %q, want %q", got, tt.want)
			}
			if pos.Col != tt.wantCol {
				t.Errorf("Join() col = %d, want %d", pos.Col, tt.wantCol)
			}
		})
	}

	f := newFixture("a\nb")
	if _, err := f.h.Join(2, 2, true); !errors.Is(err, operator.ErrFailed) {
		t.Errorf("Join() on last line error = %v, want ErrFailed", err)
	}
}

func TestFormat(t *testing.T) {
	f := newFixture(heredoc.Doc(`
		aaa bbb ccc ddd

		  one two`))
	f.h.SetSettings(operator.Settings{TextWidth: 10})
	pos, err := f.h.Format(lineSpan(vim.OpFormat, 1, 3), at(1, 0))
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := []string{"aaa bbb", "ccc ddd", "", "  one two"}
	if got := f.lines(); !slices.Equal(got, want) {
		t.Errorf("Format() = %q, want %q", got, want)
	}
	if pos != at(4, 2) {
		t.Errorf("Format() cursor = %v, want (4:2)", pos)
	}

	f = newFixture("a b c d e f\nlast")
	f.h.SetSettings(operator.Settings{TextWidth: 3})
	pos, _ = f.h.Format(lineSpan(vim.OpFormat2, 1, 1), at(2, 1))
	if pos != at(4, 1) {
		t.Errorf("gw cursor = %v, want (4:1)", pos)
	}
}

func TestAddSubAt(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		col       int
		delta     int
		op        vim.OpType
		nrformats string
		want      string
		wantCol   int
	}{
		{"after cursor", "x 7 y", 0, 1, vim.OpNrAdd, "bin,hex", "x 8 y", 2},
		{"hex keeps width", "0x0f", 0, 1, vim.OpNrAdd, "bin,hex", "0x10", 3},
		{"hex keeps case", "0xFE", 2, 1, vim.OpNrAdd, "bin,hex", "0xFF", 3},
		{"negative to zero", "-1", 0, 1, vim.OpNrAdd, "bin,hex", "0", 0},
		{"leading zeros", "007", 0, 1, vim.OpNrAdd, "bin,hex", "008", 2},
		{"crosses zero", "9", 0, 10, vim.OpNrSub, "bin,hex", "-1", 1},
		{"binary", "0b101", 3, 1, vim.OpNrAdd, "bin,hex", "0b110", 4},
		{"octal", "007", 0, 1, vim.OpNrAdd, "octal", "010", 2},
		{"alpha", "a", 0, 2, vim.OpNrAdd, "alpha", "c", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.text)
			f.h.SetSettings(operator.Settings{NrFormats: tt.nrformats})
			pos, err := f.h.AddSubAt(at(1, tt.col), tt.delta, tt.op)
			if err != nil {
				t.Fatalf("AddSubAt() error = %v", err)
			}
			if got := f.buf.Line(1); got != tt.want {
				t.Errorf("AddSubAt() = %q, want %q", got, tt.want)
			}
			if pos.Col != tt.wantCol {
				t.Errorf("AddSubAt() col = %d, want %d", pos.Col, tt.wantCol)
			}
		})
	}

	f := newFixture("no digits")
	if _, err := f.h.AddSubAt(at(1, 0), 1, vim.OpNrAdd); !errors.Is(err, operator.ErrFailed) {
		t.Errorf("AddSubAt() without number error = %v, want ErrFailed", err)
	}
}

func TestAddSubProgressive(t *testing.T) {
	f := newFixture("0\n0\nx\n0")
	oa := lineSpan(vim.OpNrAdd, 1, 4)
	oa.IsVisual = true
	if _, err := f.h.AddSub(oa, 1, true); err != nil {
		t.Fatalf("AddSub() error = %v", err)
	}
	if got := f.lines(); !slices.Equal(got, []string{"1", "2", "x", "3"}) {
		t.Errorf("g Ctrl-A = %q", got)
	}
}

func TestPut(t *testing.T) {
	chars := vim.Register{Lines: []string{"b"}, Type: vim.MotionCharwise}
	lines := vim.Register{Lines: []string{"b"}, Type: vim.MotionLinewise}
	multi := vim.Register{Lines: []string{"1", "2"}, Type: vim.MotionCharwise}
	block := vim.Register{Lines: []string{"X", "Y"}, Type: vim.MotionBlockwise}
	indented := vim.Register{Lines: []string{"  x", "    y"}, Type: vim.MotionLinewise}

	tests := []struct {
		name    string
		text    string
		pos     buffer.Pos
		reg     vim.Register
		dir     int
		count   int
		flags   operator.PutFlags
		want    []string
		wantPos buffer.Pos
	}{
		{"p chars", "ac", at(1, 0), chars, cursor.Forward, 1, 0, []string{"abc"}, at(1, 1)},
		{"gp chars", "ac", at(1, 0), chars, cursor.Forward, 1, operator.PutCursorEnd, []string{"abc"}, at(1, 2)},
		{"3P chars", "ac", at(1, 1), chars, cursor.Backward, 3, 0, []string{"abbbc"}, at(1, 3)},
		{"p lines", "a\nc", at(1, 0), lines, cursor.Forward, 1, 0, []string{"a", "b", "c"}, at(2, 0)},
		{"P lines", "a\nc", at(1, 0), lines, cursor.Backward, 2, 0, []string{"b", "b", "a", "c"}, at(1, 0)},
		{"gp lines", "a\nc", at(1, 0), lines, cursor.Forward, 1, operator.PutCursorEnd, []string{"a", "b", "c"}, at(3, 0)},
		{"p multi-line chars", "xy", at(1, 0), multi, cursor.Forward, 1, 0, []string{"x1", "2y"}, at(1, 1)},
		{"p block", "ab\ncd", at(1, 0), block, cursor.Forward, 1, 0, []string{"aXb", "cYd"}, at(1, 1)},
		{"p block past end", "ab", at(1, 0), block, cursor.Forward, 1, 0, []string{"aXb", " Y"}, at(1, 1)},
		{"]p", "\tfoo", at(1, 0), indented, cursor.Forward, 1, operator.PutFixIndent, []string{"\tfoo", "\tx", "\t  y"}, at(2, 1)},
		{"]p charwise as lines", "  a", at(1, 0), chars, cursor.Backward, 1, operator.PutLinewise | operator.PutFixIndent, []string{"  b", "  a"}, at(1, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.text)
			pos, err := f.h.Put(tt.pos, tt.reg, tt.dir, tt.count, tt.flags)
			if err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if got := f.lines(); !slices.Equal(got, tt.want) {
				t.Errorf("Put() = %q, want %q", got, tt.want)
			}
			if pos != tt.wantPos {
				t.Errorf("Put() cursor = %v, want %v", pos, tt.wantPos)
			}
		})
	}
}

func TestColonCommand(t *testing.T) {
	tests := []struct {
		name string
		oa   *execctx.OpArg
		prg  string
		want string
	}{
		{"filter relative", lineSpan(vim.OpFilter, 3, 5), "", ":.,.+2!"},
		{"filter to end", lineSpan(vim.OpFilter, 3, 10), "", ":.,$!"},
		{"colon one line", lineSpan(vim.OpColon, 3, 3), "", ":."},
		{"indent", lineSpan(vim.OpIndent, 3, 4), "", ":.,.+1!indent\n"},
		{"format program", lineSpan(vim.OpFormat, 3, 4), "par", ":.,.+1!par\n']"},
		{"visual", &execctx.OpArg{OpType: vim.OpFilter, IsVisual: true}, "", ":'<,'>!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := operator.ColonCommand(tt.oa, 3, 10, tt.prg, nil); got != tt.want {
				t.Errorf("ColonCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}
