package cmdline_test

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cmdline"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/history"
	"github.com/dshills/modalcore/internal/engine/mark"
	"github.com/dshills/modalcore/internal/engine/search"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// fakeEditor records what the executor asks of Normal mode.
type fakeEditor struct {
	cur    buffer.Pos
	opts   config.Options
	normal []string
	lines  []int
}

func (f *fakeEditor) Cursor() buffer.Pos      { return f.cur }
func (f *fakeEditor) SetCursor(p buffer.Pos)  { f.cur = p }
func (f *fakeEditor) Options() config.Options { return f.opts }
func (f *fakeEditor) SetOptions(o config.Options) error {
	f.opts = o
	return nil
}

func (f *fakeEditor) ExecuteNormal(_ context.Context, codes []key.Code) error {
	f.normal = append(f.normal, key.Format(codes))
	f.lines = append(f.lines, f.cur.Line)
	return nil
}

// funcShell answers shell commands with a function.
type funcShell func(cmd, input string) (string, error)

func (f funcShell) Run(_ context.Context, cmd, input string) (string, error) {
	return f(cmd, input)
}

type messages []string

func (m *messages) Message(msg string) { *m = append(*m, msg) }

type exHarness struct {
	ex      *cmdline.Executor
	buf     *buffer.Buffer
	ed      *fakeEditor
	regs    *vim.RegisterStore
	marks   *mark.Table
	search  *search.Engine
	msgs    *messages
	shell   []string
	written map[string][]string
}

func newExHarness(text string, line int) *exHarness {
	h := &exHarness{
		buf:     buffer.NewBufferFromString(text),
		ed:      &fakeEditor{cur: buffer.Pos{Line: line}, opts: config.DefaultOptions()},
		regs:    vim.NewRegisterStore(),
		marks:   mark.NewTable(),
		msgs:    &messages{},
		written: map[string][]string{},
	}
	h.search = search.New(h.buf)
	h.ex = cmdline.NewExecutor(cmdline.Deps{
		Lines:     h.buf,
		Journal:   history.NewHistory(h.buf, 0),
		Marks:     h.marks,
		Registers: h.regs,
		Patterns:  h.search,
		UI:        h.msgs,
		Shell: funcShell(func(cmd, input string) (string, error) {
			h.shell = append(h.shell, cmd)
			switch cmd {
			case "tac":
				lines := strings.Split(strings.TrimSuffix(input, "\n"), "\n")
				slices.Reverse(lines)
				return strings.Join(lines, "\n") + "\n", nil
			case "true":
				return "", nil
			case "echo hi":
				return "hi\n", nil
			}
			return "", cmdline.ErrShell
		}),
		Write: func(path string, lines []string) error {
			h.written[path] = lines
			return nil
		},
	})
	h.ex.Attach(h.ed)
	return h
}

func (h *exHarness) text() string {
	return strings.Join(h.buf.Lines(1, h.buf.LineCount()), "\n")
}

func TestExecute(t *testing.T) {
	abc := "a\nb\nc"
	tests := []struct {
		name string
		text string
		line int
		cmds []string
		want string
		cur  buffer.Pos
	}{
		{"delete line", abc, 2, []string{"d"}, "a\nc", buffer.Pos{Line: 2}},
		{"delete range", abc, 1, []string{"2,3d"}, "a", buffer.Pos{Line: 1}},
		{"delete all", abc, 1, []string{"%d"}, "", buffer.Pos{Line: 1}},
		{"delete count", abc, 1, []string{"d 2"}, "c", buffer.Pos{Line: 1}},
		{"delete relative", "1\n2\n3\n4", 1, []string{".,+1d"}, "3\n4", buffer.Pos{Line: 1}},
		{"semicolon", "1\n2\n3\n4", 1, []string{"2;+1d"}, "1\n4", buffer.Pos{Line: 2}},
		{"backwards range", abc, 1, []string{"3,2d"}, "a", buffer.Pos{Line: 1}},
		{"goto line", "a\n  b", 1, []string{"2"}, "a\n  b", buffer.Pos{Line: 2, Col: 2}},
		{"goto last line", abc, 1, []string{"$"}, abc, buffer.Pos{Line: 3}},
		{"goto clamps", abc, 1, []string{"0"}, abc, buffer.Pos{Line: 1}},
		{"substitute", "abb", 1, []string{"s/b/x/"}, "axb", buffer.Pos{Line: 1}},
		{"substitute all", "abb", 1, []string{"s/b/x/g"}, "axx", buffer.Pos{Line: 1}},
		{"substitute range", "foo\nbar\nboo", 1, []string{"%s/o/0/g"}, "f00\nbar\nb00", buffer.Pos{Line: 3}},
		{"other delimiter", "a/b", 1, []string{"s#/#-#"}, "a-b", buffer.Pos{Line: 1}},
		{"escaped delimiter", "a/b", 1, []string{`s/\//-/`}, "a-b", buffer.Pos{Line: 1}},
		{"groups", "ab", 1, []string{`s/\(a\)\(b\)/\2\1/`}, "ba", buffer.Pos{Line: 1}},
		{"ampersand", "abc", 1, []string{"s/b/&&/"}, "abbc", buffer.Pos{Line: 1}},
		{"escaped ampersand", "abc", 1, []string{`s/b/\&/`}, "a&c", buffer.Pos{Line: 1}},
		{"line break", "abc", 1, []string{`s/b/\r/`}, "a\nc", buffer.Pos{Line: 2}},
		{"case", "foo bar", 1, []string{`s/\w\+/\u&/g`}, "Foo Bar", buffer.Pos{Line: 1}},
		{"upper case", "foo bar", 1, []string{`s/foo/\U&\E!/`}, "FOO! bar", buffer.Pos{Line: 1}},
		{"empty matches", "abc", 1, []string{"s/x*/-/g"}, "-a-b-c-", buffer.Pos{Line: 1}},
		{"empty after match", "xxa", 1, []string{"s/x*/-/g"}, "-a-", buffer.Pos{Line: 1}},
		{"missing replacement", "abc", 1, []string{"s/b"}, "ac", buffer.Pos{Line: 1}},
		{"ignore case flag", "ABC", 1, []string{"s/b/x/i"}, "AxC", buffer.Pos{Line: 1}},
		{"count flag", "abc\nabc", 1, []string{"s/b/x/n"}, "abc\nabc", buffer.Pos{Line: 1}},
		{"substitute count", "a\na\na", 1, []string{"s/a/b/ 2"}, "b\nb\na", buffer.Pos{Line: 2}},
		{"repeat", "aa\naa", 1, []string{"s/a/b/g", "2&"}, "bb\nba", buffer.Pos{Line: 2}},
		{"repeat with flags", "aa\naa", 1, []string{"s/a/b/g", "2&&"}, "bb\nbb", buffer.Pos{Line: 2}},
		{"repeat as s", "aa\naa", 1, []string{"s/a/b/", "2s"}, "ba\nba", buffer.Pos{Line: 2}},
		{"keep flags", "aa\naa", 1, []string{"s/a/b/g", "2s/a/c/&"}, "bb\ncc", buffer.Pos{Line: 2}},
		{"previous replacement", "ab\nab", 1, []string{"s/a/x/", "2s/b/~y/"}, "xb\naxy", buffer.Pos{Line: 2}},
		{"last search pattern", "abc", 1, []string{"s/b/x/", "s//y/e", "s/c/z/"}, "axz", buffer.Pos{Line: 1}},
		{"filter", "1\n2\n3\n4", 2, []string{"2,3!tac"}, "1\n3\n2\n4", buffer.Pos{Line: 2}},
		{"filter deletes", "1\n2\n3", 1, []string{"1,2!true"}, "3", buffer.Pos{Line: 1}},
		{"repeat filter", "1\n2\n3", 1, []string{"1,2!tac", "2,3!!"}, "2\n3\n1", buffer.Pos{Line: 2}},
		{"comment", abc, 1, []string{`"d`}, abc, buffer.Pos{Line: 1}},
		{"nohlsearch", abc, 1, []string{"noh"}, abc, buffer.Pos{Line: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newExHarness(tt.text, tt.line)
			for _, cmd := range tt.cmds {
				if err := h.ex.Execute(context.Background(), cmd); err != nil {
					t.Fatalf("Execute(%q) error = %v", cmd, err)
				}
			}
			if got := h.text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if h.ed.cur != tt.cur {
				t.Errorf("cursor = %v, want %v", h.ed.cur, tt.cur)
			}
		})
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		cmd  string
		want error
	}{
		{"frobnicate", cmdline.ErrNotEditorCommand},
		{"5d", cmdline.ErrInvalidRange},
		{"'zd", cmdline.ErrInvalidRange},
		{"2set ts=4", cmdline.ErrNoRange},
		{"&", cmdline.ErrNoPreviousSubstitute},
		{"s", cmdline.ErrNoPreviousSubstitute},
		{"s/zzz/y/", search.ErrNotFound},
		{"s//y/", search.ErrNoPrevious},
		{"s/a/b/x", cmdline.ErrTrailing},
		{`s/\(/x/`, search.ErrInvalidPattern},
		{"q", execctx.ErrQuit},
		{"q!", execctx.ErrQuit},
		{"quit extra", cmdline.ErrTrailing},
		{"x", execctx.ErrQuit},
		{"wq", execctx.ErrQuit},
		{"help", cmdline.ErrNoHelp},
		{"h dw", cmdline.ErrNoHelp},
		{"!", cmdline.ErrShell},
		{"!!", cmdline.ErrShell},
		{"!false", cmdline.ErrShell},
		{"d %", vim.ErrInvalidRegister},
		{"set nosuchoption", config.ErrUnknownOption},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			h := newExHarness("a\nb\nc", 1)
			before := h.text()
			err := h.ex.Execute(context.Background(), tt.cmd)
			if !errors.Is(err, tt.want) {
				t.Errorf("Execute(%q) error = %v, want %v", tt.cmd, err, tt.want)
			}
			if h.text() != before {
				t.Errorf("Execute(%q) changed the text to %q", tt.cmd, h.text())
			}
		})
	}
}

func TestExecuteSubstituteSearchState(t *testing.T) {
	h := newExHarness("one two", 1)
	if err := h.ex.Execute(context.Background(), "s/two/2/"); err != nil {
		t.Fatal(err)
	}
	if got := h.search.LastPattern(); got != "two" {
		t.Errorf("LastPattern() = %q, want %q", got, "two")
	}
	reg, err := h.regs.Get('/')
	if err != nil || reg.Text() != "two" {
		t.Errorf(`register "/" = %q, %v, want "two"`, reg.Text(), err)
	}
	start, _ := h.marks.Get('[')
	end, _ := h.marks.Get(']')
	if start.Line != 1 || end.Line != 1 {
		t.Errorf("change marks = %v %v, want line 1", start, end)
	}
}

func TestExecuteRegisters(t *testing.T) {
	h := newExHarness("a\nb\nc", 1)
	ctx := context.Background()
	if err := h.ex.Execute(ctx, "2,3y x"); err != nil {
		t.Fatal(err)
	}
	reg, _ := h.regs.Get('x')
	if !slices.Equal(reg.Lines, []string{"b", "c"}) || reg.Type != vim.MotionLinewise {
		t.Errorf(`register "x" = %+v, want linewise b, c`, reg)
	}

	if err := h.ex.Execute(ctx, "1d"); err != nil {
		t.Fatal(err)
	}
	for _, name := range []rune{'"', '1'} {
		reg, _ := h.regs.Get(name)
		if !slices.Equal(reg.Lines, []string{"a"}) {
			t.Errorf("register %q = %q, want [a]", name, reg.Lines)
		}
	}

	if err := h.ex.Execute(ctx, "reg x1"); err != nil {
		t.Fatal(err)
	}
	want := heredoc.Doc(`
		Type Name Content
		  l  "x   b^Jc^J
		  l  "1   a^J`)
	if got := (*h.msgs)[len(*h.msgs)-1]; got != want {
		t.Errorf(":reg shows\n%s\nwant\n%s", got, want)
	}
}

func TestExecuteUndoList(t *testing.T) {
	h := newExHarness("one\ntwo\nthree", 1)
	ctx := context.Background()
	if err := h.ex.Execute(ctx, "undol"); err != nil {
		t.Fatal(err)
	}
	if got := (*h.msgs)[len(*h.msgs)-1]; got != "Nothing to undo" {
		t.Errorf(":undol on a new buffer shows %q", got)
	}

	if err := h.ex.Execute(ctx, "2,3s/o/0/"); err != nil {
		t.Fatal(err)
	}
	if err := h.ex.Execute(ctx, "undolist"); err != nil {
		t.Fatal(err)
	}
	rows := strings.Split((*h.msgs)[len(*h.msgs)-1], "\n")
	if len(rows) != 2 || rows[0] != "number lines time     id" {
		t.Fatalf(":undolist shows %q", rows)
	}
	fields := strings.Fields(rows[1])
	if len(fields) != 4 || fields[0] != "1" || fields[1] != "2" || len(fields[3]) != 8 {
		t.Errorf(":undolist row = %q, want seq 1 over 2 lines", rows[1])
	}

	if err := h.ex.Execute(ctx, "undo"); !errors.Is(err, cmdline.ErrNotEditorCommand) {
		t.Errorf(":undo error = %v, want ErrNotEditorCommand", err)
	}
}

func TestExecuteNormal(t *testing.T) {
	h := newExHarness("a\nb\nc", 1)
	ctx := context.Background()
	if err := h.ex.Execute(ctx, "normal  Ax"); err != nil {
		t.Fatal(err)
	}
	if err := h.ex.Execute(ctx, "2,3norm! dd"); err != nil {
		t.Fatal(err)
	}
	if want := []string{"Ax", "dd", "dd"}; !slices.Equal(h.ed.normal, want) {
		t.Errorf("ExecuteNormal() got %q, want %q", h.ed.normal, want)
	}
	if want := []int{1, 2, 3}; !slices.Equal(h.ed.lines, want) {
		t.Errorf("ExecuteNormal() ran on lines %v, want %v", h.ed.lines, want)
	}
}

func TestExecuteSet(t *testing.T) {
	h := newExHarness("a", 1)
	ctx := context.Background()
	if err := h.ex.Execute(ctx, "set sw=4 et"); err != nil {
		t.Fatal(err)
	}
	if h.ed.opts.ShiftWidth != 4 || !h.ed.opts.ExpandTab {
		t.Errorf("options = sw %d et %v, want sw 4 et true", h.ed.opts.ShiftWidth, h.ed.opts.ExpandTab)
	}
	if err := h.ex.Execute(ctx, "se sw? ts et?"); err != nil {
		t.Fatal(err)
	}
	want := "  shiftwidth=4\n  tabstop=8\n  expandtab"
	if got := (*h.msgs)[len(*h.msgs)-1]; got != want {
		t.Errorf(":set shows %q, want %q", got, want)
	}
}

func TestExecuteWrite(t *testing.T) {
	h := newExHarness("a\nb\nc", 1)
	ctx := context.Background()
	if err := h.ex.Execute(ctx, "w"); err != nil {
		t.Fatal(err)
	}
	if err := h.ex.Execute(ctx, "2,3w part.txt"); err != nil {
		t.Fatal(err)
	}
	if got := h.written[""]; !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf(":w wrote %q", got)
	}
	if got := h.written["part.txt"]; !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf(":2,3w wrote %q", got)
	}
	if err := h.ex.Execute(ctx, "wq"); !errors.Is(err, execctx.ErrQuit) {
		t.Errorf(":wq error = %v, want ErrQuit", err)
	}
}

func TestExecuteWithoutWriter(t *testing.T) {
	buf := buffer.NewBufferFromString("a")
	ex := cmdline.NewExecutor(cmdline.Deps{Lines: buf, Patterns: search.New(buf)})
	ctx := context.Background()
	if err := ex.Execute(ctx, "w"); !errors.Is(err, cmdline.ErrNoWriter) {
		t.Errorf(":w error = %v, want ErrNoWriter", err)
	}
	if err := ex.Execute(ctx, "x"); !errors.Is(err, execctx.ErrQuit) {
		t.Errorf(":x error = %v, want ErrQuit", err)
	}
	if err := ex.Execute(ctx, "normal x"); !errors.Is(err, cmdline.ErrNoEditor) {
		t.Errorf(":normal error = %v, want ErrNoEditor", err)
	}
}

func TestExecuteShellOutput(t *testing.T) {
	h := newExHarness("a", 1)
	if err := h.ex.Execute(context.Background(), "!echo hi"); err != nil {
		t.Fatal(err)
	}
	if got := (*h.msgs)[len(*h.msgs)-1]; got != "hi" {
		t.Errorf("message = %q, want %q", got, "hi")
	}
}

func TestExecShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	sh := cmdline.ExecShell{Path: "/bin/sh"}
	out, err := sh.Run(context.Background(), "tr a-z A-Z", "abc\n")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "ABC\n" {
		t.Errorf("Run() = %q, want %q", out, "ABC\n")
	}
	if _, err := sh.Run(context.Background(), "echo oops >&2; exit 3", ""); !errors.Is(err, cmdline.ErrShell) {
		t.Errorf("Run() error = %v, want ErrShell", err)
	}
}
