package editor_test

import (
	"context"
	"testing"

	"github.com/MakeNowJust/heredoc"

	"github.com/dshills/modalcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/history"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/typeahead"
	"github.com/dshills/modalcore/internal/input/vim"
)

func run(t *testing.T, text, keys string, req editor.Request, settings editor.Settings) (*buffer.Buffer, editor.Result) {
	t.Helper()
	buf := buffer.NewBufferFromString(text)
	src := typeahead.NewBuffer(typeahead.NewScript(key.MustParse(keys)))
	e := editor.New(src, buf, nil, nil)
	e.SetSettings(settings)
	res, err := e.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return buf, res
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keys     string
		req      editor.Request
		settings editor.Settings
		want     string
		cursor   buffer.Pos
	}{
		{
			name:   "insert",
			text:   "bar",
			keys:   "foo<Esc>",
			req:    editor.Request{Cmd: 'i', Cursor: buffer.Pos{Line: 1}},
			want:   "foobar",
			cursor: buffer.Pos{Line: 1, Col: 2},
		},
		{
			name:   "count repeats text",
			text:   "x",
			keys:   "ab<Esc>",
			req:    editor.Request{Cmd: 'i', Cursor: buffer.Pos{Line: 1}, Count: 3},
			want:   "abababx",
			cursor: buffer.Pos{Line: 1, Col: 5},
		},
		{
			name:     "autoindent keeps indent",
			text:     "  abc",
			keys:     "<CR>d<Esc>",
			req:      editor.Request{Cmd: 'A', Cursor: buffer.Pos{Line: 1, Col: 5}},
			settings: editor.Settings{AutoIndent: true},
			want:     "  abc\n  d",
			cursor:   buffer.Pos{Line: 2, Col: 2},
		},
		{
			name:   "replace mode restores on backspace",
			text:   "abcd",
			keys:   "xy<BS><Esc>",
			req:    editor.Request{Cmd: 'R', Mode: editor.ModeReplace, Cursor: buffer.Pos{Line: 1}},
			want:   "xbcd",
			cursor: buffer.Pos{Line: 1, Col: 0},
		},
		{
			name:   "backspace stops at insert start",
			text:   "abc",
			keys:   "<BS><BS>z<Esc>",
			req:    editor.Request{Cmd: 'a', Cursor: buffer.Pos{Line: 1, Col: 3}},
			want:   "abcz",
			cursor: buffer.Pos{Line: 1, Col: 3},
		},
		{
			name:   "open repeats on new lines",
			text:   "a\n\n",
			keys:   "x<Esc>",
			req:    editor.Request{Cmd: 'o', Cursor: buffer.Pos{Line: 2}, Count: 2, NewLine: true},
			want:   "a\nx\nx",
			cursor: buffer.Pos{Line: 3, Col: 0},
		},
		{
			name:   "digraph",
			text:   "",
			keys:   "<C-K>a:<Esc>",
			req:    editor.Request{Cmd: 'i', Cursor: buffer.Pos{Line: 1}},
			want:   "ä",
			cursor: buffer.Pos{Line: 1, Col: 0},
		},
		{
			name:   "ctrl-w deletes word",
			text:   "",
			keys:   "foo bar<C-W><Esc>",
			req:    editor.Request{Cmd: 'i', Cursor: buffer.Pos{Line: 1}},
			want:   "foo ",
			cursor: buffer.Pos{Line: 1, Col: 3},
		},
		{
			name:     "expandtab",
			text:     "ab",
			keys:     "<Tab><Esc>",
			req:      editor.Request{Cmd: 'a', Cursor: buffer.Pos{Line: 1, Col: 2}},
			settings: editor.Settings{ExpandTab: true},
			want:     "ab      ",
			cursor:   buffer.Pos{Line: 1, Col: 7},
		},
		{
			name:     "ctrl-t indents",
			text:     "x",
			keys:     "<C-T><Esc>",
			req:      editor.Request{Cmd: 'A', Cursor: buffer.Pos{Line: 1, Col: 1}},
			settings: editor.Settings{ExpandTab: true, ShiftWidth: 4},
			want:     "    x",
			cursor:   buffer.Pos{Line: 1, Col: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, res := run(t, tt.text, tt.keys, tt.req, tt.settings)
			if got := buf.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
			if res.Cursor != tt.cursor {
				t.Errorf("Cursor = %v, want %v", res.Cursor, tt.cursor)
			}
		})
	}
}

func TestRunRecordsTypedKeys(t *testing.T) {
	_, res := run(t, "", "ab<C-V><C-A><BS>c<Esc>", editor.Request{Cmd: 'i', Cursor: buffer.Pos{Line: 1}}, editor.Settings{})
	want := key.MustParse("ab<C-V><C-A><BS>c")
	if key.Format(res.Typed) != key.Format(want) {
		t.Errorf("Typed = %q, want %q", key.Format(res.Typed), key.Format(want))
	}
	if res.Restarted || res.Interrupted {
		t.Errorf("Restarted, Interrupted = %v, %v, want false, false", res.Restarted, res.Interrupted)
	}
}

func TestRunCursorKeyRestarts(t *testing.T) {
	buf, res := run(t, "", "ab<Left>c<Esc>", editor.Request{Cmd: 'i', Cursor: buffer.Pos{Line: 1}, Count: 3}, editor.Settings{})
	if got := buf.Text(); got != "acb" {
		t.Errorf("Text() = %q, want %q", got, "acb")
	}
	if !res.Restarted {
		t.Error("Restarted = false, want true")
	}
	if got := key.Format(res.Typed); got != "c" {
		t.Errorf("Typed = %q, want %q", got, "c")
	}
}

func TestRunInterruptSkipsCount(t *testing.T) {
	buf, res := run(t, "", "ab<C-C>", editor.Request{Cmd: 'i', Cursor: buffer.Pos{Line: 1}, Count: 3}, editor.Settings{})
	if got := buf.Text(); got != "ab" {
		t.Errorf("Text() = %q, want %q", got, "ab")
	}
	if !res.Interrupted {
		t.Error("Interrupted = false, want true")
	}
}

func TestRunCtrlBackslashCtrlN(t *testing.T) {
	buf, res := run(t, "", "xy<C-\\><C-N>", editor.Request{Cmd: 'i', Cursor: buffer.Pos{Line: 1}}, editor.Settings{})
	if got := buf.Text(); got != "xy" {
		t.Errorf("Text() = %q, want %q", got, "xy")
	}
	if res.Cursor.Col != 1 {
		t.Errorf("Cursor.Col = %d, want 1", res.Cursor.Col)
	}
}

func TestRunInsertRegister(t *testing.T) {
	buf := buffer.NewBufferFromString("")
	src := typeahead.NewBuffer(typeahead.NewScript(key.MustParse("<C-R>a!<Esc>")))
	regs := vim.NewRegisterStore()
	if err := regs.Set('a', []string{"one", "two"}, vim.MotionCharwise, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	e := editor.New(src, buf, nil, nil)
	e.SetRegisters(regs)
	if _, err := e.Run(context.Background(), editor.Request{Cmd: 'i', Cursor: buffer.Pos{Line: 1}}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got, want := buf.Text(), "one\ntwo!"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestRunUndoable(t *testing.T) {
	text := heredoc.Doc(`
		first
		second
	`)
	buf := buffer.NewBufferFromString(text)
	h := history.NewHistory(buf, 10)
	src := typeahead.NewBuffer(typeahead.NewScript(key.MustParse("X<CR>Y<Esc>")))
	e := editor.New(src, buf, h, nil)
	if _, err := e.Run(context.Background(), editor.Request{Cmd: 'i', Cursor: buffer.Pos{Line: 2}}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got, want := buf.Text(), "first\nX\nYsecond"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
	h.Sync()
	if _, err := h.Undo(1); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got, want := buf.Text(), "first\nsecond"; got != want {
		t.Errorf("Text() after undo = %q, want %q", got, want)
	}
}
