package cmdline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cmdline"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/typeahead"
	"github.com/dshills/modalcore/internal/input/vim"
)

func keysOf(notation string) *typeahead.Buffer {
	return typeahead.NewBuffer(typeahead.NewScript(key.MustParse(notation)))
}

func TestReaderEditing(t *testing.T) {
	regs := vim.NewRegisterStore()
	if err := regs.Set('a', []string{"xy"}, vim.MotionCharwise, 0); err != nil {
		t.Fatal(err)
	}
	if err := regs.Set('l', []string{"line"}, vim.MotionLinewise, 0); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		keys string
		want string
	}{
		{"plain", "abc<CR>", "abc"},
		{"newline submits", "abc<NL>", "abc"},
		{"backspace", "ab<BS>c<CR>", "ac"},
		{"ctrl-h", "ab<C-H>c<CR>", "ac"},
		{"ctrl-w", "foo bar<C-W>x<CR>", "foo x"},
		{"ctrl-w punctuation", "a.b..<C-W><CR>", "a.b"},
		{"ctrl-u", "abc<Left>d<C-U><CR>", "c"},
		{"left insert", "ab<Left>X<CR>", "aXb"},
		{"home end", "bc<Home>a<End>d<CR>", "abcd"},
		{"ctrl-b ctrl-e", "bc<C-B>a<C-E>d<CR>", "abcd"},
		{"right stops at end", "a<Right><Right>b<CR>", "ab"},
		{"delete under cursor", "abc<Home><Del><CR>", "bc"},
		{"register", "<C-R>a!<CR>", "xy!"},
		{"linewise register", "<C-R>l<CR>", "line\r"},
		{"literal", "a<C-V><Esc>b<CR>", "a\x1bb"},
		{"digraph", "<C-K>a:<CR>", "ä"},
		{"unknown digraph", "<C-K>qq<CR>", "q"},
		{"special keys skipped", "a<PageUp>b<CR>", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := cmdline.NewReader(regs)
			got, err := r.Read(context.Background(), keysOf(tt.keys), ':')
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReaderAbort(t *testing.T) {
	for _, keys := range []string{"abc<Esc>", "abc<C-C>", "<BS>", "a<BS><BS>"} {
		t.Run(keys, func(t *testing.T) {
			r := cmdline.NewReader(nil)
			_, err := r.Read(context.Background(), keysOf(keys), ':')
			if !errors.Is(err, execctx.ErrCmdlineAborted) {
				t.Errorf("Read() error = %v, want ErrCmdlineAborted", err)
			}
			if n := r.History(':').Len(); n != 0 {
				t.Errorf("aborted line went into history (%d entries)", n)
			}
		})
	}
}

func TestReaderStuffedEscExecutes(t *testing.T) {
	keys := typeahead.NewBuffer(nil)
	keys.StuffCodes(key.FromText("s/a/b/")...)
	keys.StuffCodes(key.Esc)

	got, err := cmdline.NewReader(nil).Read(context.Background(), keys, ':')
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != "s/a/b/" {
		t.Errorf("Read() = %q, want %q", got, "s/a/b/")
	}
}

func TestReaderHistory(t *testing.T) {
	r := cmdline.NewReader(nil)
	ctx := context.Background()
	for _, line := range []string{"set ts=4<CR>", "s/x/y/<CR>", "set sw=2<CR>"} {
		if _, err := r.Read(ctx, keysOf(line), ':'); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		keys string
		want string
	}{
		{"<Up><CR>", "set sw=2"},
		{"<Up><Up><CR>", "s/x/y/"},
		{"se<Up><Up><CR>", "set ts=4"},
		{"<C-P><C-P><C-N><CR>", "set sw=2"},
		{"ab<Up><Down><CR>", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			// A fresh reader per case would lose the history; reading
			// again only reorders it, so the cases start from a copy.
			rc := cmdline.NewReader(nil)
			for _, e := range r.History(':').Entries() {
				rc.History(':').Add(e)
			}
			got, err := rc.Read(ctx, keysOf(tt.keys), ':')
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}

	if n := r.History('/').Len(); n != 0 {
		t.Errorf("search history has %d entries, want 0", n)
	}
	if r.History('/') != r.History('?') {
		t.Error("search directions do not share a history")
	}
}

func TestReaderOnChange(t *testing.T) {
	r := cmdline.NewReader(nil)
	var last cmdline.Line
	calls := 0
	r.OnChange(func(l cmdline.Line) {
		calls++
		last = l
	})
	if _, err := r.Read(context.Background(), keysOf("ab<Left><CR>"), '/'); err != nil {
		t.Fatal(err)
	}
	if calls != 4 {
		t.Errorf("OnChange called %d times, want 4", calls)
	}
	want := cmdline.Line{FirstC: '/', Text: "ab", Cursor: 1}
	if last != want {
		t.Errorf("last line = %+v, want %+v", last, want)
	}
}
