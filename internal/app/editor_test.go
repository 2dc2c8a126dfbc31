package app_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc"

	"github.com/dshills/modalcore/internal/app"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/typeahead"
)

type recordUI struct {
	beeps    int
	messages []string
}

func (u *recordUI) Beep()              { u.beeps++ }
func (u *recordUI) Message(msg string) { u.messages = append(u.messages, msg) }

// newEditor creates an editor isolated from the user's environment.
func newEditor(t *testing.T, opts app.Options, keys string) *app.Editor {
	t.Helper()
	opts.Keys = typeahead.NewScript(key.MustParse(keys))
	if opts.Logger == nil {
		opts.Logger = app.NullLogger
	}
	if opts.Environ == nil {
		opts.Environ = func() []string { return nil }
	}
	if opts.ScriptPaths == nil {
		opts.ScriptPaths = []string{}
	}
	ed, err := app.New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(ed.Close)
	return ed
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func text(ed *app.Editor) string {
	return strings.Join(ed.Lines(), "\n")
}

func TestEditorRun(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keys    string
		want    string
		wantErr error
	}{
		{"quit", "a\nb", "ddp:q<CR>", "b\na", nil},
		{"end of keys", "abc", "x", "bc", io.EOF},
		{"keys after quit", "abc", ":q<CR>x", "abc", nil},
		{"undo", "abc", "xxu", "bc", io.EOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := newEditor(t, app.Options{Text: tt.text}, tt.keys)
			err := ed.Run(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if got := text(ed); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEditorRunCanceled(t *testing.T) {
	ch := make(chan key.Event)
	ed, err := app.New(app.Options{
		Keys:        typeahead.NewChanSource(ch),
		Logger:      app.NullLogger,
		ScriptPaths: []string{},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer ed.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ed.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestEditorWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	writeFile(t, path, "one\ntwo\n")

	ed := newEditor(t, app.Options{File: path}, "dd:w<CR>")
	if ed.Document().Modified() {
		t.Error("Modified() before editing = true")
	}
	if err := ed.Run(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two\n" {
		t.Errorf("file = %q, want %q", data, "two\n")
	}
	if ed.Document().Modified() {
		t.Error("Modified() after :w = true")
	}
}

func TestEditorWriteNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")

	ed := newEditor(t, app.Options{File: path}, "ihello<Esc>:wq<CR>")
	if err := ed.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello\n" {
		t.Errorf("file = %q, want %q", data, "hello\n")
	}
}

func TestEditorWriteUnnamed(t *testing.T) {
	ui := &recordUI{}
	ed := newEditor(t, app.Options{Text: "a", UI: ui}, ":w<CR>")
	_ = ed.Run(context.Background())
	if len(ui.messages) == 0 || !strings.Contains(ui.messages[len(ui.messages)-1], app.ErrNoFile.Error()) {
		t.Errorf("messages = %q, want %q", ui.messages, app.ErrNoFile)
	}
}

func TestEditorConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "modalcore.toml")
	writeFile(t, cfg, "shiftwidth = 2\n")

	ed := newEditor(t, app.Options{Text: "a", ConfigPath: cfg}, ">>")
	_ = ed.Run(context.Background())
	if got := text(ed); got != "  a" {
		t.Errorf("text = %q, want %q", got, "  a")
	}
}

func TestEditorConfigYAML(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "modalcore.yaml")
	writeFile(t, cfg, "sw: 3\nexpandtab: true\n")

	ed := newEditor(t, app.Options{Text: "a", ConfigPath: cfg}, ">>")
	_ = ed.Run(context.Background())
	if got := text(ed); got != "   a" {
		t.Errorf("text = %q, want %q", got, "   a")
	}
}

func TestEditorEnviron(t *testing.T) {
	ed := newEditor(t, app.Options{
		Text:    "a",
		Environ: func() []string { return []string{"MODALCORE_SHIFTWIDTH=1", "OTHER=2"} },
	}, ">>")
	_ = ed.Run(context.Background())
	if got := text(ed); got != " a" {
		t.Errorf("text = %q, want %q", got, " a")
	}
}

func TestEditorReload(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "modalcore.toml")
	writeFile(t, cfg, "shiftwidth = 2\n")

	ed := newEditor(t, app.Options{Text: "a", ConfigPath: cfg}, ">>")
	writeFile(t, cfg, "shiftwidth = 4\n")
	if err := ed.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	_ = ed.Run(context.Background())
	if got := text(ed); got != "    a" {
		t.Errorf("text = %q, want %q", got, "    a")
	}
	if sw := ed.Dispatcher().Options().ShiftWidth; sw != 4 {
		t.Errorf("shiftwidth = %d, want 4", sw)
	}
}

var upperScript = heredoc.Doc(`
	function upper(motion)
	    local first = ed.mark("[")
	    local last = ed.mark("]")
	    for n = first, last do
	        ed.set_line(n, string.upper(ed.line(n)))
	    end
	end
`)

func TestEditorLuaScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ops.lua")
	writeFile(t, script, upperScript)
	cfg := filepath.Join(dir, "modalcore.toml")
	writeFile(t, cfg, fmt.Sprintf("operatorfunc = \"upper\"\n\n[lua]\nscript = %q\n", script))

	ed := newEditor(t, app.Options{Text: "ab\ncd\nef", ConfigPath: cfg}, "g@j")
	_ = ed.Run(context.Background())
	if got := text(ed); got != "AB\nCD\nef" {
		t.Errorf("text = %q, want %q", got, "AB\nCD\nef")
	}
}

func TestEditorScriptPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "upper.lua"), upperScript)
	writeFile(t, filepath.Join(dir, "broken.lua"), "this is not lua")

	ed := newEditor(t, app.Options{Text: "ab", ScriptPaths: []string{dir}}, ":set opfunc=upper<CR>g@l")
	_ = ed.Run(context.Background())
	if got := text(ed); got != "AB" {
		t.Errorf("text = %q, want %q", got, "AB")
	}
}

func TestEditorInitErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "modalcore.toml")
	writeFile(t, cfg, fmt.Sprintf("[lua]\nscript = %q\n", filepath.Join(dir, "missing.lua")))

	_, err := app.New(app.Options{
		ConfigPath:  cfg,
		Logger:      app.NullLogger,
		Environ:     func() []string { return nil },
		ScriptPaths: []string{},
	})
	if !errors.Is(err, app.ErrInitialization) {
		t.Errorf("New() error = %v, want ErrInitialization", err)
	}
	var ie *app.InitError
	if !errors.As(err, &ie) || ie.Component != "lua" {
		t.Errorf("New() error = %v, want an InitError for lua", err)
	}
}
