package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(s), nil
}

func (m memFS) Stat(path string) (fs.FileInfo, error) {
	return nil, fs.ErrNotExist
}

func noEnv() []string { return nil }

func TestConfig_Load(t *testing.T) {
	files := memFS{"/etc/modalcore.toml": heredoc.Doc(`
		sw = 4
		selection = "exclusive"

		[log]
		level = "warn"
	`)}
	env := func() []string {
		return []string{"MODALCORE_SHIFTWIDTH=2", "MODALCORE_LOG_LEVEL=debug"}
	}
	c := New(WithPath("/etc/modalcore.toml"), WithFileSystem(files), WithEnviron(env))
	if err := c.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	o := c.Options()
	if o.ShiftWidth != 2 {
		t.Errorf("ShiftWidth = %d, want 2 from the environment", o.ShiftWidth)
	}
	if o.Selection != "exclusive" {
		t.Errorf("Selection = %q, want exclusive from the file", o.Selection)
	}
	if o.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", o.LogLevel)
	}
	if o.TabStop != 8 {
		t.Errorf("TabStop = %d, want the default 8", o.TabStop)
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	files := memFS{"/c.yml": "tw: 72\nautoindent: true\n"}
	c := New(WithPath("/c.yml"), WithFileSystem(files), WithEnviron(noEnv))
	if err := c.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if o := c.Options(); o.TextWidth != 72 || !o.AutoIndent {
		t.Errorf("Options() = %+v", o)
	}
}

func TestConfig_LoadMissingFile(t *testing.T) {
	c := New(WithPath("/none.toml"), WithFileSystem(memFS{}), WithEnviron(noEnv))
	if err := c.Load(); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
	if c.Options() != DefaultOptions() {
		t.Error("Options() differ from the defaults")
	}
}

func TestConfig_LoadBadValue(t *testing.T) {
	files := memFS{"/c.toml": "sw = \"wide\"\nts = 4\n"}
	c := New(WithPath("/c.toml"), WithFileSystem(files), WithEnviron(noEnv))
	err := c.Load()
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Load() error = %v, want ErrInvalidValue", err)
	}
	if c.Options().TabStop != 4 {
		t.Errorf("TabStop = %d, want 4", c.Options().TabStop)
	}
}

func TestConfig_Set(t *testing.T) {
	c := New(WithEnviron(noEnv))
	if err := c.Set("sw=2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if c.Options().ShiftWidth != 2 {
		t.Errorf("ShiftWidth = %d, want 2", c.Options().ShiftWidth)
	}
}

func TestConfig_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modalcore.toml")
	if err := os.WriteFile(path, []byte("sw = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(WithPath(path), WithEnviron(noEnv))
	if err := c.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := c.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer c.Close()

	if _, ok, _ := c.TakeReload(); ok {
		t.Fatal("TakeReload() reported a reload before any change")
	}
	if err := os.WriteFile(path, []byte("sw = 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		opts, ok, err := c.TakeReload()
		if ok {
			if err != nil {
				t.Fatalf("reload error = %v", err)
			}
			if opts.ShiftWidth != 6 {
				t.Errorf("reloaded ShiftWidth = %d, want 6", opts.ShiftWidth)
			}
			if c.Options().ShiftWidth != 6 {
				t.Errorf("Options().ShiftWidth = %d after TakeReload, want 6", c.Options().ShiftWidth)
			}
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("config was not reloaded")
}
