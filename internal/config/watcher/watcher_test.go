package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want Operation
	}{
		{fsnotify.Write, OpWrite},
		{fsnotify.Create, OpCreate},
		{fsnotify.Create | fsnotify.Write, OpCreate},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
		{fsnotify.Chmod, 0},
	}
	for _, tt := range tests {
		if got := convertOp(tt.op); got != tt.want {
			t.Errorf("convertOp(%v) = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestWatcher_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modalcore.toml")
	if err := os.WriteFile(path, []byte("shiftwidth = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "other.toml")

	events := make(chan Event, 10)
	w, err := New(func(e Event) { events <- e }, WithDebounce(100*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if err := os.WriteFile(path, []byte("shiftwidth = 4\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case e := <-events:
		want, _ := filepath.Abs(path)
		if e.Path != want {
			t.Errorf("event path = %q, want %q", e.Path, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event for the watched file")
	}

	select {
	case e := <-events:
		t.Errorf("unexpected second event %+v", e)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_Close(t *testing.T) {
	w, err := New(nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := w.Watch(filepath.Join(t.TempDir(), "x.toml")); err != ErrClosed {
		t.Errorf("Watch() after Close = %v, want ErrClosed", err)
	}
}
