package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Runner runs a Lua script file.
type Runner interface {
	LoadFile(ctx context.Context, path string) error
}

// Script is a discovered script.
type Script struct {
	Name string
	Path string

	// Err is set when loading the script failed.
	Err error
}

// Loader discovers scripts on the filesystem.
type Loader struct {
	// Search paths, checked in order.
	paths []string

	discovered map[string]*Script
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPaths sets the search paths.
func WithPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.paths = paths
	}
}

// NewLoader creates a loader searching DefaultPaths unless told otherwise.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		paths:      DefaultPaths(),
		discovered: make(map[string]*Script),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DefaultPaths returns the default search paths.
func DefaultPaths() []string {
	paths := make([]string, 0, 2)
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "modalcore", "lua"))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".modalcore", "lua"))
	}
	return paths
}

// Paths returns the search paths.
func (l *Loader) Paths() []string {
	return l.paths
}

// AddPath appends a search path.
func (l *Loader) AddPath(path string) {
	l.paths = append(l.paths, path)
}

// Discover finds the scripts in the search paths, sorted by name.
// Missing paths are skipped.
func (l *Loader) Discover() ([]*Script, error) {
	l.discovered = make(map[string]*Script)
	for _, base := range l.paths {
		if err := l.discoverIn(base); err != nil {
			return nil, err
		}
	}

	scripts := make([]*Script, 0, len(l.discovered))
	for _, s := range l.discovered {
		scripts = append(scripts, s)
	}
	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].Name < scripts[j].Name
	})
	return scripts, nil
}

func (l *Loader) discoverIn(base string) error {
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", base, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(base, name)
		if entry.IsDir() {
			script := filepath.Join(path, "init.lua")
			if _, err := os.Stat(script); err != nil {
				continue
			}
			l.add(name, script)
			continue
		}
		if filepath.Ext(name) == ".lua" {
			l.add(strings.TrimSuffix(name, ".lua"), path)
		}
	}
	return nil
}

// add records a script unless an earlier path had one of the same name.
func (l *Loader) add(name, path string) {
	if _, ok := l.discovered[name]; ok {
		return
	}
	l.discovered[name] = &Script{Name: name, Path: path}
}

// Find returns the script called name from the last Discover.
func (l *Loader) Find(name string) (*Script, error) {
	s, ok := l.discovered[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}

// LoadAll discovers the scripts and runs each one. A failing script does
// not stop the others; the failures are returned.
func (l *Loader) LoadAll(ctx context.Context, r Runner) ([]*Script, []error) {
	scripts, err := l.Discover()
	if err != nil {
		return nil, []error{err}
	}
	var errs []error
	for _, s := range scripts {
		if err := ctx.Err(); err != nil {
			return scripts, append(errs, err)
		}
		if err := r.LoadFile(ctx, s.Path); err != nil {
			s.Err = fmt.Errorf("loading %s: %w", s.Name, err)
			errs = append(errs, s.Err)
		}
	}
	return scripts, errs
}
