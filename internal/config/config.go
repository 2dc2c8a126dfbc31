package config

import (
	"fmt"
	"sync"

	"github.com/dshills/modalcore/internal/config/loader"
	"github.com/dshills/modalcore/internal/config/watcher"
)

// EnvPrefix is the prefix of environment variables that set options.
const EnvPrefix = "MODALCORE_"

// Config loads Options from a file and the environment and keeps them
// current.
type Config struct {
	mu sync.Mutex

	path    string
	fs      loader.FileSystem
	environ func() []string

	opts      Options
	reloaded  *Options
	reloadErr error
	watcher   *watcher.Watcher
}

// Option configures a Config instance.
type Option func(*Config)

// WithPath sets the config file. Without one only the defaults and the
// environment are used.
func WithPath(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFileSystem replaces the file system config files are read from.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnviron replaces the process environment, in os.Environ form.
func WithEnviron(environ func() []string) Option {
	return func(c *Config) {
		c.environ = environ
	}
}

// New creates a Config holding the default options.
func New(opts ...Option) *Config {
	c := &Config{
		fs:   loader.DefaultFS(),
		opts: DefaultOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load builds the options from the defaults, the file and the
// environment. A missing file is not an error.
func (c *Config) Load() error {
	opts, err := c.build()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts = opts
	return err
}

// build layers the sources over DefaultOptions. Entries that fail to
// apply are reported but the rest still take effect.
func (c *Config) build() (Options, error) {
	opts := DefaultOptions()
	values := map[string]any{}
	if c.path != "" {
		l, err := loader.ForPath(c.fs, c.path)
		if err != nil {
			return opts, err
		}
		file, err := l.Load()
		if err != nil {
			return opts, err
		}
		values = loader.DeepMerge(values, file)
	}
	env := loader.NewEnvLoader(EnvPrefix)
	if c.environ != nil {
		env.WithEnviron(c.environ)
	}
	envValues, err := env.Load()
	if err != nil {
		return opts, err
	}
	values = loader.DeepMerge(values, envValues)
	if err := opts.Apply(values); err != nil {
		return opts, fmt.Errorf("config %s: %w", c.path, err)
	}
	return opts, nil
}

// Options returns a copy of the current options.
func (c *Config) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// Set applies one ":set" argument to the current options.
func (c *Config) Set(arg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.Set(arg)
}

// Update replaces the current options.
func (c *Config) Update(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts = opts
}

// Watch reloads the config file whenever it changes. The result is held
// until TakeReload.
func (c *Config) Watch() error {
	if c.path == "" {
		return nil
	}
	w, err := watcher.New(c.onFileChange)
	if err != nil {
		return err
	}
	if err := w.Watch(c.path); err != nil {
		_ = w.Close()
		return err
	}
	c.mu.Lock()
	c.watcher = w
	c.mu.Unlock()
	return nil
}

func (c *Config) onFileChange(watcher.Event) {
	opts, err := c.build()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloaded = &opts
	c.reloadErr = err
}

// TakeReload installs options reloaded since the last call. It reports
// whether there were any, along with any error from the reload.
func (c *Config) TakeReload() (Options, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reloaded == nil {
		return c.opts, false, nil
	}
	c.opts = *c.reloaded
	err := c.reloadErr
	c.reloaded, c.reloadErr = nil, nil
	return c.opts, true, err
}

// Close stops watching the config file.
func (c *Config) Close() error {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}
