package dispatcher

import (
	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/dispatcher/redo"
)

// Config holds dispatcher configuration.
type Config struct {
	// Options are the editor options in effect.
	Options config.Options

	// RedoCapacity is the size of the redo buffer in keys.
	RedoCapacity int

	// EnableMetrics enables per-command statistics.
	EnableMetrics bool

	// RecoverFromPanic turns a panicking command into a failed one.
	RecoverFromPanic bool

	// WindowHeight is the number of text lines on screen, used by the
	// scrolling commands and "H", "M" and "L".
	WindowHeight int

	// WindowWidth is the number of screen columns, used by "gm" and "g$".
	WindowWidth int

	// MaxDepth limits nesting of ":normal" and register execution.
	MaxDepth int
}

// DefaultConfig returns a configuration with Vim's default options.
func DefaultConfig() Config {
	return Config{
		Options:          config.DefaultOptions(),
		RedoCapacity:     redo.DefaultMaxLen,
		EnableMetrics:    false,
		RecoverFromPanic: true,
		WindowHeight:     24,
		WindowWidth:      80,
		MaxDepth:         100,
	}
}

// WithOptions returns a copy of the config with the options set.
func (c Config) WithOptions(opts config.Options) Config {
	c.Options = opts
	return c
}

// WithMetrics returns a copy of the config with metrics enabled.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}

// WithRedoCapacity returns a copy of the config with the redo buffer size
// set.
func (c Config) WithRedoCapacity(n int) Config {
	if n > 0 {
		c.RedoCapacity = n
	}
	return c
}

// WithWindowHeight returns a copy of the config with the window height
// set.
func (c Config) WithWindowHeight(h int) Config {
	if h > 0 {
		c.WindowHeight = h
	}
	return c
}
