package app

import (
	"context"
	"errors"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/dispatcher/execctx"
)

// Run executes commands until ":q", the end of the keys or cancellation.
// It returns nil after ":q" and the key source's error otherwise.
func (e *Editor) Run(ctx context.Context) error {
	if e.closed {
		return ErrClosed
	}
	for {
		err := e.Step(ctx)
		if errors.Is(err, execctx.ErrQuit) {
			e.log.Debug("quit")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Step applies reloaded options and executes one command.
func (e *Editor) Step(ctx context.Context) error {
	e.applyReload()
	return e.dispatch.DispatchOne(ctx)
}

// Reload reads the config file again and applies it before the next
// command.
func (e *Editor) Reload() error {
	if err := e.config.Load(); err != nil {
		return err
	}
	e.apply(e.config.Options())
	return nil
}

// applyReload installs options the watcher reloaded. Options changed
// with ":set" since then are replaced.
func (e *Editor) applyReload() {
	opts, ok, err := e.config.TakeReload()
	if !ok {
		return
	}
	if err != nil {
		e.log.WithComponent("config").Warn("reloading options: %v", err)
	}
	e.apply(opts)
}

func (e *Editor) apply(opts config.Options) {
	log := e.log.WithComponent("config")
	if err := e.dispatch.SetOptions(opts); err != nil {
		log.Warn("applying options: %v", err)
		return
	}
	e.log.SetLevel(ParseLogLevel(opts.LogLevel))
	e.applyClipboard(opts)
	log.Debug("options applied")
}
