package app

import (
	"context"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/dispatcher"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cmdline"
	"github.com/dshills/modalcore/internal/engine/fold"
	"github.com/dshills/modalcore/internal/engine/history"
	"github.com/dshills/modalcore/internal/engine/mark"
	"github.com/dshills/modalcore/internal/engine/search"
	"github.com/dshills/modalcore/internal/input/typeahead"
	"github.com/dshills/modalcore/internal/input/vim"
	"github.com/dshills/modalcore/internal/plugin"
	"github.com/dshills/modalcore/internal/plugin/lua"
)

// UI is what the editor shows to the user.
type UI interface {
	Beep()
	Message(msg string)
}

// Options configures an Editor.
type Options struct {
	// ConfigPath is a TOML or YAML file. Empty uses the defaults and the
	// environment only.
	ConfigPath string

	// Environ replaces os.Environ for MODALCORE_* variables.
	Environ func() []string

	// File is the file to edit. When empty, Text fills an unnamed buffer.
	File string
	Text string

	// Keys is where typed keys come from.
	Keys typeahead.Source

	UI     UI
	Logger *Logger

	// Shell runs ":!" commands. Defaults to $SHELL.
	Shell cmdline.Shell

	// ScriptPaths are searched for Lua scripts. Nil searches
	// plugin.DefaultPaths; an empty slice disables the search.
	ScriptPaths []string

	// Watch reloads the config file when it changes.
	Watch bool

	// WindowWidth and WindowHeight size the text area.
	WindowWidth  int
	WindowHeight int
}

// Editor is one editing session on one document.
type Editor struct {
	opts Options
	log  *Logger
	ui   UI

	config   *config.Config
	doc      *Document
	keys     *typeahead.Buffer
	journal  *history.History
	marks    *mark.Table
	search   *search.Engine
	folds    *fold.Set
	regs     *vim.RegisterStore
	cmdline  *cmdline.Handler
	lua      *lua.OperatorFunc
	dispatch *dispatcher.Dispatcher

	closed bool
}

// New assembles an editor.
func New(opts Options) (*Editor, error) {
	e := &Editor{opts: opts, log: opts.Logger, ui: opts.UI}
	if e.log == nil {
		e.log = GetLogger()
	}
	if e.ui == nil {
		e.ui = dispatcher.NullUI{}
	}
	if e.opts.Keys == nil {
		e.opts.Keys = typeahead.NewScript(nil)
	}
	if err := e.bootstrap(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// bootstrap initializes the components in dependency order.
func (e *Editor) bootstrap() error {
	ctx := context.Background()

	// 1. Configuration. A broken file leaves the defaults in place.
	cfgOpts := []config.Option{config.WithPath(e.opts.ConfigPath)}
	if e.opts.Environ != nil {
		cfgOpts = append(cfgOpts, config.WithEnviron(e.opts.Environ))
	}
	e.config = config.New(cfgOpts...)
	if err := e.config.Load(); err != nil {
		e.log.WithComponent("config").Warn("loading options: %v", err)
	}
	opts := e.config.Options()
	e.log.SetLevel(ParseLogLevel(opts.LogLevel))

	// 2. Document.
	if e.opts.File != "" {
		doc, err := OpenDocument(e.opts.File)
		if err != nil {
			return &InitError{Component: "document", Err: err}
		}
		e.doc = doc
	} else {
		e.doc = NewDocument("", e.opts.Text)
	}
	buf := e.doc.Buffer

	// 3. Buffer state.
	e.journal = history.NewHistory(buf, opts.UndoLevels)
	e.marks = mark.NewTable()
	e.marks.Track(buf)
	e.search = search.New(buf)
	e.folds = fold.NewSet()
	e.regs = vim.NewRegisterStore()
	e.applyClipboard(opts)

	// 4. Input.
	e.keys = typeahead.NewBuffer(e.opts.Keys)

	// 5. Command line.
	e.cmdline = cmdline.New(cmdline.Deps{
		Lines:     buf,
		Journal:   e.journal,
		Marks:     e.marks,
		Registers: e.regs,
		Patterns:  e.search,
		Shell:     e.opts.Shell,
		Write:     e.doc.Write,
		UI:        e.ui,
		Logger:    e.log.WithComponent("cmdline"),
	})

	// 6. Lua operator functions.
	state := lua.NewState(lua.WithPrint(e.ui.Message))
	e.lua = lua.NewOperatorFunc(lua.Deps{
		State:   state,
		Lines:   buf,
		Journal: e.journal,
		Marks:   e.marks,
		UI:      e.ui,
	})
	if err := e.loadScripts(ctx, opts); err != nil {
		return err
	}

	// 7. Dispatcher.
	dcfg := dispatcher.DefaultConfig().WithOptions(opts)
	if e.opts.WindowWidth > 0 {
		dcfg.WindowWidth = e.opts.WindowWidth
	}
	if e.opts.WindowHeight > 0 {
		dcfg.WindowHeight = e.opts.WindowHeight
	}
	d, err := dispatcher.New(dispatcher.Deps{
		Keys:      e.keys,
		Lines:     buf,
		Journal:   e.journal,
		Search:    e.search,
		Folds:     e.folds,
		Marks:     e.marks,
		Cmdline:   e.cmdline,
		OpFunc:    e.lua,
		UI:        e.ui,
		Logger:    e.log.WithComponent("dispatcher"),
		Registers: e.regs,
	}, dcfg)
	if err != nil {
		return &InitError{Component: "dispatcher", Err: err}
	}
	e.dispatch = d
	e.cmdline.Attach(d)
	e.lua.Attach(d)

	// 8. Live reload.
	if e.opts.Watch {
		if err := e.config.Watch(); err != nil {
			e.log.WithComponent("config").Warn("watching %s: %v", e.opts.ConfigPath, err)
		}
	}

	e.log.WithField("file", e.doc.Name).Debug("editor ready")
	return nil
}

// loadScripts runs the 'lua.script' file and the scripts found in the
// script paths. Only a failing 'lua.script' is fatal.
func (e *Editor) loadScripts(ctx context.Context, opts config.Options) error {
	log := e.log.WithComponent("lua")
	if opts.LuaScript != "" {
		if err := e.lua.LoadFile(ctx, opts.LuaScript); err != nil {
			return &InitError{Component: "lua", Err: err}
		}
	}

	var loaderOpts []plugin.LoaderOption
	if e.opts.ScriptPaths != nil {
		if len(e.opts.ScriptPaths) == 0 {
			return nil
		}
		loaderOpts = append(loaderOpts, plugin.WithPaths(e.opts.ScriptPaths...))
	}
	scripts, errs := plugin.NewLoader(loaderOpts...).LoadAll(ctx, e.lua)
	for _, err := range errs {
		log.Warn("%v", err)
	}
	log.Debug("loaded %d scripts", len(scripts)-len(errs))
	return nil
}

// applyClipboard connects registers "+" and "*" to the system clipboard
// when 'clipboard' is set.
func (e *Editor) applyClipboard(opts config.Options) {
	if opts.Clipboard == "" {
		e.regs.SetClipboard(nil)
		return
	}
	cb := vim.SystemClipboard{}
	if !cb.Available() {
		e.log.WithComponent("registers").Debug("no system clipboard")
		e.regs.SetClipboard(nil)
		return
	}
	e.regs.SetClipboard(cb)
}

// Document returns the document being edited.
func (e *Editor) Document() *Document {
	return e.doc
}

// Dispatcher returns the command dispatcher.
func (e *Editor) Dispatcher() *dispatcher.Dispatcher {
	return e.dispatch
}

// Cmdline returns the command-line handler.
func (e *Editor) Cmdline() *cmdline.Handler {
	return e.cmdline
}

// Registers returns the register store.
func (e *Editor) Registers() *vim.RegisterStore {
	return e.regs
}

// Config returns the configuration.
func (e *Editor) Config() *config.Config {
	return e.config
}

// Lines returns the buffer content.
func (e *Editor) Lines() []string {
	buf := e.doc.Buffer
	return buf.Lines(1, buf.LineCount())
}

// Close stops the config watcher and releases the Lua state.
func (e *Editor) Close() {
	if e.closed {
		return
	}
	e.closed = true
	if e.config != nil {
		if err := e.config.Close(); err != nil {
			e.log.WithComponent("config").Warn("closing watcher: %v", err)
		}
	}
	if e.lua != nil {
		e.lua.State().Close()
	}
}
