// Package main is the entry point for the modalcore editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/dshills/modalcore/internal/app"
	"github.com/dshills/modalcore/internal/dispatcher"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cmdline"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/typeahead"
	"github.com/dshills/modalcore/internal/renderer"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type flags struct {
	configPath string
	keys       string
	logLevel   string
	logFile    string
	noPrint    bool
	watch      bool
	file       string
}

func main() {
	os.Exit(run())
}

func run() int {
	f, ok := parseFlags()
	if !ok {
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, closeLog, err := openLogger(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()
	app.SetLogger(logger)

	if f.keys != "" {
		err = runScript(ctx, f, logger)
	} else {
		err = runInteractive(ctx, f, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() (flags, bool) {
	var f flags
	var showVersion bool

	flag.StringVar(&f.configPath, "config", "", "Path to configuration file (TOML or YAML)")
	flag.StringVar(&f.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&f.keys, "keys", "", "Run these keys, in <C-x> notation, and print the result")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.logFile, "log", "", "Write the log to this file")
	flag.BoolVar(&f.noPrint, "quiet", false, "With -keys, do not print the buffer")
	flag.BoolVar(&f.watch, "watch", true, "Reload the configuration file when it changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "modalcore - a modal text editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: modalcore [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  modalcore notes.txt                     Edit a file\n")
		fmt.Fprintf(os.Stderr, "  modalcore -keys 'dd:wq<CR>' notes.txt   Delete the first line and save\n")
		fmt.Fprintf(os.Stderr, "  echo abc | modalcore -keys 'x'          Edit stdin, print the result\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("modalcore %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch f.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", f.logLevel)
		return f, false
	}

	switch flag.NArg() {
	case 0:
	case 1:
		f.file = flag.Arg(0)
	default:
		fmt.Fprintf(os.Stderr, "Error: only one file can be edited\n")
		return f, false
	}
	return f, true
}

// openLogger logs to the -log file, to stderr in script mode, and
// nowhere while the terminal is in use.
func openLogger(f flags) (*app.Logger, func(), error) {
	cfg := app.DefaultLoggerConfig()
	closeFn := func() {}
	switch {
	case f.logFile != "":
		file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		cfg.Output = file
		closeFn = func() { _ = file.Close() }
	case f.keys == "":
		cfg.Output = io.Discard
	}
	logger := app.NewLogger(cfg)
	if f.logLevel != "" {
		logger.SetLevel(app.ParseLogLevel(f.logLevel))
	}
	return logger, closeFn, nil
}

// environ adds the -log-level flag as MODALCORE_LOG_LEVEL so it wins
// over the config file.
func environ(f flags) func() []string {
	return func() []string {
		env := os.Environ()
		if f.logLevel != "" {
			env = append(env, "MODALCORE_LOG_LEVEL="+f.logLevel)
		}
		return env
	}
}

// runScript runs the -keys script against the file, or stdin when no
// file is named, and prints the buffer.
func runScript(ctx context.Context, f flags, logger *app.Logger) error {
	codes, err := key.Parse(f.keys)
	if err != nil {
		return fmt.Errorf("-keys: %w", err)
	}

	opts := app.Options{
		ConfigPath: f.configPath,
		Environ:    environ(f),
		File:       f.file,
		Keys:       typeahead.NewScript(codes),
		UI:         stderrUI{},
		Logger:     logger,
	}
	if f.file == "" {
		if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			opts.Text = strings.TrimSuffix(string(data), "\n")
		}
	}

	ed, err := app.New(opts)
	if err != nil {
		return err
	}
	defer ed.Close()

	if err := ed.Run(ctx); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if !f.noPrint {
		for _, line := range ed.Lines() {
			fmt.Println(line)
		}
	}
	return nil
}

// stderrUI reports messages on stderr in script mode.
type stderrUI struct{}

func (stderrUI) Beep() {}

func (stderrUI) Message(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// runInteractive edits on the terminal until ":q".
func runInteractive(ctx context.Context, f flags, logger *app.Logger) error {
	term, err := renderer.NewTerminal()
	if err != nil {
		return fmt.Errorf("creating terminal: %w", err)
	}
	if err := term.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer term.Shutdown()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	width, height := term.Size()
	ed, err := app.New(app.Options{
		ConfigPath:   f.configPath,
		Environ:      environ(f),
		File:         f.file,
		Keys:         typeahead.NewChanSource(term.Keys(ctx)),
		UI:           term,
		Logger:       logger,
		Watch:        f.watch,
		WindowWidth:  width,
		WindowHeight: max(height-2, 1),
	})
	if err != nil {
		return err
	}
	defer ed.Close()

	// The size is applied on the editor goroutine, after the next command.
	var size atomic.Pointer[[2]int]
	term.OnResize(func(w, h int) {
		size.Store(&[2]int{w, h})
	})

	draw := func() {
		if s := size.Swap(nil); s != nil {
			width, height = s[0], s[1]
			ed.Dispatcher().SetWindowSize(width, max(height-2, 1))
		}
		frame := renderer.NewFrame(ed, height)
		frame.Message = term.TakeMessage()
		term.View().Draw(frame)
	}
	ed.Cmdline().OnChange(func(line cmdline.Line) {
		term.View().DrawCmdline(line)
	})
	ed.Dispatcher().RegisterPostHook(dispatcher.PostDispatchFunc(func(*dispatcher.Result) {
		draw()
	}))

	draw()
	err = ed.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
