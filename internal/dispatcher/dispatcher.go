package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/modalcore/internal/dispatcher/redo"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/engine/fold"
	"github.com/dshills/modalcore/internal/engine/mark"
	"github.com/dshills/modalcore/internal/engine/search"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/typeahead"
	"github.com/dshills/modalcore/internal/input/vim"
)

// Dispatcher runs Normal and Visual mode. Each call to DispatchOne reads
// one command with its count, register and secondary keys, executes it
// and, when it completes a pending operator or Visual mode is active,
// applies the operator.
//
// A Dispatcher is driven by a single goroutine; it is not safe for
// concurrent use.
type Dispatcher struct {
	cfg      Config
	opts     config.Options
	registry *Registry

	keys    KeySource
	lines   Lines
	undo    Journal
	search  Searcher
	folds   Folds
	marks   Marks
	insert  Inserter
	cmdline Cmdline
	opfunc  OperatorFunc
	ui      UI
	log     Logger
	regs    *vim.RegisterStore

	ops     *operator.Handler
	text    *cursor.Text
	class   *charclass.Classifier
	langmap *typeahead.LangMap
	pairs   cursor.MatchPairs
	redo    *redo.Buffer
	metrics *Metrics
	hooks   []PostDispatchHook

	// Operator state, carried between cycles while an operator waits for
	// its motion.
	oap      execctx.OpArg
	opcount  int
	finishOp bool

	cur         buffer.Pos
	opCursor    buffer.Pos
	curswant    int
	setCurswant bool
	mods        key.Modifier

	visual         execctx.Visual
	visualModeOrig key.Code
	lastArea       execctx.LastArea
	resel          execctx.Reselect
	redoVisual     execctx.RedoVisual
	csearch        cursor.CharSearch
	win            window

	recording  rune
	lastAt     rune
	executing  rune
	execDepth  int
	dotPending bool
	bangRedo   bool
	textLocked bool
	depth      int
	quit       bool

	cycleErr    error
	lastErr     error
	redoTouched bool
	lastOp      vim.OpType
}

// New creates a dispatcher. Keys, Lines and Registers must be set in
// deps.
func New(deps Deps, cfg Config) (*Dispatcher, error) {
	switch {
	case deps.Keys == nil:
		return nil, fmt.Errorf("%w: keys", ErrMissingDependency)
	case deps.Lines == nil:
		return nil, fmt.Errorf("%w: lines", ErrMissingDependency)
	case deps.Registers == nil:
		return nil, fmt.Errorf("%w: registers", ErrMissingDependency)
	}
	if cfg.RedoCapacity <= 0 {
		cfg.RedoCapacity = redo.DefaultMaxLen
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = 24
	}
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = 80
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 100
	}

	d := &Dispatcher{
		cfg:      cfg,
		registry: DefaultRegistry,
		keys:     deps.Keys,
		lines:    deps.Lines,
		undo:     deps.Journal,
		search:   deps.Search,
		folds:    deps.Folds,
		marks:    deps.Marks,
		insert:   deps.Insert,
		cmdline:  deps.Cmdline,
		opfunc:   deps.OpFunc,
		ui:       deps.UI,
		log:      deps.Logger,
		regs:     deps.Registers,
		redo:     redo.New(cfg.RedoCapacity),
		class:    charclass.Default(),
		cur:      buffer.Pos{Line: 1},
		win:      window{top: 1, height: cfg.WindowHeight, width: cfg.WindowWidth},
	}
	if d.undo == nil {
		d.undo = nopJournal{}
	}
	if d.search == nil {
		d.search = search.New(d.lines)
	}
	if d.folds == nil {
		d.folds = fold.NewSet()
	}
	if d.marks == nil {
		d.marks = mark.NewTable()
	}
	if d.ui == nil {
		d.ui = NullUI{}
	}
	if d.log == nil {
		d.log = NullLogger{}
	}
	if d.insert == nil {
		ed := editor.New(d.keys, d.lines, d.undo, d.class)
		ed.SetRegisters(d.regs)
		d.insert = ed
	}
	if d.cmdline == nil {
		d.cmdline = lineReader{}
	}
	if cfg.EnableMetrics {
		d.metrics = NewMetrics()
	}
	d.ops = operator.New(d.lines, d.undo, d.regs, d.class)
	d.text = cursor.New(d.lines, d.class).WithFolds(d.folds)

	if err := d.SetOptions(cfg.Options); err != nil {
		return nil, err
	}
	return d, nil
}

// SetOptions applies new options. It is meant to be called between
// cycles, for example after the configuration file was reloaded. When an
// option fails to parse the previous options stay in effect.
func (d *Dispatcher) SetOptions(opts config.Options) error {
	class, err := charclass.New(opts.IsKeyword, opts.TabStop)
	if err != nil {
		return fmt.Errorf("iskeyword: %w", err)
	}
	var lm *typeahead.LangMap
	if opts.LangMap != "" {
		lm, err = typeahead.ParseLangMap(opts.LangMap)
		if err != nil {
			return fmt.Errorf("langmap: %w", err)
		}
	}

	d.opts = opts
	d.cfg.Options = opts
	d.class = class
	d.langmap = lm
	d.pairs = cursor.ParseMatchPairs(opts.MatchPairs)
	d.text = cursor.New(d.lines, class).WithFolds(d.folds)

	d.ops.SetClass(class)
	d.ops.SetSettings(operator.Settings{
		ShiftWidth:   opts.ShiftWidth,
		ShiftRound:   opts.ShiftRound,
		ExpandTab:    opts.ExpandTab,
		TextWidth:    opts.TextWidth,
		JoinSpaces:   opts.JoinSpaces,
		AutoIndent:   opts.AutoIndent,
		NrFormats:    opts.NrFormats,
		CpoJoinSpace: opts.HasCpo('j'),
	})
	if ed, ok := d.insert.(*editor.Editor); ok {
		ed.SetClass(class)
		ed.SetSettings(editor.Settings{
			AutoIndent: opts.AutoIndent,
			ExpandTab:  opts.ExpandTab,
			ShiftWidth: opts.ShiftWidth,
		})
	}
	d.search.Configure(opts.IgnoreCase, opts.SmartCase, opts.WrapScan)
	return nil
}

// Options returns the options in effect.
func (d *Dispatcher) Options() config.Options {
	return d.opts
}

// DispatchOne reads and executes one command. A command that fails is not
// reported here: the dispatcher beeps, drops the pending operator and
// keeps the failure for LastError. The returned error is non-nil only
// when reading keys failed or a quit command ran (execctx.ErrQuit).
func (d *Dispatcher) DispatchOne(ctx context.Context) error {
	start := time.Now()
	res := Result{}
	err := d.runCycle(ctx, &res)

	d.lastErr = d.cycleErr
	res.Err = d.cycleErr
	res.Op = d.lastOp
	res.Pending = d.oap.Pending()
	res.Cursor = d.cur
	res.Duration = time.Since(start)
	if d.metrics != nil {
		d.metrics.Record(&res)
	}
	for _, h := range d.hooks {
		h.PostDispatch(&res)
	}

	if err != nil {
		return err
	}
	if d.quit {
		return execctx.ErrQuit
	}
	return nil
}

// runCycle runs normalCmd, turning a panic into a failed command when
// configured.
func (d *Dispatcher) runCycle(ctx context.Context, res *Result) (err error) {
	if d.cfg.RecoverFromPanic {
		defer func() {
			if r := recover(); r != nil {
				stack := make([]byte, 4096)
				n := runtime.Stack(stack, false)
				d.log.Debug("command panic: %v\n%s", r, stack[:n])
				if d.metrics != nil {
					d.metrics.RecordPanic()
				}
				d.fail(fmt.Errorf("%w: %v", ErrPanic, r))
				d.endVisual()
				err = nil
			}
		}()
	}
	return d.normalCmd(ctx, res)
}

// Run dispatches commands until the key source fails or a quit command
// runs. Quitting is not an error.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		err := d.DispatchOne(ctx)
		if errors.Is(err, execctx.ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// boundedKeys ends the keys of ":normal" with Esc once the keys it
// stuffed are used up, so an unfinished command is abandoned instead of
// waiting for the user.
type boundedKeys struct {
	KeySource
}

func (b boundedKeys) Next(ctx context.Context) (key.Event, error) {
	if ev, ok := b.Peek(); ok && !ev.Typed {
		return b.KeySource.Next(ctx)
	}
	return key.Event{Code: key.Esc}, nil
}

func (b boundedKeys) exhausted() bool {
	ev, ok := b.Peek()
	return !ok || ev.Typed
}

// ExecuteNormal runs codes as Normal mode commands, the way ":normal"
// does. The pending operator of the caller and the keys it still has
// queued are set aside while the nested commands run, and a failure in
// them flushes only their own keys. An unfinished command at the end is
// abandoned.
func (d *Dispatcher) ExecuteNormal(ctx context.Context, codes []key.Code) error {
	if len(codes) == 0 {
		return nil
	}
	if d.depth >= d.cfg.MaxDepth {
		return ErrRecursion
	}
	d.depth++
	saved := d.saveState()
	outer := d.keys
	restoreKeys := outer.Save()
	bounded := boundedKeys{KeySource: outer}
	d.keys = bounded
	defer func() {
		d.keys = outer
		restoreKeys()
		d.restoreState(saved)
		d.depth--
	}()

	outer.InsertCodes(codes...)
	for !bounded.exhausted() {
		if err := d.runCycle(ctx, &Result{}); err != nil {
			return err
		}
		if d.quit {
			return execctx.ErrQuit
		}
	}
	if d.oap.Pending() {
		d.clearOp()
	}
	return nil
}

// nestedState is the part of the cycle state a nested command run must
// not share with the command that started it.
type nestedState struct {
	oap      execctx.OpArg
	opcount  int
	finishOp bool
	cycleErr error
	touched  bool
	lastOp   vim.OpType

	// The caller's macro and "." replay, which a nested cycle resets when
	// it finds the stuff queue empty.
	executing  rune
	execDepth  int
	dotPending bool
}

func (d *Dispatcher) saveState() nestedState {
	s := nestedState{
		oap:        d.oap,
		opcount:    d.opcount,
		finishOp:   d.finishOp,
		cycleErr:   d.cycleErr,
		touched:    d.redoTouched,
		lastOp:     d.lastOp,
		executing:  d.executing,
		execDepth:  d.execDepth,
		dotPending: d.dotPending,
	}
	d.oap = execctx.OpArg{}
	d.opcount = 0
	d.finishOp = false
	return s
}

func (d *Dispatcher) restoreState(s nestedState) {
	d.oap = s.oap
	d.opcount = s.opcount
	d.finishOp = s.finishOp
	d.cycleErr = s.cycleErr
	d.redoTouched = s.touched
	d.lastOp = s.lastOp
	d.executing = s.executing
	d.execDepth = s.execDepth
	d.dotPending = s.dotPending
}

// LastError returns the failure of the most recent command, nil when it
// succeeded.
func (d *Dispatcher) LastError() error {
	return d.lastErr
}

// Cursor returns the cursor position.
func (d *Dispatcher) Cursor() buffer.Pos {
	return d.cur
}

// SetCursor moves the cursor, keeping it inside the buffer.
func (d *Dispatcher) SetCursor(p buffer.Pos) {
	d.cur = d.text.Clamp(p, d.onemore())
	d.setCurswant = true
}

// Pending reports whether an operator waits for its motion.
func (d *Dispatcher) Pending() bool {
	return d.oap.Pending()
}

// Visual returns the live Visual selection.
func (d *Dispatcher) Visual() execctx.Visual {
	return d.visual
}

// LastArea returns the selection "gv" restores.
func (d *Dispatcher) LastArea() execctx.LastArea {
	return d.lastArea
}

// RedoContent returns the keys "." replays.
func (d *Dispatcher) RedoContent() []key.Code {
	return d.redo.Content()
}

// Registers returns the register store.
func (d *Dispatcher) Registers() *vim.RegisterStore {
	return d.regs
}

// Marks returns the mark table.
func (d *Dispatcher) Marks() Marks {
	return d.marks
}

// Folds returns the fold set.
func (d *Dispatcher) Folds() Folds {
	return d.folds
}

// Metrics returns the metrics collector, nil unless enabled.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Registry returns the command index.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Recording returns the register being recorded into, 0 when none.
func (d *Dispatcher) Recording() rune {
	return d.recording
}

// SetTextLocked marks a sub-editor as holding the input. Commands that
// change buffers or windows are refused while it is set.
func (d *Dispatcher) SetTextLocked(on bool) {
	d.textLocked = on
}

// RegisterPostHook adds a hook called after every cycle.
func (d *Dispatcher) RegisterPostHook(h PostDispatchHook) {
	d.hooks = append(d.hooks, h)
}

// ModeName describes the current mode for a status line.
func (d *Dispatcher) ModeName() string {
	var s string
	switch {
	case d.visual.Active && d.visual.Select:
		s = "SELECT"
	case d.visual.Active:
		s = "VISUAL"
	case d.oap.Pending():
		s = "OPERATOR"
	default:
		s = "NORMAL"
	}
	if d.visual.Active {
		switch d.visual.Mode {
		case 'V':
			s += " LINE"
		case key.CtrlV:
			s += " BLOCK"
		}
	}
	if d.recording != 0 {
		s += " recording @" + string(d.recording)
	}
	return s
}

// onemore reports whether the cursor may sit just past the end of the
// line.
func (d *Dispatcher) onemore() bool {
	return d.visual.Active && d.opts.Selection != "old"
}

// fail ends the command with err: the operator is dropped, stuffed keys
// such as the rest of a macro are discarded, the user is alerted and a
// redo recording started by this command is abandoned.
func (d *Dispatcher) fail(err error) {
	d.clearOp()
	d.keys.Flush()
	d.ui.Beep()
	if d.redoTouched {
		d.redo.Cancel()
		d.redoTouched = false
	}
	d.cycleErr = err
	if errors.Is(err, execctx.ErrAllocation) {
		d.ui.Message(err.Error())
	}
	d.log.Debug("command failed: %v", err)
}

// failQuiet ends the command like fail, but shows err instead of beeping.
func (d *Dispatcher) failQuiet(err error) {
	d.clearOp()
	d.keys.Flush()
	if d.redoTouched {
		d.redo.Cancel()
		d.redoTouched = false
	}
	d.cycleErr = err
	d.ui.Message(err.Error())
	d.log.Debug("command failed: %v", err)
}

// beep alerts the user without dropping the pending operator.
func (d *Dispatcher) beep(err error) {
	d.keys.Flush()
	d.ui.Beep()
	d.cycleErr = err
	d.log.Debug("command failed: %v", err)
}

func (d *Dispatcher) clearOp() {
	d.oap.Clear()
}

// errOperatorPending is returned by commands that cannot follow an
// operator.
var errOperatorPending = fmt.Errorf("%w: not valid after an operator", execctx.ErrForbidden)

// checkClearOp fails commands that cannot complete an operator.
func (d *Dispatcher) checkClearOp() error {
	if !d.oap.Pending() {
		return nil
	}
	return errOperatorPending
}

// checkClearOpQ also fails in Visual mode.
func (d *Dispatcher) checkClearOpQ() error {
	if !d.oap.Pending() && !d.visual.Active {
		return nil
	}
	return errOperatorPending
}

// nopJournal is used when no undo history is attached.
type nopJournal struct{}

func (nopJournal) Save(int, int, buffer.Pos) error { return nil }
func (nopJournal) Sync()                           {}
func (nopJournal) Undo(int) (buffer.Pos, error) {
	return buffer.Pos{}, errNoJournal
}
func (nopJournal) Redo(int) (buffer.Pos, error) {
	return buffer.Pos{}, errNoJournal
}
func (nopJournal) UndoLine(buffer.Pos) (buffer.Pos, error) {
	return buffer.Pos{}, errNoJournal
}

var errNoJournal = errors.New("dispatcher: no undo history")
