package cmdline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/history"
	"github.com/dshills/modalcore/internal/engine/search"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// Lines is the line storage the commands change.
type Lines interface {
	Line(n int) string
	LineCount() int
	AppendLine(after int, text string) error
	ReplaceLine(n int, text string) error
	DeleteLine(n int) error
}

// Journal records lines before they change so they can be undone.
type Journal interface {
	Save(top, bot int, cursor buffer.Pos) error
}

// UndoList is a Journal that can list the changes it can undo.
type UndoList interface {
	Entries() []history.Entry
}

// Marks gives the line of marks used in ranges and records changes.
type Marks interface {
	Get(name rune) (buffer.Pos, error)
	SetChange(start, end buffer.Pos)
}

// Patterns is the search state ":s" shares with "/" and "n".
type Patterns interface {
	LastPattern() string
	SetLastPattern(p string, dir search.Direction)
	LastDirection() search.Direction
	Compile(pattern string) (*regexp2.Regexp, error)
}

// UI shows command output.
type UI interface {
	Message(msg string)
}

// Logger is the logging the executor does.
type Logger interface {
	Debug(format string, args ...any)
}

// Editor is the Normal mode side of the editor: the cursor, the options
// and ":normal".
type Editor interface {
	Cursor() buffer.Pos
	SetCursor(p buffer.Pos)
	ExecuteNormal(ctx context.Context, codes []key.Code) error
	Options() config.Options
	SetOptions(opts config.Options) error
}

// WriteFunc writes lines to path. An empty path means the file being
// edited.
type WriteFunc func(path string, lines []string) error

// Deps are the collaborators of an Executor. Lines and Patterns are
// required.
type Deps struct {
	Lines     Lines
	Journal   Journal
	Marks     Marks
	Registers *vim.RegisterStore
	Patterns  Patterns
	Shell     Shell
	Write     WriteFunc
	UI        UI
	Logger    Logger
}

// Executor runs Ex commands.
type Executor struct {
	lines   Lines
	journal Journal
	marks   Marks
	regs    *vim.RegisterStore
	pats    Patterns
	shell   Shell
	write   WriteFunc
	ui      UI
	log     Logger

	ed Editor

	sub      *subState
	lastBang string
}

// NewExecutor creates an executor.
func NewExecutor(deps Deps) *Executor {
	e := &Executor{
		lines:   deps.Lines,
		journal: deps.Journal,
		marks:   deps.Marks,
		regs:    deps.Registers,
		pats:    deps.Patterns,
		shell:   deps.Shell,
		write:   deps.Write,
		ui:      deps.UI,
		log:     deps.Logger,
	}
	if e.journal == nil {
		e.journal = noJournal{}
	}
	if e.marks == nil {
		e.marks = noMarks{}
	}
	if e.regs == nil {
		e.regs = vim.NewRegisterStore()
	}
	if e.shell == nil {
		e.shell = ExecShell{}
	}
	if e.ui == nil {
		e.ui = nullUI{}
	}
	if e.log == nil {
		e.log = nullLogger{}
	}
	return e
}

// Attach connects the executor to the editor it serves. Commands that
// move the cursor, change options or run Normal mode commands need it.
func (e *Executor) Attach(ed Editor) {
	e.ed = ed
}

type exCmd struct {
	name string
	// min is the shortest accepted abbreviation.
	min    int
	ranged bool
	run    func(e *Executor, ctx context.Context, a *exArgs) error
}

type exArgs struct {
	r    Range
	bang bool
	arg  string
}

var exCmds = []exCmd{
	{name: "delete", min: 1, ranged: true, run: (*Executor).exDelete},
	{name: "display", min: 2, run: (*Executor).exRegisters},
	{name: "help", min: 1, run: (*Executor).exHelp},
	{name: "nohlsearch", min: 3, run: (*Executor).exNohlsearch},
	{name: "normal", min: 4, ranged: true, run: (*Executor).exNormal},
	{name: "quit", min: 1, run: (*Executor).exQuit},
	{name: "registers", min: 3, run: (*Executor).exRegisters},
	{name: "undolist", min: 5, run: (*Executor).exUndoList},
	{name: "substitute", min: 1, ranged: true, run: (*Executor).exSubstitute},
	{name: "set", min: 2, run: (*Executor).exSet},
	{name: "write", min: 1, ranged: true, run: (*Executor).exWrite},
	{name: "wq", min: 2, ranged: true, run: (*Executor).exWriteQuit},
	{name: "xit", min: 1, ranged: true, run: (*Executor).exXit},
	{name: "yank", min: 1, ranged: true, run: (*Executor).exYank},
}

func lookupCmd(name string) (*exCmd, bool) {
	for i := range exCmds {
		c := &exCmds[i]
		if len(name) >= c.min && strings.HasPrefix(c.name, name) {
			return c, true
		}
	}
	return nil, false
}

// Execute runs one command line. A quit command returns execctx.ErrQuit.
func (e *Executor) Execute(ctx context.Context, cmd string) error {
	e.log.Debug("ex: %q", cmd)
	r, rest, err := ParseRange(cmd, e.cursor().Line, e.lines.LineCount(), e.markLine)
	if err != nil {
		return err
	}
	rest = trimBlanks(rest)
	if rest == "" {
		if r.Addresses > 0 {
			e.gotoLine(max(min(r.End, e.lines.LineCount()), 1))
		}
		return nil
	}

	switch rest[0] {
	case '!':
		return e.bang(ctx, r, rest[1:])
	case '&':
		keep := strings.HasPrefix(rest, "&&")
		if keep {
			rest = rest[2:]
		} else {
			rest = rest[1:]
		}
		return e.repeatSubstitute(r, keep, rest)
	case '"':
		return nil
	}

	n := 0
	for n < len(rest) && unicode.IsLetter(rune(rest[n])) {
		n++
	}
	name := rest[:n]
	// ":s" takes its delimiter right after the name, as in ":s#a#b#" or
	// ":sg". Other names are only letters.
	if name != "" && name[0] == 's' && !strings.HasPrefix("set", name) && !strings.HasPrefix("substitute", name) {
		name, n = "s", 1
	}
	c, ok := lookupCmd(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotEditorCommand, cmd)
	}
	if r.Addresses > 0 && !c.ranged {
		return fmt.Errorf("%w: %s", ErrNoRange, cmd)
	}

	a := &exArgs{r: r, arg: rest[n:]}
	if strings.HasPrefix(a.arg, "!") && c.name != "substitute" {
		a.bang = true
		a.arg = a.arg[1:]
	}
	if c.name != "substitute" && c.name != "normal" {
		a.arg = strings.TrimSpace(a.arg)
	}
	return c.run(e, ctx, a)
}

func (e *Executor) cursor() buffer.Pos {
	if e.ed == nil {
		return buffer.Pos{Line: 1}
	}
	return e.ed.Cursor()
}

func (e *Executor) markLine(name rune) (int, error) {
	p, err := e.marks.Get(name)
	if err != nil {
		return 0, err
	}
	return p.Line, nil
}

// gotoLine puts the cursor on the first non-blank of lnum.
func (e *Executor) gotoLine(lnum int) {
	if e.ed == nil {
		return
	}
	e.ed.SetCursor(buffer.Pos{Line: lnum, Col: firstNonBlank(e.lines.Line(lnum))})
}

// save records lines first..last before they change.
func (e *Executor) save(first, last int) error {
	return e.journal.Save(first-1, last+1, e.cursor())
}

// replaceLines puts repl in place of lines first..last.
func (e *Executor) replaceLines(first, last int, repl []string) error {
	old := last - first + 1
	common := min(old, len(repl))
	for i := range common {
		if err := e.lines.ReplaceLine(first+i, repl[i]); err != nil {
			return err
		}
	}
	for i := common; i < len(repl); i++ {
		if err := e.lines.AppendLine(first+i-1, repl[i]); err != nil {
			return err
		}
	}
	for i := common; i < old; i++ {
		if err := e.lines.DeleteLine(first + common); err != nil {
			return err
		}
	}
	return nil
}

// lineArgs reads the optional register name and count of ":d" and ":y".
// A count makes the range start at its last line.
func (e *Executor) lineArgs(a *exArgs) (rune, int, int, error) {
	arg := a.arg
	var reg rune
	if arg != "" && !isDigit(arg[0]) {
		reg = rune(arg[0])
		if !vim.IsValidRegister(reg, true) {
			return 0, 0, 0, fmt.Errorf("%w: %s", vim.ErrInvalidRegister, arg[:1])
		}
		arg = strings.TrimSpace(arg[1:])
	}
	first, last := max(a.r.Start, 1), a.r.End
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return 0, 0, 0, fmt.Errorf("%w: %s", ErrTrailing, arg)
		}
		first = max(last, 1)
		last = min(first+n-1, e.lines.LineCount())
	}
	return reg, first, last, nil
}

func (e *Executor) linesOf(first, last int) []string {
	out := make([]string, 0, last-first+1)
	for n := first; n <= last; n++ {
		out = append(out, e.lines.Line(n))
	}
	return out
}

func (e *Executor) exDelete(_ context.Context, a *exArgs) error {
	reg, first, last, err := e.lineArgs(a)
	if err != nil {
		return err
	}
	text := e.linesOf(first, last)
	if err := e.regs.Delete(reg, text, vim.MotionLinewise, 0, true); err != nil {
		return err
	}
	if err := e.save(first, last); err != nil {
		return err
	}
	if err := e.replaceLines(first, last, nil); err != nil {
		return err
	}
	lnum := max(min(first, e.lines.LineCount()), 1)
	e.marks.SetChange(buffer.Pos{Line: lnum}, buffer.Pos{Line: lnum})
	e.gotoLine(lnum)
	if n := len(text); n > 2 {
		e.ui.Message(fmt.Sprintf("%d fewer lines", n))
	}
	return nil
}

func (e *Executor) exYank(_ context.Context, a *exArgs) error {
	reg, first, last, err := e.lineArgs(a)
	if err != nil {
		return err
	}
	return e.regs.Yank(reg, e.linesOf(first, last), vim.MotionLinewise, 0)
}

// exNormal runs the keys after ":normal". With a range they run once on
// every line, the cursor starting in column zero.
func (e *Executor) exNormal(ctx context.Context, a *exArgs) error {
	if e.ed == nil {
		return ErrNoEditor
	}
	keys := strings.TrimLeft(a.arg, " \t")
	if keys == "" {
		return nil
	}
	codes := key.FromText(keys)
	if a.r.Addresses == 0 {
		return e.ed.ExecuteNormal(ctx, codes)
	}
	for lnum := max(a.r.Start, 1); lnum <= a.r.End && lnum <= e.lines.LineCount(); lnum++ {
		e.ed.SetCursor(buffer.Pos{Line: lnum})
		if err := e.ed.ExecuteNormal(ctx, codes); err != nil {
			return err
		}
	}
	return nil
}

// exSet changes options. "name?" and a number or string option without
// a value show the value, "all" shows every option.
func (e *Executor) exSet(_ context.Context, a *exArgs) error {
	if e.ed == nil {
		return ErrNoEditor
	}
	opts := e.ed.Options()
	var shown []string
	changed := false
	for _, arg := range strings.Fields(a.arg) {
		switch {
		case arg == "all":
			for _, name := range config.Names() {
				v, _ := opts.Get(name)
				shown = append(shown, v)
			}
			continue
		case strings.HasSuffix(arg, "?"):
			v, err := opts.Get(strings.TrimSuffix(arg, "?"))
			if err != nil {
				return err
			}
			shown = append(shown, v)
			continue
		case isOptionName(arg):
			if v, err := opts.Get(arg); err == nil && strings.Contains(v, "=") {
				shown = append(shown, v)
				continue
			}
		}
		if err := opts.Set(arg); err != nil {
			return err
		}
		changed = true
	}
	if changed {
		if err := e.ed.SetOptions(opts); err != nil {
			return err
		}
	}
	if len(shown) > 0 {
		e.ui.Message(strings.Join(shown, "\n"))
	}
	return nil
}

func isOptionName(s string) bool {
	for i := 0; i < len(s); i++ {
		if !unicode.IsLetter(rune(s[i])) {
			return false
		}
	}
	return s != ""
}

func (e *Executor) writeLines(a *exArgs) error {
	if e.write == nil {
		return ErrNoWriter
	}
	first, last := 1, e.lines.LineCount()
	if a.r.Addresses > 0 {
		first, last = max(a.r.Start, 1), a.r.End
	}
	lines := e.linesOf(first, last)
	if err := e.write(a.arg, lines); err != nil {
		return err
	}
	e.log.Debug("wrote %d lines to %q", len(lines), a.arg)
	return nil
}

func (e *Executor) exWrite(_ context.Context, a *exArgs) error {
	return e.writeLines(a)
}

func (e *Executor) exWriteQuit(_ context.Context, a *exArgs) error {
	if err := e.writeLines(a); err != nil {
		return err
	}
	return execctx.ErrQuit
}

// exXit writes when there is somewhere to write to and quits.
func (e *Executor) exXit(_ context.Context, a *exArgs) error {
	if e.write != nil {
		if err := e.writeLines(a); err != nil {
			return err
		}
	}
	return execctx.ErrQuit
}

func (e *Executor) exQuit(_ context.Context, a *exArgs) error {
	if a.arg != "" {
		return fmt.Errorf("%w: %s", ErrTrailing, a.arg)
	}
	return execctx.ErrQuit
}

func (e *Executor) exHelp(_ context.Context, a *exArgs) error {
	if a.arg == "" {
		return ErrNoHelp
	}
	return fmt.Errorf("%w for %s", ErrNoHelp, a.arg)
}

func (e *Executor) exNohlsearch(context.Context, *exArgs) error {
	return nil
}

const registerNames = "\"0123456789abcdefghijklmnopqrstuvwxyz-.:/"

// exRegisters shows the registers, or only those named in the argument.
func (e *Executor) exRegisters(_ context.Context, a *exArgs) error {
	names := registerNames
	if a.arg != "" {
		names = a.arg
	}
	out := []string{"Type Name Content"}
	for _, name := range names {
		if unicode.IsSpace(name) {
			continue
		}
		reg, err := e.regs.Get(name)
		if err != nil || reg.Empty() {
			continue
		}
		typ := "c"
		switch reg.Type {
		case vim.MotionLinewise:
			typ = "l"
		case vim.MotionBlockwise:
			typ = "b"
		}
		text := strings.ReplaceAll(reg.Text(), "\n", "^J")
		out = append(out, fmt.Sprintf("  %s  \"%c   %s", typ, name, text))
	}
	e.ui.Message(strings.Join(out, "\n"))
	return nil
}

// exUndoList shows the changes that can be undone, newest last.
func (e *Executor) exUndoList(context.Context, *exArgs) error {
	ul, ok := e.journal.(UndoList)
	if !ok {
		e.ui.Message("Nothing to undo")
		return nil
	}
	entries := ul.Entries()
	if len(entries) == 0 {
		e.ui.Message("Nothing to undo")
		return nil
	}
	out := []string{"number lines time     id"}
	for _, en := range entries {
		out = append(out, fmt.Sprintf("%6d %5d %s %s",
			en.Seq, en.Lines(), en.Time.Format("15:04:05"), en.ID.String()[:8]))
	}
	last := entries[len(entries)-1]
	e.log.Debug("undolist: %d entries, newest %s", len(entries), last.ID)
	e.ui.Message(strings.Join(out, "\n"))
	return nil
}

func firstNonBlank(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return i
		}
	}
	return 0
}

type noJournal struct{}

func (noJournal) Save(int, int, buffer.Pos) error { return nil }

type noMarks struct{}

func (noMarks) Get(name rune) (buffer.Pos, error) {
	return buffer.Pos{}, fmt.Errorf("mark '%c not set", name)
}
func (noMarks) SetChange(buffer.Pos, buffer.Pos) {}

type nullUI struct{}

func (nullUI) Message(string) {}

type nullLogger struct{}

func (nullLogger) Debug(string, ...any) {}
