package dispatcher

import (
	"context"

	"github.com/dshills/modalcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/search"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// KeySource is the input the dispatcher reads commands from. Keys the
// dispatcher generates itself ("x" becomes "dl", "." replays the last
// change) are stuffed back into it.
type KeySource interface {
	Next(ctx context.Context) (key.Event, error)
	Peek() (key.Event, bool)
	Unget(ev key.Event)
	StuffCodes(codes ...key.Code)
	InsertCodes(codes ...key.Code)
	StuffEmpty() bool
	Flush()
	Save() (restore func())
	StartRecording() error
	Recording() bool
	StopRecording() []key.Code
}

// Lines is the line storage.
type Lines interface {
	Line(n int) string
	LineCount() int
	AppendLine(after int, text string) error
	ReplaceLine(n int, text string) error
	DeleteLine(n int) error
	Modifiable() bool
	Locked() bool
}

// Journal is the undo history. Save must be called before lines change;
// Sync closes the change so the next one is undone separately.
type Journal interface {
	Save(top, bot int, cursor buffer.Pos) error
	Sync()
	Undo(count int) (buffer.Pos, error)
	Redo(count int) (buffer.Pos, error)
	UndoLine(cursor buffer.Pos) (buffer.Pos, error)
}

// Searcher finds patterns.
type Searcher interface {
	Search(pattern string, off search.Offset, dir search.Direction, count int, from buffer.Pos) (search.Match, error)
	Next(reverse bool, count int, from buffer.Pos) (search.Match, error)
	Current(backward bool, count int, from buffer.Pos) (search.Match, error)
	LastPattern() string
	SetLastPattern(p string, dir search.Direction)
	LastDirection() search.Direction
	Configure(ignoreCase, smartCase, wrapScan bool)
}

// Folds is the fold set of the buffer.
type Folds interface {
	Closed(lnum int) (first, last int, ok bool)
	Create(start, end int)
	Open(start, end int, recursive bool) error
	Close(start, end int, recursive bool) error
	Toggle(lnum int, recursive bool) error
	Delete(start, end int, recursive bool) error
	Clear()
	SetAll(closed bool)
	Level() int
	SetLevel(level int)
	Deepest() int
	MoveTo(lnum int, forward bool, count int) (int, error)
	Enabled() bool
	SetEnabled(on bool)
}

// Marks is the mark table of the buffer.
type Marks interface {
	Set(name rune, pos buffer.Pos) error
	Get(name rune) (buffer.Pos, error)
	SetChange(start, end buffer.Pos)
	SetVisual(start, end buffer.Pos)
}

// Inserter runs Insert mode.
type Inserter interface {
	Run(ctx context.Context, req editor.Request) (editor.Result, error)
}

// Cmdline reads and executes command lines. Read collects the line typed
// after firstc (":", "/" or "?") from keys and reports ErrCmdlineAborted
// when it is left with Esc.
type Cmdline interface {
	Read(ctx context.Context, keys key.Reader, firstc rune) (string, error)
	Execute(ctx context.Context, cmd string) error
}

// OperatorFunc is called by "g@" with "char", "line" or "block". The
// '[ and '] marks hold the span.
type OperatorFunc interface {
	Call(ctx context.Context, name, motion string) error
}

// UI receives the feedback of failed commands and messages.
type UI interface {
	Beep()
	Message(msg string)
}

// Logger is the logging the dispatcher does.
type Logger interface {
	Debug(format string, args ...any)
}

// NullUI discards all feedback.
type NullUI struct{}

func (NullUI) Beep()          {}
func (NullUI) Message(string) {}

// NullLogger discards all log messages.
type NullLogger struct{}

func (NullLogger) Debug(string, ...any) {}

// Deps are the collaborators of a Dispatcher. Keys, Lines and Registers
// are required; the rest have inert defaults.
type Deps struct {
	Keys      KeySource
	Lines     Lines
	Journal   Journal
	Search    Searcher
	Folds     Folds
	Marks     Marks
	Insert    Inserter
	Cmdline   Cmdline
	OpFunc    OperatorFunc
	UI        UI
	Logger    Logger
	Registers *vim.RegisterStore
}
