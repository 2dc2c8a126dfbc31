package editor

import (
	"context"
	"errors"

	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// ErrNotModifiable is returned when the store refuses the first change.
var ErrNotModifiable = errors.New("editor: buffer is not modifiable")

// Mode selects how typed characters are entered.
type Mode uint8

const (
	// ModeInsert inserts before the cursor.
	ModeInsert Mode = iota
	// ModeReplace overwrites the character under the cursor.
	ModeReplace
)

// Keys supplies typed keys.
type Keys = key.Reader

// Store is the line storage the editor changes.
type Store interface {
	Line(n int) string
	LineCount() int
	AppendLine(after int, text string) error
	ReplaceLine(n int, text string) error
	DeleteLine(n int) error
}

// Journal records lines before they change.
type Journal interface {
	Save(top, bot int, cursor buffer.Pos) error
}

// Registers is read by Ctrl-R.
type Registers interface {
	Get(name rune) (vim.Register, error)
}

// Settings are the options Insert mode consults.
type Settings struct {
	AutoIndent bool
	ExpandTab  bool
	// ShiftWidth of zero uses the tabstop.
	ShiftWidth int
}

// Request starts a session.
type Request struct {
	// Cmd is the command that entered Insert mode.
	Cmd    key.Code
	Mode   Mode
	Cursor buffer.Pos
	// Count repeats the typed text when the session ends with Esc.
	Count int
	// NewLine puts every repetition on a new line, as "3o" does.
	NewLine bool
	// Keys replaces the editor's key source for this session.
	Keys Keys
}

// Result describes a finished session.
type Result struct {
	// Cursor is where Normal mode continues.
	Cursor buffer.Pos
	// Typed holds the keys that reproduce the insertion, without the
	// final Esc.
	Typed []key.Code
	// Start and End bound the inserted text for the '[ and '] marks.
	Start, End buffer.Pos
	// Interrupted is set when Ctrl-C ended the session; the count is not
	// applied.
	Interrupted bool
	// Restarted is set when a cursor key moved the insert point. Typed
	// then only holds the keys typed after the last move.
	Restarted bool
}

// Editor runs Insert mode sessions.
type Editor struct {
	keys     Keys
	store    Store
	undo     Journal
	regs     Registers
	class    *charclass.Classifier
	settings Settings
}

// New creates an editor. A nil journal disables undo saving and a nil
// classifier uses the defaults.
func New(keys Keys, store Store, undo Journal, class *charclass.Classifier) *Editor {
	if class == nil {
		class = charclass.Default()
	}
	return &Editor{keys: keys, store: store, undo: undo, class: class}
}

// SetSettings replaces the options.
func (e *Editor) SetSettings(s Settings) { e.settings = s }

// SetClass replaces the classifier.
func (e *Editor) SetClass(class *charclass.Classifier) {
	if class != nil {
		e.class = class
	}
}

// SetRegisters enables Ctrl-R.
func (e *Editor) SetRegisters(r Registers) { e.regs = r }

// session is one run of Insert mode.
type session struct {
	e    *Editor
	mode Mode
	cur  buffer.Pos

	// startLine and startCol limit backspacing to the inserted text.
	startLine, startCol int

	typed     []key.Code
	replaying bool
	// replaced holds the text each typed character overwrote in Replace
	// mode so <BS> can put it back.
	replaced []string

	start, end buffer.Pos
	restarted  bool
}

// Run reads keys until the session ends. An error is only returned when
// the key source fails or the store refuses a change.
func (e *Editor) Run(ctx context.Context, req Request) (Result, error) {
	s := &session{
		e:         e,
		mode:      req.Mode,
		cur:       req.Cursor,
		startLine: req.Cursor.Line,
		startCol:  req.Cursor.Col,
		start:     req.Cursor,
		end:       req.Cursor,
	}
	keys := e.keys
	if req.Keys != nil {
		keys = req.Keys
	}
	for {
		ev, err := keys.Next(ctx)
		if err != nil {
			return s.result(false), err
		}
		c := ev.Code
		if c == key.CtrlBSL {
			next, err := keys.Next(ctx)
			if err != nil {
				return s.result(false), err
			}
			if next.Code == key.CtrlN || next.Code == key.CtrlG {
				return s.finish(false), nil
			}
			c = next.Code
		}
		switch c {
		case key.Esc:
			if !s.restarted {
				if err := s.repeat(req); err != nil {
					return s.result(false), err
				}
			}
			return s.finish(false), nil
		case key.CtrlC:
			return s.finish(true), nil
		}
		lr := &liveReader{ctx: ctx, keys: keys}
		err = s.dispatch(lr, c)
		if lr.err != nil {
			err = lr.err
		}
		if err != nil {
			return s.result(false), err
		}
	}
}

// repeat inserts the typed text count-1 more times.
func (s *session) repeat(req Request) error {
	if req.Count <= 1 || len(s.typed) == 0 {
		return nil
	}
	keys := append([]key.Code(nil), s.typed...)
	s.replaying = true
	defer func() { s.replaying = false }()
	for range req.Count - 1 {
		if req.NewLine {
			if err := s.newline(); err != nil {
				return err
			}
		}
		src := &replaySource{keys: keys}
		for len(src.keys) > 0 {
			if err := s.dispatch(src, src.next()); err != nil {
				return err
			}
		}
	}
	return nil
}

// replaySource feeds recorded keys back through dispatch, including the
// keys Ctrl-V and Ctrl-K read.
type replaySource struct {
	keys []key.Code
}

func (r *replaySource) next() key.Code {
	if len(r.keys) == 0 {
		return key.Esc
	}
	c := r.keys[0]
	r.keys = r.keys[1:]
	return c
}

// reader supplies the keys that follow Ctrl-V, Ctrl-K and Ctrl-R.
type reader interface {
	next() key.Code
}

// liveReader reads follow-up keys from the key source and keeps the
// first error.
type liveReader struct {
	ctx  context.Context
	keys Keys
	err  error
}

func (l *liveReader) next() key.Code {
	if l.err != nil {
		return key.Esc
	}
	ev, err := l.keys.Next(l.ctx)
	if err != nil {
		l.err = err
		return key.Esc
	}
	return ev.Code
}

func (s *session) result(interrupted bool) Result {
	return Result{
		Cursor:      s.cur,
		Typed:       s.typed,
		Start:       s.start,
		End:         s.end,
		Interrupted: interrupted,
		Restarted:   s.restarted,
	}
}

// finish moves the cursor back onto the last inserted character.
func (s *session) finish(interrupted bool) Result {
	r := s.result(interrupted)
	line := s.e.store.Line(s.cur.Line)
	if s.cur.Col > 0 {
		r.Cursor.Col = charclass.PrevCharStart(line, min(s.cur.Col, len(line)))
	}
	return r
}

func (s *session) record(codes ...key.Code) {
	if !s.replaying {
		s.typed = append(s.typed, codes...)
	}
}

// dispatch processes one key; rd supplies the keys Ctrl-V, Ctrl-K and
// Ctrl-R read after it.
func (s *session) dispatch(rd reader, c key.Code) error {
	switch c {
	case key.CR, key.NL, key.KEnter:
		s.record(key.CR)
		return s.newline()
	case key.BS, key.CtrlH:
		s.record(key.BS)
		return s.backspace()
	case key.Del, key.KDel:
		s.record(key.Del)
		return s.deleteUnder()
	case key.CtrlW:
		s.record(key.CtrlW)
		return s.deleteWordBefore()
	case key.CtrlU:
		s.record(key.CtrlU)
		return s.deleteLineBefore()
	case key.Tab:
		s.record(key.Tab)
		return s.tab()
	case key.CtrlT, key.CtrlD:
		s.record(c)
		return s.shiftIndent(c == key.CtrlD)
	case key.CtrlV, key.CtrlQ:
		lit := rd.next()
		s.record(key.CtrlV, lit)
		if lit.IsSpecial() {
			return s.insert(key.Format([]key.Code{lit}))
		}
		return s.insert(string(lit.Rune()))
	case key.CtrlK:
		a := rd.next()
		if a.IsSpecial() {
			return s.insert(key.Format([]key.Code{a}))
		}
		b := rd.next()
		d, _ := key.Digraph(a, b)
		s.record(key.CtrlK, a, b)
		return s.insert(string(d.Rune()))
	case key.CtrlR:
		name := rd.next()
		s.record(key.CtrlR, name)
		return s.insertRegister(rune(name))
	case key.Left, key.Right, key.Up, key.Down, key.Home, key.End, key.KHome, key.KEnd:
		s.move(c)
		return nil
	case key.Insert, key.KInsert:
		if s.mode == ModeInsert {
			s.mode = ModeReplace
		} else {
			s.mode = ModeInsert
		}
		s.record(c)
		return nil
	}
	if c.IsSpecial() || (c < key.Space && c != key.NUL) {
		return nil
	}
	s.record(c)
	return s.insert(string(c.Rune()))
}

func (s *session) save(lnum int) error {
	if s.e.undo == nil {
		return nil
	}
	return s.e.undo.Save(lnum-1, lnum+1, s.cur)
}

func (s *session) replace(lnum int, text string) error {
	if err := s.e.store.ReplaceLine(lnum, text); err != nil {
		return errors.Join(ErrNotModifiable, err)
	}
	return nil
}

// insert puts text at the cursor.
func (s *session) insert(text string) error {
	if err := s.save(s.cur.Line); err != nil {
		return err
	}
	line := s.e.store.Line(s.cur.Line)
	col := min(s.cur.Col, len(line))
	var nl string
	if s.mode == ModeReplace && col < len(line) {
		n := charclass.CharLen(line, col)
		s.replaced = append(s.replaced, line[col:col+n])
		nl = line[:col] + text + line[col+n:]
	} else {
		if s.mode == ModeReplace {
			s.replaced = append(s.replaced, "")
		}
		nl = line[:col] + text + line[col:]
	}
	if err := s.replace(s.cur.Line, nl); err != nil {
		return err
	}
	s.cur.Col = col + len(text)
	s.end = buffer.Pos{Line: s.cur.Line, Col: max(s.cur.Col-1, 0)}
	return nil
}

func (s *session) insertRegister(name rune) error {
	if s.e.regs == nil {
		return nil
	}
	reg, err := s.e.regs.Get(name)
	if err != nil || reg.Empty() {
		return nil
	}
	for i, l := range reg.Lines {
		if i > 0 {
			if err := s.newline(); err != nil {
				return err
			}
		}
		if l != "" {
			if err := s.insert(l); err != nil {
				return err
			}
		}
	}
	if reg.Type == vim.MotionLinewise {
		return s.newline()
	}
	return nil
}

// newline splits the line at the cursor.
func (s *session) newline() error {
	lnum := s.cur.Line
	if err := s.save(lnum); err != nil {
		return err
	}
	line := s.e.store.Line(lnum)
	col := min(s.cur.Col, len(line))
	head, tail := line[:col], line[col:]
	indent := ""
	if s.e.settings.AutoIndent {
		indent = leadingWhite(line)
		if len(indent) > col {
			indent = indent[:col]
		}
		tail = trimLeftWhite(tail)
		if trimLeftWhite(head) == "" {
			// A line holding only indent is left empty.
			head = ""
		}
	}
	if err := s.replace(lnum, head); err != nil {
		return err
	}
	if err := s.e.store.AppendLine(lnum, indent+tail); err != nil {
		return errors.Join(ErrNotModifiable, err)
	}
	s.cur = buffer.Pos{Line: lnum + 1, Col: len(indent)}
	s.end = s.cur
	return nil
}

// move handles a cursor key. The insertion so far is finished and a new
// one starts at the new position.
func (s *session) move(c key.Code) {
	line := s.e.store.Line(s.cur.Line)
	switch c {
	case key.Left:
		if s.cur.Col > 0 {
			s.cur.Col = charclass.PrevCharStart(line, min(s.cur.Col, len(line)))
		}
	case key.Right:
		if s.cur.Col < len(line) {
			s.cur.Col += charclass.CharLen(line, s.cur.Col)
		}
	case key.Up, key.Down:
		lnum := s.cur.Line - 1
		if c == key.Down {
			lnum = s.cur.Line + 1
		}
		if lnum < 1 || lnum > s.e.store.LineCount() {
			return
		}
		vcol, _ := s.e.class.VirtCol(line, min(s.cur.Col, len(line)))
		target := s.e.store.Line(lnum)
		s.cur = buffer.Pos{Line: lnum, Col: s.e.class.ColAt(target, vcol)}
		if len(target) <= s.cur.Col || s.cur.Col < 0 {
			s.cur.Col = len(target)
		}
	case key.Home, key.KHome:
		s.cur.Col = 0
	case key.End, key.KEnd:
		s.cur.Col = len(line)
	}
	s.typed = nil
	s.replaced = nil
	s.restarted = true
	s.startLine, s.startCol = s.cur.Line, s.cur.Col
	s.start, s.end = s.cur, s.cur
}
