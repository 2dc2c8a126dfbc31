package cmdline

import (
	"context"
	"strings"
	"unicode"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// Line is the state of the line being edited, passed to the display
// callback after every key.
type Line struct {
	FirstC rune
	Text   string
	// Cursor is a rune index into Text.
	Cursor int
}

// Reader reads command lines from keys.
type Reader struct {
	cmds     *History
	searches *History
	regs     *vim.RegisterStore
	show     func(Line)
}

// NewReader creates a reader. Registers are used by Ctrl-R and may be
// nil.
func NewReader(regs *vim.RegisterStore) *Reader {
	return &Reader{
		cmds:     NewHistory(0),
		searches: NewHistory(0),
		regs:     regs,
	}
}

// OnChange sets the function called whenever the line changes, so a
// terminal can draw it.
func (r *Reader) OnChange(fn func(Line)) {
	r.show = fn
}

// History returns the history used for lines started with firstc.
func (r *Reader) History(firstc rune) *History {
	if firstc == '/' || firstc == '?' {
		return r.searches
	}
	return r.cmds
}

// Read edits a line until Enter. Esc typed by the user or Ctrl-C abandon
// it with execctx.ErrCmdlineAborted, as does Backspace on an empty line.
// Esc coming from a mapping or register executes the line, as in Vi.
func (r *Reader) Read(ctx context.Context, keys key.Reader, firstc rune) (string, error) {
	hist := r.History(firstc)
	b := hist.browse()
	ed := &lineEditor{}
	r.redraw(firstc, ed)

	for {
		ev, err := keys.Next(ctx)
		if err != nil {
			return "", err
		}
		switch c := ev.Code; c {
		case key.CR, key.NL, key.KEnter:
			return r.accept(hist, ed), nil
		case key.Esc:
			if !ev.Typed {
				return r.accept(hist, ed), nil
			}
			return "", execctx.ErrCmdlineAborted
		case key.CtrlC:
			return "", execctx.ErrCmdlineAborted
		case key.BS, key.CtrlH, key.DelChar:
			if len(ed.buf) == 0 {
				return "", execctx.ErrCmdlineAborted
			}
			ed.backspace()
		case key.Del, key.KDel:
			ed.del()
		case key.CtrlW:
			ed.deleteWord()
		case key.CtrlU:
			ed.buf = ed.buf[ed.pos:]
			ed.pos = 0
		case key.Left:
			ed.pos = max(ed.pos-1, 0)
		case key.Right:
			ed.pos = min(ed.pos+1, len(ed.buf))
		case key.Home, key.KHome, key.CtrlB:
			ed.pos = 0
		case key.End, key.KEnd, key.CtrlE:
			ed.pos = len(ed.buf)
		case key.Up, key.Down, key.CtrlP, key.CtrlN:
			prefix := ""
			if c == key.Up || c == key.Down {
				prefix = string(ed.buf[:ed.pos])
			}
			b.start(string(ed.buf), prefix)
			var (
				s  string
				ok bool
			)
			if c == key.Up || c == key.CtrlP {
				s, ok = b.prev()
			} else {
				s, ok = b.next()
			}
			if ok {
				ed.set(s)
			}
		case key.CtrlV, key.CtrlQ:
			lit, err := keys.Next(ctx)
			if err != nil {
				return "", err
			}
			if !lit.Code.IsSpecial() {
				ed.insert(lit.Code.Rune())
			}
		case key.CtrlK:
			if err := r.digraph(ctx, keys, ed); err != nil {
				return "", err
			}
		case key.CtrlR:
			name, err := keys.Next(ctx)
			if err != nil {
				return "", err
			}
			r.insertRegister(ed, name.Code)
		default:
			if !c.IsSpecial() {
				ed.insert(c.Rune())
			}
		}
		r.redraw(firstc, ed)
	}
}

func (r *Reader) accept(hist *History, ed *lineEditor) string {
	s := string(ed.buf)
	hist.Add(s)
	return s
}

func (r *Reader) redraw(firstc rune, ed *lineEditor) {
	if r.show != nil {
		r.show(Line{FirstC: firstc, Text: string(ed.buf), Cursor: ed.pos})
	}
}

// digraph reads the two characters after Ctrl-K. When they are no
// digraph the second one is inserted.
func (r *Reader) digraph(ctx context.Context, keys key.Reader, ed *lineEditor) error {
	a, err := keys.Next(ctx)
	if err != nil {
		return err
	}
	if a.Code.IsSpecial() {
		return nil
	}
	b, err := keys.Next(ctx)
	if err != nil {
		return err
	}
	if b.Code.IsSpecial() {
		return nil
	}
	if c, ok := key.Digraph(a.Code, b.Code); ok {
		ed.insert(c.Rune())
	} else {
		ed.insert(b.Code.Rune())
	}
	return nil
}

// insertRegister inserts the contents of a register as if typed. Line
// breaks become literal carriage returns.
func (r *Reader) insertRegister(ed *lineEditor, name key.Code) {
	if r.regs == nil || name.IsSpecial() {
		return
	}
	reg, err := r.regs.Get(name.Rune())
	if err != nil {
		return
	}
	for _, ch := range strings.ReplaceAll(reg.Text(), "\n", "\r") {
		ed.insert(ch)
	}
}

// lineEditor is the text of a command line and the cursor in it.
type lineEditor struct {
	buf []rune
	pos int
}

func (e *lineEditor) insert(r rune) {
	e.buf = append(e.buf, 0)
	copy(e.buf[e.pos+1:], e.buf[e.pos:])
	e.buf[e.pos] = r
	e.pos++
}

func (e *lineEditor) backspace() {
	if e.pos == 0 {
		return
	}
	e.buf = append(e.buf[:e.pos-1], e.buf[e.pos:]...)
	e.pos--
}

// del deletes the character under the cursor, or the one before it at
// the end of the line.
func (e *lineEditor) del() {
	if e.pos == len(e.buf) {
		e.backspace()
		return
	}
	e.buf = append(e.buf[:e.pos], e.buf[e.pos+1:]...)
}

// deleteWord deletes the blanks before the cursor and then the word
// before them.
func (e *lineEditor) deleteWord() {
	i := e.pos
	for i > 0 && unicode.IsSpace(e.buf[i-1]) {
		i--
	}
	if i > 0 {
		word := isWordRune(e.buf[i-1])
		for i > 0 && !unicode.IsSpace(e.buf[i-1]) && isWordRune(e.buf[i-1]) == word {
			i--
		}
	}
	e.buf = append(e.buf[:i], e.buf[e.pos:]...)
	e.pos = i
}

func (e *lineEditor) set(s string) {
	e.buf = []rune(s)
	e.pos = len(e.buf)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
