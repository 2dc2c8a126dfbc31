package dispatcher

import (
	"fmt"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// window is the visible part of the buffer. Lines are 1-based; top is
// the first visible line.
type window struct {
	top    int
	height int
	width  int
	// left is the first screen column shown; lines do not wrap.
	left int
	// scroll is the 'scroll' value for Ctrl-D and Ctrl-U, 0 for half the
	// height.
	scroll int
}

func (w *window) bottom(lineCount int) int {
	return min(w.top+w.height-1, lineCount)
}

func (w *window) halfPage() int {
	if w.scroll > 0 {
		return w.scroll
	}
	return max(w.height/2, 1)
}

// scrollTo puts line at the top, keeping the last line on screen.
func (w *window) scrollTo(line, lineCount int) {
	w.top = max(1, min(line, lineCount))
}

// follow scrolls the least amount that brings lnum into view.
func (w *window) follow(lnum, lineCount int) {
	switch {
	case lnum < w.top:
		w.top = lnum
	case lnum > w.bottom(lineCount):
		w.top = lnum - w.height + 1
	}
	w.top = max(1, min(w.top, lineCount))
}

// followCol scrolls sideways the least amount that shows screen column
// vcol.
func (w *window) followCol(vcol int) {
	switch {
	case vcol < w.left:
		w.left = vcol
	case vcol >= w.left+w.width:
		w.left = vcol - w.width + 1
	}
}

// clampCursor moves lnum into the visible lines.
func (w *window) clampCursor(lnum, lineCount int) int {
	return max(w.top, min(lnum, w.bottom(lineCount)))
}

// Window returns the first visible line and the number of lines shown.
func (d *Dispatcher) Window() (top, height int) {
	return d.win.top, d.win.height
}

// LeftCol returns the first screen column shown.
func (d *Dispatcher) LeftCol() int {
	return d.win.left
}

// SetWindowSize changes the screen size, for example after a terminal
// resize.
func (d *Dispatcher) SetWindowSize(width, height int) {
	if width > 0 {
		d.win.width = width
	}
	d.SetWindowHeight(height)
}

// SetWindowHeight changes the number of lines shown.
func (d *Dispatcher) SetWindowHeight(h int) {
	if h > 0 {
		d.win.height = h
		d.win.follow(d.cur.Line, d.lines.LineCount())
	}
}

// moveToLine puts the cursor on lnum at the first non-blank, or keeps the
// column when 'startofline' is off.
func (d *Dispatcher) moveToLine(lnum int) {
	d.cur.Line = max(1, min(lnum, d.lines.LineCount()))
	if d.opts.StartOfLine {
		d.beginLine(blWhite | blFix)
		return
	}
	d.coladvance(d.curswant)
}

// nvPage handles Ctrl-F, Ctrl-B and the page keys. In Visual mode with
// shift a page key extends the selection.
func (d *Dispatcher) nvPage(ca *execctx.CmdArg) error {
	if err := d.checkClearOp(); err != nil {
		return err
	}
	n := d.lines.LineCount()
	step := max(d.win.height-2, 1) * ca.Count1
	if ca.Arg == argForward {
		if d.win.top >= n {
			return fmt.Errorf("%w: at end of buffer", execctx.ErrMotionFailed)
		}
		d.win.scrollTo(d.win.top+step, n)
	} else {
		if d.win.top <= 1 {
			return fmt.Errorf("%w: at start of buffer", execctx.ErrMotionFailed)
		}
		d.win.scrollTo(d.win.top-step, n)
	}
	d.moveToLine(d.win.clampCursor(d.cur.Line, n))
	return nil
}

// nvHalfPage handles Ctrl-D and Ctrl-U. A count sets the scroll amount
// for later ones.
func (d *Dispatcher) nvHalfPage(ca *execctx.CmdArg) error {
	if err := d.checkClearOp(); err != nil {
		return err
	}
	n := d.lines.LineCount()
	if ca.Count0 > 0 {
		d.win.scroll = min(ca.Count0, d.win.height)
	}
	amount := d.win.halfPage()
	if ca.CmdChar == key.CtrlD {
		if d.cur.Line >= n {
			return fmt.Errorf("%w: at end of buffer", execctx.ErrMotionFailed)
		}
		d.win.scrollTo(d.win.top+amount, n)
		d.moveToLine(d.cur.Line + amount)
	} else {
		if d.cur.Line <= 1 {
			return fmt.Errorf("%w: at start of buffer", execctx.ErrMotionFailed)
		}
		d.win.scrollTo(d.win.top-amount, n)
		d.moveToLine(d.cur.Line - amount)
	}
	d.win.follow(d.cur.Line, n)
	return nil
}

// nvScrollLine handles Ctrl-E (Arg 1) and Ctrl-Y. The cursor stays on its
// line unless that scrolls off the screen.
func (d *Dispatcher) nvScrollLine(ca *execctx.CmdArg) error {
	n := d.lines.LineCount()
	if ca.Arg == 1 {
		d.win.scrollTo(d.win.top+ca.Count1, n)
	} else {
		d.win.scrollTo(d.win.top-ca.Count1, n)
	}
	if lnum := d.win.clampCursor(d.cur.Line, n); lnum != d.cur.Line {
		d.cur.Line = lnum
		d.coladvance(d.curswant)
	}
	return nil
}

// nvScreenLine handles "H", "L" and "M". A count for "H" and "L" is an
// offset from the top or bottom line.
func (d *Dispatcher) nvScreenLine(ca *execctx.CmdArg) error {
	d.oap.MotionType = vim.MotionLinewise
	d.setCurswant = true
	n := d.lines.LineCount()
	bot := d.win.bottom(n)

	var lnum int
	switch ca.CmdChar {
	case 'H':
		lnum = min(d.win.top+ca.Count1-1, bot)
	case 'L':
		lnum = max(bot-ca.Count1+1, d.win.top)
	default:
		lnum = d.win.top + (bot-d.win.top)/2
	}
	d.cur = buffer.Pos{Line: lnum}
	if !d.oap.Pending() || d.opts.StartOfLine {
		d.beginLine(blWhite | blFix)
	}
	return nil
}

// redrawAt handles "zt", "zz", "zb" and their variants that also move to
// the first non-blank. A count selects the line first.
func (d *Dispatcher) redrawAt(ca *execctx.CmdArg, where key.Code) {
	n := d.lines.LineCount()
	if ca.Count0 > 0 && ca.Count0 != d.cur.Line {
		d.setPCMark()
		d.cur.Line = min(ca.Count0, n)
		d.cur = d.text.Clamp(d.cur, false)
	}
	switch where {
	case '+':
		// Without a count the line below the window comes to the top.
		if ca.Count0 == 0 {
			d.cur.Line = min(d.win.bottom(n)+1, n)
		}
	case '^':
		switch {
		case ca.Count0 != 0:
			d.win.scrollTo(d.cur.Line-d.win.height+1, n)
			d.cur.Line = d.win.top
		case d.win.top == 1:
			d.cur.Line = 1
		default:
			d.cur.Line = d.win.top - 1
		}
	}
	switch where {
	case '+', key.CR, key.NL, key.KEnter, '.', '^', '-':
		d.beginLine(blWhite | blFix)
	}
	switch where {
	case 't', '+', key.CR, key.NL, key.KEnter:
		d.win.scrollTo(d.cur.Line, n)
	case 'z', '.':
		d.win.scrollTo(d.cur.Line-d.win.height/2, n)
	default:
		d.win.scrollTo(d.cur.Line-d.win.height+1, n)
	}
}

// scrollSideways sets the first screen column shown and keeps the cursor
// on screen.
func (d *Dispatcher) scrollSideways(left int) {
	d.win.left = max(left, 0)
	vcol, _ := d.text.VirtCol(d.cur)
	switch {
	case vcol < d.win.left:
		d.coladvance(d.win.left)
	case vcol >= d.win.left+d.win.width:
		d.coladvance(d.win.left + d.win.width - 1)
	}
}
