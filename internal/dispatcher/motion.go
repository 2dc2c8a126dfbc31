package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// coladvance moves the cursor on its line to screen column wcol.
func (d *Dispatcher) coladvance(wcol int) {
	d.cur.Col = d.text.Coladvance(d.lines.Line(d.cur.Line), wcol, d.onemore())
}

// updateCurswant makes the wanted column the cursor column if a
// horizontal motion asked for it.
func (d *Dispatcher) updateCurswant() {
	if d.setCurswant {
		d.curswant, _ = d.text.VirtCol(d.cur)
		d.setCurswant = false
	}
}

// beginLine moves the cursor to the start of the line. blWhite skips
// leading blanks, blFix stays on the last blank of a blank line and blSol
// only moves when 'startofline' is set.
func (d *Dispatcher) beginLine(flags int) {
	if flags&blSol != 0 && !d.opts.StartOfLine {
		d.coladvance(d.curswant)
	} else {
		d.cur.Col = 0
		if flags&(blWhite|blSol) != 0 {
			d.cur.Col = cursor.FirstNonBlank(d.lines.Line(d.cur.Line), flags&blFix != 0)
		}
		d.setCurswant = true
	}
}

// setPCMark remembers the cursor in the "'" mark before a jump.
func (d *Dispatcher) setPCMark() {
	_ = d.marks.Set('\'', d.cur)
}

// adjustCursor moves the cursor off the end of the line, making the
// pending motion inclusive.
func (d *Dispatcher) adjustCursor() {
	line := d.lines.Line(d.cur.Line)
	if d.cur.Col > 0 && d.cur.Col >= len(line) && (!d.visual.Active || d.opts.Selection == "old") {
		d.cur.Col = charclass.LastCharStart(line)
		if d.oap.Pending() {
			d.oap.Inclusive = true
		}
	}
}

// adjustForSel includes the character under the cursor in an exclusive
// selection that moved forward.
func (d *Dispatcher) adjustForSel(ca *execctx.CmdArg) {
	if d.visual.Active && ca.OAP.Inclusive && d.opts.Selection == "exclusive" &&
		d.text.Gchar(d.cur) != 0 && !d.cur.Before(d.visual.Start) {
		d.text.Inc(&d.cur)
		ca.OAP.Inclusive = false
	}
}

// wrapAllowed reports whether 'whichwrap' lets c move across lines.
func (d *Dispatcher) wrapAllowed(c key.Code) bool {
	var flag string
	switch c {
	case key.BS, key.CtrlH:
		flag = "b"
	case ' ':
		flag = "s"
	case 'h':
		flag = "h"
	case 'l':
		flag = "l"
	case key.Left:
		flag = "<"
	case key.Right:
		flag = ">"
	default:
		return false
	}
	return config.HasFlag(d.opts.WhichWrap, flag)
}

var errAtBoundary = fmt.Errorf("%w: at buffer boundary", execctx.ErrMotionFailed)

// motionFailed wraps a failure of a motion algorithm.
func motionFailed(err error) error {
	if errors.Is(err, execctx.ErrMotionFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", execctx.ErrMotionFailed, err)
}

// nvLeft handles "h", Backspace and the left arrow.
func (d *Dispatcher) nvLeft(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = false
	d.setCurswant = true
	for n := ca.Count1; n > 0; n-- {
		line := d.lines.Line(d.cur.Line)
		if d.cur.Col > 0 {
			d.cur.Col = charclass.PrevCharStart(line, min(d.cur.Col, len(line)))
			continue
		}
		if d.wrapAllowed(ca.CmdChar) && d.cur.Line > 1 {
			d.cur.Line--
			d.coladvance(buffer.MaxCol)
			// Deleting back over a line break puts the cursor after the
			// last character so the break goes too.
			if (ca.OAP.OpType == vim.OpDelete || ca.OAP.OpType == vim.OpChange) && !d.text.LineEmpty(d.cur.Line) {
				d.cur.Col = len(d.lines.Line(d.cur.Line))
				ca.RetVal |= execctx.NoAdjustOpEnd
			}
			continue
		}
		if !ca.OAP.Pending() && n == ca.Count1 {
			d.beep(errAtBoundary)
		}
		break
	}
	return nil
}

// nvRight handles "l", Space and the right arrow.
func (d *Dispatcher) nvRight(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = false
	pastLine := d.visual.Active && d.opts.Selection != "old"
	for n := ca.Count1; n > 0; n-- {
		line := d.lines.Line(d.cur.Line)
		next := d.cur.Col + charclass.CharLen(line, d.cur.Col)
		atEnd := next >= len(line)
		if pastLine {
			atEnd = d.cur.Col >= len(line)
		}
		if !atEnd {
			d.cur.Col = next
			d.setCurswant = true
			continue
		}
		if d.wrapAllowed(ca.CmdChar) && d.cur.Line < d.lines.LineCount() {
			// An operator takes the line break as one more character.
			if ca.OAP.Pending() && !ca.OAP.Inclusive && !d.text.LineEmpty(d.cur.Line) {
				ca.OAP.Inclusive = true
			} else {
				d.cur = buffer.Pos{Line: d.cur.Line + 1}
				ca.OAP.Inclusive = false
			}
			d.setCurswant = true
			continue
		}
		if !ca.OAP.Pending() {
			if n == ca.Count1 {
				d.beep(errAtBoundary)
			}
		} else if !d.text.LineEmpty(d.cur.Line) {
			ca.OAP.Inclusive = true
		}
		break
	}
	return nil
}

// cursorUp moves n lines up, counting a closed fold as one line.
func (d *Dispatcher) cursorUp(n int) error {
	lnum := d.cur.Line
	if n > 0 && lnum <= 1 {
		return errAtBoundary
	}
	for ; n > 0 && lnum > 1; n-- {
		lnum--
		if first, _, ok := d.folds.Closed(lnum); ok {
			lnum = first
		}
	}
	d.cur.Line = lnum
	d.coladvance(d.curswant)
	return nil
}

// cursorDown moves n lines down, counting a closed fold as one line.
func (d *Dispatcher) cursorDown(n int) error {
	lnum := d.cur.Line
	last := d.lines.LineCount()
	if n > 0 {
		if _, l, ok := d.folds.Closed(lnum); ok {
			lnum = l
		}
		if lnum >= last {
			return errAtBoundary
		}
	}
	for ; n > 0 && lnum < last; n-- {
		lnum++
		if _, l, ok := d.folds.Closed(lnum); ok && n > 1 {
			lnum = l
		}
	}
	d.cur.Line = min(lnum, last)
	d.coladvance(d.curswant)
	return nil
}

// nvUp handles "k", "-", Ctrl-P and the up arrow. With Arg set the cursor
// goes to the first non-blank.
func (d *Dispatcher) nvUp(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionLinewise
	d.updateCurswant()
	if err := d.cursorUp(ca.Count1); err != nil {
		return err
	}
	if ca.Arg != 0 {
		d.beginLine(blWhite | blFix)
	}
	return nil
}

// nvDown handles "j", "+", Enter, Ctrl-N, Ctrl-J and the down arrow.
func (d *Dispatcher) nvDown(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionLinewise
	d.updateCurswant()
	if err := d.cursorDown(ca.Count1); err != nil {
		return err
	}
	if ca.Arg != 0 {
		d.beginLine(blWhite | blFix)
	}
	return nil
}

// nvDollar handles "$": to the end of the line count-1 lines down.
func (d *Dispatcher) nvDollar(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = true
	d.curswant = buffer.MaxCol
	d.setCurswant = false
	if err := d.cursorDown(ca.Count1 - 1); err != nil {
		return err
	}
	d.coladvance(buffer.MaxCol)
	return nil
}

// nvBeginLine handles "0" and "^".
func (d *Dispatcher) nvBeginLine(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = false
	d.beginLine(ca.Arg)
	return nil
}

// nvPipe handles "|": to screen column count.
func (d *Dispatcher) nvPipe(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = false
	d.beginLine(0)
	d.curswant = max(ca.Count0-1, 0)
	d.setCurswant = false
	d.coladvance(d.curswant)
	return nil
}

// nvHome handles Home; with Ctrl it goes to the first line.
func (d *Dispatcher) nvHome(ca *execctx.CmdArg) error {
	if d.mods.Has(key.ModCtrl) {
		return d.nvGoto(ca)
	}
	ca.Count0 = 1
	return d.nvPipe(ca)
}

// nvEnd handles End; Ctrl-End (Arg 1) goes to the last line first.
func (d *Dispatcher) nvEnd(ca *execctx.CmdArg) error {
	if ca.Arg != 0 || d.mods.Has(key.ModCtrl) {
		ca.Arg = 1
		if err := d.nvGoto(ca); err != nil {
			return err
		}
		ca.Count1 = 1
	}
	return d.nvDollar(ca)
}

// nvGoto handles "G", "gg" and Ctrl-Home. Without a count "G" (Arg 1)
// goes to the last line and the others to the first.
func (d *Dispatcher) nvGoto(ca *execctx.CmdArg) error {
	lnum := 1
	if ca.Arg != 0 {
		lnum = d.lines.LineCount()
	}
	ca.OAP.MotionType = vim.MotionLinewise
	d.setPCMark()
	if ca.Count0 != 0 {
		lnum = ca.Count0
	}
	d.cur.Line = max(1, min(lnum, d.lines.LineCount()))
	d.beginLine(blSol | blFix)
	return nil
}

// nvPercent handles "%": to the matching pair, or with a count to that
// percentage of the buffer.
func (d *Dispatcher) nvPercent(ca *execctx.CmdArg) error {
	ca.OAP.Inclusive = true
	if ca.Count0 > 0 {
		if ca.Count0 > 100 {
			return fmt.Errorf("%w: %d%%", execctx.ErrMotionFailed, ca.Count0)
		}
		d.setPCMark()
		n := d.lines.LineCount()
		d.cur.Line = max(1, min((ca.Count0*n+99)/100, n))
		ca.OAP.MotionType = vim.MotionLinewise
		d.beginLine(blSol | blFix)
		return nil
	}
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.UseRegOne = true
	p, err := d.text.FindMatch(d.cur, d.pairs)
	if err != nil {
		return motionFailed(err)
	}
	d.setPCMark()
	d.cur = p
	d.setCurswant = true
	d.adjustForSel(ca)
	return nil
}

// nvBrace handles "(" and ")": sentences.
func (d *Dispatcher) nvBrace(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.UseRegOne = true
	ca.OAP.Inclusive = false
	d.setCurswant = true
	dir := cursor.Backward
	if ca.Arg == argForward {
		dir = cursor.Forward
	}
	p, err := d.text.FindSent(d.cur, dir, ca.Count1, d.opts.HasCpo('J'))
	if err != nil {
		return motionFailed(err)
	}
	d.setPCMark()
	d.cur = p
	d.adjustCursor()
	return nil
}

// nvFindPar handles "{" and "}": paragraphs.
func (d *Dispatcher) nvFindPar(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = false
	ca.OAP.UseRegOne = true
	d.setCurswant = true
	dir := cursor.Backward
	if ca.Arg == argForward {
		dir = cursor.Forward
	}
	p, incl, err := d.text.FindPar(d.cur, dir, ca.Count1, 0, false)
	if err != nil {
		return motionFailed(err)
	}
	d.setPCMark()
	d.cur = p
	ca.OAP.Inclusive = incl
	return nil
}

// nvBckWord handles "b", "B", Shift-Left and Ctrl-Left.
func (d *Dispatcher) nvBckWord(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = false
	d.setCurswant = true
	p, err := d.text.BckWord(d.cur, ca.Count1, ca.Arg != 0, false)
	d.cur = p
	if err != nil {
		return motionFailed(err)
	}
	return nil
}

// nvWordCmd handles "w", "W", "e", "E", Shift-Right and Ctrl-Right.
func (d *Dispatcher) nvWordCmd(ca *execctx.CmdArg) error {
	wordEnd := ca.CmdChar == 'e' || ca.CmdChar == 'E'
	bigword := ca.Arg != 0
	stop := false
	start := d.cur

	// "cw" is "ce" unless the cursor is on a blank; with 'w' in
	// cpoptions "cw" on a blank changes just that blank.
	if !wordEnd && ca.OAP.OpType == vim.OpChange {
		if c := d.text.Gchar(d.cur); c != 0 {
			if charclass.IsBlank(c) {
				if ca.Count1 == 1 && d.opts.HasCpo('w') {
					ca.OAP.Inclusive = true
					ca.OAP.MotionType = vim.MotionCharwise
					return nil
				}
			} else {
				wordEnd = true
			}
			stop = true
		}
	}

	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = wordEnd
	d.setCurswant = true

	var (
		p   buffer.Pos
		err error
	)
	if wordEnd {
		p, err = d.text.EndWord(d.cur, ca.Count1, bigword, stop, false)
	} else {
		p, err = d.text.FwdWord(d.cur, ca.Count1, bigword, ca.OAP.Pending())
	}
	d.cur = p
	if start.Before(d.cur) {
		d.adjustCursor()
	}
	if err != nil && !ca.OAP.Pending() {
		return motionFailed(err)
	}
	d.adjustForSel(ca)
	return nil
}

// nvEndWordBack handles "ge" and "gE".
func (d *Dispatcher) nvEndWordBack(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = true
	d.setCurswant = true
	p, err := d.text.BckendWord(d.cur, ca.Count1, ca.NChar == 'E', false)
	if err != nil {
		return motionFailed(err)
	}
	d.cur = p
	return nil
}

// nvCsearch handles "f", "F", "t", "T", ";" and ",".
func (d *Dispatcher) nvCsearch(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	var (
		p   buffer.Pos
		dir int
		err error
	)
	switch ca.CmdChar {
	case ';', ',':
		p, dir, err = d.csearch.Repeat(d.text, d.cur, ca.Arg != 0, ca.Count1, d.opts.HasCpo(';'))
	default:
		if ca.NChar.IsSpecial() {
			return fmt.Errorf("%w: %s", execctx.ErrMotionFailed, ca.NChar)
		}
		dir = cursor.Backward
		if ca.Arg == argForward {
			dir = cursor.Forward
		}
		till := ca.CmdChar == 't' || ca.CmdChar == 'T'
		p, err = d.csearch.Find(d.text, d.cur, ca.NChar.Rune(), dir, till, ca.Count1, !d.dotPending)
	}
	if err != nil {
		return motionFailed(err)
	}
	d.cur = p
	ca.OAP.Inclusive = dir == cursor.Forward
	d.setCurswant = true
	d.adjustForSel(ca)
	return nil
}

// nvGomark handles "'x" (Arg 1, linewise) and "`x", and "g'" and "g`"
// which do not set the previous context mark.
func (d *Dispatcher) nvGomark(ca *execctx.CmdArg) error {
	c := ca.NChar
	if ca.CmdChar == 'g' {
		c = ca.ExtraChar
	}
	linewise := ca.Arg != 0
	ca.OAP.Inclusive = false
	d.setCurswant = true
	if linewise {
		ca.OAP.MotionType = vim.MotionLinewise
	} else {
		ca.OAP.MotionType = vim.MotionCharwise
		ca.OAP.UseRegOne = true
	}
	if c.IsSpecial() {
		return fmt.Errorf("%w: mark %s", execctx.ErrMotionFailed, c)
	}
	p, err := d.marks.Get(c.Rune())
	if err != nil {
		return motionFailed(err)
	}
	if p.Line < 1 || p.Line > d.lines.LineCount() {
		return fmt.Errorf("%w: mark %s beyond the end of the buffer", execctx.ErrMotionFailed, c)
	}
	if ca.CmdChar != 'g' {
		d.setPCMark()
	}
	d.cur = p
	if linewise {
		d.beginLine(blWhite | blFix)
	} else {
		d.cur = d.text.Clamp(d.cur, d.onemore())
	}
	return nil
}

// nvBrackets handles the "[" and "]" commands: unmatched parens and
// braces, section motions and "[p"/"]p".
func (d *Dispatcher) nvBrackets(ctx context.Context, ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = false
	forward := ca.CmdChar == ']'
	dir := cursor.Backward
	if forward {
		dir = cursor.Forward
	}

	switch ca.NChar {
	case '(', '{', ')', '}':
		open, closer := '(', ')'
		if ca.NChar == '{' || ca.NChar == '}' {
			open, closer = '{', '}'
		}
		if (ca.NChar == '(' || ca.NChar == '{') == forward {
			return fmt.Errorf("%w: %s%s", execctx.ErrUnknownCommand, ca.CmdChar, ca.NChar)
		}
		p, err := d.text.FindUnmatched(d.cur, open, closer, dir, ca.Count1)
		if err != nil {
			return motionFailed(err)
		}
		d.setPCMark()
		d.cur = p
		d.setCurswant = true
		return nil

	case '[', ']':
		// "[[" and "]]" go to a '{' in column zero, "[]" and "][" to a '}'.
		what := '{'
		if ca.NChar != ca.CmdChar {
			what = '}'
		}
		d.setCurswant = true
		p, incl, err := d.text.FindPar(d.cur, dir, ca.Count1, what, ca.OAP.Pending() && forward && what == '{')
		if err != nil {
			return motionFailed(err)
		}
		d.setPCMark()
		d.cur = p
		ca.OAP.Inclusive = incl
		if ca.OAP.Pending() {
			ca.OAP.MotionType = vim.MotionLinewise
		}
		return nil

	case 'p', 'P':
		if err := d.checkClearOpQ(); err != nil {
			return err
		}
		dir := cursor.Forward
		if !forward || ca.NChar == 'P' {
			dir = cursor.Backward
		}
		return d.doPut(ctx, ca, dir, operator.PutFixIndent)
	}
	return fmt.Errorf("%w: %s%s", execctx.ErrUnknownCommand, ca.CmdChar, ca.NChar)
}

// nvObject handles the text objects after "a" and "i".
func (d *Dispatcher) nvObject(ca *execctx.CmdArg) error {
	include := ca.CmdChar == 'a'
	sel := cursor.Selection{
		Active:    d.visual.Active,
		Mode:      rune(d.visual.Mode),
		Start:     d.visual.Start,
		Cursor:    d.cur,
		Exclusive: d.opts.Selection == "exclusive",
	}
	var (
		obj cursor.Object
		err error
	)
	switch ca.NChar {
	case 'w', 'W':
		obj, err = d.text.Word(sel, ca.Count1, include, ca.NChar == 'W')
	case 's':
		obj, err = d.text.Sentence(sel, ca.Count1, include, d.opts.HasCpo('J'))
	case 'p':
		obj, err = d.text.Paragraph(sel, ca.Count1, include)
	case 'b', '(', ')':
		obj, err = d.text.Block(sel, ca.Count1, include, '(', ')')
	case 'B', '{', '}':
		obj, err = d.text.Block(sel, ca.Count1, include, '{', '}')
	case '[', ']':
		obj, err = d.text.Block(sel, ca.Count1, include, '[', ']')
	case '<', '>':
		obj, err = d.text.Block(sel, ca.Count1, include, '<', '>')
	case 't':
		obj, err = d.text.Tag(sel, ca.Count1, include)
	case '"', '\'', '`':
		obj, err = d.text.Quote(sel, ca.Count1, include, ca.NChar.Rune(), `\`)
	default:
		return fmt.Errorf("%w: text object %s", execctx.ErrUnknownCommand, ca.NChar)
	}
	if err != nil {
		return motionFailed(err)
	}

	d.setCurswant = true
	if d.visual.Active {
		d.visual.Start = obj.Start
		d.cur = obj.End
		if obj.Mode != 0 {
			d.visual.Mode = key.Code(obj.Mode)
		}
		return nil
	}
	ca.OAP.Start = obj.Start
	d.cur = obj.End
	ca.OAP.Inclusive = obj.Inclusive
	if obj.Linewise {
		ca.OAP.MotionType = vim.MotionLinewise
	} else {
		ca.OAP.MotionType = vim.MotionCharwise
	}
	return nil
}
