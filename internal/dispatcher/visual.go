package dispatcher

import (
	"fmt"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/input/key"
)

// startVisual starts Visual mode of the given kind at the cursor.
func (d *Dispatcher) startVisual(mode key.Code) {
	d.visual.Mode = mode
	d.visual.Active = true
	d.visual.Reselect = true
	d.visual.Start = d.cur
}

// mayStartSelect turns on Select mode when 'selectmode' lists how the
// selection was started: "cmd" for commands, "key" for shifted keys.
func (d *Dispatcher) mayStartSelect(how string) {
	d.visual.Select = config.HasFlag(d.opts.SelectMode, how) && d.keys.StuffEmpty()
}

// startSelection starts a selection for a shifted key with
// 'keymodel' "startsel".
func (d *Dispatcher) startSelection() {
	d.mayStartSelect("key")
	d.startVisual('v')
}

// endVisual leaves Visual mode and remembers the area for "gv".
func (d *Dispatcher) endVisual() {
	if !d.visual.Active {
		return
	}
	d.visual.Active = false
	d.saveLastArea()
	if d.cur.Col > 0 && d.opts.Selection != "old" {
		line := d.lines.Line(d.cur.Line)
		if d.cur.Col >= len(line) {
			d.cur = d.text.Clamp(d.cur, false)
			d.setCurswant = true
		}
	}
}

// saveLastArea stores the selection for "gv" and the '< and '> marks.
func (d *Dispatcher) saveLastArea() {
	mode := d.visual.Mode
	if d.visualModeOrig != 0 {
		mode = d.visualModeOrig
		d.visual.Mode = d.visualModeOrig
		d.visualModeOrig = 0
	}
	d.lastArea = execctx.LastArea{
		Valid:    true,
		Mode:     mode,
		Start:    d.visual.Start,
		End:      d.cur,
		Curswant: d.curswant,
	}
	d.marks.SetVisual(d.visual.Start, d.cur)
}

// nvVisual handles "v", "V" and Ctrl-V (and Ctrl-Q). After an operator
// they force the motion type; in Visual mode they switch the kind or end
// the selection.
func (d *Dispatcher) nvVisual(ca *execctx.CmdArg) error {
	if ca.CmdChar == key.CtrlQ {
		ca.CmdChar = key.CtrlV
	}
	if d.oap.Pending() {
		d.oap.MotionForce = ca.CmdChar
		d.finishOp = false
		return nil
	}

	d.visual.Select = ca.Arg != 0
	if d.visual.Active {
		if d.visual.Mode == ca.CmdChar {
			d.endVisual()
		} else {
			d.visual.Mode = ca.CmdChar
		}
		return nil
	}

	if ca.Count0 > 0 && d.resel.Mode != 0 {
		d.reselectSized(ca)
		return nil
	}

	if ca.Arg == 0 {
		d.mayStartSelect("cmd")
	}
	d.startVisual(ca.CmdChar)
	count := ca.Count1
	if d.visual.Mode != 'V' && d.opts.Selection == "exclusive" {
		count++
	}
	if ca.Count0 > 0 && count > 1 {
		ca.Count1 = count - 1
		if d.visual.Mode == 'V' {
			return d.nvDown(ca)
		}
		return d.nvRight(ca)
	}
	return nil
}

// reselectSized starts Visual mode over an area count times the size of
// the last operated one.
func (d *Dispatcher) reselectSized(ca *execctx.CmdArg) {
	r := d.resel
	d.visual.Start = d.cur
	d.visual.Active = true
	d.visual.Reselect = true
	if ca.Arg == 0 {
		d.mayStartSelect("cmd")
	}
	if r.Mode != 'v' || r.Lines > 1 {
		d.cur.Line += r.Lines*ca.Count0 - 1
		d.cur = d.text.Clamp(d.cur, true)
	}
	d.visual.Mode = r.Mode
	if r.Mode == 'v' {
		if r.Lines <= 1 {
			d.updateCurswant()
			d.curswant += r.Vcol * ca.Count0
			if d.opts.Selection != "exclusive" {
				d.curswant--
			}
		} else {
			d.curswant = r.Vcol
		}
		d.coladvance(d.curswant)
	}
	switch {
	case r.Vcol == buffer.MaxCol:
		d.curswant = buffer.MaxCol
		d.coladvance(buffer.MaxCol)
	case r.Mode == key.CtrlV:
		lnum := d.cur.Line
		d.cur.Line = d.visual.Start.Line
		d.updateCurswant()
		d.curswant += r.Vcol*ca.Count0 - 1
		d.cur.Line = lnum
		d.coladvance(d.curswant)
	default:
		d.setCurswant = true
	}
}

// swapCorners implements "o" and "O" in Visual mode. "O" in a block
// moves to the other corner on the same line.
func (d *Dispatcher) swapCorners(cmd key.Code) {
	if cmd != 'O' || d.visual.Mode != key.CtrlV {
		d.cur, d.visual.Start = d.visual.Start, d.cur
		d.setCurswant = true
		return
	}

	old := d.cur
	left, right := d.blockCols(old, d.visual.Start)
	d.cur.Line = d.visual.Start.Line
	d.coladvance(left)
	d.visual.Start = d.cur
	d.cur.Line = old.Line
	d.curswant = right
	if old.Line >= d.visual.Start.Line && d.opts.Selection == "exclusive" {
		d.curswant++
	}
	d.coladvance(d.curswant)
	if d.cur.Col == old.Col {
		d.cur.Line = d.visual.Start.Line
		if old.Line <= d.visual.Start.Line && d.opts.Selection == "exclusive" {
			right++
		}
		d.coladvance(right)
		d.visual.Start = d.cur
		d.cur.Line = old.Line
		d.coladvance(left)
		d.curswant = left
	}
}

// blockCols returns the left and right screen columns of the block with
// corners a and b.
func (d *Dispatcher) blockCols(a, b buffer.Pos) (left, right int) {
	as, ae := d.text.VirtCol(a)
	bs, be := d.text.VirtCol(b)
	return min(as, bs), max(ae, be)
}

// reselect implements "gv": the last area is selected again. In Visual
// mode the current and the last area are exchanged.
func (d *Dispatcher) reselect(ca *execctx.CmdArg) error {
	if err := d.checkClearOp(); err != nil {
		return err
	}
	la := d.lastArea
	if !la.Valid || la.Start.Line > d.lines.LineCount() || la.End.Line == 0 {
		d.beep(fmt.Errorf("%w: no previous selection", execctx.ErrMotionFailed))
		return nil
	}

	end := la.End
	if d.visual.Active {
		d.lastArea = execctx.LastArea{
			Valid:    true,
			Mode:     d.visual.Mode,
			Start:    d.visual.Start,
			End:      d.cur,
			Curswant: d.curswant,
		}
		d.marks.SetVisual(d.visual.Start, d.cur)
	}
	d.visual.Mode = la.Mode
	d.curswant = la.Curswant
	d.cur = la.Start

	d.visual.Active = true
	d.visual.Reselect = true
	d.visual.Start = d.text.Clamp(d.cur, true)
	d.cur = d.text.Clamp(end, true)
	if ca.Arg != 0 {
		d.visual.Select = true
	} else {
		d.mayStartSelect("cmd")
	}
	return nil
}
