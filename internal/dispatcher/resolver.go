package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/modalcore/internal/dispatcher/redo"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// doPendingOperator applies the pending operator when the command that
// just ran completed its motion, or when Visual mode is active. It is a
// no-op otherwise.
func (d *Dispatcher) doPendingOperator(ctx context.Context, ca *execctx.CmdArg, oldCol int) error {
	oap := &d.oap
	if !(d.finishOp || d.visual.Active) || !oap.Pending() {
		return nil
	}
	defer func() {
		oap.BlockMode = false
		d.clearOp()
	}()

	redoYank := d.opts.HasCpo('y')
	oap.IsVisual = d.visual.Active
	d.forceMotion(oap)

	c1, c2 := oap.OpType.Chars()
	if (redoYank || oap.OpType != vim.OpYank) &&
		(!d.visual.Active || oap.MotionForce != 0 || (ca.CmdChar == ':' && oap.OpType != vim.OpColon)) &&
		ca.CmdChar != 'D' && !oap.OpType.IsFold() {
		d.prepRedo(oap.Regname, ca.Count0, c1, c2, oap.MotionForce, ca.CmdChar, ca.NChar)
		switch ca.CmdChar {
		case '/', '?':
			if !d.opts.HasCpo('r') {
				d.appendRedoLit(ca.SearchBuf)
			}
			d.appendRedo(key.NL)
		case ':':
			if ca.SearchBuf != "" {
				d.appendRedoLit(ca.SearchBuf)
				d.appendRedo(key.NL)
			}
		}
	}

	switch {
	case d.redoVisual.Busy:
		d.redoVisualArea(ca, oap)
	case d.visual.Active:
		d.saveLastArea()
		if d.visual.Select && d.visual.Mode == 'V' && oap.OpType != vim.OpDelete {
			// A linewise selection is operated on characterwise in Select
			// mode.
			if d.visual.Start.Before(d.cur) {
				d.visual.Start.Col = 0
				d.cur.Col = len(d.lines.Line(d.cur.Line))
			} else {
				d.cur.Col = 0
				d.visual.Start.Col = len(d.lines.Line(d.visual.Start.Line))
			}
			d.visual.Mode = 'v'
		} else if d.visual.Mode == 'v' {
			d.unadjustForSel()
		}
		oap.Start = d.visual.Start
		if d.visual.Mode == 'V' {
			oap.Start.Col = 0
		}
	}

	d.orderSpan(oap)

	holdVisual := false
	if d.visual.Active || d.redoVisual.Busy {
		d.getOpVcol(oap, d.redoVisual.Vcol, true)
		if !d.redoVisual.Busy {
			d.rememberReselect(oap)
		}

		if (redoYank || oap.OpType != vim.OpYank) && oap.OpType != vim.OpColon &&
			!oap.OpType.IsFold() && oap.MotionForce == 0 {
			if ca.CmdChar == 'g' && (ca.NChar == 'n' || ca.NChar == 'N') {
				d.prepRedo(oap.Regname, ca.Count0, c1, c2, oap.MotionForce, ca.CmdChar, ca.NChar)
			} else if ca.CmdChar != ':' {
				nchar := key.NUL
				if oap.OpType == vim.OpReplace {
					nchar = ca.NChar
				}
				d.prepRedo(oap.Regname, 0, redo.VisualMarker, c1, c2, nchar)
				if !d.redoVisual.Busy {
					d.redoVisual = execctx.RedoVisual{
						Mode:      d.resel.Mode,
						Vcol:      d.resel.Vcol,
						LineCount: d.resel.Lines,
						Count:     ca.Count0,
						Arg:       ca.Arg,
					}
				}
			}
		}

		// The end of a selection is included. On an empty line that means
		// the line break, unless the operator works on lines anyway.
		if oap.MotionForce == 0 || oap.MotionType == vim.MotionLinewise {
			oap.Inclusive = true
		}
		if d.visual.Mode == 'V' {
			oap.MotionType = vim.MotionLinewise
		} else {
			oap.MotionType = vim.MotionCharwise
			if d.visual.Mode != key.CtrlV && oap.End.Col >= len(d.lines.Line(oap.End.Line)) {
				oap.Inclusive = false
				if d.opts.Selection != "old" && !oap.OpType.OnLines() && oap.End.Line < d.lines.LineCount() {
					oap.End.Line++
					oap.End.Col = 0
					oap.LineCount++
				}
			}
		}
		d.redoVisual.Busy = false

		switch oap.OpType {
		case vim.OpYank, vim.OpColon, vim.OpFunction, vim.OpFilter:
			holdVisual = oap.MotionForce == 0 && d.visual.Active
		}
		if !holdVisual {
			d.visual.Active = false
		}
	}

	if oap.Inclusive {
		line := d.lines.Line(oap.End.Line)
		if n := charclass.CharLen(line, oap.End.Col); n > 1 {
			oap.End.Col += n - 1
		}
	}
	d.setCurswant = true

	oap.Empty = oap.MotionType == vim.MotionCharwise &&
		(!oap.Inclusive || (oap.OpType == vim.OpYank && d.text.Gchar(oap.End) == 0)) &&
		oap.Start == oap.End
	emptyErr := oap.Empty && d.opts.HasCpo('E')

	// An exclusive motion that ends in column zero stops at the end of
	// the previous line; when it started in the indent the whole lines
	// are taken.
	if oap.MotionType == vim.MotionCharwise && !oap.Inclusive &&
		ca.RetVal&execctx.NoAdjustOpEnd == 0 && oap.End.Col == 0 &&
		(!oap.IsVisual || d.opts.Selection == "old") && !oap.BlockMode && oap.LineCount > 1 {
		oap.EndAdjusted = true
		oap.LineCount--
		oap.End.Line--
		if d.text.InIndent(d.cur, 0) {
			oap.MotionType = vim.MotionLinewise
		} else {
			oap.End.Col = len(d.lines.Line(oap.End.Line))
			if oap.End.Col > 0 {
				oap.End.Col--
				oap.Inclusive = true
			}
		}
	} else {
		oap.EndAdjusted = false
	}

	d.lastOp = oap.OpType
	d.log.Debug("operator %s %s %s-%s inclusive=%t block=%t",
		oap.OpType, oap.MotionType, oap.Start, oap.End, oap.Inclusive, oap.BlockMode)

	err := d.applyOperator(ctx, ca, oap, emptyErr)
	if holdVisual {
		d.visual.Active = false
	}
	if err != nil {
		return err
	}

	if !d.opts.StartOfLine && oap.MotionType == vim.MotionLinewise && !oap.EndAdjusted {
		switch oap.OpType {
		case vim.OpLshift, vim.OpRshift, vim.OpDelete:
			d.curswant = oldCol
			d.setCurswant = false
			d.cur.Col = d.text.Coladvance(d.lines.Line(d.cur.Line), oldCol, false)
		}
	}
	return nil
}

// forceMotion applies a "v", "V" or Ctrl-V typed between the operator
// and its motion.
func (d *Dispatcher) forceMotion(oap *execctx.OpArg) {
	switch oap.MotionForce {
	case 'V':
		oap.MotionType = vim.MotionLinewise
	case 'v':
		// "dvj" is exclusive characterwise; "dvw" toggles inclusiveness.
		if oap.MotionType == vim.MotionLinewise {
			oap.Inclusive = false
		} else if oap.MotionType == vim.MotionCharwise {
			oap.Inclusive = !oap.Inclusive
		}
		oap.MotionType = vim.MotionCharwise
	case key.CtrlV:
		if !d.visual.Active {
			d.visual.Active = true
			d.visual.Start = oap.Start
		}
		d.visual.Mode = key.CtrlV
		d.visual.Select = false
		d.visual.Reselect = false
	}
}

// redoVisualArea rebuilds the selection of a repeated Visual operator at
// the cursor with the recorded size.
func (d *Dispatcher) redoVisualArea(ca *execctx.CmdArg, oap *execctx.OpArg) {
	rv := d.redoVisual
	oap.Start = d.cur
	d.cur.Line = min(d.cur.Line+rv.LineCount-1, d.lines.LineCount())
	d.visual.Mode = rv.Mode
	if rv.Vcol == buffer.MaxCol || rv.Mode == 'v' {
		switch {
		case rv.Mode != 'v':
			d.curswant = buffer.MaxCol
		case rv.LineCount <= 1:
			vcol, _ := d.text.VirtCol(d.cur)
			d.curswant = vcol + rv.Vcol - 1
		default:
			d.curswant = rv.Vcol
		}
		d.cur.Col = d.text.Coladvance(d.lines.Line(d.cur.Line), d.curswant, true)
	}
	ca.Count0 = rv.Count
	ca.Count1 = vim.Count1(rv.Count)
}

// orderSpan sets Start before End and moves the cursor to Start. Outside
// Visual mode closed folds are included whole.
func (d *Dispatcher) orderSpan(oap *execctx.OpArg) {
	if oap.Start.Before(d.cur) {
		if !d.visual.Active {
			if first, _, ok := d.folds.Closed(oap.Start.Line); ok {
				oap.Start = buffer.Pos{Line: first}
			}
			if d.cur.Col > 0 || oap.Inclusive || oap.MotionType == vim.MotionLinewise {
				if _, last, ok := d.folds.Closed(d.cur.Line); ok {
					d.cur = buffer.Pos{Line: last, Col: len(d.lines.Line(last))}
				}
			}
		}
		oap.End = d.cur
		d.cur = oap.Start
	} else {
		if !d.visual.Active && oap.MotionType == vim.MotionLinewise {
			if first, _, ok := d.folds.Closed(d.cur.Line); ok {
				d.cur = buffer.Pos{Line: first}
			}
			if _, last, ok := d.folds.Closed(oap.Start.Line); ok {
				oap.Start = buffer.Pos{Line: last, Col: len(d.lines.Line(last))}
			}
		}
		oap.End = oap.Start
		oap.Start = d.cur
	}
	oap.LineCount = oap.End.Line - oap.Start.Line + 1
}

// getOpVcol turns a blockwise selection into the left and right screen
// columns and moves Start and End to the corners of the block.
func (d *Dispatcher) getOpVcol(oap *execctx.OpArg, redoVcol int, initial bool) {
	if d.visual.Mode != key.CtrlV {
		return
	}
	oap.BlockMode = true
	endLine := d.lines.Line(oap.End.Line)
	if oap.End.Col < len(endLine) {
		oap.End.Col = charclass.CharStart(endLine, oap.End.Col)
	}

	oap.StartVcol, oap.EndVcol = d.text.VirtCol(oap.Start)
	if !d.redoVisual.Busy {
		start, end := d.text.VirtCol(oap.End)
		if start < oap.StartVcol {
			oap.StartVcol = start
		}
		if end > oap.EndVcol {
			if initial && d.opts.Selection == "exclusive" && start >= 1 && start-1 >= oap.EndVcol {
				oap.EndVcol = start - 1
			} else {
				oap.EndVcol = end
			}
		}
	}

	switch {
	case d.curswant == buffer.MaxCol:
		// After "$" the block reaches the end of the longest line.
		oap.EndVcol = 0
		for lnum := oap.Start.Line; lnum <= oap.End.Line; lnum++ {
			if w := d.class.LineWidth(d.lines.Line(lnum)); w > oap.EndVcol {
				oap.EndVcol = w
			}
		}
	case d.redoVisual.Busy:
		oap.EndVcol = oap.StartVcol + redoVcol - 1
	}

	oap.End.Col = d.text.Coladvance(d.lines.Line(oap.End.Line), oap.EndVcol, true)
	oap.Start.Col = d.text.Coladvance(d.lines.Line(oap.Start.Line), oap.StartVcol, true)
	d.cur = oap.Start
}

// rememberReselect records the size of the selection for "1v" and for
// repeating the operator.
func (d *Dispatcher) rememberReselect(oap *execctx.OpArg) {
	d.resel.Mode = d.visual.Mode
	if d.curswant == buffer.MaxCol {
		d.resel.Vcol = buffer.MaxCol
	} else {
		if d.visual.Mode != key.CtrlV {
			_, oap.EndVcol = d.text.VirtCol(oap.End)
		}
		if d.visual.Mode == key.CtrlV || oap.LineCount <= 1 {
			if d.visual.Mode != key.CtrlV {
				oap.StartVcol, _ = d.text.VirtCol(oap.Start)
			}
			d.resel.Vcol = oap.EndVcol - oap.StartVcol + 1
		} else {
			d.resel.Vcol = oap.EndVcol
		}
	}
	d.resel.Lines = oap.LineCount
}

// unadjustForSel backs the later end of a characterwise selection up by
// one character when 'selection' is "exclusive". It reports whether the
// end moved to the previous line.
func (d *Dispatcher) unadjustForSel() bool {
	if d.opts.Selection != "exclusive" || d.visual.Start == d.cur {
		return false
	}
	p := &d.visual.Start
	if d.visual.Start.Before(d.cur) {
		p = &d.cur
	}
	switch {
	case p.Col > 0:
		line := d.lines.Line(p.Line)
		p.Col = charclass.PrevCharStart(line, min(p.Col, len(line)))
	case p.Line > 1:
		p.Line--
		p.Col = len(d.lines.Line(p.Line))
		return true
	}
	return false
}

// errEmptyRegion is reported for an empty span when cpoptions has 'E'.
var errEmptyRegion = fmt.Errorf("%w: operator on empty span", execctx.ErrEmptyRegion)

// applyOperator runs the edit of the resolved span.
func (d *Dispatcher) applyOperator(ctx context.Context, ca *execctx.CmdArg, oap *execctx.OpArg, emptyErr bool) error {
	if oap.OpType.ChangesText() && !d.lines.Modifiable() {
		return fmt.Errorf("%w: %s", execctx.ErrNotModifiable, oap.OpType)
	}

	var (
		cur buffer.Pos
		err error
	)
	switch oap.OpType {
	case vim.OpLshift, vim.OpRshift:
		amount := 1
		if oap.IsVisual {
			amount = ca.Count1
		}
		cur, err = d.ops.Shift(oap, amount)

	case vim.OpJoin, vim.OpJoinNS:
		if oap.LineCount < 2 {
			oap.LineCount = 2
		}
		if d.cur.Line+oap.LineCount-1 > d.lines.LineCount() {
			d.beep(fmt.Errorf("%w: join past the last line", execctx.ErrMotionFailed))
			return nil
		}
		cur, err = d.ops.JoinSpan(oap)

	case vim.OpDelete:
		d.visual.Reselect = false
		if emptyErr {
			return errEmptyRegion
		}
		cur, err = d.ops.Delete(oap)
		if err == nil {
			d.marks.SetChange(cur, cur)
			d.cur = cur
			return nil
		}

	case vim.OpYank:
		if emptyErr {
			return errEmptyRegion
		}
		err = d.ops.Yank(oap)
		cur = d.cur

	case vim.OpChange:
		d.visual.Reselect = false
		if emptyErr {
			return errEmptyRegion
		}
		d.finishOp = false
		return d.opChange(ctx, oap)

	case vim.OpFilter, vim.OpIndent, vim.OpColon:
		if oap.OpType == vim.OpFilter {
			if d.opts.HasCpo('!') {
				d.appendRedo('!', key.CR)
			} else {
				d.bangRedo = true
			}
		}
		if oap.OpType == vim.OpIndent && d.opts.EqualPrg == "" {
			cur, err = d.ops.Reindent(oap)
			break
		}
		d.opColon(oap, d.opts.EqualPrg)
		return nil

	case vim.OpTilde, vim.OpUpper, vim.OpLower, vim.OpRot13:
		if emptyErr {
			return errEmptyRegion
		}
		cur, err = d.ops.ChangeCase(oap)

	case vim.OpFormat:
		if d.opts.FormatPrg != "" {
			d.opColon(oap, d.opts.FormatPrg)
			return nil
		}
		cur, err = d.ops.Format(oap, d.cur)

	case vim.OpFormat2:
		cur, err = d.ops.Format(oap, d.opCursor)

	case vim.OpFunction:
		return d.opFunction(ctx, oap)

	case vim.OpInsert, vim.OpAppend:
		d.visual.Reselect = false
		if emptyErr {
			return errEmptyRegion
		}
		return d.opInsert(ctx, ca, oap)

	case vim.OpReplace:
		d.visual.Reselect = false
		if emptyErr {
			return errEmptyRegion
		}
		if ca.NChar == key.CR || ca.NChar == key.NL {
			return fmt.Errorf("%w: line break in a selection", operator.ErrFailed)
		}
		cur, err = d.ops.ReplaceSpan(oap, nextCharText(ca))

	case vim.OpFold:
		d.visual.Reselect = false
		d.folds.Create(oap.Start.Line, oap.End.Line)
		return nil

	case vim.OpFoldOpen, vim.OpFoldOpenRec, vim.OpFoldClose, vim.OpFoldCloseRec:
		d.visual.Reselect = false
		rec := oap.OpType == vim.OpFoldOpenRec || oap.OpType == vim.OpFoldCloseRec
		if oap.OpType == vim.OpFoldOpen || oap.OpType == vim.OpFoldOpenRec {
			err = d.folds.Open(oap.Start.Line, oap.End.Line, rec)
		} else {
			err = d.folds.Close(oap.Start.Line, oap.End.Line, rec)
		}
		return err

	case vim.OpFoldDel, vim.OpFoldDelRec:
		d.visual.Reselect = false
		return d.folds.Delete(oap.Start.Line, oap.End.Line, oap.OpType == vim.OpFoldDelRec)

	case vim.OpNrAdd, vim.OpNrSub:
		if emptyErr {
			return errEmptyRegion
		}
		cur, err = d.ops.AddSub(oap, ca.Count1, d.redoVisual.Arg != 0)

	default:
		return fmt.Errorf("%w: operator %s", execctx.ErrUnknownCommand, oap.OpType)
	}

	if err != nil {
		return err
	}
	d.cur = cur
	d.marks.SetChange(oap.Start, oap.End)
	return nil
}

// opChange deletes the span and runs Insert mode in its place.
func (d *Dispatcher) opChange(ctx context.Context, oap *execctx.OpArg) error {
	cur, err := d.ops.Change(oap)
	if err != nil {
		return err
	}
	d.cur = cur
	if !oap.BlockMode {
		_, err = d.runInsert(ctx, editor.Request{Cmd: 'c', Mode: editor.ModeInsert, Cursor: cur, Count: 1})
		return err
	}

	be, at, err := d.ops.StartBlockEdit(oap, false)
	if err != nil {
		return err
	}
	res, err := d.runInsert(ctx, editor.Request{Cmd: 'c', Mode: editor.ModeInsert, Cursor: at, Count: 1})
	if err != nil {
		return err
	}
	if res.Interrupted {
		return nil
	}
	if err := d.ops.FinishBlockEdit(be); err != nil {
		return err
	}
	d.cur = d.text.Clamp(buffer.Pos{Line: oap.Start.Line, Col: at.Col}, false)
	return nil
}

// opInsert runs Insert mode at the left ("I") or right ("A") edge of a
// selection. For a block the text typed on the first line is copied to
// the others.
func (d *Dispatcher) opInsert(ctx context.Context, ca *execctx.CmdArg, oap *execctx.OpArg) error {
	if !oap.BlockMode {
		at := buffer.Pos{Line: oap.Start.Line, Col: d.cur.Col}
		if oap.OpType == vim.OpAppend {
			at = d.text.Clamp(oap.End, false)
			if !d.text.LineEmpty(at.Line) && oap.StartVcol != oap.EndVcol {
				d.text.Inc(&at)
			}
		}
		_, err := d.runInsert(ctx, editor.Request{Cmd: ca.CmdChar, Mode: editor.ModeInsert, Cursor: at, Count: ca.Count1})
		return err
	}

	be, at, err := d.ops.StartBlockEdit(oap, d.curswant == buffer.MaxCol)
	if err != nil {
		return err
	}
	res, err := d.runInsert(ctx, editor.Request{Cmd: ca.CmdChar, Mode: editor.ModeInsert, Cursor: at, Count: ca.Count1})
	if err != nil {
		return err
	}
	if res.Interrupted {
		return nil
	}
	if err := d.ops.FinishBlockEdit(be); err != nil {
		return err
	}
	d.cur = d.text.Clamp(buffer.Pos{Line: oap.Start.Line, Col: at.Col}, false)
	return nil
}

// opColon starts a command line for the span. The range, and for "!",
// "=" and "gq" the filter program, are typed for the user; the command
// line itself is read in the next cycle.
func (d *Dispatcher) opColon(oap *execctx.OpArg, prg string) {
	cmd := operator.ColonCommand(oap, d.cur.Line, d.lines.LineCount(), prg, d.folds)
	d.keys.InsertCodes(key.FromText(cmd)...)
}

// opFunction calls 'operatorfunc' with the span in the '[ and '] marks.
func (d *Dispatcher) opFunction(ctx context.Context, oap *execctx.OpArg) error {
	if d.opts.OperatorFunc == "" || d.opfunc == nil {
		return execctx.ErrNoOperatorFunc
	}
	end := oap.End
	if oap.MotionType != vim.MotionLinewise && !oap.Inclusive {
		d.text.Decl(&end)
	}
	d.marks.SetChange(oap.Start, end)

	motion := "char"
	switch {
	case oap.MotionType == vim.MotionLinewise:
		motion = "line"
	case oap.BlockMode:
		motion = "block"
	}
	d.finishOp = false

	// The function may run Normal mode commands of its own; they must not
	// replace the recording of "g@".
	saved := d.redo.Save()
	err := d.opfunc.Call(ctx, d.opts.OperatorFunc, motion)
	d.redo.Restore(saved)
	if err != nil && !errors.Is(err, execctx.ErrQuit) {
		return fmt.Errorf("operatorfunc %s: %w", d.opts.OperatorFunc, err)
	}
	if errors.Is(err, execctx.ErrQuit) {
		d.quit = true
	}
	d.cur = d.text.Clamp(d.cur, false)
	return nil
}

// nextCharText is the character typed after a command such as "r", with
// the composing characters that followed it.
func nextCharText(ca *execctx.CmdArg) string {
	s := string(ca.NChar.Rune())
	if ca.NCharC1 != 0 {
		s += string(ca.NCharC1.Rune())
	}
	if ca.NCharC2 != 0 {
		s += string(ca.NCharC2.Rune())
	}
	return s
}
