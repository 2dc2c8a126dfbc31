package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/operator"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// nvOperator starts an operator. Typing the pending operator again, as
// in "dd" or "gUgU", works on lines.
func (d *Dispatcher) nvOperator(ca *execctx.CmdArg) error {
	op := opTypeOf(ca)
	if op == d.oap.OpType {
		return d.nvLineop(ca)
	}
	if err := d.checkClearOp(); err != nil {
		return err
	}
	d.oap.Start = d.cur
	d.opCursor = d.cur
	d.oap.OpType = op
	return nil
}

// nvLineop is the motion of a doubled operator and of "_": count-1
// lines down, linewise.
func (d *Dispatcher) nvLineop(ca *execctx.CmdArg) error {
	d.oap.MotionType = vim.MotionLinewise
	if err := d.cursorDown(ca.Count1 - 1); err != nil {
		return err
	}
	switch {
	case d.oap.OpType == vim.OpDelete && d.oap.MotionForce != 'v' && d.oap.MotionForce != key.CtrlV,
		d.oap.OpType == vim.OpLshift, d.oap.OpType == vim.OpRshift:
		d.beginLine(blSol | blFix)
	case d.oap.OpType != vim.OpYank:
		d.beginLine(blWhite | blFix)
	}
	return nil
}

// optrans holds the operator commands the abbreviations are typed as.
var optrans = map[key.Code]string{
	'x': "dl",
	'X': "dh",
	'D': "d$",
	'C': "c$",
	's': "cl",
	'S': "cc",
	'Y': "yy",
	'&': ":s\r",
}

// nvOptrans types the operator command of an abbreviation such as "x"
// ("dl") or "D" ("d$"), with the count in front.
func (d *Dispatcher) nvOptrans(ca *execctx.CmdArg) error {
	defer func() { ca.OpCount = 0 }()
	if err := d.checkClearOpQ(); err != nil {
		return err
	}

	if ca.CmdChar == 'D' && d.opts.HasCpo('#') {
		// Vi ignores the count of "D".
		d.oap.Start = d.cur
		d.oap.OpType = vim.OpDelete
		ca.Count1 = 1
		if err := d.nvDollar(ca); err != nil {
			return err
		}
		d.finishOp = true
		d.redo.Reset()
		d.redoTouched = true
		d.appendRedo('D')
		return nil
	}

	var codes []key.Code
	if ca.Count0 > 0 {
		codes = key.FromText(strconv.Itoa(ca.Count0))
	}
	codes = append(codes, key.FromText(optrans[ca.CmdChar])...)
	d.keys.InsertCodes(codes...)
	return nil
}

// nvAbbrev handles "x", "X", "D", "C", "Y" and Del. In Visual mode they
// are operators on the selection.
func (d *Dispatcher) nvAbbrev(ca *execctx.CmdArg) error {
	if ca.CmdChar == key.Del || ca.CmdChar == key.KDel {
		ca.CmdChar = 'x'
	}
	if d.visual.Active {
		return d.visop(ca)
	}
	return d.nvOptrans(ca)
}

// visopTrans maps the Visual mode abbreviations to their operators, as
// pairs of characters.
const visopTrans = "YyDdCcxdXdAAIIrr"

// visop runs a Visual mode abbreviation. The uppercase ones work on whole
// lines, except in a block, where "C" and "D" reach the end of the lines.
func (d *Dispatcher) visop(ca *execctx.CmdArg) error {
	c := ca.CmdChar
	i := -1
	if c > 0 && c < utf8.RuneSelf {
		i = strings.IndexByte(visopTrans, byte(c))
	}
	if i < 0 || i%2 != 0 {
		return fmt.Errorf("%w: %s", execctx.ErrUnknownCommand, c)
	}
	if c >= 'A' && c <= 'Z' {
		if d.visual.Mode != key.CtrlV {
			d.visualModeOrig = d.visual.Mode
			d.visual.Mode = 'V'
		} else if c == 'C' || c == 'D' {
			d.curswant = buffer.MaxCol
		}
	}
	ca.CmdChar = key.Code(visopTrans[i+1])
	return d.nvOperator(ca)
}

// nvSubst handles "s" and "S". In Visual mode both change the selection,
// "S" the whole lines.
func (d *Dispatcher) nvSubst(ca *execctx.CmdArg) error {
	if !d.visual.Active {
		return d.nvOptrans(ca)
	}
	if ca.CmdChar == 'S' {
		d.visualModeOrig = d.visual.Mode
		d.visual.Mode = 'V'
	}
	ca.CmdChar = 'c'
	return d.nvOperator(ca)
}

// nvEdit handles the commands that start Insert mode: "a", "A", "i", "I"
// and the Insert key. After an operator or in Visual mode "a" and "i"
// select a text object, and "A" and "I" are block operators.
func (d *Dispatcher) nvEdit(ctx context.Context, ca *execctx.CmdArg) error {
	if ca.CmdChar == key.Insert || ca.CmdChar == key.KInsert {
		ca.CmdChar = 'i'
	}
	switch {
	case d.visual.Active && (ca.CmdChar == 'A' || ca.CmdChar == 'I'):
		return d.visop(ca)
	case (ca.CmdChar == 'a' || ca.CmdChar == 'i') && (d.oap.Pending() || d.visual.Active):
		return d.nvObject(ca)
	case !d.lines.Modifiable():
		return fmt.Errorf("%w: %s", execctx.ErrNotModifiable, ca.CmdChar)
	}
	if err := d.checkClearOpQ(); err != nil {
		return err
	}

	switch ca.CmdChar {
	case 'A':
		d.cur.Col = len(d.lines.Line(d.cur.Line))
		d.setCurswant = true
	case 'I':
		if d.opts.HasCpo('H') {
			d.beginLine(blWhite | blFix)
		} else {
			d.beginLine(blWhite)
		}
	case 'a':
		if !d.text.LineEmpty(d.cur.Line) {
			d.text.Inc(&d.cur)
		}
	}
	return d.invokeEdit(ctx, ca, ca.CmdChar, false)
}

// invokeEdit records the insert command and runs Insert mode at the
// cursor.
func (d *Dispatcher) invokeEdit(ctx context.Context, ca *execctx.CmdArg, cmd key.Code, newLine bool) error {
	d.prepRedo(0, ca.Count0, cmd)
	_, err := d.runInsert(ctx, editor.Request{
		Cmd:     cmd,
		Mode:    editor.ModeInsert,
		Cursor:  d.cur,
		Count:   ca.Count1,
		NewLine: newLine,
	})
	return err
}

// nvOpen handles "o" and "O": a line is opened below or above the cursor
// and Insert mode starts on it. In Visual mode they go to the other end
// of the selection.
func (d *Dispatcher) nvOpen(ctx context.Context, ca *execctx.CmdArg) error {
	if d.visual.Active {
		d.swapCorners(ca.CmdChar)
		return nil
	}
	if err := d.checkClearOpQ(); err != nil {
		return err
	}
	if !d.lines.Modifiable() {
		return fmt.Errorf("%w: %s", execctx.ErrNotModifiable, ca.CmdChar)
	}
	dir := cursor.Forward
	if ca.CmdChar == 'O' {
		dir = cursor.Backward
	}
	if err := d.openLine(dir); err != nil {
		return err
	}
	return d.invokeEdit(ctx, ca, ca.CmdChar, true)
}

// openLine adds an empty line below (Forward) or above the cursor line,
// indented like it with 'autoindent', and puts the cursor on it.
func (d *Dispatcher) openLine(dir int) error {
	// A closed fold is opened around, not inside.
	after := d.cur.Line
	first, last, ok := d.folds.Closed(after)
	switch {
	case dir == cursor.Backward && ok:
		after = first - 1
	case dir == cursor.Backward:
		after--
	case ok:
		after = last
	}
	if err := d.undo.Save(after, after+1, d.cur); err != nil {
		return err
	}
	indent := ""
	if d.opts.AutoIndent {
		line := d.lines.Line(d.cur.Line)
		indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	}
	if err := d.lines.AppendLine(after, indent); err != nil {
		return fmt.Errorf("%w: %w", execctx.ErrNotModifiable, err)
	}
	d.cur = buffer.Pos{Line: after + 1, Col: len(indent)}
	return nil
}

// nvPut handles "p" and "P".
func (d *Dispatcher) nvPut(ctx context.Context, ca *execctx.CmdArg) error {
	dir := cursor.Forward
	if ca.CmdChar == 'P' || (ca.CmdChar == 'g' && ca.NChar == 'P') {
		dir = cursor.Backward
	}
	return d.doPut(ctx, ca, dir, 0)
}

// doPut puts the register of the command count times. "gp" and "gP"
// leave the cursor after the text. In Visual mode the text replaces the
// selection.
func (d *Dispatcher) doPut(ctx context.Context, ca *execctx.CmdArg, dir int, flags operator.PutFlags) error {
	if d.oap.Pending() {
		return errOperatorPending
	}
	if !d.lines.Modifiable() {
		return fmt.Errorf("%w: put", execctx.ErrNotModifiable)
	}
	regname := d.oap.Regname
	if regname == 0 {
		regname = '"'
	}
	reg, err := d.regs.Get(regname)
	if err != nil {
		return err
	}
	if reg.Empty() {
		return fmt.Errorf("register %c: %w", regname, vim.ErrEmptyRegister)
	}

	d.prepRedo(d.oap.Regname, ca.Count0, ca.CmdChar, ca.NChar)
	if ca.CmdChar == 'g' {
		flags |= operator.PutCursorEnd
	}
	if d.visual.Active {
		return d.putOverSelection(ctx, ca, reg, dir, flags)
	}

	before := d.cur
	cur, err := d.ops.Put(d.cur, reg, dir, ca.Count1, flags)
	if err != nil {
		return err
	}
	d.cur = cur
	d.setCurswant = true
	d.marks.SetChange(ordered(before, cur))
	return nil
}

// putOverSelection deletes the selection and puts reg where it was. "P"
// deletes into the black hole register so the registers stay as they
// were. The put text becomes the area "gv" selects.
func (d *Dispatcher) putOverSelection(ctx context.Context, ca *execctx.CmdArg, reg vim.Register, dir int, flags operator.PutFlags) error {
	mode := d.visual.Mode
	start := d.visual.Start
	if d.cur.Before(start) {
		start = d.cur
	}
	if mode == 'V' {
		start.Col = 0
	}

	d.oap.Regname = 0
	if ca.CmdChar == 'P' {
		d.oap.Regname = '_'
	}
	d.oap.OpType = vim.OpDelete
	del := *ca
	del.CmdChar = 'd'
	del.NChar = key.NUL
	d.redo.Block()
	err := d.doPendingOperator(ctx, &del, d.curswant)
	d.redo.Unblock()
	if err != nil {
		return err
	}
	empty := d.lines.LineCount() == 1 && d.lines.Line(1) == ""

	if mode == 'V' {
		flags |= operator.PutLinewise
	}
	dir = cursor.Backward
	if (mode != 'V' && d.cur.Col < start.Col) || (mode == 'V' && d.cur.Line < start.Line) {
		// The selection reached the end of the line or buffer.
		dir = cursor.Forward
	}
	before := d.cur
	cur, err := d.ops.Put(d.cur, reg, dir, ca.Count1, flags)
	if err != nil {
		return err
	}
	d.cur = cur
	d.setCurswant = true
	first, last := ordered(before, cur)
	d.marks.SetChange(first, last)
	d.lastArea.Start, d.lastArea.End = first, last

	// Replacing every line leaves the empty line the delete kept.
	if n := d.lines.LineCount(); empty && n > 1 && d.lines.Line(n) == "" {
		if err := d.undo.Save(n-1, n+1, d.cur); err != nil {
			return err
		}
		if err := d.lines.DeleteLine(n); err != nil {
			return err
		}
		d.cur = d.text.Clamp(d.cur, false)
	}
	return nil
}

// ordered returns a and b with the earlier position first.
func ordered(a, b buffer.Pos) (buffer.Pos, buffer.Pos) {
	if b.Before(a) {
		return b, a
	}
	return a, b
}

// nvReplace handles "r". "r<CR>" breaks the line, replacing count
// characters with a single line break.
func (d *Dispatcher) nvReplace(ctx context.Context, ca *execctx.CmdArg) error {
	if err := d.checkClearOp(); err != nil {
		return err
	}
	lit := key.NUL
	if ca.NChar == key.CtrlV {
		ev, err := d.keys.Next(ctx)
		if err != nil {
			return err
		}
		lit = key.CtrlV
		ca.NChar = ev.Code
	}
	if ca.NChar.IsSpecial() {
		return fmt.Errorf("%w: r%s", execctx.ErrUnknownCommand, ca.NChar)
	}
	if d.visual.Active {
		return d.nvOperator(ca)
	}
	if !d.lines.Modifiable() {
		return fmt.Errorf("%w: r", execctx.ErrNotModifiable)
	}

	line := d.lines.Line(d.cur.Line)
	if utf8.RuneCountInString(line[min(d.cur.Col, len(line)):]) < ca.Count1 {
		return fmt.Errorf("%w: fewer than %d characters", execctx.ErrMotionFailed, ca.Count1)
	}

	if lit == key.NUL && ca.NChar == key.Tab && d.opts.ExpandTab {
		// The tab is expanded by Replace mode.
		codes := key.FromText(strconv.Itoa(ca.Count1))
		d.keys.InsertCodes(append(codes, 'R', key.Tab, key.Esc)...)
		return nil
	}

	if lit == key.NUL && (ca.NChar == key.CR || ca.NChar == key.NL) {
		d.prepRedo(d.oap.Regname, ca.Count1, 'r', ca.NChar)
		if err := d.ops.DeleteChars(d.cur, ca.Count1); err != nil {
			return err
		}
		d.keys.InsertCodes(key.CR, key.Esc)
		d.redo.Block()
		_, err := d.runInsert(ctx, editor.Request{Cmd: 'r', Mode: editor.ModeInsert, Cursor: d.cur, Count: 1})
		d.redo.Unblock()
		return err
	}

	d.prepRedo(d.oap.Regname, ca.Count1, 'r', lit, ca.NChar, ca.NCharC1, ca.NCharC2)
	start := d.cur
	cur, err := d.ops.ReplaceChars(d.cur, ca.Count1, nextCharText(ca))
	if err != nil {
		return err
	}
	d.cur = cur
	d.setCurswant = true
	d.marks.SetChange(start, cur)
	return nil
}

// nvReplaceMode handles "R". In Visual mode it changes the selected
// lines.
func (d *Dispatcher) nvReplaceMode(ctx context.Context, ca *execctx.CmdArg) error {
	if d.visual.Active {
		ca.CmdChar = 'c'
		ca.NChar = key.NUL
		d.visualModeOrig = d.visual.Mode
		d.visual.Mode = 'V'
		return d.nvOperator(ca)
	}
	if err := d.checkClearOpQ(); err != nil {
		return err
	}
	if !d.lines.Modifiable() {
		return fmt.Errorf("%w: R", execctx.ErrNotModifiable)
	}
	cmds := []key.Code{'R'}
	if ca.CmdChar == 'g' {
		cmds = []key.Code{'g', 'R'}
	}
	d.prepRedo(0, ca.Count0, cmds...)
	_, err := d.runInsert(ctx, editor.Request{Cmd: 'R', Mode: editor.ModeReplace, Cursor: d.cur, Count: ca.Count1})
	return err
}

// nvTilde switches the case of count characters, or is the "~" operator
// when 'tildeop' is set.
func (d *Dispatcher) nvTilde(ca *execctx.CmdArg) error {
	if d.opts.TildeOp || d.visual.Active || d.oap.OpType == vim.OpTilde {
		return d.nvOperator(ca)
	}
	if err := d.checkClearOpQ(); err != nil {
		return err
	}
	if d.text.LineEmpty(d.cur.Line) {
		return fmt.Errorf("%w: empty line", execctx.ErrMotionFailed)
	}
	if !d.lines.Modifiable() {
		return fmt.Errorf("%w: ~", execctx.ErrNotModifiable)
	}
	d.prepRedo(d.oap.Regname, ca.Count0, '~')
	start := d.cur
	cur, err := d.ops.SwapChars(d.cur, ca.Count1)
	if err != nil {
		return err
	}
	d.cur = cur
	d.setCurswant = true
	d.marks.SetChange(start, cur)
	return nil
}

// nvJoin handles "J" and "gJ". The count is the number of lines joined,
// at least two.
func (d *Dispatcher) nvJoin(ca *execctx.CmdArg) error {
	if d.visual.Active {
		return d.nvOperator(ca)
	}
	if err := d.checkClearOp(); err != nil {
		return err
	}
	if !d.lines.Modifiable() {
		return fmt.Errorf("%w: join", execctx.ErrNotModifiable)
	}
	count := max(ca.Count0, 2)
	if n := d.lines.LineCount(); d.cur.Line+count-1 > n {
		if count <= 2 {
			return fmt.Errorf("%w: join on the last line", execctx.ErrMotionFailed)
		}
		count = n - d.cur.Line + 1
	}
	d.prepRedo(d.oap.Regname, count, ca.CmdChar, ca.NChar)
	cur, err := d.ops.Join(d.cur.Line, count, ca.NChar == key.NUL)
	if err != nil {
		return err
	}
	d.cur = cur
	d.setCurswant = true
	return nil
}

// nvAddSub handles Ctrl-A and Ctrl-X: add or subtract the count from the
// number at or after the cursor. In Visual mode they are operators.
func (d *Dispatcher) nvAddSub(ca *execctx.CmdArg) error {
	switch {
	case d.visual.Active:
		return d.nvOperator(ca)
	case d.oap.Pending():
		d.clearOp()
		return nil
	}
	if !d.lines.Modifiable() {
		return fmt.Errorf("%w: %s", execctx.ErrNotModifiable, ca.CmdChar)
	}
	op := vim.OpNrAdd
	if ca.CmdChar == key.CtrlX {
		op = vim.OpNrSub
	}
	d.prepRedo(d.oap.Regname, ca.Count0, ca.CmdChar)
	start := d.cur
	cur, err := d.ops.AddSubAt(d.cur, ca.Count1, op)
	if errors.Is(err, operator.ErrFailed) {
		return fmt.Errorf("%w: no number at the cursor", execctx.ErrMotionFailed)
	}
	if err != nil {
		return err
	}
	d.cur = cur
	d.setCurswant = true
	d.marks.SetChange(start, cur)
	return nil
}

// nvUndo handles "u". In Visual mode, and after "gu", it is the
// lowercase operator.
func (d *Dispatcher) nvUndo(ca *execctx.CmdArg) error {
	if d.oap.OpType == vim.OpLower || d.visual.Active {
		ca.CmdChar, ca.NChar = 'g', 'u'
		return d.nvOperator(ca)
	}
	if err := d.checkClearOpQ(); err != nil {
		return err
	}
	return d.afterUndo(d.undo.Undo(ca.Count1))
}

// nvRedo handles Ctrl-R.
func (d *Dispatcher) nvRedo(ca *execctx.CmdArg) error {
	if err := d.checkClearOpQ(); err != nil {
		return err
	}
	return d.afterUndo(d.undo.Redo(ca.Count1))
}

// nvUndoLine handles "U". In Visual mode, and after "gU", it is the
// uppercase operator.
func (d *Dispatcher) nvUndoLine(ca *execctx.CmdArg) error {
	if d.oap.OpType == vim.OpUpper || d.visual.Active {
		ca.CmdChar, ca.NChar = 'g', 'U'
		return d.nvOperator(ca)
	}
	if err := d.checkClearOpQ(); err != nil {
		return err
	}
	return d.afterUndo(d.undo.UndoLine(d.cur))
}

// afterUndo moves the cursor to where the undo history put it. Running
// out of history is reported as a message, not a beep.
func (d *Dispatcher) afterUndo(p buffer.Pos, err error) error {
	if err != nil {
		d.failQuiet(err)
		return nil
	}
	d.cur = d.text.Clamp(p, false)
	d.setCurswant = true
	return nil
}
