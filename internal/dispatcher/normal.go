package dispatcher

import (
	"context"
	"fmt"

	"github.com/dshills/modalcore/internal/config"
	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// normalCmd runs one command cycle. Only key source failures are
// returned; command failures go through fail.
func (d *Dispatcher) normalCmd(ctx context.Context, res *Result) error {
	d.cycleErr = nil
	d.redoTouched = false
	d.lastOp = vim.OpNop
	if d.keys.StuffEmpty() {
		d.dotPending = false
		d.executing = 0
		d.execDepth = 0
	}

	ca := &execctx.CmdArg{OAP: &d.oap, OpCount: d.opcount}

	// An operator left pending by the previous cycle is finished by this
	// one.
	d.finishOp = d.oap.Pending()
	if !d.finishOp && d.oap.Regname == 0 {
		ca.OpCount = 0
	}
	if d.oap.PrevOpCount > 0 || d.oap.PrevCount0 > 0 {
		ca.OpCount = d.oap.PrevOpCount
		ca.Count0 = d.oap.PrevCount0
		d.oap.PrevOpCount = 0
		d.oap.PrevCount0 = 0
	}

	ev, err := d.keys.Next(ctx)
	if err != nil {
		d.clearOp()
		return err
	}
	if !d.oap.Pending() && ev.Typed {
		d.undo.Sync()
	}
	d.mods = ev.Mods
	ca.Typed = ev.Typed
	c := ev.Code
	if !(d.visual.Active && d.visual.Select) {
		c = d.adjustLang(c, true)
	}

	// In Select mode typed text replaces the selection.
	if d.visual.Active && d.visual.Select && (c.IsPrint() || c == key.NL || c == key.CR || c == key.KEnter) {
		d.keys.Unget(ev)
		c = 'c'
	}

	c, ctrlW, err := d.getCount(ctx, ca, c)
	if err != nil {
		d.clearOp()
		return err
	}

	if c == key.CursorHold {
		d.oap.PrevOpCount = ca.OpCount
		d.oap.PrevCount0 = ca.Count0
	} else {
		cs := vim.CountState{Count0: ca.Count0, OpCount: ca.OpCount}
		ca.Count0, ca.Count1 = cs.Merge()
	}
	ca.OpCount = ca.Count0
	ca.Count1 = vim.Count1(ca.Count0)

	if ctrlW {
		ca.NChar = c
		ca.CmdChar = key.CtrlW
	} else {
		ca.CmdChar = c
	}
	if ca.CmdChar == key.NUL {
		ca.CmdChar = key.Zero
	}
	res.Code = ca.CmdChar
	res.Count0 = ca.Count0

	spec, ok := d.registry.Lookup(ca.CmdChar)
	if !ok {
		d.fail(fmt.Errorf("%w: %s", execctx.ErrUnknownCommand, ca.CmdChar))
		return nil
	}

	if spec.Flags&FlagNotInSubEditor != 0 && (d.textLocked || d.lines.Locked()) {
		d.fail(fmt.Errorf("%w: %s", execctx.ErrForbidden, ca.CmdChar))
		return nil
	}

	if d.visual.Active {
		if config.HasFlag(d.opts.KeyModel, "stopsel") && spec.Flags&FlagStopSel != 0 && !d.mods.Has(key.ModShift) {
			d.endVisual()
		}
		if config.HasFlag(d.opts.KeyModel, "startsel") {
			if spec.Flags&FlagStartSel != 0 {
				d.unshiftSpecial(ca)
				if spec, ok = d.registry.Lookup(ca.CmdChar); !ok {
					d.fail(fmt.Errorf("%w: %s", execctx.ErrUnknownCommand, ca.CmdChar))
					return nil
				}
			} else if spec.Flags&FlagStartSelShift != 0 && d.mods.Has(key.ModShift) {
				d.mods = d.mods.Without(key.ModShift)
			}
		}
	}

	if d.opts.RightLeft && ca.Typed && spec.Flags&FlagRightLeft != 0 {
		if m, ok := mirrored[ca.CmdChar]; ok {
			ca.CmdChar = m
			if spec, ok = d.registry.Lookup(ca.CmdChar); !ok {
				d.fail(fmt.Errorf("%w: %s", execctx.ErrUnknownCommand, ca.CmdChar))
				return nil
			}
		}
	}

	if d.needsMoreChars(ca, spec.Flags) {
		if spec, err = d.moreChars(ctx, ca, spec); err != nil {
			d.clearOp()
			return err
		}
	}

	if ca.NChar == key.Esc {
		d.clearOp()
		return nil
	}

	if !d.visual.Active && config.HasFlag(d.opts.KeyModel, "startsel") {
		if spec.Flags&FlagStartSel != 0 {
			d.startSelection()
			d.unshiftSpecial(ca)
			if spec, ok = d.registry.Lookup(ca.CmdChar); !ok {
				d.fail(fmt.Errorf("%w: %s", execctx.ErrUnknownCommand, ca.CmdChar))
				return nil
			}
		} else if spec.Flags&FlagStartSelShift != 0 && d.mods.Has(key.ModShift) {
			d.startSelection()
			d.mods = d.mods.Without(key.ModShift)
		}
	}

	res.Kind = spec.Kind
	res.Found = true
	res.Code = ca.CmdChar
	oldCol := d.curswant

	ca.Arg = spec.Arg
	if err := d.execute(ctx, spec, ca); err != nil {
		if isInputError(err) {
			d.clearOp()
			return err
		}
		d.fail(err)
		d.finishCycle(ca)
		return nil
	}

	if !d.finishOp && !d.oap.Pending() && spec.Flags&FlagKeepReg == 0 {
		d.clearOp()
	}

	if ca.CmdChar != key.Ignore {
		if err := d.doPendingOperator(ctx, ca, oldCol); err != nil {
			if isInputError(err) {
				d.clearOp()
				return err
			}
			d.fail(err)
		}
	}

	d.opcount = ca.OpCount
	d.finishCycle(ca)
	return nil
}

// finishCycle keeps the cursor on a character and resets the per-cycle
// operator flag.
func (d *Dispatcher) finishCycle(ca *execctx.CmdArg) {
	if ca.RetVal&execctx.CommandBusy == 0 {
		d.cur = d.text.Clamp(d.cur, d.onemore())
	}
	d.win.follow(d.cur.Line, d.lines.LineCount())
	vcol, _ := d.text.VirtCol(d.cur)
	d.win.followCol(vcol)
	d.finishOp = false
}

// getCount reads the count typed before the command. It returns the
// first key that is not part of the count and whether it followed
// Ctrl-W.
func (d *Dispatcher) getCount(ctx context.Context, ca *execctx.CmdArg, c key.Code) (key.Code, bool, error) {
	if d.visual.Active && d.visual.Select {
		return c, false, nil
	}
	cs := vim.CountState{Count0: ca.Count0, OpCount: ca.OpCount}
	ctrlW := false
	for {
		for cs.Accepts(c) {
			cs.Feed(c)
			ev, err := d.keys.Next(ctx)
			if err != nil {
				return c, ctrlW, err
			}
			c = d.adjustLang(ev.Code, true)
		}
		if c != key.CtrlW || ctrlW || d.oap.Pending() {
			break
		}
		// Ctrl-W takes a second count between it and its command.
		ctrlW = true
		cs.BeginSecondary()
		ev, err := d.keys.Next(ctx)
		if err != nil {
			return c, ctrlW, err
		}
		c = d.adjustLang(ev.Code, true)
	}
	ca.Count0 = cs.Count0
	ca.OpCount = cs.OpCount
	return c, ctrlW, nil
}

// adjustLang applies 'langmap' when cond holds.
func (d *Dispatcher) adjustLang(c key.Code, cond bool) key.Code {
	if !cond || d.langmap == nil {
		return c
	}
	return d.langmap.Adjust(c)
}

// unshiftSpecial turns a shifted special key into its plain form.
func (d *Dispatcher) unshiftSpecial(ca *execctx.CmdArg) {
	if c, ok := key.Unshift(ca.CmdChar); ok {
		ca.CmdChar = c
		d.mods = d.mods.Without(key.ModShift)
	}
}

// mirrored swaps horizontal commands for 'rightleft'.
var mirrored = map[key.Code]key.Code{
	'l':            'h',
	'h':            'l',
	key.Right:      key.Left,
	key.Left:       key.Right,
	key.ShiftRight: key.ShiftLeft,
	key.ShiftLeft:  key.ShiftRight,
	key.CtrlRight:  key.CtrlLeft,
	key.CtrlLeft:   key.CtrlRight,
	'>':            '<',
	'<':            '>',
}
