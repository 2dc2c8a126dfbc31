package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// nvZCmd handles the commands starting with "z": scrolling relative to
// the cursor and folding.
func (d *Dispatcher) nvZCmd(ctx context.Context, ca *execctx.CmdArg) error {
	nchar := ca.NChar
	if nchar.IsDigit() {
		var (
			done bool
			err  error
		)
		if nchar, done, err = d.zCount(ctx, ca); done || err != nil {
			return err
		}
	}

	// "zf" and "zF" are always operators, "zd", "zc", "zC", "zo" and "zO"
	// only in Visual mode. "zj" and "zk" are motions.
	operator := nchar == 'f' || nchar == 'F' || nchar == 'j' || nchar == 'k' ||
		(d.visual.Active && strings.ContainsRune("dcCoO", rune(nchar)))
	if !operator {
		if err := d.checkClearOp(); err != nil {
			return err
		}
	}

	lnum := d.cur.Line
	switch nchar {
	case '+', key.CR, key.NL, key.KEnter, 't', '.', 'z', '^', '-', 'b':
		d.redrawAt(ca, nchar)

	case 'H':
		d.scrollSideways(d.win.left - ca.Count1*(d.win.width/2))
	case 'h', key.Left:
		d.scrollSideways(d.win.left - ca.Count1)
	case 'L':
		d.scrollSideways(d.win.left + ca.Count1*(d.win.width/2))
	case 'l', key.Right:
		d.scrollSideways(d.win.left + ca.Count1)
	case 's':
		col := 0
		if _, _, ok := d.folds.Closed(lnum); !ok {
			col, _ = d.text.VirtCol(d.cur)
		}
		d.win.left = max(col-d.opts.SideScrollOff, 0)
	case 'e':
		col := 0
		if _, _, ok := d.folds.Closed(lnum); !ok {
			_, col = d.text.VirtCol(d.cur)
		}
		if col+d.opts.SideScrollOff < d.win.width {
			d.win.left = 0
		} else {
			d.win.left = col + d.opts.SideScrollOff - d.win.width + 1
		}

	case 'p', 'P':
		return d.nvPut(ctx, ca)
	case 'y':
		return d.nvOperator(ca)

	case 'f', 'F':
		ca.NChar = 'f'
		if err := d.nvOperator(ca); err != nil {
			return err
		}
		d.folds.SetEnabled(true)
		// "zF" is "zfzf": count lines at once.
		if nchar == 'F' && d.oap.OpType == vim.OpFold {
			if err := d.nvOperator(ca); err != nil {
				return err
			}
			d.finishOp = true
		}

	case 'd', 'D':
		if d.visual.Active {
			return d.nvOperator(ca)
		}
		return foldFailed(d.folds.Delete(lnum, lnum, nchar == 'D'))
	case 'E':
		d.folds.Clear()

	case 'n':
		d.folds.SetEnabled(false)
	case 'N':
		d.folds.SetEnabled(true)
	case 'i':
		d.folds.SetEnabled(!d.folds.Enabled())

	case 'a', 'A':
		rec := nchar == 'A'
		if _, _, ok := d.folds.Closed(lnum); ok {
			return foldFailed(d.openFold(lnum, ca.Count1, rec))
		}
		d.folds.SetEnabled(true)
		return foldFailed(d.closeFold(lnum, ca.Count1, rec))

	case 'o', 'O':
		if d.visual.Active {
			return d.nvOperator(ca)
		}
		return foldFailed(d.openFold(lnum, ca.Count1, nchar == 'O'))

	case 'c', 'C':
		d.folds.SetEnabled(true)
		if d.visual.Active {
			return d.nvOperator(ca)
		}
		return foldFailed(d.closeFold(lnum, ca.Count1, nchar == 'C'))

	case 'v':
		d.openCursorFolds()
	case 'x':
		d.folds.SetEnabled(true)
		d.folds.SetLevel(d.folds.Level())
		d.openCursorFolds()
	case 'X':
		d.folds.SetEnabled(true)
		d.folds.SetLevel(d.folds.Level())

	case 'm':
		d.folds.SetLevel(max(d.folds.Level()-ca.Count1, 0))
		d.folds.SetEnabled(true)
	case 'M':
		d.folds.SetLevel(0)
		d.folds.SetEnabled(true)
	case 'r':
		d.folds.SetLevel(min(d.folds.Level()+ca.Count1, d.folds.Deepest()))
	case 'R':
		d.folds.SetLevel(d.folds.Deepest())

	case 'j', 'k':
		target, err := d.folds.MoveTo(lnum, nchar == 'j', ca.Count1)
		if err != nil {
			return motionFailed(err)
		}
		ca.OAP.MotionType = vim.MotionLinewise
		d.cur.Line = target
		d.coladvance(d.curswant)

	default:
		return fmt.Errorf("%w: z%s", execctx.ErrUnknownCommand, nchar)
	}
	return nil
}

// zCount reads the count of "z{count}<CR>", which sets the window height,
// and of "z{count}l" and its relatives, which multiply the count. It
// returns the command key and whether the command is complete.
func (d *Dispatcher) zCount(ctx context.Context, ca *execctx.CmdArg) (key.Code, bool, error) {
	if err := d.checkClearOp(); err != nil {
		return 0, true, err
	}
	n := int(ca.NChar - '0')
	for {
		ev, err := d.keys.Next(ctx)
		if err != nil {
			return 0, true, err
		}
		c := d.adjustLang(ev.Code, true)
		switch {
		case c == key.Del || c == key.KDel:
			n /= 10
		case c.IsDigit():
			if n > (1<<31-1-int(c-'0'))/10 {
				return 0, true, fmt.Errorf("%w: count too large", execctx.ErrMotionFailed)
			}
			n = n*10 + int(c-'0')
		case c == key.CR:
			d.SetWindowHeight(n)
			return c, true, nil
		case c == 'l' || c == 'h' || c == key.Left || c == key.Right:
			if n > 0 {
				ca.Count1 *= n
			}
			return c, false, nil
		default:
			return c, true, fmt.Errorf("%w: z%d%s", execctx.ErrUnknownCommand, n, c)
		}
	}
}

// openFold opens count levels of folds at lnum, or all of them.
func (d *Dispatcher) openFold(lnum, count int, recursive bool) error {
	if recursive {
		return d.folds.Open(lnum, lnum, true)
	}
	for range count {
		if err := d.folds.Open(lnum, lnum, false); err != nil {
			return err
		}
	}
	return nil
}

// closeFold closes count levels of folds at lnum, or all of them.
func (d *Dispatcher) closeFold(lnum, count int, recursive bool) error {
	if recursive {
		return d.folds.Close(lnum, lnum, true)
	}
	for range count {
		if err := d.folds.Close(lnum, lnum, false); err != nil {
			return err
		}
	}
	return nil
}

// openCursorFolds opens the folds around the cursor line so it can be
// seen ("zv").
func (d *Dispatcher) openCursorFolds() {
	if _, _, ok := d.folds.Closed(d.cur.Line); ok {
		_ = d.folds.Open(d.cur.Line, d.cur.Line, true)
	}
}

// foldFailed reports a fold command that found no fold.
func foldFailed(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", execctx.ErrMotionFailed, err)
}
