package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/modalcore/internal/dispatcher/redo"
	"github.com/dshills/modalcore/internal/input/key"
)

// prepRedo starts the redo recording of the current command.
func (d *Dispatcher) prepRedo(regname rune, count int, cmds ...key.Code) {
	d.redoTouched = true
	d.redoErr(d.redo.Prep(regname, count, cmds...))
}

// appendRedo adds keys to the recording.
func (d *Dispatcher) appendRedo(codes ...key.Code) {
	d.redoErr(d.redo.Append(codes...))
}

// appendRedoLit adds typed text to the recording.
func (d *Dispatcher) appendRedoLit(s string) {
	d.redoErr(d.redo.AppendLiteral(s))
}

// redoErr reports a redo buffer overflow. The command itself goes on; the
// recording is truncated and "." will refuse it.
func (d *Dispatcher) redoErr(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, redo.ErrFull) {
		err = fmt.Errorf("%w: %w", execctx.ErrAllocation, err)
	}
	if d.cycleErr == nil {
		d.cycleErr = err
		d.ui.Message(err.Error())
		d.log.Debug("redo: %v", err)
	}
}

// runInsert runs Insert mode for a command whose keys were already
// recorded. The typed text is added to the recording and to the "."
// register.
func (d *Dispatcher) runInsert(ctx context.Context, req editor.Request) (editor.Result, error) {
	if !d.lines.Modifiable() {
		return editor.Result{}, fmt.Errorf("%w: insert", execctx.ErrNotModifiable)
	}
	if req.Count < 1 {
		req.Count = 1
	}
	req.Keys = d.keys
	res, err := d.insert.Run(ctx, req)
	if errors.Is(err, editor.ErrNotModifiable) {
		return res, fmt.Errorf("%w: %w", execctx.ErrNotModifiable, err)
	}
	if err != nil {
		return res, err
	}

	if res.Restarted {
		// A cursor key ended the first insert; only what was typed after it
		// is repeated.
		d.redo.Reset()
		d.appendRedo('1', 'i')
	}
	d.appendRedo(res.Typed...)
	d.appendRedo(key.Esc)

	d.cur = res.Cursor
	d.setCurswant = true
	_ = d.marks.Set('^', res.End)
	d.marks.SetChange(res.Start, res.End)
	d.regs.SetReadOnly('.', insertedText(res.Typed))
	if res.Interrupted {
		d.log.Debug("insert interrupted at %s", res.Cursor)
	}
	return res, nil
}

// insertedText is the text typed in Insert mode as the "." register shows
// it. Keys that are not text are left out.
func insertedText(typed []key.Code) string {
	var b strings.Builder
	for _, c := range typed {
		switch {
		case c == key.CR || c == key.NL:
			b.WriteByte('\n')
		case c == key.Tab:
			b.WriteByte('\t')
		case c.IsPrint():
			b.WriteRune(c.Rune())
		}
	}
	return b.String()
}
