package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/redo"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// nvDot repeats the last change. A count replaces the recorded one. A
// change made in Visual mode is repeated on an area of the same size at
// the cursor.
func (d *Dispatcher) nvDot(ca *execctx.CmdArg) error {
	if err := d.checkClearOpQ(); err != nil {
		return err
	}
	rp, err := d.redo.Start(ca.Count0)
	switch {
	case errors.Is(err, redo.ErrFull):
		return fmt.Errorf("%w: %w", execctx.ErrAllocation, err)
	case err != nil:
		return fmt.Errorf("%w: %w", execctx.ErrMotionFailed, err)
	}
	if rp.Visual {
		d.visual = execctx.Visual{
			Active:   true,
			Reselect: true,
			Mode:     d.redoVisual.Mode,
			Start:    d.cur,
		}
		d.redoVisual.Busy = true
	}
	d.keys.InsertCodes(rp.Keys...)
	d.dotPending = true
	return nil
}

// maxExecDepth bounds registers executed from within executing registers,
// so a macro that calls itself stops even when no command in it fails.
const maxExecDepth = 10000

// nvAt executes a register as Normal mode commands count times. "@@"
// repeats the last one and "@:" the last command line.
func (d *Dispatcher) nvAt(ca *execctx.CmdArg) error {
	if err := d.checkClearOp(); err != nil {
		return err
	}
	name := rune(ca.NChar)
	if name == '@' {
		if d.lastAt == 0 {
			return fmt.Errorf("%w: no previously used register", execctx.ErrMotionFailed)
		}
		name = d.lastAt
	}
	if !vim.IsValidRegister(name, false) {
		return fmt.Errorf("%w: register %s", execctx.ErrUnknownCommand, ca.NChar)
	}
	if d.executing != 0 {
		d.execDepth++
		if d.execDepth > maxExecDepth {
			return ErrRecursion
		}
	}

	reg, err := d.regs.Get(name)
	if err != nil {
		return err
	}
	text := reg.Text()
	if name == ':' {
		text = ":" + text + "\r"
	}
	if text == "" {
		return fmt.Errorf("register %c: %w", name, vim.ErrEmptyRegister)
	}
	codes := key.FromText(text)
	all := make([]key.Code, 0, len(codes)*ca.Count1)
	for range ca.Count1 {
		all = append(all, codes...)
	}
	d.keys.InsertCodes(all...)
	d.lastAt = name
	d.executing = name
	return nil
}

// nvRecord handles "q": start recording typed keys into a register, or
// stop recording. "gqq" formats the line.
func (d *Dispatcher) nvRecord(ca *execctx.CmdArg) error {
	if d.oap.OpType == vim.OpFormat {
		ca.CmdChar, ca.NChar = 'g', 'q'
		return d.nvOperator(ca)
	}
	if err := d.checkClearOp(); err != nil {
		return err
	}
	if d.executing != 0 {
		return nil
	}

	if d.recording != 0 {
		codes := d.keys.StopRecording()
		// Drop the "q" that ended the recording.
		if n := len(codes); n > 0 && codes[n-1] == 'q' {
			codes = codes[:n-1]
		}
		name := d.recording
		d.recording = 0
		lines := strings.Split(key.ToText(codes), "\n")
		if err := d.regs.Set(name, lines, vim.MotionCharwise, 0); err != nil {
			return fmt.Errorf("recording into %c: %w", name, err)
		}
		d.log.Debug("recorded %d keys into %c", len(codes), name)
		return nil
	}

	name := rune(ca.NChar)
	if !vim.IsValidRegister(name, true) || name == '_' {
		return fmt.Errorf("%w: register %s", execctx.ErrUnknownCommand, ca.NChar)
	}
	if err := d.keys.StartRecording(); err != nil {
		return err
	}
	d.recording = name
	return nil
}

// nvMark handles "m".
func (d *Dispatcher) nvMark(ca *execctx.CmdArg) error {
	if err := d.checkClearOp(); err != nil {
		return err
	}
	if err := d.marks.Set(rune(ca.NChar), d.cur); err != nil {
		return fmt.Errorf("%w: m%s: %w", execctx.ErrMotionFailed, ca.NChar, err)
	}
	return nil
}

// nvRegname handles '"': the register for the next command. The count
// typed before it is kept for the command.
func (d *Dispatcher) nvRegname(ca *execctx.CmdArg) error {
	if err := d.checkClearOp(); err != nil {
		return err
	}
	if ca.NChar == key.NUL || !vim.IsValidRegister(rune(ca.NChar), false) {
		return fmt.Errorf("%w: register %s", execctx.ErrUnknownCommand, ca.NChar)
	}
	d.oap.Regname = rune(ca.NChar)
	ca.OpCount = ca.Count0
	return nil
}

// nvColon reads and executes a command line. In Visual mode ":" is an
// operator; after an operator the command is an exclusive motion. A
// count becomes the range ".,.+count-1".
func (d *Dispatcher) nvColon(ctx context.Context, ca *execctx.CmdArg) error {
	if d.visual.Active {
		return d.nvOperator(ca)
	}
	if d.oap.Pending() {
		d.oap.MotionType = vim.MotionCharwise
		d.oap.Inclusive = false
	} else if ca.Count0 > 0 {
		prefix := "."
		if ca.Count0 > 1 {
			prefix += ",.+" + strconv.Itoa(ca.Count0-1)
		}
		d.keys.InsertCodes(key.FromText(prefix)...)
	}

	cmd, err := d.cmdline.Read(ctx, d.keys, ':')
	if errors.Is(err, execctx.ErrCmdlineAborted) {
		d.clearOp()
		return nil
	}
	if err != nil {
		return err
	}

	if d.bangRedo {
		// The filter command typed after "!{motion}" is part of the change.
		if i := strings.IndexByte(cmd, '!'); i >= 0 {
			d.appendRedoLit(cmd[i+1:])
			d.appendRedo(key.NL)
		}
		d.bangRedo = false
	}
	if d.oap.Pending() {
		ca.SearchBuf = cmd
	}

	start := d.oap.Start
	err = d.runEx(ctx, cmd)
	d.regs.SetReadOnly(':', cmd)
	if err != nil {
		d.failQuiet(err)
		return nil
	}
	if d.oap.Pending() && (start.Line > d.lines.LineCount() || start.Col > len(d.lines.Line(start.Line))) {
		return fmt.Errorf("%w: operator start moved away", execctx.ErrMotionFailed)
	}
	return nil
}

// runEx executes an Ex command. A quit command ends the dispatch loop.
func (d *Dispatcher) runEx(ctx context.Context, cmd string) error {
	err := d.cmdline.Execute(ctx, cmd)
	if errors.Is(err, execctx.ErrQuit) {
		d.quit = true
		return nil
	}
	return err
}

// nvEsc handles Esc and Ctrl-C: Visual mode ends and the pending operator
// is dropped. With nothing to cancel it beeps.
func (d *Dispatcher) nvEsc(ca *execctx.CmdArg) error {
	noReason := !d.oap.Pending() && ca.OpCount == 0 && ca.Count0 == 0 && d.oap.Regname == 0
	switch {
	case d.visual.Active:
		d.endVisual()
		d.setCurswant = true
	case noReason:
		if ca.Arg != 0 {
			d.ui.Message("Type :q and press <Enter> to exit")
		}
		d.ui.Beep()
	}
	d.clearOp()
	return nil
}

// nvNormal handles Ctrl-\ Ctrl-N and Ctrl-\ Ctrl-G: back to plain Normal
// mode from anywhere.
func (d *Dispatcher) nvNormal(ca *execctx.CmdArg) error {
	if ca.NChar != key.CtrlN && ca.NChar != key.CtrlG {
		return fmt.Errorf("%w: %s%s", execctx.ErrUnknownCommand, ca.CmdChar, ca.NChar)
	}
	d.clearOp()
	d.endVisual()
	return nil
}

// nvCtrlG shows the cursor position. In Visual mode it toggles between
// Visual and Select mode.
func (d *Dispatcher) nvCtrlG(ca *execctx.CmdArg) error {
	if d.visual.Active {
		d.visual.Select = !d.visual.Select
		return nil
	}
	if err := d.checkClearOp(); err != nil {
		return err
	}
	n := d.lines.LineCount()
	d.ui.Message(fmt.Sprintf("line %d of %d --%d%%-- col %d", d.cur.Line, n, d.cur.Line*100/max(n, 1), d.cur.Col+1))
	return nil
}

// nvCtrlH handles Backspace: "h", or deleting the selection in Select
// mode.
func (d *Dispatcher) nvCtrlH(ca *execctx.CmdArg) error {
	if d.visual.Active && d.visual.Select {
		ca.CmdChar = 'x'
		return d.visop(ca)
	}
	return d.nvLeft(ca)
}

// nvQuit handles "ZZ" (write if changed and quit) and "ZQ" (quit without
// writing).
func (d *Dispatcher) nvQuit(ctx context.Context, ca *execctx.CmdArg) error {
	if err := d.checkClearOp(); err != nil {
		return err
	}
	switch ca.NChar {
	case 'Z':
		return d.runEx(ctx, "x")
	case 'Q':
		return d.runEx(ctx, "q!")
	}
	return fmt.Errorf("%w: Z%s", execctx.ErrUnknownCommand, ca.NChar)
}

// nvWindow handles Ctrl-W commands. There is a single window: the size
// commands change its height and the commands that move between windows
// stay in it.
func (d *Dispatcher) nvWindow(ctx context.Context, ca *execctx.CmdArg) error {
	if err := d.checkClearOp(); err != nil {
		return err
	}
	switch ca.NChar {
	case '+':
		d.SetWindowHeight(d.win.height + ca.Count1)
	case '-':
		d.SetWindowHeight(max(d.win.height-ca.Count1, 1))
	case '_', key.CtrlUndr:
		if ca.Count0 > 0 {
			d.SetWindowHeight(ca.Count0)
		}
	case 'w', 'W', 'p', 'j', 'k', 'h', 'l', 't', 'b', 'o', '=',
		key.CtrlW, key.CtrlP, key.NL, key.CtrlK, key.CtrlH, key.CtrlL, key.CtrlT, key.CtrlB, key.CtrlO,
		key.Up, key.Down, key.Left, key.Right:
	case 'q', key.CtrlQ:
		return d.runEx(ctx, "quit")
	case 'c', key.CtrlC:
		return fmt.Errorf("%w: cannot close the last window", execctx.ErrForbidden)
	default:
		return fmt.Errorf("%w: %s%s", execctx.ErrUnknownCommand, ca.CmdChar, ca.NChar)
	}
	return nil
}

// lineReader is the command line used when none is attached: the line is
// read from the keys without history or completion, and only quitting is
// understood.
type lineReader struct{}

func (lineReader) Read(ctx context.Context, keys key.Reader, firstc rune) (string, error) {
	var buf []rune
	for {
		ev, err := keys.Next(ctx)
		if err != nil {
			return "", err
		}
		switch c := ev.Code; {
		case c == key.CR || c == key.NL || c == key.KEnter:
			return string(buf), nil
		case c == key.Esc || c == key.CtrlC:
			return "", execctx.ErrCmdlineAborted
		case c == key.BS || c == key.CtrlH:
			if len(buf) == 0 {
				return "", execctx.ErrCmdlineAborted
			}
			buf = buf[:len(buf)-1]
		case c == key.CtrlU:
			buf = buf[:0]
		case !c.IsSpecial():
			buf = append(buf, c.Rune())
		}
	}
}

func (lineReader) Execute(_ context.Context, cmd string) error {
	switch strings.TrimSpace(cmd) {
	case "q", "q!", "quit", "quit!", "x", "xit", "wq":
		return execctx.ErrQuit
	}
	return fmt.Errorf("%w: no command line executor for %q", ErrMissingDependency, cmd)
}
