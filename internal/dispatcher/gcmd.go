package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/editor"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/engine/search"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// nvGCmd handles the commands starting with "g".
func (d *Dispatcher) nvGCmd(ctx context.Context, ca *execctx.CmdArg) error {
	switch ca.NChar {
	case key.CtrlA, key.CtrlX:
		// "g Ctrl-A" adds progressively more on each selected line.
		if !d.visual.Active {
			return d.gUnknown(ca)
		}
		ca.Arg = 1
		ca.CmdChar = ca.NChar
		ca.NChar = key.NUL
		return d.nvAddSub(ca)

	case 'R':
		ca.Arg = 1
		return d.nvReplaceMode(ctx, ca)
	case 'r':
		return d.nvVreplace(ctx, ca)
	case '&':
		return d.runEx(ctx, "%s//~/&")

	case 'v':
		return d.reselect(ca)
	case 'V':
		d.visual.Reselect = false
		return nil

	case key.BS, 'h', 'H', key.CtrlH:
		// "gh", "gH" and "g Ctrl-H" start Select mode.
		c := ca.NChar
		if c == key.BS {
			c = key.CtrlH
		}
		ca.CmdChar = c + ('v' - 'h')
		ca.Arg = 1
		return d.nvVisual(ca)

	case 'n', 'N':
		return d.selectMatch(ca)

	case 'j', key.Down:
		ca.OAP.MotionType = vim.MotionLinewise
		d.updateCurswant()
		return d.cursorDown(ca.Count1)
	case 'k', key.Up:
		ca.OAP.MotionType = vim.MotionLinewise
		d.updateCurswant()
		return d.cursorUp(ca.Count1)

	case 'J':
		return d.nvJoin(ca)

	case '^', '0', 'm', key.Home, key.KHome:
		d.gHome(ca)
		return nil
	case 'M':
		ca.OAP.MotionType = vim.MotionCharwise
		ca.OAP.Inclusive = false
		width, _ := d.text.VirtCol(buffer.Pos{Line: d.cur.Line, Col: len(d.lines.Line(d.cur.Line))})
		if ca.Count0 > 0 && ca.Count0 <= 100 {
			d.coladvance(width * ca.Count0 / 100)
		} else {
			d.coladvance(width / 2)
		}
		d.setCurswant = true
		return nil
	case '_':
		return d.gUnderscore(ca)
	case '$', key.End, key.KEnd:
		return d.gDollar(ca)

	case '*', '#':
		return d.nvIdent(ctx, ca)

	case 'e', 'E':
		return d.nvEndWordBack(ca)

	case key.CtrlG:
		d.showPosition()
		return nil

	case 'i':
		if p, err := d.marks.Get('^'); err == nil && p.Line >= 1 {
			d.cur.Line = min(p.Line, d.lines.LineCount())
			d.cur.Col = min(p.Col, len(d.lines.Line(d.cur.Line)))
		}
		ca.CmdChar = 'i'
		return d.nvEdit(ctx, ca)
	case 'I':
		d.beginLine(0)
		if err := d.checkClearOpQ(); err != nil {
			return err
		}
		d.prepRedo(0, ca.Count0, 'g', 'I')
		_, err := d.runInsert(ctx, editor.Request{
			Cmd:    'I',
			Mode:   editor.ModeInsert,
			Cursor: d.cur,
			Count:  ca.Count1,
		})
		return err

	case '\'':
		ca.Arg = 1
		return d.nvGomark(ca)
	case '`':
		ca.Arg = 0
		return d.nvGomark(ca)

	case 'a':
		d.showChar()
		return nil
	case '8':
		d.showBytes()
		return nil

	case 'g':
		ca.Arg = 0
		return d.nvGoto(ca)

	case 'q', 'w', '~', 'u', 'U', '?', '@':
		return d.nvOperator(ca)

	case 'd', 'D':
		return d.gotoDecl(ca)

	case 'p', 'P':
		return d.nvPut(ctx, ca)

	case 'o':
		return d.gotoByte(ca)

	case key.Ignore:
		return nil
	}
	return d.gUnknown(ca)
}

func (d *Dispatcher) gUnknown(ca *execctx.CmdArg) error {
	return fmt.Errorf("%w: g%s", execctx.ErrUnknownCommand, ca.NChar)
}

// nvVreplace handles "gr": replace one character in Replace mode, so a
// tab or a line break is entered the way typing it would.
func (d *Dispatcher) nvVreplace(ctx context.Context, ca *execctx.CmdArg) error {
	if d.visual.Active {
		ca.CmdChar = 'r'
		ca.NChar = ca.ExtraChar
		return d.nvReplace(ctx, ca)
	}
	if err := d.checkClearOpQ(); err != nil {
		return err
	}
	if !d.lines.Modifiable() {
		return fmt.Errorf("%w: gr", execctx.ErrNotModifiable)
	}
	c := ca.ExtraChar
	if c == key.CtrlV || c == key.CtrlQ {
		ev, err := d.keys.Next(ctx)
		if err != nil {
			return err
		}
		c = ev.Code
	}
	var codes []key.Code
	if c >= 0 && c < ' ' {
		// A control character is typed literally.
		codes = append(codes, key.CtrlV)
	}
	codes = append(codes, c, key.Esc)

	d.prepRedo(0, ca.Count0, 'g', 'r', c)
	d.keys.InsertCodes(codes...)
	d.redo.Block()
	_, err := d.runInsert(ctx, editor.Request{Cmd: 'R', Mode: editor.ModeReplace, Cursor: d.cur, Count: ca.Count1})
	d.redo.Unblock()
	return err
}

// selectMatch handles "gn" and "gN": the next or previous match of the
// last search pattern is selected, or operated on after an operator.
func (d *Dispatcher) selectMatch(ca *execctx.CmdArg) error {
	backward := ca.NChar == 'N'
	from := d.cur
	if d.visual.Active && !backward {
		// An existing selection is extended to the next match.
		d.text.Inc(&from)
	}
	m, err := d.search.Current(backward, ca.Count1, from)
	if err != nil {
		return motionFailed(err)
	}

	start, end := m.Pos, m.End
	if backward {
		start, end = end, start
	}
	if d.oap.Pending() {
		ca.OAP.Start = m.Pos
		ca.OAP.MotionType = vim.MotionCharwise
		ca.OAP.Inclusive = true
		d.cur = m.End
		return nil
	}
	if !d.visual.Active {
		d.mayStartSelect("cmd")
		d.visual.Mode = 'v'
		d.visual.Active = true
		d.visual.Reselect = true
		d.visual.Start = start
	}
	d.cur = end
	if d.opts.Selection == "exclusive" && !backward {
		d.text.Inc(&d.cur)
	}
	d.setCurswant = true
	return nil
}

// gHome handles "g0", "g^" and "gm". Lines do not wrap, so the screen
// line starts in column zero.
func (d *Dispatcher) gHome(ca *execctx.CmdArg) {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = false
	col := 0
	if ca.NChar == 'm' {
		col = d.win.width / 2
	}
	d.coladvance(col)
	if ca.NChar == '^' {
		line := d.lines.Line(d.cur.Line)
		for d.cur.Col < len(line) && charclass.IsBlank(charclass.RuneAt(line, d.cur.Col)) {
			next := d.cur.Col + max(charclass.CharLen(line, d.cur.Col), 1)
			if next >= len(line) {
				break
			}
			d.cur.Col = next
		}
	}
	d.setCurswant = true
}

// gUnderscore handles "g_": the last non-blank count-1 lines down.
func (d *Dispatcher) gUnderscore(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = true
	d.curswant = buffer.MaxCol
	if err := d.cursorDown(ca.Count1 - 1); err != nil {
		return err
	}
	line := d.lines.Line(d.cur.Line)
	if d.cur.Col > 0 && d.cur.Col >= len(line) {
		d.cur.Col = charclass.LastCharStart(line)
	}
	for d.cur.Col > 0 && charclass.IsBlank(charclass.RuneAt(line, d.cur.Col)) {
		d.cur.Col = charclass.PrevCharStart(line, d.cur.Col)
	}
	d.setCurswant = true
	d.adjustForSel(ca)
	return nil
}

// gDollar handles "g$": the last character on the screen line, count-1
// lines down. "g<End>" backs up over trailing blanks.
func (d *Dispatcher) gDollar(ca *execctx.CmdArg) error {
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = true
	if ca.Count1 > 1 {
		// The cursor still moves to the last character when this fails.
		_ = d.cursorDown(ca.Count1 - 1)
	}
	d.coladvance(d.win.width - 1)
	d.curswant, _ = d.text.VirtCol(d.cur)
	d.setCurswant = false
	if ca.NChar == key.End || ca.NChar == key.KEnd {
		line := d.lines.Line(d.cur.Line)
		for d.cur.Col > 0 && charclass.IsBlank(charclass.RuneAt(line, d.cur.Col)) {
			d.cur.Col = charclass.PrevCharStart(line, d.cur.Col)
		}
	}
	return nil
}

// gotoDecl handles "gD" and "gd": the first use of the identifier under
// the cursor in the buffer, or in the current section for "gd".
func (d *Dispatcher) gotoDecl(ca *execctx.CmdArg) error {
	word, _, ok := d.identUnderCursor()
	if !ok {
		return fmt.Errorf("%w: no identifier under the cursor", execctx.ErrMotionFailed)
	}
	first, _ := utf8.DecodeRuneInString(word)
	if !d.class.IsWord(first) {
		return fmt.Errorf("%w: no identifier under the cursor", execctx.ErrMotionFailed)
	}

	start := buffer.Pos{Line: 1}
	if ca.NChar == 'd' {
		if p, _, err := d.text.FindPar(d.cur, cursor.Backward, 1, '{', false); err == nil {
			start = p
			// Declarations come before the brace, after the blank line above.
			for start.Line > 1 && !d.text.LineWhite(start.Line-1) {
				start.Line--
			}
			start.Col = 0
		}
	}

	pattern := search.WordPattern(word, true)
	d.search.SetLastPattern(pattern, search.Forward)
	m, err := d.search.Current(false, 1, start)
	if err != nil {
		return motionFailed(err)
	}
	if m.Pos.Line > d.cur.Line || (m.Pos.Line == d.cur.Line && m.Pos.Col > d.cur.Col) {
		return fmt.Errorf("%w: %s: no declaration before the cursor", execctx.ErrMotionFailed, word)
	}
	ca.OAP.MotionType = vim.MotionCharwise
	ca.OAP.Inclusive = false
	d.setPCMark()
	d.cur = m.Pos
	d.setCurswant = true
	return nil
}

// gotoByte handles "go": to byte count of the buffer, counting line
// breaks as one byte.
func (d *Dispatcher) gotoByte(ca *execctx.CmdArg) error {
	if err := d.checkClearOp(); err != nil {
		return err
	}
	remain := max(ca.Count1-1, 0)
	n := d.lines.LineCount()
	lnum := 1
	for ; lnum < n; lnum++ {
		size := len(d.lines.Line(lnum)) + 1
		if remain < size {
			break
		}
		remain -= size
	}
	d.setPCMark()
	line := d.lines.Line(lnum)
	d.cur = buffer.Pos{Line: lnum, Col: min(remain, len(line))}
	// Land on the start of a character.
	for d.cur.Col > 0 && d.cur.Col < len(line) && !utf8.RuneStart(line[d.cur.Col]) {
		d.cur.Col--
	}
	d.setCurswant = true
	return nil
}

// showPosition shows where the cursor is in columns, lines, words and
// bytes, for "g Ctrl-G".
func (d *Dispatcher) showPosition() {
	n := d.lines.LineCount()
	var (
		bytes, curByte int
		words, curWord int
	)
	for lnum := 1; lnum <= n; lnum++ {
		line := d.lines.Line(lnum)
		if lnum == d.cur.Line {
			curByte = bytes + min(d.cur.Col, len(line)) + 1
			curWord = words + len(strings.Fields(line[:min(d.cur.Col+charclass.CharLen(line, d.cur.Col), len(line))]))
		}
		bytes += len(line) + 1
		words += len(strings.Fields(line))
	}
	line := d.lines.Line(d.cur.Line)
	d.ui.Message(fmt.Sprintf("Col %d of %d; Line %d of %d; Word %d of %d; Byte %d of %d",
		d.cur.Col+1, len(line), d.cur.Line, n, curWord, words, curByte, bytes))
}

// showChar shows the value of the character under the cursor, for "ga".
func (d *Dispatcher) showChar() {
	r := d.text.Gchar(d.cur)
	if r == 0 {
		d.ui.Message("NUL")
		return
	}
	shown := string(r)
	if !unicode.IsPrint(r) {
		shown = key.Code(r).String()
	}
	d.ui.Message(fmt.Sprintf("<%s> %d, Hex %02x, Oct %03o", shown, r, r, r))
}

// showBytes shows the UTF-8 bytes of the character under the cursor, for
// "g8".
func (d *Dispatcher) showBytes() {
	line := d.lines.Line(d.cur.Line)
	if d.cur.Col >= len(line) {
		d.ui.Message("NUL")
		return
	}
	b := line[d.cur.Col : d.cur.Col+max(charclass.CharLen(line, d.cur.Col), 1)]
	parts := make([]string, len(b))
	for i := range len(b) {
		parts[i] = fmt.Sprintf("%02x", b[i])
	}
	d.ui.Message(strings.Join(parts, " "))
}
