package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/engine/search"
	"github.com/dshills/modalcore/internal/input/vim"
)

// nvSearch handles "/" and "?": a pattern, with an optional offset, is
// read from the command line and searched for count times.
func (d *Dispatcher) nvSearch(ctx context.Context, ca *execctx.CmdArg) error {
	if ca.CmdChar == '?' && d.oap.OpType == vim.OpRot13 {
		// "g??" encodes the line.
		ca.CmdChar, ca.NChar = 'g', '?'
		return d.nvOperator(ca)
	}
	text, err := d.cmdline.Read(ctx, d.keys, rune(ca.CmdChar))
	if errors.Is(err, execctx.ErrCmdlineAborted) {
		d.clearOp()
		return nil
	}
	if err != nil {
		return err
	}
	ca.SearchBuf = text

	dir := search.Forward
	if ca.CmdChar == '?' {
		dir = search.Backward
	}
	pattern, off, err := search.SplitCommand(text, dir.Char())
	if err != nil {
		d.failQuiet(err)
		return nil
	}
	d.startSearchMotion()
	m, err := d.search.Search(pattern, off, dir, ca.Count1, d.cur)
	return d.searchDone(m, err, true)
}

// nvNext handles "n" and "N" (Arg 1): the last search again, "N" in the
// opposite direction.
func (d *Dispatcher) nvNext(ca *execctx.CmdArg) error {
	d.startSearchMotion()
	m, err := d.search.Next(ca.Arg != 0, ca.Count1, d.cur)
	return d.searchDone(m, err, true)
}

// startSearchMotion prepares the operator for a search: exclusive and
// characterwise unless the match says otherwise. Deleting with a search
// always fills register one.
func (d *Dispatcher) startSearchMotion() {
	d.oap.MotionType = vim.MotionCharwise
	d.oap.Inclusive = false
	d.oap.UseRegOne = true
	d.setCurswant = true
}

// searchDone moves to the match, setting the "'" mark first when mark is
// true. A search that finds nothing shows a message and drops the
// operator.
func (d *Dispatcher) searchDone(m search.Match, err error, mark bool) error {
	if err != nil {
		d.failQuiet(fmt.Errorf("%w: %w", execctx.ErrMotionFailed, err))
		return nil
	}
	d.regs.SetReadOnly('/', d.search.LastPattern())
	if mark {
		d.setPCMark()
	}
	d.cur = m.Pos
	if m.Linewise {
		d.oap.MotionType = vim.MotionLinewise
	}
	d.oap.Inclusive = m.Inclusive
	if m.Wrapped {
		d.ui.Message("search wrapped around the end of the buffer")
	}
	return nil
}

// nvIdent handles "*", "#", "g*", "g#" and "K" for the word under the
// cursor, or for the selected text in Visual mode. "*" and "#" search for
// the word as a whole word, "g*" and "g#" also inside other words.
func (d *Dispatcher) nvIdent(ctx context.Context, ca *execctx.CmdArg) error {
	cmd := ca.CmdChar
	whole := true
	if cmd == 'g' {
		cmd = ca.NChar
		whole = false
	}

	var (
		word string
		col  int
		ok   bool
	)
	if d.visual.Active {
		word, col, ok = d.selectedText()
		d.endVisual()
		whole = false
	} else {
		word, col, ok = d.identUnderCursor()
	}
	if !ok {
		return fmt.Errorf("%w: no identifier under the cursor", execctx.ErrMotionFailed)
	}

	if cmd == 'K' {
		if err := d.checkClearOp(); err != nil {
			return err
		}
		return d.runEx(ctx, "help "+word)
	}

	first, _ := utf8.DecodeRuneInString(word)
	whole = whole && d.class.IsWord(first)
	pattern := search.WordPattern(word, whole)
	dir := search.Forward
	if cmd == '#' {
		dir = search.Backward
	}

	// The search starts at the start of the word so the word itself is
	// skipped; "''" returns to where the cursor was.
	d.setPCMark()
	d.cur.Col = col
	ca.SearchBuf = pattern
	d.startSearchMotion()
	m, err := d.search.Search(pattern, search.Offset{}, dir, ca.Count1, d.cur)
	return d.searchDone(m, err, false)
}

// identUnderCursor finds the keyword under or after the cursor. When the
// rest of the line has none, the first run of other non-blank characters
// is used. It returns the text and its start column.
func (d *Dispatcher) identUnderCursor() (string, int, bool) {
	line := d.lines.Line(d.cur.Line)
	col := min(d.cur.Col, len(line))

	find := func(match func(rune) bool) (int, bool) {
		i := col
		if i < len(line) && match(charclass.RuneAt(line, i)) {
			for i > 0 {
				p := charclass.PrevCharStart(line, i)
				if !match(charclass.RuneAt(line, p)) {
					break
				}
				i = p
			}
			return i, true
		}
		for i < len(line) {
			if match(charclass.RuneAt(line, i)) {
				return i, true
			}
			i += max(charclass.CharLen(line, i), 1)
		}
		return 0, false
	}

	match := d.class.IsWord
	start, ok := find(match)
	if !ok {
		match = func(r rune) bool { return !charclass.IsBlank(r) && !d.class.IsWord(r) }
		if start, ok = find(match); !ok {
			return "", 0, false
		}
	}
	end := start
	for end < len(line) && match(charclass.RuneAt(line, end)) {
		end += max(charclass.CharLen(line, end), 1)
	}
	return line[start:end], start, true
}

// selectedText returns the text of a selection within one line.
func (d *Dispatcher) selectedText() (string, int, bool) {
	start, end := ordered(d.visual.Start, d.cur)
	if start.Line != end.Line {
		return "", 0, false
	}
	line := d.lines.Line(start.Line)
	if d.visual.Mode == 'V' {
		return line, 0, line != ""
	}
	from := min(start.Col, len(line))
	to := min(end.Col+charclass.CharLen(line, end.Col), len(line))
	if d.opts.Selection == "exclusive" {
		to = min(end.Col, len(line))
	}
	if to <= from {
		return "", 0, false
	}
	return line[from:to], from, true
}
