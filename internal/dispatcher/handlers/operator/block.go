package operator

import (
	"strings"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/input/vim"
)

// blockDef describes how one line intersects a blockwise span.
type blockDef struct {
	// startspaces and endspaces are the cells of characters cut by the
	// left and right block edges.
	startspaces int
	endspaces   int
	// textlen is the byte length of the text inside the block and
	// textcol the byte column where it starts.
	textlen int
	textcol int
	// startVcol and endVcol are the screen columns the text covers.
	startVcol int
	endVcol   int
	// isShort is set when the line ends before the block does.
	isShort   bool
	isOneChar bool
	// preWhite and preWhiteChars count the blanks just before the block.
	preWhite      int
	preWhiteChars int
	// startCharVcols and endCharVcols are the widths of the characters
	// at the block edges.
	startCharVcols int
	endCharVcols   int
}

// blockPrep computes the part of line lnum inside the block. With isDel
// set a character cut by an edge is counted as inside, so deleting it
// leaves spaces for the part outside.
func (h *Handler) blockPrep(oa *execctx.OpArg, lnum int, isDel bool) blockDef {
	var bd blockDef
	line := h.store.Line(lnum)

	vcol, incr := 0, 0
	i, prevStart := 0, 0
	for vcol < oa.StartVcol && i < len(line) {
		incr = h.class.Width(charclass.RuneAt(line, i), vcol)
		vcol += incr
		if charclass.IsBlank(rune(line[i])) {
			bd.preWhite += incr
			bd.preWhiteChars++
		} else {
			bd.preWhite = 0
			bd.preWhiteChars = 0
		}
		prevStart = i
		i += charclass.CharLen(line, i)
	}
	bd.startVcol = vcol
	pstart := i
	bd.startCharVcols = incr

	if bd.startVcol < oa.StartVcol {
		bd.endVcol = bd.startVcol
		bd.isShort = true
		if !isDel || oa.OpType == vim.OpAppend {
			bd.endspaces = oa.EndVcol - oa.StartVcol + 1
		}
		bd.textcol = pstart
		return bd
	}

	bd.startspaces = bd.startVcol - oa.StartVcol
	if isDel && bd.startspaces != 0 {
		bd.startspaces = bd.startCharVcols - bd.startspaces
	}
	pend := pstart
	bd.endVcol = bd.startVcol
	if bd.endVcol > oa.EndVcol {
		bd.isOneChar = true
		switch oa.OpType {
		case vim.OpInsert:
			bd.endspaces = bd.startCharVcols - bd.startspaces
		case vim.OpAppend:
			bd.startspaces += oa.EndVcol - oa.StartVcol + 1
			bd.endspaces = bd.startCharVcols - bd.startspaces
		default:
			bd.startspaces = oa.EndVcol - oa.StartVcol + 1
			if isDel && oa.OpType != vim.OpLshift {
				bd.startspaces = bd.startCharVcols - (bd.startVcol - oa.StartVcol)
				bd.endspaces = bd.endVcol - oa.EndVcol - 1
			}
		}
	} else {
		vcol = bd.endVcol
		prevEnd := pend
		for vcol <= oa.EndVcol && pend < len(line) {
			prevEnd = pend
			incr = h.class.Width(charclass.RuneAt(line, pend), vcol)
			vcol += incr
			pend += charclass.CharLen(line, pend)
		}
		bd.endVcol = vcol
		switch {
		case bd.endVcol <= oa.EndVcol &&
			(!isDel || oa.OpType == vim.OpAppend || oa.OpType == vim.OpReplace):
			bd.isShort = true
			if oa.OpType == vim.OpAppend {
				bd.endspaces = oa.EndVcol - bd.endVcol + 1
			}
		case bd.endVcol > oa.EndVcol:
			bd.endspaces = bd.endVcol - oa.EndVcol - 1
			if !isDel && bd.endspaces != 0 {
				bd.endspaces = incr - bd.endspaces
				if pend != pstart {
					pend = prevEnd
				}
			}
		}
	}
	bd.endCharVcols = incr
	if isDel && bd.startspaces != 0 {
		pstart = prevStart
	}
	bd.textlen = pend - pstart
	bd.textcol = pstart
	return bd
}

// blockText returns the register lines of a blockwise span. Characters
// cut by the edges contribute spaces.
func (h *Handler) blockText(oa *execctx.OpArg) []string {
	out := make([]string, 0, oa.End.Line-oa.Start.Line+1)
	for lnum := oa.Start.Line; lnum <= oa.End.Line; lnum++ {
		bd := h.blockPrep(oa, lnum, false)
		line := h.store.Line(lnum)
		s := strings.Repeat(" ", bd.startspaces) +
			line[bd.textcol:bd.textcol+bd.textlen] +
			strings.Repeat(" ", bd.endspaces)
		out = append(out, s)
	}
	return out
}

// blockDelete removes the block from every line. A tab cut by an edge is
// replaced by the spaces outside the block.
func (h *Handler) blockDelete(oa *execctx.OpArg) (buffer.Pos, error) {
	cur := oa.Start
	for lnum := oa.Start.Line; lnum <= oa.End.Line; lnum++ {
		bd := h.blockPrep(oa, lnum, true)
		if bd.textlen == 0 {
			continue
		}
		if lnum == oa.Start.Line {
			cur.Col = bd.textcol + bd.startspaces
		}
		line := h.store.Line(lnum)
		nl := line[:bd.textcol] +
			strings.Repeat(" ", bd.startspaces+bd.endspaces) +
			line[bd.textcol+bd.textlen:]
		if err := h.replace(lnum, nl); err != nil {
			return cur, err
		}
	}
	return h.text().Clamp(cur, false), nil
}

// BlockEdit carries a blockwise "I", "A" or "c" from the moment Insert
// mode starts on the first line until the typed text is copied to the
// other lines.
type BlockEdit struct {
	span  execctx.OpArg
	toEOL bool
	col   int
	tail  int
}

// StartBlockEdit prepares the first line of a blockwise span for typing
// and returns where Insert mode starts. For OpAppend a short first line
// is padded to the right edge of the block unless toEOL is set. For
// OpChange the block must already have been deleted.
func (h *Handler) StartBlockEdit(oa *execctx.OpArg, toEOL bool) (BlockEdit, buffer.Pos, error) {
	be := BlockEdit{span: *oa, toEOL: toEOL}
	lnum := oa.Start.Line
	line := h.store.Line(lnum)

	switch oa.OpType {
	case vim.OpAppend:
		bd := h.blockPrep(oa, lnum, true)
		col := bd.textcol + bd.textlen
		if toEOL {
			col = len(line)
		}
		col = min(col, len(line))
		if bd.isShort && !toEOL && bd.endspaces > 0 {
			if err := h.save(lnum, lnum, oa.Start); err != nil {
				return be, oa.Start, err
			}
			line += strings.Repeat(" ", bd.endspaces)
			if err := h.replace(lnum, line); err != nil {
				return be, oa.Start, err
			}
			col = len(line)
		}
		be.col = col
	case vim.OpChange:
		be.col = min(oa.Start.Col, len(line))
	default:
		bd := h.blockPrep(oa, lnum, true)
		be.col = min(bd.textcol, len(line))
	}
	be.tail = len(line) - be.col
	return be, buffer.Pos{Line: lnum, Col: be.col}, nil
}

// FinishBlockEdit copies the text typed on the first line to the other
// lines of the block. "I" skips lines that end before the block, "A" pads
// them. Nothing happens when the text was not a plain insertion.
func (h *Handler) FinishBlockEdit(be BlockEdit) error {
	oa := &be.span
	if oa.End.Line <= oa.Start.Line {
		return nil
	}
	first := h.store.Line(oa.Start.Line)
	n := len(first) - be.tail - be.col
	if n <= 0 || be.col > len(first) {
		return nil
	}
	ins := first[be.col : be.col+n]
	if strings.ContainsAny(ins, "\n") {
		return nil
	}
	if err := h.save(oa.Start.Line+1, oa.End.Line, oa.Start); err != nil {
		return err
	}

	for lnum := oa.Start.Line + 1; lnum <= oa.End.Line; lnum++ {
		bd := h.blockPrep(oa, lnum, true)
		line := h.store.Line(lnum)
		var nl string
		switch oa.OpType {
		case vim.OpAppend:
			if !bd.isShort {
				at := min(bd.textcol+bd.textlen, len(line))
				nl = line[:at] + ins + line[at:]
				break
			}
			pad := 0
			if !be.toEOL {
				pad = oa.EndVcol - bd.endVcol + 1
			}
			nl = line + strings.Repeat(" ", max(pad, 0)) + ins
		case vim.OpChange:
			if bd.isShort {
				continue
			}
			nl = line[:bd.textcol] + ins + line[bd.textcol:]
		default:
			if bd.isShort {
				continue
			}
			nl = line[:bd.textcol] + ins + line[bd.textcol:]
		}
		if err := h.replace(lnum, nl); err != nil {
			return err
		}
	}
	return nil
}
