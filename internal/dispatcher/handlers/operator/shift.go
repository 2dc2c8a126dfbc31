package operator

import (
	"strings"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/input/vim"
)

// Shift moves the lines of the span amount shiftwidths to the left
// (OpLshift) or right. Empty lines are left alone. A blockwise span
// shifts the text right of the block's left edge.
func (h *Handler) Shift(oa *execctx.OpArg, amount int) (buffer.Pos, error) {
	left := oa.OpType == vim.OpLshift
	amount = max(amount, 1)
	if err := h.save(oa.Start.Line, oa.End.Line, oa.Start); err != nil {
		return oa.Start, err
	}
	for lnum := oa.Start.Line; lnum <= oa.End.Line; lnum++ {
		line := h.store.Line(lnum)
		if line == "" {
			continue
		}
		var nl string
		if oa.BlockMode {
			nl = h.shiftBlock(oa, lnum, left, amount)
		} else {
			nl = h.shiftLine(line, left, amount)
		}
		if nl == line {
			continue
		}
		if err := h.replace(lnum, nl); err != nil {
			return oa.Start, err
		}
	}

	if oa.BlockMode {
		line := h.store.Line(oa.Start.Line)
		col := h.class.ColAt(line, oa.StartVcol)
		return h.text().Clamp(buffer.Pos{Line: oa.Start.Line, Col: col}, false), nil
	}
	line := h.store.Line(oa.Start.Line)
	return buffer.Pos{Line: oa.Start.Line, Col: cursor.FirstNonBlank(line, true)}, nil
}

// shiftLine returns line with its indent changed by amount shiftwidths.
// With shiftround the indent is rounded to a multiple of shiftwidth.
func (h *Handler) shiftLine(line string, left bool, amount int) string {
	sw := h.shiftWidth()
	count := h.indentWidth(line)
	if h.settings.ShiftRound {
		i, j := count/sw, count%sw
		if j != 0 && left {
			amount--
		}
		if left {
			i = max(i-amount, 0)
		} else {
			i += amount
		}
		count = i * sw
	} else if left {
		count = max(count-sw*amount, 0)
	} else {
		count += sw * amount
	}
	return h.makeIndent(count) + strings.TrimLeft(line, " \t")
}

// shiftBlock inserts or removes blanks at the left edge of the block on
// line lnum.
func (h *Handler) shiftBlock(oa *execctx.OpArg, lnum int, left bool, amount int) string {
	line := h.store.Line(lnum)
	total := amount * h.shiftWidth()
	col := h.class.ColAt(line, oa.StartVcol)
	if col >= len(line) {
		return line
	}
	startVcol, _ := h.class.VirtCol(line, col)

	// Extend over the blanks at and after the edge.
	end := col
	for end < len(line) && charclass.IsBlank(rune(line[end])) {
		end++
	}
	endVcol, _ := h.class.VirtCol(line, end)
	white := endVcol - startVcol

	if left {
		white = max(white-total, 0)
	} else {
		white += total
	}
	return line[:col] + h.fillWhite(startVcol, white) + line[end:]
}

// Reindent re-computes the indent of every line in the span. A line
// following one that opens a brace is indented one shiftwidth deeper; a
// line starting with a closing brace one shallower. Blank lines lose
// their indent.
func (h *Handler) Reindent(oa *execctx.OpArg) (buffer.Pos, error) {
	if err := h.save(oa.Start.Line, oa.End.Line, oa.Start); err != nil {
		return oa.Start, err
	}
	for lnum := oa.Start.Line; lnum <= oa.End.Line; lnum++ {
		line := h.store.Line(lnum)
		body := strings.TrimLeft(line, " \t")
		nl := ""
		if body != "" {
			nl = h.makeIndent(h.braceIndent(lnum, body)) + body
		}
		if nl == line {
			continue
		}
		if err := h.replace(lnum, nl); err != nil {
			return oa.Start, err
		}
	}
	line := h.store.Line(oa.Start.Line)
	return buffer.Pos{Line: oa.Start.Line, Col: cursor.FirstNonBlank(line, true)}, nil
}

func (h *Handler) braceIndent(lnum int, body string) int {
	prev := lnum - 1
	for prev >= 1 && strings.TrimSpace(h.store.Line(prev)) == "" {
		prev--
	}
	if prev < 1 {
		return 0
	}
	pline := h.store.Line(prev)
	amount := h.indentWidth(pline)
	trimmed := strings.TrimRight(pline, " \t")
	if strings.HasSuffix(trimmed, "{") || strings.HasSuffix(trimmed, "(") || strings.HasSuffix(trimmed, "[") {
		amount += h.shiftWidth()
	}
	switch body[0] {
	case '}', ')', ']':
		amount -= h.shiftWidth()
	}
	return max(amount, 0)
}
