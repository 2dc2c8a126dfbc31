package operator

import (
	"fmt"
	"strings"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/input/vim"
)

func checkRegister(name rune) error {
	if name != 0 && !vim.IsValidRegister(name, true) {
		return fmt.Errorf("%w: %q", vim.ErrInvalidRegister, name)
	}
	return nil
}

// Yank copies the span into the register named by oa.Regname, or "0"
// when none was given. The cursor does not move.
func (h *Handler) Yank(oa *execctx.OpArg) error {
	if oa.Regname == '_' {
		return nil
	}
	if err := checkRegister(oa.Regname); err != nil {
		return err
	}
	lines, typ, width := h.yankText(oa)
	return h.regs.Yank(oa.Regname, lines, typ, width)
}

// yankText extracts the span as register content. An exclusive
// characterwise span from column zero to column zero of a later line is
// yanked as the lines before the end.
func (h *Handler) yankText(oa *execctx.OpArg) ([]string, vim.MotionType, int) {
	if oa.BlockMode {
		return h.blockText(oa), vim.MotionBlockwise, oa.EndVcol - oa.StartVcol
	}
	if oa.MotionType == vim.MotionCharwise && oa.Start.Col == 0 && !oa.Inclusive &&
		!oa.IsVisual && oa.End.Col == 0 && oa.End.Line > oa.Start.Line {
		span := *oa
		span.MotionType = vim.MotionLinewise
		span.End.Line--
		return h.spanText(&span), vim.MotionLinewise, 0
	}
	return h.spanText(oa), oa.MotionType, 0
}

// Delete removes the span and stores it in the registers. It returns the
// new cursor position.
func (h *Handler) Delete(oa *execctx.OpArg) (buffer.Pos, error) {
	return h.delete(oa)
}

func (h *Handler) delete(oa *execctx.OpArg) (buffer.Pos, error) {
	if oa.Empty {
		return oa.Start, h.save(oa.Start.Line, oa.Start.Line, oa.Start)
	}
	if err := checkRegister(oa.Regname); err != nil {
		return oa.Start, err
	}

	// A characterwise delete over several lines that leaves only blanks
	// after the end and starts in the indent deletes whole lines.
	if oa.MotionType == vim.MotionCharwise && !oa.IsVisual && !oa.BlockMode &&
		oa.LineCount > 1 && oa.MotionForce == 0 && oa.OpType == vim.OpDelete {
		last := h.store.Line(oa.End.Line)
		rest := last[min(endCol(oa, last), len(last)):]
		if strings.TrimLeft(rest, " \t") == "" && h.text().InIndent(oa.Start, 0) {
			oa.MotionType = vim.MotionLinewise
		}
	}

	if oa.MotionType == vim.MotionCharwise && oa.LineCount == 1 &&
		oa.OpType == vim.OpDelete && h.store.Line(oa.Start.Line) == "" {
		return oa.Start, nil
	}

	if oa.Regname != '_' {
		lines, typ, width := h.yankText(oa)
		if err := h.regs.Delete(oa.Regname, lines, typ, width, oa.UseRegOne); err != nil {
			return oa.Start, err
		}
	}

	if err := h.save(oa.Start.Line, oa.End.Line, oa.Start); err != nil {
		return oa.Start, err
	}

	switch {
	case oa.BlockMode:
		return h.blockDelete(oa)
	case oa.MotionType == vim.MotionLinewise:
		return h.deleteLinewise(oa)
	case oa.Start.Line == oa.End.Line:
		line := h.store.Line(oa.Start.Line)
		start := min(oa.Start.Col, len(line))
		nl := line[:start] + line[max(endCol(oa, line), start):]
		if err := h.replace(oa.Start.Line, nl); err != nil {
			return oa.Start, err
		}
		cur := buffer.Pos{Line: oa.Start.Line, Col: start}
		if cur.Col >= len(nl) && cur.Col > 0 {
			cur.Col = charclass.LastCharStart(nl)
		}
		return cur, nil
	default:
		first := h.store.Line(oa.Start.Line)
		last := h.store.Line(oa.End.Line)
		start := min(oa.Start.Col, len(first))
		joined := first[:start] + last[endCol(oa, last):]
		if err := h.deleteLines(oa.Start.Line+1, oa.End.Line-oa.Start.Line); err != nil {
			return oa.Start, err
		}
		if err := h.replace(oa.Start.Line, joined); err != nil {
			return oa.Start, err
		}
		return h.text().Clamp(buffer.Pos{Line: oa.Start.Line, Col: start}, false), nil
	}
}

func (h *Handler) deleteLinewise(oa *execctx.OpArg) (buffer.Pos, error) {
	if oa.OpType == vim.OpChange {
		if n := oa.End.Line - oa.Start.Line; n > 0 {
			if err := h.deleteLines(oa.Start.Line+1, n); err != nil {
				return oa.Start, err
			}
		}
		keep := ""
		if h.settings.AutoIndent {
			keep = indentOf(h.store.Line(oa.Start.Line))
		}
		if err := h.replace(oa.Start.Line, keep); err != nil {
			return oa.Start, err
		}
		return buffer.Pos{Line: oa.Start.Line, Col: len(keep)}, nil
	}

	if err := h.deleteLines(oa.Start.Line, oa.End.Line-oa.Start.Line+1); err != nil {
		return oa.Start, err
	}
	lnum := min(oa.Start.Line, h.store.LineCount())
	lnum = max(lnum, 1)
	return buffer.Pos{Line: lnum, Col: cursor.FirstNonBlank(h.store.Line(lnum), true)}, nil
}

// Change deletes the span and returns where Insert mode starts. For a
// blockwise span the caller follows up with StartBlockEdit.
func (h *Handler) Change(oa *execctx.OpArg) (buffer.Pos, error) {
	startCol := oa.Start.Col
	if oa.MotionType == vim.MotionLinewise {
		startCol = 0
	}
	cur, err := h.delete(oa)
	if err != nil {
		return cur, err
	}
	if oa.BlockMode || oa.MotionType == vim.MotionLinewise {
		return cur, nil
	}
	line := h.store.Line(cur.Line)
	if startCol > cur.Col && line != "" {
		cur.Col += max(charclass.CharLen(line, cur.Col), 1)
	}
	return cur, nil
}
