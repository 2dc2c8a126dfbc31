package operator

import (
	"strings"

	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/input/vim"
)

// PutFlags change where put text goes and where the cursor ends.
type PutFlags uint8

const (
	// PutCursorEnd leaves the cursor just after the new text ("gp").
	PutCursorEnd PutFlags = 1 << iota
	// PutLinewise puts characterwise text as lines.
	PutLinewise
	// PutFixIndent shifts put lines so the first one gets the indent of
	// the cursor line ("]p").
	PutFixIndent
)

// Put inserts register text count times after p (dir Forward) or before
// it. It returns the new cursor position.
func (h *Handler) Put(p buffer.Pos, reg vim.Register, dir, count int, flags PutFlags) (buffer.Pos, error) {
	if reg.Empty() {
		return p, vim.ErrEmptyRegister
	}
	count = max(count, 1)
	typ := reg.Type
	if flags&PutLinewise != 0 && typ == vim.MotionCharwise {
		typ = vim.MotionLinewise
	}
	switch typ {
	case vim.MotionLinewise:
		return h.putLines(p, reg.Lines, dir, count, flags)
	case vim.MotionBlockwise:
		return h.putBlock(p, reg, dir, count, flags)
	default:
		return h.putChars(p, reg.Lines, dir, count, flags)
	}
}

func (h *Handler) putLines(p buffer.Pos, lines []string, dir, count int, flags PutFlags) (buffer.Pos, error) {
	after := p.Line
	if dir == cursor.Backward {
		after--
	}
	if err := h.save(after+1, after, p); err != nil {
		return p, err
	}
	if flags&PutFixIndent != 0 && len(lines) > 0 {
		lines = h.reindentTo(lines, h.indentWidth(h.store.Line(p.Line)))
	}
	at := after
	for range count {
		for _, l := range lines {
			if err := h.store.AppendLine(at, l); err != nil {
				return p, err
			}
			at++
		}
	}
	if flags&PutCursorEnd != 0 {
		lnum := min(at+1, h.store.LineCount())
		return buffer.Pos{Line: lnum}, nil
	}
	first := after + 1
	return buffer.Pos{Line: first, Col: cursor.FirstNonBlank(h.store.Line(first), true)}, nil
}

func (h *Handler) putChars(p buffer.Pos, lines []string, dir, count int, flags PutFlags) (buffer.Pos, error) {
	line := h.store.Line(p.Line)
	col := min(p.Col, len(line))
	if dir == cursor.Forward && line != "" {
		col += max(charclass.CharLen(line, col), 1)
		col = min(col, len(line))
	}
	if err := h.save(p.Line, p.Line, p); err != nil {
		return p, err
	}

	text := strings.Repeat(strings.Join(lines, "\n"), count)
	parts := strings.Split(text, "\n")
	if len(parts) == 1 {
		nl := line[:col] + text + line[col:]
		if err := h.replace(p.Line, nl); err != nil {
			return p, err
		}
		end := col + len(text)
		if flags&PutCursorEnd != 0 {
			return buffer.Pos{Line: p.Line, Col: end}, nil
		}
		return buffer.Pos{Line: p.Line, Col: charclass.PrevCharStart(nl, end)}, nil
	}

	tail := line[col:]
	if err := h.replace(p.Line, line[:col]+parts[0]); err != nil {
		return p, err
	}
	for i := 1; i < len(parts); i++ {
		l := parts[i]
		if i == len(parts)-1 {
			l += tail
		}
		if err := h.store.AppendLine(p.Line+i-1, l); err != nil {
			return p, err
		}
	}
	if flags&PutCursorEnd != 0 {
		return buffer.Pos{Line: p.Line + len(parts) - 1, Col: len(parts[len(parts)-1])}, nil
	}
	return buffer.Pos{Line: p.Line, Col: col}, nil
}

// putBlock puts a blockwise register as a column starting at the screen
// column of p, appending lines when the buffer ends first.
func (h *Handler) putBlock(p buffer.Pos, reg vim.Register, dir, count int, flags PutFlags) (buffer.Pos, error) {
	line := h.store.Line(p.Line)
	vcol, endv := h.class.VirtCol(line, p.Col)
	if dir == cursor.Forward && line != "" {
		vcol = endv + 1
	}
	last := p.Line + len(reg.Lines) - 1
	if err := h.save(p.Line, min(last, h.store.LineCount()), p); err != nil {
		return p, err
	}
	for h.store.LineCount() < last {
		if err := h.store.AppendLine(h.store.LineCount(), ""); err != nil {
			return p, err
		}
	}

	width := reg.Width + 1
	startCol := 0
	endCol := 0
	for i, text := range reg.Lines {
		lnum := p.Line + i
		l := h.store.Line(lnum)
		lineWidth := h.class.LineWidth(l)
		var col int
		var pad string
		if lineWidth < vcol {
			col = len(l)
			pad = strings.Repeat(" ", vcol-lineWidth)
		} else {
			col = h.class.ColAt(l, vcol)
			if s, _ := h.class.VirtCol(l, col); s < vcol && col < len(l) {
				// A tab or wide character straddles the column; put the
				// text after it.
				col += charclass.CharLen(l, col)
			}
		}
		shortLine := col >= len(l)

		var sb strings.Builder
		sb.WriteString(pad)
		textWidth := h.class.LineWidth(text)
		for j := range count {
			sb.WriteString(text)
			if j < count-1 || !shortLine {
				sb.WriteString(strings.Repeat(" ", max(width-textWidth, 0)))
			}
		}
		ins := sb.String()
		if err := h.replace(lnum, l[:col]+ins+l[col:]); err != nil {
			return p, err
		}
		if i == 0 {
			startCol = col + len(pad)
		}
		endCol = col + len(ins)
	}
	if flags&PutCursorEnd != 0 {
		return buffer.Pos{Line: last, Col: endCol}, nil
	}
	return buffer.Pos{Line: p.Line, Col: startCol}, nil
}

// reindentTo shifts lines by the amount that gives the first one an
// indent of width columns. Blank lines are kept as they are.
func (h *Handler) reindentTo(lines []string, width int) []string {
	delta := width - h.indentWidth(lines[0])
	out := make([]string, len(lines))
	for i, l := range lines {
		body := strings.TrimLeft(l, " \t")
		if body == "" {
			out[i] = l
			continue
		}
		out[i] = h.makeIndent(max(h.indentWidth(l)+delta, 0)) + body
	}
	return out
}
