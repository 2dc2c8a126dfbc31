package operator

import (
	"strings"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/input/vim"
)

// Join joins count lines starting at lnum. With insertSpace the leading
// blanks of each joined line are removed and one space is put in between,
// two after a '.' when 'joinspaces' is set and none before a ')' or after
// a line that already ends in a blank. The cursor is left at the last
// join point.
func (h *Handler) Join(lnum, count int, insertSpace bool) (buffer.Pos, error) {
	count = max(count, 2)
	if lnum+count-1 > h.store.LineCount() {
		return buffer.Pos{Line: lnum}, ErrFailed
	}
	if err := h.save(lnum, lnum+count-1, buffer.Pos{Line: lnum}); err != nil {
		return buffer.Pos{Line: lnum}, err
	}

	var sb strings.Builder
	col := 0
	var end1, end2 byte
	for t := range count {
		curr := h.store.Line(lnum + t)
		spaces := 0
		if insertSpace && t > 0 {
			curr = strings.TrimLeft(curr, " \t")
			if curr != "" && curr[0] != ')' && sb.Len() != 0 && end1 != '\t' {
				if end1 == ' ' {
					end1 = end2
				} else {
					spaces++
				}
				if h.settings.JoinSpaces && (end1 == '.' ||
					(!h.settings.CpoJoinSpace && (end1 == '?' || end1 == '!'))) {
					spaces++
				}
			}
		}
		if t > 0 {
			col = sb.Len()
		}
		sb.WriteString(strings.Repeat(" ", spaces))
		sb.WriteString(curr)

		end1, end2 = 0, 0
		if insertSpace && curr != "" {
			end1 = curr[len(curr)-1]
			if len(curr) > 1 {
				end2 = curr[len(curr)-2]
			}
		}
	}

	if err := h.replace(lnum, sb.String()); err != nil {
		return buffer.Pos{Line: lnum}, err
	}
	if err := h.deleteLines(lnum+1, count-1); err != nil {
		return buffer.Pos{Line: lnum}, err
	}
	return h.text().Clamp(buffer.Pos{Line: lnum, Col: col}, false), nil
}

// JoinSpan joins the lines of the span, as "J" and "gJ" do as operators.
// A span of one line joins it with the next.
func (h *Handler) JoinSpan(oa *execctx.OpArg) (buffer.Pos, error) {
	return h.Join(oa.Start.Line, max(oa.LineCount, 2), oa.OpType == vim.OpJoin)
}
