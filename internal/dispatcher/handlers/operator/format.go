package operator

import (
	"strings"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/input/vim"
)

// defaultTextWidth is used by "gq" when 'textwidth' is zero.
const defaultTextWidth = 79

// Format re-wraps the lines of the span to 'textwidth'. Paragraphs are
// separated by blank lines and keep the indent of their first line.
// "gq" leaves the cursor on the last formatted line; "gw" (OpFormat2)
// puts it back at keep, adjusted when lines above it changed.
func (h *Handler) Format(oa *execctx.OpArg, keep buffer.Pos) (buffer.Pos, error) {
	tw := h.settings.TextWidth
	if tw <= 0 {
		tw = defaultTextWidth
	}
	if err := h.save(oa.Start.Line, oa.End.Line, oa.Start); err != nil {
		return oa.Start, err
	}

	var out []string
	var para []string
	flush := func() {
		if len(para) > 0 {
			out = append(out, h.wrap(para, tw)...)
			para = para[:0]
		}
	}
	for lnum := oa.Start.Line; lnum <= oa.End.Line; lnum++ {
		line := h.store.Line(lnum)
		if strings.TrimSpace(line) == "" {
			flush()
			out = append(out, line)
			continue
		}
		para = append(para, line)
	}
	flush()

	oldCount := oa.End.Line - oa.Start.Line + 1
	if err := h.replaceRange(oa.Start.Line, oldCount, out); err != nil {
		return oa.Start, err
	}
	lastLine := oa.Start.Line + len(out) - 1

	if oa.OpType == vim.OpFormat2 {
		if keep.Line > oa.End.Line {
			keep.Line += len(out) - oldCount
		} else if keep.Line > lastLine {
			keep.Line = lastLine
		}
		return h.text().Clamp(keep, false), nil
	}

	lnum := lastLine
	if oa.EndAdjusted && lnum < h.store.LineCount() {
		lnum++
	}
	return buffer.Pos{Line: lnum, Col: cursor.FirstNonBlank(h.store.Line(lnum), true)}, nil
}

// wrap fills the words of one paragraph into lines no wider than tw.
func (h *Handler) wrap(para []string, tw int) []string {
	indent := indentOf(para[0])
	width := h.class.LineWidth(indent)

	var out []string
	var sb strings.Builder
	cur := 0
	prevEnd := byte(0)
	for _, line := range para {
		for _, word := range strings.Fields(line) {
			wlen := h.class.LineWidth(word)
			sep := 1
			if h.settings.JoinSpaces && (prevEnd == '.' || prevEnd == '?' || prevEnd == '!') {
				sep = 2
			}
			if cur > 0 && width+cur+sep+wlen > tw {
				out = append(out, indent+sb.String())
				sb.Reset()
				cur = 0
			}
			if cur > 0 {
				sb.WriteString(strings.Repeat(" ", sep))
				cur += sep
			}
			sb.WriteString(word)
			cur += wlen
			prevEnd = word[len(word)-1]
		}
	}
	if sb.Len() > 0 {
		out = append(out, indent+sb.String())
	}
	return out
}

// replaceRange swaps count lines at first for lines.
func (h *Handler) replaceRange(first, count int, lines []string) error {
	common := min(count, len(lines))
	for i := range common {
		if h.store.Line(first+i) == lines[i] {
			continue
		}
		if err := h.replace(first+i, lines[i]); err != nil {
			return err
		}
	}
	if count > common {
		return h.deleteLines(first+common, count-common)
	}
	for i := common; i < len(lines); i++ {
		if err := h.store.AppendLine(first+i-1, lines[i]); err != nil {
			return err
		}
	}
	return nil
}
