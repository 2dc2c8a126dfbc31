package operator

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/input/vim"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

// changeCase applies a case operator to s.
func changeCase(op vim.OpType, s string) string {
	switch op {
	case vim.OpUpper:
		return upperCaser.String(s)
	case vim.OpLower:
		return lowerCaser.String(s)
	case vim.OpRot13:
		return strings.Map(rot13, s)
	default:
		return strings.Map(swapCase, s)
	}
}

func swapCase(r rune) rune {
	switch {
	case unicode.IsUpper(r):
		return unicode.ToLower(r)
	case unicode.IsLower(r):
		return unicode.ToUpper(r)
	}
	return r
}

func rot13(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z':
		return 'a' + (r-'a'+13)%26
	case r >= 'A' && r <= 'Z':
		return 'A' + (r-'A'+13)%26
	}
	return r
}

// columns returns the byte range of line lnum covered by a characterwise,
// linewise or blockwise span.
func (h *Handler) columns(oa *execctx.OpArg, lnum int) (from, to int) {
	line := h.store.Line(lnum)
	if oa.BlockMode {
		bd := h.blockPrep(oa, lnum, false)
		return bd.textcol, bd.textcol + bd.textlen
	}
	from, to = 0, len(line)
	if oa.MotionType == vim.MotionLinewise {
		return from, to
	}
	if lnum == oa.Start.Line {
		from = min(oa.Start.Col, len(line))
	}
	if lnum == oa.End.Line {
		to = max(endCol(oa, line), from)
	}
	return from, to
}

// ChangeCase applies "g~", "gu", "gU" or "g?" to the span. The cursor is
// left on the start of the span.
func (h *Handler) ChangeCase(oa *execctx.OpArg) (buffer.Pos, error) {
	if err := h.save(oa.Start.Line, oa.End.Line, oa.Start); err != nil {
		return oa.Start, err
	}
	for lnum := oa.Start.Line; lnum <= oa.End.Line; lnum++ {
		line := h.store.Line(lnum)
		from, to := h.columns(oa, lnum)
		if from >= to {
			continue
		}
		nl := line[:from] + changeCase(oa.OpType, line[from:to]) + line[to:]
		if nl == line {
			continue
		}
		if err := h.replace(lnum, nl); err != nil {
			return oa.Start, err
		}
	}
	start := oa.Start
	if oa.MotionType == vim.MotionLinewise && !oa.BlockMode {
		start.Col = 0
	}
	return h.text().Clamp(start, false), nil
}

// ReplaceSpan replaces every character of the span with c, as "r" does in
// Visual mode. Blockwise spans replace each screen cell, so a tab becomes
// several copies of c.
func (h *Handler) ReplaceSpan(oa *execctx.OpArg, c string) (buffer.Pos, error) {
	if c == "" {
		return oa.Start, ErrFailed
	}
	if err := h.save(oa.Start.Line, oa.End.Line, oa.Start); err != nil {
		return oa.Start, err
	}
	cells := max(charclass.Cells([]rune(c)[0]), 1)

	for lnum := oa.Start.Line; lnum <= oa.End.Line; lnum++ {
		line := h.store.Line(lnum)
		var nl string
		if oa.BlockMode {
			bd := h.blockPrep(oa, lnum, true)
			if bd.textlen == 0 {
				continue
			}
			numc := oa.EndVcol - oa.StartVcol + 1
			if bd.isShort {
				numc -= oa.EndVcol - bd.endVcol + 1
			}
			numc /= cells
			nl = line[:bd.textcol] + strings.Repeat(" ", bd.startspaces) + strings.Repeat(c, max(numc, 0))
			if !bd.isShort {
				nl += strings.Repeat(" ", bd.endspaces) + line[bd.textcol+bd.textlen:]
			}
		} else {
			from, to := h.columns(oa, lnum)
			if from >= to {
				continue
			}
			var sb strings.Builder
			sb.WriteString(line[:from])
			for i := from; i < to; i += max(charclass.CharLen(line, i), 1) {
				sb.WriteString(c)
			}
			sb.WriteString(line[to:])
			nl = sb.String()
		}
		if err := h.replace(lnum, nl); err != nil {
			return oa.Start, err
		}
	}
	start := oa.Start
	if oa.MotionType == vim.MotionLinewise && !oa.BlockMode {
		start.Col = 0
	}
	return h.text().Clamp(start, false), nil
}

// ReplaceChars replaces count characters from p with c, as "r" does in
// Normal mode. It fails when the line has fewer characters left. The
// cursor ends on the last replaced character.
func (h *Handler) ReplaceChars(p buffer.Pos, count int, c string) (buffer.Pos, error) {
	line := h.store.Line(p.Line)
	count = max(count, 1)
	end := p.Col
	for range count {
		n := charclass.CharLen(line, end)
		if n == 0 {
			return p, ErrFailed
		}
		end += n
	}
	if err := h.save(p.Line, p.Line, p); err != nil {
		return p, err
	}
	nl := line[:p.Col] + strings.Repeat(c, count) + line[end:]
	if err := h.replace(p.Line, nl); err != nil {
		return p, err
	}
	last := p.Col + (count-1)*len(c)
	return buffer.Pos{Line: p.Line, Col: last}, nil
}

// DeleteChars removes count characters from p without touching the
// registers. "r<CR>" uses it before breaking the line.
func (h *Handler) DeleteChars(p buffer.Pos, count int) error {
	line := h.store.Line(p.Line)
	end := p.Col
	for range max(count, 1) {
		n := charclass.CharLen(line, end)
		if n == 0 {
			return ErrFailed
		}
		end += n
	}
	if err := h.save(p.Line, p.Line, p); err != nil {
		return err
	}
	return h.replace(p.Line, line[:p.Col]+line[end:])
}

// SwapChars toggles the case of count characters from p, as "~" does
// without 'tildeop'. The cursor moves past them but stays on the line.
func (h *Handler) SwapChars(p buffer.Pos, count int) (buffer.Pos, error) {
	line := h.store.Line(p.Line)
	if line == "" {
		return p, ErrFailed
	}
	end := p.Col
	for range max(count, 1) {
		n := charclass.CharLen(line, end)
		if n == 0 {
			break
		}
		end += n
	}
	if err := h.save(p.Line, p.Line, p); err != nil {
		return p, err
	}
	nl := line[:p.Col] + changeCase(vim.OpTilde, line[p.Col:end]) + line[end:]
	if err := h.replace(p.Line, nl); err != nil {
		return p, err
	}
	p.Col += len(nl) - len(line) + end - p.Col
	return h.text().Clamp(p, false), nil
}
