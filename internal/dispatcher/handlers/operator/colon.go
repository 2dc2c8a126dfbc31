package operator

import (
	"strconv"
	"strings"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/input/vim"
)

// ColonCommand builds the command line that ":", "!", "=" with
// 'equalprg' and "gq" with 'formatprg' hand to the command line editor.
// The range is written relative to the cursor so the command repeats
// well. prg is the external program for "=" and "gq"; when empty "indent"
// and "fmt" are used.
func ColonCommand(oa *execctx.OpArg, cursorLine, lineCount int, prg string, folds cursor.Folds) string {
	var sb strings.Builder
	sb.WriteByte(':')
	if oa.IsVisual {
		sb.WriteString("'<,'>")
	} else {
		if oa.Start.Line == cursorLine {
			sb.WriteByte('.')
		} else {
			sb.WriteString(strconv.Itoa(oa.Start.Line))
		}
		foldEnd := oa.Start.Line
		if folds != nil {
			if _, last, ok := folds.Closed(oa.Start.Line); ok {
				foldEnd = last
			}
		}
		if oa.End.Line != oa.Start.Line && oa.End.Line != foldEnd {
			sb.WriteByte(',')
			switch {
			case oa.End.Line == cursorLine:
				sb.WriteByte('.')
			case oa.End.Line == lineCount:
				sb.WriteByte('$')
			case oa.Start.Line == cursorLine && !closed(folds, oa.End.Line):
				sb.WriteString(".+")
				sb.WriteString(strconv.Itoa(oa.LineCount - 1))
			default:
				sb.WriteString(strconv.Itoa(oa.End.Line))
			}
		}
	}
	if oa.OpType != vim.OpColon {
		sb.WriteByte('!')
	}
	switch oa.OpType {
	case vim.OpIndent:
		if prg == "" {
			prg = "indent"
		}
		sb.WriteString(prg)
		sb.WriteByte('\n')
	case vim.OpFormat:
		if prg == "" {
			prg = "fmt"
		}
		sb.WriteString(prg)
		sb.WriteString("\n']")
	}
	return sb.String()
}

func closed(folds cursor.Folds, lnum int) bool {
	if folds == nil {
		return false
	}
	_, _, ok := folds.Closed(lnum)
	return ok
}
