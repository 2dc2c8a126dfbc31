package operator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cursor"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/input/vim"
)

// ErrFailed is returned when an operator cannot be applied to the span,
// for example a join on the last line or a number that cannot be found.
var ErrFailed = errors.New("operator: failed")

// Store is the line storage operators edit. Line numbers are 1-based.
type Store interface {
	Line(n int) string
	LineCount() int
	AppendLine(after int, text string) error
	ReplaceLine(n int, text string) error
	DeleteLine(n int) error
}

// Journal records lines before they change so the change can be undone.
// Save is given the line above and the line below the range, like the
// undo history expects.
type Journal interface {
	Save(top, bot int, cursor buffer.Pos) error
}

// Settings are the buffer options operators consult.
type Settings struct {
	// ShiftWidth of zero uses the tabstop of the classifier.
	ShiftWidth int
	ShiftRound bool
	ExpandTab  bool
	TextWidth  int
	JoinSpaces bool
	AutoIndent bool
	// NrFormats is a comma separated list of "bin", "octal", "hex",
	// "alpha" and "unsigned".
	NrFormats string
	// CpoJoinSpace limits the extra space of 'joinspaces' to '.'.
	CpoJoinSpace bool
}

// DefaultSettings returns the settings of a fresh buffer.
func DefaultSettings() Settings {
	return Settings{
		ShiftWidth: 8,
		JoinSpaces: false,
		NrFormats:  "bin,hex",
	}
}

func (h *Handler) shiftWidth() int {
	if h.settings.ShiftWidth > 0 {
		return h.settings.ShiftWidth
	}
	return h.class.Tabstop()
}

// Handler applies operators to resolved spans. The span arrives as the
// execctx.OpArg filled in by the operator resolver: Start and End ordered,
// End.Col on the last byte of an inclusive character, and StartVcol and
// EndVcol set for blockwise spans.
type Handler struct {
	store    Store
	undo     Journal
	regs     *vim.RegisterStore
	class    *charclass.Classifier
	settings Settings
}

// New creates an operator handler. A nil journal disables undo saving and
// a nil classifier uses the default one.
func New(store Store, undo Journal, regs *vim.RegisterStore, class *charclass.Classifier) *Handler {
	if class == nil {
		class = charclass.Default()
	}
	if regs == nil {
		regs = vim.NewRegisterStore()
	}
	return &Handler{
		store:    store,
		undo:     undo,
		regs:     regs,
		class:    class,
		settings: DefaultSettings(),
	}
}

// SetSettings replaces the buffer options.
func (h *Handler) SetSettings(s Settings) {
	h.settings = s
}

// Settings returns the buffer options in use.
func (h *Handler) Settings() Settings {
	return h.settings
}

// SetClass replaces the character classifier.
func (h *Handler) SetClass(class *charclass.Classifier) {
	if class != nil {
		h.class = class
	}
}

// Registers returns the register store operators write to.
func (h *Handler) Registers() *vim.RegisterStore {
	return h.regs
}

func (h *Handler) text() *cursor.Text {
	return cursor.New(h.store, h.class)
}

// save journals lines first through last before they change.
func (h *Handler) save(first, last int, at buffer.Pos) error {
	if h.undo == nil {
		return nil
	}
	return h.undo.Save(first-1, last+1, at)
}

func (h *Handler) replace(lnum int, text string) error {
	if err := h.store.ReplaceLine(lnum, text); err != nil {
		return fmt.Errorf("operator: line %d: %w", lnum, err)
	}
	return nil
}

// deleteLines removes count lines starting at first.
func (h *Handler) deleteLines(first, count int) error {
	for range count {
		if err := h.store.DeleteLine(first); err != nil {
			return fmt.Errorf("operator: delete line %d: %w", first, err)
		}
	}
	return nil
}

// endCol returns the byte just past the span on its last line. The
// resolver leaves an inclusive End.Col on the last byte of the character.
func endCol(oa *execctx.OpArg, line string) int {
	end := oa.End.Col
	if oa.Inclusive {
		end++
	}
	return min(max(end, 0), len(line))
}

// spanText returns the text of a characterwise or linewise span as
// register lines.
func (h *Handler) spanText(oa *execctx.OpArg) []string {
	if oa.MotionType == vim.MotionLinewise {
		out := make([]string, 0, oa.End.Line-oa.Start.Line+1)
		for lnum := oa.Start.Line; lnum <= oa.End.Line; lnum++ {
			out = append(out, h.store.Line(lnum))
		}
		return out
	}
	if oa.Start.Line == oa.End.Line {
		line := h.store.Line(oa.Start.Line)
		start := min(oa.Start.Col, len(line))
		return []string{line[start:max(endCol(oa, line), start)]}
	}
	first := h.store.Line(oa.Start.Line)
	out := []string{first[min(oa.Start.Col, len(first)):]}
	for lnum := oa.Start.Line + 1; lnum < oa.End.Line; lnum++ {
		out = append(out, h.store.Line(lnum))
	}
	last := h.store.Line(oa.End.Line)
	return append(out, last[:endCol(oa, last)])
}

// regType maps the span shape to the register type.
func regType(oa *execctx.OpArg) vim.MotionType {
	if oa.BlockMode {
		return vim.MotionBlockwise
	}
	return oa.MotionType
}

// indentOf returns the leading blanks of line.
func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// indentWidth returns the screen width of the indent of line.
func (h *Handler) indentWidth(line string) int {
	return h.class.LineWidth(indentOf(line))
}

// makeIndent builds an indent of width columns, using tabs unless
// expandtab is set.
func (h *Handler) makeIndent(width int) string {
	return h.fillWhite(0, width)
}

// fillWhite returns blanks that cover screen columns from through from+n.
func (h *Handler) fillWhite(from, n int) string {
	if n <= 0 {
		return ""
	}
	if h.settings.ExpandTab {
		return strings.Repeat(" ", n)
	}
	ts := h.class.Tabstop()
	var sb strings.Builder
	col, end := from, from+n
	for {
		next := col + ts - col%ts
		if next > end {
			break
		}
		sb.WriteByte('\t')
		col = next
	}
	sb.WriteString(strings.Repeat(" ", end-col))
	return sb.String()
}
