package cursor

import (
	"errors"

	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
)

// ErrFailed is returned when a motion cannot move, for example at the
// start or end of the buffer.
var ErrFailed = errors.New("cursor: motion failed")

// Direction of a motion.
const (
	Forward  = 1
	Backward = -1
)

// Lines is the read side of the line store.
type Lines interface {
	Line(n int) string
	LineCount() int
}

// Folds reports closed folds. Motions treat a closed fold as one line.
type Folds interface {
	Closed(lnum int) (first, last int, ok bool)
}

// Text is the view motions operate on.
type Text struct {
	lines Lines
	class *charclass.Classifier
	folds Folds
}

// New creates a Text over lines. A nil classifier uses the defaults.
func New(lines Lines, class *charclass.Classifier) *Text {
	if class == nil {
		class = charclass.Default()
	}
	return &Text{lines: lines, class: class}
}

// WithFolds makes motions skip over closed folds.
func (t *Text) WithFolds(f Folds) *Text {
	t.folds = f
	return t
}

// Line returns line lnum.
func (t *Text) Line(lnum int) string {
	return t.lines.Line(lnum)
}

// LineCount returns the number of lines.
func (t *Text) LineCount() int {
	return t.lines.LineCount()
}

// Class returns the classifier.
func (t *Text) Class() *charclass.Classifier {
	return t.class
}

func (t *Text) closedFold(lnum int) (first, last int, ok bool) {
	if t.folds == nil {
		return lnum, lnum, false
	}
	return t.folds.Closed(lnum)
}

// Gchar returns the character at p, or 0 at the end of the line.
func (t *Text) Gchar(p buffer.Pos) rune {
	return charclass.RuneAt(t.lines.Line(p.Line), p.Col)
}

// LineEmpty reports whether line lnum has no characters.
func (t *Text) LineEmpty(lnum int) bool {
	return t.lines.Line(lnum) == ""
}

// LineWhite reports whether line lnum is empty or only blanks.
func (t *Text) LineWhite(lnum int) bool {
	line := t.lines.Line(lnum)
	return FirstNonBlank(line, false) == len(line)
}

// Inc moves p one character forward. It returns 0 when p moved within
// the line, 2 when it moved onto the end of the line, 1 when it moved to
// the start of the next line and -1 at the end of the buffer.
func (t *Text) Inc(p *buffer.Pos) int {
	line := t.lines.Line(p.Line)
	if p.Col < len(line) {
		p.Col += charclass.CharLen(line, p.Col)
		if p.Col < len(line) {
			return 0
		}
		return 2
	}
	if p.Line < t.lines.LineCount() {
		p.Line++
		p.Col = 0
		return 1
	}
	return -1
}

// Dec moves p one character backward. It returns 0 within the line, 1
// when it moved to the end of the previous line and -1 at the start of
// the buffer.
func (t *Text) Dec(p *buffer.Pos) int {
	if p.Col > 0 {
		line := t.lines.Line(p.Line)
		if p.Col > len(line) {
			p.Col = len(line)
			if p.Col == 0 {
				return 0
			}
		}
		p.Col = charclass.PrevCharStart(line, p.Col)
		return 0
	}
	if p.Line > 1 {
		p.Line--
		p.Col = len(t.lines.Line(p.Line))
		return 1
	}
	return -1
}

// Incl is Inc that skips over the end of a line.
func (t *Text) Incl(p *buffer.Pos) int {
	r := t.Inc(p)
	if r >= 1 && p.Col != 0 {
		r = t.Inc(p)
	}
	return r
}

// Decl is Dec that skips over the end of a line.
func (t *Text) Decl(p *buffer.Pos) int {
	r := t.Dec(p)
	if r == 1 && p.Col != 0 {
		r = t.Dec(p)
	}
	return r
}

// cls returns the word class of the character at p.
func (t *Text) cls(p buffer.Pos, bigword bool) int {
	c := t.class.Class(t.Gchar(p))
	if c != charclass.ClassBlank && bigword {
		return 1
	}
	return c
}

// FirstNonBlank returns the column of the first non-blank in line. With
// fix set a line of only blanks yields the last blank rather than the end.
func FirstNonBlank(line string, fix bool) int {
	col := 0
	for col < len(line) && charclass.IsBlank(rune(line[col])) {
		if fix && col+1 == len(line) {
			break
		}
		col++
	}
	return col
}

// Coladvance returns the column on line closest to screen column wcol.
// buffer.MaxCol selects the last character. With onemore the end of the
// line is a valid result.
func (t *Text) Coladvance(line string, wcol int, onemore bool) int {
	if line == "" {
		return 0
	}
	var col int
	if wcol >= buffer.MaxCol {
		col = len(line)
	} else {
		col = t.class.ColAt(line, wcol)
	}
	if col >= len(line) {
		if onemore {
			return len(line)
		}
		return charclass.LastCharStart(line)
	}
	return col
}

// Clamp keeps p inside the buffer. Unless onemore is set the column is
// moved back onto the last character.
func (t *Text) Clamp(p buffer.Pos, onemore bool) buffer.Pos {
	n := t.lines.LineCount()
	if p.Line < 1 {
		p.Line = 1
	}
	if p.Line > n {
		p.Line = max(n, 1)
	}
	line := t.lines.Line(p.Line)
	switch {
	case p.Col < 0:
		p.Col = 0
	case p.Col >= len(line):
		if onemore {
			p.Col = len(line)
		} else {
			p.Col = charclass.LastCharStart(line)
		}
	default:
		p.Col = charclass.CharStart(line, p.Col)
	}
	return p
}

// VirtCol returns the screen columns occupied by the character at p.
func (t *Text) VirtCol(p buffer.Pos) (start, end int) {
	return t.class.VirtCol(t.lines.Line(p.Line), p.Col)
}

// InIndent reports whether everything before p plus extra columns is
// blank.
func (t *Text) InIndent(p buffer.Pos, extra int) bool {
	return FirstNonBlank(t.lines.Line(p.Line), false) >= p.Col+extra
}
