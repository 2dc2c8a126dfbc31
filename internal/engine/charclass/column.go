package charclass

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// RuneAt returns the rune at byte col of line, or 0 at or past the end.
func RuneAt(line string, col int) rune {
	if col < 0 || col >= len(line) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(line[col:])
	return r
}

// CharLen returns the byte length of the character at col including any
// composing characters that follow it. It returns 0 at the end of line.
func CharLen(line string, col int) int {
	if col < 0 || col >= len(line) {
		return 0
	}
	if line[col] < utf8.RuneSelf && (col+1 == len(line) || line[col+1] < utf8.RuneSelf) {
		return 1
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(line[col:], -1)
	if cluster == "" {
		return 1
	}
	return len(cluster)
}

// CharStart returns the start of the character that contains byte col.
func CharStart(line string, col int) int {
	if col <= 0 {
		return 0
	}
	if col >= len(line) {
		return col
	}
	start := 0
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		from, to := g.Positions()
		if col < to {
			return from
		}
		start = to
	}
	return start
}

// PrevCharStart returns the start of the character before col. At column
// zero it returns zero.
func PrevCharStart(line string, col int) int {
	if col <= 0 {
		return 0
	}
	if col > len(line) {
		col = len(line)
	}
	return CharStart(line, col-1)
}

// LastCharStart returns the start of the last character, or 0 for an
// empty line.
func LastCharStart(line string) int {
	return PrevCharStart(line, len(line))
}

// VirtCol returns the first and last screen column (0-based) occupied by
// the character at byte col. At or past the end of the line both are the
// column just after the last character.
func (c *Classifier) VirtCol(line string, col int) (start, end int) {
	vcol := 0
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		w := c.width(r, vcol)
		if i >= col {
			return vcol, vcol + max(w, 1) - 1
		}
		vcol += w
		i += size
	}
	return vcol, vcol
}

// LineWidth returns the number of screen columns line occupies.
func (c *Classifier) LineWidth(line string) int {
	start, _ := c.VirtCol(line, len(line))
	return start
}

// ColAt returns the byte column of the character covering screen column
// vcol. When the line is shorter, it returns len(line).
func (c *Classifier) ColAt(line string, vcol int) int {
	cur := 0
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		w := c.width(r, cur)
		if cur+w > vcol && !IsComposing(r) {
			return i
		}
		cur += w
		i += size
	}
	return len(line)
}

// Width returns the screen cells r takes when it starts at screen column
// vcol. Only a tab depends on vcol.
func (c *Classifier) Width(r rune, vcol int) int {
	return c.width(r, vcol)
}

func (c *Classifier) width(r rune, vcol int) int {
	if r == '\t' {
		return c.tabstop - vcol%c.tabstop
	}
	return Cells(r)
}
