package cursor

import (
	"strings"

	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
)

// CharSearch remembers the last "f", "F", "t" or "T" for ";" and ",".
type CharSearch struct {
	// Char is the searched character, 0 before the first search.
	Char rune
	// Dir is Forward or Backward.
	Dir int
	// Till is set for "t" and "T".
	Till bool
}

// Find searches the line of p for the count'th occurrence of c in dir.
// With till set it stops one character before the match. The search is
// remembered unless remember is false.
func (cs *CharSearch) Find(t *Text, p buffer.Pos, c rune, dir int, till bool, count int, remember bool) (buffer.Pos, error) {
	if remember {
		cs.Char, cs.Dir, cs.Till = c, dir, till
	}
	return t.searchChar(p, string(c), dir, till, count, true)
}

// Repeat repeats the last search. With reverse set (",") the direction is
// flipped. Unless keepStuck is set (';' in cpoptions) a repeated "t" that
// would match right next to the cursor moves on to the next match.
func (cs *CharSearch) Repeat(t *Text, p buffer.Pos, reverse bool, count int, keepStuck bool) (buffer.Pos, int, error) {
	if cs.Char == 0 {
		return p, 0, ErrFailed
	}
	dir := cs.Dir
	if reverse {
		dir = -dir
	}
	stop := !(cs.Till && count == 1 && !keepStuck)
	np, err := t.searchChar(p, string(cs.Char), dir, cs.Till, count, stop)
	return np, dir, err
}

func (t *Text) searchChar(p buffer.Pos, c string, dir int, till bool, count int, stop bool) (buffer.Pos, error) {
	line := t.Line(p.Line)
	col := p.Col
	for ; count > 0; count-- {
		for {
			if dir > 0 {
				col += max(charclass.CharLen(line, col), 1)
				if col >= len(line) {
					return p, ErrFailed
				}
			} else {
				if col == 0 {
					return p, ErrFailed
				}
				col = charclass.PrevCharStart(line, col)
			}
			if strings.HasPrefix(line[col:], c) && stop {
				break
			}
			stop = true
		}
	}
	if till {
		if dir > 0 {
			col = charclass.PrevCharStart(line, col)
		} else {
			col += charclass.CharLen(line, col)
		}
	}
	p.Col = col
	return p, nil
}
