package cursor

import "github.com/dshills/modalcore/internal/engine/buffer"

// FwdWord moves count words forward from p. With eol set, the last word
// stops at the end of its line instead of crossing to the next one, as
// an operator wants. It fails when p starts on the last character of the
// buffer; the returned position is where the cursor ended up regardless.
func (t *Text) FwdWord(p buffer.Pos, count int, bigword, eol bool) (buffer.Pos, error) {
	for count > 0 {
		count--
		if _, last, ok := t.closedFold(p.Line); ok {
			p.Line = last
			p.Col = t.Coladvance(t.Line(last), buffer.MaxCol, false)
		}
		sclass := t.cls(p, bigword)

		lastLine := p.Line == t.LineCount()
		i := t.Inc(&p)
		if i == -1 || (i >= 1 && lastLine) {
			return p, ErrFailed
		}
		if i >= 1 && eol && count == 0 {
			return p, nil
		}

		if sclass != 0 {
			for t.cls(p, bigword) == sclass {
				i = t.Inc(&p)
				if i == -1 || (i >= 1 && eol && count == 0) {
					return p, nil
				}
			}
		}

		for t.cls(p, bigword) == 0 {
			if p.Col == 0 && t.LineEmpty(p.Line) {
				break
			}
			i = t.Inc(&p)
			if i == -1 || (i >= 1 && eol && count == 0) {
				return p, nil
			}
		}
	}
	return p, nil
}

// BckWord moves count words backward. With stop set, a cursor inside a
// word stops at the start of that word.
func (t *Text) BckWord(p buffer.Pos, count int, bigword, stop bool) (buffer.Pos, error) {
	for count > 0 {
		count--
		if first, _, ok := t.closedFold(p.Line); ok {
			p.Line = first
			p.Col = 0
		}
		sclass := t.cls(p, bigword)
		if t.Dec(&p) == -1 {
			return p, ErrFailed
		}

		finished := false
		if !stop || sclass == t.cls(p, bigword) || sclass == 0 {
			for t.cls(p, bigword) == 0 {
				if p.Col == 0 && t.LineEmpty(p.Line) {
					finished = true
					break
				}
				if t.Dec(&p) == -1 {
					return p, nil
				}
			}
			if !finished && t.skipChars(&p, t.cls(p, bigword), Backward, bigword) {
				return p, nil
			}
		}
		if !finished {
			t.Inc(&p)
		}
		stop = false
	}
	return p, nil
}

// EndWord moves to the end of the word, count times. With stop set a
// cursor on the last character of a word stays there for the first count.
// With empty set an empty line counts as a word end.
func (t *Text) EndWord(p buffer.Pos, count int, bigword, stop, empty bool) (buffer.Pos, error) {
	for count > 0 {
		count--
		if _, last, ok := t.closedFold(p.Line); ok {
			p.Line = last
			p.Col = t.Coladvance(t.Line(last), buffer.MaxCol, false)
		}
		sclass := t.cls(p, bigword)
		if t.Inc(&p) == -1 {
			return p, ErrFailed
		}

		finished := false
		if t.cls(p, bigword) == sclass && sclass != 0 {
			if t.skipChars(&p, sclass, Forward, bigword) {
				return p, ErrFailed
			}
		} else if !stop || sclass == 0 {
			for t.cls(p, bigword) == 0 {
				if p.Col == 0 && t.LineEmpty(p.Line) && empty {
					finished = true
					break
				}
				if t.Inc(&p) == -1 {
					return p, ErrFailed
				}
			}
			if !finished && t.skipChars(&p, t.cls(p, bigword), Forward, bigword) {
				return p, ErrFailed
			}
		}
		if !finished {
			t.Dec(&p)
		}
		stop = false
	}
	return p, nil
}

// BckendWord moves backward to the end of the previous word. With eol set
// it stops when crossing a line break.
func (t *Text) BckendWord(p buffer.Pos, count int, bigword, eol bool) (buffer.Pos, error) {
	for count > 0 {
		count--
		sclass := t.cls(p, bigword)
		i := t.Dec(&p)
		if i == -1 {
			return p, ErrFailed
		}
		if eol && i == 1 {
			return p, nil
		}

		if sclass != 0 {
			for t.cls(p, bigword) == sclass {
				if i = t.Dec(&p); i == -1 || (eol && i == 1) {
					return p, nil
				}
			}
		}

		for t.cls(p, bigword) == 0 {
			if p.Col == 0 && t.LineEmpty(p.Line) {
				break
			}
			if i = t.Dec(&p); i == -1 || (eol && i == 1) {
				return p, nil
			}
		}
	}
	return p, nil
}

// skipChars moves p over characters of class cclass. It returns true when
// it ran into the start or end of the buffer.
func (t *Text) skipChars(p *buffer.Pos, cclass, dir int, bigword bool) bool {
	for t.cls(*p, bigword) == cclass {
		var r int
		if dir == Forward {
			r = t.Inc(p)
		} else {
			r = t.Dec(p)
		}
		if r == -1 {
			return true
		}
	}
	return false
}

// backInLine moves p back to the start of the run of same-class
// characters it is in, without leaving the line.
func (t *Text) backInLine(p *buffer.Pos, bigword bool) {
	sclass := t.cls(*p, bigword)
	for p.Col > 0 {
		t.Dec(p)
		if t.cls(*p, bigword) != sclass {
			t.Inc(p)
			return
		}
	}
}

// oneLeft moves p one character left within its line.
func (t *Text) oneLeft(p *buffer.Pos) bool {
	if p.Col == 0 {
		return false
	}
	t.Dec(p)
	return true
}
