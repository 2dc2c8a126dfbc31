package editor

import (
	"errors"

	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
)

// floor is the first column <BS> may delete on the cursor line.
func (s *session) floor() int {
	if s.cur.Line == s.startLine {
		return s.startCol
	}
	return 0
}

// backspace deletes the character before the cursor, or the line break
// inserted before it. In Replace mode the overwritten character comes
// back.
func (s *session) backspace() error {
	if s.cur.Col == 0 {
		if s.cur.Line <= s.startLine {
			return nil
		}
		return s.joinUp()
	}
	if s.cur.Col <= s.floor() {
		return nil
	}
	if err := s.save(s.cur.Line); err != nil {
		return err
	}
	line := s.e.store.Line(s.cur.Line)
	col := min(s.cur.Col, len(line))
	prev := charclass.PrevCharStart(line, col)
	nl := line[:prev] + line[col:]
	if s.mode == ModeReplace && len(s.replaced) > 0 {
		orig := s.replaced[len(s.replaced)-1]
		s.replaced = s.replaced[:len(s.replaced)-1]
		nl = line[:prev] + orig + line[col:]
	}
	if err := s.replace(s.cur.Line, nl); err != nil {
		return err
	}
	s.cur.Col = prev
	s.end = buffer.Pos{Line: s.cur.Line, Col: max(prev-1, 0)}
	return nil
}

// joinUp removes the line break before the cursor line.
func (s *session) joinUp() error {
	lnum := s.cur.Line
	if s.e.undo != nil {
		if err := s.e.undo.Save(lnum-2, lnum+1, s.cur); err != nil {
			return err
		}
	}
	above := s.e.store.Line(lnum - 1)
	line := s.e.store.Line(lnum)
	if err := s.replace(lnum-1, above+line); err != nil {
		return err
	}
	if err := s.e.store.DeleteLine(lnum); err != nil {
		return errors.Join(ErrNotModifiable, err)
	}
	s.cur = buffer.Pos{Line: lnum - 1, Col: len(above)}
	s.end = s.cur
	return nil
}

// deleteUnder removes the character under the cursor.
func (s *session) deleteUnder() error {
	line := s.e.store.Line(s.cur.Line)
	if s.cur.Col >= len(line) {
		return nil
	}
	if err := s.save(s.cur.Line); err != nil {
		return err
	}
	n := charclass.CharLen(line, s.cur.Col)
	return s.replace(s.cur.Line, line[:s.cur.Col]+line[s.cur.Col+n:])
}

// deleteWordBefore removes the word before the cursor, stopping at the
// start of the insertion.
func (s *session) deleteWordBefore() error {
	line := s.e.store.Line(s.cur.Line)
	end := min(s.cur.Col, len(line))
	floor := s.floor()
	if end <= floor {
		return s.backspace()
	}
	col := end
	for col > floor && charclass.IsBlank(charclass.RuneAt(line, charclass.PrevCharStart(line, col))) {
		col = charclass.PrevCharStart(line, col)
	}
	if col > floor {
		cls := s.e.class.Class(charclass.RuneAt(line, charclass.PrevCharStart(line, col)))
		for col > floor {
			prev := charclass.PrevCharStart(line, col)
			r := charclass.RuneAt(line, prev)
			if charclass.IsBlank(r) || s.e.class.Class(r) != cls {
				break
			}
			col = prev
		}
	}
	return s.deleteBefore(col)
}

// deleteLineBefore removes everything typed on the cursor line, or the
// text before the cursor when nothing was typed there.
func (s *session) deleteLineBefore() error {
	floor := s.floor()
	if s.cur.Col <= floor {
		floor = len(leadingWhite(s.e.store.Line(s.cur.Line)))
		if s.cur.Col <= floor {
			floor = 0
		}
	}
	return s.deleteBefore(floor)
}

func (s *session) deleteBefore(col int) error {
	if col >= s.cur.Col {
		return nil
	}
	if err := s.save(s.cur.Line); err != nil {
		return err
	}
	line := s.e.store.Line(s.cur.Line)
	end := min(s.cur.Col, len(line))
	if err := s.replace(s.cur.Line, line[:col]+line[end:]); err != nil {
		return err
	}
	s.cur.Col = col
	if s.cur.Line == s.startLine && col < s.startCol {
		s.startCol = col
	}
	return nil
}
