package editor

import "strings"

func leadingWhite(line string) string {
	return line[:len(line)-len(trimLeftWhite(line))]
}

func trimLeftWhite(s string) string {
	return strings.TrimLeft(s, " \t")
}

func (e *Editor) shiftWidth() int {
	if e.settings.ShiftWidth > 0 {
		return e.settings.ShiftWidth
	}
	return e.class.Tabstop()
}

// makeIndent builds an indent of width cells from tabs and spaces, or
// spaces only with 'expandtab'.
func (e *Editor) makeIndent(width int) string {
	if width <= 0 {
		return ""
	}
	if e.settings.ExpandTab {
		return strings.Repeat(" ", width)
	}
	ts := e.class.Tabstop()
	return strings.Repeat("\t", width/ts) + strings.Repeat(" ", width%ts)
}

// tab inserts a tab, or the spaces up to the next tabstop.
func (s *session) tab() error {
	if !s.e.settings.ExpandTab {
		return s.insert("\t")
	}
	line := s.e.store.Line(s.cur.Line)
	vcol, _ := s.e.class.VirtCol(line, min(s.cur.Col, len(line)))
	if s.cur.Col >= len(line) {
		vcol = s.e.class.LineWidth(line)
	}
	ts := s.e.class.Tabstop()
	return s.insert(strings.Repeat(" ", ts-vcol%ts))
}

// shiftIndent changes the indent of the cursor line by 'shiftwidth',
// rounding to a multiple of it. The cursor stays on the same text.
func (s *session) shiftIndent(left bool) error {
	if err := s.save(s.cur.Line); err != nil {
		return err
	}
	line := s.e.store.Line(s.cur.Line)
	white := leadingWhite(line)
	width := s.e.class.LineWidth(white)
	sw := s.e.shiftWidth()
	if left {
		width = max((width-1)/sw*sw, 0)
		if len(white) == 0 {
			return nil
		}
	} else {
		width = (width/sw + 1) * sw
	}
	indent := s.e.makeIndent(width)
	if err := s.replace(s.cur.Line, indent+line[len(white):]); err != nil {
		return err
	}
	s.cur.Col = max(s.cur.Col+len(indent)-len(white), len(indent))
	if s.cur.Line == s.startLine {
		s.startCol = max(min(s.startCol+len(indent)-len(white), s.cur.Col), 0)
	}
	return nil
}
