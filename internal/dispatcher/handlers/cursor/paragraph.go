package cursor

import (
	"strings"

	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
)

// Default nroff macros that start a paragraph or a section.
const (
	DefaultParagraphs = "IPLPPPQPP TPHPLIPpLpItpplpipbp"
	DefaultSections   = "SHNHH HUnhsh"
)

// inMacro reports whether s starts with one of the two-letter macro names
// packed in opt. A space in opt matches a space or the end of s.
func inMacro(opt, s string) bool {
	at := func(str string, i int) byte {
		if i < len(str) {
			return str[i]
		}
		return 0
	}
	for i := 0; i < len(opt); i += 2 {
		m0, m1 := opt[i], at(opt, i+1)
		s0, s1 := at(s, 0), at(s, 1)
		if (m0 == s0 || (m0 == ' ' && (s0 == 0 || s0 == ' '))) &&
			(m1 == s1 || ((m1 == 0 || m1 == ' ') && (s0 == 0 || s1 == 0 || s1 == ' '))) {
			return true
		}
	}
	return false
}

// StartPS reports whether line lnum starts a paragraph or section. para
// is the character that marks a boundary in the first column: 0 for an
// empty line, '{' or '}' for sections. With both set '}' also counts.
func (t *Text) StartPS(lnum int, para rune, both bool) bool {
	s := t.Line(lnum)
	var first rune
	if s != "" {
		first = rune(s[0])
	}
	if first == para || first == '\f' || (both && first == '}') {
		return true
	}
	if first == '.' && (inMacro(DefaultSections, s[1:]) || (para == 0 && inMacro(DefaultParagraphs, s[1:]))) {
		return true
	}
	return false
}

// FindPar moves count paragraphs in dir. what is 0 for paragraphs or '{'
// / '}' for section motions. It returns the new position and whether the
// motion became inclusive, which happens when it stops on the last
// character of the buffer.
func (t *Text) FindPar(p buffer.Pos, dir, count int, what rune, both bool) (buffer.Pos, bool, error) {
	curr := p.Line
	n := t.LineCount()
	for count > 0 {
		count--
		didSkip := false
		for first := true; ; first = false {
			if t.Line(curr) != "" {
				didSkip = true
			}
			foldSkipped := false
			if first {
				if ff, fl, ok := t.closedFold(curr); ok {
					if dir > 0 {
						curr = fl + dir
					} else {
						curr = ff + dir
					}
					foldSkipped = true
				}
			}
			if !first && didSkip && t.StartPS(curr, what, both) {
				break
			}
			if foldSkipped {
				curr -= dir
			}
			curr += dir
			if curr < 1 || curr > n {
				if count > 0 {
					return p, false, ErrFailed
				}
				curr -= dir
				break
			}
		}
	}

	if both && strings.HasPrefix(t.Line(curr), "}") {
		curr++
	}
	inclusive := false
	p = buffer.Pos{Line: curr}
	if curr == n && what != '}' {
		line := t.Line(curr)
		if line != "" {
			p.Col = charclass.LastCharStart(line)
			inclusive = true
		}
	}
	return p, inclusive, nil
}

func isSentenceEnd(c rune) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSentenceClose(c rune) bool {
	return c == ')' || c == ']' || c == '"' || c == '\''
}

// FindSent moves count sentences in dir. A sentence ends at '.', '!' or
// '?' followed by the end of the line or a blank, with any closing
// characters in between. With joinSpaces set ('J' in cpoptions) two
// spaces are required.
func (t *Text) FindSent(start buffer.Pos, dir, count int, joinSpaces bool) (buffer.Pos, error) {
	pos := start
	step := t.Incl
	if dir == Backward {
		step = t.Decl
	}

	for count > 0 {
		count--
		noskip := false
		found := false

		switch {
		case t.Gchar(pos) == 0:
			for {
				if step(&pos) == -1 {
					break
				}
				if t.Gchar(pos) != 0 {
					break
				}
			}
			if dir == Forward {
				found = true
			}
		case dir == Forward && pos.Col == 0 && t.StartPS(pos.Line, 0, false):
			if pos.Line == t.LineCount() {
				return start, ErrFailed
			}
			pos.Line++
			found = true
		case dir == Backward:
			t.Decl(&pos)
		}

		if !found {
			// go back to the previous non-blank, non-punctuation character
			foundDot := false
			for {
				c := t.Gchar(pos)
				if !(charclass.IsBlank(c) || isSentenceEnd(c) || isSentenceClose(c)) {
					break
				}
				tpos := pos
				if t.Decl(&tpos) == -1 || (t.LineEmpty(tpos.Line) && dir == Forward) {
					break
				}
				if foundDot {
					break
				}
				if isSentenceEnd(c) {
					foundDot = true
				}
				if isSentenceClose(c) {
					pc := t.Gchar(tpos)
					if !isSentenceEnd(pc) && !isSentenceClose(pc) {
						break
					}
				}
				t.Decl(&pos)
			}

			startLine := pos.Line
			for {
				c := t.Gchar(pos)
				if c == 0 || (pos.Col == 0 && t.StartPS(pos.Line, 0, false)) {
					if dir == Backward && pos.Line != startLine {
						pos.Line++
						pos.Col = 0
					}
					break
				}
				if isSentenceEnd(c) {
					tpos := pos
					r := 0
					for {
						if r = t.Inc(&tpos); r == -1 {
							break
						}
						if !isSentenceClose(t.Gchar(tpos)) {
							break
						}
					}
					c = t.Gchar(tpos)
					if r == -1 || c == 0 ||
						(!joinSpaces && charclass.IsBlank(c)) ||
						(joinSpaces && c == ' ' && t.nextIsSpace(tpos)) {
						pos = tpos
						if t.Gchar(pos) == 0 {
							t.Inc(&pos)
						}
						break
					}
				}
				if step(&pos) == -1 {
					if count > 0 {
						return start, ErrFailed
					}
					noskip = true
					break
				}
			}
		}

		for !noskip {
			c := t.Gchar(pos)
			if c != ' ' && c != '\t' {
				break
			}
			if t.Incl(&pos) == -1 {
				break
			}
		}
	}
	return pos, nil
}

func (t *Text) nextIsSpace(p buffer.Pos) bool {
	if t.Inc(&p) < 0 {
		return false
	}
	return t.Gchar(p) == ' '
}

// findFirstBlank moves p back to the first of the blanks before it.
func (t *Text) findFirstBlank(p *buffer.Pos) {
	for t.Decl(p) != -1 {
		if !charclass.IsBlank(t.Gchar(*p)) {
			t.Incl(p)
			break
		}
	}
}

// findSentForward moves over count sentences, landing on the last
// character of the last one.
func (t *Text) findSentForward(p buffer.Pos, count int, atStart, joinSpaces bool) buffer.Pos {
	for count > 0 {
		count--
		p, _ = t.FindSent(p, Forward, 1, joinSpaces)
		if atStart {
			t.findFirstBlank(&p)
		}
		if count == 0 || atStart {
			t.Decl(&p)
		}
		atStart = !atStart
	}
	return p
}
