package cursor

import (
	"strings"

	"github.com/dshills/modalcore/internal/engine/buffer"
)

// DefaultMatchPairs is the default set of pairs "%" jumps between.
const DefaultMatchPairs = "(:),{:},[:]"

// MatchPairs is a parsed matchpairs value.
type MatchPairs struct {
	open, close []rune
}

// ParseMatchPairs parses "(:),{:}". Malformed entries are skipped.
func ParseMatchPairs(s string) MatchPairs {
	var mp MatchPairs
	for _, part := range strings.Split(s, ",") {
		rs := []rune(part)
		if len(rs) != 3 || rs[1] != ':' {
			continue
		}
		mp.open = append(mp.open, rs[0])
		mp.close = append(mp.close, rs[2])
	}
	return mp
}

// partner returns the matching character of c and the direction to look
// for it.
func (mp MatchPairs) partner(c rune) (rune, int, bool) {
	for i := range mp.open {
		if mp.open[i] == c {
			return mp.close[i], Forward, true
		}
		if mp.close[i] == c {
			return mp.open[i], Backward, true
		}
	}
	return 0, 0, false
}

// FindMatch finds the match for the first paired character at or after p
// on its line, as "%" does. C comment delimiters are matched as well.
func (t *Text) FindMatch(p buffer.Pos, mp MatchPairs) (buffer.Pos, error) {
	line := t.Line(p.Line)

	if m, ok := t.matchComment(p); ok {
		return m, nil
	}
	for col := p.Col; col < len(line); {
		c := t.Gchar(buffer.Pos{Line: p.Line, Col: col})
		if other, dir, ok := mp.partner(c); ok {
			return t.findPair(buffer.Pos{Line: p.Line, Col: col}, c, other, dir, 1)
		}
		col += len(string(c))
	}
	return p, ErrFailed
}

// FindUnmatched finds the count'th unmatched open (backward) or close
// (forward) character around p, as "[(" and "])" do.
func (t *Text) FindUnmatched(p buffer.Pos, open, close rune, dir, count int) (buffer.Pos, error) {
	if dir == Backward {
		return t.findPair(p, close, open, Backward, count)
	}
	return t.findPair(p, open, close, Forward, count)
}

// findPair scans from p in dir for target, counting nested self/target
// pairs. The character at p itself is not counted.
func (t *Text) findPair(p buffer.Pos, self, target rune, dir, count int) (buffer.Pos, error) {
	step := t.Inc
	if dir == Backward {
		step = t.Dec
	}
	depth := 0
	pos := p
	for {
		if step(&pos) == -1 {
			return p, ErrFailed
		}
		switch t.Gchar(pos) {
		case self:
			depth++
		case target:
			if depth > 0 {
				depth--
				continue
			}
			count--
			if count == 0 {
				return pos, nil
			}
		}
	}
}

// matchComment handles "%" on "/*" or "*/".
func (t *Text) matchComment(p buffer.Pos) (buffer.Pos, bool) {
	line := t.Line(p.Line)
	col := p.Col
	at := func(s string) bool { return strings.HasPrefix(line[col:], s) }
	if col >= len(line) {
		return p, false
	}
	switch {
	case at("/*"):
		return t.scanText(p, "*/", Forward)
	case col > 0 && line[col] == '*' && line[col-1] == '/':
		return t.scanText(buffer.Pos{Line: p.Line, Col: col - 1}, "*/", Forward)
	case at("*/"):
		return t.scanText(p, "/*", Backward)
	case col > 0 && line[col] == '/' && line[col-1] == '*':
		return t.scanText(buffer.Pos{Line: p.Line, Col: col - 1}, "/*", Backward)
	}
	return p, false
}

// scanText finds s from p in dir. Forward matches land on the last byte
// of s, backward ones on the first.
func (t *Text) scanText(p buffer.Pos, s string, dir int) (buffer.Pos, bool) {
	if dir == Forward {
		for lnum, from := p.Line, p.Col+2; lnum <= t.LineCount(); lnum, from = lnum+1, 0 {
			line := t.Line(lnum)
			if from > len(line) {
				continue
			}
			if i := strings.Index(line[from:], s); i >= 0 {
				return buffer.Pos{Line: lnum, Col: from + i + len(s) - 1}, true
			}
		}
		return p, false
	}
	for lnum, to := p.Line, p.Col; lnum >= 1; lnum-- {
		line := t.Line(lnum)
		if to < 0 || to > len(line) {
			to = len(line)
		}
		if i := strings.LastIndex(line[:to], s); i >= 0 {
			return buffer.Pos{Line: lnum, Col: i}, true
		}
		to = -1
	}
	return p, false
}
