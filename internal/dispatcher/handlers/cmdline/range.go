package cmdline

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a line range of an Ex command. Lines are 1-based.
type Range struct {
	Start, End int
	// Addresses is the number of addresses that were given: 0 means the
	// command got the default range.
	Addresses int
}

// MarkFunc returns the line of a mark.
type MarkFunc func(name rune) (int, error)

// rangeParser parses the addresses at the start of a command line.
type rangeParser struct {
	s    string
	i    int
	cur  int
	last int
	mark MarkFunc
}

// ParseRange parses the range at the start of cmd for a buffer of last
// lines with the cursor on line cur. It returns the range and the rest
// of the command. Without addresses the range is the cursor line. A
// range written backwards is swapped.
func ParseRange(cmd string, cur, last int, mark MarkFunc) (Range, string, error) {
	p := &rangeParser{s: cmd, cur: cur, last: last, mark: mark}
	r := Range{Start: cur, End: cur}

	p.skipBlanks()
	if p.peek() == '%' {
		p.i++
		r = Range{Start: 1, End: last, Addresses: 2}
		p.skipBlanks()
		return r, p.s[p.i:], p.check(r)
	}

	for {
		n, ok, err := p.address()
		if err != nil {
			return r, "", err
		}
		if ok {
			r.Start, r.End = r.End, n
			r.Addresses++
		}
		p.skipBlanks()
		switch p.peek() {
		case ',':
			p.i++
			if !ok {
				r.Start, r.End = r.End, p.cur
				r.Addresses++
			}
			continue
		case ';':
			p.i++
			if !ok {
				r.Start, r.End = r.End, p.cur
				r.Addresses++
			}
			p.cur = r.End
			continue
		}
		break
	}
	if r.Addresses == 1 {
		r.Start = r.End
	}
	if r.Addresses > 0 && r.Start > r.End {
		r.Start, r.End = r.End, r.Start
	}
	return r, p.s[p.i:], p.check(r)
}

func (p *rangeParser) check(r Range) error {
	if r.Addresses == 0 {
		return nil
	}
	// Line 0 is allowed as a start, as for ":0put".
	if r.Start < 0 || r.End > p.last || r.End < 0 {
		return fmt.Errorf("%w: %d,%d", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// address parses one address with its offsets.
func (p *rangeParser) address() (int, bool, error) {
	p.skipBlanks()
	var (
		n  int
		ok bool
	)
	switch c := p.peek(); {
	case c == '.':
		p.i++
		n, ok = p.cur, true
	case c == '$':
		p.i++
		n, ok = p.last, true
	case c == '\'':
		if p.i+1 >= len(p.s) {
			return 0, false, fmt.Errorf("%w: missing mark name", ErrInvalidRange)
		}
		name := rune(p.s[p.i+1])
		p.i += 2
		if p.mark == nil {
			return 0, false, fmt.Errorf("%w: mark '%c", ErrInvalidRange, name)
		}
		line, err := p.mark(name)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %w", ErrInvalidRange, err)
		}
		n, ok = line, true
	case isDigit(c):
		v, err := p.number()
		if err != nil {
			return 0, false, err
		}
		n, ok = v, true
	case c == '+' || c == '-':
		n, ok = p.cur, true
	default:
		return 0, false, nil
	}

	for {
		p.skipBlanks()
		c := p.peek()
		if c != '+' && c != '-' {
			break
		}
		p.i++
		delta := 1
		if isDigit(p.peek()) {
			v, err := p.number()
			if err != nil {
				return 0, false, err
			}
			delta = v
		}
		if c == '-' {
			delta = -delta
		}
		n += delta
	}
	return n, ok, nil
}

func (p *rangeParser) number() (int, error) {
	j := p.i
	for j < len(p.s) && isDigit(p.s[j]) {
		j++
	}
	v, err := strconv.Atoi(p.s[p.i:j])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRange, p.s[p.i:j])
	}
	p.i = j
	return v, nil
}

func (p *rangeParser) peek() byte {
	if p.i < len(p.s) {
		return p.s[p.i]
	}
	return 0
}

func (p *rangeParser) skipBlanks() {
	for p.i < len(p.s) && (p.s[p.i] == ' ' || p.s[p.i] == '\t' || p.s[p.i] == ':') {
		p.i++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// trimBlanks removes leading blanks and colons.
func trimBlanks(s string) string {
	return strings.TrimLeft(s, " \t:")
}
