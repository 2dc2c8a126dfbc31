// Package search implements the pattern search behind "/", "?", "n",
// "N", "*", "#" and "gn". Patterns use Vim's magic syntax and are
// translated for the regexp2 engine.
package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/dshills/modalcore/internal/engine/buffer"
)

// Search errors.
var (
	ErrNotFound       = errors.New("search: pattern not found")
	ErrInvalidPattern = errors.New("search: invalid pattern")
	ErrNoPrevious     = errors.New("search: no previous regular expression")
	ErrHitBoundary    = errors.New("search: hit boundary without match")
)

// Direction of a search.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

// Char returns the command character for the direction.
func (d Direction) Char() rune {
	if d == Backward {
		return '?'
	}
	return '/'
}

// Lines is the read side of the line store.
type Lines interface {
	Line(n int) string
	LineCount() int
}

// Offset is the part after the closing delimiter: "e", "s+1", "+2".
type Offset struct {
	// Line moves the match by N lines and makes the motion linewise.
	Line bool
	// End positions on the last character of the match.
	End bool
	N   int
}

// Match is a search result.
type Match struct {
	Pos       buffer.Pos
	End       buffer.Pos // last character of the match
	Linewise  bool
	Inclusive bool
	Wrapped   bool
}

// Engine performs searches and remembers the last pattern.
type Engine struct {
	mu sync.Mutex

	lines      Lines
	ignoreCase bool
	smartCase  bool
	wrapScan   bool

	last       string
	lastDir    Direction
	lastOffset Offset
}

// Option configures an Engine.
type Option func(*Engine)

// WithIgnoreCase sets 'ignorecase' and 'smartcase'.
func WithIgnoreCase(ignore, smart bool) Option {
	return func(e *Engine) {
		e.ignoreCase = ignore
		e.smartCase = smart
	}
}

// WithWrapScan sets 'wrapscan'.
func WithWrapScan(on bool) Option {
	return func(e *Engine) {
		e.wrapScan = on
	}
}

// New creates an Engine searching lines.
func New(lines Lines, opts ...Option) *Engine {
	e := &Engine{lines: lines, wrapScan: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Configure updates the case and wrap options.
func (e *Engine) Configure(ignoreCase, smartCase, wrapScan bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ignoreCase, e.smartCase, e.wrapScan = ignoreCase, smartCase, wrapScan
}

// LastPattern returns the last used pattern.
func (e *Engine) LastPattern() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// SetLastPattern replaces the last used pattern and direction, as "*"
// does.
func (e *Engine) SetLastPattern(p string, dir Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = p
	e.lastDir = dir
	e.lastOffset = Offset{}
}

// SplitCommand splits command-line text typed after "/" or "?" into the
// pattern and its offset. An unescaped delimiter ends the pattern.
func SplitCommand(text string, delim rune) (string, Offset, error) {
	escaped := false
	for i, r := range text {
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if r == delim {
			off, err := ParseOffset(text[i+utf8.RuneLen(r):])
			return text[:i], off, err
		}
	}
	return text, Offset{}, nil
}

// ParseOffset parses a search offset.
func ParseOffset(s string) (Offset, error) {
	var off Offset
	if s == "" {
		return off, nil
	}
	switch s[0] {
	case 'e':
		off.End = true
		s = s[1:]
	case 's', 'b':
		s = s[1:]
	default:
		off.Line = true
	}
	if s == "" {
		return off, nil
	}
	if s == "+" || s == "-" {
		s += "1"
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Offset{}, fmt.Errorf("%w: offset %q", ErrInvalidPattern, s)
	}
	off.N = n
	return off, nil
}

// Search looks for the count'th match of pattern from position from in
// direction dir. An empty pattern reuses the last one. The match start
// is never from itself.
func (e *Engine) Search(pattern string, off Offset, dir Direction, count int, from buffer.Pos) (Match, error) {
	e.mu.Lock()
	if pattern == "" {
		if e.last == "" {
			e.mu.Unlock()
			return Match{}, ErrNoPrevious
		}
		pattern = e.last
	}
	e.last = pattern
	e.lastDir = dir
	e.lastOffset = off
	e.mu.Unlock()

	return e.find(pattern, off, dir, count, from)
}

// Next repeats the last search, reversed for "N".
func (e *Engine) Next(reverse bool, count int, from buffer.Pos) (Match, error) {
	e.mu.Lock()
	pattern, dir, off := e.last, e.lastDir, e.lastOffset
	e.mu.Unlock()
	if pattern == "" {
		return Match{}, ErrNoPrevious
	}
	if reverse {
		dir = dir.Reverse()
	}
	return e.find(pattern, off, dir, count, from)
}

// Current finds the match of the last pattern under the cursor or the
// count'th one after it; with backward the one under it or before it.
// It is the area "gn" and "gN" select.
func (e *Engine) Current(backward bool, count int, from buffer.Pos) (Match, error) {
	e.mu.Lock()
	pattern := e.last
	e.mu.Unlock()
	if pattern == "" {
		return Match{}, ErrNoPrevious
	}
	re, err := e.compile(pattern)
	if err != nil {
		return Match{}, err
	}
	if count < 1 {
		count = 1
	}

	matches := lineMatches(re, e.lines.Line(from.Line))
	var (
		m     Match
		found bool
	)
	if backward {
		for j := len(matches) - 1; j >= 0; j-- {
			if matches[j].start <= from.Col {
				m, found = matches[j].at(from.Line), true
				break
			}
		}
	} else {
		for _, mt := range matches {
			if mt.last >= from.Col {
				m, found = mt.at(from.Line), true
				break
			}
		}
	}
	if found {
		count--
		from = m.Pos
	}
	if count == 0 {
		return m, nil
	}

	dir := Forward
	if backward {
		dir = Backward
	}
	e.mu.Lock()
	wrap := e.wrapScan
	e.mu.Unlock()
	for ; count > 0; count-- {
		var wrapped bool
		m, wrapped, err = e.step(re, dir, from, wrap, false)
		if err != nil {
			return Match{}, err
		}
		m.Wrapped = m.Wrapped || wrapped
		from = m.Pos
	}
	return m, nil
}

// LastDirection returns the direction of the last search.
func (e *Engine) LastDirection() Direction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastDir
}

func (e *Engine) find(pattern string, off Offset, dir Direction, count int, from buffer.Pos) (Match, error) {
	re, err := e.compile(pattern)
	if err != nil {
		return Match{}, err
	}
	if count < 1 {
		count = 1
	}

	e.mu.Lock()
	wrap := e.wrapScan
	e.mu.Unlock()

	pos := from
	var m Match
	for ; count > 0; count-- {
		var wrapped bool
		m, wrapped, err = e.step(re, dir, pos, wrap, off.End)
		if err != nil {
			return Match{}, err
		}
		m.Wrapped = m.Wrapped || wrapped
		pos = m.Pos
		if off.End {
			pos = m.End
		}
	}
	return e.applyOffset(m, off), nil
}

func (e *Engine) applyOffset(m Match, off Offset) Match {
	switch {
	case off.Line:
		line := m.Pos.Line + off.N
		line = max(1, min(line, e.lines.LineCount()))
		m.Pos = buffer.Pos{Line: line}
		m.Linewise = true
	case off.End:
		m.Pos = m.End
		m.Pos.Col = advance(e.lines.Line(m.Pos.Line), m.Pos.Col, off.N)
		m.Inclusive = true
	case off.N != 0:
		m.Pos.Col = advance(e.lines.Line(m.Pos.Line), m.Pos.Col, off.N)
	}
	return m
}

func advance(line string, col, n int) int {
	for ; n > 0 && col < len(line); n-- {
		_, size := utf8.DecodeRuneInString(line[col:])
		col += size
	}
	for ; n < 0 && col > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(line[:col])
		col -= size
	}
	if col >= len(line) && len(line) > 0 {
		_, size := utf8.DecodeLastRuneInString(line)
		col = len(line) - size
	}
	return col
}

// step finds one match. With useEnd the comparison against from uses the
// match end, so repeated "/pat/e" moves on.
func (e *Engine) step(re *regexp2.Regexp, dir Direction, from buffer.Pos, wrap, useEnd bool) (Match, bool, error) {
	n := e.lines.LineCount()
	if dir == Forward {
		for i := 0; i <= n; i++ {
			lnum := from.Line + i
			wrapped := false
			if lnum > n {
				if !wrap {
					return Match{}, false, ErrHitBoundary
				}
				lnum -= n
				wrapped = true
			}
			matches := lineMatches(re, e.lines.Line(lnum))
			for _, mt := range matches {
				key := mt.start
				if useEnd {
					key = mt.last
				}
				if i == 0 && !wrapped && key <= from.Col {
					continue
				}
				if i == n && key > from.Col {
					continue
				}
				return mt.at(lnum), wrapped, nil
			}
		}
		return Match{}, false, ErrNotFound
	}

	for i := 0; i <= n; i++ {
		lnum := from.Line - i
		wrapped := false
		if lnum < 1 {
			if !wrap {
				return Match{}, false, ErrHitBoundary
			}
			lnum += n
			wrapped = true
		}
		matches := lineMatches(re, e.lines.Line(lnum))
		for j := len(matches) - 1; j >= 0; j-- {
			mt := matches[j]
			if i == 0 && mt.start >= from.Col {
				continue
			}
			if i == n && mt.start < from.Col {
				continue
			}
			return mt.at(lnum), wrapped, nil
		}
	}
	return Match{}, false, ErrNotFound
}

type lineMatch struct {
	start int // byte column of the first character
	last  int // byte column of the last character
}

func (m lineMatch) at(lnum int) Match {
	return Match{
		Pos: buffer.Pos{Line: lnum, Col: m.start},
		End: buffer.Pos{Line: lnum, Col: m.last},
	}
}

// lineMatches returns all matches in line as byte columns.
func lineMatches(re *regexp2.Regexp, line string) []lineMatch {
	var out []lineMatch
	runes := []rune(line)
	offsets := make([]int, len(runes)+1)
	b := 0
	for i, r := range runes {
		offsets[i] = b
		b += utf8.RuneLen(r)
	}
	offsets[len(runes)] = b

	m, err := re.FindRunesMatch(runes)
	for err == nil && m != nil {
		start := offsets[m.Index]
		last := start
		if m.Length > 0 {
			last = offsets[m.Index+m.Length-1]
		}
		out = append(out, lineMatch{start: start, last: last})
		m, err = re.FindNextMatch(m)
	}
	return out
}

// Compile translates pattern and compiles it with the case options in
// effect. An empty pattern stands for the last one.
func (e *Engine) Compile(pattern string) (*regexp2.Regexp, error) {
	if pattern == "" {
		if pattern = e.LastPattern(); pattern == "" {
			return nil, ErrNoPrevious
		}
	}
	return e.compile(pattern)
}

func (e *Engine) compile(pattern string) (*regexp2.Regexp, error) {
	e.mu.Lock()
	ignore := e.ignoreCase
	if ignore && e.smartCase && hasUpper(pattern) {
		ignore = false
	}
	e.mu.Unlock()

	expr, forced := Translate(pattern)
	switch forced {
	case 'c':
		ignore = true
	case 'C':
		ignore = false
	}
	opts := regexp2.None
	if ignore {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(expr, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

func hasUpper(s string) bool {
	escaped := false
	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// Translate converts a magic Vim pattern into regexp2 syntax. It returns
// 'c' or 'C' when the pattern forces case sensitivity with \c or \C.
func Translate(p string) (string, rune) {
	var b strings.Builder
	var forced rune
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '\\' && i+1 < len(p) {
			i++
			switch n := p[i]; n {
			case '<', '>':
				b.WriteString(`\b`)
			case '(':
				b.WriteString("(")
			case ')':
				b.WriteString(")")
			case '|':
				b.WriteString("|")
			case '+':
				b.WriteString("+")
			case '=', '?':
				b.WriteString("?")
			case '{':
				// \{n,m} is a counted repeat; "\{-}" is lazy "*".
				end := strings.IndexByte(p[i:], '}')
				if end < 0 {
					b.WriteString(`\{`)
					continue
				}
				body := p[i+1 : i+end]
				i += end
				switch {
				case body == "-":
					b.WriteString("*?")
				case strings.HasPrefix(body, "-"):
					b.WriteString("{" + body[1:] + "}?")
				case body == "":
					b.WriteString("*")
				default:
					b.WriteString("{" + body + "}")
				}
			case 'c', 'C':
				forced = rune(n)
			case 'n':
				b.WriteString(`\n`)
			case 't':
				b.WriteString(`\t`)
			case 'e':
				b.WriteString(`\x1b`)
			case 's', 'S', 'd', 'D', 'w', 'W', '.', '*', '[', ']', '\\', '/', '^', '$', '~':
				b.WriteByte('\\')
				b.WriteByte(n)
			case 'a':
				b.WriteString(`[A-Za-z]`)
			case 'l':
				b.WriteString(`[a-z]`)
			case 'u':
				b.WriteString(`[A-Z]`)
			case 'x':
				b.WriteString(`[0-9A-Fa-f]`)
			default:
				b.WriteByte('\\')
				b.WriteByte(n)
			}
			continue
		}
		switch c {
		case '(', ')', '|', '+', '?', '{', '}':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '~':
			b.WriteString(`\~`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), forced
}

// WordPattern builds the pattern "*" and "#" search for: the word with
// word boundaries when whole is true.
func WordPattern(word string, whole bool) string {
	var b strings.Builder
	if whole {
		b.WriteString(`\<`)
	}
	for _, r := range word {
		if strings.ContainsRune(`\/.*$^~[]`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	if whole {
		b.WriteString(`\>`)
	}
	return b.String()
}
