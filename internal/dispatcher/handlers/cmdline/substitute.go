package cmdline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/search"
)

type subFlags struct {
	global bool // g: every match in the line
	count  bool // n: only count the matches
	quiet  bool // e: no error when nothing matches
	cases  rune // 'i' or 'I' to force the case of the pattern
}

// subState is what ":&" and ":s" without a pattern repeat.
type subState struct {
	pattern string
	repl    string
	flags   subFlags
}

func (e *Executor) exSubstitute(_ context.Context, a *exArgs) error {
	arg := a.arg
	if arg == "" || !isSubDelim(arg[0]) {
		keep := strings.HasPrefix(arg, "&")
		if keep {
			arg = arg[1:]
		}
		return e.repeatSubstitute(a.r, keep, arg)
	}

	delim := arg[0]
	pattern, rest, closed := splitDelim(arg[1:], delim)
	repl := ""
	if closed {
		repl, rest, _ = splitDelim(rest, delim)
	}
	if pattern == "" {
		if pattern = e.pats.LastPattern(); pattern == "" {
			return search.ErrNoPrevious
		}
	}
	prevRepl := ""
	flags := subFlags{}
	if e.sub != nil {
		prevRepl = e.sub.repl
		if strings.HasPrefix(rest, "&") {
			flags = e.sub.flags
			rest = rest[1:]
		}
	}
	repl = expandTilde(repl, prevRepl)

	flags, count, err := parseSubFlags(rest, flags)
	if err != nil {
		return err
	}
	e.sub = &subState{pattern: pattern, repl: repl, flags: flags}
	return e.substitute(a.r, pattern, repl, flags, count)
}

// repeatSubstitute runs the last substitute again on r. With keep the
// flags of the last one are used; more can follow in rest.
func (e *Executor) repeatSubstitute(r Range, keep bool, rest string) error {
	if e.sub == nil {
		return ErrNoPreviousSubstitute
	}
	flags := subFlags{}
	if keep {
		flags = e.sub.flags
	}
	flags, count, err := parseSubFlags(rest, flags)
	if err != nil {
		return err
	}
	return e.substitute(r, e.sub.pattern, e.sub.repl, flags, count)
}

// substitute replaces matches of pattern in the lines of r. The cursor
// ends on the last line that changed.
func (e *Executor) substitute(r Range, pattern, repl string, flags subFlags, count int) error {
	first, last := max(r.Start, 1), r.End
	if count > 0 {
		first = max(last, 1)
		last = min(first+count-1, e.lines.LineCount())
	}

	expr := pattern
	switch flags.cases {
	case 'i':
		expr = `\c` + expr
	case 'I':
		expr = `\C` + expr
	}
	re, err := e.pats.Compile(expr)
	if err != nil {
		return err
	}
	e.pats.SetLastPattern(pattern, e.pats.LastDirection())
	e.regs.SetReadOnly('/', pattern)

	var (
		saved              bool
		matches, lineCount int
		firstChanged       int
		lastChanged        int
	)
	for lnum := first; lnum <= last; lnum++ {
		line, n, err := replaceLine(re, e.lines.Line(lnum), repl, flags.global)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		matches += n
		lineCount++
		if flags.count {
			continue
		}
		if !saved {
			if err := e.save(first, last); err != nil {
				return err
			}
			saved = true
		}
		parts := strings.Split(line, "\n")
		if err := e.replaceLines(lnum, lnum, parts); err != nil {
			return err
		}
		if firstChanged == 0 {
			firstChanged = lnum
		}
		lnum += len(parts) - 1
		last += len(parts) - 1
		lastChanged = lnum
	}

	if matches == 0 {
		if flags.quiet {
			return nil
		}
		return fmt.Errorf("%w: %s", search.ErrNotFound, pattern)
	}
	if flags.count {
		e.ui.Message(fmt.Sprintf("%s on %s", plural(matches, "match", "matches"), plural(lineCount, "line", "lines")))
		return nil
	}
	e.marks.SetChange(buffer.Pos{Line: firstChanged}, buffer.Pos{Line: lastChanged})
	e.gotoLine(lastChanged)
	if lineCount > 2 {
		e.ui.Message(fmt.Sprintf("%s on %s", plural(matches, "substitution", "substitutions"), plural(lineCount, "line", "lines")))
	}
	return nil
}

// replaceLine substitutes the first match of re in line, or all of them.
// Line breaks in the result are "\n". An empty match right after another
// match is skipped.
func replaceLine(re *regexp2.Regexp, line, repl string, global bool) (string, int, error) {
	runes := []rune(line)
	m, err := re.FindRunesMatch(runes)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", search.ErrInvalidPattern, err)
	}
	var b strings.Builder
	n, prev := 0, 0
	lastEnd := -1
	for m != nil {
		if m.Length > 0 || m.Index != lastEnd {
			b.WriteString(string(runes[prev:m.Index]))
			b.WriteString(expandReplacement(repl, m))
			prev = m.Index + m.Length
			n++
			if !global {
				break
			}
		}
		if m.Length > 0 {
			lastEnd = m.Index + m.Length
		}
		if m, err = re.FindNextMatch(m); err != nil {
			return "", 0, fmt.Errorf("%w: %v", search.ErrInvalidPattern, err)
		}
	}
	if n == 0 {
		return line, 0, nil
	}
	b.WriteString(string(runes[prev:]))
	return b.String(), n, nil
}

// expandReplacement builds the text for one match. "&" and "\0" are the
// match, "\1".."\9" its groups, "\r" and "\n" break the line, "\u",
// "\l", "\U", "\L" and "\e" change case.
func expandReplacement(repl string, m *regexp2.Match) string {
	var (
		b       strings.Builder
		oneCase rune
		allCase rune
	)
	emit := func(s string) {
		for _, r := range s {
			switch {
			case oneCase == 'u':
				r = unicode.ToUpper(r)
				oneCase = 0
			case oneCase == 'l':
				r = unicode.ToLower(r)
				oneCase = 0
			case allCase == 'U':
				r = unicode.ToUpper(r)
			case allCase == 'L':
				r = unicode.ToLower(r)
			}
			b.WriteRune(r)
		}
	}

	rs := []rune(repl)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\\' && i+1 < len(rs):
			i++
			switch n := rs[i]; {
			case n >= '0' && n <= '9':
				if g := m.GroupByNumber(int(n - '0')); g != nil {
					emit(g.String())
				}
			case n == 'r' || n == 'n':
				b.WriteByte('\n')
			case n == 't':
				emit("\t")
			case n == 'u' || n == 'l':
				oneCase = n
			case n == 'U' || n == 'L':
				allCase = n
			case n == 'e' || n == 'E':
				allCase = 0
			default:
				emit(string(n))
			}
		case c == '&':
			emit(m.String())
		case c == '\r':
			b.WriteByte('\n')
		default:
			emit(string(c))
		}
	}
	return b.String()
}

// expandTilde replaces "~" with the previous replacement string.
func expandTilde(repl, prev string) string {
	if !strings.Contains(repl, "~") {
		return repl
	}
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		switch {
		case repl[i] == '\\' && i+1 < len(repl):
			b.WriteString(repl[i : i+2])
			i++
		case repl[i] == '~':
			b.WriteString(prev)
		default:
			b.WriteByte(repl[i])
		}
	}
	return b.String()
}

// splitDelim reads up to the next delim not preceded by a backslash.
// "\delim" becomes delim; other escapes are kept.
func splitDelim(s string, delim byte) (string, string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			if s[i+1] != delim {
				b.WriteByte('\\')
			}
			b.WriteByte(s[i+1])
			i++
		case s[i] == delim:
			return b.String(), s[i+1:], true
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), "", false
}

// parseSubFlags reads the flags and the optional count after the
// replacement.
func parseSubFlags(s string, f subFlags) (subFlags, int, error) {
	i := 0
	for ; i < len(s); i++ {
		switch s[i] {
		case 'g':
			f.global = !f.global
		case 'n':
			f.count = true
		case 'e':
			f.quiet = true
		case 'i', 'I':
			f.cases = rune(s[i])
		case ' ', '\t':
		default:
			if isDigit(s[i]) {
				n, err := strconv.Atoi(strings.TrimSpace(s[i:]))
				if err != nil || n <= 0 {
					return f, 0, fmt.Errorf("%w: %s", ErrTrailing, s[i:])
				}
				return f, n, nil
			}
			return f, 0, fmt.Errorf("%w: %s", ErrTrailing, s[i:])
		}
	}
	return f, 0, nil
}

func isSubDelim(c byte) bool {
	r := rune(c)
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || c == '\\' || c == '"' || c == '|')
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
