package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Parse errors
var (
	ErrUnknownName      = errors.New("key: unknown key name")
	ErrUnmatchedBracket = errors.New("key: unmatched bracket in key notation")
)

var specialNames = map[Code]string{
	Up:         "Up",
	Down:       "Down",
	Left:       "Left",
	Right:      "Right",
	ShiftUp:    "S-Up",
	ShiftDown:  "S-Down",
	ShiftLeft:  "S-Left",
	ShiftRight: "S-Right",
	CtrlLeft:   "C-Left",
	CtrlRight:  "C-Right",
	Home:       "Home",
	End:        "End",
	ShiftHome:  "S-Home",
	ShiftEnd:   "S-End",
	CtrlHome:   "C-Home",
	CtrlEnd:    "C-End",
	KHome:      "kHome",
	KEnd:       "kEnd",
	PageUp:     "PageUp",
	PageDown:   "PageDown",
	KPageUp:    "kPageUp",
	KPageDown:  "kPageDown",
	Insert:     "Insert",
	KInsert:    "kInsert",
	Del:        "Del",
	KDel:       "kDel",
	BS:         "BS",
	KEnter:     "kEnter",
	Undo:       "Undo",
	Help:       "Help",
	Zero:       "Zero",
	Ignore:     "Ignore",
	Nop:        "Nop",
	CursorHold: "CursorHold",
}

var charNames = map[Code]string{
	NUL:     "Nul",
	Tab:     "Tab",
	NL:      "NL",
	CR:      "CR",
	Esc:     "Esc",
	Space:   "Space",
	'<':     "lt",
	'\\':    "Bslash",
	'|':     "Bar",
	DelChar: "Del",
}

// byName maps lowercase names to codes. Special names win over character
// names so "<Del>" in a script means the special key, matching what a
// terminal delivers.
var byName = func() map[string]Code {
	m := make(map[string]Code, len(specialNames)+len(charNames)+8)
	for c, n := range charNames {
		m[strings.ToLower(n)] = c
	}
	for c, n := range specialNames {
		m[strings.ToLower(n)] = c
	}
	m["return"] = CR
	m["enter"] = CR
	m["escape"] = Esc
	m["insert"] = Insert
	m["delete"] = Del
	return m
}()

// Parse converts Vim key notation into codes.
func Parse(s string) ([]Code, error) {
	codes := make([]Code, 0, len(s))
	for len(s) > 0 {
		if s[0] == '<' {
			end := strings.IndexByte(s, '>')
			if end == 1 {
				// "<>" is a literal pair
				codes = append(codes, '<', '>')
				s = s[2:]
				continue
			}
			if end > 1 {
				c, err := parseName(s[1:end])
				if err == nil {
					codes = append(codes, c)
					s = s[end+1:]
					continue
				}
				if !looksLikeName(s[1:end]) {
					codes = append(codes, '<')
					s = s[1:]
					continue
				}
				return nil, err
			}
			codes = append(codes, '<')
			s = s[1:]
			continue
		}
		r, size := utf8.DecodeRuneInString(s)
		codes = append(codes, Code(r))
		s = s[size:]
	}
	return codes, nil
}

// MustParse is like Parse but panics on malformed notation. It is meant
// for tests and static tables.
func MustParse(s string) []Code {
	codes, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return codes
}

func looksLikeName(inner string) bool {
	for _, r := range inner {
		if r == ' ' || r == '<' {
			return false
		}
	}
	return true
}

func parseName(inner string) (Code, error) {
	lower := strings.ToLower(inner)
	if c, ok := byName[lower]; ok {
		return c, nil
	}
	if strings.HasPrefix(lower, "c-") && utf8.RuneCountInString(inner) == 3 {
		r := rune(inner[2])
		switch {
		case r >= 'a' && r <= 'z':
			return Code(r - 'a' + 1), nil
		case r >= '@' && r <= '_':
			return Code(r - '@'), nil
		case r == '?':
			return DelChar, nil
		}
	}
	return 0, fmt.Errorf("%w: <%s>", ErrUnknownName, inner)
}

// Format renders codes in Vim key notation. Parse(Format(c)) yields c.
func Format(codes []Code) string {
	var b strings.Builder
	for _, c := range codes {
		if n, ok := specialNames[c]; ok {
			b.WriteString("<" + n + ">")
			continue
		}
		if c < 0 {
			fmt.Fprintf(&b, "<#%d>", -c)
			continue
		}
		switch c {
		case NUL, Tab, NL, CR, Esc, '<':
			b.WriteString("<" + charNames[c] + ">")
			continue
		}
		if c < 0x20 {
			b.WriteString("<C-" + string(rune(c+'@')) + ">")
			continue
		}
		if c == DelChar {
			b.WriteString("<C-?>")
			continue
		}
		b.WriteRune(rune(c))
	}
	return b.String()
}
