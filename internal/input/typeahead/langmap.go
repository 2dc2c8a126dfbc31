package typeahead

import (
	"errors"
	"fmt"

	"github.com/dshills/modalcore/internal/input/key"
)

// ErrInvalidLangMap is returned for a malformed langmap value.
var ErrInvalidLangMap = errors.New("typeahead: invalid langmap")

// LangMap translates characters typed with a different keyboard layout
// to the characters commands are bound to. The zero value maps nothing.
type LangMap struct {
	m map[key.Code]key.Code
}

// ParseLangMap parses a langmap value. Parts are separated by commas and
// come in two forms: "aA" maps a to A, and "abc;ABC" maps each character
// before the semicolon to the one at the same position after it. A
// backslash makes the next character literal.
func ParseLangMap(s string) (*LangMap, error) {
	lm := &LangMap{m: make(map[key.Code]key.Code)}
	for _, part := range splitUnescaped([]rune(s), ',') {
		if len(part) == 0 {
			continue
		}
		halves := splitUnescaped(part, ';')
		switch len(halves) {
		case 1:
			chars := unescape(halves[0])
			if len(chars)%2 != 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidLangMap, string(part))
			}
			for i := 0; i < len(chars); i += 2 {
				lm.m[key.Code(chars[i])] = key.Code(chars[i+1])
			}
		case 2:
			from, to := unescape(halves[0]), unescape(halves[1])
			if len(from) != len(to) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidLangMap, string(part))
			}
			for i := range from {
				lm.m[key.Code(from[i])] = key.Code(to[i])
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidLangMap, string(part))
		}
	}
	return lm, nil
}

// Adjust returns the command character for c.
func (lm *LangMap) Adjust(c key.Code) key.Code {
	if lm == nil || lm.m == nil || c < 0 {
		return c
	}
	if to, ok := lm.m[c]; ok {
		return to
	}
	return c
}

// Empty reports whether the map translates nothing.
func (lm *LangMap) Empty() bool {
	return lm == nil || len(lm.m) == 0
}

func splitUnescaped(rs []rune, sep rune) [][]rune {
	var out [][]rune
	start := 0
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			i++
		case sep:
			out = append(out, rs[start:i])
			start = i + 1
		}
	}
	return append(out, rs[start:])
}

func unescape(rs []rune) []rune {
	out := make([]rune, 0, len(rs))
	for i := 0; i < len(rs); i++ {
		if rs[i] == '\\' && i+1 < len(rs) {
			i++
		}
		out = append(out, rs[i])
	}
	return out
}
