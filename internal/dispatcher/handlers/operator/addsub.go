package operator

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/input/vim"
)

// nrFormats is the parsed 'nrformats' option.
type nrFormats struct {
	hex, bin, oct, alpha, unsigned bool
}

func parseNrFormats(s string) nrFormats {
	var nf nrFormats
	for _, f := range strings.Split(s, ",") {
		switch strings.TrimSpace(f) {
		case "hex":
			nf.hex = true
		case "bin":
			nf.bin = true
		case "octal":
			nf.oct = true
		case "alpha":
			nf.alpha = true
		case "unsigned":
			nf.unsigned = true
		}
	}
	return nf
}

// numberRe matches the number forms Ctrl-A understands, longest prefix
// first so "0x1f" is not taken as "0".
var numberRe = regexp2.MustCompile(`^(?:0[xX][0-9a-fA-F]+|0[bB][01]+|0[oO]?[0-7]+|[0-9]+)`, regexp2.None)

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isXDigit(c byte) bool { return isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'f') }
func isBDigit(c byte) bool { return c == '0' || c == '1' }
func isAlpha(c byte) bool  { return c|0x20 >= 'a' && c|0x20 <= 'z' }

// number is one number found in a line.
type number struct {
	length int // bytes including the prefix
	pre    byte
	value  uint64
	digits string
}

// parseNumber reads the number at s[col:], limited to maxlen bytes when
// maxlen is positive.
func parseNumber(s string, col, maxlen int, nf nrFormats) (number, bool) {
	var n number
	text := s[col:]
	if maxlen > 0 && maxlen < len(text) {
		text = text[:maxlen]
	}
	m, err := numberRe.FindStringMatch(text)
	if err != nil || m == nil {
		return n, false
	}
	lit := m.String()
	body := lit
	base := 10
	switch {
	case len(lit) > 2 && (lit[1] == 'x' || lit[1] == 'X') && nf.hex:
		n.pre, base, body = lit[1], 16, lit[2:]
	case len(lit) > 2 && (lit[1] == 'b' || lit[1] == 'B') && nf.bin:
		n.pre, base, body = lit[1], 2, lit[2:]
	case len(lit) > 2 && (lit[1] == 'o' || lit[1] == 'O') && nf.oct:
		n.pre, base, body = lit[1], 8, lit[2:]
	case len(lit) > 1 && lit[0] == '0' && nf.oct && isOctal(lit):
		n.pre, base, body = '0', 8, lit[1:]
	default:
		// Fall back to the leading decimal digits.
		end := 0
		for end < len(lit) && isDigit(lit[end]) {
			end++
		}
		lit = lit[:end]
		body = lit
	}
	v, err := strconv.ParseUint(body, base, 64)
	if err != nil {
		v = ^uint64(0)
	}
	n.value = v
	n.digits = body
	n.length = len(lit)
	return n, true
}

func isOctal(lit string) bool {
	for i := 1; i < len(lit); i++ {
		if lit[i] > '7' {
			return false
		}
	}
	return true
}

// findNumber locates the number under or after col the way Normal mode
// Ctrl-A does: a hex or binary number under the cursor wins, otherwise
// the first digit at or after col.
func findNumber(line string, col int, nf nrFormats) (int, bool) {
	if col >= len(line) {
		return 0, false
	}
	c := col
	if nf.hex {
		for c > 0 && isXDigit(line[c]) {
			c--
		}
	}
	if nf.bin && nf.hex && !(c > 0 && (line[c] == 'x' || line[c] == 'X') &&
		line[c-1] == '0' && c+1 < len(line) && isXDigit(line[c+1])) {
		c = col
		for c > 0 && isDigit(line[c]) {
			c--
		}
	}
	if nf.bin {
		for c > 0 && isBDigit(line[c]) {
			c--
		}
	}
	if (nf.hex && c > 0 && (line[c] == 'x' || line[c] == 'X') && line[c-1] == '0' &&
		c+1 < len(line) && isXDigit(line[c+1])) ||
		(nf.bin && c > 0 && (line[c] == 'b' || line[c] == 'B') && line[c-1] == '0' &&
			c+1 < len(line) && isBDigit(line[c+1])) {
		return c - 1, true
	}

	c = col
	for c < len(line) && !isDigit(line[c]) && !(nf.alpha && isAlpha(line[c])) {
		c++
	}
	if c >= len(line) {
		return 0, false
	}
	for c > 0 && isDigit(line[c-1]) && !(nf.alpha && isAlpha(line[c])) {
		c--
	}
	return c, true
}

// addsub changes the number found in line from col. In Visual mode the
// search is limited to length bytes and a '-' before the span does not
// count. It returns the new line and the column of the last changed
// byte.
func (h *Handler) addsub(line string, col, length int, visual bool, delta int64, op vim.OpType) (string, int, bool) {
	nf := parseNrFormats(h.settings.NrFormats)
	start := col
	if visual {
		for col < len(line) && length > 0 && !isDigit(line[col]) && !(nf.alpha && isAlpha(line[col])) {
			col++
			length--
		}
		if length <= 0 || col >= len(line) {
			return line, 0, false
		}
	} else {
		c, ok := findNumber(line, col, nf)
		if !ok {
			return line, 0, false
		}
		col = c
	}

	subtract := op == vim.OpNrSub
	first := line[col]

	if nf.alpha && isAlpha(first) {
		base := byte('a')
		if first < 'a' {
			base = 'A'
		}
		v := int64(first - base)
		if subtract {
			v -= delta
		} else {
			v += delta
		}
		v = max(min(v, 25), 0)
		nl := line[:col] + string(rune(base)+rune(v)) + line[col+1:]
		return nl, col, true
	}

	// numCol is where the digits start, delFrom the first byte replaced.
	numCol := col
	negative := false
	wasPositive := true
	if col > 0 && line[col-1] == '-' && !nf.unsigned && (!visual || col > start) {
		negative = true
		if visual {
			wasPositive = false
		}
	}
	maxlen := 0
	if visual {
		maxlen = length
	}
	num, ok := parseNumber(line, numCol, maxlen, nf)
	if !ok {
		return line, 0, false
	}
	if num.pre != 0 && negative {
		negative = false
		wasPositive = true
	}
	delFrom := numCol
	if negative && !visual {
		delFrom--
	}

	if negative {
		subtract = !subtract
	}
	oldn := num.value
	n := num.value
	if subtract {
		n -= uint64(delta)
	} else {
		n += uint64(delta)
	}
	if num.pre == 0 {
		if subtract {
			if n > oldn {
				n = 1 + (n ^ ^uint64(0))
				negative = !negative
			}
		} else if n < oldn {
			n ^= ^uint64(0)
			negative = !negative
		}
		if n == 0 {
			negative = false
		}
		if nf.unsigned && negative {
			// Unsigned numbers stop at zero.
			n, negative = 0, false
		}
	}
	if visual && !wasPositive && !negative {
		delFrom--
	}

	var sb strings.Builder
	if negative && (!visual || wasPositive) {
		sb.WriteByte('-')
	}
	var digits string
	switch num.pre {
	case 'x', 'X':
		sb.WriteString("0")
		sb.WriteByte(num.pre)
		digits = strconv.FormatUint(n, 16)
		if hexUpper(num.digits) {
			digits = strings.ToUpper(digits)
		}
	case 'b', 'B':
		sb.WriteString("0")
		sb.WriteByte(num.pre)
		digits = strconv.FormatUint(n, 2)
	case 'o', 'O':
		sb.WriteString("0")
		sb.WriteByte(num.pre)
		digits = strconv.FormatUint(n, 8)
	case '0':
		sb.WriteString("0")
		digits = strconv.FormatUint(n, 8)
	default:
		digits = strconv.FormatUint(n, 10)
	}
	// Keep the width of a zero-padded number.
	if line[numCol] == '0' && !(nf.oct && num.pre == 0) {
		for len(digits) < len(num.digits) {
			digits = "0" + digits
		}
	}
	sb.WriteString(digits)

	nl := line[:delFrom] + sb.String() + line[numCol+num.length:]
	return nl, delFrom + sb.Len() - 1, true
}

// hexUpper reports whether the last letter of a hex number is upper case.
func hexUpper(digits string) bool {
	upper := false
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c >= 'a' && c <= 'f' {
			upper = false
		} else if c >= 'A' && c <= 'F' {
			upper = true
		}
	}
	return upper
}

// AddSubAt adds delta to the number at or after p, as Normal mode Ctrl-A
// and Ctrl-X do. The cursor ends on the last character of the number.
func (h *Handler) AddSubAt(p buffer.Pos, delta int, op vim.OpType) (buffer.Pos, error) {
	line := h.store.Line(p.Line)
	nl, last, ok := h.addsub(line, p.Col, 0, false, int64(max(delta, 1)), op)
	if !ok {
		return p, ErrFailed
	}
	if err := h.save(p.Line, p.Line, p); err != nil {
		return p, err
	}
	if err := h.replace(p.Line, nl); err != nil {
		return p, err
	}
	return buffer.Pos{Line: p.Line, Col: last}, nil
}

// AddSub adds delta to the first number on each line of a Visual span.
// With progressive set, as "g Ctrl-A" does, every changed line adds delta
// more than the previous one. The cursor goes to the start of the span.
func (h *Handler) AddSub(oa *execctx.OpArg, delta int, progressive bool) (buffer.Pos, error) {
	delta = max(delta, 1)
	amount := int64(delta)
	changed := 0
	for lnum := oa.Start.Line; lnum <= oa.End.Line; lnum++ {
		line := h.store.Line(lnum)
		from, to := h.columns(oa, lnum)
		if from >= to {
			continue
		}
		nl, _, ok := h.addsub(line, from, to-from, true, amount, oa.OpType)
		if !ok {
			continue
		}
		if changed == 0 {
			if err := h.save(lnum, oa.End.Line, oa.Start); err != nil {
				return oa.Start, err
			}
		}
		if err := h.replace(lnum, nl); err != nil {
			return oa.Start, err
		}
		changed++
		if progressive {
			amount += int64(delta)
		}
	}
	if changed == 0 {
		return oa.Start, ErrFailed
	}
	return h.text().Clamp(oa.Start, false), nil
}
