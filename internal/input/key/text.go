package key

import "strings"

// textSpecialBase is where special keys are placed in the supplementary
// private use area when codes are stored as text in a register.
const textSpecialBase = 0xF0000

// ToText stores codes as register text. Characters are kept as they are;
// special keys become private use runes so FromText can restore them.
func ToText(codes []Code) string {
	var b strings.Builder
	for _, c := range codes {
		if c < 0 {
			b.WriteRune(rune(textSpecialBase + (-int32(c) - specialBase)))
			continue
		}
		b.WriteRune(rune(c))
	}
	return b.String()
}

// FromText is the inverse of ToText.
func FromText(s string) []Code {
	out := make([]Code, 0, len(s))
	for _, r := range s {
		if r >= textSpecialBase && r < textSpecialBase+0x100 {
			out = append(out, -Code(specialBase+int32(r-textSpecialBase)))
			continue
		}
		out = append(out, Code(r))
	}
	return out
}
