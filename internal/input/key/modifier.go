package key

import "strings"

// Modifier represents keyboard modifier keys held with a key.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key.
	ModMeta
)

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// String returns the Vim notation prefix, like "C-S-".
func (m Modifier) String() string {
	var b strings.Builder
	if m.Has(ModCtrl) {
		b.WriteString("C-")
	}
	if m.Has(ModAlt) {
		b.WriteString("A-")
	}
	if m.Has(ModShift) {
		b.WriteString("S-")
	}
	if m.Has(ModMeta) {
		b.WriteString("M-")
	}
	return b.String()
}

// unshifted maps shifted special keys to the key without the qualifier.
var unshifted = map[Code]Code{
	ShiftUp:    Up,
	ShiftDown:  Down,
	ShiftLeft:  Left,
	ShiftRight: Right,
	ShiftHome:  Home,
	ShiftEnd:   End,
	CtrlLeft:   Left,
	CtrlRight:  Right,
	CtrlHome:   Home,
	CtrlEnd:    End,
}

// Unshift drops the shift or control qualifier from a special key. It
// reports false when c has no unqualified form.
func Unshift(c Code) (Code, bool) {
	u, ok := unshifted[c]
	if !ok {
		return c, false
	}
	return u, true
}

// IsShifted reports whether c is one of the shift-qualified special keys.
func IsShifted(c Code) bool {
	switch c {
	case ShiftUp, ShiftDown, ShiftLeft, ShiftRight, ShiftHome, ShiftEnd:
		return true
	}
	return false
}
