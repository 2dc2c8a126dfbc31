package key

import "unicode"

// Code identifies one input code. Characters are zero or positive,
// special keys are negative.
type Code int32

// Control characters.
const (
	NUL      Code = 0x00
	CtrlA    Code = 0x01
	CtrlB    Code = 0x02
	CtrlC    Code = 0x03
	CtrlD    Code = 0x04
	CtrlE    Code = 0x05
	CtrlF    Code = 0x06
	CtrlG    Code = 0x07
	CtrlH    Code = 0x08
	Tab      Code = 0x09
	NL       Code = 0x0a
	CtrlK    Code = 0x0b
	CtrlL    Code = 0x0c
	CR       Code = 0x0d
	CtrlN    Code = 0x0e
	CtrlO    Code = 0x0f
	CtrlP    Code = 0x10
	CtrlQ    Code = 0x11
	CtrlR    Code = 0x12
	CtrlS    Code = 0x13
	CtrlT    Code = 0x14
	CtrlU    Code = 0x15
	CtrlV    Code = 0x16
	CtrlW    Code = 0x17
	CtrlX    Code = 0x18
	CtrlY    Code = 0x19
	CtrlZ    Code = 0x1a
	Esc      Code = 0x1b
	CtrlBSL  Code = 0x1c // Ctrl-\
	CtrlRSB  Code = 0x1d // Ctrl-]
	CtrlHat  Code = 0x1e // Ctrl-^
	CtrlUndr Code = 0x1f // Ctrl-_
	Space    Code = 0x20
	DelChar  Code = 0x7f
)

// specialBase keeps special key magnitudes clear of every character code.
const specialBase = 0x10000

// Special keys.
const (
	Up Code = -(specialBase + iota)
	Down
	Left
	Right
	ShiftUp
	ShiftDown
	ShiftLeft
	ShiftRight
	CtrlLeft
	CtrlRight
	Home
	End
	ShiftHome
	ShiftEnd
	CtrlHome
	CtrlEnd
	KHome
	KEnd
	PageUp
	PageDown
	KPageUp
	KPageDown
	Insert
	KInsert
	Del
	KDel
	BS
	KEnter
	Undo
	Help

	// Zero is what a typed NUL becomes, so it can be told apart from
	// "no key".
	Zero

	// Ignore is consumed without effect and keeps the register selection.
	Ignore

	// Nop does nothing.
	Nop

	// CursorHold is injected by the input source when the user is idle.
	CursorHold
)

// IsSpecial reports whether c is a special key rather than a character.
func (c Code) IsSpecial() bool {
	return c < 0
}

// IsDigit reports whether c is an ASCII digit.
func (c Code) IsDigit() bool {
	return c >= '0' && c <= '9'
}

// IsPrint reports whether c is a printable character.
func (c Code) IsPrint() bool {
	if c < 0x20 || c == DelChar {
		return false
	}
	if c < 0x100 {
		return true
	}
	return unicode.IsPrint(rune(c))
}

// Rune returns c as a rune. Special keys yield unicode.ReplacementChar.
func (c Code) Rune() rune {
	if c < 0 {
		return unicode.ReplacementChar
	}
	return rune(c)
}

// ToUpper maps a lowercase letter to uppercase; other codes are unchanged.
func (c Code) ToUpper() Code {
	if c < 0 {
		return c
	}
	return Code(unicode.ToUpper(rune(c)))
}

// ToLower maps an uppercase letter to lowercase; other codes are unchanged.
func (c Code) ToLower() Code {
	if c < 0 {
		return c
	}
	return Code(unicode.ToLower(rune(c)))
}

// String returns the notation for a single code.
func (c Code) String() string {
	return Format([]Code{c})
}
