package buffer

import "fmt"

// MaxCol is the column sentinel for "end of line", used for the desired
// cursor column after "$".
const MaxCol = 1<<31 - 1

// Pos is a position in the buffer. Line is 1-based, Col is a 0-based byte
// offset into the line. A Col equal to the line length addresses the
// position just past the last character.
type Pos struct {
	Line int
	Col  int
}

// String returns a human-readable representation of the position.
func (p Pos) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Col)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Pos) Compare(other Pos) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Col < other.Col {
		return -1
	}
	if p.Col > other.Col {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Pos) Before(other Pos) bool {
	return p.Compare(other) < 0
}

// IsZero reports whether p is the unset position.
func (p Pos) IsZero() bool {
	return p.Line == 0
}
