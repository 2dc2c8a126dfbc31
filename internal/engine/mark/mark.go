// Package mark stores buffer marks: the lowercase marks set with "m",
// the previous context mark "'", the change marks "[", "]" and ".", the
// last insert mark "^" and the Visual marks "<" and ">".
package mark

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/modalcore/internal/engine/buffer"
)

// Mark errors.
var (
	ErrInvalidMark = errors.New("mark: invalid mark")
	ErrNotSet      = errors.New("mark: mark not set")
)

// Table holds the marks of one buffer.
type Table struct {
	mu    sync.RWMutex
	marks map[rune]buffer.Pos
}

// NewTable creates an empty mark table.
func NewTable() *Table {
	return &Table{marks: make(map[rune]buffer.Pos)}
}

// Valid reports whether name can be set by the user.
func Valid(name rune) bool {
	switch {
	case name >= 'a' && name <= 'z':
		return true
	case name == '\'' || name == '`' || name == '[' || name == ']' || name == '<' || name == '>',
		name == '^' || name == '.':
		return true
	}
	return false
}

func normalize(name rune) rune {
	if name == '`' {
		return '\''
	}
	return name
}

// Set stores pos under name.
func (t *Table) Set(name rune, pos buffer.Pos) error {
	if !Valid(name) {
		return fmt.Errorf("%w: %q", ErrInvalidMark, name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.marks[normalize(name)] = pos
	return nil
}

// Get returns the position stored under name.
func (t *Table) Get(name rune) (buffer.Pos, error) {
	if !Valid(name) {
		return buffer.Pos{}, fmt.Errorf("%w: %q", ErrInvalidMark, name)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, ok := t.marks[normalize(name)]
	if !ok {
		return buffer.Pos{}, fmt.Errorf("%w: %q", ErrNotSet, name)
	}
	return pos, nil
}

// SetChange sets the "[" and "]" marks, and "." to the start of the
// change.
func (t *Table) SetChange(start, end buffer.Pos) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.marks['['] = start
	t.marks[']'] = end
	t.marks['.'] = start
}

// SetVisual sets the "<" and ">" marks.
func (t *Table) SetVisual(start, end buffer.Pos) {
	if end.Before(start) {
		start, end = end, start
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.marks['<'] = start
	t.marks['>'] = end
}

// Track makes the table follow line insertions and deletions in buf.
// Marks on deleted lines are removed.
func (t *Table) Track(buf *buffer.Buffer) {
	buf.OnChange(func(c buffer.Change) {
		switch c.Kind {
		case buffer.LinesInserted:
			t.adjust(c.Line+1, c.Count)
		case buffer.LinesDeleted:
			t.adjust(c.Line, -c.Count)
		}
	})
}

func (t *Table) adjust(line, amount int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, pos := range t.marks {
		if pos.Line < line {
			continue
		}
		if amount < 0 && pos.Line < line-amount {
			if name >= 'a' && name <= 'z' {
				delete(t.marks, name)
				continue
			}
			pos.Line = line
		} else {
			pos.Line += amount
		}
		if pos.Line < 1 {
			pos.Line = 1
		}
		t.marks[name] = pos
	}
}
