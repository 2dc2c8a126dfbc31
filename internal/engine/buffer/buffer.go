package buffer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrLineOutOfRange = errors.New("buffer: line out of range")
	ErrReadOnly       = errors.New("buffer: buffer is not modifiable")
)

// ChangeKind classifies a change notification.
type ChangeKind uint8

const (
	// LinesInserted reports Count lines inserted after Line.
	LinesInserted ChangeKind = iota
	// LinesDeleted reports Count lines deleted starting at Line.
	LinesDeleted
	// LineChanged reports the text of Line was replaced.
	LineChanged
	// Reset reports the whole content was replaced.
	Reset
)

// Change describes one structural edit.
type Change struct {
	Kind  ChangeKind
	Line  int
	Count int
}

// Listener receives change notifications. It is called with the buffer
// lock released.
type Listener func(Change)

// Buffer is a thread-safe line store.
type Buffer struct {
	mu         sync.RWMutex
	lines      []string
	modifiable bool
	locked     bool
	tick       uint64
	name       string

	listenerMu sync.RWMutex
	listeners  []Listener
}

// NewBuffer creates a new buffer holding one empty line.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		lines:      []string{""},
		modifiable: true,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer from text. A trailing newline does
// not produce an extra empty line.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.lines = splitLines(s)
	return b
}

// NewBufferFromReader creates a buffer from a reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffer: read: %w", err)
	}
	return NewBufferFromString(string(data), opts...), nil
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// Name returns the buffer name, usually a file path.
func (b *Buffer) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

// LineCount returns the number of lines. It is never less than one.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Line returns the text of line n. An out of range line yields "".
func (b *Buffer) Line(n int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n < 1 || n > len(b.lines) {
		return ""
	}
	return b.lines[n-1]
}

// Lines returns a copy of lines first through last.
func (b *Buffer) Lines(first, last int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if first < 1 {
		first = 1
	}
	if last > len(b.lines) {
		last = len(b.lines)
	}
	if first > last {
		return nil
	}
	out := make([]string, last-first+1)
	copy(out, b.lines[first-1:last])
	return out
}

// Text returns the whole content joined with newlines.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// AppendLine inserts text as a new line after line after. After may be 0
// to insert before the first line.
func (b *Buffer) AppendLine(after int, text string) error {
	b.mu.Lock()
	if err := b.checkWritable(); err != nil {
		b.mu.Unlock()
		return err
	}
	if after < 0 || after > len(b.lines) {
		b.mu.Unlock()
		return fmt.Errorf("%w: append after %d", ErrLineOutOfRange, after)
	}
	b.lines = append(b.lines, "")
	copy(b.lines[after+1:], b.lines[after:])
	b.lines[after] = text
	b.tick++
	b.mu.Unlock()

	b.notify(Change{Kind: LinesInserted, Line: after, Count: 1})
	return nil
}

// ReplaceLine replaces the text of line n.
func (b *Buffer) ReplaceLine(n int, text string) error {
	b.mu.Lock()
	if err := b.checkWritable(); err != nil {
		b.mu.Unlock()
		return err
	}
	if n < 1 || n > len(b.lines) {
		b.mu.Unlock()
		return fmt.Errorf("%w: replace %d", ErrLineOutOfRange, n)
	}
	b.lines[n-1] = text
	b.tick++
	b.mu.Unlock()

	b.notify(Change{Kind: LineChanged, Line: n, Count: 1})
	return nil
}

// DeleteLine removes line n. Removing the only line empties it instead.
func (b *Buffer) DeleteLine(n int) error {
	b.mu.Lock()
	if err := b.checkWritable(); err != nil {
		b.mu.Unlock()
		return err
	}
	if n < 1 || n > len(b.lines) {
		b.mu.Unlock()
		return fmt.Errorf("%w: delete %d", ErrLineOutOfRange, n)
	}
	if len(b.lines) == 1 {
		b.lines[0] = ""
		b.tick++
		b.mu.Unlock()
		b.notify(Change{Kind: LineChanged, Line: 1, Count: 1})
		return nil
	}
	b.lines = append(b.lines[:n-1], b.lines[n:]...)
	b.tick++
	b.mu.Unlock()

	b.notify(Change{Kind: LinesDeleted, Line: n, Count: 1})
	return nil
}

// SetLines replaces the whole content. It is used by undo and redo and
// bypasses the modifiable flag.
func (b *Buffer) SetLines(lines []string) {
	b.mu.Lock()
	if len(lines) == 0 {
		lines = []string{""}
	}
	b.lines = append([]string(nil), lines...)
	b.tick++
	b.mu.Unlock()

	b.notify(Change{Kind: Reset})
}

// ChangedTick returns a counter incremented by every edit.
func (b *Buffer) ChangedTick() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tick
}

// Modifiable reports whether edits are allowed.
func (b *Buffer) Modifiable() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.modifiable
}

// SetModifiable enables or disables edits.
func (b *Buffer) SetModifiable(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modifiable = on
}

// Locked reports whether the buffer is structurally locked, for example
// while it is being switched or closed.
func (b *Buffer) Locked() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.locked
}

// SetLocked sets the structural lock.
func (b *Buffer) SetLocked(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locked = on
}

func (b *Buffer) checkWritable() error {
	if !b.modifiable {
		return ErrReadOnly
	}
	return nil
}

// OnChange registers a listener for structural edits.
func (b *Buffer) OnChange(l Listener) {
	b.listenerMu.Lock()
	defer b.listenerMu.Unlock()
	b.listeners = append(b.listeners, l)
}

func (b *Buffer) notify(c Change) {
	b.listenerMu.RLock()
	ls := b.listeners
	b.listenerMu.RUnlock()
	for _, l := range ls {
		l(c)
	}
}
