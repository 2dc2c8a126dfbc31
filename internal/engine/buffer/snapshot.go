package buffer

// Snapshot is a read-only copy of the buffer content at one point in
// time. Later edits to the buffer do not affect it.
type Snapshot struct {
	lines []string
	tick  uint64
}

// Snapshot captures the current content.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{
		lines: append([]string(nil), b.lines...),
		tick:  b.tick,
	}
}

// Lines returns the captured lines. The slice must not be modified.
func (s *Snapshot) Lines() []string {
	return s.lines
}

// LineCount returns the number of captured lines.
func (s *Snapshot) LineCount() int {
	return len(s.lines)
}

// Tick returns the change tick the snapshot was taken at.
func (s *Snapshot) Tick() uint64 {
	return s.tick
}

// Equal reports whether two snapshots hold the same text.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if other == nil || len(s.lines) != len(other.lines) {
		return false
	}
	for i := range s.lines {
		if s.lines[i] != other.lines[i] {
			return false
		}
	}
	return true
}
