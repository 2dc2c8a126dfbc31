package cmdline

import "slices"

// DefaultHistorySize is the number of lines a History keeps by default.
const DefaultHistorySize = 50

// History holds previously entered lines, oldest first.
type History struct {
	entries []string
	max     int
}

// NewHistory creates a history keeping at most max lines.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

// Add appends line. An earlier copy of the same line is removed, so a
// line reused from history moves to the end.
func (h *History) Add(line string) {
	if line == "" {
		return
	}
	if i := slices.Index(h.entries, line); i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}
	h.entries = append(h.entries, line)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = slices.Delete(h.entries, 0, over)
	}
}

// Entries returns a copy of the lines, oldest first.
func (h *History) Entries() []string {
	return slices.Clone(h.entries)
}

// Len returns the number of lines.
func (h *History) Len() int {
	return len(h.entries)
}

// browser walks the history while a line is being edited. Only entries
// starting with prefix are visited. Going past the newest entry gives the
// line that was being typed back.
type browser struct {
	h      *History
	idx    int
	prefix string
	typed  string
}

func (h *History) browse() *browser {
	return &browser{h: h, idx: len(h.entries)}
}

// start records the line being typed when browsing begins.
func (b *browser) start(typed, prefix string) {
	if b.idx == len(b.h.entries) {
		b.typed = typed
		b.prefix = prefix
	}
}

func (b *browser) prev() (string, bool) {
	for i := b.idx - 1; i >= 0; i-- {
		if hasPrefix(b.h.entries[i], b.prefix) {
			b.idx = i
			return b.h.entries[i], true
		}
	}
	return "", false
}

func (b *browser) next() (string, bool) {
	for i := b.idx + 1; i < len(b.h.entries); i++ {
		if hasPrefix(b.h.entries[i], b.prefix) {
			b.idx = i
			return b.h.entries[i], true
		}
	}
	if b.idx == len(b.h.entries) {
		return "", false
	}
	b.idx = len(b.h.entries)
	return b.typed, true
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
