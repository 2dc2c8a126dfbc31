package history

// BeginGroup suspends Sync so that everything until the matching EndGroup
// becomes part of the current entry. Groups nest.
func (h *History) BeginGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.grouping++
}

// EndGroup ends the innermost group.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.grouping > 0 {
		h.grouping--
	}
}

// Grouping reports whether a group is open.
func (h *History) Grouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping > 0
}

// Transaction runs fn inside a group.
func (h *History) Transaction(fn func() error) error {
	h.BeginGroup()
	defer h.EndGroup()
	return fn()
}
