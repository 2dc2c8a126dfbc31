package history

import (
	"errors"
	"sync"

	"github.com/dshills/modalcore/internal/engine/buffer"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("history: nothing to undo")
	ErrNothingToRedo = errors.New("history: nothing to redo")
	ErrInvalidRange  = errors.New("history: invalid save range")
)

// Store is the line store the journal snapshots and restores.
type Store interface {
	Snapshot() *buffer.Snapshot
	SetLines(lines []string)
	Line(n int) string
	LineCount() int
	ReplaceLine(n int, text string) error
}

// History manages undo/redo state for a buffer.
type History struct {
	mu sync.Mutex

	store Store

	undoStack []*Entry
	redoStack []*Entry
	pending   *Entry

	// Grouping depth; Sync is ignored while positive.
	grouping int

	// Line undo state for "U".
	uLine int
	uText string

	// seq is the Seq of the last closed entry.
	seq int

	// Configuration
	maxEntries int
}

// NewHistory creates a journal for store keeping at most maxEntries
// entries.
func NewHistory(store Store, maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 1000 // Default
	}
	return &History{
		store:      store,
		maxEntries: maxEntries,
	}
}

// Save announces that lines top+1 through bot-1 are about to change. It
// must be called before the buffer is modified.
func (h *History) Save(top, bot int, cursor buffer.Pos) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if top < 0 || bot <= top {
		return ErrInvalidRange
	}

	if bot-top == 2 && top+1 != h.uLine {
		h.uLine = top + 1
		h.uText = h.store.Line(top + 1)
	}

	if h.pending == nil {
		h.pending = newEntry(top, bot, h.store.Snapshot(), cursor)
		return nil
	}
	h.pending.widen(top, bot)
	return nil
}

// Sync closes the pending entry. A pending entry whose content did not
// change is dropped.
func (h *History) Sync() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.grouping > 0 {
		return
	}
	h.syncLocked()
}

func (h *History) syncLocked() {
	e := h.pending
	if e == nil {
		return
	}
	h.pending = nil
	if e.Before.Equal(h.store.Snapshot()) {
		return
	}
	h.pushLocked(e)
}

// pushLocked adds an entry without acquiring the lock.
func (h *History) pushLocked(e *Entry) {
	h.seq++
	e.Seq = h.seq
	h.undoStack = append(h.undoStack, e)

	// Clear redo stack
	h.redoStack = nil

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverts count entries. It returns the position the cursor should
// take: the first changed line, at the saved column when the change
// started there.
func (h *History) Undo(count int) (buffer.Pos, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.syncLocked()
	if len(h.undoStack) == 0 {
		return buffer.Pos{}, ErrNothingToUndo
	}
	if count < 1 {
		count = 1
	}

	var pos buffer.Pos
	for ; count > 0 && len(h.undoStack) > 0; count-- {
		e := h.undoStack[len(h.undoStack)-1]
		h.undoStack = h.undoStack[:len(h.undoStack)-1]
		pos = h.swap(e)
		h.redoStack = append(h.redoStack, e)
	}
	h.uLine = 0
	return pos, nil
}

// Redo reapplies count undone entries.
func (h *History) Redo(count int) (buffer.Pos, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return buffer.Pos{}, ErrNothingToRedo
	}
	if count < 1 {
		count = 1
	}

	var pos buffer.Pos
	for ; count > 0 && len(h.redoStack) > 0; count-- {
		e := h.redoStack[len(h.redoStack)-1]
		h.redoStack = h.redoStack[:len(h.redoStack)-1]
		pos = h.swap(e)
		h.undoStack = append(h.undoStack, e)
	}
	h.uLine = 0
	return pos, nil
}

// swap exchanges the buffer content with the entry's saved content.
func (h *History) swap(e *Entry) buffer.Pos {
	current := h.store.Snapshot()
	h.store.SetLines(e.Before.Lines())
	e.Before = current

	line := e.FirstLine()
	if n := h.store.LineCount(); line > n {
		line = n
	}
	pos := buffer.Pos{Line: line}
	if e.Cursor.Line == line {
		pos.Col = e.Cursor.Col
	}
	return pos
}

// UndoLine restores the most recently changed line. The restore is
// recorded as a new entry.
func (h *History) UndoLine(cursor buffer.Pos) (buffer.Pos, error) {
	h.mu.Lock()
	line, text := h.uLine, h.uText
	h.mu.Unlock()

	if line == 0 || line > h.store.LineCount() {
		return buffer.Pos{}, ErrNothingToUndo
	}

	h.Sync()
	current := h.store.Line(line)
	if err := h.Save(line-1, line+1, cursor); err != nil {
		return buffer.Pos{}, err
	}
	if err := h.store.ReplaceLine(line, text); err != nil {
		return buffer.Pos{}, err
	}
	h.Sync()

	// A second "U" swaps back.
	h.mu.Lock()
	h.uLine, h.uText = line, current
	h.mu.Unlock()

	return buffer.Pos{Line: line}, nil
}

// CanUndo returns true if there are entries to undo.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0 || h.pending != nil
}

// CanRedo returns true if there are entries to redo.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of closed entries.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// Last returns the most recent closed entry, or nil.
func (h *History) Last() *Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) == 0 {
		return nil
	}
	return h.undoStack[len(h.undoStack)-1]
}

// Entries returns copies of the entries that can be undone, oldest
// first. A pending change is closed first unless a group is open.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.grouping == 0 {
		h.syncLocked()
	}
	out := make([]Entry, len(h.undoStack))
	for i, e := range h.undoStack {
		out[i] = *e
	}
	return out
}

// Clear drops all history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
	h.pending = nil
	h.uLine = 0
}
