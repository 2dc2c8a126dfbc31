package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/modalcore/internal/engine/buffer"
)

// Entry is one undoable change.
type Entry struct {
	// ID identifies the entry.
	ID uuid.UUID

	// Seq numbers the entries in the order they were closed, from 1.
	Seq int

	// Top and Bot bound the changed lines exclusively: lines Top+1
	// through Bot-1 were announced as about to change.
	Top, Bot int

	// Before is the buffer content before the change.
	Before *buffer.Snapshot

	// Cursor is the cursor position when the change started.
	Cursor buffer.Pos

	// Time is when the first save of the entry happened.
	Time time.Time
}

func newEntry(top, bot int, before *buffer.Snapshot, cursor buffer.Pos) *Entry {
	return &Entry{
		ID:     uuid.New(),
		Top:    top,
		Bot:    bot,
		Before: before,
		Cursor: cursor,
		Time:   time.Now(),
	}
}

// widen grows the announced range to include top and bot.
func (e *Entry) widen(top, bot int) {
	if top < e.Top {
		e.Top = top
	}
	if bot > e.Bot {
		e.Bot = bot
	}
}

// Lines returns the number of lines announced as changing.
func (e *Entry) Lines() int {
	return e.Bot - e.Top - 1
}

// FirstLine returns the first changed line, the line the cursor returns to
// after undo.
func (e *Entry) FirstLine() int {
	if e.Top < 0 {
		return 1
	}
	return e.Top + 1
}
