package key

import (
	"context"
	"time"
)

// Event is one key delivered by an input source.
type Event struct {
	// Code is the key itself.
	Code Code

	// Mods holds modifiers that are not already folded into Code.
	Mods Modifier

	// Typed is true when the key came from the user rather than from
	// stuffed input or a mapping. Direction mirroring only applies to
	// typed keys.
	Typed bool

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Reader supplies key events one at a time. Next blocks until a key is
// available or ctx is done.
type Reader interface {
	Next(ctx context.Context) (Event, error)
}

// NewEvent creates a typed key event with the current timestamp.
func NewEvent(c Code, mods Modifier) Event {
	return Event{
		Code:      c,
		Mods:      mods,
		Typed:     true,
		Timestamp: time.Now(),
	}
}

// Stuffed creates events for codes that were queued by the program.
func Stuffed(codes ...Code) []Event {
	evs := make([]Event, len(codes))
	for i, c := range codes {
		evs[i] = Event{Code: c}
	}
	return evs
}

// Codes extracts the codes of evs.
func Codes(evs []Event) []Code {
	out := make([]Code, len(evs))
	for i, ev := range evs {
		out[i] = ev.Code
	}
	return out
}

// String returns the notation for the event.
func (e Event) String() string {
	if e.Mods == ModNone || !e.Code.IsSpecial() {
		return e.Code.String()
	}
	name := Format([]Code{e.Code})
	return "<" + e.Mods.String() + name[1:]
}
