package typeahead

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/modalcore/internal/input/key"
)

// ErrRecording is returned by StartRecording while a recording is active.
var ErrRecording = errors.New("typeahead: already recording")

// Buffer merges stuffed, pushed-back and typed keys into one stream.
type Buffer struct {
	mu sync.Mutex

	src Source

	// unget holds keys pushed back with Unget, most recent first.
	unget []key.Event
	// stuff holds keys queued by the program.
	stuff []key.Event
	// typed holds keys read ahead from src by Peek.
	typed []key.Event

	recording bool
	recorded  []key.Code
}

// NewBuffer creates a buffer reading user keys from src.
func NewBuffer(src Source) *Buffer {
	return &Buffer{src: src}
}

// Next returns the next key. Pushed-back keys come first, then stuffed
// keys, then keys the user typed.
func (b *Buffer) Next(ctx context.Context) (key.Event, error) {
	b.mu.Lock()
	if ev, ok := b.popLocked(); ok {
		b.mu.Unlock()
		return ev, nil
	}
	src := b.src
	b.mu.Unlock()

	if src == nil {
		return key.Event{}, context.Canceled
	}
	ev, err := src.Next(ctx)
	if err != nil {
		return key.Event{}, err
	}
	b.mu.Lock()
	b.recordLocked(ev)
	b.mu.Unlock()
	return ev, nil
}

func (b *Buffer) popLocked() (key.Event, bool) {
	if n := len(b.unget); n > 0 {
		ev := b.unget[n-1]
		b.unget = b.unget[:n-1]
		return ev, true
	}
	if len(b.stuff) > 0 {
		ev := b.stuff[0]
		b.stuff = b.stuff[1:]
		return ev, true
	}
	if len(b.typed) > 0 {
		ev := b.typed[0]
		b.typed = b.typed[1:]
		b.recordLocked(ev)
		return ev, true
	}
	return key.Event{}, false
}

func (b *Buffer) recordLocked(ev key.Event) {
	if b.recording && ev.Typed {
		b.recorded = append(b.recorded, ev.Code)
	}
}

// Peek returns the next key without consuming it and without blocking.
// It reports false when no key is available right now.
func (b *Buffer) Peek() (key.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := len(b.unget); n > 0 {
		return b.unget[n-1], true
	}
	if len(b.stuff) > 0 {
		return b.stuff[0], true
	}
	if len(b.typed) > 0 {
		return b.typed[0], true
	}
	p, ok := b.src.(Poller)
	if !ok {
		return key.Event{}, false
	}
	ev, ok := p.Poll()
	if !ok {
		return key.Event{}, false
	}
	b.typed = append(b.typed, ev)
	return ev, true
}

// Unget pushes ev back so the next call to Next returns it.
func (b *Buffer) Unget(ev key.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unget = append(b.unget, ev)
}

// Stuff queues the keys written in s using key notation ("<Esc>", "<C-V>").
// Stuffed keys are delivered before anything the user typed.
func (b *Buffer) Stuff(s string) error {
	codes, err := key.Parse(s)
	if err != nil {
		return err
	}
	b.StuffCodes(codes...)
	return nil
}

// StuffCodes queues codes after any keys already stuffed.
func (b *Buffer) StuffCodes(codes ...key.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stuff = append(b.stuff, key.Stuffed(codes...)...)
}

// InsertCodes queues codes ahead of any keys already stuffed, so a
// register executed from within a replay runs before the rest of it.
func (b *Buffer) InsertCodes(codes ...key.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stuff = append(key.Stuffed(codes...), b.stuff...)
}

// Save sets the pushed-back and stuffed keys aside so a nested command
// run sees only the keys queued after it. The returned function puts them
// back and drops whatever the nested run left unread. Keys read ahead from
// the user stay where they are.
func (b *Buffer) Save() (restore func()) {
	b.mu.Lock()
	unget, stuff := b.unget, b.stuff
	b.unget, b.stuff = nil, nil
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.unget, b.stuff = unget, stuff
	}
}

// StuffEmpty reports whether no stuffed keys are pending.
func (b *Buffer) StuffEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.stuff) == 0
}

// Pending reports whether any key can be read without consulting the
// source.
func (b *Buffer) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.unget)+len(b.stuff)+len(b.typed) > 0
}

// Flush drops stuffed and pushed-back keys. Keys already read ahead from
// the user are kept.
func (b *Buffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unget = nil
	b.stuff = nil
}

// StartRecording starts collecting typed keys.
func (b *Buffer) StartRecording() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.recording {
		return ErrRecording
	}
	b.recording = true
	b.recorded = nil
	return nil
}

// Recording reports whether typed keys are being collected.
func (b *Buffer) Recording() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recording
}

// StopRecording ends the recording and returns the keys typed since
// StartRecording.
func (b *Buffer) StopRecording() []key.Code {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recording = false
	out := b.recorded
	b.recorded = nil
	return out
}
