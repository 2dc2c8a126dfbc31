package typeahead

import (
	"context"
	"io"
	"sync"

	"github.com/dshills/modalcore/internal/input/key"
)

// Source delivers keys typed by the user. Next blocks until a key is
// available, the context is done, or the source is exhausted (io.EOF).
type Source interface {
	Next(ctx context.Context) (key.Event, error)
}

// Poller is implemented by sources that can report an already available
// key without blocking.
type Poller interface {
	Poll() (key.Event, bool)
}

// Script is a Source that replays a fixed key sequence and then reports
// io.EOF.
type Script struct {
	mu    sync.Mutex
	codes []key.Code
	pos   int
}

// NewScript creates a script source for codes.
func NewScript(codes []key.Code) *Script {
	return &Script{codes: append([]key.Code(nil), codes...)}
}

// Next returns the next scripted key.
func (s *Script) Next(ctx context.Context) (key.Event, error) {
	if err := ctx.Err(); err != nil {
		return key.Event{}, err
	}
	ev, ok := s.Poll()
	if !ok {
		return key.Event{}, io.EOF
	}
	return ev, nil
}

// Poll returns the next scripted key without blocking.
func (s *Script) Poll() (key.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.codes) {
		return key.Event{}, false
	}
	c := s.codes[s.pos]
	s.pos++
	return key.NewEvent(c, key.ModNone), true
}

// ChanSource reads keys from a channel fed by a terminal event loop.
// A closed channel reads as io.EOF.
type ChanSource struct {
	ch <-chan key.Event
}

// NewChanSource wraps ch.
func NewChanSource(ch <-chan key.Event) *ChanSource {
	return &ChanSource{ch: ch}
}

// Next blocks for the next key.
func (c *ChanSource) Next(ctx context.Context) (key.Event, error) {
	select {
	case <-ctx.Done():
		return key.Event{}, ctx.Err()
	case ev, ok := <-c.ch:
		if !ok {
			return key.Event{}, io.EOF
		}
		return ev, nil
	}
}

// Poll returns a key if one is already waiting in the channel.
func (c *ChanSource) Poll() (key.Event, bool) {
	select {
	case ev, ok := <-c.ch:
		return ev, ok
	default:
		return key.Event{}, false
	}
}
