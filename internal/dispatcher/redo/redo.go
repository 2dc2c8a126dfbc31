// Package redo records the keys that reproduce the last change so that
// "." can replay it.
//
// The dispatcher resets the buffer when an operator or change command
// starts and appends the register, count, operator, motion and any typed
// text as the command proceeds. A failed command is cancelled, which
// restores the previous recording.
package redo

import (
	"errors"
	"strconv"

	"github.com/dshills/modalcore/internal/input/key"
)

// DefaultMaxLen is the default capacity in keys.
const DefaultMaxLen = 1 << 16

// Errors returned by the redo buffer.
var (
	// ErrFull is returned when an append would exceed the capacity. The
	// recording is truncated and cannot be replayed.
	ErrFull = errors.New("redo: buffer full")

	// ErrEmpty is returned by Start when nothing was recorded.
	ErrEmpty = errors.New("redo: nothing to repeat")
)

// VisualMarker starts a recording of an operator applied to a Visual
// selection.
const VisualMarker key.Code = 'v'

// Buffer is the redo recording. It belongs to the dispatch goroutine and
// is not safe for concurrent use.
type Buffer struct {
	cur    []key.Code
	old    []key.Code
	maxLen int

	// blocked suppresses resets and appends while a nested command runs.
	blocked int
	// truncated is set after an overflow until the next reset.
	truncated bool
}

// New creates a redo buffer holding at most maxLen keys.
func New(maxLen int) *Buffer {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Buffer{maxLen: maxLen}
}

// Reset starts a new recording. The previous one is kept for Cancel.
func (b *Buffer) Reset() {
	if b.blocked > 0 {
		return
	}
	b.old = b.cur
	b.cur = nil
	b.truncated = false
}

// Cancel drops the current recording and restores the previous one.
func (b *Buffer) Cancel() {
	if b.blocked > 0 {
		return
	}
	b.cur = b.old
	b.old = nil
	b.truncated = false
}

// Block suppresses recording until Unblock. Calls nest.
func (b *Buffer) Block() {
	b.blocked++
}

// Unblock undoes one Block.
func (b *Buffer) Unblock() {
	if b.blocked > 0 {
		b.blocked--
	}
}

// Append adds codes to the recording.
func (b *Buffer) Append(codes ...key.Code) error {
	if b.blocked > 0 {
		return nil
	}
	if b.truncated || len(b.cur)+len(codes) > b.maxLen {
		b.truncated = true
		return ErrFull
	}
	b.cur = append(b.cur, codes...)
	return nil
}

// AppendNum adds the decimal digits of n.
func (b *Buffer) AppendNum(n int) error {
	s := strconv.Itoa(n)
	codes := make([]key.Code, len(s))
	for i := range s {
		codes[i] = key.Code(s[i])
	}
	return b.Append(codes...)
}

// AppendLiteral adds s so that replaying it inserts the text verbatim:
// control characters are preceded by Ctrl-V.
func (b *Buffer) AppendLiteral(s string) error {
	codes := make([]key.Code, 0, len(s))
	for _, r := range s {
		c := key.Code(r)
		if c < key.Space || c == key.DelChar {
			codes = append(codes, key.CtrlV)
		}
		codes = append(codes, c)
	}
	return b.Append(codes...)
}

// Prep starts a recording of a command: an optional register, an
// optional count and the non-zero command keys.
func (b *Buffer) Prep(regname rune, count int, cmds ...key.Code) error {
	b.Reset()
	if regname != 0 {
		if err := b.Append('"', key.Code(regname)); err != nil {
			return err
		}
	}
	if count != 0 {
		if err := b.AppendNum(count); err != nil {
			return err
		}
	}
	for _, c := range cmds {
		if c == key.NUL {
			continue
		}
		if err := b.Append(c); err != nil {
			return err
		}
	}
	return nil
}

// Content returns a copy of the current recording.
func (b *Buffer) Content() []key.Code {
	return append([]key.Code(nil), b.cur...)
}

// Saved is a copy of the buffer state taken by Save.
type Saved struct {
	cur, old  []key.Code
	truncated bool
}

// Save returns the current state so a nested command can record freely.
func (b *Buffer) Save() Saved {
	return Saved{
		cur:       append([]key.Code(nil), b.cur...),
		old:       append([]key.Code(nil), b.old...),
		truncated: b.truncated,
	}
}

// Restore puts back a state returned by Save.
func (b *Buffer) Restore(s Saved) {
	b.cur = s.cur
	b.old = s.old
	b.truncated = s.truncated
}

// Replay is a recording prepared for execution.
type Replay struct {
	// Keys are to be stuffed into the input, in order.
	Keys []key.Code
	// Visual is set when the recording was an operator on a Visual
	// selection; the caller starts a selection at the cursor that takes
	// the recorded size.
	Visual bool
}

// Start prepares the recording for "." with count. A numbered register
// is advanced ("1 becomes "2) so repeated puts walk the delete history. A
// non-zero count replaces the recorded one.
func (b *Buffer) Start(count int) (Replay, error) {
	rec := append([]key.Code(nil), b.cur...)
	if len(rec) == 0 {
		return Replay{}, ErrEmpty
	}
	if b.truncated {
		return Replay{}, ErrFull
	}

	var r Replay
	i := 0
	if rec[0] == '"' && len(rec) > 1 {
		reg := rec[1]
		if reg >= '1' && reg < '9' {
			reg++
		}
		r.Keys = append(r.Keys, '"', reg)
		i = 2
	}
	if i < len(rec) && rec[i] == VisualMarker {
		r.Visual = true
		i++
	}
	if count != 0 {
		for i < len(rec) && rec[i] >= '0' && rec[i] <= '9' {
			i++
		}
		for _, d := range strconv.Itoa(count) {
			r.Keys = append(r.Keys, key.Code(d))
		}
	}
	r.Keys = append(r.Keys, rec[i:]...)
	return r, nil
}
