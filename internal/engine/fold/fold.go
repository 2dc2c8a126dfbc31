// Package fold tracks manually created folds: line ranges that can be
// closed so motions and linewise operators treat them as one line.
package fold

import (
	"errors"
	"sort"
	"sync"

	"github.com/dshills/modalcore/internal/engine/buffer"
)

// ErrNoFold is returned when no fold exists where one was required.
var ErrNoFold = errors.New("fold: no fold found")

// Fold is one fold. Nested folds lie entirely within their parent.
type Fold struct {
	Start, End int
	Closed     bool
	Nested     []*Fold
}

func (f *Fold) contains(lnum int) bool {
	return lnum >= f.Start && lnum <= f.End
}

// Set holds the folds of one window.
type Set struct {
	mu      sync.RWMutex
	folds   []*Fold
	enabled bool
	// level is 'foldlevel': folds nested deeper are closed by zx and zm.
	level int
}

// NewSet creates an empty, enabled fold set.
func NewSet() *Set {
	return &Set{enabled: true}
}

// Enabled reports whether folding is on ('foldenable').
func (s *Set) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetEnabled switches folding on or off.
func (s *Set) SetEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = on
}

// Create adds a closed fold over start..end. A fold that fits inside an
// existing fold becomes nested in it; existing folds inside the new range
// become its children.
func (s *Set) Create(start, end int) {
	if start > end {
		start, end = end, start
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folds = insert(s.folds, &Fold{Start: start, End: end, Closed: true})
}

func insert(list []*Fold, nf *Fold) []*Fold {
	for _, f := range list {
		if f.Start <= nf.Start && f.End >= nf.End && !(f.Start == nf.Start && f.End == nf.End) {
			f.Nested = insert(f.Nested, nf)
			return list
		}
	}
	kept := list[:0:0]
	for _, f := range list {
		if f.Start >= nf.Start && f.End <= nf.End {
			nf.Nested = append(nf.Nested, f)
			continue
		}
		kept = append(kept, f)
	}
	kept = append(kept, nf)
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// Closed reports the outermost closed fold containing lnum. It returns
// the fold's first and last line.
func (s *Set) Closed(lnum int) (first, last int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.enabled {
		return lnum, lnum, false
	}
	list := s.folds
	for {
		var found *Fold
		for _, f := range list {
			if f.contains(lnum) {
				found = f
				break
			}
		}
		if found == nil {
			return lnum, lnum, false
		}
		if found.Closed {
			return found.Start, found.End, true
		}
		list = found.Nested
	}
}

// Open opens folds in start..end. Without recursion only the outermost
// closed fold at each line is opened.
func (s *Set) Open(start, end int, recursive bool) error {
	return s.setClosed(start, end, false, recursive)
}

// Close closes folds in start..end. Without recursion only the innermost
// open fold at each line is closed.
func (s *Set) Close(start, end int, recursive bool) error {
	return s.setClosed(start, end, true, recursive)
}

// Toggle flips the fold at lnum.
func (s *Set) Toggle(lnum int, recursive bool) error {
	if _, _, ok := s.Closed(lnum); ok {
		return s.Open(lnum, lnum, recursive)
	}
	return s.Close(lnum, lnum, recursive)
}

func (s *Set) setClosed(start, end int, closed, recursive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	done := false
	for lnum := start; lnum <= end; lnum++ {
		if apply(s.folds, lnum, closed, recursive) {
			done = true
		}
	}
	if !done {
		return ErrNoFold
	}
	return nil
}

func apply(list []*Fold, lnum int, closed, recursive bool) bool {
	for _, f := range list {
		if !f.contains(lnum) {
			continue
		}
		if recursive {
			setAll(f, closed)
			return true
		}
		if closed {
			// Close the innermost open fold.
			if f.Closed {
				return true
			}
			if apply(f.Nested, lnum, closed, false) {
				return true
			}
			f.Closed = true
			return true
		}
		if f.Closed {
			f.Closed = false
			return true
		}
		return apply(f.Nested, lnum, closed, false)
	}
	return false
}

func setAll(f *Fold, closed bool) {
	f.Closed = closed
	for _, n := range f.Nested {
		setAll(n, closed)
	}
}

// Delete removes the fold at each line in start..end. Nested folds of a
// removed fold move up one level unless recursive is set.
func (s *Set) Delete(start, end int, recursive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	done := false
	for lnum := start; lnum <= end; lnum++ {
		var ok bool
		s.folds, ok = remove(s.folds, lnum, recursive)
		if ok {
			done = true
		}
	}
	if !done {
		return ErrNoFold
	}
	return nil
}

func remove(list []*Fold, lnum int, recursive bool) ([]*Fold, bool) {
	for i, f := range list {
		if !f.contains(lnum) {
			continue
		}
		// Delete the innermost fold unless the outer one is closed.
		if !f.Closed && !recursive {
			var ok bool
			if f.Nested, ok = remove(f.Nested, lnum, false); ok {
				return list, true
			}
		}
		out := append(list[:i:i], list[i+1:]...)
		if !recursive {
			out = append(out, f.Nested...)
			sort.Slice(out, func(a, b int) bool { return out[a].Start < out[b].Start })
		}
		return out, true
	}
	return list, false
}

// Clear removes every fold (zE).
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folds = nil
}

// SetAll opens or closes every fold (zR, zM).
func (s *Set) SetAll(closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.folds {
		setAll(f, closed)
	}
}

// Level returns 'foldlevel'.
func (s *Set) Level() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level
}

// SetLevel changes 'foldlevel' and reapplies it: folds nested at depth
// level or deeper are closed, the rest opened (zm, zr, zx).
func (s *Set) SetLevel(level int) {
	if level < 0 {
		level = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
	applyLevel(s.folds, 0, level)
}

func applyLevel(list []*Fold, depth, level int) {
	for _, f := range list {
		f.Closed = depth >= level
		applyLevel(f.Nested, depth+1, level)
	}
}

// Deepest returns the deepest nesting of folds, 0 when there are none.
func (s *Set) Deepest() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deepest(s.folds)
}

func deepest(list []*Fold) int {
	n := 0
	for _, f := range list {
		n = max(n, 1+deepest(f.Nested))
	}
	return n
}

// MoveTo finds the line "zj" (forward) or "zk" moves to: the start of the
// next fold below lnum, or the end of the previous fold above it.
func (s *Set) MoveTo(lnum int, forward bool, count int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var edges []int
	collect(s.folds, forward, &edges)
	sort.Ints(edges)

	target, found := lnum, false
	for ; count > 0; count-- {
		next, ok := target, false
		if forward {
			for _, e := range edges {
				if e > target {
					next, ok = e, true
					break
				}
			}
		} else {
			for i := len(edges) - 1; i >= 0; i-- {
				if edges[i] < target {
					next, ok = edges[i], true
					break
				}
			}
		}
		if !ok {
			break
		}
		target, found = next, true
	}
	if !found {
		return lnum, ErrNoFold
	}
	return target, nil
}

func collect(list []*Fold, starts bool, out *[]int) {
	for _, f := range list {
		if starts {
			*out = append(*out, f.Start)
		} else {
			*out = append(*out, f.End)
		}
		collect(f.Nested, starts, out)
	}
}

// Folds returns a copy of the top-level folds.
func (s *Set) Folds() []Fold {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Fold, len(s.folds))
	for i, f := range s.folds {
		out[i] = *f
	}
	return out
}

// Track makes the set follow line insertions and deletions in buf.
func (s *Set) Track(buf *buffer.Buffer) {
	buf.OnChange(func(c buffer.Change) {
		switch c.Kind {
		case buffer.LinesInserted:
			s.adjust(c.Line+1, c.Count)
		case buffer.LinesDeleted:
			s.adjust(c.Line, -c.Count)
		}
	})
}

// adjust shifts folds for amount lines inserted (positive) or deleted
// (negative) at line.
func (s *Set) adjust(line, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folds = adjustList(s.folds, line, amount)
}

func adjustList(list []*Fold, line, amount int) []*Fold {
	out := list[:0]
	for _, f := range list {
		if amount < 0 {
			last := line - amount - 1
			if f.Start >= line && f.End <= last {
				continue
			}
		}
		f.Start = shift(f.Start, line, amount)
		f.End = shiftEnd(f.End, line, amount)
		if f.End < f.Start {
			f.End = f.Start
		}
		f.Nested = adjustList(f.Nested, line, amount)
		out = append(out, f)
	}
	return out
}

func shift(lnum, line, amount int) int {
	if lnum < line {
		return lnum
	}
	if amount < 0 && lnum < line-amount {
		return line
	}
	return lnum + amount
}

func shiftEnd(lnum, line, amount int) int {
	if amount < 0 && lnum >= line && lnum < line-amount {
		return line - 1
	}
	return shift(lnum, line, amount)
}
