package dispatcher

import (
	"fmt"
	"sort"

	"github.com/dshills/modalcore/internal/input/key"
)

// Flags describe how the dispatcher treats a command.
type Flags uint16

const (
	// FlagNeedsChar marks commands that may take a second key. Without
	// FlagCharNoOp or FlagCharAlways the key is only read in the special
	// cases of "a", "i" and "q".
	FlagNeedsChar Flags = 1 << iota

	// FlagCharNoOp reads the second key only when no operator is pending.
	FlagCharNoOp

	// FlagCharAlways always reads the second key.
	FlagCharAlways

	// FlagCharIsText marks the second key as text: digraphs are allowed
	// and composing characters after it are absorbed.
	FlagCharIsText

	// FlagStartSel starts a selection when 'keymodel' has "startsel"; the
	// command then runs as its unshifted form.
	FlagStartSel

	// FlagStartSelShift starts a selection with "startsel" when Shift is
	// held.
	FlagStartSelShift

	// FlagStopSel ends the selection when 'keymodel' has "stopsel" and
	// Shift is not held.
	FlagStopSel

	// FlagRightLeft marks horizontal commands mirrored with 'rightleft'.
	FlagRightLeft

	// FlagKeepReg keeps the register selection after the command.
	FlagKeepReg

	// FlagNotInSubEditor forbids the command while a sub-editor holds the
	// input or the buffer is locked.
	FlagNotInSubEditor
)

// CommandSpec binds a key to a command kind.
type CommandSpec struct {
	Code  key.Code
	Kind  Kind
	Flags Flags
	// Arg is passed to the handler; its meaning depends on Kind.
	Arg int
}

// multibyteThreshold is the first character that is never a command.
const multibyteThreshold key.Code = 0x100

// Registry is the command lookup index. Specs are sorted by the magnitude
// of their code. Codes 0 through direct sit at their own index, the rest
// are found by binary search.
type Registry struct {
	specs  []CommandSpec
	direct int
}

func magnitude(c key.Code) int64 {
	if c < 0 {
		return -int64(c)
	}
	return int64(c)
}

// NewRegistry builds the index. Codes must be unique.
func NewRegistry(specs []CommandSpec) (*Registry, error) {
	sorted := make([]CommandSpec, len(specs))
	copy(sorted, specs)
	sort.Slice(sorted, func(i, j int) bool {
		return magnitude(sorted[i].Code) < magnitude(sorted[j].Code)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Code == sorted[i-1].Code {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCommand, key.Format([]key.Code{sorted[i].Code}))
		}
	}

	r := &Registry{specs: sorted, direct: -1}
	for i, s := range sorted {
		if s.Code != key.Code(i) {
			break
		}
		r.direct = i
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error, for static tables.
func MustRegistry(specs []CommandSpec) *Registry {
	r, err := NewRegistry(specs)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup finds the command bound to c.
func (r *Registry) Lookup(c key.Code) (CommandSpec, bool) {
	if c >= multibyteThreshold {
		return CommandSpec{}, false
	}
	if c >= 0 && int(c) <= r.direct {
		return r.specs[c], true
	}

	m := magnitude(c)
	lo := r.direct + 1
	hi := len(r.specs) - 1
	for lo <= hi {
		mid := (lo + hi) / 2
		cur := magnitude(r.specs[mid].Code)
		switch {
		case cur == m:
			if r.specs[mid].Code == c {
				return r.specs[mid], true
			}
			return CommandSpec{}, false
		case cur < m:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return CommandSpec{}, false
}

// Direct returns the last code served without searching, -1 when the
// table does not start at NUL.
func (r *Registry) Direct() int {
	return r.direct
}

// Count returns the number of commands.
func (r *Registry) Count() int {
	return len(r.specs)
}
