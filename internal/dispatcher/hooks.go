package dispatcher

import (
	"time"

	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// Result describes one finished dispatch cycle.
type Result struct {
	// Code is the command key, after remapping.
	Code key.Code
	// Kind is the command kind; only meaningful when Found is set.
	Kind  Kind
	Found bool
	// Count0 is the count the command ran with.
	Count0 int
	// Op is the operator that was executed, OpNop when none.
	Op vim.OpType
	// Pending is set when an operator is still waiting for a motion.
	Pending bool
	Cursor  buffer.Pos
	// Err is the recovered failure, nil on success.
	Err      error
	Duration time.Duration
}

// PostDispatchHook is called after every dispatch cycle.
type PostDispatchHook interface {
	PostDispatch(r *Result)
}

// PostDispatchFunc is a function adapter for PostDispatchHook.
type PostDispatchFunc func(r *Result)

// PostDispatch implements PostDispatchHook.
func (f PostDispatchFunc) PostDispatch(r *Result) {
	f(r)
}

// LoggingHook logs every cycle.
type LoggingHook struct {
	Log Logger
}

// PostDispatch logs the cycle result.
func (h LoggingHook) PostDispatch(r *Result) {
	if h.Log == nil {
		return
	}
	switch {
	case r.Err != nil:
		h.Log.Debug("dispatch %s failed: %v", key.Format([]key.Code{r.Code}), r.Err)
	case r.Op != vim.OpNop:
		h.Log.Debug("dispatch %s: %s done, cursor %s", key.Format([]key.Code{r.Code}), r.Op, r.Cursor)
	}
}
