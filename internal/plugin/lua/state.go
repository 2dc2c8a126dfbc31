package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds every call into Lua.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps a gopher-lua state restricted to safe libraries.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes calls
// made from Go.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	print   func(string)
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets how long one call may run.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithPrint sets where print writes to. By default output is dropped.
func WithPrint(fn func(string)) StateOption {
	return func(s *State) {
		s.print = fn
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{timeout: DefaultExecutionTimeout}
	for _, opt := range opts {
		opt(s)
	}
	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	installSandbox(s.L, func(msg string) {
		if s.print != nil {
			s.print(msg)
		}
	})
	return s
}

// DoFile runs a script file.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

// DoString runs a chunk of Lua code.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, func(L *lua.LState) error {
		return L.DoString(code)
	})
}

// Call calls the global function fn and returns its results.
func (s *State) Call(ctx context.Context, fn string, args ...lua.LValue) ([]lua.LValue, error) {
	var out []lua.LValue
	err := s.run(ctx, func(L *lua.LState) error {
		f, ok := L.GetGlobal(fn).(*lua.LFunction)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFunction, fn)
		}
		top := L.GetTop()
		L.Push(f)
		for _, a := range args {
			L.Push(a)
		}
		if err := L.PCall(len(args), lua.MultRet, nil); err != nil {
			return err
		}
		n := L.GetTop() - top
		out = make([]lua.LValue, n)
		for i := range n {
			out[i] = L.Get(top + i + 1)
		}
		L.Pop(n)
		return nil
	})
	return out, err
}

// run executes fn with the state locked and a deadline installed.
func (s *State) run(ctx context.Context, fn func(L *lua.LState) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	err = fn(s.L)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrExecutionTimeout, err)
	}
	return err
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, v lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.L.SetGlobal(name, v)
	}
}

// RegisterModule installs a global table of Go functions.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.L.SetGlobal(name, s.L.SetFuncs(s.L.NewTable(), funcs))
	}
}

// Close releases the state. Later calls return ErrStateClosed.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.L.Close()
		s.closed = true
	}
}

func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}
