package lua

import "errors"

// Lua runtime errors.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua: state is closed")

	// ErrExecutionTimeout is returned when a script runs longer than
	// the state allows.
	ErrExecutionTimeout = errors.New("lua: execution timeout")

	// ErrNotFunction indicates 'operatorfunc' names a global that is not
	// a Lua function.
	ErrNotFunction = errors.New("lua: not a function")

	// ErrReentrant indicates an operator function that started another
	// one through ed.normal.
	ErrReentrant = errors.New("lua: operator function is already running")
)
