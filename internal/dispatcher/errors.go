package dispatcher

import (
	"context"
	"errors"
	"io"
)

// Dispatcher errors. The per-command failures live in execctx.
var (
	// ErrDuplicateCommand indicates two table entries share a key.
	ErrDuplicateCommand = errors.New("dispatcher: duplicate command code")

	// ErrMissingDependency indicates a required collaborator is nil.
	ErrMissingDependency = errors.New("dispatcher: missing dependency")

	// ErrRecursion indicates ":normal" or "@" nested too deeply.
	ErrRecursion = errors.New("dispatcher: recursive command too deep")

	// ErrPanic is recorded when a command panicked and was recovered.
	ErrPanic = errors.New("dispatcher: command panicked")
)

// isInputError reports whether err came from the key source rather than
// from the command. Such errors end the dispatch loop.
func isInputError(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
