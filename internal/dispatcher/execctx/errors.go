package execctx

import "errors"

// Dispatch errors. None of them is fatal: the dispatcher clears the
// pending operator, beeps and returns to waiting for the next command.
var (
	// ErrUnknownCommand indicates the key is not bound to any command.
	ErrUnknownCommand = errors.New("dispatch: unknown command")

	// ErrForbidden indicates the command is not allowed while a
	// sub-editor holds input or the buffer is locked.
	ErrForbidden = errors.New("dispatch: command not allowed here")

	// ErrMotionFailed indicates the motion could not be completed.
	ErrMotionFailed = errors.New("dispatch: motion failed")

	// ErrEmptyRegion indicates the operator was applied to an empty span
	// while empty spans are configured to be an error.
	ErrEmptyRegion = errors.New("dispatch: empty region")

	// ErrNotModifiable indicates the buffer refuses changes.
	ErrNotModifiable = errors.New("dispatch: buffer is not modifiable")

	// ErrAllocation indicates an intermediate buffer could not be built,
	// for example when the redo buffer is full.
	ErrAllocation = errors.New("dispatch: out of buffer space")

	// ErrNoOperatorFunc indicates "g@" was used with no operator function.
	ErrNoOperatorFunc = errors.New("dispatch: operatorfunc is empty")

	// ErrCmdlineAborted indicates the command line was left with Esc.
	ErrCmdlineAborted = errors.New("dispatch: command line aborted")

	// ErrQuit is returned by the dispatcher when a quit command ran.
	ErrQuit = errors.New("dispatch: quit")
)
