package cmdline

import "errors"

// Command-line errors.
var (
	// ErrNotEditorCommand indicates a command name that is not known.
	ErrNotEditorCommand = errors.New("cmdline: not an editor command")

	// ErrInvalidRange indicates an address outside the buffer or one
	// that cannot be parsed.
	ErrInvalidRange = errors.New("cmdline: invalid range")

	// ErrNoRange indicates a range given to a command that takes none.
	ErrNoRange = errors.New("cmdline: no range allowed")

	// ErrTrailing indicates text after a complete command.
	ErrTrailing = errors.New("cmdline: trailing characters")

	// ErrNoPreviousSubstitute is returned by ":&" before any ":s".
	ErrNoPreviousSubstitute = errors.New("cmdline: no previous substitute")

	// ErrNoHelp is returned by ":help"; there are no help files.
	ErrNoHelp = errors.New("cmdline: no help available")

	// ErrNoWriter indicates ":w" without a place to write to.
	ErrNoWriter = errors.New("cmdline: no file name")

	// ErrNoEditor indicates a command that needs the editor before one
	// was attached.
	ErrNoEditor = errors.New("cmdline: no editor attached")

	// ErrShell wraps a shell command that failed.
	ErrShell = errors.New("cmdline: shell command failed")
)
