package app

import (
	"errors"
	"fmt"
)

// Editor errors.
var (
	// ErrInitialization indicates an editor could not be assembled.
	ErrInitialization = errors.New("initialization failed")

	// ErrNoFile indicates ":w" without a file name on an unnamed buffer.
	ErrNoFile = errors.New("no file name")

	// ErrClosed indicates the editor was used after Close.
	ErrClosed = errors.New("editor closed")
)

// InitError reports the component that failed while the editor was
// being assembled.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initializing %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Is makes every InitError match ErrInitialization.
func (e *InitError) Is(target error) bool {
	return target == ErrInitialization
}

// FileError is a failure reading or writing a file.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
