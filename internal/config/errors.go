package config

import "errors"

// Errors returned by configuration operations.
var (
	// ErrUnknownOption indicates an option name that does not exist.
	ErrUnknownOption = errors.New("config: unknown option")

	// ErrInvalidValue indicates a value of the wrong type or out of range.
	ErrInvalidValue = errors.New("config: invalid value")

	// ErrInvalidArgument indicates a malformed :set argument.
	ErrInvalidArgument = errors.New("config: invalid argument")
)
