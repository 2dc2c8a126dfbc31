package plugin

import "errors"

// ErrNotFound is returned when no script has the requested name.
var ErrNotFound = errors.New("plugin: script not found")
