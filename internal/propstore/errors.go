package propstore

import "errors"

// Domain errors for the propstore package.
var (
	// ErrNotFound is returned when a property key has never been set.
	ErrNotFound = errors.New("propstore: not found")
)
