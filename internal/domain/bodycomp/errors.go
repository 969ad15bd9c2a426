package bodycomp

import "errors"

// Sentinel kinds for engine errors.
var (
	// ErrInvalidInput means a non-positive height or weight reached
	// the engine. That is a contract violation by the caller, never a
	// recoverable measurement condition.
	ErrInvalidInput = errors.New("invalid formula input")
)
