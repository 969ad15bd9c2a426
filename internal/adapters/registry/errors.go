package registry

import "errors"

// Sentinel kinds for profile registry errors.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrRegistryFull    = errors.New("profile registry full")
	ErrInvalidRange    = errors.New("invalid weight range")
	ErrInvalidHeight   = errors.New("invalid height")
	ErrInvalidAge      = errors.New("invalid age")
	ErrInvalidName     = errors.New("invalid profile name")
)
