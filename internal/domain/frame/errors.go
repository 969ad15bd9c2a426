package frame

import "errors"

// Sentinel kinds for decode failures. Decode failures are reported and
// the frame dropped; the session keeps waiting for the next frame.
var (
	ErrFrameTooShort = errors.New("frame too short")
	ErrBadHeader     = errors.New("frame header mismatch")
	ErrUnknownModel  = errors.New("unknown device model")
)
