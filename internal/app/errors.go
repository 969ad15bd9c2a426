package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoMeasurement  = errors.New("no measurement for device")
	ErrUnknownDevice  = errors.New("unknown device")
	ErrNotStarted     = errors.New("service not started")
	ErrQueueSaturated = errors.New("frame queue saturated")
)
