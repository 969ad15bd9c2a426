// Package dedupe suppresses repeated identical frames.
package dedupe

// Option applies a configuration option to the in-memory suppressor.
type Option func(*inMemorySuppressor)

// WithMaxDevices sets the maximum number of devices tracked at once.
// If maxDevices > 0: bounded, oldest device evicted first.
// If maxDevices <= 0: unbounded.
func WithMaxDevices(maxDevices int) Option {
	return func(s *inMemorySuppressor) {
		s.maxDevices = maxDevices
	}
}
