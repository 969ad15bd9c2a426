// Package registry stores user profiles and validates their bounds.
package registry

import "time"

// Option applies a configuration option to the in-memory store.
type Option func(*memStore)

// WithMaxProfiles sets the maximum number of profiles the store accepts.
// Zero or negative disables the cap.
func WithMaxProfiles(max int) Option {
	return func(s *memStore) {
		s.maxProfiles = max
	}
}

// WithClock overrides the time source used for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *memStore) {
		if now != nil {
			s.now = now
		}
	}
}
