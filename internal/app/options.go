// Package service provides the core ingest service.
package service

import (
	"time"

	"github.com/lyntoo/ha-eufylife-ble/internal/adapters/registry"
	"github.com/lyntoo/ha-eufylife-ble/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithShardCount sets the number of dispatcher shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithQueueSize sets the per-shard frame queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.shardCapacity = size
		}
	}
}

// WithMaxProfiles caps the profile registry.
func WithMaxProfiles(max int) Option {
	return func(s *Service) {
		if max > 0 {
			s.maxProfiles = max
		}
	}
}

// WithProfileStore injects a pre-built profile store.
func WithProfileStore(store registry.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.profiles = store
		}
	}
}

// WithDedupeDevices sets how many devices the frame suppressor tracks.
func WithDedupeDevices(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeDevices = n
		}
	}
}

// WithStabilityThreshold sets how many consecutive in-band readings a
// session needs before a disconnect can finalize it.
func WithStabilityThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.stabilityThreshold = n
		}
	}
}

// WithStabilityEpsilon sets the weight band, in kilograms, within which
// consecutive readings count as stable.
func WithStabilityEpsilon(kg float64) Option {
	return func(s *Service) {
		if kg > 0 {
			s.stabilityEpsilonKg = kg
		}
	}
}

// WithSessionTimeout sets how long a session may sit idle before the
// janitor closes it.
func WithSessionTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTimeout = d
		}
	}
}

// WithDevices maps device IDs to their scale model numbers.
func WithDevices(devices map[string]string) Option {
	return func(s *Service) {
		if devices != nil {
			s.devices = devices
		}
	}
}

// WithDefaultModel sets the model assumed for unconfigured devices.
func WithDefaultModel(model string) Option {
	return func(s *Service) {
		if model != "" {
			s.defaultModel = model
		}
	}
}

// WithPublisher attaches a sink for live and final measurement events.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
