// Package dedupe suppresses repeated identical frames. Scales rebroadcast
// the same advertisement payload many times per second, so the pipeline
// only needs to process a payload once until it changes.
package dedupe

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// Suppressor tracks the last payload seen per device.
type Suppressor interface {
	// SeenAndRecord atomically checks whether payload matches the last
	// frame recorded for deviceID and records it if not. Returns true
	// when the payload is a repeat and should be dropped.
	SeenAndRecord(ctx context.Context, deviceID string, payload []byte) bool

	// Forget drops the recorded payload for deviceID so the next frame
	// is always processed. Called when a device session ends.
	Forget(ctx context.Context, deviceID string)

	Size() int64
}

// inMemorySuppressor keeps one 64-bit payload digest per device. Devices
// are evicted in insertion order once maxDevices is exceeded.
type inMemorySuppressor struct {
	mu         sync.Mutex
	last       map[string]uint64
	order      []string
	maxDevices int
	size       atomic.Int64
}

// NewInMemorySuppressor creates a suppressor with configuration options.
func NewInMemorySuppressor(opts ...Option) Suppressor {
	s := &inMemorySuppressor{
		maxDevices: 256, // default device cap
	}

	for _, opt := range opts {
		opt(s)
	}

	s.last = make(map[string]uint64)
	return s
}

func (s *inMemorySuppressor) SeenAndRecord(ctx context.Context, deviceID string, payload []byte) bool {
	digest := digest(payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, exists := s.last[deviceID]; exists {
		if prev == digest {
			return true // repeat of the last frame
		}
		s.last[deviceID] = digest
		return false
	}

	if s.maxDevices > 0 && len(s.last) >= s.maxDevices {
		s.evictOldest()
	}

	s.last[deviceID] = digest
	s.order = append(s.order, deviceID)
	s.size.Add(1)
	return false
}

func (s *inMemorySuppressor) Forget(ctx context.Context, deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.last[deviceID]; !exists {
		return
	}
	delete(s.last, deviceID)
	for i, id := range s.order {
		if id == deviceID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.size.Add(-1)
}

// Size returns the number of devices currently tracked.
func (s *inMemorySuppressor) Size() int64 {
	return s.size.Load()
}

// evictOldest removes the device recorded earliest. Must be called with
// s.mu held.
func (s *inMemorySuppressor) evictOldest() {
	if len(s.order) == 0 {
		return
	}
	oldest := s.order[0]
	s.order = s.order[1:]
	delete(s.last, oldest)
	s.size.Add(-1)
}

func digest(payload []byte) uint64 {
	h := fnv.New64a()
	h.Write(payload)
	return h.Sum64()
}
