// Package registry stores user profiles and validates their bounds.
// Profiles are always stored metric; display units only affect how the
// API layer re-expresses values on the way out.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
)

// Validation bounds. Anything outside is rejected, matching what the
// companion app accepts.
const (
	heightMinCm = 50.0
	heightMaxCm = 250.0
	ageMin      = 1
	ageMax      = 99

	defaultMaxProfiles = 8
)

// Store provides read/write access to the profile set.
type Store interface {
	// Add validates and stores a new profile, assigning its ID.
	// Returns ErrRegistryFull when the profile cap is reached.
	Add(ctx context.Context, p model.Profile) (model.Profile, error)

	// Update replaces the profile with the given ID wholesale.
	// Returns ErrProfileNotFound if the ID is unknown.
	Update(ctx context.Context, p model.Profile) (model.Profile, error)

	// Remove deletes a profile. Returns ErrProfileNotFound if unknown.
	Remove(ctx context.Context, id string) error

	// Get returns the profile with the given ID.
	Get(ctx context.Context, id string) (model.Profile, error)

	// List returns all profiles in insertion order.
	List(ctx context.Context) []model.Profile

	// Count returns the number of stored profiles.
	Count(ctx context.Context) int
}

// memStore is an in-memory Store guarded by a RWMutex. Reads are far
// more frequent than writes since every final measurement lists the
// profile set for routing.
type memStore struct {
	mu          sync.RWMutex
	byID        map[string]int
	profiles    []model.Profile
	maxProfiles int
	now         func() time.Time
}

// NewMemStore creates an in-memory profile store with configuration options.
func NewMemStore(opts ...Option) Store {
	s := &memStore{
		maxProfiles: defaultMaxProfiles,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.byID = make(map[string]int)
	return s
}

func (s *memStore) Add(ctx context.Context, p model.Profile) (model.Profile, error) {
	if err := validate(p); err != nil {
		return model.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxProfiles > 0 && len(s.profiles) >= s.maxProfiles {
		return model.Profile{}, ErrRegistryFull
	}

	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	s.byID[p.ID] = len(s.profiles)
	s.profiles = append(s.profiles, p)
	return p, nil
}

func (s *memStore) Update(ctx context.Context, p model.Profile) (model.Profile, error) {
	if err := validate(p); err != nil {
		return model.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.byID[p.ID]
	if !exists {
		return model.Profile{}, ErrProfileNotFound
	}

	// Whole-profile replace, keeping the original creation time.
	p.CreatedAt = s.profiles[idx].CreatedAt
	s.profiles[idx] = p
	return p, nil
}

func (s *memStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.byID[id]
	if !exists {
		return ErrProfileNotFound
	}

	delete(s.byID, id)
	s.profiles = append(s.profiles[:idx], s.profiles[idx+1:]...)
	for i := idx; i < len(s.profiles); i++ {
		s.byID[s.profiles[i].ID] = i
	}
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.byID[id]
	if !exists {
		return model.Profile{}, ErrProfileNotFound
	}
	return s.profiles[idx], nil
}

func (s *memStore) List(ctx context.Context) []model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

func (s *memStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

func validate(p model.Profile) error {
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.Age < ageMin || p.Age > ageMax {
		return ErrInvalidAge
	}
	if p.HeightCm < heightMinCm || p.HeightCm > heightMaxCm {
		return ErrInvalidHeight
	}
	if p.WeightMinKg <= 0 || p.WeightMaxKg < p.WeightMinKg {
		return ErrInvalidRange
	}
	return nil
}
