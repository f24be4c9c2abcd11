package storage

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/scid-pd-engine/internal/domain"
)

// MemoryStore keeps profiles in process memory. Stored profiles are encoded copies, so
// callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]storedProfile
}

type storedProfile struct {
	startedAt time.Time
	data      []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]storedProfile)}
}

// SaveProfile stores or replaces a finalized profile.
func (s *MemoryStore) SaveProfile(_ context.Context, profile *domain.Profile) error {
	if err := checkSavable(profile); err != nil {
		return err
	}
	data, err := marshalProfile(profile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = storedProfile{startedAt: profile.StartedAt, data: data}
	return nil
}

// GetProfile retrieves a profile by id.
func (s *MemoryStore) GetProfile(_ context.Context, id string) (*domain.Profile, error) {
	s.mu.RLock()
	stored, ok := s.profiles[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return unmarshalProfile(stored.data)
}

// ListProfiles returns profiles, most recently started first.
func (s *MemoryStore) ListProfiles(_ context.Context, limit, offset int) ([]*domain.Profile, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.profiles[ids[i]], s.profiles[ids[j]]
		if !a.startedAt.Equal(b.startedAt) {
			return a.startedAt.After(b.startedAt)
		}
		return ids[i] < ids[j]
	})

	result := []*domain.Profile{}
	for i := offset; i < len(ids) && len(result) < limit; i++ {
		profile, err := unmarshalProfile(s.profiles[ids[i]].data)
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		result = append(result, profile)
	}
	s.mu.RUnlock()
	return result, nil
}

// CountProfiles returns the number of stored profiles.
func (s *MemoryStore) CountProfiles(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles), nil
}

// DeleteProfile removes a profile by id.
func (s *MemoryStore) DeleteProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return notFound(id)
	}
	delete(s.profiles, id)
	return nil
}

// ExportJSON exports all profiles to a JSON writer.
func (s *MemoryStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	return exportJSON(ctx, s, writer, time.Now())
}

// ImportJSON imports profiles from a JSON reader.
func (s *MemoryStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	return importJSON(ctx, s, reader)
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
