package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/storage"
)

// AllowListStore is an in-memory implementation of storage.AllowListStore.
type AllowListStore struct {
	mu     sync.RWMutex
	byMint map[string]domain.EstablishedToken
	now    func() time.Time
}

// NewAllowListStore creates a store seeded with tokens. Duplicate seeds are ignored.
func NewAllowListStore(tokens ...domain.EstablishedToken) *AllowListStore {
	s := &AllowListStore{
		byMint: make(map[string]domain.EstablishedToken, len(tokens)),
		now:    time.Now,
	}
	for _, t := range tokens {
		if t.Mint == "" {
			continue
		}
		if _, exists := s.byMint[t.Mint]; exists {
			continue
		}
		s.byMint[t.Mint] = s.stamp(t)
	}
	return s
}

// Contains reports whether mint is allow-listed.
func (s *AllowListStore) Contains(_ context.Context, mint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.byMint[mint]
	return exists, nil
}

// List returns all entries ordered by mint.
func (s *AllowListStore) List(_ context.Context) ([]domain.EstablishedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.EstablishedToken, 0, len(s.byMint))
	for _, t := range s.byMint {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Mint < result[j].Mint
	})
	return result, nil
}

// Add inserts an entry. Returns ErrDuplicateKey if mint already exists.
func (s *AllowListStore) Add(_ context.Context, t domain.EstablishedToken) error {
	if t.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byMint[t.Mint]; exists {
		return storage.ErrDuplicateKey
	}
	s.byMint[t.Mint] = s.stamp(t)
	return nil
}

// Get retrieves one entry. Returns ErrNotFound if mint is not listed.
func (s *AllowListStore) Get(_ context.Context, mint string) (domain.EstablishedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.byMint[mint]
	if !exists {
		return domain.EstablishedToken{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *AllowListStore) stamp(t domain.EstablishedToken) domain.EstablishedToken {
	if t.AddedAt == 0 {
		t.AddedAt = s.now().UnixMilli()
	}
	return t
}

var _ storage.AllowListStore = (*AllowListStore)(nil)
