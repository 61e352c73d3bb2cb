package memory

import (
	"context"
	"sort"
	"sync"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// CrisisEventStore is an in-memory implementation of storage.CrisisEventStore.
type CrisisEventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CrisisEvent // keyed by crisis_id
}

// NewCrisisEventStore creates a new in-memory crisis event store.
func NewCrisisEventStore() *CrisisEventStore {
	return &CrisisEventStore{
		data: make(map[string]*domain.CrisisEvent),
	}
}

var _ storage.CrisisEventStore = (*CrisisEventStore)(nil)

// Insert adds a new crisis event. Returns ErrDuplicateKey if crisis_id exists.
func (s *CrisisEventStore) Insert(_ context.Context, e *domain.CrisisEvent) error {
	if e == nil || e.CrisisID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.CrisisID]; exists {
		return storage.ErrDuplicateKey
	}

	c := *e
	s.data[e.CrisisID] = &c
	return nil
}

// GetByID retrieves a crisis by its ID. Returns ErrNotFound if not exists.
func (s *CrisisEventStore) GetByID(_ context.Context, crisisID string) (*domain.CrisisEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[crisisID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	c := *e
	return &c, nil
}

// GetAll retrieves every crisis event, ordered by crisis_date ASC.
func (s *CrisisEventStore) GetAll(_ context.Context) ([]*domain.CrisisEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CrisisEvent
	for _, e := range s.data {
		c := *e
		result = append(result, &c)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CrisisDate.Equal(result[j].CrisisDate) {
			return result[i].CrisisDate.Before(result[j].CrisisDate)
		}
		return result[i].CrisisID < result[j].CrisisID
	})

	return result, nil
}
