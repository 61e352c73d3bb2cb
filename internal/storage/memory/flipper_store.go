package memory

import (
	"context"
	"sort"
	"sync"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// FlipperStore is an in-memory implementation of storage.FlipperStore.
type FlipperStore struct {
	mu   sync.RWMutex
	data []*domain.FlipResult
}

// NewFlipperStore creates a new in-memory flipper store.
func NewFlipperStore() *FlipperStore {
	return &FlipperStore{}
}

var _ storage.FlipperStore = (*FlipperStore)(nil)

// Overwrite replaces the table contents with rows.
func (s *FlipperStore) Overwrite(_ context.Context, rows []*domain.FlipResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]*domain.FlipResult, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			return storage.ErrInvalidInput
		}
		c := *r
		s.data = append(s.data, &c)
	}

	return nil
}

// GetAll retrieves every row, ordered by estimated_profit_pct DESC.
func (s *FlipperStore) GetAll(_ context.Context) ([]*domain.FlipResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.FlipResult, 0, len(s.data))
	for _, r := range s.data {
		c := *r
		result = append(result, &c)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EstimatedProfitPct > result[j].EstimatedProfitPct
	})

	return result, nil
}
