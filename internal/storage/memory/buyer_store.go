package memory

import (
	"context"
	"sort"
	"sync"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// BuyerStore is an in-memory implementation of storage.BuyerStore.
type BuyerStore struct {
	mu   sync.RWMutex
	data []*domain.BuyerRow
}

// NewBuyerStore creates a new in-memory buyer store.
func NewBuyerStore() *BuyerStore {
	return &BuyerStore{}
}

var _ storage.BuyerStore = (*BuyerStore)(nil)

// Overwrite replaces the table contents with rows.
func (s *BuyerStore) Overwrite(_ context.Context, rows []*domain.BuyerRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]*domain.BuyerRow, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			return storage.ErrInvalidInput
		}
		c := *r
		s.data = append(s.data, &c)
	}

	return nil
}

// GetAll retrieves every row, ordered by crisis_id ASC then
// first_buy_timestamp DESC.
func (s *BuyerStore) GetAll(_ context.Context) ([]*domain.BuyerRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BuyerRow, 0, len(s.data))
	for _, r := range s.data {
		c := *r
		result = append(result, &c)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CrisisID != result[j].CrisisID {
			return result[i].CrisisID < result[j].CrisisID
		}
		return result[i].FirstBuyTimestamp.After(result[j].FirstBuyTimestamp)
	})

	return result, nil
}
