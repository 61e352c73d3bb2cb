package memory

import (
	"context"
	"sort"
	"sync"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data []*domain.PriceSample
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{}
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// InsertBulk adds multiple samples. Fails the entire batch on error.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, samples []*domain.PriceSample) error {
	if len(samples) == 0 {
		return nil
	}

	for _, p := range samples {
		if p == nil || p.TokenAddress == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range samples {
		c := *p
		s.data = append(s.data, &c)
	}

	return nil
}

// GetByTokens retrieves all samples for the tokens, ordered by
// token_address ASC then price_date ASC.
func (s *PriceHistoryStore) GetByTokens(_ context.Context, tokens []string) ([]*domain.PriceSample, error) {
	wanted := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		wanted[domain.NormalizeAddress(t)] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceSample
	for _, p := range s.data {
		if _, ok := wanted[domain.NormalizeAddress(p.TokenAddress)]; !ok {
			continue
		}
		c := *p
		result = append(result, &c)
	}

	sort.Slice(result, func(i, j int) bool {
		ti := domain.NormalizeAddress(result[i].TokenAddress)
		tj := domain.NormalizeAddress(result[j].TokenAddress)
		if ti != tj {
			return ti < tj
		}
		return result[i].PriceDate.Before(result[j].PriceDate)
	})

	return result, nil
}
