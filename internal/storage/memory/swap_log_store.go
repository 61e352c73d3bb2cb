package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// SwapLogStore is an in-memory implementation of storage.SwapLogStore.
type SwapLogStore struct {
	mu   sync.RWMutex
	data []*domain.SwapLogRecord
}

// NewSwapLogStore creates a new in-memory swap log store.
func NewSwapLogStore() *SwapLogStore {
	return &SwapLogStore{}
}

var _ storage.SwapLogStore = (*SwapLogStore)(nil)

// InsertBulk adds multiple logs. Fails the entire batch on error.
func (s *SwapLogStore) InsertBulk(_ context.Context, logs []*domain.SwapLogRecord) error {
	if len(logs) == 0 {
		return nil
	}

	for _, l := range logs {
		if l == nil || l.PoolAddress == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range logs {
		c := *l
		c.Topics = append([]string(nil), l.Topics...)
		s.data = append(s.data, &c)
	}

	return nil
}

// GetByPools retrieves swap-topic logs for the pools within [start, end],
// newest first, capped at limit rows.
func (s *SwapLogStore) GetByPools(_ context.Context, pools []string, start, end time.Time, limit int) ([]*domain.SwapLogRecord, error) {
	if limit <= 0 {
		limit = storage.DefaultSwapLogLimit
	}

	wanted := make(map[string]struct{}, len(pools))
	for _, p := range pools {
		wanted[domain.NormalizeAddress(p)] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SwapLogRecord
	for _, l := range s.data {
		if _, ok := wanted[domain.NormalizeAddress(l.PoolAddress)]; !ok {
			continue
		}
		if len(l.Topics) == 0 || domain.NormalizeAddress(l.Topics[0]) != domain.SwapEventTopic {
			continue
		}
		if l.BlockTimestamp.Before(start) || l.BlockTimestamp.After(end) {
			continue
		}

		c := *l
		c.Topics = append([]string(nil), l.Topics...)
		result = append(result, &c)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].BlockTimestamp.After(result[j].BlockTimestamp)
	})

	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}
