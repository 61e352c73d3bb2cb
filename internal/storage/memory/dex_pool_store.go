package memory

import (
	"context"
	"sort"
	"sync"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// DexPoolStore is an in-memory implementation of storage.DexPoolStore.
type DexPoolStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DexPool // keyed by normalized pool_address
}

// NewDexPoolStore creates a new in-memory pool store.
func NewDexPoolStore() *DexPoolStore {
	return &DexPoolStore{
		data: make(map[string]*domain.DexPool),
	}
}

var _ storage.DexPoolStore = (*DexPoolStore)(nil)

// Insert adds a new pool. Returns ErrDuplicateKey if pool_address exists.
func (s *DexPoolStore) Insert(_ context.Context, p *domain.DexPool) error {
	if p == nil || p.PoolAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.NormalizeAddress(p.PoolAddress)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	c := *p
	s.data[key] = &c
	return nil
}

// GetAll retrieves every pool, ordered by pool_address ASC.
func (s *DexPoolStore) GetAll(_ context.Context) ([]*domain.DexPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DexPool
	for _, p := range s.data {
		c := *p
		result = append(result, &c)
	}

	sort.Slice(result, func(i, j int) bool {
		return domain.NormalizeAddress(result[i].PoolAddress) < domain.NormalizeAddress(result[j].PoolAddress)
	})

	return result, nil
}
