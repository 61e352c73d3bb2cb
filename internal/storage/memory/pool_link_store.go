package memory

import (
	"context"
	"sort"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// PoolLinkStore joins the in-memory crisis and pool stores.
type PoolLinkStore struct {
	crises *CrisisEventStore
	pools  *DexPoolStore
}

// NewPoolLinkStore creates a link store over the two dimension stores.
func NewPoolLinkStore(crises *CrisisEventStore, pools *DexPoolStore) *PoolLinkStore {
	return &PoolLinkStore{crises: crises, pools: pools}
}

var _ storage.PoolLinkStore = (*PoolLinkStore)(nil)

// Links returns one link per (pool, crisis) pair where the crisis token
// is one side of the pool.
func (s *PoolLinkStore) Links(ctx context.Context) ([]*domain.PoolCrisisLink, error) {
	crises, err := s.crises.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	pools, err := s.pools.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var links []*domain.PoolCrisisLink
	for _, c := range crises {
		token := domain.NormalizeAddress(c.TokenAddress)
		for _, p := range pools {
			t0 := domain.NormalizeAddress(p.Token0Address)
			t1 := domain.NormalizeAddress(p.Token1Address)
			if token != t0 && token != t1 {
				continue
			}

			links = append(links, &domain.PoolCrisisLink{
				PoolAddress:   domain.NormalizeAddress(p.PoolAddress),
				Token0Address: t0,
				Token1Address: t1,
				DexProtocol:   p.DexProtocol,
				CrisisID:      c.CrisisID,
				CrisisName:    c.CrisisName,
				CrisisToken:   token,
				WindowStart:   c.WindowStart,
				WindowEnd:     c.WindowEnd,
			})
		}
	}

	sort.Slice(links, func(i, j int) bool {
		if links[i].CrisisID != links[j].CrisisID {
			return links[i].CrisisID < links[j].CrisisID
		}
		return links[i].PoolAddress < links[j].PoolAddress
	})

	return links, nil
}
