package postgres

import (
	"context"
	"fmt"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// PoolLinkStore implements storage.PoolLinkStore using PostgreSQL.
// The join happens in the database so the two dimension tables are never
// pulled into memory separately.
type PoolLinkStore struct {
	pool *Pool
}

// NewPoolLinkStore creates a new PoolLinkStore.
func NewPoolLinkStore(pool *Pool) *PoolLinkStore {
	return &PoolLinkStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PoolLinkStore = (*PoolLinkStore)(nil)

// Links returns one link per (pool, crisis) pair where the crisis token
// is one side of the pool.
func (s *PoolLinkStore) Links(ctx context.Context) ([]*domain.PoolCrisisLink, error) {
	query := `
		SELECT
			p.pool_address, p.token0_address, p.token1_address, p.dex_protocol,
			c.crisis_id, c.crisis_name, c.token_address,
			c.window_start, c.window_end
		FROM dex_pools p
		JOIN crisis_events c
			ON c.token_address = p.token0_address
			OR c.token_address = p.token1_address
		ORDER BY c.crisis_id ASC, p.pool_address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pool crisis links: %w", err)
	}
	defer rows.Close()

	var links []*domain.PoolCrisisLink
	for rows.Next() {
		var l domain.PoolCrisisLink
		err := rows.Scan(
			&l.PoolAddress,
			&l.Token0Address,
			&l.Token1Address,
			&l.DexProtocol,
			&l.CrisisID,
			&l.CrisisName,
			&l.CrisisToken,
			&l.WindowStart,
			&l.WindowEnd,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pool crisis link row: %w", err)
		}
		links = append(links, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool crisis link rows: %w", err)
	}

	return links, nil
}
