package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// DexPoolStore implements storage.DexPoolStore using PostgreSQL.
type DexPoolStore struct {
	pool *Pool
}

// NewDexPoolStore creates a new DexPoolStore.
func NewDexPoolStore(pool *Pool) *DexPoolStore {
	return &DexPoolStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DexPoolStore = (*DexPoolStore)(nil)

// Insert adds a new pool. Returns ErrDuplicateKey if pool_address exists.
func (s *DexPoolStore) Insert(ctx context.Context, p *domain.DexPool) error {
	query := `
		INSERT INTO dex_pools (
			pool_address, token0_address, token1_address, dex_protocol
		) VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		domain.NormalizeAddress(p.PoolAddress),
		domain.NormalizeAddress(p.Token0Address),
		domain.NormalizeAddress(p.Token1Address),
		p.DexProtocol,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert dex pool: %w", err)
	}
	return nil
}

// GetAll retrieves every pool, ordered by pool_address ASC.
func (s *DexPoolStore) GetAll(ctx context.Context) ([]*domain.DexPool, error) {
	query := `
		SELECT pool_address, token0_address, token1_address, dex_protocol
		FROM dex_pools
		ORDER BY pool_address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all dex pools: %w", err)
	}
	defer rows.Close()

	return scanDexPools(rows)
}

// scanDexPools scans multiple rows into a slice of DexPool.
func scanDexPools(rows pgx.Rows) ([]*domain.DexPool, error) {
	var pools []*domain.DexPool

	for rows.Next() {
		var p domain.DexPool
		err := rows.Scan(
			&p.PoolAddress,
			&p.Token0Address,
			&p.Token1Address,
			&p.DexProtocol,
		)
		if err != nil {
			return nil, fmt.Errorf("scan dex pool row: %w", err)
		}
		pools = append(pools, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dex pool rows: %w", err)
	}

	return pools, nil
}
