package storage

import (
	"context"
	"time"

	"phoenix-flipper/internal/domain"
)

// DefaultSwapLogLimit caps a single swap-log fetch. One crisis window on
// a busy pool rarely exceeds this; pipelines warn when they hit it.
const DefaultSwapLogLimit = 1_000_000

// CrisisEventStore provides access to the crisis_events dimension table.
type CrisisEventStore interface {
	// Insert adds a new crisis event. Returns ErrDuplicateKey if crisis_id exists.
	Insert(ctx context.Context, e *domain.CrisisEvent) error

	// GetByID retrieves a crisis by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, crisisID string) (*domain.CrisisEvent, error)

	// GetAll retrieves every crisis event, ordered by crisis_date ASC.
	GetAll(ctx context.Context) ([]*domain.CrisisEvent, error)
}

// DexPoolStore provides access to the dex_pools dimension table.
type DexPoolStore interface {
	// Insert adds a new pool. Returns ErrDuplicateKey if pool_address exists.
	Insert(ctx context.Context, p *domain.DexPool) error

	// GetAll retrieves every pool, ordered by pool_address ASC.
	GetAll(ctx context.Context) ([]*domain.DexPool, error)
}

// PoolLinkStore joins dex pools against crisis events.
type PoolLinkStore interface {
	// Links returns one link per (pool, crisis) pair where the crisis
	// token is one side of the pool. A pool trading two crisis tokens
	// appears once per crisis.
	Links(ctx context.Context) ([]*domain.PoolCrisisLink, error)
}

// SwapLogStore provides access to raw swap event logs.
type SwapLogStore interface {
	// InsertBulk adds multiple logs. Fails the entire batch on error.
	InsertBulk(ctx context.Context, logs []*domain.SwapLogRecord) error

	// GetByPools retrieves swap-topic logs emitted by any of the pools
	// with block timestamps in [start, end], newest first, capped at
	// limit rows (DefaultSwapLogLimit when limit <= 0).
	GetByPools(ctx context.Context, pools []string, start, end time.Time, limit int) ([]*domain.SwapLogRecord, error)
}

// PriceHistoryStore provides access to daily token prices.
type PriceHistoryStore interface {
	// InsertBulk adds multiple samples. Fails the entire batch on error.
	InsertBulk(ctx context.Context, samples []*domain.PriceSample) error

	// GetByTokens retrieves all samples for the tokens, ordered by
	// token_address ASC then price_date ASC.
	GetByTokens(ctx context.Context, tokens []string) ([]*domain.PriceSample, error)
}

// BuyerStore provides access to the crisis_buyers output table.
type BuyerStore interface {
	// Overwrite replaces the table contents with rows. An empty slice
	// leaves an empty table.
	Overwrite(ctx context.Context, rows []*domain.BuyerRow) error

	// GetAll retrieves every row, ordered by crisis_id ASC then
	// first_buy_timestamp DESC.
	GetAll(ctx context.Context) ([]*domain.BuyerRow, error)
}

// FlipperStore provides access to the profitable_flippers output table.
type FlipperStore interface {
	// Overwrite replaces the table contents with rows.
	Overwrite(ctx context.Context, rows []*domain.FlipResult) error

	// GetAll retrieves every row, ordered by estimated_profit_pct DESC.
	GetAll(ctx context.Context) ([]*domain.FlipResult, error)
}
