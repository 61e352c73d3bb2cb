package clickhouse

import (
	"context"
	"fmt"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// FlipperStore implements storage.FlipperStore using ClickHouse.
type FlipperStore struct {
	conn *Conn
}

// NewFlipperStore creates a new FlipperStore.
func NewFlipperStore(conn *Conn) *FlipperStore {
	return &FlipperStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FlipperStore = (*FlipperStore)(nil)

// Overwrite replaces the table contents with rows.
func (s *FlipperStore) Overwrite(ctx context.Context, rows []*domain.FlipResult) error {
	if err := s.conn.Exec(ctx, `TRUNCATE TABLE profitable_flippers`); err != nil {
		return fmt.Errorf("truncate profitable_flippers: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO profitable_flippers (
			crisis_id, wallet_address, token_address, buy_price, peak_recovery_price,
			estimated_profit_pct, estimated_profit_usd, buy_timestamp, peak_recovery_timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.CrisisID,
			r.WalletAddress,
			r.TokenAddress,
			r.BuyPrice,
			r.PeakRecoveryPrice,
			r.EstimatedProfitPct,
			r.EstimatedProfitUSD,
			r.BuyTimestamp,
			r.PeakRecoveryTimestamp,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetAll retrieves every row, ordered by estimated_profit_pct DESC.
func (s *FlipperStore) GetAll(ctx context.Context) ([]*domain.FlipResult, error) {
	query := `
		SELECT crisis_id, wallet_address, token_address, buy_price, peak_recovery_price,
		       estimated_profit_pct, estimated_profit_usd, buy_timestamp, peak_recovery_timestamp
		FROM profitable_flippers
		ORDER BY estimated_profit_pct DESC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query profitable flippers: %w", err)
	}
	defer rows.Close()

	var flips []*domain.FlipResult
	for rows.Next() {
		var f domain.FlipResult

		err := rows.Scan(
			&f.CrisisID,
			&f.WalletAddress,
			&f.TokenAddress,
			&f.BuyPrice,
			&f.PeakRecoveryPrice,
			&f.EstimatedProfitPct,
			&f.EstimatedProfitUSD,
			&f.BuyTimestamp,
			&f.PeakRecoveryTimestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan profitable flipper row: %w", err)
		}

		flips = append(flips, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profitable flipper rows: %w", err)
	}

	return flips, nil
}
