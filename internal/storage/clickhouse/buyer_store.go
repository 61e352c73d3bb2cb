package clickhouse

import (
	"context"
	"fmt"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// BuyerStore implements storage.BuyerStore using ClickHouse.
type BuyerStore struct {
	conn *Conn
}

// NewBuyerStore creates a new BuyerStore.
func NewBuyerStore(conn *Conn) *BuyerStore {
	return &BuyerStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BuyerStore = (*BuyerStore)(nil)

// Overwrite replaces the table contents with rows. Truncate plus a fresh
// batch insert gives overwrite semantics; a failed insert leaves the
// table empty rather than mixed, which the next run repairs.
func (s *BuyerStore) Overwrite(ctx context.Context, rows []*domain.BuyerRow) error {
	if err := s.conn.Exec(ctx, `TRUNCATE TABLE crisis_buyers`); err != nil {
		return fmt.Errorf("truncate crisis_buyers: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO crisis_buyers (
			crisis_id, wallet_address, token_address, first_buy_timestamp,
			first_buy_price, total_amount_bought, total_usd_spent, num_transactions
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
			r.FirstBuyTimestamp,
			r.FirstBuyPrice,
			r.TotalAmountBought,
			r.TotalUSDSpent,
			uint32(r.NumTransactions),
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

// GetAll retrieves every row, ordered by crisis_id ASC then
// first_buy_timestamp DESC.
func (s *BuyerStore) GetAll(ctx context.Context) ([]*domain.BuyerRow, error) {
	query := `
		SELECT crisis_id, wallet_address, token_address, first_buy_timestamp,
		       first_buy_price, total_amount_bought, total_usd_spent, num_transactions
		FROM crisis_buyers
		ORDER BY crisis_id ASC, first_buy_timestamp DESC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query crisis buyers: %w", err)
	}
	defer rows.Close()

	var buyers []*domain.BuyerRow
	for rows.Next() {
		var b domain.BuyerRow
		var numTx uint32

		err := rows.Scan(
			&b.CrisisID,
			&b.WalletAddress,
			&b.TokenAddress,
			&b.FirstBuyTimestamp,
			&b.FirstBuyPrice,
			&b.TotalAmountBought,
			&b.TotalUSDSpent,
			&numTx,
		)
		if err != nil {
			return nil, fmt.Errorf("scan crisis buyer row: %w", err)
		}

		b.NumTransactions = int(numTx)
		buyers = append(buyers, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crisis buyer rows: %w", err)
	}

	return buyers, nil
}
