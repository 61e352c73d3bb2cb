package clickhouse

import (
	"context"
	"fmt"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// InsertBulk adds multiple samples. Fails the entire batch on error.
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, samples []*domain.PriceSample) error {
	if len(samples) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO token_price_history (token_address, price_date, price_usd)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range samples {
		err = batch.Append(
			domain.NormalizeAddress(p.TokenAddress),
			domain.DayUTC(p.PriceDate),
			p.PriceUSD,
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

// GetByTokens retrieves all samples for the tokens, ordered by
// token_address ASC then price_date ASC.
func (s *PriceHistoryStore) GetByTokens(ctx context.Context, tokens []string) ([]*domain.PriceSample, error) {
	normalized := make([]string, len(tokens))
	for i, t := range tokens {
		normalized[i] = domain.NormalizeAddress(t)
	}

	query := `
		SELECT token_address, price_date, price_usd
		FROM token_price_history
		WHERE token_address IN (?)
		ORDER BY token_address ASC, price_date ASC
	`

	rows, err := s.conn.Query(ctx, query, normalized)
	if err != nil {
		return nil, fmt.Errorf("query price history by tokens: %w", err)
	}
	defer rows.Close()

	var samples []*domain.PriceSample
	for rows.Next() {
		var p domain.PriceSample
		if err := rows.Scan(&p.TokenAddress, &p.PriceDate, &p.PriceUSD); err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}
		samples = append(samples, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}

	return samples, nil
}
