package clickhouse

import (
	"context"
	"fmt"
	"time"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// SwapLogStore implements storage.SwapLogStore using ClickHouse.
type SwapLogStore struct {
	conn *Conn
}

// NewSwapLogStore creates a new SwapLogStore.
func NewSwapLogStore(conn *Conn) *SwapLogStore {
	return &SwapLogStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SwapLogStore = (*SwapLogStore)(nil)

// InsertBulk adds multiple logs. Fails the entire batch on error.
func (s *SwapLogStore) InsertBulk(ctx context.Context, logs []*domain.SwapLogRecord) error {
	if len(logs) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO swap_logs (
			block_timestamp, transaction_hash, log_index, pool_address, topics, data, wallet_address
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, l := range logs {
		err = batch.Append(
			l.BlockTimestamp,
			l.TransactionHash,
			uint32(l.LogIndex),
			domain.NormalizeAddress(l.PoolAddress),
			l.Topics,
			l.Data,
			l.WalletAddress,
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

// GetByPools retrieves swap-topic logs for the pools within [start, end],
// newest first, capped at limit rows.
func (s *SwapLogStore) GetByPools(ctx context.Context, pools []string, start, end time.Time, limit int) ([]*domain.SwapLogRecord, error) {
	if limit <= 0 {
		limit = storage.DefaultSwapLogLimit
	}

	normalized := make([]string, len(pools))
	for i, p := range pools {
		normalized[i] = domain.NormalizeAddress(p)
	}

	query := `
		SELECT block_timestamp, transaction_hash, log_index, pool_address, topics, data, wallet_address
		FROM swap_logs
		WHERE pool_address IN (?)
		  AND topics[1] = ?
		  AND block_timestamp >= ?
		  AND block_timestamp <= ?
		ORDER BY block_timestamp DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, normalized, domain.SwapEventTopic, start, end, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query swap logs by pools: %w", err)
	}
	defer rows.Close()

	return scanSwapLogs(rows)
}

// scanSwapLogs scans multiple rows into a slice of SwapLogRecord.
func scanSwapLogs(rows chRows) ([]*domain.SwapLogRecord, error) {
	var logs []*domain.SwapLogRecord

	for rows.Next() {
		var l domain.SwapLogRecord
		var logIndex uint32

		err := rows.Scan(
			&l.BlockTimestamp,
			&l.TransactionHash,
			&logIndex,
			&l.PoolAddress,
			&l.Topics,
			&l.Data,
			&l.WalletAddress,
		)
		if err != nil {
			return nil, fmt.Errorf("scan swap log row: %w", err)
		}

		l.LogIndex = int(logIndex)
		logs = append(logs, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap log rows: %w", err)
	}

	return logs, nil
}
