package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// CrisisEventStore implements storage.CrisisEventStore using PostgreSQL.
type CrisisEventStore struct {
	pool *Pool
}

// NewCrisisEventStore creates a new CrisisEventStore.
func NewCrisisEventStore(pool *Pool) *CrisisEventStore {
	return &CrisisEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CrisisEventStore = (*CrisisEventStore)(nil)

// Insert adds a new crisis event. Returns ErrDuplicateKey if crisis_id exists.
func (s *CrisisEventStore) Insert(ctx context.Context, e *domain.CrisisEvent) error {
	query := `
		INSERT INTO crisis_events (
			crisis_id, token_address, crisis_date, window_start, window_end, crisis_name
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		e.CrisisID,
		domain.NormalizeAddress(e.TokenAddress),
		e.CrisisDate,
		e.WindowStart,
		e.WindowEnd,
		e.CrisisName,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert crisis event: %w", err)
	}
	return nil
}

// GetByID retrieves a crisis by its ID. Returns ErrNotFound if not exists.
func (s *CrisisEventStore) GetByID(ctx context.Context, crisisID string) (*domain.CrisisEvent, error) {
	query := `
		SELECT crisis_id, token_address, crisis_date, window_start, window_end, crisis_name
		FROM crisis_events
		WHERE crisis_id = $1
	`

	row := s.pool.QueryRow(ctx, query, crisisID)
	e, err := scanCrisisEvent(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get crisis event by id: %w", err)
	}
	return e, nil
}

// GetAll retrieves every crisis event, ordered by crisis_date ASC.
func (s *CrisisEventStore) GetAll(ctx context.Context) ([]*domain.CrisisEvent, error) {
	query := `
		SELECT crisis_id, token_address, crisis_date, window_start, window_end, crisis_name
		FROM crisis_events
		ORDER BY crisis_date ASC, crisis_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all crisis events: %w", err)
	}
	defer rows.Close()

	var events []*domain.CrisisEvent
	for rows.Next() {
		e, err := scanCrisisEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan crisis event row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crisis event rows: %w", err)
	}

	return events, nil
}

// scanCrisisEvent scans a single row into a CrisisEvent.
func scanCrisisEvent(row pgx.Row) (*domain.CrisisEvent, error) {
	var e domain.CrisisEvent

	err := row.Scan(
		&e.CrisisID,
		&e.TokenAddress,
		&e.CrisisDate,
		&e.WindowStart,
		&e.WindowEnd,
		&e.CrisisName,
	)
	if err != nil {
		return nil, err
	}

	return &e, nil
}
