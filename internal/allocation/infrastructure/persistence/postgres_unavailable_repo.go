package persistence

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	sharedPersistence "github.com/taskpilot/taskpilot/internal/shared/infrastructure/persistence"
)

// PostgresUnavailableRepository implements domain.UnavailableRepository on
// PostgreSQL. Clock strings are stored as declared; validation happens in
// the domain when hours are computed.
type PostgresUnavailableRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUnavailableRepository creates a PostgreSQL unavailable-block
// repository.
func NewPostgresUnavailableRepository(pool *pgxpool.Pool) *PostgresUnavailableRepository {
	return &PostgresUnavailableRepository{pool: pool}
}

// Blocks lists a person's blocks with dates in [from, to].
func (r *PostgresUnavailableRepository) Blocks(ctx context.Context, personID int64, from, to time.Time) ([]domain.UnavailableBlock, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, `
		SELECT person_id, block_date, start_time, end_time, reason, note
		FROM unavailable_blocks
		WHERE person_id = $1 AND block_date BETWEEN $2 AND $3
		ORDER BY block_date, start_time
	`, personID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []domain.UnavailableBlock
	for rows.Next() {
		var b domain.UnavailableBlock
		if err := rows.Scan(&b.PersonID, &b.Date, &b.StartTime, &b.EndTime, &b.Reason, &b.Note); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// BlocksSince counts blocks declared after the given time.
func (r *PostgresUnavailableRepository) BlocksSince(ctx context.Context, personID int64, since time.Time) (int, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)

	var count int
	err := execer.QueryRow(ctx, `
		SELECT COUNT(*) FROM unavailable_blocks
		WHERE person_id = $1 AND created_at > $2
	`, personID, since).Scan(&count)
	return count, err
}
