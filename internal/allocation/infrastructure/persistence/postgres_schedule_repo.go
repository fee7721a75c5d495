package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/database"
	sharedPersistence "github.com/taskpilot/taskpilot/internal/shared/infrastructure/persistence"
)

// PostgresScheduleRepository implements domain.ScheduleRepository on
// PostgreSQL. Replace is destructive per person; callers serialize runs for
// the same person.
type PostgresScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresScheduleRepository creates a PostgreSQL schedule repository.
func NewPostgresScheduleRepository(pool *pgxpool.Pool) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{pool: pool}
}

// Replace discards the person's previous schedules and stores the new one.
func (r *PostgresScheduleRepository) Replace(ctx context.Context, schedule *domain.PersonSchedule) error {
	return r.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM schedules WHERE person_id = $1`, schedule.PersonID()); err != nil {
			return err
		}
		return r.insert(ctx, tx, schedule)
	})
}

// Save upserts a schedule in place, used for acceptance and lock changes.
func (r *PostgresScheduleRepository) Save(ctx context.Context, schedule *domain.PersonSchedule) error {
	return r.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM schedules WHERE id = $1`, schedule.ID()); err != nil {
			return err
		}
		return r.insert(ctx, tx, schedule)
	})
}

// inTx joins the context transaction or runs its own.
func (r *PostgresScheduleRepository) inTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	if info, ok := sharedPersistence.TxInfoFromContext(ctx); ok {
		return fn(ctx, info.Tx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresScheduleRepository) insert(ctx context.Context, tx pgx.Tx, schedule *domain.PersonSchedule) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO schedules (id, person_id, start_date, end_date, daily_hours,
			accepted, accepted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		schedule.ID(),
		schedule.PersonID(),
		schedule.StartDate(),
		schedule.EndDate(),
		schedule.DailyHours(),
		schedule.Accepted(),
		schedule.AcceptedAt(),
		schedule.CreatedAt(),
		schedule.UpdatedAt(),
	)
	if err != nil {
		return err
	}

	for _, item := range schedule.Items() {
		_, err := tx.Exec(ctx, `
			INSERT INTO schedule_items (id, schedule_id, item_date, kind, item_id,
				name, hours, priority, progress, locked, deadline)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			item.ID,
			schedule.ID(),
			item.Entry.Date,
			string(item.Entry.Key.Kind),
			item.Entry.Key.ID,
			item.Entry.Name,
			item.Entry.Hours,
			item.Entry.Priority,
			item.Entry.Progress,
			item.Entry.Locked,
			item.Entry.Deadline,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Latest returns the most recently created schedule for a person.
func (r *PostgresScheduleRepository) Latest(ctx context.Context, personID int64) (*domain.PersonSchedule, error) {
	return r.findOne(ctx, `WHERE person_id = $1 ORDER BY created_at DESC LIMIT 1`, personID)
}

// FindByID retrieves a schedule by its id.
func (r *PostgresScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PersonSchedule, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *PostgresScheduleRepository) findOne(ctx context.Context, where string, arg any) (*domain.PersonSchedule, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)

	var (
		id                   uuid.UUID
		personID             int64
		startDate, endDate   time.Time
		dailyHours           float64
		accepted             bool
		acceptedAt           *time.Time
		createdAt, updatedAt time.Time
	)
	err := execer.QueryRow(ctx, `
		SELECT id, person_id, start_date, end_date, daily_hours,
			accepted, accepted_at, created_at, updated_at
		FROM schedules `+where,
		arg,
	).Scan(&id, &personID, &startDate, &endDate, &dailyHours,
		&accepted, &acceptedAt, &createdAt, &updatedAt)
	if database.IsNoRows(err) {
		return nil, domain.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := execer.Query(ctx, `
		SELECT id, item_date, kind, item_id, name, hours, priority, progress, locked, deadline
		FROM schedule_items
		WHERE schedule_id = $1
		ORDER BY item_date, id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.PersistedItem
	for rows.Next() {
		item := &domain.PersistedItem{}
		var kind string
		if err := rows.Scan(
			&item.ID,
			&item.Entry.Date,
			&kind,
			&item.Entry.Key.ID,
			&item.Entry.Name,
			&item.Entry.Hours,
			&item.Entry.Priority,
			&item.Entry.Progress,
			&item.Entry.Locked,
			&item.Entry.Deadline,
		); err != nil {
			return nil, err
		}
		item.Entry.Key.Kind = domain.ItemKind(kind)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.RehydratePersonSchedule(
		id, personID, startDate, endDate, dailyHours,
		accepted, acceptedAt, items, createdAt, updatedAt,
	), nil
}
