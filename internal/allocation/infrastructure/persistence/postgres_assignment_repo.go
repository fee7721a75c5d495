package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/database"
	sharedPersistence "github.com/taskpilot/taskpilot/internal/shared/infrastructure/persistence"
)

// PostgresAssignmentRepository implements domain.AssignmentRepository on
// PostgreSQL. Writes join the context transaction when one is active.
type PostgresAssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAssignmentRepository creates a PostgreSQL assignment repository.
func NewPostgresAssignmentRepository(pool *pgxpool.Pool) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{pool: pool}
}

// Create inserts a new assignment and fills in its generated id.
func (r *PostgresAssignmentRepository) Create(ctx context.Context, a *domain.Assignment) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	return execer.QueryRow(ctx, `
		INSERT INTO assignments (
			task_id, person_id, assigned_by_id, assigned_by_name,
			assigned_at, status, own_importance, notification_sent, notification_error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		a.TaskID,
		a.PersonID,
		a.AssignedByID,
		a.AssignedByName,
		a.AssignedAt,
		a.Status,
		a.OwnImportance,
		a.NotificationSent,
		a.NotificationError,
	).Scan(&a.ID)
}

// FindByID retrieves an assignment by its id.
func (r *PostgresAssignmentRepository) FindByID(ctx context.Context, id int64) (*domain.Assignment, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)

	var a domain.Assignment
	err := execer.QueryRow(ctx, `
		SELECT id, task_id, person_id, assigned_by_id, assigned_by_name,
			assigned_at, status, own_importance, notification_sent, notification_error
		FROM assignments WHERE id = $1
	`, id).Scan(
		&a.ID,
		&a.TaskID,
		&a.PersonID,
		&a.AssignedByID,
		&a.AssignedByName,
		&a.AssignedAt,
		&a.Status,
		&a.OwnImportance,
		&a.NotificationSent,
		&a.NotificationError,
	)
	if database.IsNoRows(err) {
		return nil, domain.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Update persists the mutable assignment fields.
func (r *PostgresAssignmentRepository) Update(ctx context.Context, a *domain.Assignment) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	tag, err := execer.Exec(ctx, `
		UPDATE assignments SET
			status = $2,
			own_importance = $3,
			notification_sent = $4,
			notification_error = $5
		WHERE id = $1
	`,
		a.ID,
		a.Status,
		a.OwnImportance,
		a.NotificationSent,
		a.NotificationError,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}
