package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/database"
	sharedPersistence "github.com/taskpilot/taskpilot/internal/shared/infrastructure/persistence"
)

const taskColumns = `
	id, name, description, estimated_hours, deadline, importance,
	required_skills, created_at
`

// PostgresTaskRepository implements domain.TaskRepository on PostgreSQL.
type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTaskRepository creates a PostgreSQL task repository.
func NewPostgresTaskRepository(pool *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{pool: pool}
}

// FindByID retrieves a task by its id.
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id int64) (domain.Task, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	row := execer.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if database.IsNoRows(err) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return task, err
}

// UnassignedTasks lists tasks with no active assignment. A rejected or
// completed record does not block the task from reassignment.
func (r *PostgresTaskRepository) UnassignedTasks(ctx context.Context) ([]domain.Task, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		WHERE NOT EXISTS (
			SELECT 1 FROM assignments a
			WHERE a.task_id = t.id AND a.status IN ('pending', 'accepted')
		)
		ORDER BY t.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.EstimatedHours,
		&t.Deadline,
		&t.Importance,
		&t.RequiredSkills,
		&t.CreatedAt,
	)
	return t, err
}
