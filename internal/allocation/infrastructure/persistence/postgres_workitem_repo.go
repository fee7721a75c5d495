package persistence

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	sharedPersistence "github.com/taskpilot/taskpilot/internal/shared/infrastructure/persistence"
)

// PostgresWorkItemRepository implements domain.WorkItemRepository on
// PostgreSQL. Open items are the union of a person's active assignments
// (joined to their task) and their open self-directed tasks.
type PostgresWorkItemRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresWorkItemRepository creates a PostgreSQL work item repository.
func NewPostgresWorkItemRepository(pool *pgxpool.Pool) *PostgresWorkItemRepository {
	return &PostgresWorkItemRepository{pool: pool}
}

// OpenItems lists both kinds of open items for one person.
func (r *PostgresWorkItemRepository) OpenItems(ctx context.Context, personID int64) ([]domain.WorkItem, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)

	rows, err := execer.Query(ctx, `
		SELECT a.id, t.name, t.estimated_hours, t.deadline, t.importance,
			a.own_importance, t.required_skills, a.assigned_at, a.status
		FROM assignments a
		JOIN tasks t ON t.id = a.task_id
		WHERE a.person_id = $1 AND a.status IN ('pending', 'accepted')
		ORDER BY a.id
	`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.WorkItem
	for rows.Next() {
		item := domain.WorkItem{PersonID: personID}
		item.Key.Kind = domain.KindAssigned
		if err := rows.Scan(
			&item.Key.ID,
			&item.Name,
			&item.EstimatedHours,
			&item.Deadline,
			&item.Importance,
			&item.OwnImportance,
			&item.RequiredSkills,
			&item.Origin,
			&item.Status,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	selfRows, err := execer.Query(ctx, `
		SELECT id, name, estimated_hours, deadline, importance, created_at, status
		FROM self_tasks
		WHERE person_id = $1 AND status IN ('pending', 'accepted')
		ORDER BY id
	`, personID)
	if err != nil {
		return nil, err
	}
	defer selfRows.Close()

	for selfRows.Next() {
		item := domain.WorkItem{PersonID: personID}
		item.Key.Kind = domain.KindSelf
		if err := selfRows.Scan(
			&item.Key.ID,
			&item.Name,
			&item.EstimatedHours,
			&item.Deadline,
			&item.Importance,
			&item.Origin,
			&item.Status,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, selfRows.Err()
}

// OpenItemsSince counts open items whose origin is after the given time.
func (r *PostgresWorkItemRepository) OpenItemsSince(ctx context.Context, personID int64, since time.Time) (int, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)

	var count int
	err := execer.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM assignments
				WHERE person_id = $1 AND status IN ('pending', 'accepted') AND assigned_at > $2)
			+
			(SELECT COUNT(*) FROM self_tasks
				WHERE person_id = $1 AND status IN ('pending', 'accepted') AND created_at > $2)
	`, personID, since).Scan(&count)
	return count, err
}
