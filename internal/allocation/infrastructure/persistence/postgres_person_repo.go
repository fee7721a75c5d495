package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	sharedPersistence "github.com/taskpilot/taskpilot/internal/shared/infrastructure/persistence"
)

// PostgresPersonRepository implements domain.PersonRepository and
// domain.SkillRepository on PostgreSQL. People always come back with their
// skill ratings loaded.
type PostgresPersonRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPersonRepository creates a PostgreSQL person repository.
func NewPostgresPersonRepository(pool *pgxpool.Pool) *PostgresPersonRepository {
	return &PostgresPersonRepository{pool: pool}
}

// FindByID retrieves one person with ratings.
func (r *PostgresPersonRepository) FindByID(ctx context.Context, id int64) (domain.Person, error) {
	people, err := r.queryPeople(ctx, `WHERE p.id = $1`, id)
	if err != nil {
		return domain.Person{}, err
	}
	if len(people) == 0 {
		return domain.Person{}, domain.ErrPersonNotFound
	}
	return people[0], nil
}

// People lists everyone, or only the people of managerID when non-empty.
func (r *PostgresPersonRepository) People(ctx context.Context, managerID string) ([]domain.Person, error) {
	if managerID == "" {
		return r.queryPeople(ctx, ``)
	}
	return r.queryPeople(ctx, `WHERE p.manager_id = $1`, managerID)
}

// queryPeople fetches people and folds the left-joined ratings per person,
// keeping the person-id ordering.
func (r *PostgresPersonRepository) queryPeople(ctx context.Context, where string, args ...any) ([]domain.Person, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, `
		SELECT p.id, p.name, p.manager_id, p.im_id, ps.skill_id, ps.rating
		FROM people p
		LEFT JOIN person_skills ps ON ps.person_id = p.id
		`+where+`
		ORDER BY p.id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []domain.Person
	byID := make(map[int64]int)
	for rows.Next() {
		var (
			p       domain.Person
			skillID *int64
			rating  *int
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.ManagerID, &p.IMID, &skillID, &rating); err != nil {
			return nil, err
		}

		idx, seen := byID[p.ID]
		if !seen {
			p.Ratings = make(map[int64]int)
			people = append(people, p)
			idx = len(people) - 1
			byID[p.ID] = idx
		}
		if skillID != nil && rating != nil {
			people[idx].Ratings[*skillID] = *rating
		}
	}
	return people, rows.Err()
}

// SkillNames returns the full skill catalog as id -> name.
func (r *PostgresPersonRepository) SkillNames(ctx context.Context) (map[int64]string, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, `SELECT id, name FROM skills`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
