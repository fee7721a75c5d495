package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/database"
	sharedPersistence "github.com/taskpilot/taskpilot/internal/shared/infrastructure/persistence"
)

// PostgresWorkSessionRepository implements domain.WorkSessionRepository on
// PostgreSQL. Update rewrites the interruption rows wholesale; the set is
// small and only ever grows by one per pause.
type PostgresWorkSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresWorkSessionRepository creates a PostgreSQL work session
// repository.
func NewPostgresWorkSessionRepository(pool *pgxpool.Pool) *PostgresWorkSessionRepository {
	return &PostgresWorkSessionRepository{pool: pool}
}

// Create inserts a session and fills in its generated id.
func (r *PostgresWorkSessionRepository) Create(ctx context.Context, session *domain.WorkSession) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	err := execer.QueryRow(ctx, `
		INSERT INTO work_sessions (person_id, schedule_item_id, kind, item_id, name,
			session_date, planned_hours, status, started_at, completed_at,
			worked_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`,
		session.PersonID,
		session.ScheduleItemID,
		string(session.Key.Kind),
		session.Key.ID,
		session.Name,
		session.Date,
		session.PlannedHours,
		string(session.Status),
		session.StartedAt,
		session.CompletedAt,
		session.WorkedSeconds,
		session.CreatedAt,
	).Scan(&session.ID)
	if err != nil {
		return err
	}
	return r.saveInterruptions(ctx, session)
}

// Update persists the session fields and rewrites its interruptions.
func (r *PostgresWorkSessionRepository) Update(ctx context.Context, session *domain.WorkSession) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	tag, err := execer.Exec(ctx, `
		UPDATE work_sessions SET
			status = $2,
			started_at = $3,
			completed_at = $4,
			worked_seconds = $5
		WHERE id = $1
	`,
		session.ID,
		string(session.Status),
		session.StartedAt,
		session.CompletedAt,
		session.WorkedSeconds,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return r.saveInterruptions(ctx, session)
}

func (r *PostgresWorkSessionRepository) saveInterruptions(ctx context.Context, session *domain.WorkSession) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	if _, err := execer.Exec(ctx,
		`DELETE FROM work_interruptions WHERE session_id = $1`, session.ID); err != nil {
		return err
	}
	for _, in := range session.Interruptions {
		_, err := execer.Exec(ctx, `
			INSERT INTO work_interruptions (session_id, paused_at, resumed_at, reason, duration_seconds)
			VALUES ($1, $2, $3, $4, $5)
		`, session.ID, in.PausedAt, in.ResumedAt, in.Reason, in.DurationSeconds)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID retrieves a session with its interruptions.
func (r *PostgresWorkSessionRepository) FindByID(ctx context.Context, id int64) (*domain.WorkSession, error) {
	return r.findOneSession(ctx, `WHERE id = $1`, id)
}

// FindOpenForItem returns the newest non-completed session for a schedule
// row and day.
func (r *PostgresWorkSessionRepository) FindOpenForItem(ctx context.Context, personID int64, key domain.ItemKey, day time.Time) (*domain.WorkSession, error) {
	return r.findOneSession(ctx, `
		WHERE person_id = $1 AND kind = $2 AND item_id = $3 AND session_date = $4
			AND status != 'completed'
		ORDER BY created_at DESC LIMIT 1
	`, personID, string(key.Kind), key.ID, domain.DayOf(day))
}

// FindWorking returns the person's working session, if any.
func (r *PostgresWorkSessionRepository) FindWorking(ctx context.Context, personID int64) (*domain.WorkSession, error) {
	return r.findOneSession(ctx,
		`WHERE person_id = $1 AND status = 'working' ORDER BY created_at DESC LIMIT 1`,
		personID)
}

// ForDays lists the person's sessions dated on any of the given days.
func (r *PostgresWorkSessionRepository) ForDays(ctx context.Context, personID int64, days []time.Time) ([]*domain.WorkSession, error) {
	if len(days) == 0 {
		return nil, nil
	}
	args := []any{personID}
	marks := make([]string, 0, len(days))
	for i, day := range days {
		marks = append(marks, fmt.Sprintf("$%d", i+2))
		args = append(args, domain.DayOf(day))
	}
	return r.listSessions(ctx, fmt.Sprintf(
		`WHERE person_id = $1 AND session_date IN (%s) ORDER BY session_date, id`,
		strings.Join(marks, ", ")), args...)
}

// History lists past sessions newest first, optionally narrowed to one day
// or one status.
func (r *PostgresWorkSessionRepository) History(ctx context.Context, personID int64, day *time.Time, status domain.SessionStatus, limit int) ([]*domain.WorkSession, error) {
	where := `WHERE person_id = $1`
	args := []any{personID}
	if day != nil {
		args = append(args, domain.DayOf(*day))
		where += fmt.Sprintf(` AND session_date = $%d`, len(args))
	}
	if status != "" {
		args = append(args, string(status))
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	args = append(args, limit)
	where += fmt.Sprintf(` ORDER BY session_date DESC, created_at DESC LIMIT $%d`, len(args))
	return r.listSessions(ctx, where, args...)
}

const postgresSessionColumns = `id, person_id, schedule_item_id, kind, item_id, name,
	session_date, planned_hours, status, started_at, completed_at, worked_seconds, created_at`

func (r *PostgresWorkSessionRepository) findOneSession(ctx context.Context, where string, args ...any) (*domain.WorkSession, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	row := execer.QueryRow(ctx,
		`SELECT `+postgresSessionColumns+` FROM work_sessions `+where, args...)
	session, err := scanPostgresSession(row)
	if database.IsNoRows(err) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	session.Interruptions, err = r.loadInterruptions(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *PostgresWorkSessionRepository) listSessions(ctx context.Context, where string, args ...any) ([]*domain.WorkSession, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx,
		`SELECT `+postgresSessionColumns+` FROM work_sessions `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.WorkSession
	for rows.Next() {
		session, err := scanPostgresSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, session := range sessions {
		if session.Interruptions, err = r.loadInterruptions(ctx, session.ID); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func scanPostgresSession(row pgx.Row) (*domain.WorkSession, error) {
	var (
		session domain.WorkSession
		kind    string
	)
	err := row.Scan(&session.ID, &session.PersonID, &session.ScheduleItemID, &kind,
		&session.Key.ID, &session.Name, &session.Date, &session.PlannedHours,
		(*string)(&session.Status), &session.StartedAt, &session.CompletedAt,
		&session.WorkedSeconds, &session.CreatedAt)
	if err != nil {
		return nil, err
	}
	session.Key.Kind = domain.ItemKind(kind)
	return &session, nil
}

func (r *PostgresWorkSessionRepository) loadInterruptions(ctx context.Context, sessionID int64) ([]domain.Interruption, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, `
		SELECT paused_at, resumed_at, reason, duration_seconds
		FROM work_interruptions
		WHERE session_id = $1
		ORDER BY paused_at, id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interruptions []domain.Interruption
	for rows.Next() {
		var in domain.Interruption
		if err := rows.Scan(&in.PausedAt, &in.ResumedAt, &in.Reason, &in.DurationSeconds); err != nil {
			return nil, err
		}
		interruptions = append(interruptions, in)
	}
	return interruptions, rows.Err()
}
