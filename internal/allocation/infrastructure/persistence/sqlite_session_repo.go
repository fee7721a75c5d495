package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/database"
	sharedPersistence "github.com/taskpilot/taskpilot/internal/shared/infrastructure/persistence"
)

const sqliteSessionSchema = `
CREATE TABLE IF NOT EXISTS work_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	person_id INTEGER NOT NULL,
	schedule_item_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	item_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	session_date TEXT NOT NULL,
	planned_hours REAL NOT NULL,
	status TEXT NOT NULL,
	started_at TEXT,
	completed_at TEXT,
	worked_seconds INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_work_sessions_person_date ON work_sessions(person_id, session_date);
CREATE INDEX IF NOT EXISTS idx_work_sessions_person_status ON work_sessions(person_id, status);

CREATE TABLE IF NOT EXISTS work_interruptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id INTEGER NOT NULL REFERENCES work_sessions(id) ON DELETE CASCADE,
	paused_at TEXT NOT NULL,
	resumed_at TEXT,
	reason TEXT NOT NULL,
	duration_seconds INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_work_interruptions_session ON work_interruptions(session_id);
`

// SQLiteWorkSessionRepository implements domain.WorkSessionRepository on
// SQLite. Update rewrites the interruption rows wholesale; the set is small
// and only ever grows by one per pause.
type SQLiteWorkSessionRepository struct {
	db *sql.DB
}

// NewSQLiteWorkSessionRepository creates the repository and ensures its
// schema.
func NewSQLiteWorkSessionRepository(db *sql.DB) (*SQLiteWorkSessionRepository, error) {
	if _, err := db.Exec(sqliteSessionSchema); err != nil {
		return nil, err
	}
	return &SQLiteWorkSessionRepository{db: db}, nil
}

// Create inserts a session and fills in its generated id.
func (r *SQLiteWorkSessionRepository) Create(ctx context.Context, session *domain.WorkSession) error {
	res, err := sharedPersistence.SQLiteExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO work_sessions (person_id, schedule_item_id, kind, item_id, name,
			session_date, planned_hours, status, started_at, completed_at,
			worked_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.PersonID,
		session.ScheduleItemID.String(),
		string(session.Key.Kind),
		session.Key.ID,
		session.Name,
		domain.DayKey(session.Date),
		session.PlannedHours,
		string(session.Status),
		timePtrString(session.StartedAt),
		timePtrString(session.CompletedAt),
		session.WorkedSeconds,
		session.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	session.ID = id
	return r.saveInterruptions(ctx, session)
}

// Update persists the session fields and rewrites its interruptions.
func (r *SQLiteWorkSessionRepository) Update(ctx context.Context, session *domain.WorkSession) error {
	res, err := sharedPersistence.SQLiteExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE work_sessions SET
			status = ?,
			started_at = ?,
			completed_at = ?,
			worked_seconds = ?
		WHERE id = ?
	`,
		string(session.Status),
		timePtrString(session.StartedAt),
		timePtrString(session.CompletedAt),
		session.WorkedSeconds,
		session.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return r.saveInterruptions(ctx, session)
}

func (r *SQLiteWorkSessionRepository) saveInterruptions(ctx context.Context, session *domain.WorkSession) error {
	execer := sharedPersistence.SQLiteExecutor(ctx, r.db)
	if _, err := execer.ExecContext(ctx,
		`DELETE FROM work_interruptions WHERE session_id = ?`, session.ID); err != nil {
		return err
	}
	for _, in := range session.Interruptions {
		_, err := execer.ExecContext(ctx, `
			INSERT INTO work_interruptions (session_id, paused_at, resumed_at, reason, duration_seconds)
			VALUES (?, ?, ?, ?, ?)
		`,
			session.ID,
			in.PausedAt.UTC().Format(time.RFC3339Nano),
			timePtrString(in.ResumedAt),
			in.Reason,
			in.DurationSeconds,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID retrieves a session with its interruptions.
func (r *SQLiteWorkSessionRepository) FindByID(ctx context.Context, id int64) (*domain.WorkSession, error) {
	return r.findOneSession(ctx, `WHERE id = ?`, id)
}

// FindOpenForItem returns the newest non-completed session for a schedule
// row and day.
func (r *SQLiteWorkSessionRepository) FindOpenForItem(ctx context.Context, personID int64, key domain.ItemKey, day time.Time) (*domain.WorkSession, error) {
	return r.findOneSession(ctx, `
		WHERE person_id = ? AND kind = ? AND item_id = ? AND session_date = ?
			AND status != 'completed'
		ORDER BY created_at DESC LIMIT 1
	`, personID, string(key.Kind), key.ID, domain.DayKey(day))
}

// FindWorking returns the person's working session, if any.
func (r *SQLiteWorkSessionRepository) FindWorking(ctx context.Context, personID int64) (*domain.WorkSession, error) {
	return r.findOneSession(ctx,
		`WHERE person_id = ? AND status = 'working' ORDER BY created_at DESC LIMIT 1`,
		personID)
}

// ForDays lists the person's sessions dated on any of the given days.
func (r *SQLiteWorkSessionRepository) ForDays(ctx context.Context, personID int64, days []time.Time) ([]*domain.WorkSession, error) {
	if len(days) == 0 {
		return nil, nil
	}
	args := []any{personID}
	marks := make([]string, 0, len(days))
	for _, day := range days {
		marks = append(marks, "?")
		args = append(args, domain.DayKey(day))
	}
	return r.listSessions(ctx, fmt.Sprintf(
		`WHERE person_id = ? AND session_date IN (%s) ORDER BY session_date, id`,
		strings.Join(marks, ", ")), args...)
}

// History lists past sessions newest first, optionally narrowed to one day
// or one status.
func (r *SQLiteWorkSessionRepository) History(ctx context.Context, personID int64, day *time.Time, status domain.SessionStatus, limit int) ([]*domain.WorkSession, error) {
	where := `WHERE person_id = ?`
	args := []any{personID}
	if day != nil {
		where += ` AND session_date = ?`
		args = append(args, domain.DayKey(*day))
	}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, string(status))
	}
	where += ` ORDER BY session_date DESC, created_at DESC LIMIT ?`
	args = append(args, limit)
	return r.listSessions(ctx, where, args...)
}

const sqliteSessionColumns = `id, person_id, schedule_item_id, kind, item_id, name,
	session_date, planned_hours, status, started_at, completed_at, worked_seconds, created_at`

func (r *SQLiteWorkSessionRepository) findOneSession(ctx context.Context, where string, args ...any) (*domain.WorkSession, error) {
	row := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+sqliteSessionColumns+` FROM work_sessions `+where, args...)
	session, err := r.scanSession(row.Scan)
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

func (r *SQLiteWorkSessionRepository) listSessions(ctx context.Context, where string, args ...any) ([]*domain.WorkSession, error) {
	rows, err := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT `+sqliteSessionColumns+` FROM work_sessions `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.WorkSession
	for rows.Next() {
		session, err := r.scanSession(rows.Scan)
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

func (r *SQLiteWorkSessionRepository) scanSession(scan func(...any) error) (*domain.WorkSession, error) {
	var (
		session             domain.WorkSession
		itemIDStr, kind     string
		dateStr, createdStr string
		startedStr, doneStr *string
	)
	err := scan(&session.ID, &session.PersonID, &itemIDStr, &kind, &session.Key.ID,
		&session.Name, &dateStr, &session.PlannedHours, (*string)(&session.Status),
		&startedStr, &doneStr, &session.WorkedSeconds, &createdStr)
	if err != nil {
		return nil, err
	}

	session.Key.Kind = domain.ItemKind(kind)
	if session.ScheduleItemID, err = uuid.Parse(itemIDStr); err != nil {
		return nil, err
	}
	if session.Date, err = domain.ParseDay(dateStr); err != nil {
		return nil, err
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr); err != nil {
		return nil, err
	}
	if session.StartedAt, err = parseTimePtr(startedStr); err != nil {
		return nil, err
	}
	if session.CompletedAt, err = parseTimePtr(doneStr); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SQLiteWorkSessionRepository) loadInterruptions(ctx context.Context, sessionID int64) ([]domain.Interruption, error) {
	rows, err := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT paused_at, resumed_at, reason, duration_seconds
		FROM work_interruptions
		WHERE session_id = ?
		ORDER BY paused_at, id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interruptions []domain.Interruption
	for rows.Next() {
		var (
			in         domain.Interruption
			pausedStr  string
			resumedStr *string
		)
		if err := rows.Scan(&pausedStr, &resumedStr, &in.Reason, &in.DurationSeconds); err != nil {
			return nil, err
		}
		if in.PausedAt, err = time.Parse(time.RFC3339Nano, pausedStr); err != nil {
			return nil, err
		}
		if in.ResumedAt, err = parseTimePtr(resumedStr); err != nil {
			return nil, err
		}
		interruptions = append(interruptions, in)
	}
	return interruptions, rows.Err()
}

func timePtrString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
