package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/database"
	sharedPersistence "github.com/taskpilot/taskpilot/internal/shared/infrastructure/persistence"
)

const sqliteScheduleSchema = `
CREATE TABLE IF NOT EXISTS schedules (
	id TEXT PRIMARY KEY,
	person_id INTEGER NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	daily_hours REAL NOT NULL,
	accepted INTEGER NOT NULL DEFAULT 0,
	accepted_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schedules_person ON schedules(person_id, created_at DESC);

CREATE TABLE IF NOT EXISTS schedule_items (
	id TEXT PRIMARY KEY,
	schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
	item_date TEXT NOT NULL,
	kind TEXT NOT NULL,
	item_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	hours REAL NOT NULL,
	priority REAL NOT NULL DEFAULT 0,
	progress REAL NOT NULL DEFAULT 0,
	locked INTEGER NOT NULL DEFAULT 0,
	deadline TEXT
);
CREATE INDEX IF NOT EXISTS idx_schedule_items_schedule ON schedule_items(schedule_id, item_date);
`

// SQLiteScheduleRepository implements domain.ScheduleRepository on SQLite
// for local single-user mode. Dates and timestamps are stored as RFC 3339
// strings.
type SQLiteScheduleRepository struct {
	db *sql.DB
}

// NewSQLiteScheduleRepository creates the repository and ensures its schema.
func NewSQLiteScheduleRepository(db *sql.DB) (*SQLiteScheduleRepository, error) {
	if _, err := db.Exec(sqliteScheduleSchema); err != nil {
		return nil, err
	}
	return &SQLiteScheduleRepository{db: db}, nil
}

// Replace discards the person's previous schedules and stores the new one.
func (r *SQLiteScheduleRepository) Replace(ctx context.Context, schedule *domain.PersonSchedule) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM schedules WHERE person_id = ?`, schedule.PersonID()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM schedule_items WHERE schedule_id NOT IN (SELECT id FROM schedules)`); err != nil {
			return err
		}
		return r.insert(ctx, tx, schedule)
	})
}

// Save rewrites a schedule in place.
func (r *SQLiteScheduleRepository) Save(ctx context.Context, schedule *domain.PersonSchedule) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM schedules WHERE id = ?`, schedule.ID().String()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM schedule_items WHERE schedule_id = ?`, schedule.ID().String()); err != nil {
			return err
		}
		return r.insert(ctx, tx, schedule)
	})
}

func (r *SQLiteScheduleRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return fn(info.Tx)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteScheduleRepository) insert(ctx context.Context, tx *sql.Tx, schedule *domain.PersonSchedule) error {
	var acceptedAt *string
	if at := schedule.AcceptedAt(); at != nil {
		s := at.UTC().Format(time.RFC3339Nano)
		acceptedAt = &s
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO schedules (id, person_id, start_date, end_date, daily_hours,
			accepted, accepted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		schedule.ID().String(),
		schedule.PersonID(),
		domain.DayKey(schedule.StartDate()),
		domain.DayKey(schedule.EndDate()),
		schedule.DailyHours(),
		schedule.Accepted(),
		acceptedAt,
		schedule.CreatedAt().UTC().Format(time.RFC3339Nano),
		schedule.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	for _, item := range schedule.Items() {
		var deadline *string
		if item.Entry.Deadline != nil {
			s := domain.DayKey(*item.Entry.Deadline)
			deadline = &s
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_items (id, schedule_id, item_date, kind, item_id,
				name, hours, priority, progress, locked, deadline)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			item.ID.String(),
			schedule.ID().String(),
			domain.DayKey(item.Entry.Date),
			string(item.Entry.Key.Kind),
			item.Entry.Key.ID,
			item.Entry.Name,
			item.Entry.Hours,
			item.Entry.Priority,
			item.Entry.Progress,
			item.Entry.Locked,
			deadline,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Latest returns the most recently created schedule for a person.
func (r *SQLiteScheduleRepository) Latest(ctx context.Context, personID int64) (*domain.PersonSchedule, error) {
	return r.findOne(ctx, `WHERE person_id = ? ORDER BY created_at DESC LIMIT 1`, personID)
}

// FindByID retrieves a schedule by its id.
func (r *SQLiteScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PersonSchedule, error) {
	return r.findOne(ctx, `WHERE id = ?`, id.String())
}

func (r *SQLiteScheduleRepository) findOne(ctx context.Context, where string, arg any) (*domain.PersonSchedule, error) {
	var (
		idStr               string
		personID            int64
		startStr, endStr    string
		dailyHours          float64
		accepted            bool
		acceptedAtStr       *string
		createdStr, updated string
	)
	err := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, person_id, start_date, end_date, daily_hours,
			accepted, accepted_at, created_at, updated_at
		FROM schedules `+where,
		arg,
	).Scan(&idStr, &personID, &startStr, &endStr, &dailyHours,
		&accepted, &acceptedAtStr, &createdStr, &updated)
	if database.IsNoRows(err) {
		return nil, domain.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	startDate, err := domain.ParseDay(startStr)
	if err != nil {
		return nil, err
	}
	endDate, err := domain.ParseDay(endStr)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return nil, err
	}
	var acceptedAt *time.Time
	if acceptedAtStr != nil {
		at, err := time.Parse(time.RFC3339Nano, *acceptedAtStr)
		if err != nil {
			return nil, err
		}
		acceptedAt = &at
	}

	items, err := r.loadItems(ctx, idStr)
	if err != nil {
		return nil, err
	}

	return domain.RehydratePersonSchedule(
		id, personID, startDate, endDate, dailyHours,
		accepted, acceptedAt, items, createdAt, updatedAt,
	), nil
}

func (r *SQLiteScheduleRepository) loadItems(ctx context.Context, scheduleID string) ([]*domain.PersistedItem, error) {
	rows, err := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT id, item_date, kind, item_id, name, hours, priority, progress, locked, deadline
		FROM schedule_items
		WHERE schedule_id = ?
		ORDER BY item_date, id
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.PersistedItem
	for rows.Next() {
		var (
			idStr, dateStr, kind string
			deadlineStr          *string
		)
		item := &domain.PersistedItem{}
		if err := rows.Scan(
			&idStr,
			&dateStr,
			&kind,
			&item.Entry.Key.ID,
			&item.Entry.Name,
			&item.Entry.Hours,
			&item.Entry.Priority,
			&item.Entry.Progress,
			&item.Entry.Locked,
			&deadlineStr,
		); err != nil {
			return nil, err
		}

		item.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		item.Entry.Date, err = domain.ParseDay(dateStr)
		if err != nil {
			return nil, err
		}
		item.Entry.Key.Kind = domain.ItemKind(kind)
		if deadlineStr != nil {
			deadline, err := domain.ParseDay(*deadlineStr)
			if err != nil {
				return nil, err
			}
			item.Entry.Deadline = &deadline
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
