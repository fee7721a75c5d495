package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	sharedPersistence "github.com/taskpilot/taskpilot/internal/shared/infrastructure/persistence"
)

const sqliteLocalSchema = `
CREATE TABLE IF NOT EXISTS self_tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	estimated_hours REAL NOT NULL DEFAULT 0,
	deadline TEXT,
	importance INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'accepted',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS unavailable_blocks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	block_date TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
`

// LocalPersonID is the single owner of all local-mode data. Local mode has
// no people table; team features require PostgreSQL.
const LocalPersonID int64 = 1

// SQLiteLocalStore backs local single-user mode. It feeds the scheduler and
// workload aggregator from self tasks and unavailable blocks kept in the
// local database file, and accepts direct writes from the CLI.
type SQLiteLocalStore struct {
	db *sql.DB
}

// NewSQLiteLocalStore creates the store and ensures its schema.
func NewSQLiteLocalStore(db *sql.DB) (*SQLiteLocalStore, error) {
	if _, err := db.Exec(sqliteLocalSchema); err != nil {
		return nil, err
	}
	return &SQLiteLocalStore{db: db}, nil
}

// AddSelfTask records a self task and returns its id.
func (s *SQLiteLocalStore) AddSelfTask(ctx context.Context, name string, hours float64, deadline *time.Time, importance int) (int64, error) {
	var deadlineStr *string
	if deadline != nil {
		d := domain.DayKey(*deadline)
		deadlineStr = &d
	}
	res, err := sharedPersistence.SQLiteExecutor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO self_tasks (name, estimated_hours, deadline, importance, status, created_at)
		VALUES (?, ?, ?, ?, 'accepted', ?)
	`, name, hours, deadlineStr, importance, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CompleteSelfTask marks a self task done so it drops out of scheduling.
func (s *SQLiteLocalStore) CompleteSelfTask(ctx context.Context, id int64) error {
	res, err := sharedPersistence.SQLiteExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE self_tasks SET status = 'completed' WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// AddBlock records an unavailable block.
func (s *SQLiteLocalStore) AddBlock(ctx context.Context, block domain.UnavailableBlock) error {
	if _, err := block.Hours(); err != nil {
		return err
	}
	_, err := sharedPersistence.SQLiteExecutor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO unavailable_blocks (block_date, start_time, end_time, reason, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, domain.DayKey(block.Date), block.StartTime, block.EndTime,
		block.Reason, block.Note, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// OpenItems lists the open self tasks as schedulable work items. The
// personID argument is ignored; everything in the file belongs to the local
// user.
func (s *SQLiteLocalStore) OpenItems(ctx context.Context, personID int64) ([]domain.WorkItem, error) {
	rows, err := sharedPersistence.SQLiteExecutor(ctx, s.db).QueryContext(ctx, `
		SELECT id, name, estimated_hours, deadline, importance, status, created_at
		FROM self_tasks
		WHERE status IN ('pending', 'accepted')
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.WorkItem
	for rows.Next() {
		var (
			item        domain.WorkItem
			deadlineStr *string
			status      string
			createdStr  string
		)
		if err := rows.Scan(&item.Key.ID, &item.Name, &item.EstimatedHours,
			&deadlineStr, &item.Importance, &status, &createdStr); err != nil {
			return nil, err
		}
		item.Key.Kind = domain.KindSelf
		item.PersonID = LocalPersonID
		item.Status = domain.ItemStatus(status)
		if deadlineStr != nil {
			deadline, err := domain.ParseDay(*deadlineStr)
			if err != nil {
				return nil, err
			}
			item.Deadline = &deadline
		}
		item.Origin, err = time.Parse(time.RFC3339Nano, createdStr)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// OpenItemsSince counts open self tasks created after the given time.
func (s *SQLiteLocalStore) OpenItemsSince(ctx context.Context, personID int64, since time.Time) (int, error) {
	var count int
	err := sharedPersistence.SQLiteExecutor(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM self_tasks
		WHERE status IN ('pending', 'accepted') AND created_at > ?
	`, since.UTC().Format(time.RFC3339Nano)).Scan(&count)
	return count, err
}

// Blocks lists unavailable blocks within the date range, inclusive.
func (s *SQLiteLocalStore) Blocks(ctx context.Context, personID int64, from, to time.Time) ([]domain.UnavailableBlock, error) {
	rows, err := sharedPersistence.SQLiteExecutor(ctx, s.db).QueryContext(ctx, `
		SELECT block_date, start_time, end_time, reason, note
		FROM unavailable_blocks
		WHERE block_date BETWEEN ? AND ?
		ORDER BY block_date, start_time
	`, domain.DayKey(from), domain.DayKey(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []domain.UnavailableBlock
	for rows.Next() {
		var (
			block   domain.UnavailableBlock
			dateStr string
		)
		if err := rows.Scan(&dateStr, &block.StartTime, &block.EndTime,
			&block.Reason, &block.Note); err != nil {
			return nil, err
		}
		block.Date, err = domain.ParseDay(dateStr)
		if err != nil {
			return nil, err
		}
		block.PersonID = LocalPersonID
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}

// BlocksSince counts blocks declared after the given time.
func (s *SQLiteLocalStore) BlocksSince(ctx context.Context, personID int64, since time.Time) (int, error) {
	var count int
	err := sharedPersistence.SQLiteExecutor(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM unavailable_blocks WHERE created_at > ?
	`, since.UTC().Format(time.RFC3339Nano)).Scan(&count)
	return count, err
}
