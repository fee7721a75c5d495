// Package persistence implements the allocation repositories on Postgres,
// with a SQLite schedule repository for local single-user mode.
package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresSchema is applied idempotently at startup.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS skills (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS people (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	manager_id TEXT NOT NULL DEFAULT '',
	im_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS person_skills (
	person_id BIGINT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
	skill_id BIGINT NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
	rating INT NOT NULL,
	PRIMARY KEY (person_id, skill_id)
);

CREATE TABLE IF NOT EXISTS tasks (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	estimated_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
	deadline DATE,
	importance INT NOT NULL DEFAULT 0,
	required_skills BIGINT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS assignments (
	id BIGSERIAL PRIMARY KEY,
	task_id BIGINT NOT NULL REFERENCES tasks(id),
	person_id BIGINT NOT NULL REFERENCES people(id),
	assigned_by_id TEXT NOT NULL DEFAULT '',
	assigned_by_name TEXT NOT NULL DEFAULT '',
	assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	status TEXT NOT NULL DEFAULT 'pending',
	own_importance INT NOT NULL DEFAULT 0,
	notification_sent BOOLEAN NOT NULL DEFAULT FALSE,
	notification_error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_assignments_person_status ON assignments(person_id, status);
CREATE INDEX IF NOT EXISTS idx_assignments_task ON assignments(task_id);

CREATE TABLE IF NOT EXISTS self_tasks (
	id BIGSERIAL PRIMARY KEY,
	person_id BIGINT NOT NULL REFERENCES people(id),
	name TEXT NOT NULL,
	estimated_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
	deadline DATE,
	importance INT NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'accepted',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_self_tasks_person_status ON self_tasks(person_id, status);

CREATE TABLE IF NOT EXISTS unavailable_blocks (
	id BIGSERIAL PRIMARY KEY,
	person_id BIGINT NOT NULL REFERENCES people(id),
	block_date DATE NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_unavailable_person_date ON unavailable_blocks(person_id, block_date);

CREATE TABLE IF NOT EXISTS schedules (
	id UUID PRIMARY KEY,
	person_id BIGINT NOT NULL REFERENCES people(id),
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	daily_hours DOUBLE PRECISION NOT NULL,
	accepted BOOLEAN NOT NULL DEFAULT FALSE,
	accepted_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schedules_person ON schedules(person_id, created_at DESC);

CREATE TABLE IF NOT EXISTS schedule_items (
	id UUID PRIMARY KEY,
	schedule_id UUID NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
	item_date DATE NOT NULL,
	kind TEXT NOT NULL,
	item_id BIGINT NOT NULL,
	name TEXT NOT NULL,
	hours DOUBLE PRECISION NOT NULL,
	priority DOUBLE PRECISION NOT NULL DEFAULT 0,
	progress DOUBLE PRECISION NOT NULL DEFAULT 0,
	locked BOOLEAN NOT NULL DEFAULT FALSE,
	deadline DATE
);
CREATE INDEX IF NOT EXISTS idx_schedule_items_schedule ON schedule_items(schedule_id, item_date);

CREATE TABLE IF NOT EXISTS work_sessions (
	id BIGSERIAL PRIMARY KEY,
	person_id BIGINT NOT NULL REFERENCES people(id),
	schedule_item_id UUID NOT NULL,
	kind TEXT NOT NULL,
	item_id BIGINT NOT NULL,
	name TEXT NOT NULL,
	session_date DATE NOT NULL,
	planned_hours DOUBLE PRECISION NOT NULL,
	status TEXT NOT NULL,
	started_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	worked_seconds BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_work_sessions_person_date ON work_sessions(person_id, session_date);
CREATE INDEX IF NOT EXISTS idx_work_sessions_person_status ON work_sessions(person_id, status);

CREATE TABLE IF NOT EXISTS work_interruptions (
	id BIGSERIAL PRIMARY KEY,
	session_id BIGINT NOT NULL REFERENCES work_sessions(id) ON DELETE CASCADE,
	paused_at TIMESTAMPTZ NOT NULL,
	resumed_at TIMESTAMPTZ,
	reason TEXT NOT NULL,
	duration_seconds BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_work_interruptions_session ON work_interruptions(session_id);

CREATE TABLE IF NOT EXISTS outbox (
	id BIGSERIAL PRIMARY KEY,
	event_id UUID NOT NULL,
	aggregate_type TEXT NOT NULL,
	aggregate_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	routing_key TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	published_at TIMESTAMPTZ,
	next_retry_at TIMESTAMPTZ,
	retry_count INT NOT NULL DEFAULT 0,
	last_error TEXT,
	dead_lettered_at TIMESTAMPTZ,
	dead_letter_reason TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_unpublished ON outbox(created_at)
	WHERE published_at IS NULL AND dead_lettered_at IS NULL;
`

// EnsureSchema creates the allocation tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, postgresSchema)
	return err
}
