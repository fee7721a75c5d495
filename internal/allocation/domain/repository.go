package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrPersonNotFound     = errors.New("person not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrSessionNotFound    = errors.New("work session not found")
)

// TaskRepository reads the unassigned-eligible task pool. A task qualifies
// when it has no assignment records or none of them is open.
type TaskRepository interface {
	FindByID(ctx context.Context, id int64) (Task, error)
	UnassignedTasks(ctx context.Context) ([]Task, error)
}

// PersonRepository reads people with their skill ratings loaded.
type PersonRepository interface {
	FindByID(ctx context.Context, id int64) (Person, error)
	// People lists everyone, or only the people owned by managerID when it
	// is non-empty.
	People(ctx context.Context, managerID string) ([]Person, error)
}

// SkillRepository reads the skill catalog.
type SkillRepository interface {
	SkillNames(ctx context.Context) (map[int64]string, error)
}

// WorkItemRepository reads a person's open work items, both kinds, with the
// assignment/creation provenance each item carries.
type WorkItemRepository interface {
	OpenItems(ctx context.Context, personID int64) ([]WorkItem, error)
	// OpenItemsSince counts open items whose origin is after the given
	// time, for schedule staleness checks.
	OpenItemsSince(ctx context.Context, personID int64, since time.Time) (int, error)
}

// UnavailableRepository reads declared unavailable blocks in a date range.
type UnavailableRepository interface {
	Blocks(ctx context.Context, personID int64, from, to time.Time) ([]UnavailableBlock, error)
	// BlocksSince counts blocks declared after the given time, for schedule
	// staleness checks.
	BlocksSince(ctx context.Context, personID int64, since time.Time) (int, error)
}

// AssignmentRepository persists assignment records and their annotations.
type AssignmentRepository interface {
	Create(ctx context.Context, a *Assignment) error
	FindByID(ctx context.Context, id int64) (*Assignment, error)
	Update(ctx context.Context, a *Assignment) error
}

// ScheduleRepository persists per-person schedules. Replace discards the
// person's previous schedule wholesale; implementations must serialize
// replace operations per person since the policy is destructive.
type ScheduleRepository interface {
	Replace(ctx context.Context, schedule *PersonSchedule) error
	Latest(ctx context.Context, personID int64) (*PersonSchedule, error)
	FindByID(ctx context.Context, id uuid.UUID) (*PersonSchedule, error)
	Save(ctx context.Context, schedule *PersonSchedule) error
}

// WorkSessionRepository persists work sessions together with their
// interruptions. Lookups that find nothing return ErrSessionNotFound.
type WorkSessionRepository interface {
	Create(ctx context.Context, session *WorkSession) error
	FindByID(ctx context.Context, id int64) (*WorkSession, error)
	Update(ctx context.Context, session *WorkSession) error
	// FindOpenForItem returns the newest non-completed session for one
	// schedule row and day.
	FindOpenForItem(ctx context.Context, personID int64, key ItemKey, day time.Time) (*WorkSession, error)
	// FindWorking returns the person's currently working session.
	FindWorking(ctx context.Context, personID int64) (*WorkSession, error)
	// ForDays lists the person's sessions dated on any of the given days.
	ForDays(ctx context.Context, personID int64, days []time.Time) ([]*WorkSession, error)
	// History lists past sessions, newest first, optionally narrowed to one
	// day or one status. A nil day and empty status match everything.
	History(ctx context.Context, personID int64, day *time.Time, status SessionStatus, limit int) ([]*WorkSession, error)
}
