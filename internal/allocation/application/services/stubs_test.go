package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

// stubWorkItemRepo serves canned open items per person and counts calls.
type stubWorkItemRepo struct {
	items map[int64][]domain.WorkItem
	calls int
	err   error
}

func (r *stubWorkItemRepo) OpenItems(ctx context.Context, personID int64) ([]domain.WorkItem, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.items[personID], nil
}

func (r *stubWorkItemRepo) OpenItemsSince(ctx context.Context, personID int64, since time.Time) (int, error) {
	return 0, nil
}

type stubUnavailableRepo struct {
	blocks map[int64][]domain.UnavailableBlock
	err    error
}

func (r *stubUnavailableRepo) Blocks(ctx context.Context, personID int64, from, to time.Time) ([]domain.UnavailableBlock, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.blocks[personID], nil
}

func (r *stubUnavailableRepo) BlocksSince(ctx context.Context, personID int64, since time.Time) (int, error) {
	return 0, nil
}

type stubTaskRepo struct {
	tasks []domain.Task
}

func (r *stubTaskRepo) FindByID(ctx context.Context, id int64) (domain.Task, error) {
	for _, t := range r.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, domain.ErrTaskNotFound
}

func (r *stubTaskRepo) UnassignedTasks(ctx context.Context) ([]domain.Task, error) {
	return r.tasks, nil
}

type stubPersonRepo struct {
	people []domain.Person
}

func (r *stubPersonRepo) FindByID(ctx context.Context, id int64) (domain.Person, error) {
	for _, p := range r.people {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Person{}, domain.ErrPersonNotFound
}

func (r *stubPersonRepo) People(ctx context.Context, managerID string) ([]domain.Person, error) {
	if managerID == "" {
		return r.people, nil
	}
	var owned []domain.Person
	for _, p := range r.people {
		if p.ManagerID == managerID {
			owned = append(owned, p)
		}
	}
	return owned, nil
}

type stubSkillRepo struct {
	names map[int64]string
}

func (r *stubSkillRepo) SkillNames(ctx context.Context) (map[int64]string, error) {
	return r.names, nil
}

type stubScheduleRepo struct {
	mu     sync.Mutex
	latest map[int64]*domain.PersonSchedule
	byID   map[uuid.UUID]*domain.PersonSchedule
}

func newStubScheduleRepo() *stubScheduleRepo {
	return &stubScheduleRepo{
		latest: make(map[int64]*domain.PersonSchedule),
		byID:   make(map[uuid.UUID]*domain.PersonSchedule),
	}
}

func (r *stubScheduleRepo) Replace(ctx context.Context, schedule *domain.PersonSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest[schedule.PersonID()] = schedule
	r.byID[schedule.ID()] = schedule
	return nil
}

func (r *stubScheduleRepo) Latest(ctx context.Context, personID int64) (*domain.PersonSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.latest[personID]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	return s, nil
}

func (r *stubScheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.PersonSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	return s, nil
}

func (r *stubScheduleRepo) Save(ctx context.Context, schedule *domain.PersonSchedule) error {
	return r.Replace(ctx, schedule)
}

// memoryCache is an in-process SnapshotCache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]domain.WorkloadReport
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]domain.WorkloadReport)}
}

func (c *memoryCache) Get(ctx context.Context, personID int64, windowStart time.Time) (*domain.WorkloadReport, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	report, ok := c.entries[snapshotKey(personID, windowStart)]
	if !ok {
		return nil, nil
	}
	return &report, nil
}

func (c *memoryCache) Set(ctx context.Context, report domain.WorkloadReport) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[snapshotKey(report.PersonID, report.WindowStart)] = report
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, personID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		delete(c.entries, k)
	}
	return nil
}
