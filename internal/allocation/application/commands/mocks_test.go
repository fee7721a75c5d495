package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/notification"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/outbox"
)

type mockAssignmentRepo struct{ mock.Mock }

func (m *mockAssignmentRepo) Create(ctx context.Context, a *domain.Assignment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id int64) (*domain.Assignment, error) {
	args := m.Called(ctx, id)
	var a *domain.Assignment
	if v := args.Get(0); v != nil {
		a = v.(*domain.Assignment)
	}
	return a, args.Error(1)
}

func (m *mockAssignmentRepo) Update(ctx context.Context, a *domain.Assignment) error {
	return m.Called(ctx, a).Error(0)
}

type mockTaskRepo struct{ mock.Mock }

func (m *mockTaskRepo) FindByID(ctx context.Context, id int64) (domain.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Task), args.Error(1)
}

func (m *mockTaskRepo) UnassignedTasks(ctx context.Context) ([]domain.Task, error) {
	args := m.Called(ctx)
	var tasks []domain.Task
	if v := args.Get(0); v != nil {
		tasks = v.([]domain.Task)
	}
	return tasks, args.Error(1)
}

type mockPersonRepo struct{ mock.Mock }

func (m *mockPersonRepo) FindByID(ctx context.Context, id int64) (domain.Person, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Person), args.Error(1)
}

func (m *mockPersonRepo) People(ctx context.Context, managerID string) ([]domain.Person, error) {
	args := m.Called(ctx, managerID)
	var people []domain.Person
	if v := args.Get(0); v != nil {
		people = v.([]domain.Person)
	}
	return people, args.Error(1)
}

type mockScheduleRepo struct{ mock.Mock }

func (m *mockScheduleRepo) Replace(ctx context.Context, s *domain.PersonSchedule) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockScheduleRepo) Latest(ctx context.Context, personID int64) (*domain.PersonSchedule, error) {
	args := m.Called(ctx, personID)
	var s *domain.PersonSchedule
	if v := args.Get(0); v != nil {
		s = v.(*domain.PersonSchedule)
	}
	return s, args.Error(1)
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.PersonSchedule, error) {
	args := m.Called(ctx, id)
	var s *domain.PersonSchedule
	if v := args.Get(0); v != nil {
		s = v.(*domain.PersonSchedule)
	}
	return s, args.Error(1)
}

func (m *mockScheduleRepo) Save(ctx context.Context, s *domain.PersonSchedule) error {
	return m.Called(ctx, s).Error(0)
}

type mockSessionRepo struct{ mock.Mock }

func (m *mockSessionRepo) Create(ctx context.Context, s *domain.WorkSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id int64) (*domain.WorkSession, error) {
	args := m.Called(ctx, id)
	var s *domain.WorkSession
	if v := args.Get(0); v != nil {
		s = v.(*domain.WorkSession)
	}
	return s, args.Error(1)
}

func (m *mockSessionRepo) Update(ctx context.Context, s *domain.WorkSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessionRepo) FindOpenForItem(ctx context.Context, personID int64, key domain.ItemKey, day time.Time) (*domain.WorkSession, error) {
	args := m.Called(ctx, personID, key, day)
	var s *domain.WorkSession
	if v := args.Get(0); v != nil {
		s = v.(*domain.WorkSession)
	}
	return s, args.Error(1)
}

func (m *mockSessionRepo) FindWorking(ctx context.Context, personID int64) (*domain.WorkSession, error) {
	args := m.Called(ctx, personID)
	var s *domain.WorkSession
	if v := args.Get(0); v != nil {
		s = v.(*domain.WorkSession)
	}
	return s, args.Error(1)
}

func (m *mockSessionRepo) ForDays(ctx context.Context, personID int64, days []time.Time) ([]*domain.WorkSession, error) {
	args := m.Called(ctx, personID, days)
	var sessions []*domain.WorkSession
	if v := args.Get(0); v != nil {
		sessions = v.([]*domain.WorkSession)
	}
	return sessions, args.Error(1)
}

func (m *mockSessionRepo) History(ctx context.Context, personID int64, day *time.Time, status domain.SessionStatus, limit int) ([]*domain.WorkSession, error) {
	args := m.Called(ctx, personID, day, status, limit)
	var sessions []*domain.WorkSession
	if v := args.Get(0); v != nil {
		sessions = v.([]*domain.WorkSession)
	}
	return sessions, args.Error(1)
}

type mockOutboxRepo struct{ mock.Mock }

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	var msgs []*outbox.Message
	if v := args.Get(0); v != nil {
		msgs = v.([]*outbox.Message)
	}
	return msgs, args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return m.Called(ctx, id, errMsg, nextRetryAt).Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

// fakeUnitOfWork passes the context through and counts outcomes.
type fakeUnitOfWork struct {
	beginErr  error
	commits   int
	rollbacks int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if u.beginErr != nil {
		return nil, u.beginErr
	}
	return ctx, nil
}

func (u *fakeUnitOfWork) Commit(ctx context.Context) error {
	u.commits++
	return nil
}

func (u *fakeUnitOfWork) Rollback(ctx context.Context) error {
	u.rollbacks++
	return nil
}

// fakeNotifier records notices and answers with a canned result.
type fakeNotifier struct {
	result  notification.DeliveryResult
	notices []notification.AssignmentNotice
}

func (n *fakeNotifier) NotifyAssignment(ctx context.Context, notice notification.AssignmentNotice) notification.DeliveryResult {
	n.notices = append(n.notices, notice)
	return n.result
}
