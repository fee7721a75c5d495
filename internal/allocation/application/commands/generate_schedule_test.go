package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/allocation/application/services"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/outbox"
)

// monday is a fixed Monday used as "today" across command tests.
var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type stubWorkItems struct{ items []domain.WorkItem }

func (s stubWorkItems) OpenItems(ctx context.Context, personID int64) ([]domain.WorkItem, error) {
	return s.items, nil
}

func (s stubWorkItems) OpenItemsSince(ctx context.Context, personID int64, since time.Time) (int, error) {
	return 0, nil
}

type stubBlocks struct{}

func (stubBlocks) Blocks(ctx context.Context, personID int64, from, to time.Time) ([]domain.UnavailableBlock, error) {
	return nil, nil
}

func (stubBlocks) BlocksSince(ctx context.Context, personID int64, since time.Time) (int, error) {
	return 0, nil
}

func TestGenerateScheduleHandler_Handle(t *testing.T) {
	ctx := context.Background()
	items := []domain.WorkItem{{
		Key: domain.ItemKey{Kind: domain.KindAssigned, ID: 5}, PersonID: 1,
		Name: "audit", EstimatedHours: 12, Status: domain.StatusAccepted,
	}}

	schedules := new(mockScheduleRepo)
	outboxRepo := new(mockOutboxRepo)
	uow := &fakeUnitOfWork{}

	scheduler := services.NewSchedulerService(
		stubWorkItems{items: items}, stubBlocks{}, schedules,
		domain.DefaultSchedulerConfig(), nil,
	)
	h := NewGenerateScheduleHandler(scheduler, schedules, outboxRepo, uow, nil)

	var saved *domain.PersonSchedule
	schedules.On("Replace", ctx, mock.AnythingOfType("*domain.PersonSchedule")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*domain.PersonSchedule)
		}).Return(nil)
	outboxRepo.On("SaveBatch", ctx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
		return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeyScheduleGenerated
	})).Return(nil)

	result, err := h.Handle(ctx, GenerateScheduleCommand{PersonID: 1, Today: monday})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.ScheduleID)
	assert.Len(t, result.Built.Entries, 2, "12h spreads over two 8h days")
	require.NotNil(t, saved)
	assert.Equal(t, result.ScheduleID, saved.ID())
	assert.Empty(t, saved.DomainEvents(), "events are cleared after staging")
	assert.Equal(t, 1, uow.commits)

	schedules.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
}

func TestGenerateScheduleHandler_ReplaceFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	schedules := new(mockScheduleRepo)
	outboxRepo := new(mockOutboxRepo)
	uow := &fakeUnitOfWork{}

	scheduler := services.NewSchedulerService(
		stubWorkItems{}, stubBlocks{}, schedules,
		domain.DefaultSchedulerConfig(), nil,
	)
	h := NewGenerateScheduleHandler(scheduler, schedules, outboxRepo, uow, nil)

	schedules.On("Replace", ctx, mock.Anything).Return(assert.AnError)

	_, err := h.Handle(ctx, GenerateScheduleCommand{PersonID: 1, Today: monday})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, uow.rollbacks)
	outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
}
