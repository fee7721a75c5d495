package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/outbox"
)

func storedSchedule(t *testing.T) *domain.PersonSchedule {
	t.Helper()
	built := domain.BuildSchedule(domain.ScheduleInput{
		PersonID: 1,
		Items: []domain.WorkItem{{
			Key: domain.ItemKey{Kind: domain.KindAssigned, ID: 5}, PersonID: 1,
			Name: "audit", EstimatedHours: 8, Status: domain.StatusAccepted,
		}},
		Today:  monday,
		Config: domain.DefaultSchedulerConfig(),
	})
	schedule := domain.NewPersonSchedule(built, 8)
	schedule.ClearDomainEvents()
	return schedule
}

func TestAcceptScheduleHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts and stages the event", func(t *testing.T) {
		schedule := storedSchedule(t)
		schedules := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := &fakeUnitOfWork{}
		h := NewAcceptScheduleHandler(schedules, outboxRepo, uow, nil)

		schedules.On("FindByID", ctx, schedule.ID()).Return(schedule, nil)
		schedules.On("Save", ctx, schedule).Return(nil)
		outboxRepo.On("SaveBatch", ctx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
			return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeyScheduleAccepted
		})).Return(nil)

		err := h.Handle(ctx, AcceptScheduleCommand{ScheduleID: schedule.ID()})
		require.NoError(t, err)

		assert.True(t, schedule.Accepted())
		require.NotNil(t, schedule.AcceptedAt())
		assert.Equal(t, *schedule.AcceptedAt(), schedule.BaselineTime())
		assert.Empty(t, schedule.DomainEvents())
		assert.Equal(t, 1, uow.commits)
		schedules.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("double accept fails and rolls back", func(t *testing.T) {
		schedule := storedSchedule(t)
		require.NoError(t, schedule.Accept())
		schedule.ClearDomainEvents()

		schedules := new(mockScheduleRepo)
		uow := &fakeUnitOfWork{}
		h := NewAcceptScheduleHandler(schedules, new(mockOutboxRepo), uow, nil)

		schedules.On("FindByID", ctx, schedule.ID()).Return(schedule, nil)

		err := h.Handle(ctx, AcceptScheduleCommand{ScheduleID: schedule.ID()})
		assert.ErrorIs(t, err, domain.ErrScheduleAccepted)
		assert.Equal(t, 1, uow.rollbacks)
		schedules.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown schedule", func(t *testing.T) {
		schedule := storedSchedule(t)
		schedules := new(mockScheduleRepo)
		h := NewAcceptScheduleHandler(schedules, new(mockOutboxRepo), &fakeUnitOfWork{}, nil)

		schedules.On("FindByID", ctx, schedule.ID()).Return(nil, domain.ErrScheduleNotFound)

		err := h.Handle(ctx, AcceptScheduleCommand{ScheduleID: schedule.ID()})
		assert.ErrorIs(t, err, domain.ErrScheduleNotFound)
	})
}
