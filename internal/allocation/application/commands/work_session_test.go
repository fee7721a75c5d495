package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

func startCommand() StartSessionCommand {
	return StartSessionCommand{
		PersonID:       10,
		ScheduleItemID: uuid.New(),
		Key:            domain.ItemKey{Kind: domain.KindAssigned, ID: 1},
		Name:           "migration",
		Date:           time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		PlannedHours:   4,
	}
}

func TestWorkSessionHandler_Start(t *testing.T) {
	ctx := context.Background()
	cmd := startCommand()

	t.Run("creates a working session", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		sessions.On("FindOpenForItem", ctx, cmd.PersonID, cmd.Key, cmd.Date).
			Return(nil, domain.ErrSessionNotFound)
		sessions.On("FindWorking", ctx, cmd.PersonID).Return(nil, domain.ErrSessionNotFound)
		sessions.On("Create", ctx, mock.Anything).Return(nil)
		h := NewWorkSessionHandler(sessions, &fakeUnitOfWork{}, nil)

		session, err := h.Start(ctx, cmd)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionWorking, session.Status)
		assert.Equal(t, cmd.Key, session.Key)
		assert.NotNil(t, session.StartedAt)
	})

	t.Run("resumes a paused session for the same row", func(t *testing.T) {
		start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		paused := domain.NewWorkSession(cmd.PersonID, cmd.ScheduleItemID,
			cmd.Key, cmd.Name, cmd.Date, cmd.PlannedHours, start)
		paused.ID = 7
		require.NoError(t, paused.Pause(start.Add(time.Hour), "lunch"))

		sessions := new(mockSessionRepo)
		sessions.On("FindOpenForItem", ctx, cmd.PersonID, cmd.Key, cmd.Date).Return(paused, nil)
		sessions.On("FindWorking", ctx, cmd.PersonID).Return(nil, domain.ErrSessionNotFound)
		sessions.On("Update", ctx, paused).Return(nil)
		h := NewWorkSessionHandler(sessions, &fakeUnitOfWork{}, nil)

		session, err := h.Start(ctx, cmd)
		require.NoError(t, err)
		assert.Equal(t, int64(7), session.ID)
		assert.Equal(t, domain.SessionWorking, session.Status)
		require.NotNil(t, session.Interruptions[0].ResumedAt)
		sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("refuses a row already in progress", func(t *testing.T) {
		start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		working := domain.NewWorkSession(cmd.PersonID, cmd.ScheduleItemID,
			cmd.Key, cmd.Name, cmd.Date, cmd.PlannedHours, start)

		sessions := new(mockSessionRepo)
		sessions.On("FindOpenForItem", ctx, cmd.PersonID, cmd.Key, cmd.Date).Return(working, nil)
		h := NewWorkSessionHandler(sessions, &fakeUnitOfWork{}, nil)

		_, err := h.Start(ctx, cmd)
		assert.ErrorIs(t, err, domain.ErrSessionAlreadyWorking)
	})

	t.Run("names the task blocking a new start", func(t *testing.T) {
		start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		other := domain.NewWorkSession(cmd.PersonID, uuid.New(),
			domain.ItemKey{Kind: domain.KindSelf, ID: 9}, "code review", cmd.Date, 2, start)
		other.ID = 3

		sessions := new(mockSessionRepo)
		sessions.On("FindOpenForItem", ctx, cmd.PersonID, cmd.Key, cmd.Date).
			Return(nil, domain.ErrSessionNotFound)
		sessions.On("FindWorking", ctx, cmd.PersonID).Return(other, nil)
		h := NewWorkSessionHandler(sessions, &fakeUnitOfWork{}, nil)

		_, err := h.Start(ctx, cmd)
		var active *domain.OtherSessionActiveError
		require.True(t, errors.As(err, &active))
		assert.Equal(t, "code review", active.TaskName)
		sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestWorkSessionHandler_PauseResumeComplete(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cmd := startCommand()

	newWorking := func() *domain.WorkSession {
		s := domain.NewWorkSession(cmd.PersonID, cmd.ScheduleItemID,
			cmd.Key, cmd.Name, cmd.Date, cmd.PlannedHours, start)
		s.ID = 7
		return s
	}

	t.Run("pause records the reason", func(t *testing.T) {
		s := newWorking()
		sessions := new(mockSessionRepo)
		sessions.On("FindByID", ctx, s.ID).Return(s, nil)
		sessions.On("Update", ctx, s).Return(nil)
		h := NewWorkSessionHandler(sessions, &fakeUnitOfWork{}, nil)
		h.now = func() time.Time { return start.Add(30 * time.Minute) }

		paused, err := h.Pause(ctx, s.ID, "standup")
		require.NoError(t, err)
		assert.Equal(t, domain.SessionPaused, paused.Status)
		assert.Equal(t, int64(1800), paused.WorkedSeconds)
	})

	t.Run("pause without a reason rolls back", func(t *testing.T) {
		s := newWorking()
		sessions := new(mockSessionRepo)
		sessions.On("FindByID", ctx, s.ID).Return(s, nil)
		uow := &fakeUnitOfWork{}
		h := NewWorkSessionHandler(sessions, uow, nil)

		_, err := h.Pause(ctx, s.ID, "")
		assert.ErrorIs(t, err, domain.ErrInterruptReasonRequired)
		assert.Equal(t, 1, uow.rollbacks)
		sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("resume is blocked while another session works", func(t *testing.T) {
		s := newWorking()
		require.NoError(t, s.Pause(start.Add(time.Hour), "lunch"))
		other := newWorking()
		other.ID = 8
		other.Name = "code review"

		sessions := new(mockSessionRepo)
		sessions.On("FindByID", ctx, s.ID).Return(s, nil)
		sessions.On("FindWorking", ctx, s.PersonID).Return(other, nil)
		h := NewWorkSessionHandler(sessions, &fakeUnitOfWork{}, nil)

		_, err := h.Resume(ctx, s.ID)
		var active *domain.OtherSessionActiveError
		require.True(t, errors.As(err, &active))
		assert.Equal(t, "code review", active.TaskName)
	})

	t.Run("complete reports stats", func(t *testing.T) {
		s := newWorking()
		sessions := new(mockSessionRepo)
		sessions.On("FindByID", ctx, s.ID).Return(s, nil)
		sessions.On("Update", ctx, s).Return(nil)
		h := NewWorkSessionHandler(sessions, &fakeUnitOfWork{}, nil)
		h.now = func() time.Time { return start.Add(2 * time.Hour) }

		completed, stats, err := h.Complete(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionCompleted, completed.Status)
		assert.Equal(t, 2.0, stats.WorkedHours)
		assert.Equal(t, 200.0, stats.Efficiency)
	})

	t.Run("unknown session", func(t *testing.T) {
		sessions := new(mockSessionRepo)
		sessions.On("FindByID", ctx, int64(99)).Return(nil, domain.ErrSessionNotFound)
		h := NewWorkSessionHandler(sessions, &fakeUnitOfWork{}, nil)

		_, err := h.Resume(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestWorkSessionHandler_LogTime(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cmd := startCommand()
	s := domain.NewWorkSession(cmd.PersonID, cmd.ScheduleItemID,
		cmd.Key, cmd.Name, cmd.Date, cmd.PlannedHours, start)
	s.ID = 7

	sessions := new(mockSessionRepo)
	sessions.On("FindByID", ctx, s.ID).Return(s, nil)
	sessions.On("Update", ctx, s).Return(nil)
	h := NewWorkSessionHandler(sessions, &fakeUnitOfWork{}, nil)

	logged, err := h.LogTime(ctx, s.ID, 900)
	require.NoError(t, err)
	assert.Equal(t, int64(900), logged.WorkedSeconds)
}
