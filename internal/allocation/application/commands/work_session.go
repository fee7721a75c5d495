package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	sharedApplication "github.com/taskpilot/taskpilot/internal/shared/application"
)

// StartSessionCommand starts time tracking on one schedule row. The row's
// identity, name, date, and planned hours come from the stored schedule.
type StartSessionCommand struct {
	PersonID       int64
	ScheduleItemID uuid.UUID
	Key            domain.ItemKey
	Name           string
	Date           time.Time
	PlannedHours   float64
}

// WorkSessionHandler drives work sessions through their lifecycle: start,
// pause, resume, complete, and manual time logging. It enforces the one
// working session per person rule across all entry points.
type WorkSessionHandler struct {
	sessions domain.WorkSessionRepository
	uow      sharedApplication.UnitOfWork
	logger   *slog.Logger
	now      func() time.Time
}

// NewWorkSessionHandler creates a new WorkSessionHandler.
func NewWorkSessionHandler(
	sessions domain.WorkSessionRepository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *WorkSessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkSessionHandler{
		sessions: sessions,
		uow:      uow,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins tracking the given schedule row. Starting a row that already
// has a paused session resumes it; a pending one is started. Either way the
// person must not have another session working.
func (h *WorkSessionHandler) Start(ctx context.Context, cmd StartSessionCommand) (*domain.WorkSession, error) {
	var session *domain.WorkSession
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		existing, err := h.sessions.FindOpenForItem(txCtx, cmd.PersonID, cmd.Key, cmd.Date)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}

		if existing != nil && existing.Status == domain.SessionWorking {
			return domain.ErrSessionAlreadyWorking
		}
		if err := h.ensureIdle(txCtx, cmd.PersonID, 0); err != nil {
			return err
		}

		now := h.now()
		if existing != nil {
			switch existing.Status {
			case domain.SessionPaused:
				err = existing.Resume(now)
			default:
				err = existing.Start(now)
			}
			if err != nil {
				return err
			}
			session = existing
			return h.sessions.Update(txCtx, existing)
		}

		session = domain.NewWorkSession(cmd.PersonID, cmd.ScheduleItemID,
			cmd.Key, cmd.Name, cmd.Date, cmd.PlannedHours, now)
		return h.sessions.Create(txCtx, session)
	})
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "work session started",
		"session_id", session.ID,
		"person_id", cmd.PersonID,
		"item", cmd.Key.String(),
	)
	return session, nil
}

// Pause interrupts a working session, recording the reason.
func (h *WorkSessionHandler) Pause(ctx context.Context, sessionID int64, reason string) (*domain.WorkSession, error) {
	return h.mutate(ctx, sessionID, "pause", func(txCtx context.Context, s *domain.WorkSession) error {
		return s.Pause(h.now(), reason)
	})
}

// Resume continues a paused session, provided nothing else is working.
func (h *WorkSessionHandler) Resume(ctx context.Context, sessionID int64) (*domain.WorkSession, error) {
	return h.mutate(ctx, sessionID, "resume", func(txCtx context.Context, s *domain.WorkSession) error {
		if err := h.ensureIdle(txCtx, s.PersonID, s.ID); err != nil {
			return err
		}
		return s.Resume(h.now())
	})
}

// Complete closes a session and reports its plan-versus-actual stats.
func (h *WorkSessionHandler) Complete(ctx context.Context, sessionID int64) (*domain.WorkSession, domain.SessionStats, error) {
	session, err := h.mutate(ctx, sessionID, "complete", func(txCtx context.Context, s *domain.WorkSession) error {
		return s.Complete(h.now())
	})
	if err != nil {
		return nil, domain.SessionStats{}, err
	}
	return session, session.Stats(), nil
}

// LogTime banks externally measured seconds on a working session.
func (h *WorkSessionHandler) LogTime(ctx context.Context, sessionID int64, seconds int64) (*domain.WorkSession, error) {
	return h.mutate(ctx, sessionID, "log", func(txCtx context.Context, s *domain.WorkSession) error {
		return s.AddWorkedSeconds(seconds)
	})
}

// ensureIdle fails with OtherSessionActiveError when the person has a
// working session other than exceptID.
func (h *WorkSessionHandler) ensureIdle(ctx context.Context, personID, exceptID int64) error {
	working, err := h.sessions.FindWorking(ctx, personID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if working.ID == exceptID {
		return nil
	}
	return &domain.OtherSessionActiveError{TaskName: working.Name}
}

func (h *WorkSessionHandler) mutate(ctx context.Context, sessionID int64, action string, fn func(context.Context, *domain.WorkSession) error) (*domain.WorkSession, error) {
	var session *domain.WorkSession
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		found, err := h.sessions.FindByID(txCtx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(txCtx, found); err != nil {
			return err
		}
		session = found
		return h.sessions.Update(txCtx, found)
	})
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "work session updated",
		"session_id", sessionID,
		"action", action,
	)
	return session, nil
}
