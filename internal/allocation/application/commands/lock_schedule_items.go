package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	sharedApplication "github.com/taskpilot/taskpilot/internal/shared/application"
)

// LockScheduleItemsCommand pins or unpins rows of a stored schedule. Pinned
// rows survive the next regeneration verbatim.
type LockScheduleItemsCommand struct {
	ScheduleID uuid.UUID
	ItemIDs    []uuid.UUID
	Locked     bool
}

// LockScheduleItemsResult reports how many rows actually changed; unknown
// item ids are ignored.
type LockScheduleItemsResult struct {
	Changed int
}

// LockScheduleItemsHandler handles the LockScheduleItemsCommand.
type LockScheduleItemsHandler struct {
	schedules domain.ScheduleRepository
	uow       sharedApplication.UnitOfWork
	logger    *slog.Logger
}

// NewLockScheduleItemsHandler creates a new LockScheduleItemsHandler.
func NewLockScheduleItemsHandler(
	schedules domain.ScheduleRepository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *LockScheduleItemsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LockScheduleItemsHandler{schedules: schedules, uow: uow, logger: logger}
}

// Handle executes the LockScheduleItemsCommand.
func (h *LockScheduleItemsHandler) Handle(ctx context.Context, cmd LockScheduleItemsCommand) (*LockScheduleItemsResult, error) {
	result := &LockScheduleItemsResult{}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		schedule, err := h.schedules.FindByID(txCtx, cmd.ScheduleID)
		if err != nil {
			return err
		}
		result.Changed = schedule.SetLocked(cmd.ItemIDs, cmd.Locked)
		if result.Changed == 0 {
			return nil
		}
		return h.schedules.Save(txCtx, schedule)
	})
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "schedule items lock updated",
		"schedule_id", cmd.ScheduleID,
		"locked", cmd.Locked,
		"changed", result.Changed,
	)
	return result, nil
}
