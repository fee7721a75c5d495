package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	sharedApplication "github.com/taskpilot/taskpilot/internal/shared/application"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/outbox"
)

// AcceptScheduleCommand marks a generated schedule as accepted by its owner.
// Acceptance moves the staleness baseline to the acceptance time.
type AcceptScheduleCommand struct {
	ScheduleID uuid.UUID
}

// AcceptScheduleHandler handles the AcceptScheduleCommand.
type AcceptScheduleHandler struct {
	schedules  domain.ScheduleRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
}

// NewAcceptScheduleHandler creates a new AcceptScheduleHandler.
func NewAcceptScheduleHandler(
	schedules domain.ScheduleRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *AcceptScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AcceptScheduleHandler{
		schedules:  schedules,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
	}
}

// Handle executes the AcceptScheduleCommand.
func (h *AcceptScheduleHandler) Handle(ctx context.Context, cmd AcceptScheduleCommand) error {
	var schedule *domain.PersonSchedule

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		schedule, err = h.schedules.FindByID(txCtx, cmd.ScheduleID)
		if err != nil {
			return err
		}
		if err := schedule.Accept(); err != nil {
			return err
		}
		if err := h.schedules.Save(txCtx, schedule); err != nil {
			return err
		}
		msgs, err := messagesFromEvents(schedule.DomainEvents())
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return err
	}
	schedule.ClearDomainEvents()

	h.logger.InfoContext(ctx, "schedule accepted",
		"schedule_id", cmd.ScheduleID,
		"person_id", schedule.PersonID(),
	)
	return nil
}
