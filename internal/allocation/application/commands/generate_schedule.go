package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskpilot/taskpilot/internal/allocation/application/services"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	sharedApplication "github.com/taskpilot/taskpilot/internal/shared/application"
	sharedDomain "github.com/taskpilot/taskpilot/internal/shared/domain"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/outbox"
)

// GenerateScheduleCommand runs the day scheduler for one person and replaces
// their stored schedule with the result.
type GenerateScheduleCommand struct {
	PersonID int64
	Today    time.Time
	// KeepLocked carries pinned rows of the previous schedule into the run.
	KeepLocked bool
}

// GenerateScheduleResult reports the persisted run.
type GenerateScheduleResult struct {
	ScheduleID uuid.UUID
	Built      domain.BuiltSchedule
}

// GenerateScheduleHandler handles the GenerateScheduleCommand.
type GenerateScheduleHandler struct {
	scheduler  *services.SchedulerService
	schedules  domain.ScheduleRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
}

// NewGenerateScheduleHandler creates a new GenerateScheduleHandler.
func NewGenerateScheduleHandler(
	scheduler *services.SchedulerService,
	schedules domain.ScheduleRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *GenerateScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateScheduleHandler{
		scheduler:  scheduler,
		schedules:  schedules,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
	}
}

// Handle executes the GenerateScheduleCommand. The snapshot reads happen
// outside the transaction; only the replace and outbox write are atomic.
func (h *GenerateScheduleHandler) Handle(ctx context.Context, cmd GenerateScheduleCommand) (*GenerateScheduleResult, error) {
	today := cmd.Today
	if today.IsZero() {
		today = time.Now()
	}

	built, err := h.scheduler.Build(ctx, cmd.PersonID, today, cmd.KeepLocked)
	if err != nil {
		return nil, err
	}

	schedule := domain.NewPersonSchedule(built, h.scheduler.Config().DailyCapacityHours)

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.schedules.Replace(txCtx, schedule); err != nil {
			return err
		}
		msgs, err := messagesFromEvents(schedule.DomainEvents())
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return nil, err
	}
	schedule.ClearDomainEvents()

	h.logger.InfoContext(ctx, "schedule replaced",
		"person_id", cmd.PersonID,
		"schedule_id", schedule.ID(),
		"entries", len(built.Entries),
	)

	return &GenerateScheduleResult{ScheduleID: schedule.ID(), Built: built}, nil
}

// messagesFromEvents stages an aggregate's uncommitted events for the outbox.
func messagesFromEvents(events []sharedDomain.DomainEvent) ([]*outbox.Message, error) {
	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
