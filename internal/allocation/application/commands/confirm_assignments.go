// Package commands hosts the write-side application handlers. Each handler
// wraps its aggregate changes and outbox writes in one unit of work.
package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/notification"
	sharedApplication "github.com/taskpilot/taskpilot/internal/shared/application"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/outbox"
)

// ConfirmPair is one planner decision the manager approved.
type ConfirmPair struct {
	TaskID   int64
	PersonID int64
}

// ConfirmAssignmentsCommand turns approved pairs into durable assignments.
type ConfirmAssignmentsCommand struct {
	Pairs          []ConfirmPair
	AssignedByID   string
	AssignedByName string
}

// ConfirmedAssignment reports one created record with its delivery outcome.
type ConfirmedAssignment struct {
	AssignmentID      int64
	TaskID            int64
	PersonID          int64
	TaskName          string
	NotificationSent  bool
	NotificationError string
}

// ConfirmAssignmentsResult is the full confirmation outcome.
type ConfirmAssignmentsResult struct {
	Confirmed []ConfirmedAssignment
}

// ConfirmAssignmentsHandler creates assignment records, stages their events
// in the outbox, and fires the notification gateway per pair. Notification
// happens after commit; a delivery failure is recorded on the assignment and
// never rolls the confirmation back.
type ConfirmAssignmentsHandler struct {
	assignments domain.AssignmentRepository
	tasks       domain.TaskRepository
	people      domain.PersonRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	notifier    notification.Notifier
	renderer    *notification.Renderer
	logger      *slog.Logger
}

// NewConfirmAssignmentsHandler creates a new ConfirmAssignmentsHandler.
func NewConfirmAssignmentsHandler(
	assignments domain.AssignmentRepository,
	tasks domain.TaskRepository,
	people domain.PersonRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	notifier notification.Notifier,
	renderer *notification.Renderer,
	logger *slog.Logger,
) *ConfirmAssignmentsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfirmAssignmentsHandler{
		assignments: assignments,
		tasks:       tasks,
		people:      people,
		outboxRepo:  outboxRepo,
		uow:         uow,
		notifier:    notifier,
		renderer:    renderer,
		logger:      logger,
	}
}

// Handle executes the ConfirmAssignmentsCommand.
func (h *ConfirmAssignmentsHandler) Handle(ctx context.Context, cmd ConfirmAssignmentsCommand) (*ConfirmAssignmentsResult, error) {
	result := &ConfirmAssignmentsResult{}
	created := make([]*domain.Assignment, 0, len(cmd.Pairs))
	tasksByID := make(map[int64]domain.Task, len(cmd.Pairs))

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var msgs []*outbox.Message
		for _, pair := range cmd.Pairs {
			task, err := h.tasks.FindByID(txCtx, pair.TaskID)
			if err != nil {
				return err
			}
			tasksByID[task.ID] = task

			assignment := &domain.Assignment{
				TaskID:         pair.TaskID,
				PersonID:       pair.PersonID,
				AssignedByID:   cmd.AssignedByID,
				AssignedByName: cmd.AssignedByName,
				AssignedAt:     time.Now().UTC(),
				Status:         domain.StatusPending,
			}
			if err := h.assignments.Create(txCtx, assignment); err != nil {
				return err
			}
			created = append(created, assignment)

			msg, err := outbox.NewMessage(domain.NewAssignmentConfirmed(
				assignment.ID, task.ID, pair.PersonID, task.Name,
			))
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if len(msgs) == 0 {
			return nil
		}
		return h.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return nil, err
	}

	for _, assignment := range created {
		task := tasksByID[assignment.TaskID]
		h.notify(ctx, assignment, task)
		result.Confirmed = append(result.Confirmed, ConfirmedAssignment{
			AssignmentID:      assignment.ID,
			TaskID:            assignment.TaskID,
			PersonID:          assignment.PersonID,
			TaskName:          task.Name,
			NotificationSent:  assignment.NotificationSent,
			NotificationError: assignment.NotificationError,
		})
	}

	h.logger.InfoContext(ctx, "assignments confirmed",
		"count", len(result.Confirmed),
		"assigned_by", cmd.AssignedByID,
	)

	return result, nil
}

func (h *ConfirmAssignmentsHandler) notify(ctx context.Context, assignment *domain.Assignment, task domain.Task) {
	person, err := h.people.FindByID(ctx, assignment.PersonID)
	if err != nil {
		assignment.RecordDelivery(false, "recipient lookup failed: "+err.Error())
	} else {
		notice := h.renderer.Render(notification.NoticeInput{
			AssignmentID:   assignment.ID,
			TaskID:         task.ID,
			PersonID:       person.ID,
			RecipientIM:    person.IMID,
			TaskName:       task.Name,
			TaskSummary:    task.Description,
			AssignedByName: assignment.AssignedByName,
			PlannedHours:   task.EstimatedHours,
			Deadline:       task.Deadline,
		})
		delivery := h.notifier.NotifyAssignment(ctx, notice)
		assignment.RecordDelivery(delivery.Sent, delivery.Error)
	}

	if err := h.assignments.Update(ctx, assignment); err != nil {
		h.logger.WarnContext(ctx, "failed to record delivery outcome",
			"assignment_id", assignment.ID, "error", err)
	}
}
