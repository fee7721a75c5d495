package commands

import (
	"context"
	"log/slog"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	sharedApplication "github.com/taskpilot/taskpilot/internal/shared/application"
)

// AssignmentLifecycleHandler applies the assignee's lifecycle responses to
// an assignment record: accept, reject, complete, and importance rating.
type AssignmentLifecycleHandler struct {
	assignments domain.AssignmentRepository
	uow         sharedApplication.UnitOfWork
	logger      *slog.Logger
}

// NewAssignmentLifecycleHandler creates a new AssignmentLifecycleHandler.
func NewAssignmentLifecycleHandler(
	assignments domain.AssignmentRepository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *AssignmentLifecycleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentLifecycleHandler{assignments: assignments, uow: uow, logger: logger}
}

// Accept moves a pending assignment to accepted.
func (h *AssignmentLifecycleHandler) Accept(ctx context.Context, assignmentID int64) error {
	return h.mutate(ctx, assignmentID, "accept", (*domain.Assignment).Accept)
}

// Reject moves a pending assignment to rejected, returning its task to the
// unassigned pool.
func (h *AssignmentLifecycleHandler) Reject(ctx context.Context, assignmentID int64) error {
	return h.mutate(ctx, assignmentID, "reject", (*domain.Assignment).Reject)
}

// Complete moves an accepted assignment to completed.
func (h *AssignmentLifecycleHandler) Complete(ctx context.Context, assignmentID int64) error {
	return h.mutate(ctx, assignmentID, "complete", (*domain.Assignment).Complete)
}

// RateImportance records the assignee's own 1..10 importance rating.
func (h *AssignmentLifecycleHandler) RateImportance(ctx context.Context, assignmentID int64, importance int) error {
	return h.mutate(ctx, assignmentID, "rate", func(a *domain.Assignment) error {
		return a.RateImportance(importance)
	})
}

func (h *AssignmentLifecycleHandler) mutate(ctx context.Context, assignmentID int64, action string, fn func(*domain.Assignment) error) error {
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		assignment, err := h.assignments.FindByID(txCtx, assignmentID)
		if err != nil {
			return err
		}
		if err := fn(assignment); err != nil {
			return err
		}
		return h.assignments.Update(txCtx, assignment)
	})
	if err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "assignment updated",
		"assignment_id", assignmentID,
		"action", action,
	)
	return nil
}
