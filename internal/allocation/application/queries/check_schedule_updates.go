package queries

import (
	"context"
	"errors"
	"time"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

// ScheduleUpdatesDTO reports whether a stored schedule has gone stale.
// Staleness is advisory: regeneration stays a human decision.
type ScheduleUpdatesDTO struct {
	HasSchedule bool
	Stale       bool
	Baseline    time.Time
	NewItems    int
	NewBlocks   int
}

// CheckScheduleUpdatesQuery asks whether new open items or unavailable
// blocks arrived after the schedule's baseline (acceptance time when
// accepted, creation time otherwise).
type CheckScheduleUpdatesQuery struct {
	PersonID int64
}

// CheckScheduleUpdatesHandler handles the CheckScheduleUpdatesQuery.
type CheckScheduleUpdatesHandler struct {
	schedules domain.ScheduleRepository
	items     domain.WorkItemRepository
	blocks    domain.UnavailableRepository
}

// NewCheckScheduleUpdatesHandler creates a new CheckScheduleUpdatesHandler.
func NewCheckScheduleUpdatesHandler(
	schedules domain.ScheduleRepository,
	items domain.WorkItemRepository,
	blocks domain.UnavailableRepository,
) *CheckScheduleUpdatesHandler {
	return &CheckScheduleUpdatesHandler{schedules: schedules, items: items, blocks: blocks}
}

// Handle executes the CheckScheduleUpdatesQuery. A person without a stored
// schedule is never stale; there is nothing to regenerate.
func (h *CheckScheduleUpdatesHandler) Handle(ctx context.Context, query CheckScheduleUpdatesQuery) (*ScheduleUpdatesDTO, error) {
	schedule, err := h.schedules.Latest(ctx, query.PersonID)
	if errors.Is(err, domain.ErrScheduleNotFound) {
		return &ScheduleUpdatesDTO{}, nil
	}
	if err != nil {
		return nil, err
	}

	baseline := schedule.BaselineTime()

	newItems, err := h.items.OpenItemsSince(ctx, query.PersonID, baseline)
	if err != nil {
		return nil, err
	}
	newBlocks, err := h.blocks.BlocksSince(ctx, query.PersonID, baseline)
	if err != nil {
		return nil, err
	}

	return &ScheduleUpdatesDTO{
		HasSchedule: true,
		Stale:       newItems > 0 || newBlocks > 0,
		Baseline:    baseline,
		NewItems:    newItems,
		NewBlocks:   newBlocks,
	}, nil
}
