package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

// ScheduleItemDTO is one row of a stored schedule.
type ScheduleItemDTO struct {
	ID       uuid.UUID
	Date     time.Time
	Kind     string
	ItemID   int64
	Name     string
	Hours    float64
	Priority float64
	Progress float64
	Locked   bool
	Deadline *time.Time
}

// ScheduleDTO is a stored schedule for display.
type ScheduleDTO struct {
	ID         uuid.UUID
	PersonID   int64
	StartDate  time.Time
	EndDate    time.Time
	DailyHours float64
	Accepted   bool
	AcceptedAt *time.Time
	Items      []ScheduleItemDTO
}

// GetScheduleQuery requests a person's latest stored schedule.
type GetScheduleQuery struct {
	PersonID int64
}

// GetScheduleHandler handles the GetScheduleQuery.
type GetScheduleHandler struct {
	schedules domain.ScheduleRepository
}

// NewGetScheduleHandler creates a new GetScheduleHandler.
func NewGetScheduleHandler(schedules domain.ScheduleRepository) *GetScheduleHandler {
	return &GetScheduleHandler{schedules: schedules}
}

// Handle executes the GetScheduleQuery. ErrScheduleNotFound passes through
// when the person has no stored schedule yet.
func (h *GetScheduleHandler) Handle(ctx context.Context, query GetScheduleQuery) (*ScheduleDTO, error) {
	schedule, err := h.schedules.Latest(ctx, query.PersonID)
	if err != nil {
		return nil, err
	}
	return toScheduleDTO(schedule), nil
}

func toScheduleDTO(schedule *domain.PersonSchedule) *ScheduleDTO {
	dto := &ScheduleDTO{
		ID:         schedule.ID(),
		PersonID:   schedule.PersonID(),
		StartDate:  schedule.StartDate(),
		EndDate:    schedule.EndDate(),
		DailyHours: schedule.DailyHours(),
		Accepted:   schedule.Accepted(),
		AcceptedAt: schedule.AcceptedAt(),
	}
	for _, item := range schedule.Items() {
		dto.Items = append(dto.Items, ScheduleItemDTO{
			ID:       item.ID,
			Date:     item.Entry.Date,
			Kind:     string(item.Entry.Key.Kind),
			ItemID:   item.Entry.Key.ID,
			Name:     item.Entry.Name,
			Hours:    item.Entry.Hours,
			Priority: item.Entry.Priority,
			Progress: item.Entry.Progress,
			Locked:   item.Entry.Locked,
			Deadline: item.Entry.Deadline,
		})
	}
	return dto
}
