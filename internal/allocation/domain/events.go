package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/taskpilot/taskpilot/internal/shared/domain"
)

// Routing keys for allocation domain events.
const (
	RoutingKeyAssignmentConfirmed = "allocation.assignment.confirmed"
	RoutingKeyScheduleGenerated   = "allocation.schedule.generated"
	RoutingKeyScheduleAccepted    = "allocation.schedule.accepted"
)

// AssignmentConfirmed is published when a proposed pairing becomes a durable
// assignment record.
type AssignmentConfirmed struct {
	sharedDomain.BaseEvent
	TaskID   int64
	PersonID int64
	TaskName string
}

// NewAssignmentConfirmed creates the event.
func NewAssignmentConfirmed(assignmentID, taskID, personID int64, taskName string) *AssignmentConfirmed {
	return &AssignmentConfirmed{
		BaseEvent: sharedDomain.NewBaseEvent(strconv.FormatInt(assignmentID, 10), "assignment", RoutingKeyAssignmentConfirmed),
		TaskID:    taskID,
		PersonID:  personID,
		TaskName:  taskName,
	}
}

// ScheduleGenerated is published after a scheduling run replaces a person's
// schedule.
type ScheduleGenerated struct {
	sharedDomain.BaseEvent
	PersonID  int64
	StartDate time.Time
	EndDate   time.Time
	ItemCount int
}

// NewScheduleGenerated creates the event.
func NewScheduleGenerated(aggregateID uuid.UUID, personID int64, start, end time.Time, itemCount int) *ScheduleGenerated {
	return &ScheduleGenerated{
		BaseEvent: sharedDomain.NewBaseEvent(aggregateID.String(), "schedule", RoutingKeyScheduleGenerated),
		PersonID:  personID,
		StartDate: start,
		EndDate:   end,
		ItemCount: itemCount,
	}
}

// ScheduleAccepted is published when the owner accepts a generated schedule.
type ScheduleAccepted struct {
	sharedDomain.BaseEvent
	PersonID int64
}

// NewScheduleAccepted creates the event.
func NewScheduleAccepted(aggregateID uuid.UUID, personID int64) *ScheduleAccepted {
	return &ScheduleAccepted{
		BaseEvent: sharedDomain.NewBaseEvent(aggregateID.String(), "schedule", RoutingKeyScheduleAccepted),
		PersonID:  personID,
	}
}
