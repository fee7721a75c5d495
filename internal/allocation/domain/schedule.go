package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/taskpilot/taskpilot/internal/shared/domain"
)

var (
	ErrScheduleItemNotFound = errors.New("schedule item not found")
	ErrScheduleAccepted     = errors.New("schedule already accepted")
)

// PersonSchedule is the persisted result of a scheduling run for one person.
// Regeneration replaces it wholesale: unlocked items are discarded and
// recomputed, locked items are carried into the next run unchanged. The
// persistence collaborator must serialize replace operations per person.
type PersonSchedule struct {
	sharedDomain.BaseAggregateRoot
	personID   int64
	startDate  time.Time
	endDate    time.Time
	dailyHours float64
	accepted   bool
	acceptedAt *time.Time
	items      []*PersistedItem
}

// PersistedItem is one stored schedule row.
type PersistedItem struct {
	ID       uuid.UUID
	Entry    ScheduleEntry
}

// NewPersonSchedule creates a schedule aggregate from a built schedule.
func NewPersonSchedule(built BuiltSchedule, dailyHours float64) *PersonSchedule {
	s := &PersonSchedule{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		personID:          built.PersonID,
		startDate:         built.Start,
		endDate:           built.End,
		dailyHours:        dailyHours,
	}
	for _, entry := range built.Entries {
		s.items = append(s.items, &PersistedItem{ID: uuid.New(), Entry: entry})
	}
	s.AddDomainEvent(NewScheduleGenerated(s.ID(), built.PersonID, built.Start, built.End, len(s.items)))
	return s
}

func (s *PersonSchedule) PersonID() int64        { return s.personID }
func (s *PersonSchedule) StartDate() time.Time   { return s.startDate }
func (s *PersonSchedule) EndDate() time.Time     { return s.endDate }
func (s *PersonSchedule) DailyHours() float64    { return s.dailyHours }
func (s *PersonSchedule) Accepted() bool         { return s.accepted }
func (s *PersonSchedule) AcceptedAt() *time.Time { return s.acceptedAt }
func (s *PersonSchedule) Items() []*PersistedItem { return s.items }

// Accept marks the schedule as accepted by its owner.
func (s *PersonSchedule) Accept() error {
	if s.accepted {
		return ErrScheduleAccepted
	}
	now := time.Now().UTC()
	s.accepted = true
	s.acceptedAt = &now
	s.Touch()
	s.AddDomainEvent(NewScheduleAccepted(s.ID(), s.personID))
	return nil
}

// SetLocked pins or unpins the given items. Unknown ids are ignored; the
// returned count says how many rows changed.
func (s *PersonSchedule) SetLocked(itemIDs []uuid.UUID, locked bool) int {
	wanted := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}
	changed := 0
	for _, item := range s.items {
		if _, ok := wanted[item.ID]; !ok {
			continue
		}
		if item.Entry.Locked != locked {
			item.Entry.Locked = locked
			changed++
		}
	}
	if changed > 0 {
		s.Touch()
	}
	return changed
}

// LockedEntries extracts the pinned rows in the carry-forward shape the
// scheduler consumes.
func (s *PersonSchedule) LockedEntries() []LockedEntry {
	var locked []LockedEntry
	for _, item := range s.items {
		if !item.Entry.Locked {
			continue
		}
		locked = append(locked, LockedEntry{
			Date:     item.Entry.Date,
			Key:      item.Entry.Key,
			Name:     item.Entry.Name,
			Hours:    item.Entry.Hours,
			Deadline: item.Entry.Deadline,
		})
	}
	return locked
}

// BaselineTime is the reference point for staleness checks: the acceptance
// time when accepted, otherwise the creation time.
func (s *PersonSchedule) BaselineTime() time.Time {
	if s.accepted && s.acceptedAt != nil {
		return *s.acceptedAt
	}
	return s.CreatedAt()
}

// RehydratePersonSchedule recreates a schedule from persisted state.
func RehydratePersonSchedule(
	id uuid.UUID,
	personID int64,
	startDate, endDate time.Time,
	dailyHours float64,
	accepted bool,
	acceptedAt *time.Time,
	items []*PersistedItem,
	createdAt, updatedAt time.Time,
) *PersonSchedule {
	base := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &PersonSchedule{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(base),
		personID:          personID,
		startDate:         startDate,
		endDate:           endDate,
		dailyHours:        dailyHours,
		accepted:          accepted,
		acceptedAt:        acceptedAt,
		items:             items,
	}
}
