package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskpilot/taskpilot/internal/allocation/domain"
)

// InterruptionDTO is one recorded pause of a session.
type InterruptionDTO struct {
	PausedAt  time.Time
	ResumedAt *time.Time
	Reason    string
	Minutes   float64
}

// SessionDTO is one work session for display.
type SessionDTO struct {
	ID             int64
	ScheduleItemID uuid.UUID
	Kind           string
	ItemID         int64
	Name           string
	Date           time.Time
	PlannedHours   float64
	Status         string
	StartedAt      *time.Time
	CompletedAt    *time.Time
	WorkedHours    float64
	Interruptions  []InterruptionDTO
}

// historyLimit caps how far back the session history reaches.
const historyLimit = 50

// SessionHistoryQuery lists past sessions, optionally narrowed to one day
// or one status.
type SessionHistoryQuery struct {
	PersonID int64
	Date     *time.Time
	Status   string
}

// SessionHistoryHandler handles the SessionHistoryQuery.
type SessionHistoryHandler struct {
	sessions domain.WorkSessionRepository
}

// NewSessionHistoryHandler creates a new SessionHistoryHandler.
func NewSessionHistoryHandler(sessions domain.WorkSessionRepository) *SessionHistoryHandler {
	return &SessionHistoryHandler{sessions: sessions}
}

// Handle executes the SessionHistoryQuery, newest first.
func (h *SessionHistoryHandler) Handle(ctx context.Context, query SessionHistoryQuery) ([]SessionDTO, error) {
	sessions, err := h.sessions.History(ctx, query.PersonID, query.Date,
		domain.SessionStatus(query.Status), historyLimit)
	if err != nil {
		return nil, err
	}
	dtos := make([]SessionDTO, 0, len(sessions))
	for _, s := range sessions {
		dtos = append(dtos, toSessionDTO(s))
	}
	return dtos, nil
}

func toSessionDTO(s *domain.WorkSession) SessionDTO {
	dto := SessionDTO{
		ID:             s.ID,
		ScheduleItemID: s.ScheduleItemID,
		Kind:           string(s.Key.Kind),
		ItemID:         s.Key.ID,
		Name:           s.Name,
		Date:           s.Date,
		PlannedHours:   s.PlannedHours,
		Status:         string(s.Status),
		StartedAt:      s.StartedAt,
		CompletedAt:    s.CompletedAt,
		WorkedHours:    s.WorkedHours(),
	}
	for _, in := range s.Interruptions {
		dto.Interruptions = append(dto.Interruptions, InterruptionDTO{
			PausedAt:  in.PausedAt,
			ResumedAt: in.ResumedAt,
			Reason:    in.Reason,
			Minutes:   float64(in.DurationSeconds) / 60,
		})
	}
	return dto
}

// WorkCardDTO is one schedule row ready to be worked on. SessionID is nil
// until a session has been started for the row.
type WorkCardDTO struct {
	SessionID      *int64
	ScheduleItemID uuid.UUID
	Kind           string
	ItemID         int64
	Name           string
	Date           time.Time
	PlannedHours   float64
	Status         string
	WorkedHours    float64
	DueToday       bool
	Deadline       *time.Time
}

// TodayWorkDTO is the working view over the accepted schedule: today's rows
// plus the next two workdays, merged with any sessions already tracked.
type TodayWorkDTO struct {
	Today           time.Time
	Dates           []time.Time
	HasSchedule     bool
	NeedsAcceptance bool
	TodayTasks      []WorkCardDTO
	Upcoming        []WorkCardDTO
}

// TodayWorkQuery requests the working view for one person.
type TodayWorkQuery struct {
	PersonID int64
	Today    time.Time
}

// TodayWorkHandler handles the TodayWorkQuery.
type TodayWorkHandler struct {
	schedules domain.ScheduleRepository
	sessions  domain.WorkSessionRepository
}

// NewTodayWorkHandler creates a new TodayWorkHandler.
func NewTodayWorkHandler(schedules domain.ScheduleRepository, sessions domain.WorkSessionRepository) *TodayWorkHandler {
	return &TodayWorkHandler{schedules: schedules, sessions: sessions}
}

// Handle executes the TodayWorkQuery. Time tracking only makes sense against
// a plan the person has committed to, so the view stays empty until the
// latest schedule is accepted.
func (h *TodayWorkHandler) Handle(ctx context.Context, query TodayWorkQuery) (*TodayWorkDTO, error) {
	today := domain.DayOf(query.Today)
	days := append([]time.Time{today}, domain.NextWorkdays(today.AddDate(0, 0, 1), 2)...)
	dto := &TodayWorkDTO{Today: today, Dates: days}

	schedule, err := h.schedules.Latest(ctx, query.PersonID)
	if errors.Is(err, domain.ErrScheduleNotFound) {
		return dto, nil
	}
	if err != nil {
		return nil, err
	}
	dto.HasSchedule = true
	if !schedule.Accepted() {
		dto.NeedsAcceptance = true
		return dto, nil
	}

	sessions, err := h.sessions.ForDays(ctx, query.PersonID, days)
	if err != nil {
		return nil, err
	}
	byRow := make(map[string]*domain.WorkSession, len(sessions))
	for _, s := range sessions {
		byRow[rowKey(s.Key, s.Date)] = s
	}

	wanted := make(map[string]bool, len(days))
	for _, day := range days {
		wanted[domain.DayKey(day)] = true
	}

	for _, item := range schedule.Items() {
		if !wanted[domain.DayKey(item.Entry.Date)] {
			continue
		}
		card := WorkCardDTO{
			ScheduleItemID: item.ID,
			Kind:           string(item.Entry.Key.Kind),
			ItemID:         item.Entry.Key.ID,
			Name:           item.Entry.Name,
			Date:           item.Entry.Date,
			PlannedHours:   item.Entry.Hours,
			Status:         string(domain.SessionPending),
			DueToday:       dueToday(schedule, item, today),
			Deadline:       item.Entry.Deadline,
		}
		if s, ok := byRow[rowKey(item.Entry.Key, item.Entry.Date)]; ok {
			card.SessionID = &s.ID
			card.Status = string(s.Status)
			card.WorkedHours = s.WorkedHours()
		}
		if item.Entry.Date.Equal(today) {
			dto.TodayTasks = append(dto.TodayTasks, card)
		} else {
			dto.Upcoming = append(dto.Upcoming, card)
		}
	}
	return dto, nil
}

func rowKey(key domain.ItemKey, date time.Time) string {
	return fmt.Sprintf("%s/%s", key, domain.DayKey(date))
}

// dueToday reports whether the row is the item's last chance: its deadline
// does not reach past today and no later row of the same item is scheduled.
func dueToday(schedule *domain.PersonSchedule, item *domain.PersistedItem, today time.Time) bool {
	due := true
	if d := item.Entry.Deadline; d != nil {
		due = !d.After(today)
	}
	for _, other := range schedule.Items() {
		if other.Entry.Key == item.Entry.Key && other.Entry.Date.After(item.Entry.Date) {
			return false
		}
	}
	return due
}
