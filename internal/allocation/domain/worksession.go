package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionAlreadyWorking   = errors.New("session already in progress")
	ErrSessionNotWorking       = errors.New("session is not in progress")
	ErrSessionNotPaused        = errors.New("session is not paused")
	ErrSessionCompleted        = errors.New("session already completed")
	ErrInterruptReasonRequired = errors.New("interruption reason is required")
)

// OtherSessionActiveError refuses to start or resume a session while a
// different one is working. A person works on one thing at a time; the
// blocking task is named so the caller can say which one.
type OtherSessionActiveError struct {
	TaskName string
}

func (e *OtherSessionActiveError) Error() string {
	return fmt.Sprintf("finish or pause the current task first: %s", e.TaskName)
}

// SessionStatus is the lifecycle state of a work session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionWorking   SessionStatus = "working"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
)

// Interruption records one pause of a working session. ResumedAt stays nil
// while the pause is still open.
type Interruption struct {
	PausedAt        time.Time
	ResumedAt       *time.Time
	Reason          string
	DurationSeconds int64
}

// WorkSession tracks the time actually spent on one schedule row. Hours per
// row are planned by the scheduler; the session accumulates worked seconds
// across working stretches, with every pause recorded as an interruption.
// All transitions take the current time from the caller.
type WorkSession struct {
	ID             int64
	PersonID       int64
	ScheduleItemID uuid.UUID
	Key            ItemKey
	Name           string
	Date           time.Time
	PlannedHours   float64
	Status         SessionStatus
	StartedAt      *time.Time
	CompletedAt    *time.Time
	WorkedSeconds  int64
	Interruptions  []Interruption
	CreatedAt      time.Time
}

// NewWorkSession creates a session that starts working immediately.
func NewWorkSession(personID int64, scheduleItemID uuid.UUID, key ItemKey, name string, date time.Time, plannedHours float64, now time.Time) *WorkSession {
	return &WorkSession{
		PersonID:       personID,
		ScheduleItemID: scheduleItemID,
		Key:            key,
		Name:           name,
		Date:           DayOf(date),
		PlannedHours:   plannedHours,
		Status:         SessionWorking,
		StartedAt:      &now,
		CreatedAt:      now,
	}
}

// Start moves a pending session to working.
func (s *WorkSession) Start(now time.Time) error {
	switch s.Status {
	case SessionWorking:
		return ErrSessionAlreadyWorking
	case SessionPaused:
		return ErrSessionNotPaused
	case SessionCompleted:
		return ErrSessionCompleted
	}
	s.Status = SessionWorking
	s.StartedAt = &now
	return nil
}

// Pause interrupts a working session. The worked stretch since the last
// resume is banked and an open interruption is recorded with the reason.
func (s *WorkSession) Pause(now time.Time, reason string) error {
	if s.Status != SessionWorking {
		return ErrSessionNotWorking
	}
	if reason == "" {
		return ErrInterruptReasonRequired
	}
	s.bankStretch(now)
	s.Interruptions = append(s.Interruptions, Interruption{
		PausedAt: now,
		Reason:   reason,
	})
	s.Status = SessionPaused
	return nil
}

// Resume continues a paused session, closing its open interruption.
func (s *WorkSession) Resume(now time.Time) error {
	if s.Status != SessionPaused {
		return ErrSessionNotPaused
	}
	for i := len(s.Interruptions) - 1; i >= 0; i-- {
		if s.Interruptions[i].ResumedAt == nil {
			resumed := now
			s.Interruptions[i].ResumedAt = &resumed
			s.Interruptions[i].DurationSeconds = int64(now.Sub(s.Interruptions[i].PausedAt).Seconds())
			break
		}
	}
	s.Status = SessionWorking
	return nil
}

// Complete closes the session from any non-completed state. A still-working
// session banks its final stretch first.
func (s *WorkSession) Complete(now time.Time) error {
	if s.Status == SessionCompleted {
		return ErrSessionCompleted
	}
	if s.Status == SessionWorking {
		s.bankStretch(now)
	}
	s.Status = SessionCompleted
	s.CompletedAt = &now
	return nil
}

// AddWorkedSeconds banks externally measured time while working, for
// callers that track the running stretch themselves.
func (s *WorkSession) AddWorkedSeconds(seconds int64) error {
	if s.Status != SessionWorking {
		return ErrSessionNotWorking
	}
	s.WorkedSeconds += seconds
	return nil
}

// bankStretch adds the working time since the last resume, or since the
// start when the session was never paused.
func (s *WorkSession) bankStretch(now time.Time) {
	if s.StartedAt == nil {
		return
	}
	since := *s.StartedAt
	for i := len(s.Interruptions) - 1; i >= 0; i-- {
		if s.Interruptions[i].ResumedAt != nil {
			since = *s.Interruptions[i].ResumedAt
			break
		}
	}
	s.WorkedSeconds += int64(now.Sub(since).Seconds())
}

// WorkedHours converts the banked seconds to hours.
func (s *WorkSession) WorkedHours() float64 {
	return float64(s.WorkedSeconds) / 3600
}

// SessionStats summarizes a completed session against its plan.
type SessionStats struct {
	PlannedHours        float64
	WorkedHours         float64
	Efficiency          float64 // percent, planned over worked
	Interruptions       int
	InterruptionMinutes float64
}

// Stats computes the plan-versus-actual summary. A session with no banked
// time counts as fully efficient rather than dividing by zero.
func (s *WorkSession) Stats() SessionStats {
	worked := s.WorkedHours()
	efficiency := 100.0
	if worked > 0 {
		efficiency = round1(s.PlannedHours / worked * 100)
	}
	var interruptedSeconds int64
	for _, in := range s.Interruptions {
		interruptedSeconds += in.DurationSeconds
	}
	return SessionStats{
		PlannedHours:        s.PlannedHours,
		WorkedHours:         round2(worked),
		Efficiency:          efficiency,
		Interruptions:       len(s.Interruptions),
		InterruptionMinutes: round1(float64(interruptedSeconds) / 60),
	}
}
