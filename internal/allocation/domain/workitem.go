package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidImportance = errors.New("importance must be between 1 and 10")

// ItemKind distinguishes the two closed variants of work items.
type ItemKind string

const (
	// KindAssigned marks items handed to a person by a manager.
	KindAssigned ItemKind = "assigned"
	// KindSelf marks items a person created for themselves.
	KindSelf ItemKind = "self-directed"
)

// ItemKey identifies a work item across both kinds. It is comparable and
// used as a map key wherever per-item state is accumulated.
type ItemKey struct {
	Kind ItemKind
	ID   int64
}

func (k ItemKey) String() string {
	return fmt.Sprintf("%s/%d", k.Kind, k.ID)
}

// ItemStatus is the lifecycle state of a work item.
type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusAccepted  ItemStatus = "accepted"
	StatusRejected  ItemStatus = "rejected"
	StatusCompleted ItemStatus = "completed"
)

// IsOpen reports whether the item still consumes capacity. Rejected and
// completed items are excluded from load and scheduling.
func (s ItemStatus) IsOpen() bool {
	return s == StatusPending || s == StatusAccepted
}

const (
	// DefaultImportance applies when no importance was recorded.
	DefaultImportance = 5
	// DefaultEstimatedHours applies to items scheduled without an estimate.
	DefaultEstimatedHours = 4
)

// ValidateImportance rejects out-of-range importance values before they
// reach any computation.
func ValidateImportance(v int) error {
	if v < 1 || v > 10 {
		return ErrInvalidImportance
	}
	return nil
}

// WorkItem is an immutable snapshot of one open item belonging to a person,
// as supplied by the persistence collaborator for a single computation.
type WorkItem struct {
	Key            ItemKey
	PersonID       int64
	Name           string
	EstimatedHours float64 // 0 means no estimate was recorded
	Deadline       *time.Time
	Importance     int // manager importance for assigned items, own for self items; 0 means unset
	OwnImportance  int // the person's own rating on an assigned item; 0 means unset
	RequiredSkills []int64
	Origin         time.Time // assignment time or creation time
	Status         ItemStatus
}

// EffectiveImportance blends manager- and person-assigned importance.
// Assigned items average the two when both exist; self items fall back to
// the default when unrated.
func (w WorkItem) EffectiveImportance() float64 {
	base := w.Importance
	if base == 0 {
		base = DefaultImportance
	}
	if w.Key.Kind == KindAssigned && w.OwnImportance != 0 {
		return (float64(base) + float64(w.OwnImportance)) / 2
	}
	return float64(base)
}

// SchedulableHours returns the estimate used by the day scheduler, falling
// back to the default for items without one.
func (w WorkItem) SchedulableHours() float64 {
	if w.EstimatedHours > 0 {
		return w.EstimatedHours
	}
	return DefaultEstimatedHours
}

// Task is an unassigned piece of work as seen by the auto-assignment
// planner, before it belongs to anyone.
type Task struct {
	ID             int64
	Name           string
	Description    string
	EstimatedHours float64
	Deadline       *time.Time
	Importance     int
	RequiredSkills []int64
	CreatedAt      time.Time
}

// EffectiveImportance returns the recorded importance or the default.
func (t Task) EffectiveImportance() int {
	if t.Importance == 0 {
		return DefaultImportance
	}
	return t.Importance
}
