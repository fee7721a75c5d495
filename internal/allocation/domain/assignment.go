package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidStatusTransition = errors.New("invalid assignment status transition")

// Assignment is the durable record pairing a task with a person. Identity is
// numeric, assigned by the persistence collaborator on create.
type Assignment struct {
	ID             int64
	TaskID         int64
	PersonID       int64
	AssignedByID   string
	AssignedByName string
	AssignedAt     time.Time
	Status         ItemStatus
	OwnImportance  int // the assignee's own 1..10 rating; 0 means unset

	// NotificationSent and NotificationError record the delivery outcome of
	// the confirmation notice. Delivery failure never invalidates the
	// assignment.
	NotificationSent  bool
	NotificationError string
}

// Accept moves a pending assignment to accepted.
func (a *Assignment) Accept() error {
	return a.transition(StatusPending, StatusAccepted)
}

// Reject moves a pending assignment to rejected, closing it.
func (a *Assignment) Reject() error {
	return a.transition(StatusPending, StatusRejected)
}

// Complete moves an accepted assignment to completed.
func (a *Assignment) Complete() error {
	return a.transition(StatusAccepted, StatusCompleted)
}

// RateImportance records the assignee's own importance rating.
func (a *Assignment) RateImportance(v int) error {
	if err := ValidateImportance(v); err != nil {
		return err
	}
	a.OwnImportance = v
	return nil
}

// RecordDelivery stores the notification outcome as a non-fatal annotation.
func (a *Assignment) RecordDelivery(sent bool, deliveryErr string) {
	a.NotificationSent = sent
	a.NotificationError = deliveryErr
}

func (a *Assignment) transition(from, to ItemStatus) error {
	if a.Status != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, a.Status, to)
	}
	a.Status = to
	return nil
}
