// Package notification delivers assignment notices to people over an
// outbound webhook, with a circuit breaker and bearer-token auth.
package notification

import (
	"context"
	"log/slog"
	"time"
)

// AssignmentNotice is one rendered confirmation message, addressed by the
// recipient's IM id.
type AssignmentNotice struct {
	AssignmentID int64
	TaskID       int64
	PersonID     int64
	RecipientIM  string
	Title        string
	Summary      string
	PlannedHours float64
	Deadline     *time.Time
	DetailURL    string
	AcceptURL    string
	RejectURL    string
}

// DeliveryResult records the outcome of one delivery attempt. A failed
// delivery is an annotation on the assignment, never a rollback.
type DeliveryResult struct {
	Sent       bool
	StatusCode int
	Error      string
	Duration   time.Duration
}

// Notifier delivers assignment notices.
type Notifier interface {
	NotifyAssignment(ctx context.Context, notice AssignmentNotice) DeliveryResult
}

// NoopNotifier reports every notice as sent without delivering anything.
// It backs local mode and tests.
type NoopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier creates a no-op notifier.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopNotifier{logger: logger}
}

// NotifyAssignment logs the notice and reports success.
func (n *NoopNotifier) NotifyAssignment(ctx context.Context, notice AssignmentNotice) DeliveryResult {
	n.logger.DebugContext(ctx, "notification suppressed (noop notifier)",
		"assignment_id", notice.AssignmentID,
		"person_id", notice.PersonID,
	)
	return DeliveryResult{Sent: true}
}
