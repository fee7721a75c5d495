// Package consumers holds the allocation context's event bus subscribers.
package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/taskpilot/taskpilot/internal/allocation/application/services"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/eventbus"
)

// WorkloadInvalidator drops a person's cached workload snapshots when an
// event changes their open work. The next report recomputes from source.
type WorkloadInvalidator struct {
	workload *services.WorkloadService
	logger   *slog.Logger
}

// NewWorkloadInvalidator creates the consumer.
func NewWorkloadInvalidator(workload *services.WorkloadService, logger *slog.Logger) *WorkloadInvalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkloadInvalidator{workload: workload, logger: logger}
}

// EventTypes returns the routing keys that affect a person's workload.
func (c *WorkloadInvalidator) EventTypes() []string {
	return []string{domain.RoutingKeyAssignmentConfirmed}
}

// Handle invalidates the assignee's snapshots. An unparseable payload is
// logged and dropped; requeueing would never succeed.
func (c *WorkloadInvalidator) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload struct {
		PersonID int64
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		c.logger.WarnContext(ctx, "unparseable event payload dropped",
			"routing_key", event.RoutingKey, "event_id", event.EventID, "error", err)
		return nil
	}
	if payload.PersonID == 0 {
		return nil
	}

	c.workload.Invalidate(ctx, payload.PersonID)
	c.logger.InfoContext(ctx, "workload snapshots invalidated",
		"person_id", payload.PersonID, "routing_key", event.RoutingKey)
	return nil
}
