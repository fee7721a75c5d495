package consumers

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/allocation/application/services"
	"github.com/taskpilot/taskpilot/internal/allocation/domain"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/eventbus"
)

type recordingCache struct {
	mu          sync.Mutex
	invalidated []int64
}

func (c *recordingCache) Get(ctx context.Context, personID int64, windowStart time.Time) (*domain.WorkloadReport, error) {
	return nil, nil
}

func (c *recordingCache) Set(ctx context.Context, report domain.WorkloadReport) error {
	return nil
}

func (c *recordingCache) Invalidate(ctx context.Context, personID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, personID)
	return nil
}

func confirmedEvent(t *testing.T, personID int64) *eventbus.ConsumedEvent {
	t.Helper()
	payload, err := json.Marshal(struct {
		TaskID   int64
		PersonID int64
		TaskName string
	}{TaskID: 5, PersonID: personID, TaskName: "audit"})
	require.NoError(t, err)

	return &eventbus.ConsumedEvent{
		EventID:    uuid.New(),
		RoutingKey: domain.RoutingKeyAssignmentConfirmed,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

func TestWorkloadInvalidator_Handle(t *testing.T) {
	cache := &recordingCache{}
	workload := services.NewWorkloadService(nil, nil, cache, 8, nil)
	consumer := NewWorkloadInvalidator(workload, nil)

	assert.Equal(t, []string{domain.RoutingKeyAssignmentConfirmed}, consumer.EventTypes())

	require.NoError(t, consumer.Handle(context.Background(), confirmedEvent(t, 42)))
	assert.Equal(t, []int64{42}, cache.invalidated)
}

func TestWorkloadInvalidator_BadPayloadDropped(t *testing.T) {
	cache := &recordingCache{}
	workload := services.NewWorkloadService(nil, nil, cache, 8, nil)
	consumer := NewWorkloadInvalidator(workload, nil)

	event := &eventbus.ConsumedEvent{
		EventID:    uuid.New(),
		RoutingKey: domain.RoutingKeyAssignmentConfirmed,
		Payload:    json.RawMessage(`{not json`),
	}
	require.NoError(t, consumer.Handle(context.Background(), event))
	assert.Empty(t, cache.invalidated)
}

func TestWorkloadInvalidator_ZeroPersonIgnored(t *testing.T) {
	cache := &recordingCache{}
	workload := services.NewWorkloadService(nil, nil, cache, 8, nil)
	consumer := NewWorkloadInvalidator(workload, nil)

	require.NoError(t, consumer.Handle(context.Background(), confirmedEvent(t, 0)))
	assert.Empty(t, cache.invalidated)
}
