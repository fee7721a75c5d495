package eventbus

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	allocationDomain "github.com/taskpilot/taskpilot/internal/allocation/domain"
)

func TestInProcessEventBus_Publish(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	consumer := &stubConsumer{types: []string{"allocation.assignment.confirmed"}}
	bus.RegisterConsumer(consumer)

	payload, err := json.Marshal(ConsumedEvent{
		AggregateID:   "42",
		AggregateType: "assignment",
		RoutingKey:    "allocation.assignment.confirmed",
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), "allocation.assignment.confirmed", payload))
	require.Len(t, consumer.handled, 1)
	assert.Equal(t, "42", consumer.handled[0].AggregateID)
}

func TestInProcessEventBus_RoutingKeyFallback(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	consumer := &stubConsumer{types: []string{"allocation.schedule.generated"}}
	bus.RegisterConsumer(consumer)

	// Payload without a routing key falls back to the publish argument.
	require.NoError(t, bus.Publish(context.Background(), "allocation.schedule.generated", []byte(`{}`)))
	require.Len(t, consumer.handled, 1)
	assert.Equal(t, "allocation.schedule.generated", consumer.handled[0].RoutingKey)
}

func TestInProcessEventBus_BadPayloadDropped(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	consumer := &stubConsumer{types: []string{"allocation.schedule.generated"}}
	bus.RegisterConsumer(consumer)

	assert.NoError(t, bus.Publish(context.Background(), "allocation.schedule.generated", []byte("not json")))
	assert.Empty(t, consumer.handled)
}

func TestInProcessEventBus_PublishDomainEvent(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	consumer := &stubConsumer{types: []string{allocationDomain.RoutingKeyAssignmentConfirmed}}
	bus.RegisterConsumer(consumer)

	event := allocationDomain.NewAssignmentConfirmed(7, 3, 10, "migration")
	require.NoError(t, bus.PublishDomainEvent(context.Background(), event))
	require.Len(t, consumer.handled, 1)
	assert.Equal(t, allocationDomain.RoutingKeyAssignmentConfirmed, consumer.handled[0].RoutingKey)
}
