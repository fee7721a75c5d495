package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConsumer struct {
	types   []string
	handled []*ConsumedEvent
	err     error
}

func (s *stubConsumer) EventTypes() []string { return s.types }

func (s *stubConsumer) Handle(_ context.Context, event *ConsumedEvent) error {
	s.handled = append(s.handled, event)
	return s.err
}

func TestConsumerRegistry_Register(t *testing.T) {
	registry := NewConsumerRegistry(nil)

	consumer := &stubConsumer{types: []string{
		"allocation.assignment.confirmed",
		"allocation.schedule.generated",
	}}
	registry.Register(consumer)

	assert.Equal(t, 2, registry.ConsumerCount())
	assert.Len(t, registry.Consumers("allocation.assignment.confirmed"), 1)
	assert.Empty(t, registry.Consumers("allocation.schedule.accepted"))
	assert.ElementsMatch(t,
		[]string{"allocation.assignment.confirmed", "allocation.schedule.generated"},
		registry.EventTypes())
}

func TestConsumerRegistry_Dispatch(t *testing.T) {
	registry := NewConsumerRegistry(nil)

	a := &stubConsumer{types: []string{"allocation.assignment.confirmed"}}
	b := &stubConsumer{types: []string{"allocation.assignment.confirmed"}}
	registry.Register(a)
	registry.Register(b)

	event := &ConsumedEvent{
		EventID:    uuid.New(),
		RoutingKey: "allocation.assignment.confirmed",
	}
	require.NoError(t, registry.Dispatch(context.Background(), event))
	assert.Len(t, a.handled, 1)
	assert.Len(t, b.handled, 1)
}

func TestConsumerRegistry_DispatchNoConsumers(t *testing.T) {
	registry := NewConsumerRegistry(nil)
	event := &ConsumedEvent{RoutingKey: "allocation.schedule.accepted"}
	assert.NoError(t, registry.Dispatch(context.Background(), event))
}

func TestConsumerRegistry_DispatchContinuesPastFailure(t *testing.T) {
	registry := NewConsumerRegistry(nil)

	failing := &stubConsumer{
		types: []string{"allocation.schedule.generated"},
		err:   errors.New("boom"),
	}
	healthy := &stubConsumer{types: []string{"allocation.schedule.generated"}}
	registry.Register(failing)
	registry.Register(healthy)

	event := &ConsumedEvent{RoutingKey: "allocation.schedule.generated"}
	err := registry.Dispatch(context.Background(), event)
	assert.Error(t, err)
	assert.Len(t, healthy.handled, 1, "failure must not block other consumers")
}
