package eventbus

import "context"

// Publisher sends serialized domain events to a message broker.
type Publisher interface {
	// Publish sends a payload under the given routing key.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close releases the broker connection.
	Close() error
}
