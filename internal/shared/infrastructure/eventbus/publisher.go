// Package eventbus delivers outbox messages to the message broker.
package eventbus

import "context"

// Publisher hands a serialized event to the broker under its routing
// key (e.g. "booking.confirmed"). Implementations must be safe for
// concurrent use by the outbox processor.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close releases the broker connection.
	Close() error
}
