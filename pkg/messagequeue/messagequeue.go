package messagequeue

import "context"

// MessageQueue defines the interface for message queue services.
type MessageQueue interface {
	Publish(ctx context.Context, queueName string, body []byte) error
	// Consume delivers messages to handler until ctx is done or the
	// delivery channel closes. A handler error nacks the message without
	// requeue.
	Consume(ctx context.Context, queueName string, handler func(ctx context.Context, body []byte) error) error
	Close() error
}
