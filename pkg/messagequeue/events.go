package messagequeue

import (
	"context"
	"encoding/json"
	"fmt"

	"reliefnet-backend-go/internal/models"
)

// EventPublisher encodes domain events as JSON onto one queue.
type EventPublisher struct {
	mq    MessageQueue
	queue string
}

func NewEventPublisher(mq MessageQueue, queue string) *EventPublisher {
	return &EventPublisher{mq: mq, queue: queue}
}

func (p *EventPublisher) Publish(ctx context.Context, event models.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}
	return p.mq.Publish(ctx, p.queue, body)
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, models.Event) error { return nil }

// DecodeEvent parses a queue message body.
func DecodeEvent(body []byte) (models.Event, error) {
	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return models.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if event.Type == "" {
		return models.Event{}, fmt.Errorf("decode event: missing type")
	}
	return event, nil
}
