package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// Bus wraps payloads in an Envelope and hands them to a Publisher.
type Bus struct {
	publisher Publisher
}

func NewBus(publisher Publisher) *Bus {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Bus{publisher: publisher}
}

func (b *Bus) Emit(ctx context.Context, channel, eventType string, payload any) error {
	env, err := NewEnvelope(eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	if err := b.publisher.Publish(ctx, channel, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}
