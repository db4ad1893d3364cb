package events

import "context"

type Subscriber interface {
	Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NopPublisher drops every event. Used when redis is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) error { return nil }
