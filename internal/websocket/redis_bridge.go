package websocket

import (
	"context"
	"errors"
	"time"

	"messagely/internal/events"
	"messagely/pkg/logger"
)

// RedisBridge fans events published on any instance out to the clients
// connected to this one.
type RedisBridge struct {
	subscriber events.Subscriber
	hub        *Hub
	log        *logger.Logger
}

func NewRedisBridge(subscriber events.Subscriber, hub *Hub, log *logger.Logger) *RedisBridge {
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisBridge{subscriber: subscriber, hub: hub, log: log}
}

// Run subscribes to every user channel and resubscribes after a failure
// until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) {
	for {
		err := b.subscriber.Subscribe(ctx, []string{events.UserChannelPattern}, b.hub.Broadcast)
		if ctx.Err() != nil {
			return
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			b.log.Errorf("redis bridge subscription ended: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}
