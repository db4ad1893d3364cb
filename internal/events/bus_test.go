package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	channel string
	payload []byte
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.channel = channel
	p.payload = payload
	return p.err
}

func TestBusEmitWrapsEnvelope(t *testing.T) {
	pub := &recordingPublisher{}
	bus := NewBus(pub)

	sentAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	err := bus.Emit(context.Background(), UserChannel("bob"), EventTypeMessageSent, MessageSentEvent{
		MessageID:    1,
		FromUsername: "alice",
		ToUsername:   "bob",
		Body:         "hi",
		SentAt:       sentAt,
	})
	require.NoError(t, err)
	assert.Equal(t, "channel:user:bob", pub.channel)

	var env Envelope
	require.NoError(t, json.Unmarshal(pub.payload, &env))
	assert.Equal(t, EventTypeMessageSent, env.EventType)
	assert.NotEmpty(t, env.ID)

	var payload MessageSentEvent
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "alice", payload.FromUsername)
	assert.Equal(t, sentAt, payload.SentAt)
}

func TestBusEmitPublishError(t *testing.T) {
	bus := NewBus(&recordingPublisher{err: errors.New("redis down")})

	err := bus.Emit(context.Background(), UserChannel("bob"), EventTypeMessageRead, MessageReadEvent{MessageID: 1})
	assert.ErrorContains(t, err, "failed to publish to channel:user:bob: redis down")
}

func TestNilPublisherIsNop(t *testing.T) {
	bus := NewBus(nil)
	assert.NoError(t, bus.Emit(context.Background(), UserChannel("bob"), EventTypeMessageRead, MessageReadEvent{}))
}

func TestUserChannelPattern(t *testing.T) {
	assert.Equal(t, "channel:user:*", UserChannelPattern)
}
