package events

import "time"

const (
	EventTypeMessageSent = "message.sent"
	EventTypeMessageRead = "message.read"
)

// MessageSentEvent is delivered to the recipient's channel.
type MessageSentEvent struct {
	MessageID    int64     `json:"message_id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sent_at"`
}

// MessageReadEvent is delivered to the sender's channel.
type MessageReadEvent struct {
	MessageID    int64     `json:"message_id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	ReadAt       time.Time `json:"read_at"`
}
