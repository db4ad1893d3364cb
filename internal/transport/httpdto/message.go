package httpdto

import "messagely/internal/domain/message"

// SendMessageRequest is used for POST /messages. The sender is always the
// authenticated caller.
type SendMessageRequest struct {
	ToUsername string `json:"to_username" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

// MessagesResponse wraps the inbox and outbox listings.
type MessagesResponse[T any] struct {
	Messages []T `json:"messages"`
}

type SentMessageDTO struct {
	ID     int64      `json:"id"`
	Body   string     `json:"body"`
	SentAt string     `json:"sent_at"`
	ReadAt *string    `json:"read_at"`
	ToUser ContactDTO `json:"to_user"`
}

type ReceivedMessageDTO struct {
	ID       int64      `json:"id"`
	Body     string     `json:"body"`
	SentAt   string     `json:"sent_at"`
	ReadAt   *string    `json:"read_at"`
	FromUser ContactDTO `json:"from_user"`
}

// MessageDetailResponse is returned by GET /messages/:id
type MessageDetailResponse struct {
	Message MessageDetailDTO `json:"message"`
}

type MessageDetailDTO struct {
	ID       int64      `json:"id"`
	Body     string     `json:"body"`
	SentAt   string     `json:"sent_at"`
	ReadAt   *string    `json:"read_at"`
	FromUser ContactDTO `json:"from_user"`
	ToUser   ContactDTO `json:"to_user"`
}

// MessageCreatedResponse is returned by POST /messages
type MessageCreatedResponse struct {
	Message MessageDTO `json:"message"`
}

type MessageDTO struct {
	ID           int64  `json:"id"`
	FromUsername string `json:"from_username"`
	ToUsername   string `json:"to_username"`
	Body         string `json:"body"`
	SentAt       string `json:"sent_at"`
}

// MessageReadResponse is returned by POST /messages/:id/read
type MessageReadResponse struct {
	MessageRead ReadReceiptDTO `json:"messageRead"`
}

type ReadReceiptDTO struct {
	ID     int64  `json:"id"`
	ReadAt string `json:"read_at"`
}

func FromMessage(m message.Message) MessageDTO {
	return MessageDTO{
		ID:           m.ID,
		FromUsername: m.FromUsername,
		ToUsername:   m.ToUsername,
		Body:         m.Body,
		SentAt:       formatTime(m.SentAt),
	}
}

func FromDetail(d message.Detail) MessageDetailDTO {
	return MessageDetailDTO{
		ID:       d.ID,
		Body:     d.Body,
		SentAt:   formatTime(d.SentAt),
		ReadAt:   formatNullTime(d.ReadAt),
		FromUser: FromContact(d.FromUser),
		ToUser:   FromContact(d.ToUser),
	}
}

func FromSentSlice(msgs []message.Sent) []SentMessageDTO {
	dtos := make([]SentMessageDTO, len(msgs))
	for i, m := range msgs {
		dtos[i] = SentMessageDTO{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: formatTime(m.SentAt),
			ReadAt: formatNullTime(m.ReadAt),
			ToUser: FromContact(m.ToUser),
		}
	}
	return dtos
}

func FromReceivedSlice(msgs []message.Received) []ReceivedMessageDTO {
	dtos := make([]ReceivedMessageDTO, len(msgs))
	for i, m := range msgs {
		dtos[i] = ReceivedMessageDTO{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   formatTime(m.SentAt),
			ReadAt:   formatNullTime(m.ReadAt),
			FromUser: FromContact(m.FromUser),
		}
	}
	return dtos
}

func FromReadReceipt(r message.ReadReceipt) ReadReceiptDTO {
	return ReadReceiptDTO{ID: r.ID, ReadAt: formatTime(r.ReadAt)}
}
