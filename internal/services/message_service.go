package services

import (
	"context"
	"fmt"
	"strings"

	"messagely/internal/domain/message"
	"messagely/internal/events"
	"messagely/internal/metrics"
	"messagely/internal/repository"
	messagely_errors "messagely/pkg/errors"
	"messagely/pkg/logger"

	"go.uber.org/zap"
)

type MessageService struct {
	repo repository.MessageRepository
	bus  *events.Bus
	log  *logger.Logger
}

func NewMessageService(repo repository.MessageRepository, bus *events.Bus, log *logger.Logger) *MessageService {
	if bus == nil {
		bus = events.NewBus(nil)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &MessageService{repo: repo, bus: bus, log: log}
}

type SendInput struct {
	FromUsername string
	ToUsername   string
	Body         string
}

// Send stores a message from the authenticated caller and notifies the
// recipient. A failed notification is logged, never returned.
func (s *MessageService) Send(ctx context.Context, in SendInput) (message.Message, error) {
	if in.FromUsername == "" {
		return message.Message{}, messagely_errors.ErrUnauthorized
	}
	to := strings.TrimSpace(in.ToUsername)
	if to == "" {
		return message.Message{}, fmt.Errorf("to_username is required: %w", messagely_errors.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Body) == "" {
		return message.Message{}, fmt.Errorf("body is required: %w", messagely_errors.ErrInvalidInput)
	}

	m := &message.Message{
		FromUsername: in.FromUsername,
		ToUsername:   to,
		Body:         in.Body,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return message.Message{}, err
	}
	metrics.MessageSent()

	s.emit(ctx, events.UserChannel(m.ToUsername), events.EventTypeMessageSent, events.MessageSentEvent{
		MessageID:    m.ID,
		FromUsername: m.FromUsername,
		ToUsername:   m.ToUsername,
		Body:         m.Body,
		SentAt:       m.SentAt,
	})
	return *m, nil
}

// GetForUser returns the message only if username sent or received it.
func (s *MessageService) GetForUser(ctx context.Context, id int64, username string) (message.Detail, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return message.Detail{}, err
	}
	if !d.IsParticipant(username) {
		return message.Detail{}, fmt.Errorf("not authorized to view this message: %w", messagely_errors.ErrForbidden)
	}
	return d, nil
}

// MarkReadForUser lets only the recipient mark a message read and tells the
// sender the first time it happens. read_at is set once; later calls return
// the original timestamp.
func (s *MessageService) MarkReadForUser(ctx context.Context, id int64, username string) (message.ReadReceipt, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return message.ReadReceipt{}, err
	}
	if !d.IsRecipient(username) {
		return message.ReadReceipt{}, fmt.Errorf("only the recipient can mark this message read: %w", messagely_errors.ErrForbidden)
	}

	receipt, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return message.ReadReceipt{}, err
	}

	if !d.ReadAt.Valid {
		metrics.MessageRead()
		s.emit(ctx, events.UserChannel(d.FromUser.Username), events.EventTypeMessageRead, events.MessageReadEvent{
			MessageID:    receipt.ID,
			FromUsername: d.FromUser.Username,
			ToUsername:   d.ToUser.Username,
			ReadAt:       receipt.ReadAt,
		})
	}
	return receipt, nil
}

func (s *MessageService) emit(ctx context.Context, channel, eventType string, payload any) {
	if err := s.bus.Emit(ctx, channel, eventType, payload); err != nil {
		metrics.EventPublishFailed(eventType)
		s.log.ErrorCtx(ctx, "event publish failed",
			zap.String("event_type", eventType),
			zap.String("channel", channel),
			zap.Error(err),
		)
	}
}
