package repository

import (
	"context"
	"time"

	"messagely/internal/domain/message"
	"messagely/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetPasswordHash(ctx context.Context, username string) (string, error)
	UpdateLastLogin(ctx context.Context, username string) (time.Time, error)
	GetAll(ctx context.Context) ([]user.Basic, error)
	GetByUsername(ctx context.Context, username string) (user.Profile, error)
	GetMessagesFrom(ctx context.Context, username string) ([]message.Sent, error)
	GetMessagesTo(ctx context.Context, username string) ([]message.Received, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id int64) (message.Detail, error)
	MarkRead(ctx context.Context, id int64) (message.ReadReceipt, error)
}
