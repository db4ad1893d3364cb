package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"messagely/internal/domain/message"
	messagely_errors "messagely/pkg/errors"
)

type PostgresMessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

// Create inserts m and fills in its id and sent_at.
func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO messages (from_username, to_username, body, sent_at)
        VALUES ($1, $2, $3, now())
        RETURNING id, sent_at
    `, m.FromUsername, m.ToUsername, m.Body).Scan(&m.ID, &m.SentAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("no such recipient: %s: %w", m.ToUsername, messagely_errors.ErrInvalidInput)
		}
		return err
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id int64) (message.Detail, error) {
	var d message.Detail
	err := r.db.QueryRowContext(ctx, `
        SELECT m.id, m.body, m.sent_at, m.read_at,
               f.username, f.first_name, f.last_name, f.phone,
               t.username, t.first_name, t.last_name, t.phone
        FROM messages m
        JOIN users f ON m.from_username = f.username
        JOIN users t ON m.to_username = t.username
        WHERE m.id = $1
    `, id).Scan(
		&d.ID,
		&d.Body,
		&d.SentAt,
		&d.ReadAt,
		&d.FromUser.Username,
		&d.FromUser.FirstName,
		&d.FromUser.LastName,
		&d.FromUser.Phone,
		&d.ToUser.Username,
		&d.ToUser.FirstName,
		&d.ToUser.LastName,
		&d.ToUser.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return message.Detail{}, fmt.Errorf("no such message: %d: %w", id, messagely_errors.ErrNotFound)
		}
		return message.Detail{}, err
	}
	return d, nil
}

// MarkRead stamps read_at once; later calls return the original timestamp.
func (r *PostgresMessageRepository) MarkRead(ctx context.Context, id int64) (message.ReadReceipt, error) {
	var receipt message.ReadReceipt
	err := r.db.QueryRowContext(ctx, `
        UPDATE messages
        SET read_at = COALESCE(read_at, now())
        WHERE id = $1
        RETURNING id, read_at
    `, id).Scan(&receipt.ID, &receipt.ReadAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return message.ReadReceipt{}, fmt.Errorf("no such message: %d: %w", id, messagely_errors.ErrNotFound)
		}
		return message.ReadReceipt{}, err
	}
	return receipt, nil
}
