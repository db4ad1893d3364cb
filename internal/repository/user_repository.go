package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"messagely/internal/domain/message"
	"messagely/internal/domain/user"
	messagely_errors "messagely/pkg/errors"
)

type PostgresUserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &PostgresUserRepository{db: db}
}

// Create inserts u and fills in the timestamps assigned by the database.
// PasswordHash must already be hashed.
func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
        VALUES ($1, $2, $3, $4, $5, now(), now())
        RETURNING join_at, last_login_at
    `, u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Phone).Scan(&u.JoinAt, &u.LastLoginAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", u.Username, messagely_errors.ErrDuplicateUser)
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepository) GetPasswordHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `
        SELECT password
        FROM users
        WHERE username = $1
    `, username).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("no such username: %s: %w", username, messagely_errors.ErrNotFound)
		}
		return "", err
	}
	return hash, nil
}

func (r *PostgresUserRepository) UpdateLastLogin(ctx context.Context, username string) (time.Time, error) {
	var lastLogin time.Time
	err := r.db.QueryRowContext(ctx, `
        UPDATE users
        SET last_login_at = now()
        WHERE username = $1
        RETURNING last_login_at
    `, username).Scan(&lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, fmt.Errorf("no such username: %s: %w", username, messagely_errors.ErrNotFound)
		}
		return time.Time{}, err
	}
	return lastLogin, nil
}

func (r *PostgresUserRepository) GetAll(ctx context.Context) ([]user.Basic, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT username, first_name, last_name
        FROM users
        ORDER BY username
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []user.Basic{}
	for rows.Next() {
		var u user.Basic
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (user.Profile, error) {
	var p user.Profile
	err := r.db.QueryRowContext(ctx, `
        SELECT username, first_name, last_name, phone, join_at, last_login_at
        FROM users
        WHERE username = $1
    `, username).Scan(&p.Username, &p.FirstName, &p.LastName, &p.Phone, &p.JoinAt, &p.LastLoginAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Profile{}, fmt.Errorf("no such user: %s: %w", username, messagely_errors.ErrNotFound)
		}
		return user.Profile{}, err
	}
	return p, nil
}

func (r *PostgresUserRepository) GetMessagesFrom(ctx context.Context, username string) ([]message.Sent, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT m.id, m.body, m.sent_at, m.read_at,
               u.username, u.first_name, u.last_name, u.phone
        FROM messages m
        JOIN users u ON m.to_username = u.username
        WHERE m.from_username = $1
        ORDER BY m.id
    `, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sent := []message.Sent{}
	for rows.Next() {
		var m message.Sent
		if err := rows.Scan(
			&m.ID,
			&m.Body,
			&m.SentAt,
			&m.ReadAt,
			&m.ToUser.Username,
			&m.ToUser.FirstName,
			&m.ToUser.LastName,
			&m.ToUser.Phone,
		); err != nil {
			return nil, err
		}
		sent = append(sent, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sent, nil
}

func (r *PostgresUserRepository) GetMessagesTo(ctx context.Context, username string) ([]message.Received, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT m.id, m.body, m.sent_at, m.read_at,
               u.username, u.first_name, u.last_name, u.phone
        FROM messages m
        JOIN users u ON m.from_username = u.username
        WHERE m.to_username = $1
        ORDER BY m.id
    `, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	received := []message.Received{}
	for rows.Next() {
		var m message.Received
		if err := rows.Scan(
			&m.ID,
			&m.Body,
			&m.SentAt,
			&m.ReadAt,
			&m.FromUser.Username,
			&m.FromUser.FirstName,
			&m.FromUser.LastName,
			&m.FromUser.Phone,
		); err != nil {
			return nil, err
		}
		received = append(received, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return received, nil
}
