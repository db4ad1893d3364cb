// Package repositorytest provides in-memory repositories for tests that
// exercise services and handlers without Postgres.
package repositorytest

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"messagely/internal/domain/message"
	"messagely/internal/domain/user"
	"messagely/internal/repository"
	messagely_errors "messagely/pkg/errors"
)

// Store backs both fake repositories so message queries can join users.
type Store struct {
	mu       sync.Mutex
	users    map[string]user.User
	messages []message.Message
	clock    time.Time
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]user.User),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// now advances a fake clock by one second per call so timestamps are
// strictly increasing.
func (s *Store) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// User returns the stored row, hash included.
func (s *Store) User(username string) (user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	return u, ok
}

func (s *Store) Users() repository.UserRepository {
	return &userRepo{s: s}
}

func (s *Store) Messages() repository.MessageRepository {
	return &messageRepo{s: s}
}

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.Username]; ok {
		return fmt.Errorf("username %q: %w", u.Username, messagely_errors.ErrDuplicateUser)
	}
	now := r.s.now()
	u.JoinAt = now
	u.LastLoginAt = sql.NullTime{Time: now, Valid: true}
	r.s.users[u.Username] = *u
	return nil
}

func (r *userRepo) GetPasswordHash(_ context.Context, username string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[username]
	if !ok {
		return "", fmt.Errorf("no such username: %s: %w", username, messagely_errors.ErrNotFound)
	}
	return u.PasswordHash, nil
}

func (r *userRepo) UpdateLastLogin(_ context.Context, username string) (time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[username]
	if !ok {
		return time.Time{}, fmt.Errorf("no such username: %s: %w", username, messagely_errors.ErrNotFound)
	}
	now := r.s.now()
	u.LastLoginAt = sql.NullTime{Time: now, Valid: true}
	r.s.users[username] = u
	return now, nil
}

func (r *userRepo) GetAll(_ context.Context) ([]user.Basic, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]user.Basic, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, user.Basic{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (user.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[username]
	if !ok {
		return user.Profile{}, fmt.Errorf("no such user: %s: %w", username, messagely_errors.ErrNotFound)
	}
	return u.Profile(), nil
}

func (r *userRepo) GetMessagesFrom(_ context.Context, username string) ([]message.Sent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []message.Sent{}
	for _, m := range r.s.messages {
		if m.FromUsername != username {
			continue
		}
		out = append(out, message.Sent{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			ToUser: r.s.contact(m.ToUsername),
		})
	}
	return out, nil
}

func (r *userRepo) GetMessagesTo(_ context.Context, username string) ([]message.Received, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []message.Received{}
	for _, m := range r.s.messages {
		if m.ToUsername != username {
			continue
		}
		out = append(out, message.Received{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
			FromUser: r.s.contact(m.FromUsername),
		})
	}
	return out, nil
}

// contact must be called with mu held.
func (s *Store) contact(username string) user.Contact {
	u := s.users[username]
	return user.Contact{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
}

type messageRepo struct {
	s *Store
}

func (r *messageRepo) Create(_ context.Context, m *message.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[m.FromUsername]; !ok {
		return fmt.Errorf("no such sender: %s: %w", m.FromUsername, messagely_errors.ErrInvalidInput)
	}
	if _, ok := r.s.users[m.ToUsername]; !ok {
		return fmt.Errorf("no such recipient: %s: %w", m.ToUsername, messagely_errors.ErrInvalidInput)
	}
	m.ID = int64(len(r.s.messages) + 1)
	m.SentAt = r.s.now()
	m.ReadAt = sql.NullTime{}
	r.s.messages = append(r.s.messages, *m)
	return nil
}

func (r *messageRepo) GetByID(_ context.Context, id int64) (message.Detail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.find(id)
	if !ok {
		return message.Detail{}, fmt.Errorf("no such message: %d: %w", id, messagely_errors.ErrNotFound)
	}
	return message.Detail{
		ID:       m.ID,
		Body:     m.Body,
		SentAt:   m.SentAt,
		ReadAt:   m.ReadAt,
		FromUser: r.s.contact(m.FromUsername),
		ToUser:   r.s.contact(m.ToUsername),
	}, nil
}

func (r *messageRepo) MarkRead(_ context.Context, id int64) (message.ReadReceipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.find(id)
	if !ok {
		return message.ReadReceipt{}, fmt.Errorf("no such message: %d: %w", id, messagely_errors.ErrNotFound)
	}
	if !m.ReadAt.Valid {
		m.ReadAt = sql.NullTime{Time: r.s.now(), Valid: true}
		r.s.messages[m.ID-1] = m
	}
	return message.ReadReceipt{ID: m.ID, ReadAt: m.ReadAt.Time}, nil
}

// find must be called with mu held.
func (s *Store) find(id int64) (message.Message, bool) {
	if id < 1 || id > int64(len(s.messages)) {
		return message.Message{}, false
	}
	return s.messages[id-1], true
}
