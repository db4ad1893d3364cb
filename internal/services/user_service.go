package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"messagely/internal/domain/message"
	"messagely/internal/domain/user"
	"messagely/internal/repository"
	messagely_errors "messagely/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo       repository.UserRepository
	workFactor int
}

// NewUserService returns a service hashing passwords at the given bcrypt
// cost. Costs below bcrypt.MinCost fall back to bcrypt.DefaultCost.
func NewUserService(repo repository.UserRepository, workFactor int) *UserService {
	return &UserService{repo: repo, workFactor: workFactor}
}

type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Register hashes the password and stores a new user. The returned record
// carries the hash and must not be serialized as-is.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	if err := validateRegister(in); err != nil {
		return user.User{}, err
	}

	hash, err := hashPassword(in.Password, s.workFactor)
	if err != nil {
		return user.User{}, err
	}

	u := &user.User{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return user.User{}, err
	}
	return *u, nil
}

// Authenticate reports whether password matches the stored hash. An unknown
// username is an ErrNotFound; a wrong password is (false, nil).
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	hash, err := s.repo.GetPasswordHash(ctx, username)
	if err != nil {
		return false, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}

func (s *UserService) UpdateLoginTimestamp(ctx context.Context, username string) error {
	_, err := s.repo.UpdateLastLogin(ctx, username)
	return err
}

func (s *UserService) All(ctx context.Context) ([]user.Basic, error) {
	return s.repo.GetAll(ctx)
}

func (s *UserService) Get(ctx context.Context, username string) (user.Profile, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) MessagesFrom(ctx context.Context, username string) ([]message.Sent, error) {
	return s.repo.GetMessagesFrom(ctx, username)
}

func (s *UserService) MessagesTo(ctx context.Context, username string) ([]message.Received, error) {
	return s.repo.GetMessagesTo(ctx, username)
}

func validateRegister(in RegisterInput) error {
	fields := []struct {
		name  string
		value string
	}{
		{"username", in.Username},
		{"password", in.Password},
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"phone", in.Phone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is required: %w", f.name, messagely_errors.ErrInvalidInput)
		}
	}
	return nil
}

func hashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("password is too long: %w", messagely_errors.ErrInvalidInput)
		}
		return "", err
	}
	return string(bytes), nil
}
