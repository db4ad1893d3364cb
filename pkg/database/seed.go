package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"messagely/internal/events"
	"messagely/internal/repository"
	"messagely/internal/services"
	messagely_errors "messagely/pkg/errors"
	"messagely/pkg/logger"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	Password   string
	WorkFactor int
	Users      []services.RegisterInput
	Messages   []services.SendInput
}

// DefaultSeedConfig returns a small development data set: three users and a
// short conversation between them, all sharing one password.
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		Password:   "password",
		WorkFactor: 10,
		Users: []services.RegisterInput{
			{Username: "alice", FirstName: "Alice", LastName: "Anders", Phone: "+15550001"},
			{Username: "bob", FirstName: "Bob", LastName: "Brown", Phone: "+15550002"},
			{Username: "carol", FirstName: "Carol", LastName: "Clark", Phone: "+15550003"},
		},
		Messages: []services.SendInput{
			{FromUsername: "alice", ToUsername: "bob", Body: "Hi Bob, lunch today?"},
			{FromUsername: "bob", ToUsername: "alice", Body: "Sure, noon works."},
			{FromUsername: "carol", ToUsername: "alice", Body: "Can you review my draft?"},
		},
	}
}

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	CreatedUsers []string
	SkippedUsers []string
	Messages     int
}

// Seed registers the configured users through the regular services so
// passwords are hashed the same way as at signup. Existing users are left
// untouched; messages are only added when every user was newly created, so
// running it twice does not duplicate the conversation.
func Seed(ctx context.Context, db *sql.DB, cfg *SeedConfig) (*SeedResult, error) {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	users := services.NewUserService(repository.NewUserRepository(db), cfg.WorkFactor)
	msgs := services.NewMessageService(repository.NewMessageRepository(db), events.NewBus(nil), logger.NewNop())

	result := &SeedResult{}
	log.Println("Starting database seeding...")

	for _, in := range cfg.Users {
		if in.Password == "" {
			in.Password = cfg.Password
		}
		_, err := users.Register(ctx, in)
		switch {
		case err == nil:
			result.CreatedUsers = append(result.CreatedUsers, in.Username)
		case errors.Is(err, messagely_errors.ErrDuplicateUser):
			result.SkippedUsers = append(result.SkippedUsers, in.Username)
		default:
			return nil, fmt.Errorf("failed to seed user %s: %w", in.Username, err)
		}
	}

	if len(result.SkippedUsers) > 0 {
		log.Printf("Skipping messages, %d users already existed", len(result.SkippedUsers))
		return result, nil
	}

	for _, in := range cfg.Messages {
		if _, err := msgs.Send(ctx, in); err != nil {
			return nil, fmt.Errorf("failed to seed message %s -> %s: %w", in.FromUsername, in.ToUsername, err)
		}
		result.Messages++
	}

	log.Println("Database seeding completed successfully!")
	return result, nil
}

// Truncate empties both tables and restarts the message id sequence.
func Truncate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `TRUNCATE TABLE messages, users RESTART IDENTITY`); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
