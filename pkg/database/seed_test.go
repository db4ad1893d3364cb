package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"messagely/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	insertUserSQL    = regexp.QuoteMeta("INSERT INTO users")
	insertMessageSQL = regexp.QuoteMeta("INSERT INTO messages")
)

func smallSeed() *SeedConfig {
	return &SeedConfig{
		Password:   "pw",
		WorkFactor: 4,
		Users: []services.RegisterInput{
			{Username: "alice", FirstName: "Alice", LastName: "A", Phone: "1"},
			{Username: "bob", FirstName: "Bob", LastName: "B", Phone: "2"},
		},
		Messages: []services.SendInput{
			{FromUsername: "alice", ToUsername: "bob", Body: "hi"},
		},
	}
}

func TestSeedCreatesUsersAndMessages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, name := range []string{"alice", "bob"} {
		mock.ExpectQuery(insertUserSQL).
			WithArgs(name, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"join_at", "last_login_at"}).AddRow(now, now))
	}
	mock.ExpectQuery(insertMessageSQL).
		WithArgs("alice", "bob", "hi").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sent_at"}).AddRow(int64(1), now))

	res, err := Seed(context.Background(), db, smallSeed())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, res.CreatedUsers)
	assert.Empty(t, res.SkippedUsers)
	assert.Equal(t, 1, res.Messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedSkipsExistingUsers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(insertUserSQL).
		WithArgs("alice", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectQuery(insertUserSQL).
		WithArgs("bob", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"join_at", "last_login_at"}).AddRow(now, now))

	res, err := Seed(context.Background(), db, smallSeed())
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, res.CreatedUsers)
	assert.Equal(t, []string{"alice"}, res.SkippedUsers)
	assert.Zero(t, res.Messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTruncate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("TRUNCATE TABLE messages, users RESTART IDENTITY")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Truncate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
