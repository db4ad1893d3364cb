package services

import (
	"context"
	"strings"
	"testing"

	"messagely/internal/repository/repositorytest"
	messagely_errors "messagely/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*UserService, *repositorytest.Store) {
	t.Helper()
	store := repositorytest.NewStore()
	return NewUserService(store.Users(), bcrypt.MinCost), store
}

func registerInput(username string) RegisterInput {
	return RegisterInput{
		Username:  username,
		Password:  "secret-" + username,
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		LastName:  "Tester",
		Phone:     "+15550000",
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, store := newUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, registerInput("alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.JoinAt.IsZero())
	assert.True(t, u.LastLoginAt.Valid)

	stored, ok := store.User("alice")
	require.True(t, ok)
	assert.NotEqual(t, "secret-alice", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret-alice")))
}

func TestRegisterDuplicateKeepsOriginalHash(t *testing.T) {
	svc, store := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput("alice"))
	require.NoError(t, err)
	before, _ := store.User("alice")

	again := registerInput("alice")
	again.Password = "other"
	_, err = svc.Register(ctx, again)
	assert.ErrorIs(t, err, messagely_errors.ErrDuplicateUser)

	after, _ := store.User("alice")
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestRegisterRequiresEveryField(t *testing.T) {
	svc, _ := newUserService(t)

	in := registerInput("alice")
	in.Phone = "  "
	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, messagely_errors.ErrInvalidInput)
	assert.ErrorContains(t, err, "phone is required")
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	svc, _ := newUserService(t)

	in := registerInput("alice")
	in.Password = strings.Repeat("x", 73)
	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, messagely_errors.ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registerInput("alice"))
	require.NoError(t, err)

	ok, err := svc.Authenticate(ctx, "alice", "secret-alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Authenticate(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Authenticate(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, messagely_errors.ErrNotFound)
}

func TestUpdateLoginTimestampAdvances(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registerInput("alice"))
	require.NoError(t, err)

	before, err := svc.Get(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateLoginTimestamp(ctx, "alice"))

	after, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, after.LastLoginAt.Time.After(before.LastLoginAt.Time))

	assert.ErrorIs(t, svc.UpdateLoginTimestamp(ctx, "nobody"), messagely_errors.ErrNotFound)
}

func TestAllAndGet(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	users, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	for _, name := range []string{"bob", "alice"} {
		_, err := svc.Register(ctx, registerInput(name))
		require.NoError(t, err)
	}

	users, err = svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "Alice", users[0].FirstName)

	p, err := svc.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "+15550000", p.Phone)

	_, err = svc.Get(ctx, "carol")
	assert.ErrorIs(t, err, messagely_errors.ErrNotFound)
}
