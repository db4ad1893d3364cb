package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"messagely/internal/metrics"
	messagely_errors "messagely/pkg/errors"
	"messagely/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

type AuthService struct {
	users     *UserService
	jwtSecret []byte
	accessTTL time.Duration
}

// NewAuthService signs tokens with secret. A zero ttl issues tokens
// without an expiry claim.
func NewAuthService(users *UserService, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(secret),
		accessTTL: ttl,
	}
}

type LoginInput struct {
	Username string
	Password string
}

type AccessClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Register creates the user and logs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	u, err := s.users.Register(ctx, in)
	if err != nil {
		return "", err
	}
	return s.IssueToken(u.Username)
}

// Login verifies the credentials, records the login time and returns a token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return "", messagely_errors.ErrInvalidCredentials
	}

	ok, err := s.users.Authenticate(ctx, username, in.Password)
	if err != nil {
		if errors.Is(err, messagely_errors.ErrNotFound) {
			metrics.Login("invalid")
			return "", messagely_errors.ErrInvalidCredentials
		}
		metrics.Login("error")
		return "", err
	}
	if !ok {
		metrics.Login("invalid")
		return "", messagely_errors.ErrInvalidCredentials
	}
	metrics.Login("success")

	if err := s.users.UpdateLoginTimestamp(ctx, username); err != nil {
		return "", err
	}
	return s.IssueToken(username)
}

func (s *AuthService) IssueToken(username string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.accessTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.accessTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, messagely_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, messagely_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return AccessClaims{}, messagely_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid || claims.Username == "" {
		return AccessClaims{}, messagely_errors.ErrUnauthorized
	}

	return *claims, nil
}

type ctxKey string

var usernameKey ctxKey = "username"

// WithUsername marks ctx as authenticated for username. The name is also
// picked up by the context-aware logger.
func WithUsername(ctx context.Context, username string) context.Context {
	ctx = context.WithValue(ctx, usernameKey, username)
	return context.WithValue(ctx, logger.UsernameKey, username)
}

func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}
