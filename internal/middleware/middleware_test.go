package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"messagely/internal/redis"
	"messagely/internal/services"
	"messagely/internal/transport/httpdto"
	messagely_errors "messagely/pkg/errors"
	"messagely/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(auth *services.AuthService) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(logger.NewNop()))
	if auth != nil {
		r.Use(AuthenticateJWT(auth))
	}
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httpdto.ErrorBody {
	t.Helper()
	var body httpdto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func whoami(c *gin.Context) {
	username, _ := services.UsernameFromContext(c.Request.Context())
	c.String(http.StatusOK, username)
}

func TestAuthenticateJWTNeverRejects(t *testing.T) {
	auth := services.NewAuthService(nil, "secret", time.Hour)
	token, err := auth.IssueToken("alice")
	require.NoError(t, err)

	r := newEngine(auth)
	r.GET("/whoami", whoami)

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer " + token, "alice"},
		{"lowercase scheme", "bearer " + token, "alice"},
		{"missing", "", ""},
		{"garbage", "Bearer nope", ""},
		{"wrong scheme", "Basic " + token, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}

func TestEnsureLoggedIn(t *testing.T) {
	auth := services.NewAuthService(nil, "secret", time.Hour)
	token, err := auth.IssueToken("alice")
	require.NoError(t, err)

	r := newEngine(auth)
	r.GET("/secret", EnsureLoggedIn(), whoami)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secret", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, httpdto.ErrorBody{Message: "Unauthorized", Status: 401}, decodeError(t, w))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestEnsureCorrectUser(t *testing.T) {
	auth := services.NewAuthService(nil, "secret", time.Hour)
	token, err := auth.IssueToken("alice")
	require.NoError(t, err)

	r := newEngine(auth)
	r.GET("/users/:username/to", EnsureCorrectUser("username"), whoami)

	do := func(path, token string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("/users/alice/to", token).Code)
	assert.Equal(t, http.StatusUnauthorized, do("/users/alice/to", "").Code)

	w := do("/users/bob/to", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden", decodeError(t, w).Message)
}

func TestErrorHandlerStatuses(t *testing.T) {
	r := newEngine(nil)
	r.GET("/bad", func(c *gin.Context) {
		c.Error(fmt.Errorf("body is required: %w", messagely_errors.ErrInvalidInput))
	})
	r.GET("/missing", func(c *gin.Context) {
		c.Error(fmt.Errorf("no such user: bob: %w", messagely_errors.ErrNotFound))
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Error(errors.New("pq: connection refused"))
	})
	r.GET("/forbidden", func(c *gin.Context) {
		c.Error(messagely_errors.ErrForbidden)
	})
	r.GET("/forbidden-detail", func(c *gin.Context) {
		c.Error(fmt.Errorf("not authorized to view this message: %w", messagely_errors.ErrForbidden))
	})
	r.GET("/unauthorized-text", func(c *gin.Context) {
		c.Error(fmt.Errorf("%w: unauthorized", messagely_errors.ErrInvalidInput))
	})
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/bad", http.StatusBadRequest, "body is required: invalid input"},
		{"/missing", http.StatusNotFound, "no such user: bob: not found"},
		{"/boom", http.StatusInternalServerError, "internal server error"},
		{"/forbidden", http.StatusForbidden, "Forbidden"},
		{"/forbidden-detail", http.StatusForbidden, "not authorized to view this message: forbidden"},
		{"/unauthorized-text", http.StatusBadRequest, "invalid input: unauthorized"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, httpdto.ErrorBody{Message: tc.message, Status: tc.status}, decodeError(t, w))
		})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(logger.RequestIdKey).(string)
		c.String(http.StatusOK, id)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 32)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc123", w.Body.String())
}

type fakeLimiter struct {
	allow  bool
	err    error
	calls  []string
	resets int
}

func (f *fakeLimiter) result() *redis.RateLimitResult {
	remaining := 4
	if !f.allow {
		remaining = 0
	}
	return &redis.RateLimitResult{Allowed: f.allow, Remaining: remaining, ResetIn: 30 * time.Second, Limit: 5}
}

func (f *fakeLimiter) AllowAuth(_ context.Context, ip string) (*redis.RateLimitResult, error) {
	f.calls = append(f.calls, "auth:"+ip)
	return f.result(), f.err
}

func (f *fakeLimiter) AllowMessage(_ context.Context, username string) (*redis.RateLimitResult, error) {
	f.calls = append(f.calls, "message:"+username)
	return f.result(), f.err
}

func (f *fakeLimiter) ResetAuth(context.Context, string) error {
	f.resets++
	return nil
}

func TestAuthRateLimit(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	r := newEngine(nil)
	r.POST("/login", AuthRateLimitMiddleware(limiter), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": "t"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", w.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, 1, limiter.resets)

	limiter.allow = false
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, 1, limiter.resets)
}

func TestMessageRateLimitUsesCaller(t *testing.T) {
	auth := services.NewAuthService(nil, "secret", time.Hour)
	token, err := auth.IssueToken("alice")
	require.NoError(t, err)

	limiter := &fakeLimiter{allow: true}
	r := newEngine(auth)
	r.POST("/messages", EnsureLoggedIn(), MessageRateLimitMiddleware(limiter), whoami)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"message:alice"}, limiter.calls)

	limiter.err = errors.New("redis down")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNilLimiterPassesThrough(t *testing.T) {
	r := newEngine(nil)
	r.POST("/login", AuthRateLimitMiddleware(nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}
