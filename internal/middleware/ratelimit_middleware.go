package middleware

import (
	"context"
	"net/http"
	"strconv"

	"messagely/internal/redis"
	"messagely/internal/services"
	messagely_errors "messagely/pkg/errors"

	"github.com/gin-gonic/gin"
)

// RateLimiter is satisfied by *redis.RateLimiter.
type RateLimiter interface {
	AllowAuth(ctx context.Context, ip string) (*redis.RateLimitResult, error)
	AllowMessage(ctx context.Context, username string) (*redis.RateLimitResult, error)
	ResetAuth(ctx context.Context, ip string) error
}

// AuthRateLimitMiddleware limits login and register attempts per client IP.
// A successful attempt clears the counter. A nil limiter disables the check.
func AuthRateLimitMiddleware(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		result, err := limiter.AllowAuth(c.Request.Context(), clientIP)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.Error(messagely_errors.ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusOK && len(c.Errors) == 0 {
			_ = limiter.ResetAuth(c.Request.Context(), clientIP)
		}
	}
}

// MessageRateLimitMiddleware limits message sends per caller. It must run
// after EnsureLoggedIn.
func MessageRateLimitMiddleware(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		username, ok := services.UsernameFromContext(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		result, err := limiter.AllowMessage(c.Request.Context(), username)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.Error(messagely_errors.ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
