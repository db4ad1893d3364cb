package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Rate limiting key patterns:
// - ratelimit:{username}:messages - per-window message sends
// - ratelimit:{ip}:auth - per-window login/register attempts

// RateLimitConfig contains configuration for rate limiting
type RateLimitConfig struct {
	MessageLimit  int           // Max messages per window
	MessageWindow time.Duration // Message rate limit window
	AuthLimit     int           // Max auth attempts per window
	AuthWindow    time.Duration // Auth rate limit window
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MessageLimit:  60,
		MessageWindow: 60 * time.Second,
		AuthLimit:     10,
		AuthWindow:    60 * time.Second,
	}
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed   bool          // Whether the action is allowed
	Remaining int           // Remaining actions in the window
	ResetIn   time.Duration // Time until the window resets
	Limit     int           // The limit for this action
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
	}
}

// AllowMessage checks if a user can send a message
func (r *RateLimiter) AllowMessage(ctx context.Context, username string) (*RateLimitResult, error) {
	return r.checkLimit(ctx, messageKey(username), r.config.MessageLimit, r.config.MessageWindow)
}

// AllowAuth checks if an IP can make an auth attempt
func (r *RateLimiter) AllowAuth(ctx context.Context, ip string) (*RateLimitResult, error) {
	return r.checkLimit(ctx, authKey(ip), r.config.AuthLimit, r.config.AuthWindow)
}

// ResetAuth clears the auth counter for an IP
func (r *RateLimiter) ResetAuth(ctx context.Context, ip string) error {
	return r.client.Del(ctx, authKey(ip)).Err()
}

func messageKey(username string) string {
	return fmt.Sprintf("ratelimit:%s:messages", username)
}

func authKey(ip string) string {
	return fmt.Sprintf("ratelimit:%s:auth", ip)
}

// Atomic fixed-window counter: returns {allowed, remaining, ttl}.
var limitScript = goredis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = redis.call('GET', key)
	if current == false then
		current = 0
	else
		current = tonumber(current)
	end

	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end

	if current < limit then
		redis.call('INCR', key)
		if ttl == window then
			redis.call('EXPIRE', key, window)
		end
		return {1, limit - current - 1, ttl}
	else
		return {0, 0, ttl}
	end
`)

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	result, err := limitScript.Run(ctx, r.client, []string{key}, limit, int(window.Seconds())).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	return parseLimitResult(result, limit)
}

func parseLimitResult(result interface{}, limit int) (*RateLimitResult, error) {
	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) < 3 {
		return nil, fmt.Errorf("unexpected rate limit result format")
	}

	values := make([]int64, 3)
	for i := range values {
		v, ok := resultSlice[i].(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected rate limit result format")
		}
		values[i] = v
	}

	return &RateLimitResult{
		Allowed:   values[0] == 1,
		Remaining: int(values[1]),
		ResetIn:   time.Duration(values[2]) * time.Second,
		Limit:     limit,
	}, nil
}
