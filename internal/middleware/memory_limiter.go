package middleware

import (
	"context"
	"sync"
	"time"

	"messagely/internal/redis"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
)

var _ RateLimiter = (*MemoryLimiter)(nil)

type bucketKind int

const (
	bucketAuth bucketKind = iota
	bucketMessages
)

// MemoryLimiter is a per-process token bucket limiter used when redis is
// disabled. Limits are not shared between instances.
type MemoryLimiter struct {
	mu       sync.Mutex
	auth     map[string]*rate.Limiter
	messages map[string]*rate.Limiter
	config   redis.RateLimitConfig
	maxKeys  int
}

func NewMemoryLimiter(config redis.RateLimitConfig) *MemoryLimiter {
	return &MemoryLimiter{
		auth:     make(map[string]*rate.Limiter),
		messages: make(map[string]*rate.Limiter),
		config:   config,
		maxKeys:  10000,
	}
}

func (m *MemoryLimiter) AllowAuth(_ context.Context, ip string) (*redis.RateLimitResult, error) {
	return m.allow(bucketAuth, ip, m.config.AuthLimit, m.config.AuthWindow), nil
}

func (m *MemoryLimiter) AllowMessage(_ context.Context, username string) (*redis.RateLimitResult, error) {
	return m.allow(bucketMessages, username, m.config.MessageLimit, m.config.MessageWindow), nil
}

func (m *MemoryLimiter) ResetAuth(_ context.Context, ip string) error {
	m.mu.Lock()
	delete(m.auth, ip)
	m.mu.Unlock()
	return nil
}

// allow refills limit tokens evenly over window, with a burst of limit. A
// non-positive limit disables the check.
func (m *MemoryLimiter) allow(kind bucketKind, key string, limit int, window time.Duration) *redis.RateLimitResult {
	if limit < 1 || window <= 0 {
		return &redis.RateLimitResult{Allowed: true, Limit: limit}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Cleanup may replace the maps, so pick one only while holding mu.
	buckets := m.auth
	if kind == bucketMessages {
		buckets = m.messages
	}

	l, ok := buckets[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		buckets[key] = l
	}

	now := time.Now()
	allowed := l.AllowN(now, 1)
	remaining := int(l.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	return &redis.RateLimitResult{
		Allowed:   allowed,
		Remaining: remaining,
		ResetIn:   window / time.Duration(limit),
		Limit:     limit,
	}
}

// Cleanup drops every bucket once the key count passes the cap.
func (m *MemoryLimiter) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.auth)+len(m.messages) > m.maxKeys {
		m.auth = make(map[string]*rate.Limiter)
		m.messages = make(map[string]*rate.Limiter)
	}
}

// StartCleanup runs Cleanup on a cron schedule such as "@every 10m". The
// caller stops the returned scheduler.
func (m *MemoryLimiter) StartCleanup(schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, m.Cleanup); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
