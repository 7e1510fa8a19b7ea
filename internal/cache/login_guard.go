package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// LoginGuard counts consecutive failed logins per username. Once maxFailures
// is reached the username is locked until the counter expires.
type LoginGuard struct {
	client      *redisv9.Client
	maxFailures int
	lockout     time.Duration
}

func NewLoginGuard(client *redisv9.Client, maxFailures int, lockout time.Duration) *LoginGuard {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	return &LoginGuard{
		client:      client,
		maxFailures: maxFailures,
		lockout:     lockout,
	}
}

func (g *LoginGuard) Allow(ctx context.Context, username string) (bool, error) {
	count, err := g.client.Get(ctx, g.failureKey(username)).Int()
	if err == redisv9.Nil {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("redis get login failures failed: %w", err)
	}
	return count < g.maxFailures, nil
}

// RecordFailure increments the counter and refreshes its expiry, so the
// lockout window starts from the most recent failure.
func (g *LoginGuard) RecordFailure(ctx context.Context, username string) error {
	key := g.failureKey(username)
	pipe := g.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, g.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record login failure failed: %w", err)
	}
	return nil
}

func (g *LoginGuard) Reset(ctx context.Context, username string) error {
	if err := g.client.Del(ctx, g.failureKey(username)).Err(); err != nil {
		return fmt.Errorf("redis reset login failures failed: %w", err)
	}
	return nil
}

func (g *LoginGuard) failureKey(username string) string {
	return fmt.Sprintf("auth:login:failures:%s", strings.ToLower(username))
}
