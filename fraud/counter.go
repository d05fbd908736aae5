// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fraud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/voteguard/apperr"
	"github.com/danielhkuo/voteguard/store"
)

// Counter keeps the per-session violation count.
type Counter interface {
	Increment(ctx context.Context, sessionID string) (int, error)
	Count(ctx context.Context, sessionID string) (int, error)
}

// SQLCounter stores the count on the voting_session row.
type SQLCounter struct {
	Store *store.Store
}

func (c SQLCounter) Increment(ctx context.Context, sessionID string) (int, error) {
	return c.Store.IncrementViolations(ctx, sessionID)
}

func (c SQLCounter) Count(ctx context.Context, sessionID string) (int, error) {
	return c.Store.SessionViolations(ctx, sessionID)
}

const DefaultRedisTTL = 72 * time.Hour

// RedisCounter keeps counts in Redis so several API replicas share them.
// Keys expire TTL after the first violation.
type RedisCounter struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRedisCounter(addr string) (*RedisCounter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisCounter{Client: client, Prefix: "voteguard:violations:", TTL: DefaultRedisTTL}, nil
}

func (c *RedisCounter) key(sessionID string) string {
	return c.Prefix + sessionID
}

func (c *RedisCounter) Increment(ctx context.Context, sessionID string) (int, error) {
	key := c.key(sessionID)
	n, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %v: %w", err, apperr.ErrServiceUnavailable)
	}
	if n == 1 && c.TTL > 0 {
		if err := c.Client.Expire(ctx, key, c.TTL).Err(); err != nil {
			return 0, fmt.Errorf("redis expire: %v: %w", err, apperr.ErrServiceUnavailable)
		}
	}
	return int(n), nil
}

func (c *RedisCounter) Count(ctx context.Context, sessionID string) (int, error) {
	n, err := c.Client.Get(ctx, c.key(sessionID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get: %v: %w", err, apperr.ErrServiceUnavailable)
	}
	return n, nil
}

func (c *RedisCounter) Close() error {
	return c.Client.Close()
}
