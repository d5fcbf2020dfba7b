// Package history keeps each user's recent manual search terms in Redis.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultMaxEntries is how many terms are kept per user.
	DefaultMaxEntries = 20

	keyPrefix = "match:history:"
)

// RedisHistory stores one capped list per user, newest first.
type RedisHistory struct {
	client     *redis.Client
	maxEntries int
	ttl        time.Duration
}

// New wraps client. Lists expire after ttl of inactivity; ttl <= 0 keeps
// them forever.
func New(client *redis.Client, ttl time.Duration) *RedisHistory {
	return &RedisHistory{client: client, maxEntries: DefaultMaxEntries, ttl: ttl}
}

func key(userID string) string {
	return keyPrefix + userID
}

// Record moves term to the front of the user's list and trims it.
func (h *RedisHistory) Record(ctx context.Context, userID, term string) error {
	if userID == "" || term == "" {
		return fmt.Errorf("history: user and term are required")
	}
	k := key(userID)
	_, err := h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, k, 0, term)
		pipe.LPush(ctx, k, term)
		pipe.LTrim(ctx, k, 0, int64(h.maxEntries-1))
		if h.ttl > 0 {
			pipe.Expire(ctx, k, h.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("history: record for %s: %w", userID, err)
	}
	return nil
}

// Recent returns up to n terms, newest first. n is clamped to the list cap.
func (h *RedisHistory) Recent(ctx context.Context, userID string, n int) ([]string, error) {
	if n <= 0 || n > h.maxEntries {
		n = h.maxEntries
	}
	terms, err := h.client.LRange(ctx, key(userID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("history: recent for %s: %w", userID, err)
	}
	return terms, nil
}
