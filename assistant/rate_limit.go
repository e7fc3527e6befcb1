// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"sliceline/assistant/shared/logger"
)

// ErrRateLimited is returned when a client exceeds its per-minute budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiter enforces a sliding-window per-client request limit. When a
// Redis client is provided the window is shared across replicas; otherwise an
// in-memory window is used. Redis failures fail open.
type RateLimiter struct {
	client         *redis.Client
	limitPerMinute int
	log            *logger.Logger

	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewRateLimiter creates a limiter. client may be nil for in-memory mode;
// limitPerMinute <= 0 disables limiting.
func NewRateLimiter(client *redis.Client, limitPerMinute int, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		client:         client,
		limitPerMinute: limitPerMinute,
		log:            log,
		windows:        make(map[string][]time.Time),
	}
}

// Allow records a request for clientID and reports whether it is within the
// limit. Returns ErrRateLimited when the budget is exhausted.
func (l *RateLimiter) Allow(ctx context.Context, clientID string) error {
	if l.limitPerMinute <= 0 {
		return nil
	}
	if l.client != nil {
		return l.allowRedis(ctx, clientID)
	}
	return l.allowMemory(clientID)
}

// allowRedis checks the limit with a Redis sliding window (sorted set of
// request timestamps, pruned each call).
func (l *RateLimiter) allowRedis(ctx context.Context, clientID string) error {
	now := time.Now()
	key := fmt.Sprintf("ratelimit:%s", clientID)

	pipe := l.client.Pipeline()

	// Remove timestamps older than 1 minute (sliding window)
	minScore := now.Add(-time.Minute).Unix()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", minScore))

	// Count requests in current window
	pipe.ZCard(ctx, key)

	// Add current request timestamp
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.Unix()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})

	// Set expiration (cleanup old keys)
	pipe.Expire(ctx, key, 2*time.Minute)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		// On Redis error, fail open (allow request) and log.
		l.log.Warn("", "", "Redis rate limit check failed, failing open", map[string]any{
			"client": clientID,
			"error":  err.Error(),
		})
		return nil
	}

	count := cmds[1].(*redis.IntCmd).Val()
	if count >= int64(l.limitPerMinute) {
		return fmt.Errorf("%w: %d requests/minute (limit: %d)", ErrRateLimited, count+1, l.limitPerMinute)
	}
	return nil
}

// allowMemory checks the limit against the in-process window.
func (l *RateLimiter) allowMemory(clientID string) error {
	now := time.Now()
	cutoff := now.Add(-time.Minute)

	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.windows[clientID]
	kept := window[:0]
	for _, t := range window {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limitPerMinute {
		l.windows[clientID] = kept
		return fmt.Errorf("%w: %d requests/minute (limit: %d)", ErrRateLimited, len(kept)+1, l.limitPerMinute)
	}

	l.windows[clientID] = append(kept, now)
	return nil
}
