// Copyright (c) 2026 Herdcount. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/herdcount/herdcount/internal/platform/constants"
)

// RedisAttemptStore implements AttemptStore using Redis counters with TTL.
type RedisAttemptStore struct {
	client redis.Cmdable
}

// NewAttemptStore creates a new Redis-backed AttemptStore.
func NewAttemptStore(client redis.Cmdable) *RedisAttemptStore {
	return &RedisAttemptStore{client: client}
}

func attemptKey(username string) string {
	return constants.RedisPrefixLoginAttempts + username
}

/*
Failures returns the failure count for username and the remaining window.

Returns:
  - int: Failures recorded in the open window, 0 when none is open
  - time.Duration: Time until the window closes
  - error: Connectivity errors
*/
func (repository *RedisAttemptStore) Failures(ctx context.Context, username string) (int, time.Duration, error) {
	key := attemptKey(username)

	var countCmd *redis.StringCmd
	var ttlCmd *redis.DurationCmd
	_, err := repository.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		countCmd = pipe.Get(ctx, key)
		ttlCmd = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, fmt.Errorf("redis_attempts_get_failed: %w", err)
	}

	count, err := countCmd.Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("redis_attempts_parse_failed: %w", err)
	}

	return count, max(ttlCmd.Val(), 0), nil
}

/*
RecordFailure increments the failure counter for username.

The expiry is set only when the key has none, so the window is measured from
the first failure and later failures do not extend it.
*/
func (repository *RedisAttemptStore) RecordFailure(ctx context.Context, username string, window time.Duration) (int, error) {
	key := attemptKey(username)

	var incrCmd *redis.IntCmd
	_, err := repository.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incrCmd = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis_attempts_incr_failed: %w", err)
	}

	return int(incrCmd.Val()), nil
}

// Reset removes the failure counter for username.
func (repository *RedisAttemptStore) Reset(ctx context.Context, username string) error {
	if err := repository.client.Del(ctx, attemptKey(username)).Err(); err != nil {
		return fmt.Errorf("redis_attempts_delete_failed: %w", err)
	}
	return nil
}
