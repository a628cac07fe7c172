package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RetryCounter tracks how many times an event has been redelivered so
// handlers can stop requeueing poison messages.
type RetryCounter struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRetryCounter(rdb *redis.Client, ttl time.Duration) *RetryCounter {
	return &RetryCounter{rdb: rdb, ttl: ttl}
}

func (r *RetryCounter) Increment(ctx context.Context, handler string, bookingID int) (int64, error) {
	key := fmt.Sprintf("retry:%s:%d", handler, bookingID)

	count, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		r.rdb.Expire(ctx, key, r.ttl)
	}
	return count, nil
}

func (r *RetryCounter) Get(ctx context.Context, handler string, bookingID int) (int64, error) {
	key := fmt.Sprintf("retry:%s:%d", handler, bookingID)

	count, err := r.rdb.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

func (r *RetryCounter) Reset(ctx context.Context, handler string, bookingID int) error {
	key := fmt.Sprintf("retry:%s:%d", handler, bookingID)
	return r.rdb.Del(ctx, key).Err()
}
