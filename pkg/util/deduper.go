package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper guards MQ handlers against redelivered events using a redis
// SetNX lock per handler + booking id.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce returns true the first time a handler sees a booking and
// false on duplicates. When redis is unavailable it fails open so a
// broker hiccup never blocks delivery.
func (d *Deduper) AcquireOnce(ctx context.Context, handler string, bookingID int) bool {
	key := fmt.Sprintf("dedup:%s:%d", handler, bookingID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("Redis dedup check failed, allowing processing",
				zap.String("handler", handler),
				zap.Int("booking_id", bookingID),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && d.logger != nil {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.Int("booking_id", bookingID),
			zap.String("dedup_key", key),
		)
	}

	return ok
}

// Release gives the key back after a failed attempt so the broker's
// redelivery is not mistaken for a duplicate. Without this a single
// transient failure would pin the event out of processing for the
// whole TTL.
func (d *Deduper) Release(ctx context.Context, handler string, bookingID int) {
	key := fmt.Sprintf("dedup:%s:%d", handler, bookingID)

	if err := d.rdb.Del(ctx, key).Err(); err != nil && d.logger != nil {
		d.logger.Warn("Failed to release dedup key",
			zap.String("dedup_key", key),
			zap.Error(err),
		)
	}
}
