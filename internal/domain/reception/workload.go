// Package reception tracks how many appointments each receptionist
// books per day. Counters live in redis so they survive restarts and
// are shared across instances.
package reception

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// counterTTL keeps yesterday's counter readable for end-of-day
// reporting before it expires.
const counterTTL = 48 * time.Hour

type Workload struct {
	rdb *redis.Client
}

func NewWorkload(rdb *redis.Client) *Workload {
	return &Workload{rdb: rdb}
}

func key(receptionistID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("workload:%s:%s", receptionistID, day.Format("2006-01-02"))
}

// Increment bumps the receptionist's counter for the given day and
// returns the new value.
func (w *Workload) Increment(ctx context.Context, receptionistID uuid.UUID, day time.Time) (int64, error) {
	k := key(receptionistID, day)
	pipe := w.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment workload: %w", err)
	}
	return incr.Val(), nil
}

// Count reads the receptionist's counter for the given day. A missing
// key reads as zero.
func (w *Workload) Count(ctx context.Context, receptionistID uuid.UUID, day time.Time) (int64, error) {
	n, err := w.rdb.Get(ctx, key(receptionistID, day)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read workload: %w", err)
	}
	return n, nil
}
