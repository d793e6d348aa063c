package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "fintrack/internal/errors"
)

// quotaKeyPrefix namespaces the monthly counter keys in Redis.
const quotaKeyPrefix = "rates:quota:"

// QuotaGuard tracks rate-provider usage against a monthly request budget.
// The counter lives in Redis so every process sharing the provider key shares
// the budget. Keys roll over naturally at the month boundary and expire on
// their own.
type QuotaGuard struct {
	rdb   *redis.Client
	limit int64
}

// NewQuotaGuard creates a guard allowing at most limit provider calls per
// calendar month.
func NewQuotaGuard(rdb *redis.Client, limit int64) *QuotaGuard {
	return &QuotaGuard{rdb: rdb, limit: limit}
}

// Acquire consumes one request from the current month's budget. It returns
// ErrQuotaExhausted once the budget is spent and ErrProviderUnavailable if the
// counter store cannot be reached.
func (g *QuotaGuard) Acquire(ctx context.Context) error {
	key := quotaKeyPrefix + time.Now().UTC().Format("2006-01")

	used, err := g.rdb.Incr(ctx, key).Result()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrProviderUnavailable, fmt.Errorf("quota counter: %w", err))
	}
	if used == 1 {
		// First call this month; a ~40 day TTL outlives the month and keeps
		// abandoned keys from accumulating.
		g.rdb.Expire(ctx, key, 40*24*time.Hour)
	}

	if used > g.limit {
		return apperrors.ErrQuotaExhausted
	}
	return nil
}

// Remaining reports how many provider calls are left this month.
func (g *QuotaGuard) Remaining(ctx context.Context) (int64, error) {
	key := quotaKeyPrefix + time.Now().UTC().Format("2006-01")

	used, err := g.rdb.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return g.limit, nil
		}
		return 0, apperrors.Wrap(apperrors.ErrProviderUnavailable, fmt.Errorf("quota counter: %w", err))
	}

	remaining := g.limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
