package rates

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"fintrack/internal/testutil"
)

func newTestGuard(t *testing.T, limit int64) (*QuotaGuard, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewQuotaGuard(rdb, limit), mr
}

func TestQuotaAcquire(t *testing.T) {
	t.Run("within_budget", func(t *testing.T) {
		guard, _ := newTestGuard(t, 3)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			testutil.AssertNoError(t, guard.Acquire(ctx))
		}
	})

	t.Run("budget_spent", func(t *testing.T) {
		guard, _ := newTestGuard(t, 2)
		ctx := context.Background()

		testutil.AssertNoError(t, guard.Acquire(ctx))
		testutil.AssertNoError(t, guard.Acquire(ctx))
		testutil.AssertAppError(t, guard.Acquire(ctx), "QUOTA_EXHAUSTED")
		// Still exhausted on the next call.
		testutil.AssertAppError(t, guard.Acquire(ctx), "QUOTA_EXHAUSTED")
	})

	t.Run("counter_store_down", func(t *testing.T) {
		guard, mr := newTestGuard(t, 2)
		mr.Close()

		testutil.AssertAppError(t, guard.Acquire(context.Background()), "PROVIDER_UNAVAILABLE")
	})

	t.Run("counter_expires", func(t *testing.T) {
		guard, mr := newTestGuard(t, 1)
		ctx := context.Background()

		testutil.AssertNoError(t, guard.Acquire(ctx))
		testutil.AssertAppError(t, guard.Acquire(ctx), "QUOTA_EXHAUSTED")

		// Once the key expires the budget is back.
		mr.FastForward(41 * 24 * time.Hour)
		testutil.AssertNoError(t, guard.Acquire(ctx))
	})
}

func TestQuotaRemaining(t *testing.T) {
	t.Run("untouched_budget", func(t *testing.T) {
		guard, _ := newTestGuard(t, 10)

		remaining, err := guard.Remaining(context.Background())
		testutil.AssertNoError(t, err)
		if remaining != 10 {
			t.Errorf("expected full budget, got %d", remaining)
		}
	})

	t.Run("decrements_with_use", func(t *testing.T) {
		guard, _ := newTestGuard(t, 10)
		ctx := context.Background()

		testutil.AssertNoError(t, guard.Acquire(ctx))
		testutil.AssertNoError(t, guard.Acquire(ctx))

		remaining, err := guard.Remaining(ctx)
		testutil.AssertNoError(t, err)
		if remaining != 8 {
			t.Errorf("expected 8 remaining, got %d", remaining)
		}
	})

	t.Run("never_negative", func(t *testing.T) {
		guard, _ := newTestGuard(t, 1)
		ctx := context.Background()

		guard.Acquire(ctx)
		guard.Acquire(ctx)

		remaining, err := guard.Remaining(ctx)
		testutil.AssertNoError(t, err)
		if remaining != 0 {
			t.Errorf("expected 0 remaining, got %d", remaining)
		}
	})
}
