package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestBalanceGet(t *testing.T) {
	t.Run("returns_row", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)

		balance, err := env.balance.Get(user.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, "0", balance.Balance)
	})

	t.Run("missing_row", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.balance.Get("no-such-user")
		testutil.AssertAppError(t, err, "BALANCE_NOT_FOUND")
	})
}

func TestBalanceApply(t *testing.T) {
	t.Run("same_currency", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		usd := env.currency(t, "USD")

		err := env.balance.Apply(nil, user.ID, decimal.RequireFromString("100"), usd.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, env.db, user.ID, "100")
	})

	t.Run("converts_through_rate", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db) // default USD
		eur := env.currency(t, "EUR")
		testutil.CreateTestRate(t, env.db, "EUR", "USD", "1.10")

		err := env.balance.Apply(nil, user.ID, decimal.RequireFromString("100"), eur.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, env.db, user.ID, "110")
	})

	t.Run("rounds_to_default_precision", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUserWithCurrency(t, env.db, "JPY")
		usd := env.currency(t, "USD")
		testutil.CreateTestRate(t, env.db, "USD", "JPY", "151.379")

		// 10 * 151.379 = 1513.79, rounded to JPY's zero decimal places.
		err := env.balance.Apply(nil, user.ID, decimal.RequireFromString("10"), usd.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, env.db, user.ID, "1514")
	})

	t.Run("negative_delta", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		usd := env.currency(t, "USD")

		testutil.AssertNoError(t, env.balance.Apply(nil, user.ID, decimal.RequireFromString("50"), usd.ID))
		testutil.AssertNoError(t, env.balance.Apply(nil, user.ID, decimal.RequireFromString("-80"), usd.ID))
		testutil.AssertBalance(t, env.db, user.ID, "-30")
	})

	t.Run("zero_delta_is_noop", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		usd := env.currency(t, "USD")

		var row models.Balance
		testutil.AssertNoError(t, env.db.Where("user_id = ?", user.ID).First(&row).Error)
		before := row.UpdatedAt

		testutil.AssertNoError(t, env.balance.Apply(nil, user.ID, decimal.Zero, usd.ID))

		testutil.AssertNoError(t, env.db.Where("user_id = ?", user.ID).First(&row).Error)
		if !row.UpdatedAt.Equal(before) {
			t.Error("expected zero delta to leave the row untouched")
		}
	})

	t.Run("missing_rate", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		eur := env.currency(t, "EUR")

		err := env.balance.Apply(nil, user.ID, decimal.RequireFromString("100"), eur.ID)
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
		testutil.AssertBalance(t, env.db, user.ID, "0")
	})

	t.Run("missing_profile", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		usd := env.currency(t, "USD")
		testutil.AssertNoError(t, env.db.Unscoped().Where("user_id = ?", user.ID).Delete(&models.Profile{}).Error)

		err := env.balance.Apply(nil, user.ID, decimal.RequireFromString("10"), usd.ID)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_balance_row", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		usd := env.currency(t, "USD")
		testutil.AssertNoError(t, env.db.Where("user_id = ?", user.ID).Delete(&models.Balance{}).Error)

		err := env.balance.Apply(nil, user.ID, decimal.RequireFromString("10"), usd.ID)
		testutil.AssertAppError(t, err, "BALANCE_NOT_FOUND")
	})
}
