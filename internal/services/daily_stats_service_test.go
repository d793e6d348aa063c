package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestDailyStatsUpsert(t *testing.T) {
	t.Run("creates_row_lazily", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUserWithCurrency(t, env.db, "USD")
		date := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

		err := env.stats.Overall.AddToScore(nil, user.ID, date, models.TransactionTypeIncome, decimal.NewFromInt(100))
		testutil.AssertNoError(t, err)

		var row models.DailyStats
		testutil.AssertNoError(t, env.db.Where("user_id = ? AND date = ?",
			user.ID, models.DayBucket(date)).First(&row).Error)
		testutil.AssertDecimalEqual(t, "100", row.IncomeTotal)
	})

	t.Run("increments_existing_row", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUserWithCurrency(t, env.db, "USD")
		date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

		for _, amount := range []int64{100, 50} {
			err := env.stats.Overall.AddToScore(nil, user.ID, date, models.TransactionTypeExpense, decimal.NewFromInt(amount))
			testutil.AssertNoError(t, err)
		}

		var rows []models.DailyStats
		testutil.AssertNoError(t, env.db.Where("user_id = ?", user.ID).Find(&rows).Error)
		if len(rows) != 1 {
			t.Fatalf("expected a single row, got %d", len(rows))
		}
		testutil.AssertDecimalEqual(t, "150", rows[0].ExpenseTotal)
	})

	t.Run("different_timezones_share_a_bucket", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUserWithCurrency(t, env.db, "USD")

		loc := time.FixedZone("UTC+8", 8*3600)
		utc := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)
		local := time.Date(2025, 6, 11, 6, 0, 0, 0, loc) // 2025-06-10T22:00Z

		testutil.AssertNoError(t, env.stats.Overall.AddToScore(nil, user.ID, utc, models.TransactionTypeIncome, decimal.NewFromInt(1)))
		testutil.AssertNoError(t, env.stats.Overall.AddToScore(nil, user.ID, local, models.TransactionTypeIncome, decimal.NewFromInt(2)))

		var rows []models.DailyStats
		testutil.AssertNoError(t, env.db.Where("user_id = ?", user.ID).Find(&rows).Error)
		if len(rows) != 1 {
			t.Fatalf("expected both writes in one calendar bucket, got %d rows", len(rows))
		}
		testutil.AssertDecimalEqual(t, "3", rows[0].IncomeTotal)
	})

	t.Run("subtract_mirrors_add", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUserWithCurrency(t, env.db, "USD")
		date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)

		testutil.AssertNoError(t, env.stats.Overall.AddToScore(nil, user.ID, date, models.TransactionTypeTransfer, decimal.NewFromInt(75)))
		testutil.AssertNoError(t, env.stats.Overall.SubtractFromScore(nil, user.ID, date, models.TransactionTypeTransfer, decimal.NewFromInt(75)))

		var row models.DailyStats
		testutil.AssertNoError(t, env.db.Where("user_id = ? AND date = ?",
			user.ID, models.DayBucket(date)).First(&row).Error)
		testutil.AssertDecimalEqual(t, "0", row.TransferTotal)
	})

	t.Run("rejects_unknown_type", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUserWithCurrency(t, env.db, "USD")

		err := env.stats.Overall.AddToScore(nil, user.ID, time.Now(), models.TransactionType("dividend"), decimal.NewFromInt(1))
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})
}

func TestDailyStatsSummary(t *testing.T) {
	// Mon 2025-06-02 .. Sun 2025-06-08 is one ISO week, the 9th starts the next.
	seed := func(t *testing.T, env *testEnv, userID string) {
		t.Helper()
		days := map[string]int64{
			"2025-06-02": 10,
			"2025-06-04": 20,
			"2025-06-08": 30,
			"2025-06-09": 40,
			"2025-07-01": 50,
		}
		for day, amount := range days {
			date, err := time.Parse("2006-01-02", day)
			testutil.AssertNoError(t, err)
			testutil.AssertNoError(t, env.stats.Overall.AddToScore(nil, userID, date, models.TransactionTypeIncome, decimal.NewFromInt(amount)))
		}
	}

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	t.Run("by_day", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUserWithCurrency(t, env.db, "USD")
		seed(t, env, user.ID)

		buckets, err := env.stats.Overall.Summary(user.ID, from, to, StatsPeriodDay)
		testutil.AssertNoError(t, err)
		if len(buckets) != 5 {
			t.Fatalf("expected 5 day buckets, got %d", len(buckets))
		}
		testutil.AssertDecimalEqual(t, "10", buckets[0].IncomeTotal)
	})

	t.Run("by_week_starting_monday", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUserWithCurrency(t, env.db, "USD")
		seed(t, env, user.ID)

		buckets, err := env.stats.Overall.Summary(user.ID, from, to, StatsPeriodWeek)
		testutil.AssertNoError(t, err)
		if len(buckets) != 3 {
			t.Fatalf("expected 3 week buckets, got %d", len(buckets))
		}
		// Mon the 2nd through Sun the 8th fold together.
		if !buckets[0].Date.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected first week to start Monday June 2, got %v", buckets[0].Date)
		}
		testutil.AssertDecimalEqual(t, "60", buckets[0].IncomeTotal)
		testutil.AssertDecimalEqual(t, "40", buckets[1].IncomeTotal)
	})

	t.Run("by_month", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUserWithCurrency(t, env.db, "USD")
		seed(t, env, user.ID)

		buckets, err := env.stats.Overall.Summary(user.ID, from, to, StatsPeriodMonth)
		testutil.AssertNoError(t, err)
		if len(buckets) != 2 {
			t.Fatalf("expected 2 month buckets, got %d", len(buckets))
		}
		testutil.AssertDecimalEqual(t, "100", buckets[0].IncomeTotal)
		testutil.AssertDecimalEqual(t, "50", buckets[1].IncomeTotal)
	})

	t.Run("range_is_inclusive", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUserWithCurrency(t, env.db, "USD")
		seed(t, env, user.ID)

		buckets, err := env.stats.Overall.Summary(user.ID,
			time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
			StatsPeriodDay)
		testutil.AssertNoError(t, err)
		if len(buckets) != 1 {
			t.Fatalf("expected the boundary day included, got %d buckets", len(buckets))
		}
		testutil.AssertDecimalEqual(t, "40", buckets[0].IncomeTotal)
	})

	t.Run("empty_range", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUserWithCurrency(t, env.db, "USD")

		buckets, err := env.stats.Overall.Summary(user.ID, from, to, StatsPeriodDay)
		testutil.AssertNoError(t, err)
		if len(buckets) != 0 {
			t.Errorf("expected no buckets, got %d", len(buckets))
		}
	})
}

func TestDimensionSummaries(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUserWithCurrency(t, env.db, "USD")
	usd := env.currency(t, "USD")
	source := testutil.CreateTestAccount(t, env.db, user.ID, usd.ID, "1000")
	target := testutil.CreateTestAccount(t, env.db, user.ID, usd.ID, "0")
	category := testutil.CreateTestCategory(t, env.db, user.ID, usd.ID)
	income := testutil.CreateTestIncome(t, env.db, user.ID, usd.ID)

	date := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	_, err := env.transactions.CreateIncome(user.ID, income.ID, source.ID, *amountOf("100"), date)
	testutil.AssertNoError(t, err)
	_, err = env.transactions.CreateExpense(user.ID, source.ID, category.ID, *amountOf("40"), date)
	testutil.AssertNoError(t, err)
	_, err = env.transactions.CreateTransfer(user.ID, source.ID, target.ID, *amountOf("25"), date)
	testutil.AssertNoError(t, err)

	from, to := date.AddDate(0, 0, -1), date.AddDate(0, 0, 1)

	t.Run("account", func(t *testing.T) {
		rows, err := env.stats.Accounts.Summary(user.ID, source.ID, from, to)
		testutil.AssertNoError(t, err)
		if len(rows) != 1 {
			t.Fatalf("expected one row, got %d", len(rows))
		}
		testutil.AssertDecimalEqual(t, "100", rows[0].IncomeTotal)
		testutil.AssertDecimalEqual(t, "40", rows[0].ExpenseTotal)
		testutil.AssertDecimalEqual(t, "25", rows[0].TransferTotal)
	})

	t.Run("category", func(t *testing.T) {
		rows, err := env.stats.Categories.Summary(user.ID, category.ID, from, to)
		testutil.AssertNoError(t, err)
		if len(rows) != 1 {
			t.Fatalf("expected one row, got %d", len(rows))
		}
		testutil.AssertDecimalEqual(t, "40", rows[0].AmountTotal)
	})

	t.Run("income_source", func(t *testing.T) {
		rows, err := env.stats.Incomes.Summary(user.ID, income.ID, from, to)
		testutil.AssertNoError(t, err)
		if len(rows) != 1 {
			t.Fatalf("expected one row, got %d", len(rows))
		}
		testutil.AssertDecimalEqual(t, "100", rows[0].AmountTotal)
	})

	t.Run("transfer_pair", func(t *testing.T) {
		rows, err := env.stats.Transfers.Summary(user.ID, source.ID, from, to)
		testutil.AssertNoError(t, err)
		if len(rows) != 1 {
			t.Fatalf("expected one row, got %d", len(rows))
		}
		testutil.AssertDecimalEqual(t, "25", rows[0].AmountTotal)
	})
}
