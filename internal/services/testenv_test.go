package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

// fakeProvider serves deterministic rates and records which bases were
// fetched. A nil table means "every requested pair exists at rate 2".
type fakeProvider struct {
	table    map[string]map[string]string
	calls    []string
	err      error
	failBase string
}

func (f *fakeProvider) GetRates(_ context.Context, base string, targets []string) (map[string]decimal.Decimal, error) {
	f.calls = append(f.calls, base)
	if f.err != nil {
		return nil, f.err
	}
	if f.failBase != "" && base == f.failBase {
		return nil, fmt.Errorf("provider rejected base %s", base)
	}

	out := make(map[string]decimal.Decimal, len(targets))
	for _, target := range targets {
		if f.table == nil {
			out[target] = decimal.NewFromInt(2)
			continue
		}
		if raw, ok := f.table[base][target]; ok {
			out[target] = decimal.RequireFromString(raw)
		}
	}
	return out, nil
}

// testEnv wires the full service graph over an in-memory database.
type testEnv struct {
	db           *gorm.DB
	provider     *fakeProvider
	users        UserServicer
	currencies   CurrencyServicer
	rates        ExchangeRateServicer
	balance      BalanceServicer
	stats        StatsServices
	accounts     AccountServicer
	categories   CategoryServicer
	incomes      IncomeServicer
	transactions TransactionServicer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	provider := &fakeProvider{}
	rateService := NewExchangeRateService(db, provider)
	balance := NewBalanceService(db, rateService)
	stats := StatsServices{
		Overall:    NewDailyStatsService(db),
		Accounts:   NewDailyAccountStatsService(db),
		Categories: NewDailyCategoryStatsService(db),
		Incomes:    NewDailyIncomeStatsService(db),
		Transfers:  NewDailyTransferStatsService(db),
	}

	return &testEnv{
		db:           db,
		provider:     provider,
		users:        NewUserService(db),
		currencies:   NewCurrencyService(db),
		rates:        rateService,
		balance:      balance,
		stats:        stats,
		accounts:     NewAccountService(db, balance, stats),
		categories:   NewCategoryService(db, balance, stats),
		incomes:      NewIncomeService(db, balance, stats),
		transactions: NewTransactionService(db, balance, rateService, stats),
	}
}

func (e *testEnv) currency(t *testing.T, code string) *models.Currency {
	t.Helper()
	return testutil.Currency(t, e.db, code)
}

func amountOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
