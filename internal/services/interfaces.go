package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// Write methods across the service layer take an optional trailing
// trx parameter. A nil trx means the service opens (and finishes) its own
// unit of work; a non-nil trx joins the caller's, leaving commit and rollback
// to the caller. This keeps atomicity boundaries visible in every signature.

// UserServicer defines the contract for registration, login and profile
// management. Registration bootstraps the user's profile and the singleton
// balance row in one unit of work.
type UserServicer interface {
	Register(email, password, firstName, lastName string, defaultCurrencyID uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	GetProfile(userID string) (*models.Profile, error)
	PatchProfile(userID string, defaultCurrencyID uint) (*models.Profile, error)
}

// CurrencyServicer exposes the immutable currency reference data.
type CurrencyServicer interface {
	List() ([]models.Currency, error)
	GetByID(id uint) (*models.Currency, error)
	GetByCode(code string) (*models.Currency, error)
}

// ExchangeRateServicer answers conversion-rate lookups and keeps persisted
// rates from going stale.
type ExchangeRateServicer interface {
	Get(trx *gorm.DB, base, target string) (*models.ExchangeRate, error)
	Gets(trx *gorm.DB, base string) ([]models.ExchangeRate, error)
	UpdateCurrencyRates(ctx context.Context) error
}

// BalanceServicer maintains the user's single running balance. Apply converts
// the delta into the profile's default currency when needed and applies it as
// one atomic increment.
type BalanceServicer interface {
	Get(userID string) (*models.Balance, error)
	Apply(trx *gorm.DB, userID string, amount decimal.Decimal, currencyID uint) error
}

// AccountPatch holds the optional fields of an account patch. Amount is an
// incremental adjustment supplied by the caller, not a replacement total.
type AccountPatch struct {
	Name   *string
	Status *models.EntityStatus
	Amount *decimal.Decimal
}

// AccountServicer wraps account mutations together with their compensating
// balance adjustments.
type AccountServicer interface {
	Create(userID, name string, currencyID uint, amount *decimal.Decimal) (*models.Account, error)
	Get(userID, accountID string) (*models.Account, error)
	List(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	Patch(userID, accountID string, patch AccountPatch) (*models.Account, error)
	Delete(userID, accountID string) error
}

// EntityPatch holds the optional fields of a category or income patch.
// Amount is an incremental adjustment, as with accounts.
type EntityPatch struct {
	Name   *string
	Status *models.EntityStatus
	Amount *decimal.Decimal
}

// CategoryServicer wraps category mutations and their balance side-effects.
type CategoryServicer interface {
	Create(userID, name string, currencyID uint, amount *decimal.Decimal) (*models.Category, error)
	Get(userID, categoryID string) (*models.Category, error)
	List(userID string) ([]models.Category, error)
	Patch(userID, categoryID string, patch EntityPatch) (*models.Category, error)
	Delete(userID, categoryID string) error
}

// IncomeServicer wraps income-source mutations and their balance side-effects.
type IncomeServicer interface {
	Create(userID, name string, currencyID uint, amount *decimal.Decimal) (*models.Income, error)
	Get(userID, incomeID string) (*models.Income, error)
	List(userID string) ([]models.Income, error)
	Patch(userID, incomeID string, patch EntityPatch) (*models.Income, error)
	Delete(userID, incomeID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Type      *models.TransactionType
	AccountID *string
}

// TransactionServicer creates, reverses and re-applies typed transactions.
// Every mutation keeps the balance and all touched daily aggregates in step
// within a single unit of work.
type TransactionServicer interface {
	CreateIncome(userID, incomeID, accountID string, amount decimal.Decimal, date time.Time) (*models.Transaction, error)
	CreateExpense(userID, accountID, categoryID string, amount decimal.Decimal, date time.Time) (*models.Transaction, error)
	CreateTransfer(userID, accountID, targetAccountID string, amount decimal.Decimal, date time.Time) (*models.Transaction, error)
	Get(userID, transactionID string) (*models.Transaction, error)
	List(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	PatchAmount(userID, transactionID string, amount decimal.Decimal) (*models.Transaction, error)
	Delete(userID, transactionID string) error
}

// StatsPeriod selects the grouping granularity of a stats summary.
type StatsPeriod string

const (
	StatsPeriodDay   StatsPeriod = "day"
	StatsPeriodWeek  StatsPeriod = "week"
	StatsPeriodMonth StatsPeriod = "month"
)

// StatsBucket is one row of a summary rollup: period start plus the totals
// accumulated inside that period.
type StatsBucket struct {
	Date          time.Time       `json:"date"`
	IncomeTotal   decimal.Decimal `json:"income_total"`
	ExpenseTotal  decimal.Decimal `json:"expense_total"`
	TransferTotal decimal.Decimal `json:"transfer_total"`
}

// DailyStatsServicer maintains the user-level daily aggregate.
type DailyStatsServicer interface {
	UpdateTotal(trx *gorm.DB, userID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error
	AddToScore(trx *gorm.DB, userID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error
	SubtractFromScore(trx *gorm.DB, userID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error
	Summary(userID string, from, to time.Time, period StatsPeriod) ([]StatsBucket, error)
}

// DailyAccountStatsServicer maintains the per-account daily aggregate.
type DailyAccountStatsServicer interface {
	UpdateTotal(trx *gorm.DB, userID, accountID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error
	AddToScore(trx *gorm.DB, userID, accountID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error
	SubtractFromScore(trx *gorm.DB, userID, accountID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error
	Summary(userID, accountID string, from, to time.Time) ([]models.DailyAccountStats, error)
}

// DailyCategoryStatsServicer maintains the per-category daily aggregate.
type DailyCategoryStatsServicer interface {
	UpdateTotal(trx *gorm.DB, userID, categoryID string, date time.Time, amount decimal.Decimal) error
	AddToScore(trx *gorm.DB, userID, categoryID string, date time.Time, amount decimal.Decimal) error
	SubtractFromScore(trx *gorm.DB, userID, categoryID string, date time.Time, amount decimal.Decimal) error
	Summary(userID, categoryID string, from, to time.Time) ([]models.DailyCategoryStats, error)
}

// DailyIncomeStatsServicer maintains the per-income-source daily aggregate.
type DailyIncomeStatsServicer interface {
	UpdateTotal(trx *gorm.DB, userID, incomeID string, date time.Time, amount decimal.Decimal) error
	AddToScore(trx *gorm.DB, userID, incomeID string, date time.Time, amount decimal.Decimal) error
	SubtractFromScore(trx *gorm.DB, userID, incomeID string, date time.Time, amount decimal.Decimal) error
	Summary(userID, incomeID string, from, to time.Time) ([]models.DailyIncomeStats, error)
}

// DailyTransferStatsServicer maintains the transfer-pair daily aggregate.
type DailyTransferStatsServicer interface {
	UpdateTotal(trx *gorm.DB, userID, accountID, targetAccountID string, date time.Time, amount decimal.Decimal) error
	AddToScore(trx *gorm.DB, userID, accountID, targetAccountID string, date time.Time, amount decimal.Decimal) error
	SubtractFromScore(trx *gorm.DB, userID, accountID, targetAccountID string, date time.Time, amount decimal.Decimal) error
	Summary(userID, accountID string, from, to time.Time) ([]models.DailyTransferStats, error)
}
