package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a unique email, a profile defaulting to
// USD, and a zero balance row.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithCurrency(t, db, "USD")
}

// CreateTestUserWithCurrency creates a user whose default currency is the
// given code.
func CreateTestUserWithCurrency(t *testing.T, db *gorm.DB, currencyCode string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	currency := Currency(t, db, currencyCode)
	profile := &models.Profile{UserID: user.ID, DefaultCurrencyID: currency.ID}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	user.Profile = profile

	if err := db.Create(&models.Balance{UserID: user.ID}).Error; err != nil {
		t.Fatalf("failed to create test balance: %v", err)
	}

	return user
}

// CreateTestRate persists an exchange rate refreshed now.
func CreateTestRate(t *testing.T, db *gorm.DB, base, target, rate string) *models.ExchangeRate {
	t.Helper()
	return CreateTestRateAt(t, db, base, target, rate, time.Now())
}

// CreateTestRateAt persists an exchange rate with an explicit refresh time,
// letting tests stage stale rates.
func CreateTestRateAt(t *testing.T, db *gorm.DB, base, target, rate string, updatedAt time.Time) *models.ExchangeRate {
	t.Helper()

	row := &models.ExchangeRate{
		BaseCode:   base,
		TargetCode: target,
		Rate:       decimal.RequireFromString(rate),
		UpdatedAt:  updatedAt,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("failed to create test rate %s/%s: %v", base, target, err)
	}
	// Create may overwrite UpdatedAt; pin it.
	if err := db.Model(row).Update("updated_at", updatedAt).Error; err != nil {
		t.Fatalf("failed to pin rate timestamp: %v", err)
	}
	row.UpdatedAt = updatedAt
	return row
}

// CreateTestAccount creates an enabled account in the given currency with the
// given starting amount. The user's balance row is not touched; use the
// account service when the test needs the paired adjustment.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string, currencyID uint, amount string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Account %d", nextID()),
		CurrencyID: currencyID,
		Amount:     decimal.RequireFromString(amount),
		Status:     models.EntityStatusEnabled,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates an enabled expense category.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, currencyID uint) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Category %d", nextID()),
		CurrencyID: currencyID,
		Status:     models.EntityStatusEnabled,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestIncome creates an enabled income source.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID string, currencyID uint) *models.Income {
	t.Helper()

	income := &models.Income{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Income %d", nextID()),
		CurrencyID: currencyID,
		Status:     models.EntityStatusEnabled,
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}
