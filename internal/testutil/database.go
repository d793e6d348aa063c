// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"fintrack/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// allModels is the list of all GORM models to auto-migrate in tests.
var allModels = []interface{}{
	&models.User{},
	&models.Profile{},
	&models.Currency{},
	&models.ExchangeRate{},
	&models.Balance{},
	&models.Account{},
	&models.Category{},
	&models.Income{},
	&models.Transaction{},
	&models.DailyStats{},
	&models.DailyAccountStats{},
	&models.DailyCategoryStats{},
	&models.DailyIncomeStats{},
	&models.DailyTransferStats{},
}

// seedCurrencies mirrors the migration seed. JPY has zero-decimal precision
// so rounding behaviour is exercised in tests.
var seedCurrencies = []models.Currency{
	{Code: "USD", Name: "US Dollar", Symbol: "$", Precision: 2},
	{Code: "EUR", Name: "Euro", Symbol: "€", Precision: 2},
	{Code: "GBP", Name: "Pound Sterling", Symbol: "£", Precision: 2},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Precision: 0},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: "S$", Precision: 2},
}

// dbCounter ensures each test gets its own in-memory database.
var dbCounter atomic.Int64

// SetupTestDB creates an isolated in-memory SQLite database with all models
// migrated and the reference currencies seeded.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	for _, c := range seedCurrencies {
		currency := c
		if err := db.Where("code = ?", currency.Code).FirstOrCreate(&currency).Error; err != nil {
			t.Fatalf("failed to seed currency %s: %v", currency.Code, err)
		}
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

// Currency looks up a seeded currency by code.
func Currency(t *testing.T, db *gorm.DB, code string) *models.Currency {
	t.Helper()

	var currency models.Currency
	if err := db.Where("code = ?", code).First(&currency).Error; err != nil {
		t.Fatalf("failed to load currency %s: %v", code, err)
	}
	return &currency
}
