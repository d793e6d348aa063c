package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyAccountStats aggregates per (user, account, date). An account can be
// touched by all three transaction types, so it carries one bucket per type.
type DailyAccountStats struct {
	UserID        string          `gorm:"type:uuid;primaryKey" json:"user_id"`
	AccountID     string          `gorm:"type:uuid;primaryKey" json:"account_id"`
	Date          time.Time       `gorm:"primaryKey" json:"date"`
	IncomeTotal   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"income_total"`
	ExpenseTotal  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"expense_total"`
	TransferTotal decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"transfer_total"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
