package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyIncomeStats aggregates income totals per (user, income source, date).
type DailyIncomeStats struct {
	UserID      string          `gorm:"type:uuid;primaryKey" json:"user_id"`
	IncomeID    string          `gorm:"type:uuid;primaryKey" json:"income_id"`
	Date        time.Time       `gorm:"primaryKey" json:"date"`
	AmountTotal decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount_total"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
