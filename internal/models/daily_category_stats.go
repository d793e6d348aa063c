package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyCategoryStats aggregates expense totals per (user, category, date).
type DailyCategoryStats struct {
	UserID      string          `gorm:"type:uuid;primaryKey" json:"user_id"`
	CategoryID  string          `gorm:"type:uuid;primaryKey" json:"category_id"`
	Date        time.Time       `gorm:"primaryKey" json:"date"`
	AmountTotal decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount_total"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
