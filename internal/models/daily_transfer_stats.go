package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyTransferStats aggregates transfer totals per (user, source account,
// target account, date) — the transfer-pair dimension.
type DailyTransferStats struct {
	UserID          string          `gorm:"type:uuid;primaryKey" json:"user_id"`
	AccountID       string          `gorm:"type:uuid;primaryKey" json:"account_id"`
	TargetAccountID string          `gorm:"type:uuid;primaryKey" json:"target_account_id"`
	Date            time.Time       `gorm:"primaryKey" json:"date"`
	AmountTotal     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount_total"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
