package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayBucket normalizes a timestamp to its UTC calendar date. Every daily
// aggregate row is keyed by the bucket, so two writes for the same wall-clock
// day always hit the same row regardless of the caller's time zone.
func DayBucket(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyStats is the user-level daily aggregate: one row per (user, date)
// holding running totals per transaction type. Derived data, rebuildable from
// the transaction log; rows are created lazily and upserted, never replaced.
type DailyStats struct {
	UserID        string          `gorm:"type:uuid;primaryKey" json:"user_id"`
	Date          time.Time       `gorm:"primaryKey" json:"date"`
	IncomeTotal   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"income_total"`
	ExpenseTotal  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"expense_total"`
	TransferTotal decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"transfer_total"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
