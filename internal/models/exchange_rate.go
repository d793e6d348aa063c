package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateStaleness is the window after which a cached exchange rate becomes a
// candidate for background refresh.
const RateStaleness = 12 * time.Hour

// ExchangeRate stores the conversion rate from BaseCode into TargetCode.
// Rows are created on first fetch for a base currency and updated in place
// afterwards, never deleted.
type ExchangeRate struct {
	BaseCode   string          `gorm:"size:3;primaryKey" json:"base_code"`
	TargetCode string          `gorm:"size:3;primaryKey" json:"target_code"`
	Rate       decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"rate"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Stale reports whether the rate is older than the staleness window at the
// given instant.
func (r *ExchangeRate) Stale(now time.Time) bool {
	return now.Sub(r.UpdatedAt) > RateStaleness
}
