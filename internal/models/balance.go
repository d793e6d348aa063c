package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the user's single running balance, denominated in the profile's
// default currency. Exactly one row per user, created at registration.
// It is only ever mutated through atomic signed increments, never overwritten
// with an absolute value.
type Balance struct {
	UserID    string          `gorm:"type:uuid;primaryKey" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
