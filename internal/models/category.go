package models

import "github.com/shopspring/decimal"

// Category is an expense dimension. Amount is a user-managed allocation in the
// category's currency and participates in balance orchestration the same way
// an account's amount does.
type Category struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string          `gorm:"not null" json:"name"`
	CurrencyID uint            `gorm:"not null" json:"currency_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	Status     EntityStatus    `gorm:"not null;default:'enabled'" json:"status"`

	Currency     Currency      `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
