package models

import "github.com/shopspring/decimal"

// Income is an income source dimension (salary, freelance, ...). Amount is a
// user-managed figure in the income's currency.
type Income struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string          `gorm:"not null" json:"name"`
	CurrencyID uint            `gorm:"not null" json:"currency_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	Status     EntityStatus    `gorm:"not null;default:'enabled'" json:"status"`

	Currency     Currency      `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:IncomeID" json:"transactions,omitempty"`
}
