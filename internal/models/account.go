package models

import "github.com/shopspring/decimal"

// EntityStatus is the enable/disable lifecycle shared by accounts, categories
// and incomes. Deletion is modelled separately through the soft-delete column.
type EntityStatus string

const (
	EntityStatusEnabled  EntityStatus = "enabled"
	EntityStatusDisabled EntityStatus = "disabled"
)

// Account represents a financial account. Amount is the account's own balance
// in its own currency; it is patched by the user and by transaction
// side-effects.
type Account struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string          `gorm:"not null" json:"name"`
	CurrencyID uint            `gorm:"not null" json:"currency_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	Status     EntityStatus    `gorm:"not null;default:'enabled'" json:"status"`

	Currency     Currency      `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
