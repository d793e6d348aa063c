package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction is a single typed movement of money. The foreign keys present
// depend on the type: income carries IncomeID+AccountID, expense carries
// AccountID+CategoryID, transfer carries AccountID+TargetAccountID.
// The type is immutable after creation.
type Transaction struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Type       TransactionType `gorm:"not null" json:"type"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	CurrencyID uint            `gorm:"not null" json:"currency_id"`
	Date       time.Time       `gorm:"not null;index" json:"date"`

	AccountID       string  `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID      *string `gorm:"type:uuid;index" json:"category_id,omitempty"`
	IncomeID        *string `gorm:"type:uuid;index" json:"income_id,omitempty"`
	TargetAccountID *string `gorm:"type:uuid;index" json:"target_account_id,omitempty"`

	// TargetAmount is the amount credited to the target account of a
	// transfer, in the target account's currency. Snapshotted at creation so
	// the transfer can be reversed exactly even after rates move.
	TargetAmount *decimal.Decimal `gorm:"type:decimal(20,4)" json:"target_amount,omitempty"`

	Currency      Currency  `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	Account       Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Category      *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Income        *Income   `gorm:"foreignKey:IncomeID" json:"income,omitempty"`
	TargetAccount *Account  `gorm:"foreignKey:TargetAccountID" json:"target_account,omitempty"`
}
