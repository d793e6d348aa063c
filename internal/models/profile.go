package models

// Profile holds per-user settings. Created at registration, patched by the
// user, never deleted while the user exists. DefaultCurrencyID denominates
// the user's single running balance.
type Profile struct {
	Base
	UserID            string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	DefaultCurrencyID uint   `gorm:"not null" json:"default_currency_id"`

	DefaultCurrency Currency `gorm:"foreignKey:DefaultCurrencyID" json:"default_currency,omitempty"`
}
