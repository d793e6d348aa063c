package models

// Currency is immutable reference data seeded by migration.
// Precision is the number of decimal places amounts in this currency are
// rounded to when written.
type Currency struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Code      string `gorm:"size:3;uniqueIndex;not null" json:"code"`
	Name      string `gorm:"not null" json:"name"`
	Symbol    string `gorm:"size:8" json:"symbol"`
	Precision int32  `gorm:"not null;default:2" json:"precision"`
}
