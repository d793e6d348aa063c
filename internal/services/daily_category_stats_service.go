package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// dailyCategoryStatsService maintains the per-category daily aggregate table.
// Categories are only touched by expenses, so the table carries a single
// amount bucket.
type dailyCategoryStatsService struct {
	db *gorm.DB
}

// NewDailyCategoryStatsService creates a new DailyCategoryStatsServicer.
func NewDailyCategoryStatsService(db *gorm.DB) DailyCategoryStatsServicer {
	return &dailyCategoryStatsService{db: db}
}

func (s *dailyCategoryStatsService) UpdateTotal(trx *gorm.DB, userID, categoryID string, date time.Time, amount decimal.Decimal) error {
	row := models.DailyCategoryStats{
		UserID:      userID,
		CategoryID:  categoryID,
		Date:        models.DayBucket(date),
		AmountTotal: amount,
	}
	keys := []clause.Column{{Name: "user_id"}, {Name: "category_id"}, {Name: "date"}}
	return upsertDelta(conn(s.db, trx), &row, keys, "amount_total")
}

func (s *dailyCategoryStatsService) AddToScore(trx *gorm.DB, userID, categoryID string, date time.Time, amount decimal.Decimal) error {
	return s.UpdateTotal(trx, userID, categoryID, date, amount)
}

func (s *dailyCategoryStatsService) SubtractFromScore(trx *gorm.DB, userID, categoryID string, date time.Time, amount decimal.Decimal) error {
	return s.UpdateTotal(trx, userID, categoryID, date, amount.Neg())
}

func (s *dailyCategoryStatsService) Summary(userID, categoryID string, from, to time.Time) ([]models.DailyCategoryStats, error) {
	var rows []models.DailyCategoryStats
	err := s.db.
		Where("user_id = ? AND category_id = ? AND date >= ? AND date <= ?",
			userID, categoryID, models.DayBucket(from), models.DayBucket(to)).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}
