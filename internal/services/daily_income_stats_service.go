package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// dailyIncomeStatsService maintains the per-income-source daily aggregate.
type dailyIncomeStatsService struct {
	db *gorm.DB
}

// NewDailyIncomeStatsService creates a new DailyIncomeStatsServicer.
func NewDailyIncomeStatsService(db *gorm.DB) DailyIncomeStatsServicer {
	return &dailyIncomeStatsService{db: db}
}

func (s *dailyIncomeStatsService) UpdateTotal(trx *gorm.DB, userID, incomeID string, date time.Time, amount decimal.Decimal) error {
	row := models.DailyIncomeStats{
		UserID:      userID,
		IncomeID:    incomeID,
		Date:        models.DayBucket(date),
		AmountTotal: amount,
	}
	keys := []clause.Column{{Name: "user_id"}, {Name: "income_id"}, {Name: "date"}}
	return upsertDelta(conn(s.db, trx), &row, keys, "amount_total")
}

func (s *dailyIncomeStatsService) AddToScore(trx *gorm.DB, userID, incomeID string, date time.Time, amount decimal.Decimal) error {
	return s.UpdateTotal(trx, userID, incomeID, date, amount)
}

func (s *dailyIncomeStatsService) SubtractFromScore(trx *gorm.DB, userID, incomeID string, date time.Time, amount decimal.Decimal) error {
	return s.UpdateTotal(trx, userID, incomeID, date, amount.Neg())
}

func (s *dailyIncomeStatsService) Summary(userID, incomeID string, from, to time.Time) ([]models.DailyIncomeStats, error) {
	var rows []models.DailyIncomeStats
	err := s.db.
		Where("user_id = ? AND income_id = ? AND date >= ? AND date <= ?",
			userID, incomeID, models.DayBucket(from), models.DayBucket(to)).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}
