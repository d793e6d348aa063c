package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// dailyTransferStatsService maintains the transfer-pair daily aggregate,
// keyed by source and target account.
type dailyTransferStatsService struct {
	db *gorm.DB
}

// NewDailyTransferStatsService creates a new DailyTransferStatsServicer.
func NewDailyTransferStatsService(db *gorm.DB) DailyTransferStatsServicer {
	return &dailyTransferStatsService{db: db}
}

func (s *dailyTransferStatsService) UpdateTotal(trx *gorm.DB, userID, accountID, targetAccountID string, date time.Time, amount decimal.Decimal) error {
	row := models.DailyTransferStats{
		UserID:          userID,
		AccountID:       accountID,
		TargetAccountID: targetAccountID,
		Date:            models.DayBucket(date),
		AmountTotal:     amount,
	}
	keys := []clause.Column{
		{Name: "user_id"}, {Name: "account_id"}, {Name: "target_account_id"}, {Name: "date"},
	}
	return upsertDelta(conn(s.db, trx), &row, keys, "amount_total")
}

func (s *dailyTransferStatsService) AddToScore(trx *gorm.DB, userID, accountID, targetAccountID string, date time.Time, amount decimal.Decimal) error {
	return s.UpdateTotal(trx, userID, accountID, targetAccountID, date, amount)
}

func (s *dailyTransferStatsService) SubtractFromScore(trx *gorm.DB, userID, accountID, targetAccountID string, date time.Time, amount decimal.Decimal) error {
	return s.UpdateTotal(trx, userID, accountID, targetAccountID, date, amount.Neg())
}

// Summary returns the stored rows where the given account is the transfer
// source, across all target accounts.
func (s *dailyTransferStatsService) Summary(userID, accountID string, from, to time.Time) ([]models.DailyTransferStats, error) {
	var rows []models.DailyTransferStats
	err := s.db.
		Where("user_id = ? AND account_id = ? AND date >= ? AND date <= ?",
			userID, accountID, models.DayBucket(from), models.DayBucket(to)).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}
