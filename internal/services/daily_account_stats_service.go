package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// dailyAccountStatsService maintains the per-account daily aggregate table.
type dailyAccountStatsService struct {
	db *gorm.DB
}

// NewDailyAccountStatsService creates a new DailyAccountStatsServicer.
func NewDailyAccountStatsService(db *gorm.DB) DailyAccountStatsServicer {
	return &dailyAccountStatsService{db: db}
}

func (s *dailyAccountStatsService) UpdateTotal(trx *gorm.DB, userID, accountID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error {
	column, err := totalColumn(txType)
	if err != nil {
		return err
	}

	row := models.DailyAccountStats{UserID: userID, AccountID: accountID, Date: models.DayBucket(date)}
	switch txType {
	case models.TransactionTypeIncome:
		row.IncomeTotal = amount
	case models.TransactionTypeExpense:
		row.ExpenseTotal = amount
	case models.TransactionTypeTransfer:
		row.TransferTotal = amount
	}

	keys := []clause.Column{{Name: "user_id"}, {Name: "account_id"}, {Name: "date"}}
	return upsertDelta(conn(s.db, trx), &row, keys, column)
}

func (s *dailyAccountStatsService) AddToScore(trx *gorm.DB, userID, accountID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error {
	return s.UpdateTotal(trx, userID, accountID, date, txType, amount)
}

func (s *dailyAccountStatsService) SubtractFromScore(trx *gorm.DB, userID, accountID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error {
	return s.UpdateTotal(trx, userID, accountID, date, txType, amount.Neg())
}

func (s *dailyAccountStatsService) Summary(userID, accountID string, from, to time.Time) ([]models.DailyAccountStats, error) {
	var rows []models.DailyAccountStats
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
