package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// totalColumn maps a transaction type to its aggregate bucket column.
func totalColumn(txType models.TransactionType) (string, error) {
	switch txType {
	case models.TransactionTypeIncome:
		return "income_total", nil
	case models.TransactionTypeExpense:
		return "expense_total", nil
	case models.TransactionTypeTransfer:
		return "transfer_total", nil
	}
	return "", apperrors.ErrInvalidTransactionType
}

// upsertDelta executes the shared insert-or-increment statement: insert row
// seeded with the delta if no row exists for the conflict key, otherwise add
// the delta to the existing bucket. One statement, so it stays race-free
// under concurrent writes for the same key.
func upsertDelta(h *gorm.DB, row interface{}, keys []clause.Column, column string) error {
	err := h.Clauses(clause.OnConflict{
		Columns: keys,
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:       gorm.Expr(column + " + excluded." + column),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(row).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// dailyStatsService maintains the user-level daily aggregate table.
type dailyStatsService struct {
	db *gorm.DB
}

// NewDailyStatsService creates a new DailyStatsServicer.
func NewDailyStatsService(db *gorm.DB) DailyStatsServicer {
	return &dailyStatsService{db: db}
}

// UpdateTotal applies a signed delta to the day's bucket for the given
// transaction type, creating the row lazily on first write.
func (s *dailyStatsService) UpdateTotal(trx *gorm.DB, userID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error {
	column, err := totalColumn(txType)
	if err != nil {
		return err
	}

	row := models.DailyStats{UserID: userID, Date: models.DayBucket(date)}
	switch txType {
	case models.TransactionTypeIncome:
		row.IncomeTotal = amount
	case models.TransactionTypeExpense:
		row.ExpenseTotal = amount
	case models.TransactionTypeTransfer:
		row.TransferTotal = amount
	}

	keys := []clause.Column{{Name: "user_id"}, {Name: "date"}}
	return upsertDelta(conn(s.db, trx), &row, keys, column)
}

// AddToScore records a transaction's contribution to the day's totals.
func (s *dailyStatsService) AddToScore(trx *gorm.DB, userID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error {
	return s.UpdateTotal(trx, userID, date, txType, amount)
}

// SubtractFromScore reverses a contribution previously added for a
// transaction that is being deleted or re-applied.
func (s *dailyStatsService) SubtractFromScore(trx *gorm.DB, userID string, date time.Time, txType models.TransactionType, amount decimal.Decimal) error {
	return s.UpdateTotal(trx, userID, date, txType, amount.Neg())
}

// Summary rolls the stored daily rows up into day, week or month buckets over
// the inclusive date range. Read-only.
func (s *dailyStatsService) Summary(userID string, from, to time.Time, period StatsPeriod) ([]StatsBucket, error) {
	var rows []models.DailyStats
	err := s.db.
		Where("user_id = ? AND date >= ? AND date <= ?", userID, models.DayBucket(from), models.DayBucket(to)).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	buckets := []StatsBucket{}
	for _, row := range rows {
		start := periodStart(row.Date, period)
		if len(buckets) == 0 || !buckets[len(buckets)-1].Date.Equal(start) {
			buckets = append(buckets, StatsBucket{Date: start})
		}
		last := &buckets[len(buckets)-1]
		last.IncomeTotal = last.IncomeTotal.Add(row.IncomeTotal)
		last.ExpenseTotal = last.ExpenseTotal.Add(row.ExpenseTotal)
		last.TransferTotal = last.TransferTotal.Add(row.TransferTotal)
	}
	return buckets, nil
}

// periodStart maps a day bucket to the start of its summary period.
// Weeks start on Monday.
func periodStart(day time.Time, period StatsPeriod) time.Time {
	switch period {
	case StatsPeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case StatsPeriodMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}
