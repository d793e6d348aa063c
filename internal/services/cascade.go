package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// StatsServices groups the five daily aggregate services so transaction
// mutations can fan a delta out to every dimension a transaction touches.
type StatsServices struct {
	Overall    DailyStatsServicer
	Accounts   DailyAccountStatsServicer
	Categories DailyCategoryStatsServicer
	Incomes    DailyIncomeStatsServicer
	Transfers  DailyTransferStatsServicer
}

// transactionReverser removes a transaction's footprint: its contribution to
// every aggregate it touched, its effect on account amounts, and the paired
// balance adjustments. It is shared by transaction deletion and by the
// cascades run when an account, category or income source is deleted.
type transactionReverser struct {
	balance BalanceServicer
	stats   StatsServices
}

// adjustAccountAmount applies a signed delta to an account's own amount as a
// single atomic increment.
func adjustAccountAmount(tx *gorm.DB, accountID string, delta decimal.Decimal) error {
	result := tx.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("amount", gorm.Expr("amount + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// reverse undoes txn inside the given transaction handle. skipAccountID names
// an account that is itself being deleted in the same unit of work: effects
// on that account are folded into its final amount and reversed through the
// entity's own -amount balance adjustment, so they are not reversed here.
func (r *transactionReverser) reverse(tx *gorm.DB, txn *models.Transaction, skipAccountID string) error {
	if err := r.subtractAggregates(tx, txn); err != nil {
		return err
	}

	switch txn.Type {
	case models.TransactionTypeIncome:
		if txn.AccountID != skipAccountID {
			if err := adjustAccountAmount(tx, txn.AccountID, txn.Amount.Neg()); err != nil {
				return err
			}
			if err := r.balance.Apply(tx, txn.UserID, txn.Amount.Neg(), txn.CurrencyID); err != nil {
				return err
			}
		}

	case models.TransactionTypeExpense:
		if txn.AccountID != skipAccountID {
			if err := adjustAccountAmount(tx, txn.AccountID, txn.Amount); err != nil {
				return err
			}
			if err := r.balance.Apply(tx, txn.UserID, txn.Amount, txn.CurrencyID); err != nil {
				return err
			}
		}

	case models.TransactionTypeTransfer:
		if txn.TargetAccountID == nil || txn.TargetAmount == nil {
			return apperrors.WithMessage(apperrors.ErrInternalServer, "Transfer transaction has no target snapshot")
		}
		if txn.AccountID != skipAccountID {
			if err := adjustAccountAmount(tx, txn.AccountID, txn.Amount); err != nil {
				return err
			}
			if err := r.balance.Apply(tx, txn.UserID, txn.Amount, txn.CurrencyID); err != nil {
				return err
			}
		}
		if *txn.TargetAccountID != skipAccountID {
			target, err := accountByID(tx, txn.UserID, *txn.TargetAccountID)
			if err != nil {
				return err
			}
			if err := adjustAccountAmount(tx, target.ID, txn.TargetAmount.Neg()); err != nil {
				return err
			}
			if err := r.balance.Apply(tx, txn.UserID, txn.TargetAmount.Neg(), target.CurrencyID); err != nil {
				return err
			}
		}

	default:
		return apperrors.ErrInvalidTransactionType
	}

	return nil
}

// subtractAggregates removes txn's contribution from every daily aggregate
// table it was added to.
func (r *transactionReverser) subtractAggregates(tx *gorm.DB, txn *models.Transaction) error {
	if err := r.stats.Overall.SubtractFromScore(tx, txn.UserID, txn.Date, txn.Type, txn.Amount); err != nil {
		return err
	}
	if err := r.stats.Accounts.SubtractFromScore(tx, txn.UserID, txn.AccountID, txn.Date, txn.Type, txn.Amount); err != nil {
		return err
	}

	switch txn.Type {
	case models.TransactionTypeExpense:
		if txn.CategoryID != nil {
			return r.stats.Categories.SubtractFromScore(tx, txn.UserID, *txn.CategoryID, txn.Date, txn.Amount)
		}
	case models.TransactionTypeIncome:
		if txn.IncomeID != nil {
			return r.stats.Incomes.SubtractFromScore(tx, txn.UserID, *txn.IncomeID, txn.Date, txn.Amount)
		}
	case models.TransactionTypeTransfer:
		if txn.TargetAccountID != nil {
			return r.stats.Transfers.SubtractFromScore(tx, txn.UserID, txn.AccountID, *txn.TargetAccountID, txn.Date, txn.Amount)
		}
	}
	return nil
}

// accountByID resolves a live account owned by the user on the given handle.
func accountByID(h *gorm.DB, userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := h.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}
