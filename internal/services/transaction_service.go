package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// transactionService creates, reverses and re-applies typed transactions.
// Every mutation runs inside one unit of work that keeps the entity write,
// the account amounts, the user's balance and all touched daily aggregates
// in step; a failure at any point rolls the whole request back.
type transactionService struct {
	db            *gorm.DB
	balance       BalanceServicer
	exchangeRates ExchangeRateServicer
	stats         StatsServices
	reverser      transactionReverser
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, balance BalanceServicer, exchangeRates ExchangeRateServicer, stats StatsServices) TransactionServicer {
	return &transactionService{
		db:            db,
		balance:       balance,
		exchangeRates: exchangeRates,
		stats:         stats,
		reverser:      transactionReverser{balance: balance, stats: stats},
	}
}

// CreateIncome records money arriving on an account from an income source.
func (s *transactionService) CreateIncome(userID, incomeID, accountID string, amount decimal.Decimal, date time.Time) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be greater than zero")
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var txn *models.Transaction
	err := WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		account, err := accountByID(tx, userID, accountID)
		if err != nil {
			return err
		}
		if _, err := incomeByID(tx, userID, incomeID); err != nil {
			return err
		}

		txn = &models.Transaction{
			UserID:     userID,
			Type:       models.TransactionTypeIncome,
			Amount:     amount,
			CurrencyID: account.CurrencyID,
			Date:       date,
			AccountID:  accountID,
			IncomeID:   &incomeID,
		}
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.applyEffects(tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// CreateExpense records money leaving an account against a category.
func (s *transactionService) CreateExpense(userID, accountID, categoryID string, amount decimal.Decimal, date time.Time) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be greater than zero")
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var txn *models.Transaction
	err := WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		account, err := accountByID(tx, userID, accountID)
		if err != nil {
			return err
		}
		if _, err := categoryByID(tx, userID, categoryID); err != nil {
			return err
		}

		txn = &models.Transaction{
			UserID:     userID,
			Type:       models.TransactionTypeExpense,
			Amount:     amount,
			CurrencyID: account.CurrencyID,
			Date:       date,
			AccountID:  accountID,
			CategoryID: &categoryID,
		}
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.applyEffects(tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// CreateTransfer moves money between two of the user's accounts. When the
// accounts are denominated in different currencies the credited amount is
// converted at the current rate and snapshotted on the transaction.
func (s *transactionService) CreateTransfer(userID, accountID, targetAccountID string, amount decimal.Decimal, date time.Time) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be greater than zero")
	}
	if accountID == targetAccountID {
		return nil, apperrors.ErrSameAccountTransfer
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var txn *models.Transaction
	err := WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		source, err := accountByID(tx, userID, accountID)
		if err != nil {
			return err
		}
		target, err := accountByID(tx, userID, targetAccountID)
		if err != nil {
			return err
		}

		targetAmount, err := s.convertLeg(tx, source, target, amount)
		if err != nil {
			return err
		}

		txn = &models.Transaction{
			UserID:          userID,
			Type:            models.TransactionTypeTransfer,
			Amount:          amount,
			CurrencyID:      source.CurrencyID,
			Date:            date,
			AccountID:       accountID,
			TargetAccountID: &targetAccountID,
			TargetAmount:    &targetAmount,
		}
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.applyEffects(tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Get retrieves a transaction by ID for a specific user.
func (s *transactionService) Get(userID, transactionID string) (*models.Transaction, error) {
	return transactionByID(s.db, userID, transactionID)
}

// List retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) List(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var txns []models.Transaction
	if err := base.Order("date DESC").Scopes(pagination.Paginate(page)).Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(txns, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// PatchAmount changes a transaction's amount by reversing its recorded
// effect and re-applying it with the new amount. The type is immutable.
func (s *transactionService) PatchAmount(userID, transactionID string, amount decimal.Decimal) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be greater than zero")
	}

	var txn *models.Transaction
	err := WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		var err error
		txn, err = transactionByID(tx, userID, transactionID)
		if err != nil {
			return err
		}

		if err := s.reverser.reverse(tx, txn, ""); err != nil {
			return err
		}

		txn.Amount = amount
		updates := map[string]interface{}{"amount": amount}

		if txn.Type == models.TransactionTypeTransfer {
			source, err := accountByID(tx, userID, txn.AccountID)
			if err != nil {
				return err
			}
			target, err := accountByID(tx, userID, *txn.TargetAccountID)
			if err != nil {
				return err
			}
			targetAmount, err := s.convertLeg(tx, source, target, amount)
			if err != nil {
				return err
			}
			txn.TargetAmount = &targetAmount
			updates["target_amount"] = targetAmount
		}

		if err := tx.Model(&models.Transaction{}).Where("id = ?", txn.ID).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.applyEffects(tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Delete removes a transaction and reverses its balance, account-amount and
// aggregate effects in the same commit.
func (s *transactionService) Delete(userID, transactionID string) error {
	return WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		txn, err := transactionByID(tx, userID, transactionID)
		if err != nil {
			return err
		}
		if err := s.reverser.reverse(tx, txn, ""); err != nil {
			return err
		}
		if err := tx.Delete(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// applyEffects applies txn's side effects: account amounts, the paired
// balance adjustments, and the daily aggregates for every dimension the
// transaction touches. For transfers TargetAmount must already be set.
func (s *transactionService) applyEffects(tx *gorm.DB, txn *models.Transaction) error {
	switch txn.Type {
	case models.TransactionTypeIncome:
		if err := adjustAccountAmount(tx, txn.AccountID, txn.Amount); err != nil {
			return err
		}
		if err := s.balance.Apply(tx, txn.UserID, txn.Amount, txn.CurrencyID); err != nil {
			return err
		}
		if err := s.stats.Overall.AddToScore(tx, txn.UserID, txn.Date, txn.Type, txn.Amount); err != nil {
			return err
		}
		if err := s.stats.Accounts.AddToScore(tx, txn.UserID, txn.AccountID, txn.Date, txn.Type, txn.Amount); err != nil {
			return err
		}
		return s.stats.Incomes.AddToScore(tx, txn.UserID, *txn.IncomeID, txn.Date, txn.Amount)

	case models.TransactionTypeExpense:
		if err := adjustAccountAmount(tx, txn.AccountID, txn.Amount.Neg()); err != nil {
			return err
		}
		if err := s.balance.Apply(tx, txn.UserID, txn.Amount.Neg(), txn.CurrencyID); err != nil {
			return err
		}
		if err := s.stats.Overall.AddToScore(tx, txn.UserID, txn.Date, txn.Type, txn.Amount); err != nil {
			return err
		}
		if err := s.stats.Accounts.AddToScore(tx, txn.UserID, txn.AccountID, txn.Date, txn.Type, txn.Amount); err != nil {
			return err
		}
		return s.stats.Categories.AddToScore(tx, txn.UserID, *txn.CategoryID, txn.Date, txn.Amount)

	case models.TransactionTypeTransfer:
		target, err := accountByID(tx, txn.UserID, *txn.TargetAccountID)
		if err != nil {
			return err
		}
		if err := adjustAccountAmount(tx, txn.AccountID, txn.Amount.Neg()); err != nil {
			return err
		}
		if err := s.balance.Apply(tx, txn.UserID, txn.Amount.Neg(), txn.CurrencyID); err != nil {
			return err
		}
		if err := adjustAccountAmount(tx, target.ID, *txn.TargetAmount); err != nil {
			return err
		}
		if err := s.balance.Apply(tx, txn.UserID, *txn.TargetAmount, target.CurrencyID); err != nil {
			return err
		}
		if err := s.stats.Overall.AddToScore(tx, txn.UserID, txn.Date, txn.Type, txn.Amount); err != nil {
			return err
		}
		if err := s.stats.Accounts.AddToScore(tx, txn.UserID, txn.AccountID, txn.Date, txn.Type, txn.Amount); err != nil {
			return err
		}
		return s.stats.Transfers.AddToScore(tx, txn.UserID, txn.AccountID, *txn.TargetAccountID, txn.Date, txn.Amount)
	}
	return apperrors.ErrInvalidTransactionType
}

// convertLeg computes the amount credited to the target account of a
// transfer, converting at the persisted rate when the two accounts are in
// different currencies.
func (s *transactionService) convertLeg(tx *gorm.DB, source, target *models.Account, amount decimal.Decimal) (decimal.Decimal, error) {
	if source.CurrencyID == target.CurrencyID {
		return amount, nil
	}

	sourceCurrency, err := currencyByID(tx, source.CurrencyID)
	if err != nil {
		return decimal.Zero, err
	}
	targetCurrency, err := currencyByID(tx, target.CurrencyID)
	if err != nil {
		return decimal.Zero, err
	}

	rate, err := s.exchangeRates.Get(tx, sourceCurrency.Code, targetCurrency.Code)
	if err != nil {
		if apperrorsCode(err) == apperrors.ErrRateNotFound.Code {
			return decimal.Zero, apperrors.WithMessage(apperrors.ErrInternalServer,
				fmt.Sprintf("No exchange rate available from %s to %s", sourceCurrency.Code, targetCurrency.Code))
		}
		return decimal.Zero, err
	}
	return amount.Mul(rate.Rate).Round(targetCurrency.Precision), nil
}

// transactionByID resolves a live transaction owned by the user.
func transactionByID(h *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := h.Where("id = ? AND user_id = ?", transactionID, userID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// applyTransactionFilters narrows a transaction query by the optional filter
// fields.
func applyTransactionFilters(q *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != nil {
		q = q.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.AccountID != nil {
		q = q.Where("account_id = ? OR target_account_id = ?", *filter.AccountID, *filter.AccountID)
	}
	return q
}
