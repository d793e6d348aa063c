package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// incomeService wraps income-source mutations with their balance side-effects.
type incomeService struct {
	db       *gorm.DB
	balance  BalanceServicer
	reverser transactionReverser
}

// NewIncomeService creates a new IncomeServicer.
func NewIncomeService(db *gorm.DB, balance BalanceServicer, stats StatsServices) IncomeServicer {
	return &incomeService{
		db:       db,
		balance:  balance,
		reverser: transactionReverser{balance: balance, stats: stats},
	}
}

// Create inserts the income source and applies its amount to the balance.
func (s *incomeService) Create(userID, name string, currencyID uint, amount *decimal.Decimal) (*models.Income, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Income name is required")
	}
	if amount == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Income amount is required")
	}
	if _, err := currencyByID(s.db, currencyID); err != nil {
		return nil, err
	}

	income := &models.Income{
		UserID:     userID,
		Name:       name,
		CurrencyID: currencyID,
		Amount:     *amount,
		Status:     models.EntityStatusEnabled,
	}

	err := WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(income).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.balance.Apply(tx, userID, *amount, currencyID)
	})
	if err != nil {
		return nil, err
	}
	return income, nil
}

// Get retrieves an income source by ID for a specific user.
func (s *incomeService) Get(userID, incomeID string) (*models.Income, error) {
	return incomeByID(s.db, userID, incomeID)
}

// List returns all of the user's income sources.
func (s *incomeService) List(userID string) ([]models.Income, error) {
	var incomes []models.Income
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return incomes, nil
}

// Patch updates the income source's mutable fields; a patched amount is an
// incremental adjustment mirrored onto the balance.
func (s *incomeService) Patch(userID, incomeID string, patch EntityPatch) (*models.Income, error) {
	var income *models.Income
	err := WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		var err error
		income, err = incomeByID(tx, userID, incomeID)
		if err != nil {
			return err
		}
		currencyID := income.CurrencyID
		if _, err := currencyByID(tx, currencyID); err != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Income currency cannot be resolved")
		}

		updates := make(map[string]interface{})
		if patch.Name != nil && *patch.Name != "" {
			updates["name"] = *patch.Name
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if len(updates) > 0 {
			if err := tx.Model(income).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if patch.Amount != nil && !patch.Amount.IsZero() {
			result := tx.Model(&models.Income{}).
				Where("id = ?", income.ID).
				Update("amount", gorm.Expr("amount + ?", *patch.Amount))
			if result.Error != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
			}
			if err := s.balance.Apply(tx, userID, *patch.Amount, currencyID); err != nil {
				return err
			}
		}

		return tx.Where("id = ?", income.ID).First(income).Error
	})
	if err != nil {
		return nil, err
	}
	return income, nil
}

// Delete removes the income source, reverses its dependent transactions in
// full, then reverses the source's own amount on the balance.
func (s *incomeService) Delete(userID, incomeID string) error {
	return WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		income, err := incomeByID(tx, userID, incomeID)
		if err != nil {
			return err
		}
		amount, currencyID := income.Amount, income.CurrencyID
		if _, err := currencyByID(tx, currencyID); err != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Income currency cannot be resolved")
		}

		var txns []models.Transaction
		err = tx.Where("user_id = ? AND income_id = ?", userID, incomeID).Find(&txns).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for i := range txns {
			if err := s.reverser.reverse(tx, &txns[i], ""); err != nil {
				return err
			}
			if err := tx.Delete(&txns[i]).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Delete(income).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.balance.Apply(tx, userID, amount.Neg(), currencyID)
	})
}

// incomeByID resolves a live income source owned by the user.
func incomeByID(h *gorm.DB, userID, incomeID string) (*models.Income, error) {
	var income models.Income
	if err := h.Where("id = ? AND user_id = ?", incomeID, userID).First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &income, nil
}
