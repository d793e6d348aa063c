package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// categoryService wraps category mutations with their balance side-effects.
type categoryService struct {
	db       *gorm.DB
	balance  BalanceServicer
	reverser transactionReverser
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, balance BalanceServicer, stats StatsServices) CategoryServicer {
	return &categoryService{
		db:       db,
		balance:  balance,
		reverser: transactionReverser{balance: balance, stats: stats},
	}
}

// Create inserts the category and applies its amount to the user's balance.
func (s *categoryService) Create(userID, name string, currencyID uint, amount *decimal.Decimal) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Category name is required")
	}
	if amount == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Category amount is required")
	}
	if _, err := currencyByID(s.db, currencyID); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID:     userID,
		Name:       name,
		CurrencyID: currencyID,
		Amount:     *amount,
		Status:     models.EntityStatusEnabled,
	}

	err := WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.balance.Apply(tx, userID, *amount, currencyID)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Get retrieves a category by ID for a specific user.
func (s *categoryService) Get(userID, categoryID string) (*models.Category, error) {
	return categoryByID(s.db, userID, categoryID)
}

// List returns all of the user's categories.
func (s *categoryService) List(userID string) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// Patch updates the category's mutable fields; a patched amount is an
// incremental adjustment mirrored onto the balance.
func (s *categoryService) Patch(userID, categoryID string, patch EntityPatch) (*models.Category, error) {
	var category *models.Category
	err := WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		var err error
		category, err = categoryByID(tx, userID, categoryID)
		if err != nil {
			return err
		}
		currencyID := category.CurrencyID
		if _, err := currencyByID(tx, currencyID); err != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Category currency cannot be resolved")
		}

		updates := make(map[string]interface{})
		if patch.Name != nil && *patch.Name != "" {
			updates["name"] = *patch.Name
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if len(updates) > 0 {
			if err := tx.Model(category).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if patch.Amount != nil && !patch.Amount.IsZero() {
			result := tx.Model(&models.Category{}).
				Where("id = ?", category.ID).
				Update("amount", gorm.Expr("amount + ?", *patch.Amount))
			if result.Error != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
			}
			if err := s.balance.Apply(tx, userID, *patch.Amount, currencyID); err != nil {
				return err
			}
		}

		return tx.Where("id = ?", category.ID).First(category).Error
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes the category, reverses its dependent transactions in full
// (aggregates, account amounts and balance), then reverses the category's own
// amount. Amount and currency are snapshotted before the destructive writes.
func (s *categoryService) Delete(userID, categoryID string) error {
	return WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		category, err := categoryByID(tx, userID, categoryID)
		if err != nil {
			return err
		}
		amount, currencyID := category.Amount, category.CurrencyID
		if _, err := currencyByID(tx, currencyID); err != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Category currency cannot be resolved")
		}

		var txns []models.Transaction
		err = tx.Where("user_id = ? AND category_id = ?", userID, categoryID).Find(&txns).Error
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

		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.balance.Apply(tx, userID, amount.Neg(), currencyID)
	})
}

// categoryByID resolves a live category owned by the user.
func categoryByID(h *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := h.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
