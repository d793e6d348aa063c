package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// accountService wraps account mutations with their compensating balance
// adjustments, each under one unit of work.
type accountService struct {
	db       *gorm.DB
	balance  BalanceServicer
	reverser transactionReverser
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB, balance BalanceServicer, stats StatsServices) AccountServicer {
	return &accountService{
		db:       db,
		balance:  balance,
		reverser: transactionReverser{balance: balance, stats: stats},
	}
}

// Create inserts the account and applies its opening amount to the user's
// balance. If either write fails, neither survives.
func (s *accountService) Create(userID, name string, currencyID uint, amount *decimal.Decimal) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Account name is required")
	}
	if amount == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Account amount is required")
	}
	if _, err := currencyByID(s.db, currencyID); err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:     userID,
		Name:       name,
		CurrencyID: currencyID,
		Amount:     *amount,
		Status:     models.EntityStatusEnabled,
	}

	err := WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.balance.Apply(tx, userID, *amount, currencyID)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Get retrieves an account by ID for a specific user.
func (s *accountService) Get(userID, accountID string) (*models.Account, error) {
	return accountByID(s.db, userID, accountID)
}

// List retrieves a paginated list of the user's accounts.
func (s *accountService) List(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Order("created_at").Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Patch updates the account's mutable fields. A patched amount is an
// incremental adjustment: it is added to the stored amount and mirrored onto
// the user's balance in the account's currency.
func (s *accountService) Patch(userID, accountID string, patch AccountPatch) (*models.Account, error) {
	var account *models.Account
	err := WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		var err error
		account, err = accountByID(tx, userID, accountID)
		if err != nil {
			return err
		}
		// Snapshot the currency before any write so the balance adjustment
		// cannot depend on post-mutation state.
		currencyID := account.CurrencyID
		if _, err := currencyByID(tx, currencyID); err != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Account currency cannot be resolved")
		}

		updates := make(map[string]interface{})
		if patch.Name != nil && *patch.Name != "" {
			updates["name"] = *patch.Name
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if len(updates) > 0 {
			if err := tx.Model(account).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if patch.Amount != nil && !patch.Amount.IsZero() {
			if err := adjustAccountAmount(tx, account.ID, *patch.Amount); err != nil {
				return err
			}
			if err := s.balance.Apply(tx, userID, *patch.Amount, currencyID); err != nil {
				return err
			}
		}

		return tx.Where("id = ?", account.ID).First(account).Error
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes the account, its dependent transactions and their aggregate
// contributions, then reverses the account's amount on the user's balance.
// The amount and currency are snapshotted before the destructive writes.
func (s *accountService) Delete(userID, accountID string) error {
	return WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		account, err := accountByID(tx, userID, accountID)
		if err != nil {
			return err
		}
		amount, currencyID := account.Amount, account.CurrencyID
		if _, err := currencyByID(tx, currencyID); err != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Account currency cannot be resolved")
		}

		var txns []models.Transaction
		err = tx.Where("user_id = ? AND (account_id = ? OR target_account_id = ?)",
			userID, accountID, accountID).Find(&txns).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for i := range txns {
			if err := s.reverser.reverse(tx, &txns[i], accountID); err != nil {
				return err
			}
			if err := tx.Delete(&txns[i]).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.balance.Apply(tx, userID, amount.Neg(), currencyID)
	})
}
