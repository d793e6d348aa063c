package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// balanceService maintains the single running balance per user. The balance
// is denominated in the profile's default currency; deltas arriving in other
// currencies are converted before application.
type balanceService struct {
	db            *gorm.DB
	exchangeRates ExchangeRateServicer
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(db *gorm.DB, exchangeRates ExchangeRateServicer) BalanceServicer {
	return &balanceService{db: db, exchangeRates: exchangeRates}
}

// Get returns the user's balance row.
func (s *balanceService) Get(userID string) (*models.Balance, error) {
	var balance models.Balance
	if err := s.db.Where("user_id = ?", userID).First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBalanceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &balance, nil
}

// Apply adds a signed amount, denominated in the given currency, to the
// user's balance. When the currency differs from the profile default the
// amount is converted first and rounded to the default currency's precision.
// The increment is a single atomic UPDATE expression so concurrent requests
// for the same user never lose updates. Deltas of either sign are applied;
// only exact-zero deltas skip the write.
func (s *balanceService) Apply(trx *gorm.DB, userID string, amount decimal.Decimal, currencyID uint) error {
	if amount.IsZero() {
		return nil
	}

	h := conn(s.db, trx)

	var profile models.Profile
	if err := h.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "User has no profile with a default currency")
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	defaultCurrency, err := currencyByID(h, profile.DefaultCurrencyID)
	if err != nil {
		return err
	}

	delta := amount
	if currencyID != defaultCurrency.ID {
		sourceCurrency, err := currencyByID(h, currencyID)
		if err != nil {
			return err
		}

		rate, err := s.exchangeRates.Get(trx, sourceCurrency.Code, defaultCurrency.Code)
		if err != nil {
			if apperrorsCode(err) == apperrors.ErrRateNotFound.Code {
				return apperrors.WithMessage(apperrors.ErrInternalServer,
					fmt.Sprintf("No exchange rate available from %s to %s", sourceCurrency.Code, defaultCurrency.Code))
			}
			return err
		}
		delta = amount.Mul(rate.Rate)
	}
	delta = delta.Round(defaultCurrency.Precision)

	if delta.IsZero() {
		return nil
	}

	result := h.Model(&models.Balance{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBalanceNotFound
	}
	return nil
}

// apperrorsCode extracts the AppError code from err, or "" for foreign errors.
func apperrorsCode(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
