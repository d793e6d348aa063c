package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// currencyService reads the seeded currency reference data.
type currencyService struct {
	db *gorm.DB
}

// NewCurrencyService creates a new CurrencyServicer.
func NewCurrencyService(db *gorm.DB) CurrencyServicer {
	return &currencyService{db: db}
}

func (s *currencyService) List() ([]models.Currency, error) {
	var currencies []models.Currency
	if err := s.db.Order("code").Find(&currencies).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return currencies, nil
}

func (s *currencyService) GetByID(id uint) (*models.Currency, error) {
	return currencyByID(s.db, id)
}

func (s *currencyService) GetByCode(code string) (*models.Currency, error) {
	var currency models.Currency
	if err := s.db.Where("code = ?", code).First(&currency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCurrencyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &currency, nil
}

// currencyByID resolves a currency on whichever handle the caller is using,
// so lookups inside a unit of work see rows written earlier in it.
func currencyByID(h *gorm.DB, id uint) (*models.Currency, error) {
	var currency models.Currency
	if err := h.Where("id = ?", id).First(&currency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCurrencyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &currency, nil
}
