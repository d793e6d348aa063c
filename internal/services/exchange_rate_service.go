package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/rates"
)

// exchangeRateService answers conversion-rate lookups and runs the periodic
// staleness sweep against the external provider.
type exchangeRateService struct {
	db       *gorm.DB
	provider rates.Provider
}

// NewExchangeRateService creates a new ExchangeRateServicer.
func NewExchangeRateService(db *gorm.DB, provider rates.Provider) ExchangeRateServicer {
	return &exchangeRateService{db: db, provider: provider}
}

// Get returns the persisted rate from base into target, or ErrRateNotFound if
// it has never been fetched.
func (s *exchangeRateService) Get(trx *gorm.DB, base, target string) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	err := conn(s.db, trx).
		Where("base_code = ? AND target_code = ?", base, target).
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrRateNotFound,
				"No exchange rate from "+base+" to "+target)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rate, nil
}

// Gets returns every persisted rate for the given base currency.
func (s *exchangeRateService) Gets(trx *gorm.DB, base string) ([]models.ExchangeRate, error) {
	var rows []models.ExchangeRate
	if err := conn(s.db, trx).Where("base_code = ?", base).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// UpdateCurrencyRates sweeps every known currency and refreshes its rate set.
// A base currency with no persisted rates gets a full fetch-and-insert; one
// with persisted rates gets only its stale targets refetched and patched in a
// single batched update. Provider failures are logged and skip that base
// currency only, so one bad fetch never aborts the sweep.
func (s *exchangeRateService) UpdateCurrencyRates(ctx context.Context) error {
	var currencies []models.Currency
	if err := s.db.Order("id").Find(&currencies).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	codes := make([]string, 0, len(currencies))
	for _, c := range currencies {
		codes = append(codes, c.Code)
	}

	now := time.Now().UTC()
	for _, base := range currencies {
		if err := s.refreshBase(ctx, base.Code, codes, now); err != nil {
			logger.Get().Warnw("exchange rate refresh failed",
				"base", base.Code,
				"error", err,
			)
		}
	}
	return nil
}

// refreshBase refreshes the rate rows for one base currency.
func (s *exchangeRateService) refreshBase(ctx context.Context, base string, codes []string, now time.Time) error {
	existing, err := s.Gets(nil, base)
	if err != nil {
		return err
	}

	known := make(map[string]models.ExchangeRate, len(existing))
	for _, row := range existing {
		known[row.TargetCode] = row
	}

	var missing, stale []string
	for _, code := range codes {
		if code == base {
			continue
		}
		row, ok := known[code]
		switch {
		case !ok:
			missing = append(missing, code)
		case row.Stale(now):
			stale = append(stale, code)
		}
	}

	if len(missing) == 0 && len(stale) == 0 {
		return nil
	}

	fetched, err := s.provider.GetRates(ctx, base, append(append([]string{}, missing...), stale...))
	if err != nil {
		return err
	}

	return WithUnitOfWork(s.db, func(tx *gorm.DB) error {
		if len(missing) > 0 {
			rows := make([]models.ExchangeRate, 0, len(missing))
			for _, target := range missing {
				rate, ok := fetched[target]
				if !ok {
					continue
				}
				rows = append(rows, models.ExchangeRate{
					BaseCode:   base,
					TargetCode: target,
					Rate:       rate,
					UpdatedAt:  now,
				})
			}
			if len(rows) > 0 {
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "base_code"}, {Name: "target_code"}},
					DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
				}).Create(&rows).Error
				if err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
		}

		if len(stale) > 0 {
			if err := patchRates(tx, base, stale, fetched, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// patchRates applies fetched rates to existing rows as one batched CASE-WHEN
// update instead of a statement per target.
func patchRates(tx *gorm.DB, base string, targets []string, fetched map[string]decimal.Decimal, now time.Time) error {
	var sb strings.Builder
	args := make([]interface{}, 0, 2*len(targets)+3)

	sb.WriteString("UPDATE exchange_rates SET rate = CASE target_code")
	patched := make([]string, 0, len(targets))
	for _, target := range targets {
		rate, ok := fetched[target]
		if !ok {
			continue
		}
		sb.WriteString(" WHEN ? THEN ?")
		args = append(args, target, rate)
		patched = append(patched, target)
	}
	if len(patched) == 0 {
		return nil
	}
	sb.WriteString(" ELSE rate END, updated_at = ? WHERE base_code = ? AND target_code IN ?")
	args = append(args, now, base, patched)

	if err := tx.Exec(sb.String(), args...).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
