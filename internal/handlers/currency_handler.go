package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// CurrencyHandler serves currency reference data and persisted exchange rates.
type CurrencyHandler struct {
	currencyService services.CurrencyServicer
	rateService     services.ExchangeRateServicer
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyService services.CurrencyServicer, rateService services.ExchangeRateServicer) *CurrencyHandler {
	return &CurrencyHandler{currencyService: currencyService, rateService: rateService}
}

// ListCurrencies returns the supported currencies.
// @Summary     List currencies
// @Description Get all supported currencies
// @Tags        currencies
// @Accept      json
// @Produce     json
// @Success     200 {array} models.Currency "Currencies"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /currencies [get]
func (h *CurrencyHandler) ListCurrencies(c *gin.Context) {
	currencies, err := h.currencyService.List()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"currencies": currencies})
}

// GetRates returns the persisted rates from one base currency.
// @Summary     Get exchange rates
// @Description Get all persisted exchange rates from a base currency
// @Tags        currencies
// @Accept      json
// @Produce     json
// @Param       base path string true "Base currency code"
// @Success     200 {array} models.ExchangeRate "Exchange rates"
// @Failure     400 {object} ErrorResponse "Invalid currency code"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /currencies/{base}/rates [get]
func (h *CurrencyHandler) GetRates(c *gin.Context) {
	base := strings.ToUpper(c.Param("base"))
	if len(base) != 3 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid currency code"))
		return
	}

	rates, err := h.rateService.Gets(nil, base)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rates": rates})
}
