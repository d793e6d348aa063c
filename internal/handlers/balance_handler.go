package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/services"
)

// BalanceHandler serves the user's running balance.
type BalanceHandler struct {
	balanceService services.BalanceServicer
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceService services.BalanceServicer) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// GetBalance returns the user's balance in their default currency.
// @Summary     Get balance
// @Description Get the authenticated user's running balance, denominated in their default currency
// @Tags        balance
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Balance "Current balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Balance not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /balance [get]
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.balanceService.Get(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
