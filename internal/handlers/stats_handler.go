package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// StatsHandler serves daily-aggregate summaries.
type StatsHandler struct {
	stats services.StatsServices
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats services.StatsServices) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// statsRange parses the from/to query parameters, defaulting to the last
// 30 days.
func statsRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from date")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to date")
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must not precede from")
	}
	return from, to, nil
}

// GetSummary returns the user-level rollup grouped by day, week, or month.
// @Summary     Get stats summary
// @Description Get income, expense and transfer totals grouped by day, week, or month
// @Tags        stats
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "Grouping period: day (default), week, or month"
// @Param       from   query string false "Start date (inclusive, default 30 days ago)"
// @Param       to     query string false "End date (inclusive, default today)"
// @Success     200 {array} services.StatsBucket "Summary buckets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stats/summary [get]
func (h *StatsHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	period := services.StatsPeriod(c.DefaultQuery("period", string(services.StatsPeriodDay)))
	switch period {
	case services.StatsPeriodDay, services.StatsPeriodWeek, services.StatsPeriodMonth:
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be day, week, or month"))
		return
	}

	from, to, err := statsRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	buckets, err := h.stats.Overall.Summary(userID, from, to, period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": buckets})
}

// GetAccountStats returns the daily rollup for one account.
// @Summary     Get account stats
// @Description Get one account's daily income, expense and transfer totals
// @Tags        stats
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Account ID"
// @Param       from query string false "Start date (inclusive, default 30 days ago)"
// @Param       to   query string false "End date (inclusive, default today)"
// @Success     200 {array} models.DailyAccountStats "Daily rows"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stats/accounts/{id} [get]
func (h *StatsHandler) GetAccountStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := statsRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.stats.Accounts.Summary(userID, accountID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": rows})
}

// GetCategoryStats returns the daily rollup for one category.
// @Summary     Get category stats
// @Description Get one category's daily expense totals
// @Tags        stats
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Category ID"
// @Param       from query string false "Start date (inclusive, default 30 days ago)"
// @Param       to   query string false "End date (inclusive, default today)"
// @Success     200 {array} models.DailyCategoryStats "Daily rows"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stats/categories/{id} [get]
func (h *StatsHandler) GetCategoryStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := statsRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.stats.Categories.Summary(userID, categoryID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": rows})
}

// GetIncomeStats returns the daily rollup for one income source.
// @Summary     Get income source stats
// @Description Get one income source's daily totals
// @Tags        stats
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Income source ID"
// @Param       from query string false "Start date (inclusive, default 30 days ago)"
// @Param       to   query string false "End date (inclusive, default today)"
// @Success     200 {array} models.DailyIncomeStats "Daily rows"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stats/incomes/{id} [get]
func (h *StatsHandler) GetIncomeStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := statsRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.stats.Incomes.Summary(userID, incomeID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": rows})
}

// GetTransferStats returns the daily transfer volume out of one account.
// @Summary     Get transfer stats
// @Description Get daily transfer totals from one account, broken down by target account
// @Tags        stats
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Source account ID"
// @Param       from query string false "Start date (inclusive, default 30 days ago)"
// @Param       to   query string false "End date (inclusive, default today)"
// @Success     200 {array} models.DailyTransferStats "Daily rows"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stats/transfers/{id} [get]
func (h *StatsHandler) GetTransferStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := statsRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.stats.Transfers.Summary(userID, accountID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": rows})
}
