package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// stubProvider answers every rate request with 2 so sweeps succeed without
// network access.
type stubProvider struct{}

func (stubProvider) GetRates(_ context.Context, _ string, targets []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(targets))
	for _, target := range targets {
		out[target] = decimal.NewFromInt(2)
	}
	return out, nil
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Currency{},
		&models.ExchangeRate{},
		&models.Balance{},
		&models.Account{},
		&models.Category{},
		&models.Income{},
		&models.Transaction{},
		&models.DailyStats{},
		&models.DailyAccountStats{},
		&models.DailyCategoryStats{},
		&models.DailyIncomeStats{},
		&models.DailyTransferStats{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	currencies := []models.Currency{
		{Code: "USD", Name: "US Dollar", Symbol: "$", Precision: 2},
		{Code: "EUR", Name: "Euro", Symbol: "€", Precision: 2},
		{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Precision: 0},
	}
	for i := range currencies {
		if err := db.Create(&currencies[i]).Error; err != nil {
			t.Fatalf("failed to seed currency %s: %v", currencies[i].Code, err)
		}
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	currencyService := services.NewCurrencyService(db)
	rateService := services.NewExchangeRateService(db, stubProvider{})
	balanceService := services.NewBalanceService(db, rateService)
	stats := services.StatsServices{
		Overall:    services.NewDailyStatsService(db),
		Accounts:   services.NewDailyAccountStatsService(db),
		Categories: services.NewDailyCategoryStatsService(db),
		Incomes:    services.NewDailyIncomeStatsService(db),
		Transfers:  services.NewDailyTransferStatsService(db),
	}
	accountService := services.NewAccountService(db, balanceService, stats)
	categoryService := services.NewCategoryService(db, balanceService, stats)
	incomeService := services.NewIncomeService(db, balanceService, stats)
	transactionService := services.NewTransactionService(db, balanceService, rateService, stats)

	// Handlers
	tokens := middleware.NewTokenManager("integration-test-secret")
	authHandler := handlers.NewAuthHandler(userService, tokens)
	accountHandler := handlers.NewAccountHandler(accountService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	incomeHandler := handlers.NewIncomeHandler(incomeService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	balanceHandler := handlers.NewBalanceHandler(balanceService)
	currencyHandler := handlers.NewCurrencyHandler(currencyService, rateService)
	statsHandler := handlers.NewStatsHandler(stats)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	v1.GET("/currencies", currencyHandler.ListCurrencies)
	v1.GET("/currencies/:base/rates", currencyHandler.GetRates)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.GET("/profile", authHandler.GetProfile)
	protected.PATCH("/profile", authHandler.UpdateProfile)
	protected.GET("/balance", balanceHandler.GetBalance)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PATCH("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PATCH("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	incomes := protected.Group("/incomes")
	incomes.POST("", incomeHandler.CreateIncome)
	incomes.GET("", incomeHandler.GetUserIncomes)
	incomes.GET("/:id", incomeHandler.GetIncomeByID)
	incomes.PATCH("/:id", incomeHandler.UpdateIncome)
	incomes.DELETE("/:id", incomeHandler.DeleteIncome)

	transactions := protected.Group("/transactions")
	transactions.POST("/income", transactionHandler.CreateIncomeTransaction)
	transactions.POST("/expense", transactionHandler.CreateExpenseTransaction)
	transactions.POST("/transfer", transactionHandler.CreateTransferTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	statsGroup := protected.Group("/stats")
	statsGroup.GET("/summary", statsHandler.GetSummary)
	statsGroup.GET("/accounts/:id", statsHandler.GetAccountStats)
	statsGroup.GET("/categories/:id", statsHandler.GetCategoryStats)
	statsGroup.GET("/incomes/:id", statsHandler.GetIncomeStats)
	statsGroup.GET("/transfers/:id", statsHandler.GetTransferStats)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// currencyID looks up a seeded currency by code.
func (app *testApp) currencyID(t *testing.T, code string) uint {
	t.Helper()
	var currency models.Currency
	if err := app.DB.Where("code = ?", code).First(&currency).Error; err != nil {
		t.Fatalf("failed to load currency %s: %v", code, err)
	}
	return currency.ID
}

// registerUser registers a new user with USD as default currency and returns
// the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User","default_currency_id":%d}`,
		email, password, app.currencyID(t, "USD"))
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string), result["refresh_token"].(string)
}

// createAccount creates an account and returns its ID.
func (app *testApp) createAccount(t *testing.T, token, name, code, amount string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"currency_id":%d,"amount":%q}`, name, app.currencyID(t, code), amount)
	rec := app.request("POST", "/api/v1/accounts", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	account := result["account"].(map[string]interface{})
	return account["id"].(string)
}

// seedRate inserts an exchange rate directly so conversions do not depend on
// a sweep having run.
func seedRate(t *testing.T, app *testApp, base, target, rate string) {
	t.Helper()
	row := models.ExchangeRate{
		BaseCode:   base,
		TargetCode: target,
		Rate:       decimal.RequireFromString(rate),
	}
	if err := app.DB.Create(&row).Error; err != nil {
		t.Fatalf("failed to seed rate %s->%s: %v", base, target, err)
	}
}

// assertAmount compares two decimal strings by numeric value.
func assertAmount(t *testing.T, expected, actual string) {
	t.Helper()
	if !decimal.RequireFromString(expected).Equal(decimal.RequireFromString(actual)) {
		t.Errorf("expected amount %s, got %s", expected, actual)
	}
}

// balanceAmount fetches the user's balance through the API.
func (app *testApp) balanceAmount(t *testing.T, token string) string {
	t.Helper()
	rec := app.request("GET", "/api/v1/balance", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get balance failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	balance := result["balance"].(map[string]interface{})
	return balance["balance"].(string)
}
