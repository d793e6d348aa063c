package main

import (
	"fmt"
	"net/http"
	"os"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/rates"
	"fintrack/internal/services"
	"fintrack/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title           Fintrack API
// @version         1.0
// @description     Fintrack is a personal finance application that tracks accounts, categories and income sources in multiple currencies against a single running balance.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     appConfig.RedisAddr,
		Password: appConfig.RedisPassword,
		DB:       appConfig.RedisDB,
	})

	// Initialize services
	db := dbManager.DB()
	quota := rates.NewQuotaGuard(rdb, appConfig.RateProviderQuota)
	provider := rates.NewClient(appConfig.RateProviderURL, appConfig.RateProviderKey, appConfig.RateRequestTimeout, quota)

	userService := services.NewUserService(db)
	currencyService := services.NewCurrencyService(db)
	rateService := services.NewExchangeRateService(db, provider)
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

	// Initialize handlers
	tokens := middleware.NewTokenManager(appConfig.JWTSecret)
	authHandler := handlers.NewAuthHandler(userService, tokens)
	accountHandler := handlers.NewAccountHandler(accountService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	incomeHandler := handlers.NewIncomeHandler(incomeService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	balanceHandler := handlers.NewBalanceHandler(balanceService)
	currencyHandler := handlers.NewCurrencyHandler(currencyService, rateService)
	statsHandler := handlers.NewStatsHandler(stats)

	// Initialize Gin router
	validator.Register()
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
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

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PATCH("/profile", authHandler.UpdateProfile)

	// Balance
	protected.GET("/balance", balanceHandler.GetBalance)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PATCH("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PATCH("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Income source routes
	incomes := protected.Group("/incomes")
	incomes.POST("", incomeHandler.CreateIncome)
	incomes.GET("", incomeHandler.GetUserIncomes)
	incomes.GET("/:id", incomeHandler.GetIncomeByID)
	incomes.PATCH("/:id", incomeHandler.UpdateIncome)
	incomes.DELETE("/:id", incomeHandler.DeleteIncome)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("/income", transactionHandler.CreateIncomeTransaction)
	transactions.POST("/expense", transactionHandler.CreateExpenseTransaction)
	transactions.POST("/transfer", transactionHandler.CreateTransferTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Stats routes
	statsGroup := protected.Group("/stats")
	statsGroup.GET("/summary", statsHandler.GetSummary)
	statsGroup.GET("/accounts/:id", statsHandler.GetAccountStats)
	statsGroup.GET("/categories/:id", statsHandler.GetCategoryStats)
	statsGroup.GET("/incomes/:id", statsHandler.GetIncomeStats)
	statsGroup.GET("/transfers/:id", statsHandler.GetTransferStats)

	log.Infof("Starting Fintrack backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
