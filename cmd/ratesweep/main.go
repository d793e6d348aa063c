// Command ratesweep periodically refreshes persisted exchange rates against
// the external provider. It runs alongside the API so rate staleness is
// bounded even when no requests trigger a refresh.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/logger"
	"fintrack/internal/rates"
	"fintrack/internal/services"

	"github.com/redis/go-redis/v9"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	quota := rates.NewQuotaGuard(rdb, cfg.RateProviderQuota)
	provider := rates.NewClient(cfg.RateProviderURL, cfg.RateProviderKey, cfg.RateRequestTimeout, quota)
	rateService := services.NewExchangeRateService(dbManager.DB(), provider)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting rate sweep worker", "interval", cfg.RateSweepInterval.String())

	// Sweep once on startup, then on every tick.
	sweep(ctx, rateService)

	ticker := time.NewTicker(cfg.RateSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("rate sweep worker stopping")
			return nil
		case <-ticker.C:
			sweep(ctx, rateService)
		}
	}
}

func sweep(ctx context.Context, rateService services.ExchangeRateServicer) {
	if err := rateService.UpdateCurrencyRates(ctx); err != nil {
		logger.Get().Errorw("rate sweep failed", "error", err)
	}
}
