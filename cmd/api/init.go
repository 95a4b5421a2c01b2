package main

import (
	"context"
	"errors"
	"time"

	"property-listings-api/internal/calculator"
	"property-listings-api/internal/currency"
	"property-listings-api/internal/handlers"
	"property-listings-api/internal/observability"

	"go.uber.org/zap"
)

// initTelemetry starts OTLP export when enabled and registers the domain
// metric instruments on whichever meter provider is then global.
func initTelemetry(ctx context.Context, enabled bool) (observability.Shutdown, error) {
	shutdown := observability.Shutdown(func(context.Context) error { return nil })
	if enabled {
		var err error
		shutdown, err = observability.InitTelemetry(ctx)
		if err != nil {
			return nil, err
		}
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}
	return shutdown, nil
}

// initRateStore picks Postgres when DATABASE_URL is set, otherwise an
// in-memory store seeded with default rates, and fronts it with Redis when
// REDIS_ADDR is set.
func initRateStore(ctx context.Context, cfg config) (currency.RateStore, map[string]handlers.Pinger, func(), error) {
	checks := map[string]handlers.Pinger{}
	var closers []func()

	var store currency.RateStore
	if cfg.DatabaseURL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := currency.OpenPostgres(pingCtx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			return nil, nil, nil, err
		}
		closers = append(closers, func() { db.Close() })
		store = currency.NewPostgresStore(db)
		observability.Logger.Info("using postgres rate store")
	} else {
		store = currency.NewMemoryStore(currency.DefaultRates()...)
		observability.Logger.Warn("DATABASE_URL not set, using in-memory rate store")
	}
	checks["rates"] = store

	if cfg.RedisAddr != "" {
		cache := currency.NewRedisCache(cfg.RedisAddr)
		closers = append(closers, func() { _ = cache.Close() })
		checks["rate_cache"] = cache
		store = currency.NewCachedStore(store, cache, cfg.RateCacheTTL)
		observability.Logger.Info("caching rates in redis",
			zap.String("addr", cfg.RedisAddr),
			zap.Duration("ttl", cfg.RateCacheTTL),
		)
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	return store, checks, closeAll, nil
}
