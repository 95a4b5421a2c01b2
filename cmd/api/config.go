package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"property-listings-api/internal/currency"
)

// loadDotEnv loads ENV_FILE (default .env) when present. Variables already
// set in the process environment win.
func loadDotEnv() error {
	path := env("ENV_FILE", ".env")

	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}

type config struct {
	Addr            string
	DatabaseURL     string
	RedisAddr       string
	RateCacheTTL    time.Duration
	PortalBaseURL   string
	PortalAPIKey    string
	PortalTimeout   time.Duration
	RateLimit       int
	DefaultCurrency currency.Code
	OTLPEnabled     bool
	TrustProxy      bool
}

func loadConfig() (config, error) {
	cfg := config{
		Addr:          env("HTTP_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		PortalBaseURL: os.Getenv("PORTAL_BASE_URL"),
		PortalAPIKey:  os.Getenv("PORTAL_API_KEY"),
	}

	var err error

	if cfg.RateCacheTTL, err = time.ParseDuration(env("RATE_CACHE_TTL", "10m")); err != nil {
		return config{}, fmt.Errorf("RATE_CACHE_TTL: %w", err)
	}
	if cfg.PortalTimeout, err = time.ParseDuration(env("PORTAL_TIMEOUT", "15s")); err != nil {
		return config{}, fmt.Errorf("PORTAL_TIMEOUT: %w", err)
	}
	if cfg.RateLimit, err = strconv.Atoi(env("RATE_LIMIT_PER_MINUTE", "60")); err != nil {
		return config{}, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
	}
	if cfg.DefaultCurrency, err = currency.ParseCode(env("DEFAULT_CURRENCY", "GYD")); err != nil {
		return config{}, fmt.Errorf("DEFAULT_CURRENCY: %w", err)
	}
	if cfg.OTLPEnabled, err = strconv.ParseBool(env("OTEL_ENABLED", "true")); err != nil {
		return config{}, fmt.Errorf("OTEL_ENABLED: %w", err)
	}
	if cfg.TrustProxy, err = strconv.ParseBool(env("TRUST_PROXY_HEADERS", "false")); err != nil {
		return config{}, fmt.Errorf("TRUST_PROXY_HEADERS: %w", err)
	}

	return cfg, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
