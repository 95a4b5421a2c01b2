package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"property-listings-api/internal/calculator"
	"property-listings-api/internal/currency"
	"property-listings-api/internal/observability"
	"property-listings-api/internal/portal"
	"property-listings-api/internal/ratelimit"
	"property-listings-api/internal/server"

	"go.uber.org/zap"
)

func main() {

	ctx := context.Background()

	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	cfg, err := loadConfig()
	if err != nil {
		observability.Logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Tracing, metrics, logs
	telemetryShutdown, err := initTelemetry(ctx, cfg.OTLPEnabled)
	if err != nil {
		observability.Logger.Fatal("init telemetry", zap.Error(err))
	}
	defer telemetryShutdown(ctx)

	// Exchange rates
	store, readyChecks, closeStore, err := initRateStore(ctx, cfg)
	if err != nil {
		observability.Logger.Fatal("init rate store", zap.Error(err))
	}
	defer closeStore()

	deps := server.Deps{
		Calculator:        calculator.NewHandler(currency.NewConverter(store), cfg.DefaultCurrency),
		ReadyChecks:       readyChecks,
		TrustProxyHeaders: cfg.TrustProxy,
	}

	if cfg.RateLimit > 0 {
		deps.Limiter = ratelimit.New(cfg.RateLimit, time.Minute)
		defer deps.Limiter.Stop()
	}

	if cfg.PortalBaseURL != "" {
		p, err := portal.New(portal.Config{
			BaseURL: cfg.PortalBaseURL,
			APIKey:  cfg.PortalAPIKey,
			Timeout: cfg.PortalTimeout,
		})
		if err != nil {
			observability.Logger.Fatal("init portal proxy", zap.Error(err))
		}
		deps.Portal = p
	}

	// Router
	router := server.NewRouter(deps)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.String("default_currency", string(cfg.DefaultCurrency)),
			zap.Bool("portal_proxy", deps.Portal != nil),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	waitForShutdown(srv, serverErr)
}

func waitForShutdown(srv *http.Server, serverErr <-chan error) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		observability.Logger.Error("server failed", zap.Error(err))
		return
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("server shutdown", zap.Error(err))
	}
	observability.Logger.Info("server stopped")
}
