package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpadapter "companyhouse/internal/adapters/http"
	"companyhouse/internal/app"
	"companyhouse/internal/config"
	"companyhouse/internal/countries"
	"companyhouse/internal/logging"
	"companyhouse/internal/metrics"
	cartsvc "companyhouse/internal/services/cart"
	checkoutsvc "companyhouse/internal/services/checkout"
	compsvc "companyhouse/internal/services/companies"
	"companyhouse/internal/services/pricing"
	"companyhouse/internal/services/search"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg, err := countries.Load(cfg.CountriesFile)
	if err != nil {
		return err
	}
	adapters, closeAdapters, err := app.Adapters(ctx, reg, cfg.SeedDemo)
	if err != nil {
		return err
	}
	defer closeAdapters()
	if cfg.SeedDemo {
		logger.Warn("serving the in-memory demo data set")
	}

	m := metrics.New()
	dir, err := countries.NewDirectory(reg, adapters, countries.GuardConfig{
		Timeout: cfg.QueryTimeout,
		Logger:  logger.Named("countries"),
		Metrics: m,
	})
	if err != nil {
		return err
	}

	stores, closeStores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	prices := pricing.New(dir)
	carts := cartsvc.New(stores.Sessions, dir, prices, cartsvc.Options{Logger: logger.Named("cart"), Metrics: m})
	srv := httpadapter.New(httpadapter.Deps{
		Search: search.New(dir, search.Options{
			Cache:      stores.Cache,
			SearchTTL:  cfg.SearchCacheTTL,
			SuggestTTL: cfg.SuggestCacheTTL,
			Logger:     logger.Named("search"),
			Metrics:    m,
		}),
		Companies: compsvc.New(dir, prices),
		Prices:    prices,
		Carts:     carts,
		Checkout:  checkoutsvc.New(carts, checkoutsvc.SimulatedGateway{}, cfg.CheckoutCurrency, logger.Named("checkout")),
		Registry:  reg,
		Metrics:   m.Handler(),
		Logger:    logger.Named("http"),
	})

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	logger.Info("listening", zap.String("addr", cfg.ListenAddr), zap.Strings("countries", reg.Codes()))

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

