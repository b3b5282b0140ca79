package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/autoparts-storefront/api/controllers"
	"github.com/angelmondragon/autoparts-storefront/api/routes"
	"github.com/angelmondragon/autoparts-storefront/internal/cart"
	"github.com/angelmondragon/autoparts-storefront/internal/catalog"
	"github.com/angelmondragon/autoparts-storefront/internal/checkout"
	"github.com/angelmondragon/autoparts-storefront/internal/newsletter"
	"github.com/angelmondragon/autoparts-storefront/internal/pricing"
	"github.com/angelmondragon/autoparts-storefront/pkg/config"
	"github.com/angelmondragon/autoparts-storefront/pkg/db"
	"github.com/angelmondragon/autoparts-storefront/pkg/env"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
	"github.com/angelmondragon/autoparts-storefront/pkg/metrics"
	"github.com/angelmondragon/autoparts-storefront/pkg/migrate"
	"github.com/angelmondragon/autoparts-storefront/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "autoparts-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "autoparts-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(registry)

	persister, store, closeStore, err := openCartStore(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeStore())
	}()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	rules, err := pricing.RulesFromConfig(cfg.Pricing)
	if err != nil {
		return fmt.Errorf("pricing rules: %w", err)
	}

	checkoutService, err := checkout.NewService(rules, cfg.Checkout.CompletionDelay, logg, cartMetrics)
	if err != nil {
		return fmt.Errorf("checkout service: %w", err)
	}

	news := newsletter.NewService(cfg.Newsletter.ResetAfter, logg)
	defer news.Close()

	sessions := cart.NewSessions(persister, logg, cartMetrics)

	// Platforms such as Cloud Run inject PORT; it wins over the configured port.
	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"storage":  cfg.Storage.Driver,
		"products": cat.Len(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, registry, store, cat, rules, sessions, checkoutService, news),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return sessions.RunEviction(groupCtx, cfg.Storage.SessionIdleTTL)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// openCartStore wires the configured durable store behind the cart persister. The
// returned pinger is nil for the in-process driver.
func openCartStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (cart.Persister, controllers.Pinger, func() error, error) {
	switch {
	case cfg.Storage.UsesRedis():
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		return cart.NewRedisPersister(client, cfg.Redis.CartTTL), client, client.Close, nil

	case cfg.Storage.UsesSQL():
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("bootstrap database: %w", err)
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return nil, nil, nil, multierr.Append(fmt.Errorf("dev migrations: %w", err), client.Close())
		}
		return cart.NewSQLPersister(client.DB()), client, client.Close, nil

	default:
		logg.Warn(ctx, "cart storage is in-process; carts are lost on restart")
		return cart.NewMemoryPersister(), nil, func() error { return nil }, nil
	}
}
