package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/i474232898/jma-forecast/internal/api/http"
	"github.com/i474232898/jma-forecast/internal/config"
	"github.com/i474232898/jma-forecast/internal/forecast"
	"github.com/i474232898/jma-forecast/internal/jma"
	"github.com/i474232898/jma-forecast/internal/logger"
	"github.com/i474232898/jma-forecast/internal/report"
	"github.com/i474232898/jma-forecast/internal/scheduler"
	"github.com/i474232898/jma-forecast/internal/store"
)

// openStore is swapped in tests.
var openStore = store.New

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "development").Fatalf("failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	if err := run(ctx, cfg, log); err != nil {
		stop()
		log.Fatalf("%v", err)
	}
	stop()
	log.Info("shutdown complete")
}

// run serves until ctx is cancelled. Everything it opens is closed before it
// returns.
func run(ctx context.Context, cfg *config.AppConfig, log logger.Logger) error {
	// Shared HTTP client for outbound JMA calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := jma.NewClient(httpClient, jma.Options{
		BaseURL:      cfg.JMABaseURL,
		FallbackFile: cfg.AreaFallbackFile,
		MaxRetries:   cfg.HTTPMaxRetries,
		RateLimit:    cfg.HTTPRateLimit,
	}, log)

	st, err := openStore(ctx, cfg.StoreDriver, cfg.StoreDSN, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Errorf("error closing store: %v", err)
		}
	}()

	// Core service orchestrating the JMA client and the store.
	service := forecast.NewService(client, client, st, log)

	// Without a catalog there is nothing to navigate.
	if _, err := service.LoadCatalog(ctx); err != nil {
		return fmt.Errorf("failed to load area catalog: %w", err)
	}

	// Scheduler that periodically refreshes the configured offices.
	sched := scheduler.New(cfg.RefreshOffices, cfg.RefreshInterval, service, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(log)
	httpapi.RegisterRoutes(app, service, report.NewGenerator(log))

	// Start server with graceful shutdown
	listenErr := make(chan error, 1)
	go func() {
		log.Infof("listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			listenErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-listenErr:
		return fmt.Errorf("fiber server stopped: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
	return nil
}
