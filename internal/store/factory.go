package store

import (
	"context"
	"strings"

	"github.com/i474232898/jma-forecast/internal/forecast"
	"github.com/i474232898/jma-forecast/internal/logger"
)

// DefaultSQLitePath is the sqlite file used when no DSN is configured.
const DefaultSQLitePath = "weather_forecast.db"

// New returns the store for the configured driver.
func New(ctx context.Context, driver, dsn string, log logger.Logger) (forecast.Store, error) {
	switch strings.ToLower(driver) {
	case "memory":
		log.Info("using in-memory store")
		return NewMemoryStore(), nil
	case "", "sqlite", "sqlite3":
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		return OpenSQL(ctx, "sqlite", dsn, log)
	default:
		return OpenSQL(ctx, driver, dsn, log)
	}
}
