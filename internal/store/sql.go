package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/i474232898/jma-forecast/internal/forecast"
	"github.com/i474232898/jma-forecast/internal/logger"
)

// createdAtLayout is the UTC text format of the created_at column.
const createdAtLayout = "2006-01-02 15:04:05"

// SQLStore persists areas and forecasts in a SQL database.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	log     logger.Logger
}

// OpenSQL connects, migrates and returns a SQLStore.
func OpenSQL(ctx context.Context, driver, dsn string, log logger.Logger) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	log = logger.Component(log, "sql_store").WithField("driver", d.name)

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if d.name == "sqlite" {
		// one writer at a time keeps a single-file database free of SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}

	if err := runMigrations(db, d, log); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLStore{db: db, dialect: d, log: log}, nil
}

// SaveAreas replaces areas by code in one transaction.
func (s *SQLStore) SaveAreas(ctx context.Context, areas []forecast.Area) error {
	if len(areas) == 0 {
		return nil
	}

	return s.inTx(ctx, s.dialect.upsertArea, func(stmt *sql.Stmt) error {
		for _, a := range areas {
			if _, err := stmt.ExecContext(ctx, a.Code, a.Name, a.ParentCode); err != nil {
				return fmt.Errorf("save area %s: %w", a.Code, err)
			}
		}
		return nil
	})
}

// UpsertForecasts replaces rows sharing (area code, area name, date) in one
// transaction.
func (s *SQLStore) UpsertForecasts(ctx context.Context, entries []forecast.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	err := s.inTx(ctx, s.dialect.upsertForecast, func(stmt *sql.Stmt) error {
		for _, e := range entries {
			_, err := stmt.ExecContext(ctx,
				e.AreaCode,
				e.AreaName,
				e.Date,
				e.WeatherCode,
				nullFloat(e.TempMin),
				nullFloat(e.TempMax),
				e.FetchedAt.UTC().Format(createdAtLayout),
			)
			if err != nil {
				return fmt.Errorf("upsert forecast %s: %w", e.Key(), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debugf("upserted %d forecast rows", len(entries))
	return nil
}

func (s *SQLStore) inTx(ctx context.Context, query string, fn func(stmt *sql.Stmt) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.dialect.bind(query))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	if err := fn(stmt); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ForecastDates returns the distinct cached dates in ascending order.
func (s *SQLStore) ForecastDates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, selectDates)
	if err != nil {
		return nil, fmt.Errorf("query forecast dates: %w", err)
	}
	defer rows.Close()

	dates := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan forecast date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ForecastsByDate returns the rows of a date ordered by area name.
func (s *SQLStore) ForecastsByDate(ctx context.Context, date string) ([]forecast.Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.bind(selectByDate), date)
	if err != nil {
		return nil, fmt.Errorf("query forecasts for %s: %w", date, err)
	}
	defer rows.Close()

	var result []forecast.Entry
	for rows.Next() {
		var (
			e          forecast.Entry
			tmin, tmax sql.NullFloat64
			createdAt  sql.NullString
		)
		if err := rows.Scan(&e.AreaCode, &e.AreaName, &e.Date, &e.WeatherCode, &tmin, &tmax, &createdAt); err != nil {
			return nil, fmt.Errorf("scan forecast row: %w", err)
		}
		e.TempMin = floatPtr(tmin)
		e.TempMax = floatPtr(tmax)
		if createdAt.Valid {
			if ts, err := time.ParseInLocation(createdAtLayout, createdAt.String, time.UTC); err == nil {
				e.FetchedAt = ts
			}
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, forecast.ErrNotFound
	}
	return result, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
