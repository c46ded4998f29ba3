package store

import (
	"fmt"
	"strconv"
	"strings"
)

// dialect holds the per-database SQL that differs between drivers.
type dialect struct {
	name       string // migration directory and migrate driver name
	driverName string // database/sql driver
	numbered   bool   // $1 placeholders instead of ?

	upsertArea     string
	upsertForecast string
}

const (
	forecastColumns = "area_code, area_name, forecast_date, weather_code, temp_min, temp_max, created_at"

	selectDates  = "SELECT DISTINCT forecast_date FROM weather_forecasts ORDER BY forecast_date"
	selectByDate = "SELECT area_code, area_name, forecast_date, weather_code, temp_min, temp_max, created_at " +
		"FROM weather_forecasts WHERE forecast_date = ? ORDER BY area_name, area_code"
)

var (
	sqliteDialect = dialect{
		name:       "sqlite",
		driverName: "sqlite",
		upsertArea: `INSERT INTO areas (area_code, area_name, parent_code) VALUES (?, ?, ?)
			ON CONFLICT (area_code) DO UPDATE SET
				area_name = excluded.area_name,
				parent_code = excluded.parent_code`,
		upsertForecast: `INSERT INTO weather_forecasts (` + forecastColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (area_code, area_name, forecast_date) DO UPDATE SET
				weather_code = excluded.weather_code,
				temp_min = excluded.temp_min,
				temp_max = excluded.temp_max,
				created_at = excluded.created_at`,
	}

	postgresDialect = dialect{
		name:       "postgres",
		driverName: "postgres",
		numbered:   true,
		upsertArea: `INSERT INTO areas (area_code, area_name, parent_code) VALUES (?, ?, ?)
			ON CONFLICT (area_code) DO UPDATE SET
				area_name = EXCLUDED.area_name,
				parent_code = EXCLUDED.parent_code`,
		upsertForecast: `INSERT INTO weather_forecasts (` + forecastColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (area_code, area_name, forecast_date) DO UPDATE SET
				weather_code = EXCLUDED.weather_code,
				temp_min = EXCLUDED.temp_min,
				temp_max = EXCLUDED.temp_max,
				created_at = EXCLUDED.created_at`,
	}

	mysqlDialect = dialect{
		name:       "mysql",
		driverName: "mysql",
		upsertArea: `INSERT INTO areas (area_code, area_name, parent_code) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE
				area_name = VALUES(area_name),
				parent_code = VALUES(parent_code)`,
		upsertForecast: `INSERT INTO weather_forecasts (` + forecastColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				weather_code = VALUES(weather_code),
				temp_min = VALUES(temp_min),
				temp_max = VALUES(temp_max),
				created_at = VALUES(created_at)`,
	}
)

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return sqliteDialect, nil
	case "postgres", "postgresql":
		return postgresDialect, nil
	case "mysql":
		return mysqlDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported store driver: %s", driver)
	}
}

// bind rewrites ? placeholders for drivers that number them.
func (d dialect) bind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
