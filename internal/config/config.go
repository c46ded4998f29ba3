package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string

	// JMA endpoints and the on-disk copy of area.json used when the remote
	// catalog is unavailable.
	JMABaseURL       string
	AreaFallbackFile string

	// Outbound HTTP behaviour.
	HTTPTimeout    time.Duration
	HTTPMaxRetries int     // area catalog only; forecast fetches never retry
	HTTPRateLimit  float64 // requests per second, 0 = unlimited

	StoreDriver string // sqlite, postgres, mysql or memory
	StoreDSN    string

	// RefreshOffices are refreshed every RefreshInterval. Empty disables the job.
	RefreshInterval time.Duration
	RefreshOffices  []string
}

// fileConfig is the optional YAML base layer. Durations are Go duration strings.
type fileConfig struct {
	Port             string   `yaml:"port"`
	Env              string   `yaml:"env"`
	LogLevel         string   `yaml:"log_level"`
	JMABaseURL       string   `yaml:"jma_base_url"`
	AreaFallbackFile string   `yaml:"area_fallback_file"`
	HTTPTimeout      string   `yaml:"http_timeout"`
	HTTPMaxRetries   *int     `yaml:"http_max_retries"`
	HTTPRateLimit    *float64 `yaml:"http_rate_limit"`
	StoreDriver      string   `yaml:"store_driver"`
	StoreDSN         string   `yaml:"store_dsn"`
	RefreshInterval  string   `yaml:"refresh_interval"`
	RefreshOffices   []string `yaml:"refresh_offices"`
}

var validDrivers = map[string]bool{
	"sqlite":   true,
	"sqlite3":  true,
	"postgres": true,
	"mysql":    true,
	"memory":   true,
}

func defaults() *AppConfig {
	return &AppConfig{
		Port:             "8080",
		Env:              "development",
		LogLevel:         "info",
		JMABaseURL:       "https://www.jma.go.jp",
		AreaFallbackFile: "area.json",
		HTTPTimeout:      10 * time.Second,
		HTTPMaxRetries:   2,
		StoreDriver:      "sqlite",
		StoreDSN:         "weather_forecast.db",
		RefreshInterval:  time.Hour,
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE), then
// the environment, with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Port, fc.Port)
	setString(&c.Env, fc.Env)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.JMABaseURL, fc.JMABaseURL)
	setString(&c.AreaFallbackFile, fc.AreaFallbackFile)
	setString(&c.StoreDriver, fc.StoreDriver)
	setString(&c.StoreDSN, fc.StoreDSN)

	if fc.HTTPMaxRetries != nil {
		c.HTTPMaxRetries = *fc.HTTPMaxRetries
	}
	if fc.HTTPRateLimit != nil {
		c.HTTPRateLimit = *fc.HTTPRateLimit
	}
	if len(fc.RefreshOffices) > 0 {
		c.RefreshOffices = fc.RefreshOffices
	}

	if err := setDuration(&c.HTTPTimeout, "http_timeout", fc.HTTPTimeout); err != nil {
		return err
	}
	return setDuration(&c.RefreshInterval, "refresh_interval", fc.RefreshInterval)
}

func (c *AppConfig) loadEnv() error {
	c.Port = getenvDefault("PORT", c.Port)
	c.Env = getenvDefault("APP_ENV", c.Env)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)
	c.JMABaseURL = getenvDefault("JMA_BASE_URL", c.JMABaseURL)
	c.AreaFallbackFile = getenvDefault("AREA_FALLBACK_FILE", c.AreaFallbackFile)
	c.StoreDriver = getenvDefault("STORE_DRIVER", c.StoreDriver)
	c.StoreDSN = getenvDefault("STORE_DSN", c.StoreDSN)

	if err := setDuration(&c.HTTPTimeout, "HTTP_TIMEOUT", os.Getenv("HTTP_TIMEOUT")); err != nil {
		return err
	}
	if err := setDuration(&c.RefreshInterval, "REFRESH_INTERVAL", os.Getenv("REFRESH_INTERVAL")); err != nil {
		return err
	}

	if v := os.Getenv("HTTP_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_MAX_RETRIES: %w", err)
		}
		c.HTTPMaxRetries = n
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_LIMIT: %w", err)
		}
		c.HTTPRateLimit = f
	}

	if v := os.Getenv("REFRESH_OFFICES"); v != "" {
		c.RefreshOffices = splitList(v)
	}
	return nil
}

func (c *AppConfig) validate() error {
	c.StoreDriver = strings.ToLower(c.StoreDriver)
	if !validDrivers[c.StoreDriver] {
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.RefreshInterval < time.Minute {
		return fmt.Errorf("REFRESH_INTERVAL must be at least 1m, got %s", c.RefreshInterval)
	}
	if c.HTTPMaxRetries < 0 {
		return fmt.Errorf("HTTP_MAX_RETRIES must not be negative, got %d", c.HTTPMaxRetries)
	}
	if c.HTTPRateLimit < 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT must not be negative, got %g", c.HTTPRateLimit)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
