// Package jma talks to the Japan Meteorological Agency bosai endpoints.
package jma

import (
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/jma-forecast/internal/logger"
)

// DefaultBaseURL is the public JMA host.
const DefaultBaseURL = "https://www.jma.go.jp"

const (
	areaPath     = "/bosai/common/const/area.json"
	forecastPath = "/bosai/forecast/data/forecast/"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL      string
	FallbackFile string
	// MaxRetries applies to the area catalog only. Forecast requests are
	// single-shot and surface the first failure.
	MaxRetries int
	// InitialBackoff is the first retry delay; it doubles per attempt.
	InitialBackoff time.Duration
	// RateLimit caps outbound requests per second. Zero disables it.
	RateLimit float64
}

// Client loads the area catalog and per-prefecture forecasts. It satisfies
// forecast.CatalogSource and forecast.ForecastSource.
type Client struct {
	baseURL      string
	fallbackFile string
	catalogHTTP  HTTPClientConfig
	forecastHTTP HTTPClientConfig

	catalogCircuit  *gobreaker.CircuitBreaker
	forecastCircuit *gobreaker.CircuitBreaker

	log logger.Logger
}

// NewClient wires a Client around a shared http.Client.
func NewClient(client *http.Client, opts Options, log logger.Logger) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	fallback := opts.FallbackFile
	if fallback == "" {
		fallback = "area.json"
	}
	backoff := opts.InitialBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	catalogHTTP := HTTPClientConfig{
		Client: client,
		Backoff: BackoffConfig{
			MaxRetries:      retries,
			InitialInterval: backoff,
			MaxInterval:     5 * time.Second,
		},
		Limiter: limiter,
	}
	forecastHTTP := catalogHTTP
	forecastHTTP.Backoff.MaxRetries = 0

	return &Client{
		baseURL:         baseURL,
		fallbackFile:    fallback,
		catalogHTTP:     catalogHTTP,
		forecastHTTP:    forecastHTTP,
		catalogCircuit:  newCircuit("jma-area-catalog"),
		forecastCircuit: newCircuit("jma-forecast"),
		log:             logger.Component(log, "jma_client"),
	}
}
