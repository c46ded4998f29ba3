package jma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/i474232898/jma-forecast/internal/forecast"
)

// FetchForecast downloads the forecast documents for a 6-digit prefecture
// code. There is no fallback.
func (c *Client) FetchForecast(ctx context.Context, prefectureCode string) ([]forecast.Document, error) {
	c.log.Debugf("fetching forecast for %s", prefectureCode)

	build := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+forecastPath+prefectureCode+".json", nil)
	}

	resp, err := doRequestWithResilience(ctx, c.forecastHTTP, c.forecastCircuit, build)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var docs []forecast.Document
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("%w: decode forecast %s: %v", forecast.ErrParse, prefectureCode, err)
	}
	return docs, nil
}
