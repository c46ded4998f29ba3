package jma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/i474232898/jma-forecast/internal/forecast"
)

var errEmptyCatalog = errors.New("area catalog has no centers or offices")

type areaRecord struct {
	Name     string   `json:"name"`
	EnName   string   `json:"enName"`
	Parent   string   `json:"parent"`
	Children []string `json:"children"`
}

type areaFile struct {
	Centers  map[string]areaRecord `json:"centers"`
	Offices  map[string]areaRecord `json:"offices"`
	Class10s map[string]areaRecord `json:"class10s"`
}

// LoadCatalog fetches area.json and falls back to the bundled file on any
// failure of the remote call.
func (c *Client) LoadCatalog(ctx context.Context) (*forecast.Catalog, error) {
	cat, err := c.fetchCatalog(ctx)
	if err == nil {
		return cat, nil
	}

	c.log.Warnf("remote area catalog unavailable, using %s: %v", c.fallbackFile, err)

	local, ferr := c.readFallback()
	if ferr != nil {
		return nil, fmt.Errorf("remote: %v; fallback %s: %w", err, c.fallbackFile, ferr)
	}
	return local, nil
}

func (c *Client) fetchCatalog(ctx context.Context) (*forecast.Catalog, error) {
	build := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+areaPath, nil)
	}

	resp, err := doRequestWithResilience(ctx, c.catalogHTTP, c.catalogCircuit, build)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeCatalog(resp.Body)
}

func (c *Client) readFallback() (*forecast.Catalog, error) {
	f, err := os.Open(c.fallbackFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeCatalog(f)
}

func decodeCatalog(r io.Reader) (*forecast.Catalog, error) {
	var raw areaFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode area catalog: %w", err)
	}
	if len(raw.Centers) == 0 || len(raw.Offices) == 0 {
		return nil, errEmptyCatalog
	}

	cat := forecast.NewCatalog()
	fill(cat.Centers, raw.Centers, forecast.LevelCenter)
	fill(cat.Offices, raw.Offices, forecast.LevelOffice)
	fill(cat.Class10s, raw.Class10s, forecast.LevelClass10)
	return cat, nil
}

func fill(dst map[string]forecast.Area, src map[string]areaRecord, level forecast.Level) {
	for code, rec := range src {
		dst[code] = forecast.Area{
			Code:       code,
			Name:       rec.Name,
			ParentCode: rec.Parent,
			Level:      level,
		}
	}
}
