package store

import (
	"context"
	"sort"
	"sync"

	"github.com/i474232898/jma-forecast/internal/forecast"
)

// MemoryStore is a concurrency-safe in-memory implementation of forecast.Store.
type MemoryStore struct {
	mu sync.RWMutex

	areas map[string]forecast.Area

	// key: Entry.Key(), last write wins
	forecasts map[string]forecast.Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		areas:     make(map[string]forecast.Area),
		forecasts: make(map[string]forecast.Entry),
	}
}

// SaveAreas replaces areas by code.
func (s *MemoryStore) SaveAreas(_ context.Context, areas []forecast.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range areas {
		s.areas[a.Code] = a
	}
	return nil
}

// Area returns a saved area.
func (s *MemoryStore) Area(code string) (forecast.Area, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.areas[code]
	return a, ok
}

// UpsertForecasts replaces rows sharing (area code, area name, date).
func (s *MemoryStore) UpsertForecasts(_ context.Context, entries []forecast.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.forecasts[e.Key()] = e
	}
	return nil
}

// ForecastDates returns the distinct cached dates in ascending order.
func (s *MemoryStore) ForecastDates(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	dates := make([]string, 0)
	for _, e := range s.forecasts {
		if _, ok := seen[e.Date]; ok {
			continue
		}
		seen[e.Date] = struct{}{}
		dates = append(dates, e.Date)
	}
	sort.Strings(dates)
	return dates, nil
}

// ForecastsByDate returns the rows of a date ordered by area name.
func (s *MemoryStore) ForecastsByDate(_ context.Context, date string) ([]forecast.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []forecast.Entry
	for _, e := range s.forecasts {
		if e.Date == date {
			result = append(result, e)
		}
	}

	if len(result) == 0 {
		return nil, forecast.ErrNotFound
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].AreaName != result[j].AreaName {
			return result[i].AreaName < result[j].AreaName
		}
		return result[i].AreaCode < result[j].AreaCode
	})
	return result, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
