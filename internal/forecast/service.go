package forecast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/i474232898/jma-forecast/internal/logger"
)

// Service orchestrates the catalog, the forecast endpoint and the local store.
type Service struct {
	catalogs  CatalogSource
	forecasts ForecastSource
	store     Store
	log       logger.Logger
	now       func() time.Time

	mu      sync.RWMutex
	catalog *Catalog
}

// NewService creates a new Service.
func NewService(catalogs CatalogSource, forecasts ForecastSource, store Store, log logger.Logger) *Service {
	return &Service{
		catalogs:  catalogs,
		forecasts: forecasts,
		store:     store,
		log:       logger.Component(log, "forecast_service"),
		now:       time.Now,
	}
}

// LoadCatalog loads the area tree, keeps it for the session and persists it.
func (s *Service) LoadCatalog(ctx context.Context) (*Catalog, error) {
	cat, err := s.catalogs.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load area catalog: %w", err)
	}

	if err := s.store.SaveAreas(ctx, cat.All()); err != nil {
		return nil, fmt.Errorf("persist area catalog: %w", err)
	}

	s.mu.Lock()
	s.catalog = cat
	s.mu.Unlock()

	s.log.Infof("area catalog loaded: %d centers, %d offices, %d class10s",
		len(cat.Centers), len(cat.Offices), len(cat.Class10s))
	return cat, nil
}

// Catalog returns the loaded area tree.
func (s *Service) Catalog() (*Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.catalog == nil {
		return nil, ErrCatalogNotLoaded
	}
	return s.catalog, nil
}

// Regions lists the centers.
func (s *Service) Regions() ([]Area, error) {
	cat, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	return cat.Regions(), nil
}

// Prefectures lists the offices under a center.
func (s *Service) Prefectures(centerCode string) ([]Area, error) {
	cat, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	if _, ok := cat.Centers[centerCode]; !ok {
		return nil, fmt.Errorf("%w: center %s", ErrUnknownArea, centerCode)
	}
	return cat.Prefectures(centerCode), nil
}

// SubAreas lists the class10 areas under an office.
func (s *Service) SubAreas(officeCode string) ([]Area, error) {
	cat, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	if _, ok := cat.Office(officeCode); !ok {
		return nil, fmt.Errorf("%w: office %s", ErrUnknownArea, officeCode)
	}
	return cat.SubAreas(officeCode), nil
}

// FetchPrefecture fetches, parses and caches the forecast for one office.
func (s *Service) FetchPrefecture(ctx context.Context, officeCode string) (PrefectureForecast, error) {
	cat, err := s.Catalog()
	if err != nil {
		return PrefectureForecast{}, err
	}

	code, err := cat.PrefectureCode(officeCode)
	if err != nil {
		return PrefectureForecast{}, err
	}
	office, _ := cat.Office(officeCode)

	docs, err := s.forecasts.FetchForecast(ctx, code)
	if errors.Is(err, ErrParse) {
		s.log.Warnf("forecast for %s did not decode: %v", code, err)
		return PrefectureForecast{}, err
	}
	if err != nil {
		s.log.Errorf("forecast fetch failed for %s: %v", code, err)
		return PrefectureForecast{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	areas, err := ParseForecast(docs)
	if err != nil {
		s.log.Warnf("forecast for %s did not parse: %v", code, err)
		return PrefectureForecast{}, err
	}

	fetchedAt := s.now().UTC()
	if err := s.store.UpsertForecasts(ctx, Entries(areas, fetchedAt)); err != nil {
		return PrefectureForecast{}, fmt.Errorf("cache forecast for %s: %w", code, err)
	}

	s.log.Debugf("cached forecast for %s (%d areas)", code, len(areas))
	return PrefectureForecast{
		OfficeCode:       officeCode,
		OfficeName:       office.Name,
		PublishingOffice: docs[0].PublishingOffice,
		ReportDatetime:   docs[0].ReportDatetime,
		FetchedAt:        fetchedAt,
		Areas:            areas,
	}, nil
}

// Refresh fetches several offices concurrently. It fails only when every
// office failed.
func (s *Service) Refresh(ctx context.Context, officeCodes []string) error {
	if len(officeCodes) == 0 {
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, code := range officeCodes {
		code := code
		wg.Add(1)
		go func() {
			defer wg.Done()

			if _, err := s.FetchPrefecture(ctx, code); err != nil {
				s.log.Warnf("refresh failed for office %s: %v", code, err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("office %s: %w", code, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(errs) == len(officeCodes) {
		return fmt.Errorf("all %d refreshes failed: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// Dates lists the cached dates and preselects today when it is cached.
func (s *Service) Dates(ctx context.Context) (DateIndex, error) {
	dates, err := s.store.ForecastDates(ctx)
	if err != nil {
		return DateIndex{}, err
	}

	idx := DateIndex{Dates: dates}
	if idx.Dates == nil {
		idx.Dates = []string{}
	}

	today := s.Today()
	for _, d := range dates {
		if d == today {
			idx.Default = today
			break
		}
	}
	return idx, nil
}

// Today is the current calendar date in Japan.
func (s *Service) Today() string {
	return s.now().In(JST).Format(DateLayout)
}

// Window returns the cached rows of days consecutive dates starting at start.
// Dates with no rows are omitted; an entirely empty window is ErrNotFound.
func (s *Service) Window(ctx context.Context, start string, days int) ([]DayForecast, error) {
	dates, err := WindowDates(start, days)
	if err != nil {
		return nil, err
	}

	var out []DayForecast
	for _, d := range dates {
		entries, err := s.store.ForecastsByDate(ctx, d)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, GroupByArea(d, entries))
	}

	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
