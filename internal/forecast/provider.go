package forecast

import "context"

// CatalogSource loads the JMA area tree.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) (*Catalog, error)
}

// ForecastSource fetches the raw forecast documents for a 6-digit prefecture code.
type ForecastSource interface {
	FetchForecast(ctx context.Context, prefectureCode string) ([]Document, error)
}

// Store is the contract the in-memory and SQL stores satisfy.
type Store interface {
	SaveAreas(ctx context.Context, areas []Area) error
	UpsertForecasts(ctx context.Context, entries []Entry) error
	ForecastDates(ctx context.Context) ([]string, error)
	// ForecastsByDate returns rows ordered by area name, or ErrNotFound.
	ForecastsByDate(ctx context.Context, date string) ([]Entry, error)
	Close() error
}
