package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/jma-forecast/internal/logger"
)

type mockCatalogSource struct{ mock.Mock }

func (m *mockCatalogSource) LoadCatalog(ctx context.Context) (*Catalog, error) {
	args := m.Called(ctx)
	cat, _ := args.Get(0).(*Catalog)
	return cat, args.Error(1)
}

type mockForecastSource struct{ mock.Mock }

func (m *mockForecastSource) FetchForecast(ctx context.Context, code string) ([]Document, error) {
	args := m.Called(ctx, code)
	docs, _ := args.Get(0).([]Document)
	return docs, args.Error(1)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) SaveAreas(ctx context.Context, areas []Area) error {
	return m.Called(ctx, areas).Error(0)
}

func (m *mockStore) UpsertForecasts(ctx context.Context, entries []Entry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *mockStore) ForecastDates(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	dates, _ := args.Get(0).([]string)
	return dates, args.Error(1)
}

func (m *mockStore) ForecastsByDate(ctx context.Context, date string) ([]Entry, error) {
	args := m.Called(ctx, date)
	entries, _ := args.Get(0).([]Entry)
	return entries, args.Error(1)
}

func (m *mockStore) Close() error { return nil }

type fixture struct {
	catalogs  *mockCatalogSource
	forecasts *mockForecastSource
	store     *mockStore
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalogs:  &mockCatalogSource{},
		forecasts: &mockForecastSource{},
		store:     &mockStore{},
	}
	f.svc = NewService(f.catalogs, f.forecasts, f.store, logger.Discard())
	f.svc.now = func() time.Time { return time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) loaded(t *testing.T) {
	t.Helper()
	f.catalogs.On("LoadCatalog", mock.Anything).Return(sampleCatalog(), nil).Once()
	f.store.On("SaveAreas", mock.Anything, mock.Anything).Return(nil).Once()
	_, err := f.svc.LoadCatalog(context.Background())
	require.NoError(t, err)
}

func TestServiceLoadCatalog(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Regions()
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)

	f.catalogs.On("LoadCatalog", mock.Anything).Return(sampleCatalog(), nil)
	f.store.On("SaveAreas", mock.Anything, mock.MatchedBy(func(a []Area) bool { return len(a) == 6 })).Return(nil)

	cat, err := f.svc.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, cat.Centers, 2)

	regions, err := f.svc.Regions()
	require.NoError(t, err)
	assert.Len(t, regions, 2)

	f.store.AssertExpectations(t)
}

func TestServiceLoadCatalogFailure(t *testing.T) {
	f := newFixture(t)
	f.catalogs.On("LoadCatalog", mock.Anything).Return(nil, errors.New("no network, no file"))

	_, err := f.svc.LoadCatalog(context.Background())
	assert.Error(t, err)

	_, err = f.svc.Catalog()
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)
	f.store.AssertNotCalled(t, "SaveAreas", mock.Anything, mock.Anything)
}

func TestServiceLoadCatalogPersistFailure(t *testing.T) {
	f := newFixture(t)
	f.catalogs.On("LoadCatalog", mock.Anything).Return(sampleCatalog(), nil)
	f.store.On("SaveAreas", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := f.svc.LoadCatalog(context.Background())
	require.Error(t, err)

	_, err = f.svc.Regions()
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)
}

func TestServiceNavigation(t *testing.T) {
	f := newFixture(t)
	f.loaded(t)

	prefs, err := f.svc.Prefectures("010300")
	require.NoError(t, err)
	assert.Len(t, prefs, 2)

	_, err = f.svc.Prefectures("999999")
	assert.ErrorIs(t, err, ErrUnknownArea)

	subs, err := f.svc.SubAreas("130000")
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	_, err = f.svc.SubAreas("000000")
	assert.ErrorIs(t, err, ErrUnknownArea)
}

func TestServiceFetchPrefecture(t *testing.T) {
	f := newFixture(t)
	f.loaded(t)

	f.forecasts.On("FetchForecast", mock.Anything, "130000").Return(loadDocs(t), nil)
	f.store.On("UpsertForecasts", mock.Anything, mock.MatchedBy(func(e []Entry) bool {
		return len(e) == 6 && e[0].FetchedAt.Equal(time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC))
	})).Return(nil)

	pf, err := f.svc.FetchPrefecture(context.Background(), "130000")
	require.NoError(t, err)
	assert.Equal(t, "東京都", pf.OfficeName)
	assert.Equal(t, "気象庁", pf.PublishingOffice)
	assert.Len(t, pf.Areas, 2)

	f.forecasts.AssertExpectations(t)
	f.store.AssertExpectations(t)
}

func TestServiceFetchPrefectureErrors(t *testing.T) {
	t.Run("unknown office", func(t *testing.T) {
		f := newFixture(t)
		f.loaded(t)

		_, err := f.svc.FetchPrefecture(context.Background(), "460040")
		assert.ErrorIs(t, err, ErrUnknownArea)
		f.forecasts.AssertNotCalled(t, "FetchForecast", mock.Anything, mock.Anything)
	})

	t.Run("upstream failure has no fallback", func(t *testing.T) {
		f := newFixture(t)
		f.loaded(t)
		f.forecasts.On("FetchForecast", mock.Anything, "130000").Return(nil, errors.New("503"))

		_, err := f.svc.FetchPrefecture(context.Background(), "130000")
		assert.ErrorIs(t, err, ErrFetch)
		f.store.AssertNotCalled(t, "UpsertForecasts", mock.Anything, mock.Anything)
	})

	t.Run("malformed document", func(t *testing.T) {
		f := newFixture(t)
		f.loaded(t)
		f.forecasts.On("FetchForecast", mock.Anything, "130000").Return([]Document{{}}, nil)

		_, err := f.svc.FetchPrefecture(context.Background(), "130000")
		assert.ErrorIs(t, err, ErrParse)
		f.store.AssertNotCalled(t, "UpsertForecasts", mock.Anything, mock.Anything)
	})
}

func TestServiceRefresh(t *testing.T) {
	f := newFixture(t)
	f.loaded(t)

	f.forecasts.On("FetchForecast", mock.Anything, "130000").Return(loadDocs(t), nil)
	f.forecasts.On("FetchForecast", mock.Anything, "080000").Return(nil, errors.New("timeout"))
	f.store.On("UpsertForecasts", mock.Anything, mock.Anything).Return(nil)

	assert.NoError(t, f.svc.Refresh(context.Background(), []string{"130000", "080000"}))
	assert.Error(t, f.svc.Refresh(context.Background(), []string{"080000"}))
	assert.NoError(t, f.svc.Refresh(context.Background(), nil))
}

func TestServiceDates(t *testing.T) {
	f := newFixture(t)
	// 01:00 UTC is 10:00 JST on the same day
	f.store.On("ForecastDates", mock.Anything).Return([]string{"2024-01-14", "2024-01-15"}, nil).Once()

	idx, err := f.svc.Dates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-14", "2024-01-15"}, idx.Dates)
	assert.Equal(t, "2024-01-15", idx.Default)

	f.store.On("ForecastDates", mock.Anything).Return(nil, nil).Once()
	idx, err = f.svc.Dates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, idx.Dates)
	assert.NotNil(t, idx.Dates)
	assert.Empty(t, idx.Default)
}

func TestServiceDatesUsesTokyoCalendar(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time { return time.Date(2024, 1, 15, 16, 0, 0, 0, time.UTC) }
	f.store.On("ForecastDates", mock.Anything).Return([]string{"2024-01-15", "2024-01-16"}, nil)

	idx, err := f.svc.Dates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-16", idx.Default)
}

func TestServiceWindow(t *testing.T) {
	f := newFixture(t)
	day1 := []Entry{{AreaCode: "130010", AreaName: "東京地方", Date: "2024-01-15", WeatherCode: 100}}
	f.store.On("ForecastsByDate", mock.Anything, "2024-01-15").Return(day1, nil)
	f.store.On("ForecastsByDate", mock.Anything, "2024-01-16").Return(nil, ErrNotFound)
	f.store.On("ForecastsByDate", mock.Anything, "2024-01-17").Return(day1, nil)

	days, err := f.svc.Window(context.Background(), "2024-01-15", 3)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-01-15", days[0].Date)
	assert.Equal(t, "2024-01-17", days[1].Date)
	assert.Equal(t, "東京地方", days[0].Areas[0].Name)
}

func TestServiceWindowEmptyAndInvalid(t *testing.T) {
	f := newFixture(t)
	f.store.On("ForecastsByDate", mock.Anything, "2024-02-01").Return(nil, errors.New("disk gone"))
	f.store.On("ForecastsByDate", mock.Anything, mock.Anything).Return(nil, ErrNotFound)

	_, err := f.svc.Window(context.Background(), "2024-01-15", 2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Window(context.Background(), "2024-01-15", 8)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = f.svc.Window(context.Background(), "2024-02-01", 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
