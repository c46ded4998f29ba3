package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByArea(t *testing.T) {
	entries := []Entry{
		{AreaCode: "270000", AreaName: "大阪府", Date: "2024-01-15", WeatherCode: 100},
		{AreaCode: "130010", AreaName: "東京地方", Date: "2024-01-15", WeatherCode: 200},
		{AreaCode: "130099", AreaName: "東京地方", Date: "2024-01-15", WeatherCode: 300},
	}

	day := GroupByArea("2024-01-15", entries)
	assert.Equal(t, "2024-01-15", day.Date)
	require.Len(t, day.Areas, 2)

	assert.Equal(t, "大阪府", day.Areas[0].Name)
	assert.Len(t, day.Areas[0].Entries, 1)

	assert.Equal(t, "東京地方", day.Areas[1].Name)
	require.Len(t, day.Areas[1].Entries, 2)
	assert.Equal(t, 200, day.Areas[1].Entries[0].WeatherCode)
	assert.Equal(t, 300, day.Areas[1].Entries[1].WeatherCode)

	// input slice untouched
	assert.Equal(t, "270000", entries[0].AreaCode)
}

func TestGroupByAreaEmpty(t *testing.T) {
	day := GroupByArea("2024-01-15", nil)
	assert.Empty(t, day.Areas)
}

func TestWindowDates(t *testing.T) {
	dates, err := WindowDates("2024-02-28", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-28", "2024-02-29", "2024-03-01"}, dates)

	_, err = WindowDates("2024-02-28", 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = WindowDates("2024-02-28", MaxWindowDays+1)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = WindowDates("28/02/2024", 1)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
