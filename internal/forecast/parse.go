package forecast

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Positions inside Document.TimeSeries, fixed by the upstream provider.
const (
	weatherSeries     = 0
	temperatureSeries = 2
)

// ParseForecast flattens the weather-code and temperature series of the first
// document into per-area slots. Structural mismatches wrap ErrParse.
func ParseForecast(docs []Document) ([]AreaForecast, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: empty document array", ErrParse)
	}

	series := docs[0].TimeSeries
	if len(series) <= temperatureSeries {
		return nil, fmt.Errorf("%w: expected at least %d time series, got %d",
			ErrParse, temperatureSeries+1, len(series))
	}

	ws := series[weatherSeries]
	tempAreas := series[temperatureSeries].Areas

	times := make([]time.Time, len(ws.TimeDefines))
	for i, td := range ws.TimeDefines {
		ts, err := time.Parse(time.RFC3339, td)
		if err != nil {
			return nil, fmt.Errorf("%w: time define %q: %v", ErrParse, td, err)
		}
		times[i] = ts
	}

	areas := make([]AreaForecast, 0, len(ws.Areas))
	for ai, a := range ws.Areas {
		if len(a.WeatherCodes) < len(times) {
			return nil, fmt.Errorf("%w: area %q has %d weather codes for %d time slots",
				ErrParse, a.Area.Name, len(a.WeatherCodes), len(times))
		}

		// Weather areas without a temperature counterpart keep placeholders.
		var temps []string
		if ai < len(tempAreas) {
			temps = tempAreas[ai].Temps
		}

		slots := make([]Slot, 0, len(times))
		for i, ts := range times {
			code, err := strconv.Atoi(strings.TrimSpace(a.WeatherCodes[i]))
			if err != nil {
				return nil, fmt.Errorf("%w: area %q weather code %q", ErrParse, a.Area.Name, a.WeatherCodes[i])
			}
			tmin, tmax := TempPair(temps, i)
			slots = append(slots, Slot{
				Date:        ts.Format(DateLayout),
				Time:        ts,
				WeatherCode: code,
				Condition:   ConditionFromCode(code),
				TempMin:     tmin,
				TempMax:     tmax,
			})
		}

		areas = append(areas, AreaForecast{
			Code:  a.Area.Code,
			Name:  a.Area.Name,
			Slots: slots,
		})
	}

	return areas, nil
}

// TempPair reads the min/max pair for slot i from a flattened
// [min0, max0, min1, max1, ...] array. Slots at or past the midpoint, and
// blank or non-numeric values, yield nil.
func TempPair(temps []string, i int) (tmin, tmax *float64) {
	if i < 0 || i >= len(temps)/2 {
		return nil, nil
	}
	return parseTemp(temps[2*i]), parseTemp(temps[2*i+1])
}

func parseTemp(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Entries turns parsed areas into cache rows stamped with fetchedAt.
func Entries(areas []AreaForecast, fetchedAt time.Time) []Entry {
	var out []Entry
	for _, a := range areas {
		for _, s := range a.Slots {
			out = append(out, Entry{
				AreaCode:    a.Code,
				AreaName:    a.Name,
				Date:        s.Date,
				WeatherCode: s.WeatherCode,
				TempMin:     s.TempMin,
				TempMax:     s.TempMax,
				FetchedAt:   fetchedAt,
			})
		}
	}
	return out
}
