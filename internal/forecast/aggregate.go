package forecast

import (
	"fmt"
	"sort"
	"time"
)

// GroupByArea collects the rows of one date into per-area runs, areas ordered
// by name. Rows sharing a name but not a code stay in the same group.
func GroupByArea(date string, entries []Entry) DayForecast {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AreaName < sorted[j].AreaName })

	day := DayForecast{Date: date}
	for _, e := range sorted {
		n := len(day.Areas)
		if n == 0 || day.Areas[n-1].Name != e.AreaName {
			day.Areas = append(day.Areas, AreaEntries{Name: e.AreaName})
			n++
		}
		day.Areas[n-1].Entries = append(day.Areas[n-1].Entries, e)
	}
	return day
}

// WindowDates returns days consecutive dates starting at start.
func WindowDates(start string, days int) ([]string, error) {
	if days < 1 || days > MaxWindowDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidWindow, MaxWindowDays)
	}
	first, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q", ErrInvalidWindow, start)
	}

	out := make([]string, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, first.AddDate(0, 0, i).Format(DateLayout))
	}
	return out, nil
}

// Window bounds.
const (
	DefaultWindowDays = 3
	MaxWindowDays     = 7
)
