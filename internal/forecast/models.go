package forecast

import (
	"strconv"
	"time"
)

// DateLayout is the calendar date format used for forecast rows and queries.
const DateLayout = "2006-01-02"

// JST is the offset every JMA document is published in.
var JST = time.FixedZone("JST", 9*60*60)

// Level is the depth of an area in the JMA catalog tree.
type Level string

const (
	LevelCenter  Level = "center"
	LevelOffice  Level = "office"
	LevelClass10 Level = "class10"
)

// Area is a single node of the catalog tree.
type Area struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ParentCode string `json:"parentCode,omitempty"`
	Level      Level  `json:"level"`
}

// Condition is a coarse weather category derived from a JMA weather code.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
)

// ConditionFromCode maps a JMA weather code by its leading digit.
func ConditionFromCode(code int) Condition {
	s := strconv.Itoa(code)
	switch s[0] {
	case '1':
		return ConditionClear
	case '2':
		return ConditionCloudy
	case '3':
		return ConditionRain
	case '4':
		return ConditionSnow
	default:
		return ConditionUnknown
	}
}

// Slot is one time step of a sub-area forecast. Missing temperatures are nil.
type Slot struct {
	Date        string    `json:"date"`
	Time        time.Time `json:"time"`
	WeatherCode int       `json:"weatherCode"`
	Condition   Condition `json:"condition"`
	TempMin     *float64  `json:"tempMin"`
	TempMax     *float64  `json:"tempMax"`
}

// AreaForecast holds the slots of one sub-area.
type AreaForecast struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Slots []Slot `json:"slots"`
}

// PrefectureForecast is the parsed result of one forecast fetch.
type PrefectureForecast struct {
	OfficeCode       string         `json:"officeCode"`
	OfficeName       string         `json:"officeName"`
	PublishingOffice string         `json:"publishingOffice,omitempty"`
	ReportDatetime   string         `json:"reportDatetime,omitempty"`
	FetchedAt        time.Time      `json:"fetchedAt"`
	Areas            []AreaForecast `json:"areas"`
}

// Entry is a cached forecast row, unique by (AreaCode, AreaName, Date).
type Entry struct {
	AreaCode    string    `json:"areaCode"`
	AreaName    string    `json:"areaName"`
	Date        string    `json:"date"`
	WeatherCode int       `json:"weatherCode"`
	TempMin     *float64  `json:"tempMin"`
	TempMax     *float64  `json:"tempMax"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Key returns the canonical identity of the row.
func (e Entry) Key() string {
	return e.AreaCode + ":" + e.AreaName + ":" + e.Date
}

// Condition reports the coarse category of the row's weather code.
func (e Entry) Condition() Condition {
	return ConditionFromCode(e.WeatherCode)
}

// AreaEntries groups the cached rows of one sub-area for a date.
type AreaEntries struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// DayForecast is one date of the cached window view.
type DayForecast struct {
	Date  string        `json:"date"`
	Areas []AreaEntries `json:"areas"`
}

// DateIndex lists the cached dates and the one to preselect.
type DateIndex struct {
	Dates   []string `json:"dates"`
	Default string   `json:"default,omitempty"`
}

// Document is one element of the upstream forecast array.
type Document struct {
	PublishingOffice string       `json:"publishingOffice"`
	ReportDatetime   string       `json:"reportDatetime"`
	TimeSeries       []TimeSeries `json:"timeSeries"`
}

// TimeSeries pairs slot times with per-area parallel arrays.
type TimeSeries struct {
	TimeDefines []string     `json:"timeDefines"`
	Areas       []SeriesArea `json:"areas"`
}

// SeriesArea carries the arrays for one area of a time series. Only the
// fields this service reads are decoded.
type SeriesArea struct {
	Area struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"area"`
	WeatherCodes []string `json:"weatherCodes,omitempty"`
	Temps        []string `json:"temps,omitempty"`
}
