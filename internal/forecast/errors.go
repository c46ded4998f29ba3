package forecast

import "errors"

var (
	// ErrNotFound is returned when nothing is cached for the requested dates.
	ErrNotFound = errors.New("no cached forecast data")

	// ErrUnknownArea is returned for codes missing from the catalog.
	ErrUnknownArea = errors.New("unknown area")

	// ErrCatalogNotLoaded is returned before LoadCatalog has succeeded.
	ErrCatalogNotLoaded = errors.New("area catalog not loaded")

	// ErrFetch wraps any failure talking to the forecast endpoint.
	ErrFetch = errors.New("forecast fetch failed")

	// ErrParse wraps structural mismatches in a forecast document.
	ErrParse = errors.New("forecast parsing error")

	// ErrInvalidWindow is returned for bad window arguments.
	ErrInvalidWindow = errors.New("invalid forecast window")
)
