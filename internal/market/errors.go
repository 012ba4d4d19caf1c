package market

import "errors"

var (
	// ErrNoData is returned whenever the provider has nothing usable for a symbol or period,
	// whatever the underlying cause (unknown ticker, outage, malformed payload).
	ErrNoData = errors.New("no data")

	ErrAlreadyTracked = errors.New("already tracked")
	ErrNotTracked     = errors.New("not tracked")

	// ErrUndefinedChange guards the change-percent division when the previous close is zero.
	ErrUndefinedChange = errors.New("change percent undefined: previous close is zero")

	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrUnknownPeriod = errors.New("unknown period")
)
