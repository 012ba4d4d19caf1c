package watchlist

import (
	"time"

	"stocktracker/internal/market"
)

// Update is one fetch result travelling from the refresh worker to the applier.
// Generation is the store generation of Symbol when the fetch started.
type Update struct {
	Symbol     market.Symbol
	Generation uint64
	Quote      market.Quote
	Err        error
}

type Failure struct {
	Symbol market.Symbol
	Err    error
}

// RefreshReport describes one bulk refresh.
// Discarded lists symbols removed (or removed and re-added) while their fetch was in flight.
type RefreshReport struct {
	At        time.Time
	Updated   []market.Symbol
	Failed    []Failure
	Discarded []market.Symbol
}

func (r RefreshReport) OK() bool { return len(r.Failed) == 0 }

type LookupResult struct {
	Quotes []market.Quote
	Failed []Failure
}
