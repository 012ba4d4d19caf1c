package history

import (
	"stocktracker/internal/market"

	"github.com/shopspring/decimal"
)

// Stats summarizes a whole series.
type Stats struct {
	High        decimal.Decimal `json:"high"`       // highest intraday high
	Low         decimal.Decimal `json:"low"`        // lowest intraday low
	MeanClose   decimal.Decimal `json:"mean_close"` // arithmetic mean of closes
	TotalVolume int64           `json:"total_volume"`
}

// ComputeStats returns false for an empty series.
func ComputeStats(points []market.HistoryPoint) (Stats, bool) {
	if len(points) == 0 {
		return Stats{}, false
	}

	st := Stats{High: points[0].High, Low: points[0].Low}
	closes := decimal.Zero
	for _, p := range points {
		if p.High.GreaterThan(st.High) {
			st.High = p.High
		}
		if p.Low.LessThan(st.Low) {
			st.Low = p.Low
		}
		closes = closes.Add(p.Close)
		st.TotalVolume += p.Volume
	}
	st.MeanClose = closes.Div(decimal.NewFromInt(int64(len(points))))
	return st, true
}
