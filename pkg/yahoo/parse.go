package yahoo

import (
	"fmt"
	"time"

	"stocktracker/internal/market"

	"github.com/shopspring/decimal"
)

// ParseHistory converts a chart result into daily bars, ascending by date.
// Bars with any null OHLC value are skipped; a null volume counts as zero.
func ParseHistory(res ChartResult) []market.HistoryPoint {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	q := res.Indicators.Quote[0]
	loc := exchangeLocation(res.Meta.ExchangeTimezoneName)

	out := make([]market.HistoryPoint, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		open, high, low, closeVal := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i)
		if open == nil || high == nil || low == nil || closeVal == nil {
			continue
		}
		var volume int64
		if i < len(q.Volume) && q.Volume[i] != nil && *q.Volume[i] > 0 {
			volume = *q.Volume[i]
		}

		out = append(out, market.HistoryPoint{
			Date:   tradingDay(ts, loc),
			Open:   decimal.NewFromFloat(*open),
			High:   decimal.NewFromFloat(*high),
			Low:    decimal.NewFromFloat(*low),
			Close:  decimal.NewFromFloat(*closeVal),
			Volume: volume,
		})
	}
	return out
}

// QuoteFromChart builds a snapshot from a 1d chart result.
// The price is the last non-null close, falling back to regularMarketPrice.
// A missing previous close falls back to the price, so change is zero rather than unknown.
func QuoteFromChart(symbol market.Symbol, res ChartResult, now time.Time) (market.Quote, error) {
	meta := res.Meta
	bars := ParseHistory(res)

	var price *decimal.Decimal
	if n := len(bars); n > 0 {
		price = &bars[n-1].Close
	} else if meta.RegularMarketPrice != nil {
		price = market.Decimal(*meta.RegularMarketPrice)
	}
	if price == nil {
		return market.Quote{}, fmt.Errorf("%w: %s: chart has no price", market.ErrNoData, symbol)
	}

	prev := *price
	switch {
	case meta.PreviousClose != nil:
		prev = decimal.NewFromFloat(*meta.PreviousClose)
	case meta.ChartPreviousClose != nil:
		prev = decimal.NewFromFloat(*meta.ChartPreviousClose)
	}

	// Bar volumes are already clamped by ParseHistory.
	var volume int64
	if meta.RegularMarketVolume != nil {
		volume = max(*meta.RegularMarketVolume, 0)
	} else if n := len(bars); n > 0 {
		volume = bars[n-1].Volume
	}

	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}

	return market.Quote{
		Symbol:           symbol,
		Price:            *price,
		PreviousClose:    prev,
		Volume:           volume,
		CompanyName:      name,
		DayHigh:          optional(meta.RegularMarketDayHigh),
		DayLow:           optional(meta.RegularMarketDayLow),
		FiftyTwoWeekHigh: optional(meta.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:  optional(meta.FiftyTwoWeekLow),
		Currency:         meta.Currency,
		FetchedAt:        now,
	}, nil
}

// MergeSummary fills the descriptive fields the chart endpoint does not carry.
// Fields already set on q are kept.
func MergeSummary(q *market.Quote, s SummaryResult) {
	if q.CompanyName == "" {
		q.CompanyName = s.Price.LongName
		if q.CompanyName == "" {
			q.CompanyName = s.Price.ShortName
		}
	}
	q.Sector = s.SummaryProfile.Sector
	q.Industry = s.SummaryProfile.Industry
	q.Country = s.SummaryProfile.Country

	q.MarketCap = optional(s.Price.MarketCap.Raw)
	if q.MarketCap == nil {
		q.MarketCap = optional(s.SummaryDetail.MarketCap.Raw)
	}
	q.PERatio = optional(s.SummaryDetail.TrailingPE.Raw)
}

func at(vals []*float64, i int) *float64 {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}

func optional(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	return market.Decimal(*f)
}

func exchangeLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// tradingDay maps a bar timestamp to its calendar date at the exchange, as UTC midnight.
func tradingDay(ts int64, loc *time.Location) time.Time {
	y, m, d := time.Unix(ts, 0).In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
