package yahoo

import (
	"fmt"

	"stocktracker/internal/market"
)

// RangeMeta holds the query values sent to the chart endpoint for a period.
type RangeMeta struct {
	Range    string
	Interval string
}

// quoteRange is what FetchQuote asks for: today's daily bar.
var quoteRange = RangeMeta{Range: "1d", Interval: "1d"}

// validRanges maps each supported period to its chart query.
var validRanges = map[market.Period]RangeMeta{
	market.Period1Day:    {Range: "1d", Interval: "1d"},
	market.Period5Days:   {Range: "5d", Interval: "1d"},
	market.Period1Month:  {Range: "1mo", Interval: "1d"},
	market.Period3Months: {Range: "3mo", Interval: "1d"},
	market.Period6Months: {Range: "6mo", Interval: "1d"},
	market.Period1Year:   {Range: "1y", Interval: "1d"},
	market.Period2Years:  {Range: "2y", Interval: "1d"},
	market.Period5Years:  {Range: "5y", Interval: "1d"},
	market.PeriodMax:     {Range: "max", Interval: "1d"},
}

// ParseRange returns the chart query for p.
func ParseRange(p market.Period) (RangeMeta, error) {
	meta, ok := validRanges[p]
	if !ok {
		return RangeMeta{}, fmt.Errorf("%w: %s", market.ErrUnknownPeriod, p)
	}
	return meta, nil
}

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultUserAgent = "Mozilla/5.0 (compatible; stocktracker/1.0)"

	chartPath   = "/v8/finance/chart/"
	summaryPath = "/v10/finance/quoteSummary/"

	summaryModules = "price,summaryProfile,summaryDetail"
)
