package presenter

import (
	"errors"
	"testing"
	"time"

	"stocktracker/internal/history"
	"stocktracker/internal/market"
	"stocktracker/internal/watchlist"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quote(symbol market.Symbol, price, prev string) market.Quote {
	return market.Quote{
		Symbol:        symbol,
		Price:         decimal.RequireFromString(price),
		PreviousClose: decimal.RequireFromString(prev),
		Volume:        1234567,
		CompanyName:   "Apple Inc.",
		Currency:      "USD",
	}
}

func TestFormatting(t *testing.T) {
	q := quote("AAPL", "150.00", "148.00")

	assert.Equal(t, "$150.00", Money(q.Price, q.Currency))
	assert.Equal(t, "$1,234.57", Money(decimal.RequireFromString("1234.567"), ""))
	assert.Equal(t, "+2.00", Change(q))
	assert.Equal(t, "+1.35%", ChangePercent(q))
	assert.Equal(t, "1,234,567", Volume(q.Volume))
	assert.Equal(t, "▲", Arrow(q))

	down := quote("AAPL", "140", "148")
	assert.Equal(t, "-8.00", Change(down))
	assert.Equal(t, "-5.41%", ChangePercent(down))
	assert.Equal(t, "▼", Arrow(down))

	assert.Equal(t, NotAvailable, ChangePercent(quote("X", "1", "0")))
	assert.Equal(t, NotAvailable, OptionalMoney(nil, "USD"))
	assert.Equal(t, NotAvailable, OptionalNumber(nil))
	assert.Equal(t, "28.50", OptionalNumber(market.Decimal(28.5)))
	assert.Equal(t, NotAvailable, Text("  "))
}

func TestWatchlist(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	quotes := []market.Quote{quote("AAPL", "150.00", "148.00"), quote("MSFT", "400", "400")}

	out := Watchlist(quotes, watchlist.Summarize(quotes), at)
	assert.Contains(t, out, "2024-05-01 09:30:00")
	assert.Contains(t, out, "| AAPL | Apple Inc. | $150.00 | +2.00 | +1.35% | 1,234,567 | ▲ |")
	assert.Contains(t, out, "- Total stocks: 2")
	assert.Contains(t, out, "- Average price: $275.00")
	assert.Contains(t, out, "- Average change: +0.68%")
}

func TestWatchlist_Empty(t *testing.T) {
	out := Watchlist(nil, watchlist.Summarize(nil), time.Now())
	assert.Contains(t, out, "No stocks are currently being tracked.")
	assert.NotContains(t, out, "NaN")
}

func TestSummaryLines_NotApplicable(t *testing.T) {
	out := summaryLines(watchlist.Summary{})
	assert.Contains(t, out, "- Total stocks: 0")
	assert.Contains(t, out, "- Average price: N/A")
	assert.Contains(t, out, "- Average change: N/A")
}

func TestDetail(t *testing.T) {
	q := quote("AAPL", "150.00", "148.00")
	q.CompanyName = "Pipe | Corp"
	q.DayHigh = market.Decimal(151.2)
	q.Sector = "Technology"

	out := Detail(q)
	assert.Contains(t, out, "# AAPL")
	assert.Contains(t, out, `Pipe \| Corp`)
	assert.Contains(t, out, "| Change | +$2.00 (+1.35%) |")
	assert.Contains(t, out, "| Day high | $151.20 |")
	assert.Contains(t, out, "| Day low | N/A |")
	assert.Contains(t, out, "| Sector | Technology |")
	assert.Contains(t, out, "| Country | N/A |")
}

func TestHistory(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var points []market.HistoryPoint
	for i := 0; i < 3; i++ {
		v := decimal.NewFromInt(int64(10 + i))
		points = append(points, market.HistoryPoint{
			Date: day.AddDate(0, 0, i), Open: v, High: v.Add(decimal.NewFromInt(1)), Low: v.Sub(decimal.NewFromInt(1)), Close: v, Volume: 1000,
		})
	}
	res := history.Result{Symbol: "AAPL", Period: market.Period1Month, Points: points}

	out := History(res, 2)
	assert.Contains(t, out, "# AAPL 1MO price history")
	assert.Contains(t, out, "_Last 2 of 3 trading days_")
	assert.NotContains(t, out, "| 2024-05-01 |")
	assert.Contains(t, out, "| 2024-05-03 | $12.00 | $13.00 | $11.00 | $12.00 | 1,000 |")
	assert.Contains(t, out, "- Highest price: $13.00")
	assert.Contains(t, out, "- Lowest price: $9.00")
	assert.Contains(t, out, "- Average close: $11.00")
	assert.Contains(t, out, "- Total volume: 3,000")
}

func TestMarket(t *testing.T) {
	indices := []Index{{Symbol: "^GSPC", Name: "S&P 500"}, {Symbol: "^DJI", Name: "Dow Jones"}}
	res := watchlist.LookupResult{
		Quotes: []market.Quote{quote("^GSPC", "5000.5", "4990")},
		Failed: []watchlist.Failure{{Symbol: "^DJI", Err: errors.New("no data")}},
	}

	out := Market(indices, res)
	assert.Contains(t, out, "| S&P 500 | 5,000.50 | +10.50 | +0.21% | ▲ |")
	assert.Contains(t, out, "| Dow Jones | N/A | | | |")
	assert.Contains(t, out, "- ^DJI: no data")

	views := NewMarketView(indices, res)
	require.Len(t, views, 2)
	require.NotNil(t, views[0].Quote)
	assert.Nil(t, views[1].Quote)
}

func TestReport(t *testing.T) {
	r := watchlist.RefreshReport{
		At:      time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Updated: []market.Symbol{"AAPL"},
		Failed:  []watchlist.Failure{{Symbol: "ZZZZ", Err: market.ErrNoData}},
	}
	out := Report(r)
	assert.Contains(t, out, "Refreshed 1 stock(s) at 09:30:00, 1 failed.")
	assert.Contains(t, out, "- ZZZZ: "+market.ErrNoData.Error())
}

func TestViews(t *testing.T) {
	v := NewQuoteView(quote("X", "1", "0"))
	assert.Nil(t, v.ChangePercent)
	assert.Equal(t, NotAvailable, v.PercentDisplay)

	v = NewQuoteView(quote("AAPL", "150", "148"))
	require.NotNil(t, v.ChangePercent)
	assert.InDelta(t, 1.3513, *v.ChangePercent, 0.001)
	assert.Equal(t, "2.00", v.Change)
	assert.True(t, v.Up)

	empty := NewWatchlistView(nil, time.Now())
	assert.Equal(t, 0, empty.Summary.Count)
	assert.Nil(t, empty.Summary.MeanPrice)
	assert.Nil(t, empty.Summary.MeanChangePercent)
	assert.Equal(t, NotAvailable, empty.Summary.MeanPriceDisplay)
	assert.NotNil(t, empty.Quotes)
}

func TestTicker(t *testing.T) {
	assert.Equal(t, "AAPL $150.00 +2.00 (+1.35%) ▲", PlainStyles().Ticker(quote("AAPL", "150.00", "148.00")))
}
