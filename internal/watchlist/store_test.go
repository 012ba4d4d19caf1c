package watchlist

import (
	"testing"

	"stocktracker/internal/market"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testQuote(symbol market.Symbol, price, prev string) market.Quote {
	return market.Quote{
		Symbol:        symbol,
		Price:         decimal.RequireFromString(price),
		PreviousClose: decimal.RequireFromString(prev),
		Volume:        1000,
	}
}

// go test -v --run TestStoreAddRemove
func TestStoreAddRemove(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Add("AAPL", testQuote("AAPL", "150", "148")))
	require.NoError(t, s.Add("MSFT", testQuote("MSFT", "300", "310")))
	require.Equal(t, 2, s.Len())

	err := s.Add("AAPL", testQuote("AAPL", "999", "1"))
	require.ErrorIs(t, err, market.ErrAlreadyTracked)
	got, ok := s.Get("AAPL")
	require.True(t, ok)
	require.True(t, got.Price.Equal(decimal.NewFromInt(150)), "existing quote must not be overwritten")

	require.NoError(t, s.Remove("AAPL"))
	require.Equal(t, 1, s.Len())

	require.ErrorIs(t, s.Remove("AAPL"), market.ErrNotTracked)
	require.Equal(t, 1, s.Len())

	_, ok = s.Get("AAPL")
	require.False(t, ok)
}

func TestStoreKeepsInsertionOrder(t *testing.T) {
	s := NewStore()
	for _, sym := range []market.Symbol{"TSLA", "AAPL", "NVDA", "META"} {
		require.NoError(t, s.Add(sym, testQuote(sym, "1", "1")))
	}
	require.NoError(t, s.Remove("AAPL"))
	gen, ok := s.Generation("TSLA")
	require.True(t, ok)
	require.True(t, s.Replace("TSLA", gen, testQuote("TSLA", "2", "1")))

	require.Equal(t, []market.Symbol{"TSLA", "NVDA", "META"}, s.Symbols())

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	require.Equal(t, market.Symbol("TSLA"), snap[0].Symbol)
	require.True(t, snap[0].Price.Equal(decimal.NewFromInt(2)))
}

func TestStoreReplaceUntracked(t *testing.T) {
	s := NewStore()
	require.False(t, s.Replace("AAPL", 1, testQuote("AAPL", "1", "1")))
	require.Equal(t, 0, s.Len())
}

func TestStoreReplaceStaleGeneration(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add("AAPL", testQuote("AAPL", "1", "1")))
	old, ok := s.Generation("AAPL")
	require.True(t, ok)

	require.NoError(t, s.Remove("AAPL"))
	_, ok = s.Generation("AAPL")
	require.False(t, ok)

	require.NoError(t, s.Add("AAPL", testQuote("AAPL", "3", "1")))
	cur, ok := s.Generation("AAPL")
	require.True(t, ok)
	require.NotEqual(t, old, cur)

	require.False(t, s.Replace("AAPL", old, testQuote("AAPL", "2", "1")))
	got, _ := s.Get("AAPL")
	require.True(t, got.Price.Equal(decimal.NewFromInt(3)))

	require.True(t, s.Replace("AAPL", cur, testQuote("AAPL", "4", "1")))
	got, _ = s.Get("AAPL")
	require.True(t, got.Price.Equal(decimal.NewFromInt(4)))
}

func TestSummarize(t *testing.T) {
	empty := Summarize(nil)
	require.Equal(t, 0, empty.Count)
	require.Nil(t, empty.MeanPrice)
	require.Nil(t, empty.MeanChangePercent)

	sum := Summarize([]market.Quote{
		testQuote("AAPL", "150", "148"),
		testQuote("MSFT", "300", "300"),
		testQuote("ZERO", "30", "0"),
	})
	require.Equal(t, 3, sum.Count)
	require.NotNil(t, sum.MeanPrice)
	require.True(t, sum.MeanPrice.Equal(decimal.NewFromInt(160)))

	// ZERO has no defined change percent and is left out of the mean.
	require.NotNil(t, sum.MeanChangePercent)
	require.InDelta(t, (2.0/148*100)/2, *sum.MeanChangePercent, 1e-9)
}

func TestSummarize_AllUndefined(t *testing.T) {
	sum := Summarize([]market.Quote{testQuote("ZERO", "30", "0")})
	require.NotNil(t, sum.MeanPrice)
	require.Nil(t, sum.MeanChangePercent)
}
