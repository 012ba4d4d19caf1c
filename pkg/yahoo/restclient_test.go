package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stocktracker/internal/market"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartAAPL = `{"chart":{"result":[{
  "meta":{"currency":"USD","symbol":"AAPL","exchangeTimezoneName":"America/New_York",
    "regularMarketPrice":150.0,"chartPreviousClose":147.5,"previousClose":148.0,
    "regularMarketDayHigh":151.2,"regularMarketDayLow":147.9,"regularMarketVolume":52000000,
    "fiftyTwoWeekHigh":199.6,"fiftyTwoWeekLow":124.2,"longName":"Apple Inc."},
  "timestamp":[1748871000],
  "indicators":{"quote":[{"open":[148.5],"high":[151.2],"low":[147.9],"close":[150.0],"volume":[52000000]}]}
}],"error":null}}`

const summaryAAPL = `{"quoteSummary":{"result":[{
  "price":{"longName":"Apple Inc.","marketCap":{"raw":2950000000000,"fmt":"2.95T"}},
  "summaryProfile":{"sector":"Technology","industry":"Consumer Electronics","country":"United States"},
  "summaryDetail":{"trailingPE":{"raw":31.4,"fmt":"31.40"}}
}],"error":null}}`

const historyAAPL = `{"chart":{"result":[{
  "meta":{"currency":"USD","symbol":"AAPL","exchangeTimezoneName":"America/New_York"},
  "timestamp":[1748611800,1748871000,1748957400],
  "indicators":{"quote":[{
    "open":[199.4,null,201.3],
    "high":[201.0,null,203.8],
    "low":[197.1,null,200.9],
    "close":[200.85,null,203.27],
    "volume":[70753100,null,46381600]}]}
}],"error":null}}`

const notFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestServer(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		for prefix, h := range routes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				h(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func respond(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// go test -v --run TestFetchQuote
func TestFetchQuote(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		chartPath + "AAPL": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1d", r.URL.Query().Get("range"))
			respond(http.StatusOK, chartAAPL)(w, r)
		},
		summaryPath + "AAPL": respond(http.StatusOK, summaryAAPL),
	})
	client := NewRESTClient(srv.URL, 5*time.Second)

	q, err := client.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, market.Symbol("AAPL"), q.Symbol)
	require.True(t, q.Price.Equal(decimal.NewFromInt(150)))
	require.True(t, q.PreviousClose.Equal(decimal.NewFromInt(148)))
	require.Equal(t, int64(52000000), q.Volume)
	require.Equal(t, "Apple Inc.", q.CompanyName)
	require.Equal(t, "Technology", q.Sector)
	require.Equal(t, "Consumer Electronics", q.Industry)
	require.Equal(t, "United States", q.Country)
	require.NotNil(t, q.MarketCap)
	require.True(t, q.MarketCap.Equal(decimal.NewFromInt(2950000000000)))
	require.NotNil(t, q.PERatio)
	require.NotNil(t, q.FiftyTwoWeekLow)
	require.Equal(t, "USD", q.Currency)

	pct, err := q.ChangePercent()
	require.NoError(t, err)
	require.InDelta(t, 1.3513, pct, 1e-3)
}

func TestFetchQuote_SummaryFailureIsNotFatal(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		chartPath + "AAPL":   respond(http.StatusOK, chartAAPL),
		summaryPath + "AAPL": respond(http.StatusUnauthorized, `{"finance":{"error":{"code":"Unauthorized"}}}`),
	})
	client := NewRESTClient(srv.URL, 5*time.Second)

	q, err := client.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "Apple Inc.", q.CompanyName)
	require.Empty(t, q.Sector)
	require.Nil(t, q.MarketCap)
	require.Nil(t, q.PERatio)
}

func TestFetchQuote_IndexSymbolIsEscaped(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, chartPath) {
			gotPath = r.URL.EscapedPath()
			respond(http.StatusOK, chartAAPL)(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewRESTClient(srv.URL, 5*time.Second).FetchQuote(context.Background(), "^GSPC")
	require.NoError(t, err)
	require.Equal(t, chartPath+"%5EGSPC", gotPath)
}

func TestFetchQuote_NoData(t *testing.T) {
	tests := []struct {
		name string
		h    func(http.ResponseWriter, *http.Request)
	}{
		{name: "not found envelope", h: respond(http.StatusNotFound, notFound)},
		{name: "server error", h: respond(http.StatusInternalServerError, "oops")},
		{name: "malformed", h: respond(http.StatusOK, "{not json")},
		{name: "empty result", h: respond(http.StatusOK, `{"chart":{"result":[],"error":null}}`)},
		{name: "no price", h: respond(http.StatusOK, `{"chart":{"result":[{"meta":{"symbol":"ZZZZ"}}],"error":null}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){chartPath: tt.h})
			_, err := NewRESTClient(srv.URL, 5*time.Second).FetchQuote(context.Background(), "ZZZZ")
			require.ErrorIs(t, err, market.ErrNoData)
		})
	}
}

func TestFetchQuote_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRESTClient(url, time.Second).FetchQuote(context.Background(), "AAPL")
	require.ErrorIs(t, err, market.ErrNoData)
}

// go test -v --run TestFetchHistory
func TestFetchHistory(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		chartPath + "AAPL": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1mo", r.URL.Query().Get("range"))
			assert.Equal(t, "1d", r.URL.Query().Get("interval"))
			respond(http.StatusOK, historyAAPL)(w, r)
		},
	})
	client := NewRESTClient(srv.URL, 5*time.Second)

	points, err := client.FetchHistory(context.Background(), "AAPL", market.Period1Month)
	require.NoError(t, err)
	require.Len(t, points, 2, "the null bar is skipped")

	require.Equal(t, time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC), points[0].Date)
	require.True(t, points[0].Close.Equal(decimal.RequireFromString("200.85")))
	require.Equal(t, int64(70753100), points[0].Volume)
	require.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), points[1].Date)
}

func TestFetchHistory_Empty(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter, *http.Request){
		chartPath: respond(http.StatusOK, `{"chart":{"result":[{"meta":{"symbol":"ZZZZ"},"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`),
	})

	_, err := NewRESTClient(srv.URL, 5*time.Second).FetchHistory(context.Background(), "ZZZZ", market.Period1Month)
	require.ErrorIs(t, err, market.ErrNoData)
}

func TestFetchHistory_UnknownPeriod(t *testing.T) {
	_, err := NewRESTClient("http://127.0.0.1:0", time.Second).FetchHistory(context.Background(), "AAPL", "10y")
	require.ErrorIs(t, err, market.ErrUnknownPeriod)
}

func TestQuoteFromChart_PreviousCloseFallbacks(t *testing.T) {
	price := 10.0
	chartPrev := 9.5

	res := ChartResult{Meta: ChartMeta{RegularMarketPrice: &price, ChartPreviousClose: &chartPrev}}
	q, err := QuoteFromChart("X", res, time.Now())
	require.NoError(t, err)
	require.True(t, q.PreviousClose.Equal(decimal.RequireFromString("9.5")))

	res = ChartResult{Meta: ChartMeta{RegularMarketPrice: &price}}
	q, err = QuoteFromChart("X", res, time.Now())
	require.NoError(t, err)
	require.True(t, q.PreviousClose.Equal(q.Price))
	require.True(t, q.Change().IsZero())
}

func TestQuoteFromChart_NegativeVolumeIsZero(t *testing.T) {
	price := 10.0
	volume := int64(-5)

	res := ChartResult{Meta: ChartMeta{RegularMarketPrice: &price, RegularMarketVolume: &volume}}
	q, err := QuoteFromChart("X", res, time.Now())
	require.NoError(t, err)
	require.Zero(t, q.Volume)
}
