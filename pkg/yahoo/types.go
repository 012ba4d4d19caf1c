package yahoo

// ChartResponse is the envelope of /v8/finance/chart.
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *APIError     `json:"error"`
	} `json:"chart"`
}

// APIError is the error object Yahoo embeds in otherwise well-formed payloads.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Description }

type ChartResult struct {
	Meta       ChartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"` // Bar start, seconds since epoch
	Indicators struct {
		Quote []ChartQuote `json:"quote"`
	} `json:"indicators"`
}

// ChartMeta carries the session figures used for the quote snapshot.
type ChartMeta struct {
	Currency             string   `json:"currency"`
	Symbol               string   `json:"symbol"`
	ExchangeTimezoneName string   `json:"exchangeTimezoneName"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	PreviousClose        *float64 `json:"previousClose"`
	RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  *int64   `json:"regularMarketVolume"`
	FiftyTwoWeekHigh     *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      *float64 `json:"fiftyTwoWeekLow"`
	LongName             string   `json:"longName"`
	ShortName            string   `json:"shortName"`
}

// ChartQuote holds parallel OHLCV arrays; entries are null for halted bars.
type ChartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// SummaryResponse is the envelope of /v10/finance/quoteSummary.
type SummaryResponse struct {
	QuoteSummary struct {
		Result []SummaryResult `json:"result"`
		Error  *APIError       `json:"error"`
	} `json:"quoteSummary"`
}

type SummaryResult struct {
	Price struct {
		LongName  string   `json:"longName"`
		ShortName string   `json:"shortName"`
		MarketCap RawValue `json:"marketCap"`
	} `json:"price"`
	SummaryProfile struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
		Country  string `json:"country"`
	} `json:"summaryProfile"`
	SummaryDetail struct {
		TrailingPE RawValue `json:"trailingPE"`
		MarketCap  RawValue `json:"marketCap"`
	} `json:"summaryDetail"`
}

// RawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} number wrapper.
type RawValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}
