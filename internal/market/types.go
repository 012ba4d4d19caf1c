package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time snapshot of one symbol as returned by a Provider.
// Optional numeric fields are nil when the provider omits them; optional strings are empty.
type Quote struct {
	Symbol        Symbol          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`          // Last traded / close price
	PreviousClose decimal.Decimal `json:"previous_close"` // Close of the prior session
	Volume        int64           `json:"volume"`         // Day volume (never negative)

	CompanyName string `json:"company_name,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Country     string `json:"country,omitempty"`

	MarketCap        *decimal.Decimal `json:"market_cap,omitempty"`
	PERatio          *decimal.Decimal `json:"pe_ratio,omitempty"`
	DayHigh          *decimal.Decimal `json:"day_high,omitempty"`
	DayLow           *decimal.Decimal `json:"day_low,omitempty"`
	FiftyTwoWeekHigh *decimal.Decimal `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  *decimal.Decimal `json:"fifty_two_week_low,omitempty"`

	Currency  string    `json:"currency,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

var hundred = decimal.NewFromInt(100)

// Change returns Price - PreviousClose.
func (q Quote) Change() decimal.Decimal {
	return q.Price.Sub(q.PreviousClose)
}

// ChangePercent returns Change / PreviousClose * 100.
// It fails with ErrUndefinedChange when PreviousClose is zero.
func (q Quote) ChangePercent() (float64, error) {
	if q.PreviousClose.IsZero() {
		return 0, ErrUndefinedChange
	}
	return q.Change().Div(q.PreviousClose).Mul(hundred).InexactFloat64(), nil
}

// IsUp reports whether the price did not fall since the previous close.
func (q Quote) IsUp() bool {
	return !q.Change().IsNegative()
}

// HistoryPoint is one daily OHLCV bar.
type HistoryPoint struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Decimal is a helper for optional numeric fields.
func Decimal(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}
