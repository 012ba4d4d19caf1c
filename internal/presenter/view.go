package presenter

import (
	"time"

	"stocktracker/internal/history"
	"stocktracker/internal/market"
	"stocktracker/internal/watchlist"
)

// QuoteView is the JSON shape of a quote. ChangePercent is null when undefined.
type QuoteView struct {
	market.Quote
	Change         string   `json:"change"`
	ChangePercent  *float64 `json:"change_percent"`
	Up             bool     `json:"up"`
	PriceDisplay   string   `json:"price_display"`
	ChangeDisplay  string   `json:"change_display"`
	PercentDisplay string   `json:"percent_display"`
}

func NewQuoteView(q market.Quote) QuoteView {
	v := QuoteView{
		Quote:          q,
		Change:         q.Change().StringFixed(2),
		Up:             q.IsUp(),
		PriceDisplay:   Money(q.Price, q.Currency),
		ChangeDisplay:  Change(q),
		PercentDisplay: ChangePercent(q),
	}
	if pct, err := q.ChangePercent(); err == nil {
		v.ChangePercent = &pct
	}
	return v
}

func NewQuoteViews(quotes []market.Quote) []QuoteView {
	out := make([]QuoteView, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, NewQuoteView(q))
	}
	return out
}

// SummaryView reports mean values as null and "N/A" when the watch-list is empty.
type SummaryView struct {
	Count             int      `json:"count"`
	MeanPrice         *string  `json:"mean_price"`
	MeanChangePercent *float64 `json:"mean_change_percent"`
	MeanPriceDisplay  string   `json:"mean_price_display"`
	MeanChangeDisplay string   `json:"mean_change_display"`
}

func NewSummaryView(sum watchlist.Summary) SummaryView {
	v := SummaryView{
		Count:             sum.Count,
		MeanChangePercent: sum.MeanChangePercent,
		MeanPriceDisplay:  NotAvailable,
		MeanChangeDisplay: NotAvailable,
	}
	if sum.MeanPrice != nil {
		s := sum.MeanPrice.StringFixed(2)
		v.MeanPrice = &s
		v.MeanPriceDisplay = Money(*sum.MeanPrice, "")
	}
	if sum.MeanChangePercent != nil {
		v.MeanChangeDisplay = Percent(*sum.MeanChangePercent)
	}
	return v
}

// WatchlistView is pushed to dashboard clients after every refresh.
type WatchlistView struct {
	UpdatedAt time.Time   `json:"updated_at"`
	Quotes    []QuoteView `json:"quotes"`
	Summary   SummaryView `json:"summary"`
}

func NewWatchlistView(quotes []market.Quote, at time.Time) WatchlistView {
	return WatchlistView{
		UpdatedAt: at,
		Quotes:    NewQuoteViews(quotes),
		Summary:   NewSummaryView(watchlist.Summarize(quotes)),
	}
}

type FailureView struct {
	Symbol market.Symbol `json:"symbol"`
	Error  string        `json:"error"`
}

func NewFailureViews(failed []watchlist.Failure) []FailureView {
	out := make([]FailureView, 0, len(failed))
	for _, f := range failed {
		out = append(out, FailureView{Symbol: f.Symbol, Error: f.Err.Error()})
	}
	return out
}

type LookupView struct {
	Quotes []QuoteView   `json:"quotes"`
	Failed []FailureView `json:"failed"`
}

func NewLookupView(res watchlist.LookupResult) LookupView {
	return LookupView{Quotes: NewQuoteViews(res.Quotes), Failed: NewFailureViews(res.Failed)}
}

type MarketIndexView struct {
	Name  string     `json:"name"`
	Quote *QuoteView `json:"quote"`
}

// NewMarketView keeps the order of indices; an index whose fetch failed has a null quote.
func NewMarketView(indices []Index, res watchlist.LookupResult) []MarketIndexView {
	bySymbol := make(map[market.Symbol]market.Quote, len(res.Quotes))
	for _, q := range res.Quotes {
		bySymbol[q.Symbol] = q
	}
	out := make([]MarketIndexView, 0, len(indices))
	for _, idx := range indices {
		mv := MarketIndexView{Name: idx.Name}
		if q, ok := bySymbol[idx.Symbol]; ok {
			qv := NewQuoteView(q)
			mv.Quote = &qv
		}
		out = append(out, mv)
	}
	return out
}

type ReportView struct {
	At        time.Time       `json:"at"`
	Updated   []market.Symbol `json:"updated"`
	Failed    []FailureView   `json:"failed"`
	Discarded []market.Symbol `json:"discarded"`
}

func NewReportView(r watchlist.RefreshReport) ReportView {
	return ReportView{At: r.At, Updated: r.Updated, Failed: NewFailureViews(r.Failed), Discarded: r.Discarded}
}

type HistoryView struct {
	history.Result
	Stats *history.Stats `json:"stats"`
}

func NewHistoryView(res history.Result) HistoryView {
	v := HistoryView{Result: res}
	if st, ok := history.ComputeStats(res.Points); ok {
		v.Stats = &st
	}
	return v
}
