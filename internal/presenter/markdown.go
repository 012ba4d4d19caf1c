// Package presenter renders read-only snapshots as markdown for the terminal and as JSON views for the dashboard.
// Nothing here holds state or writes back into the watch-list.
package presenter

import (
	"fmt"
	"strings"
	"time"

	"stocktracker/internal/history"
	"stocktracker/internal/market"
	"stocktracker/internal/watchlist"
)

const timeLayout = "2006-01-02 15:04:05"

// Index names one market index of the market summary.
type Index struct {
	Symbol market.Symbol
	Name   string
}

// Watchlist renders the tracked quotes followed by the summary block.
func Watchlist(quotes []market.Quote, sum watchlist.Summary, at time.Time) string {
	var b strings.Builder
	b.WriteString("# Stock Watch-list\n\n")
	fmt.Fprintf(&b, "_Last updated: %s_\n\n", at.Format(timeLayout))

	if len(quotes) == 0 {
		b.WriteString("No stocks are currently being tracked.\n")
		return b.String()
	}

	b.WriteString("| Symbol | Company | Price | Change | Change % | Volume | |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---|\n")
	for _, q := range quotes {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			q.Symbol,
			cell(Text(q.CompanyName), 25),
			Money(q.Price, q.Currency),
			Change(q),
			ChangePercent(q),
			Volume(q.Volume),
			Arrow(q),
		)
	}

	b.WriteString("\n## Summary\n\n")
	b.WriteString(summaryLines(sum))
	return b.String()
}

func summaryLines(sum watchlist.Summary) string {
	meanPrice, meanChange := NotAvailable, NotAvailable
	if sum.MeanPrice != nil {
		meanPrice = Money(*sum.MeanPrice, "")
	}
	if sum.MeanChangePercent != nil {
		meanChange = Percent(*sum.MeanChangePercent)
	}
	return fmt.Sprintf("- Total stocks: %d\n- Average price: %s\n- Average change: %s\n",
		sum.Count, meanPrice, meanChange)
}

// Detail renders every field of one quote.
func Detail(q market.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", q.Symbol)
	fmt.Fprintf(&b, "**%s**\n\n", cell(Text(q.CompanyName), 0))

	b.WriteString("## Price\n\n")
	b.WriteString("| | |\n|---|---:|\n")
	row(&b, "Current price", Money(q.Price, q.Currency))
	row(&b, "Previous close", Money(q.PreviousClose, q.Currency))
	row(&b, "Change", fmt.Sprintf("%s (%s)", SignedMoney(q.Change(), q.Currency), ChangePercent(q)))
	row(&b, "Day high", OptionalMoney(q.DayHigh, q.Currency))
	row(&b, "Day low", OptionalMoney(q.DayLow, q.Currency))
	row(&b, "52 week high", OptionalMoney(q.FiftyTwoWeekHigh, q.Currency))
	row(&b, "52 week low", OptionalMoney(q.FiftyTwoWeekLow, q.Currency))

	b.WriteString("\n## Market\n\n")
	b.WriteString("| | |\n|---|---:|\n")
	row(&b, "Market cap", OptionalMoney(q.MarketCap, q.Currency))
	row(&b, "Volume", Volume(q.Volume))
	row(&b, "P/E ratio", OptionalNumber(q.PERatio))

	b.WriteString("\n## Company\n\n")
	b.WriteString("| | |\n|---|---|\n")
	row(&b, "Sector", Text(q.Sector))
	row(&b, "Industry", Text(q.Industry))
	row(&b, "Country", Text(q.Country))

	if !q.FetchedAt.IsZero() {
		fmt.Fprintf(&b, "\n_Fetched: %s_\n", q.FetchedAt.Format(timeLayout))
	}
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", label, cell(value, 0))
}

// History renders the last tail rows of res followed by whole-period statistics.
func History(res history.Result, tail int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s price history\n\n", res.Symbol, strings.ToUpper(res.Period.String()))

	points := res.Tail(tail)
	if len(points) < len(res.Points) {
		fmt.Fprintf(&b, "_Last %d of %d trading days_\n\n", len(points), len(res.Points))
	}

	b.WriteString("| Date | Open | High | Low | Close | Volume |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, p := range points {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			p.Date.Format("2006-01-02"),
			Money(p.Open, ""), Money(p.High, ""), Money(p.Low, ""), Money(p.Close, ""),
			Volume(p.Volume),
		)
	}

	if st, ok := history.ComputeStats(res.Points); ok {
		fmt.Fprintf(&b, "\n## %s statistics\n\n", strings.ToUpper(res.Period.String()))
		fmt.Fprintf(&b, "- Highest price: %s\n", Money(st.High, ""))
		fmt.Fprintf(&b, "- Lowest price: %s\n", Money(st.Low, ""))
		fmt.Fprintf(&b, "- Average close: %s\n", Money(st.MeanClose, ""))
		fmt.Fprintf(&b, "- Total volume: %s\n", Volume(st.TotalVolume))
	}
	return b.String()
}

// Popular renders quotes looked up without tracking them.
func Popular(res watchlist.LookupResult) string {
	var b strings.Builder
	b.WriteString("# Popular stocks\n\n")
	if len(res.Quotes) > 0 {
		b.WriteString("| Symbol | Price | Change | Change % | |\n")
		b.WriteString("|---|---:|---:|---:|---|\n")
		for _, q := range res.Quotes {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				q.Symbol, Money(q.Price, q.Currency), Change(q), ChangePercent(q), Arrow(q))
		}
	}
	b.WriteString(failures(res.Failed))
	return b.String()
}

// Market renders the index summary in the order of indices. Index levels are points, not money.
func Market(indices []Index, res watchlist.LookupResult) string {
	bySymbol := make(map[market.Symbol]market.Quote, len(res.Quotes))
	for _, q := range res.Quotes {
		bySymbol[q.Symbol] = q
	}

	var b strings.Builder
	b.WriteString("# Market summary\n\n")
	b.WriteString("| Index | Level | Change | Change % | |\n")
	b.WriteString("|---|---:|---:|---:|---|\n")
	for _, idx := range indices {
		q, ok := bySymbol[idx.Symbol]
		if !ok {
			fmt.Fprintf(&b, "| %s | %s | | | |\n", cell(idx.Name, 0), NotAvailable)
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			cell(idx.Name, 0), numbers.Sprintf("%.2f", q.Price.InexactFloat64()), Change(q), ChangePercent(q), Arrow(q))
	}
	b.WriteString(failures(res.Failed))
	return b.String()
}

// Report renders the outcome of a bulk refresh.
func Report(r watchlist.RefreshReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Refreshed %d stock(s) at %s", len(r.Updated), r.At.Format("15:04:05"))
	if len(r.Failed) > 0 {
		fmt.Fprintf(&b, ", %d failed", len(r.Failed))
	}
	b.WriteString(".\n")
	b.WriteString(failures(r.Failed))
	return b.String()
}

func failures(failed []watchlist.Failure) string {
	if len(failed) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, f := range failed {
		fmt.Fprintf(&b, "- %s: %s\n", f.Symbol, cell(f.Err.Error(), 0))
	}
	return b.String()
}
