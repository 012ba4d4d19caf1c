package presenter

import (
	"fmt"
	"strings"

	"stocktracker/internal/market"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable stands in for any value the provider did not supply or that cannot be computed.
const NotAvailable = "N/A"

const defaultCurrency = "USD"

var numbers = message.NewPrinter(language.English)

// currency never returns nil: unknown codes fall back to USD.
func currency(code string) *money.Currency {
	if code != "" {
		if cur := money.GetCurrency(strings.ToUpper(code)); cur != nil {
			return cur
		}
	}
	return money.GetCurrency(defaultCurrency)
}

// Money formats amount in the currency's minor units, e.g. "$1,234.56".
func Money(amount decimal.Decimal, code string) string {
	cur := currency(code)
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// OptionalMoney renders nil as NotAvailable.
func OptionalMoney(amount *decimal.Decimal, code string) string {
	if amount == nil {
		return NotAvailable
	}
	return Money(*amount, code)
}

// SignedMoney prefixes non-negative amounts with "+".
func SignedMoney(amount decimal.Decimal, code string) string {
	if amount.IsNegative() {
		return Money(amount, code)
	}
	return "+" + Money(amount, code)
}

// Change formats q.Change() as a signed two-decimal number: "+2.00".
func Change(q market.Quote) string {
	s := q.Change().StringFixed(2)
	if !q.Change().IsNegative() {
		s = "+" + s
	}
	return s
}

// ChangePercent formats the change percent as "+1.35%", or NotAvailable when previous close is zero.
func ChangePercent(q market.Quote) string {
	pct, err := q.ChangePercent()
	if err != nil {
		return NotAvailable
	}
	return Percent(pct)
}

func Percent(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

// Volume groups thousands: 1234567 -> "1,234,567".
func Volume(v int64) string {
	return numbers.Sprintf("%d", v)
}

func OptionalNumber(d *decimal.Decimal) string {
	if d == nil {
		return NotAvailable
	}
	return d.StringFixed(2)
}

// Text returns NotAvailable for an empty string.
func Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// Arrow is the plain trend marker used inside tables.
func Arrow(q market.Quote) string {
	if q.IsUp() {
		return "▲"
	}
	return "▼"
}

// cell escapes markdown table delimiters and truncates long text.
func cell(s string, max int) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	if max > 0 {
		if r := []rune(s); len(r) > max {
			s = string(r[:max-1]) + "…"
		}
	}
	return s
}
