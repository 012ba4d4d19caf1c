package market

import (
	"fmt"
	"strings"
)

// Period is a named historical span accepted by FetchHistory.
type Period string

const (
	Period1Day    Period = "1d"
	Period5Days   Period = "5d"
	Period1Month  Period = "1mo"
	Period3Months Period = "3mo"
	Period6Months Period = "6mo"
	Period1Year   Period = "1y"
	Period2Years  Period = "2y"
	Period5Years  Period = "5y"
	PeriodMax     Period = "max"
)

// Periods lists the supported spans, shortest first.
var Periods = []Period{
	Period1Day, Period5Days, Period1Month, Period3Months, Period6Months,
	Period1Year, Period2Years, Period5Years, PeriodMax,
}

// IsValid checks if the Period is one of the supported spans.
func (p Period) IsValid() bool {
	for _, v := range Periods {
		if v == p {
			return true
		}
	}
	return false
}

// ParsePeriod accepts any casing ("1MO", " 1y ").
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
	return p, nil
}

func (p Period) String() string { return string(p) }
