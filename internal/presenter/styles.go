package presenter

import (
	"fmt"

	"stocktracker/internal/market"

	"github.com/charmbracelet/lipgloss"
)

// Styles colours the one-line messages printed around the rendered markdown.
type Styles struct {
	Gain    lipgloss.Style
	Loss    lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Dim     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Gain:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Loss:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Failure: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// PlainStyles renders everything unstyled.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Gain: s, Loss: s, Success: s, Failure: s, Dim: s}
}

// Ticker is a one-line quote such as "AAPL $150.00 +2.00 (+1.35%) ▲", coloured by direction.
func (s Styles) Ticker(q market.Quote) string {
	line := fmt.Sprintf("%s %s %s (%s) %s", q.Symbol, Money(q.Price, q.Currency), Change(q), ChangePercent(q), Arrow(q))
	if q.IsUp() {
		return s.Gain.Render(line)
	}
	return s.Loss.Render(line)
}
