package market

import (
	"fmt"
	"strings"
)

// Symbol is an uppercase exchange ticker, the unique key of the watch-list.
type Symbol string

// maxSymbolLen bounds user input; real tickers (including index and class suffixes) are far shorter.
const maxSymbolLen = 16

// ParseSymbol trims and uppercases raw input.
// Letters, digits and the separators used by index and share-class tickers (^ . - =) are accepted.
func ParseSymbol(raw string) (Symbol, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || len(s) > maxSymbolLen {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '^', r == '.', r == '-', r == '=':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
		}
	}
	return Symbol(s), nil
}

func (s Symbol) String() string { return string(s) }
