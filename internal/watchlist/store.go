package watchlist

import (
	"fmt"
	"sync"

	"stocktracker/internal/market"

	"github.com/shopspring/decimal"
)

// Store is the in-memory Symbol -> Quote mapping.
// Insertion order is kept so tables do not reorder between refreshes.
// It is safe for concurrent use by the foreground front end and the refresh worker.
//
// Every Add starts a new generation for the symbol, so a fetch that began before a
// remove and re-add can be told apart from one that began after it.
type Store struct {
	mu     sync.RWMutex
	order  []market.Symbol
	quotes map[market.Symbol]market.Quote
	gens   map[market.Symbol]uint64
	seq    uint64
}

func NewStore() *Store {
	return &Store{
		quotes: make(map[market.Symbol]market.Quote),
		gens:   make(map[market.Symbol]uint64),
	}
}

// Add inserts a quote for an untracked symbol.
func (s *Store) Add(symbol market.Symbol, q market.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[symbol]; ok {
		return fmt.Errorf("%s: %w", symbol, market.ErrAlreadyTracked)
	}
	q.Symbol = symbol
	s.seq++
	s.quotes[symbol] = q
	s.gens[symbol] = s.seq
	s.order = append(s.order, symbol)
	return nil
}

// Remove deletes the entry; nothing about it is retained.
func (s *Store) Remove(symbol market.Symbol) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[symbol]; !ok {
		return fmt.Errorf("%s: %w", symbol, market.ErrNotTracked)
	}
	delete(s.quotes, symbol)
	delete(s.gens, symbol)
	for i, sym := range s.order {
		if sym == symbol {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Get(symbol market.Symbol) (market.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[symbol]
	return q, ok
}

func (s *Store) Contains(symbol market.Symbol) bool {
	_, ok := s.Get(symbol)
	return ok
}

// Generation reports the generation of a tracked symbol. Generations start at 1.
func (s *Store) Generation(symbol market.Symbol) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gen, ok := s.gens[symbol]
	return gen, ok
}

// Replace swaps the stored quote wholesale. It returns false, leaving the store untouched,
// when the symbol is no longer tracked under gen: it was removed, or removed and added
// again, while the fetch was in flight.
func (s *Store) Replace(symbol market.Symbol, gen uint64, q market.Quote) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.gens[symbol]; !ok || cur != gen {
		return false
	}
	q.Symbol = symbol
	s.quotes[symbol] = q
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Symbols returns the tracked symbols in insertion order.
func (s *Store) Symbols() []market.Symbol {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]market.Symbol, len(s.order))
	copy(out, s.order)
	return out
}

// Snapshot returns a copy of every quote in insertion order.
func (s *Store) Snapshot() []market.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]market.Quote, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, s.quotes[sym])
	}
	return out
}

// Summary aggregates a snapshot. Mean fields are nil when there is nothing to average.
type Summary struct {
	Count             int              `json:"count"`
	MeanPrice         *decimal.Decimal `json:"mean_price,omitempty"`
	MeanChangePercent *float64         `json:"mean_change_percent,omitempty"`
}

// Summarize computes the derived read-only views over quotes.
// Quotes whose change percent is undefined are left out of the change mean.
func Summarize(quotes []market.Quote) Summary {
	sum := Summary{Count: len(quotes)}
	if len(quotes) == 0 {
		return sum
	}

	total := decimal.Zero
	var pctTotal float64
	var pctCount int
	for _, q := range quotes {
		total = total.Add(q.Price)
		if pct, err := q.ChangePercent(); err == nil {
			pctTotal += pct
			pctCount++
		}
	}

	mean := total.Div(decimal.NewFromInt(int64(len(quotes))))
	sum.MeanPrice = &mean
	if pctCount > 0 {
		avg := pctTotal / float64(pctCount)
		sum.MeanChangePercent = &avg
	}
	return sum
}

func (s *Store) Summary() Summary {
	return Summarize(s.Snapshot())
}
