package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stocktracker/internal/market"

	"go.uber.org/zap"
)

// QuoteArchiver receives every successfully fetched quote. It is never read back.
type QuoteArchiver interface {
	ArchiveQuote(ctx context.Context, q market.Quote) error
}

// Tracker runs the watch-list workflows on top of a Store and a Provider.
type Tracker struct {
	store    *Store
	provider market.Provider
	archive  QuoteArchiver
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Tracker)

// WithArchiver sends every fetched quote to a.
func WithArchiver(a QuoteArchiver) Option {
	return func(t *Tracker) { t.archive = a }
}

// WithClock overrides time.Now for FetchedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(store *Store, provider market.Provider, logger *zap.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Store() *Store { return t.store }

// Fetch calls the provider without touching the store.
// Every failure comes back wrapping market.ErrNoData.
func (t *Tracker) Fetch(ctx context.Context, symbol market.Symbol) (market.Quote, error) {
	q, err := t.provider.FetchQuote(ctx, symbol)
	if err != nil {
		if !errors.Is(err, market.ErrNoData) {
			err = fmt.Errorf("%w: %s: %v", market.ErrNoData, symbol, err)
		}
		return market.Quote{}, err
	}
	q.Symbol = symbol
	if q.FetchedAt.IsZero() {
		q.FetchedAt = t.now()
	}

	if t.archive != nil {
		if err := t.archive.ArchiveQuote(ctx, q); err != nil {
			t.logger.Warn("failed to archive quote", zap.String("symbol", symbol.String()), zap.Error(err))
		}
	}
	return q, nil
}

// Add normalizes raw, fetches a quote and inserts it.
// A symbol that is already tracked is rejected before any provider call.
func (t *Tracker) Add(ctx context.Context, raw string) (market.Quote, error) {
	symbol, err := market.ParseSymbol(raw)
	if err != nil {
		return market.Quote{}, err
	}
	if t.store.Contains(symbol) {
		return market.Quote{}, fmt.Errorf("%s: %w", symbol, market.ErrAlreadyTracked)
	}

	q, err := t.Fetch(ctx, symbol)
	if err != nil {
		t.logger.Warn("add failed", zap.String("symbol", symbol.String()), zap.Error(err))
		return market.Quote{}, err
	}
	if err := t.store.Add(symbol, q); err != nil {
		return market.Quote{}, err
	}

	t.logger.Info("symbol added", zap.String("symbol", symbol.String()))
	return q, nil
}

func (t *Tracker) Remove(raw string) (market.Symbol, error) {
	symbol, err := market.ParseSymbol(raw)
	if err != nil {
		return "", err
	}
	if err := t.store.Remove(symbol); err != nil {
		return symbol, err
	}
	t.logger.Info("symbol removed", zap.String("symbol", symbol.String()))
	return symbol, nil
}

func (t *Tracker) Get(raw string) (market.Quote, error) {
	symbol, err := market.ParseSymbol(raw)
	if err != nil {
		return market.Quote{}, err
	}
	q, ok := t.store.Get(symbol)
	if !ok {
		return market.Quote{}, fmt.Errorf("%s: %w", symbol, market.ErrNotTracked)
	}
	return q, nil
}

// RefreshOne re-fetches a tracked symbol. On failure the stored quote is left as it was.
func (t *Tracker) RefreshOne(ctx context.Context, raw string) (market.Quote, error) {
	symbol, err := market.ParseSymbol(raw)
	if err != nil {
		return market.Quote{}, err
	}
	if !t.store.Contains(symbol) {
		return market.Quote{}, fmt.Errorf("%s: %w", symbol, market.ErrNotTracked)
	}

	u := t.fetchUpdate(ctx, symbol)
	if u.Err != nil {
		t.logger.Warn("refresh failed", zap.String("symbol", symbol.String()), zap.Error(u.Err))
		return market.Quote{}, u.Err
	}
	if !t.Apply(u) {
		return market.Quote{}, fmt.Errorf("%s: %w", symbol, market.ErrNotTracked)
	}
	return u.Quote, nil
}

// RefreshAll re-fetches every tracked symbol in insertion order.
// A worker goroutine performs the fetches and posts each result on a channel;
// this goroutine is the only one applying them. One symbol failing never stops the others.
func (t *Tracker) RefreshAll(ctx context.Context) RefreshReport {
	symbols := t.store.Symbols()
	updates := make(chan Update)

	go func() {
		defer close(updates)
		for _, symbol := range symbols {
			updates <- t.fetchUpdate(ctx, symbol)
		}
	}()

	report := RefreshReport{At: t.now()}
	for u := range updates {
		switch {
		case u.Err != nil:
			t.logger.Warn("refresh failed", zap.String("symbol", u.Symbol.String()), zap.Error(u.Err))
			report.Failed = append(report.Failed, Failure{Symbol: u.Symbol, Err: u.Err})
		case t.Apply(u):
			report.Updated = append(report.Updated, u.Symbol)
		default:
			report.Discarded = append(report.Discarded, u.Symbol)
		}
	}

	t.logger.Info("refresh completed",
		zap.Int("updated", len(report.Updated)),
		zap.Int("failed", len(report.Failed)),
		zap.Int("discarded", len(report.Discarded)))
	return report
}

// Apply stores a successful update. Results for symbols removed in the meantime,
// or re-added after the fetch started, are dropped.
func (t *Tracker) Apply(u Update) bool {
	if u.Err != nil {
		return false
	}
	if !t.store.Replace(u.Symbol, u.Generation, u.Quote) {
		t.logger.Debug("discarding stale refresh", zap.String("symbol", u.Symbol.String()))
		return false
	}
	return true
}

func (t *Tracker) fetchUpdate(ctx context.Context, symbol market.Symbol) Update {
	// Generation 0 never matches, so a symbol removed before its turn is discarded.
	gen, _ := t.store.Generation(symbol)
	q, err := t.Fetch(ctx, symbol)
	return Update{Symbol: symbol, Generation: gen, Quote: q, Err: err}
}

// Lookup fetches quotes for symbols that are not necessarily tracked (popular list, indices).
// Successful quotes keep the input order.
func (t *Tracker) Lookup(ctx context.Context, symbols []market.Symbol) LookupResult {
	var res LookupResult
	for _, symbol := range symbols {
		q, err := t.Fetch(ctx, symbol)
		if err != nil {
			t.logger.Warn("lookup failed", zap.String("symbol", symbol.String()), zap.Error(err))
			res.Failed = append(res.Failed, Failure{Symbol: symbol, Err: err})
			continue
		}
		res.Quotes = append(res.Quotes, q)
	}
	return res
}

// LoadExamples adds each symbol, skipping the ones already tracked.
func (t *Tracker) LoadExamples(ctx context.Context, symbols []string) []Failure {
	var failed []Failure
	for _, raw := range symbols {
		_, err := t.Add(ctx, raw)
		if err == nil || errors.Is(err, market.ErrAlreadyTracked) {
			continue
		}
		failed = append(failed, Failure{Symbol: market.Symbol(strings.ToUpper(strings.TrimSpace(raw))), Err: err})
	}
	return failed
}
