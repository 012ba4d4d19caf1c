// Package history fetches OHLCV series on demand. Nothing is cached: every call hits the provider.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"stocktracker/internal/market"

	"go.uber.org/zap"
)

// Archiver receives every successfully fetched series.
type Archiver interface {
	ArchiveHistory(ctx context.Context, symbol market.Symbol, points []market.HistoryPoint) error
}

type Query struct {
	provider market.Provider
	archive  Archiver
	logger   *zap.Logger
}

func NewQuery(provider market.Provider, archive Archiver, logger *zap.Logger) *Query {
	return &Query{provider: provider, archive: archive, logger: logger}
}

// Result is an ascending-by-date series for one symbol and period.
type Result struct {
	Symbol market.Symbol         `json:"symbol"`
	Period market.Period         `json:"period"`
	Points []market.HistoryPoint `json:"points"`
}

// Run fetches the series for raw over period. An empty series fails with market.ErrNoData.
func (q *Query) Run(ctx context.Context, raw string, period market.Period) (Result, error) {
	symbol, err := market.ParseSymbol(raw)
	if err != nil {
		return Result{}, err
	}
	if !period.IsValid() {
		return Result{}, fmt.Errorf("%w: %q", market.ErrUnknownPeriod, period)
	}

	points, err := q.provider.FetchHistory(ctx, symbol, period)
	if err != nil {
		if !errors.Is(err, market.ErrNoData) {
			err = fmt.Errorf("%w: %s %s: %v", market.ErrNoData, symbol, period, err)
		}
		q.logger.Warn("history fetch failed", zap.String("symbol", symbol.String()),
			zap.String("period", period.String()), zap.Error(err))
		return Result{}, err
	}
	if len(points) == 0 {
		return Result{}, fmt.Errorf("%w: no history for %s over %s", market.ErrNoData, symbol, period)
	}

	sorted := make([]market.HistoryPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	if q.archive != nil {
		if err := q.archive.ArchiveHistory(ctx, symbol, sorted); err != nil {
			q.logger.Warn("failed to archive history", zap.String("symbol", symbol.String()), zap.Error(err))
		}
	}

	return Result{Symbol: symbol, Period: period, Points: sorted}, nil
}

// Tail returns the last n points (all of them when n <= 0 or n >= len).
func (r Result) Tail(n int) []market.HistoryPoint {
	if n <= 0 || n >= len(r.Points) {
		return r.Points
	}
	return r.Points[len(r.Points)-n:]
}
