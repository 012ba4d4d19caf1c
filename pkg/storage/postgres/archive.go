package postgres

import (
	"context"
	"time"

	"stocktracker/internal/market"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// ArchiveQuote appends a snapshot to quote_record.
func (p *PostgresClient) ArchiveQuote(ctx context.Context, q market.Quote) error {
	return p.DB.WithContext(ctx).Create(ToQuoteRecord(q)).Error
}

// ArchiveHistory upserts bars into history_record; bars already stored are left alone.
func (p *PostgresClient) ArchiveHistory(ctx context.Context, symbol market.Symbol, points []market.HistoryPoint) error {
	if len(points) == 0 {
		return nil
	}
	records := ToHistoryRecords(symbol, points)
	return p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoNothing: true,
	}).CreateInBatches(records, 500).Error
}

// DeleteQuotesBefore drops quote snapshots fetched before the cutoff and reports how many went.
// history_record is left alone: daily bars do not change once the day is over.
func (p *PostgresClient) DeleteQuotesBefore(ctx context.Context, before time.Time) (int64, error) {
	res := p.DB.WithContext(ctx).
		Where("fetched_at < ?", before).
		Delete(&QuoteRecord{})
	return res.RowsAffected, res.Error
}

// ToQuoteRecord converts a quote into a row for quote_record.
func ToQuoteRecord(q market.Quote) *QuoteRecord {
	return &QuoteRecord{
		Symbol:           q.Symbol.String(),
		FetchedAt:        q.FetchedAt,
		Price:            q.Price,
		PreviousClose:    q.PreviousClose,
		Volume:           q.Volume,
		Currency:         q.Currency,
		CompanyName:      q.CompanyName,
		Sector:           q.Sector,
		Industry:         q.Industry,
		Country:          q.Country,
		MarketCap:        nullable(q.MarketCap),
		PERatio:          nullable(q.PERatio),
		DayHigh:          nullable(q.DayHigh),
		DayLow:           nullable(q.DayLow),
		FiftyTwoWeekHigh: nullable(q.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:  nullable(q.FiftyTwoWeekLow),
	}
}

func ToHistoryRecords(symbol market.Symbol, points []market.HistoryPoint) []HistoryRecord {
	out := make([]HistoryRecord, 0, len(points))
	for _, pt := range points {
		out = append(out, HistoryRecord{
			Symbol: symbol.String(),
			Date:   pt.Date,
			Open:   pt.Open,
			High:   pt.High,
			Low:    pt.Low,
			Close:  pt.Close,
			Volume: pt.Volume,
		})
	}
	return out
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
