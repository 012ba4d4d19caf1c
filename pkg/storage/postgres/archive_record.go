package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteRecord is one fetched quote snapshot. Rows are only ever appended.
type QuoteRecord struct {
	ID uint `gorm:"primaryKey"`

	Symbol    string    `gorm:"type:varchar(16);not null;index:idx_quote_symbol_fetched"`
	FetchedAt time.Time `gorm:"not null;index:idx_quote_symbol_fetched"`

	Price         decimal.Decimal `gorm:"type:numeric;not null"`
	PreviousClose decimal.Decimal `gorm:"type:numeric;not null"`
	Volume        int64           `gorm:"not null"`
	Currency      string          `gorm:"type:varchar(8)"`

	CompanyName string `gorm:"type:text"`
	Sector      string `gorm:"type:text"`
	Industry    string `gorm:"type:text"`
	Country     string `gorm:"type:text"`

	MarketCap        decimal.NullDecimal `gorm:"type:numeric"`
	PERatio          decimal.NullDecimal `gorm:"type:numeric"`
	DayHigh          decimal.NullDecimal `gorm:"type:numeric"`
	DayLow           decimal.NullDecimal `gorm:"type:numeric"`
	FiftyTwoWeekHigh decimal.NullDecimal `gorm:"type:numeric"`
	FiftyTwoWeekLow  decimal.NullDecimal `gorm:"type:numeric"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (QuoteRecord) TableName() string {
	return "quote_record"
}

// HistoryRecord is one daily bar, unique per symbol and date.
type HistoryRecord struct {
	ID uint `gorm:"primaryKey"`

	Symbol string    `gorm:"type:varchar(16);not null;index:idx_history_symbol_date,unique"`
	Date   time.Time `gorm:"type:date;not null;index:idx_history_symbol_date,unique"`

	Open   decimal.Decimal `gorm:"type:numeric;not null"`
	High   decimal.Decimal `gorm:"type:numeric;not null"`
	Low    decimal.Decimal `gorm:"type:numeric;not null"`
	Close  decimal.Decimal `gorm:"type:numeric;not null"`
	Volume int64           `gorm:"not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

func (HistoryRecord) TableName() string {
	return "history_record"
}
