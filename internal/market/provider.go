package market

import "context"

//go:generate mockgen -package=market -destination=mock_provider.go -source=provider.go Provider

// Provider is the external quote source. Every failure is reported as an error wrapping ErrNoData.
type Provider interface {
	FetchQuote(ctx context.Context, symbol Symbol) (Quote, error)
	FetchHistory(ctx context.Context, symbol Symbol, period Period) ([]HistoryPoint, error)
}
