package collector

import (
	"context"

	"PricePulse/internal/model"
)

// Fetcher defines the interface for fetching asset prices from a remote API.
type Fetcher interface {
	// FetchCurrentPrice returns the instantaneous price of the tracked asset
	// in the given reference currency.
	FetchCurrentPrice(ctx context.Context, currency model.CurrencyCode) (float64, error)
	// FetchHistoricalSeries returns the raw daily [timestampMillis, price]
	// pairs for the last `days` days, in arrival order.
	FetchHistoricalSeries(ctx context.Context, currency model.CurrencyCode, days int) ([]model.RawPricePair, error)
	Name() string
}
