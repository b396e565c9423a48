package collector

import (
	"context"
	"sync/atomic"
	"time"

	"PricePulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Pairs []model.RawPricePair
	Err   error

	// Gate, when non-nil, blocks every fetch until a value is sent on it
	// (or the context is cancelled). Lets tests order completions.
	Gate chan struct{}

	currentCalls atomic.Int64
	historyCalls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCurrentPrice(ctx context.Context, _ model.CurrencyCode) (float64, error) {
	m.currentCalls.Add(1)
	if err := m.wait(ctx); err != nil {
		return 0, err
	}
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}

func (m *MockFetcher) FetchHistoricalSeries(ctx context.Context, _ model.CurrencyCode, days int) ([]model.RawPricePair, error) {
	m.historyCalls.Add(1)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Pairs != nil {
		return m.Pairs, nil
	}
	return generateMockPairs(m.Price, days), nil
}

// CurrentCalls reports how many current-price fetches were issued.
func (m *MockFetcher) CurrentCalls() int64 { return m.currentCalls.Load() }

// HistoryCalls reports how many historical-series fetches were issued.
func (m *MockFetcher) HistoryCalls() int64 { return m.historyCalls.Load() }

func (m *MockFetcher) wait(ctx context.Context) error {
	if m.Gate == nil {
		return nil
	}
	select {
	case <-m.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// generateMockPairs yields one pair per day ending today, the same shape the
// market-chart endpoint emits (today's provisional point included).
func generateMockPairs(basePrice float64, days int) []model.RawPricePair {
	pairs := make([]model.RawPricePair, 0, days+1)
	for i := days; i >= 0; i-- {
		ts := time.Now().AddDate(0, 0, -i).UnixMilli()
		price := basePrice * (1 + float64(days/2-i)*0.001)
		pairs = append(pairs, model.RawPricePair{float64(ts), price})
	}
	return pairs
}
