// Package normalizer converts raw market-chart pairs into display-ready
// historical points.
package normalizer

import (
	"encoding/json"
	"fmt"
	"time"

	"PricePulse/internal/model"
)

// Normalize converts raw [timestampMillis, price] pairs into calendar-date
// points: the timestamp is truncated to day granularity, the price formatted
// to exactly two decimals. Pairs with a missing or non-numeric element are
// dropped, as is the point for the current (not yet closed) day. Points keep
// arrival order; duplicate dates resolve last-write-wins.
func Normalize(pairs []model.RawPricePair, now time.Time) model.HistoricalSeries {
	today := now.Format(model.DateLayout)
	series := make(model.HistoricalSeries, 0, len(pairs))
	seen := make(map[string]int, len(pairs))

	for _, p := range pairs {
		if len(p) < 2 {
			continue
		}
		ts, ok := toFloat(p[0])
		if !ok {
			continue
		}
		price, ok := toFloat(p[1])
		if !ok {
			continue
		}
		date := time.UnixMilli(int64(ts)).Format(model.DateLayout)
		if date == today {
			continue
		}
		point := model.HistoricalPoint{
			Date:  date,
			Price: fmt.Sprintf("%.2f", price),
		}
		if i, dup := seen[date]; dup {
			series[i] = point
			continue
		}
		seen[date] = len(series)
		series = append(series, point)
	}
	return series
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
