package model

import (
	"sort"
	"time"
)

// Display formats used throughout the pipeline.
const (
	DateLayout      = "02-01-2006"
	TimestampLayout = "02-01-2006 15:04"
)

// CurrentPriceSnapshot is the asset's price in the selected currency at the
// moment of the last successful fetch. Replaced wholesale, never merged.
type CurrentPriceSnapshot struct {
	Price      float64
	ObservedAt string // local wall clock at receipt; the API carries no server timestamp
}

// HistoricalPoint is one closed day's price, formatted for display.
type HistoricalPoint struct {
	Date  string // DateLayout
	Price string // fixed 2-decimal string
}

// HistoricalSeries holds daily points, unique by date.
type HistoricalSeries []HistoricalPoint

// SortedByDateDesc returns a copy ordered most-recent-first. Points whose
// date fails to parse sort last, preserving their relative order.
func (s HistoricalSeries) SortedByDateDesc() HistoricalSeries {
	out := make(HistoricalSeries, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		ti, erri := time.Parse(DateLayout, out[i].Date)
		tj, errj := time.Parse(DateLayout, out[j].Date)
		if erri != nil || errj != nil {
			return errj != nil && erri == nil
		}
		return ti.After(tj)
	})
	return out
}

// RawPricePair is one undecoded [timestampMillis, price] entry from the
// market-chart endpoint. Elements stay untyped until normalization because
// the upstream JSON mixes them in a heterogeneous array.
type RawPricePair []any

// FetchKind distinguishes the two fetch operations the pipeline runs.
type FetchKind string

const (
	FetchCurrent FetchKind = "current"
	FetchHistory FetchKind = "history"
)

// PipelineView is a read-only copy of the pipeline state, safe to retain.
type PipelineView struct {
	SelectedCurrency CurrencyCode
	Current          *CurrentPriceSnapshot // nil until the first fetch completes
	History          HistoricalSeries
	InFlight         map[FetchKind]bool
	LastErrors       map[FetchKind]string // fail-soft marker: last completed fetch's error per kind
}
