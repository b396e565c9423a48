package recorder

// PriceTick records one published current-price observation.
type PriceTick struct {
	Currency   string
	Price      float64
	ObservedAt string
	FetchError string // empty on success
}

// HistoryRefresh records one published historical-series refresh.
type HistoryRefresh struct {
	Currency   string
	Points     int
	OldestDate string
	NewestDate string
	FetchError string // empty on success
}

// Recorder persists published observations for later analysis. Write-only:
// the pipeline never reads recorded data back, so tracker state still resets
// on every start.
type Recorder interface {
	RecordTick(tick *PriceTick) error
	RecordHistoryRefresh(evt *HistoryRefresh) error
	Close() error
}
